/*
Copyright © 2022 SUSE LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package disks

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/twpayne/go-vfs/v5"

	fsutils "github.com/suse-edge/diskplan/pkg/fsutil"
)

const byUUIDDir = "/dev/disk/by-uuid"

// UUIDResolverFromFS returns a UUIDResolver that walks /dev/disk/by-uuid
// looking for the symlink pointing back at devicePath, the same
// udev-maintained directory the kernel populates for every partition with
// a filesystem UUID.
func UUIDResolverFromFS(fsys vfs.FS) UUIDResolver {
	return func(devicePath string) (string, error) {
		var found string
		err := fsutils.WalkDirFs(fsys, byUUIDDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || found != "" || d == nil || d.IsDir() {
				return nil
			}
			target, lerr := fsys.Readlink(path)
			if lerr != nil {
				return nil
			}
			if !filepath.IsAbs(target) {
				target = filepath.Clean(filepath.Join(filepath.Dir(path), target))
			}
			if target == devicePath {
				found = filepath.Base(path)
			}
			return nil
		})
		if err != nil {
			return "", err
		}
		if found == "" {
			return "", fmt.Errorf("no by-uuid entry resolves to %s", devicePath)
		}
		return found, nil
	}
}
