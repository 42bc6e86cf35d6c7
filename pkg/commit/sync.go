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

package commit

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/suse-edge/diskplan/pkg/diskerr"
)

// syncKernel asks the kernel to re-read devicePath's partition table,
// via the BLKRRPART ioctl. Called after every committed phase. Commit
// keeps its one table handle open across all phases, so each re-read is
// requested while that handle is still open.
func syncKernel(devicePath string) error {
	f, err := os.Open(devicePath)
	if err != nil {
		return &diskerr.DiskSyncError{Why: fmt.Errorf("opening %s: %w", devicePath, err)}
	}
	defer f.Close()

	if err := unix.IoctlSetInt(int(f.Fd()), unix.BLKRRPART, 0); err != nil {
		return &diskerr.DiskSyncError{Why: err}
	}
	return nil
}
