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

package probe

import (
	"strings"

	"github.com/twpayne/go-vfs/v5"

	fsutils "github.com/suse-edge/diskplan/pkg/fsutil"
)

type mountEntry struct {
	mountpoint string
	fstype     string
}

// readMounts parses /proc/mounts into a map keyed by device path, the same
// shape the teacher's partitionInfo helper extracts one entry at a time.
func readMounts(fsys vfs.FS) (map[string]mountEntry, error) {
	lines, err := fsutils.ReadLines(fsys, "/proc/mounts")
	if err != nil {
		return nil, err
	}
	out := make(map[string]mountEntry, len(lines))
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 3 || !strings.HasPrefix(fields[0], "/dev/") {
			continue
		}
		out[fields[0]] = mountEntry{mountpoint: fields[1], fstype: fields[2]}
	}
	return out, nil
}

// readSwaps parses /proc/swaps into a set of device paths currently in
// use as swap, skipping the header row.
func readSwaps(fsys vfs.FS) (map[string]bool, error) {
	lines, err := fsutils.ReadLines(fsys, "/proc/swaps")
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(line, "Filename") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		out[fields[0]] = true
	}
	return out, nil
}
