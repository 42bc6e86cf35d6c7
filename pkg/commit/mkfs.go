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
	"regexp"
	"time"

	"github.com/twpayne/go-vfs/v5"

	"github.com/suse-edge/diskplan/pkg/diskerr"
	"github.com/suse-edge/diskplan/pkg/filesystem"
	fsutils "github.com/suse-edge/diskplan/pkg/fsutil"
	"github.com/suse-edge/diskplan/pkg/runner"
)

// partitionDeviceTries is how many one-second polls FindPartitionDevice
// makes before giving up, matching the teacher's partitionTries.
const partitionDeviceTries = 10

var partitionSuffixNeedsP = regexp.MustCompile(`.*\d+$`)

// FindPartitionDevice waits for the kernel to expose partNum's device
// node under devicePath (e.g. /dev/nvme0n1p3 vs /dev/sda3), polling
// udevadm settle the way the teacher's FindPartitionDevice does -- the
// node can lag a partition-table rewrite by a few hundred milliseconds.
func FindPartitionDevice(r runner.Runner, fsys vfs.FS, devicePath string, partNum int) (string, error) {
	var node string
	if partitionSuffixNeedsP.MatchString(devicePath) {
		node = fmt.Sprintf("%sp%d", devicePath, partNum)
	} else {
		node = fmt.Sprintf("%s%d", devicePath, partNum)
	}

	for try := 0; try < partitionDeviceTries; try++ {
		_, _ = r.Run("udevadm", "settle")
		if exists, _ := fsutils.Exists(fsys, node); exists {
			return node, nil
		}
		time.Sleep(time.Second)
	}
	return "", fmt.Errorf("could not find partition device %q for partition %d", node, partNum)
}

// FormatDevice invokes the external mkfs.<fs> binary against device,
// labeling the new filesystem with label when label is non-empty.
func FormatDevice(r runner.Runner, device string, fs filesystem.Type, label string) error {
	args := []string{device}
	switch fs {
	case filesystem.Fat16, filesystem.Fat32:
		if label != "" {
			args = []string{"-n", label, device}
		}
	case filesystem.Swap:
		if label != "" {
			args = []string{"-L", label, device}
		}
	default:
		if label != "" {
			args = []string{"-L", label, device}
		}
	}

	out, err := r.Run(fs.MkfsCommand(), args...)
	if err != nil {
		return &diskerr.PartitionFormatError{Why: fmt.Errorf("%w: %s", err, out)}
	}
	return nil
}
