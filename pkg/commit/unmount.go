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

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sys/unix"
	mountutils "k8s.io/mount-utils"

	"github.com/suse-edge/diskplan/pkg/diskerr"
	"github.com/suse-edge/diskplan/pkg/flag"
	"github.com/suse-edge/diskplan/pkg/partition"
)

// UnmountAllPartitions unmounts (or swaps off) every partition in
// partitions that is currently mounted or swapped on, attempting every
// one even after an earlier failure and returning every failure
// aggregated -- a caller retrying after manual intervention wants the
// full list of partitions still busy, not just the first.
func UnmountAllPartitions(mounter mountutils.Interface, partitions []partition.Info) error {
	var errs *multierror.Error

	for _, p := range partitions {
		if p.Swapped || (p.Filesystem != nil && p.Flags.Contains(flag.Swap)) {
			if err := unix.Swapoff(p.DevicePath); err != nil {
				errs = multierror.Append(errs, fmt.Errorf("swapoff %s: %w", p.DevicePath, err))
			}
			continue
		}
		if p.MountPoint == "" {
			continue
		}
		notMounted, err := mounter.IsLikelyNotMountPoint(p.MountPoint)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("checking mount %s: %w", p.MountPoint, err))
			continue
		}
		if notMounted {
			continue
		}
		if err := mounter.Unmount(p.MountPoint); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("unmounting %s: %w", p.MountPoint, err))
		}
	}

	if errs.ErrorOrNil() != nil {
		return &diskerr.UnmountError{Why: errs.ErrorOrNil()}
	}
	return nil
}
