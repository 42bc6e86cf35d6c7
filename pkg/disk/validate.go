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

package disk

import "github.com/suse-edge/diskplan/pkg/diskerr"

// ValidateLayout checks that target is a legal successor of source: every
// source partition must still be present in target, in the same
// relative order, with any non-source partitions appended afterward. A
// source partition may be mutated (resized, moved, reformatted,
// reflagged) or marked Remove, but it must never simply disappear or be
// reordered -- that always indicates a caller bug or an identity
// mismatch, never a legitimate edit.
//
// A target requesting a fresh label always validates, since the disk is
// about to be wiped and nothing from source needs to survive.
func ValidateLayout(source, target *Disk) error {
	if target.Mklabel {
		return nil
	}

	if len(source.Partitions) > len(target.Partitions) {
		return &diskerr.LayoutChangedError{}
	}
	for i := range source.Partitions {
		s := &source.Partitions[i]
		t := &target.Partitions[i]
		if !s.IsSamePartitionAs(t) {
			return &diskerr.LayoutChangedError{}
		}
	}
	return nil
}
