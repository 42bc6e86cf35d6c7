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

// Package table adapts pkg/disk's in-memory model to a real
// partition-table library. go-diskfs's Partition call is declarative --
// it takes the complete desired partition list and rewrites the whole
// table in one shot -- which maps naturally onto the commit engine's
// "one commit per phase" rule: each phase mutates an in-memory
// partition.Info list, then asks the Handle opened here to materialize
// the result.
package table

import (
	"github.com/suse-edge/diskplan/pkg/disk"
	"github.com/suse-edge/diskplan/pkg/partition"
)

// Handle is an open device with a partition table, abstracted so the
// commit engine can be tested against a fake without touching a real
// block device.
type Handle interface {
	// ReadLabel reports the table kind currently on the device, and its
	// partitions translated to partition.Info with Number/StartSector/
	// EndSector/PartType/Name populated (is_source is the probe's job, not
	// this layer's).
	ReadLabel() (disk.Table, []partition.Info, error)

	// WriteLabel rewrites the device's entire partition table to kind
	// with exactly the given partitions, assigning numbers to any entry
	// whose Number is -1 and reporting them back in the same order.
	WriteLabel(kind disk.Table, partitions []partition.Info) ([]partition.Info, error)

	// Close releases the device handle. Safe to call more than once.
	Close() error
}

// Opener opens a device by path, the one extension point a real
// implementation needs beyond Handle itself.
type Opener interface {
	Open(devicePath string, sectorSize uint64) (Handle, error)
}
