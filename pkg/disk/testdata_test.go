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

import (
	sdkTypes "github.com/kairos-io/kairos-sdk/types"

	"github.com/suse-edge/diskplan/pkg/filesystem"
	"github.com/suse-edge/diskplan/pkg/flag"
	"github.com/suse-edge/diskplan/pkg/partition"
)

// gib20 is a 20 GiB length in 512-byte sectors.
const gib20 = 41_943_040

func fsPtr(t filesystem.Type) *filesystem.Type { return &t }

// defaultDisk returns the four-partition GPT fixture used throughout the
// differ and validator tests: a 2048..1026047 Fat16 ESP, a
// 1026048..420456447 Btrfs root, a 420456448..1936738303 Ext4 second OS,
// and a 1936738304..1953523711 Swap partition, on a 1,953,525,168-sector
// x 512-byte disk.
func defaultDisk() *Disk {
	return &Disk{
		Model:      "Test Disk",
		Serial:     "Test Disk 123",
		DevicePath: "/dev/sdz",
		Size:       1_953_525_168,
		SectorSize: 512,
		DeviceType: "TEST",
		TableType:  Gpt,
		logger:     sdkTypes.NewKairosLogger("disk-test", "info", false),
		Partitions: []partition.Info{
			{
				Number:      1,
				StartSector: 2048,
				EndSector:   1_026_047,
				PartType:    partition.Primary,
				Filesystem:  fsPtr(filesystem.Fat16),
				Flags:       flag.Set{},
				MountPoint:  "/boot/efi",
				Target:      "/boot/efi",
				DevicePath:  "/dev/sdz1",
				IsSource:    true,
				Active:      true,
				Busy:        true,
			},
			{
				Number:      2,
				StartSector: 1_026_048,
				EndSector:   420_456_447,
				PartType:    partition.Primary,
				Filesystem:  fsPtr(filesystem.Btrfs),
				Flags:       flag.Set{},
				Name:        "Pop!_OS",
				MountPoint:  "/",
				Target:      "/",
				DevicePath:  "/dev/sdz2",
				IsSource:    true,
				Active:      true,
				Busy:        true,
			},
			{
				Number:      3,
				StartSector: 420_456_448,
				EndSector:   1_936_738_303,
				PartType:    partition.Primary,
				Filesystem:  fsPtr(filesystem.Ext4),
				Flags:       flag.Set{},
				Name:        "Solus OS",
				DevicePath:  "/dev/sdz3",
				IsSource:    true,
			},
			{
				Number:      4,
				StartSector: 1_936_738_304,
				EndSector:   1_953_523_711,
				PartType:    partition.Primary,
				Filesystem:  fsPtr(filesystem.Swap),
				Flags:       flag.Set{},
				DevicePath:  "/dev/sdz4",
				IsSource:    true,
				Active:      true,
			},
		},
	}
}

// emptyDisk is the same geometry with no partition table populated yet.
func emptyDisk() *Disk {
	d := defaultDisk()
	d.Partitions = nil
	return d
}

// bootPart mirrors the fixture's 500 MB Fat16 boot partition: a builder
// spanning a 1,024,000-sector length starting at start.
func bootPart(start uint64) partition.Builder {
	return partition.NewBuilder(start, start+1_024_000-1, filesystem.Fat16)
}

// rootPart mirrors the fixture's 20 GiB Ext4 partition: a builder
// spanning a gib20-sector length starting at start.
func rootPart(start uint64) partition.Builder {
	return partition.NewBuilder(start, start+gib20-1, filesystem.Ext4)
}
