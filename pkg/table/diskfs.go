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

package table

import (
	"fmt"

	"github.com/diskfs/go-diskfs"
	dfdisk "github.com/diskfs/go-diskfs/disk"
	dfpartition "github.com/diskfs/go-diskfs/partition"
	"github.com/diskfs/go-diskfs/partition/gpt"
	"github.com/diskfs/go-diskfs/partition/mbr"
	"github.com/gofrs/uuid"
	sdkTypes "github.com/kairos-io/kairos-sdk/types"
	"github.com/sanity-io/litter"

	"github.com/suse-edge/diskplan/pkg/disk"
	"github.com/suse-edge/diskplan/pkg/filesystem"
	"github.com/suse-edge/diskplan/pkg/flag"
	"github.com/suse-edge/diskplan/pkg/partition"
)

// DiskfsOpener opens devices through github.com/diskfs/go-diskfs,
// exactly as pkg/partitionerv2.NewDisk does.
type DiskfsOpener struct {
	Logger sdkTypes.KairosLogger
}

// NewDiskfsOpener returns an Opener logging through l.
func NewDiskfsOpener(l sdkTypes.KairosLogger) *DiskfsOpener {
	return &DiskfsOpener{Logger: l}
}

func (o *DiskfsOpener) Open(devicePath string, sectorSize uint64) (Handle, error) {
	d, err := diskfs.Open(devicePath, diskfs.WithSectorSize(int(sectorSize)))
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", devicePath, err)
	}
	return &diskfsHandle{disk: d, logger: o.Logger}, nil
}

type diskfsHandle struct {
	disk   *dfdisk.Disk
	logger sdkTypes.KairosLogger
}

func (h *diskfsHandle) Close() error {
	if h.disk == nil || h.disk.File == nil {
		return nil
	}
	return h.disk.File.Close()
}

func (h *diskfsHandle) ReadLabel() (disk.Table, []partition.Info, error) {
	t, err := h.disk.GetPartitionTable()
	if err != nil {
		return disk.NoTable, nil, fmt.Errorf("reading partition table: %w", err)
	}

	switch tt := t.(type) {
	case *gpt.Table:
		return disk.Gpt, gptPartitionsToInfo(tt), nil
	case *mbr.Table:
		return disk.Msdos, mbrPartitionsToInfo(tt), nil
	default:
		return disk.NoTable, nil, nil
	}
}

func (h *diskfsHandle) WriteLabel(kind disk.Table, partitions []partition.Info) ([]partition.Info, error) {
	h.logger.Debugf("writing %s label: %s", kind, litter.Sdump(partitions))

	var table dfpartition.Table
	switch kind {
	case disk.Gpt:
		table = &gpt.Table{
			LogicalSectorSize:  int(h.disk.LogicalBlocksize),
			PhysicalSectorSize: int(h.disk.PhysicalBlocksize),
			ProtectiveMBR:      true,
			Partitions:         infoToGPTPartitions(partitions),
		}
	case disk.Msdos:
		table = &mbr.Table{
			LogicalSectorSize:  int(h.disk.LogicalBlocksize),
			PhysicalSectorSize: int(h.disk.PhysicalBlocksize),
			Partitions:         infoToMBRPartitions(partitions),
		}
	default:
		return nil, fmt.Errorf("unsupported table kind %s", kind)
	}

	if err := h.disk.Partition(table); err != nil {
		return nil, fmt.Errorf("writing partition table: %w", err)
	}

	out := make([]partition.Info, len(partitions))
	for i, p := range partitions {
		p.Number = i + 1
		out[i] = p
	}
	return out, nil
}

func gptPartitionsToInfo(t *gpt.Table) []partition.Info {
	out := make([]partition.Info, 0, len(t.Partitions))
	for i, p := range t.Partitions {
		if p.Start == 0 && p.End == 0 {
			continue
		}
		out = append(out, partition.Info{
			Number:      i + 1,
			StartSector: p.Start,
			EndSector:   p.End,
			PartType:    partition.Primary,
			Name:        p.Name,
		})
	}
	return out
}

func mbrPartitionsToInfo(t *mbr.Table) []partition.Info {
	out := make([]partition.Info, 0, len(t.Partitions))
	for i, p := range t.Partitions {
		if p.Size == 0 {
			continue
		}
		out = append(out, partition.Info{
			Number:      i + 1,
			StartSector: uint64(p.Start),
			EndSector:   uint64(p.Start) + uint64(p.Size) - 1,
			PartType:    partition.Primary,
		})
	}
	return out
}

// partitionGUID mints a deterministic (v5) GUID from a partition's name
// or, absent one, its number -- matching kairosPartsToDiskfsGPTParts'
// uuid.NewV5(uuid.NamespaceURL, label) pattern.
func partitionGUID(p partition.Info) string {
	label := p.Name
	if label == "" {
		label = fmt.Sprintf("partition-%d", p.Number)
	}
	return uuid.NewV5(uuid.NamespaceURL, label).String()
}

func infoToGPTPartitions(partitions []partition.Info) []*gpt.Partition {
	out := make([]*gpt.Partition, 0, len(partitions))
	for _, p := range partitions {
		gptType := gpt.LinuxFilesystem
		if p.Flags.Contains(flag.ESP) {
			gptType = gpt.EFISystemPartition
		}
		if p.Filesystem != nil && *p.Filesystem == filesystem.Swap {
			gptType = gpt.LinuxSwap
		}
		out = append(out, &gpt.Partition{
			Start: p.StartSector,
			End:   p.EndSector,
			Size:  (p.EndSector - p.StartSector + 1) * 512,
			Type:  gptType,
			Name:  p.Name,
			GUID:  partitionGUID(p),
		})
	}
	return out
}

func infoToMBRPartitions(partitions []partition.Info) []*mbr.Partition {
	out := make([]*mbr.Partition, 0, len(partitions))
	for _, p := range partitions {
		mbrType := mbr.Linux
		if p.Filesystem != nil && *p.Filesystem == filesystem.Swap {
			mbrType = mbr.LinuxSwap
		}
		out = append(out, &mbr.Partition{
			Bootable: p.Flags.Contains(flag.Boot),
			Type:     mbrType,
			Start:    uint32(p.StartSector),
			Size:     uint32(p.EndSector - p.StartSector + 1),
		})
	}
	return out
}
