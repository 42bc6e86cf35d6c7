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
	"github.com/sanity-io/litter"

	"github.com/suse-edge/diskplan/pkg/diskerr"
	"github.com/suse-edge/diskplan/pkg/filesystem"
	"github.com/suse-edge/diskplan/pkg/flag"
	"github.com/suse-edge/diskplan/pkg/partition"
)

// minResizeBytes is the smallest length resize_partition accepts,
// expressed as a byte threshold of 10 MiB converted to sectors at call
// time -- below this a resize is almost certainly a mistaken unit.
const minResizeBytes = 10 * 1024 * 1024

// Mklabel clears the partition list and requests a fresh table of kind be
// written on commit. Whatever was there is dropped; partitions added
// afterwards with AddPartition are all new, and Diff turns each of them
// into a create.
func (d *Disk) Mklabel(kind Table) {
	d.logger.Debugf("requesting fresh %s label on %s", kind, d.DevicePath)
	d.Partitions = nil
	d.TableType = kind
	d.Mklabel = true
}

// overlapsRegion reports whether [start,end] overlaps any non-remove
// partition, and if so the overlapping partition's number. excludeIndex
// is the index into d.Partitions to skip (used by resize/move, which
// compare a partition's proposed new range against every *other*
// partition); pass -1 to exclude nothing, since partition numbers alone
// can't identify a specific not-yet-placed entry -- several pending
// creates share Number == -1.
func (d *Disk) overlapsRegion(start, end uint64, excludeIndex int) (int, bool) {
	for i, p := range d.Partitions {
		if p.Remove || i == excludeIndex {
			continue
		}
		if !(end < p.StartSector || start > p.EndSector) {
			return p.Number, true
		}
	}
	return 0, false
}

// AddPartition appends the partition described by b as a non-source entry.
// Fails without mutating the disk if the range overlaps an existing
// partition, exceeds the disk, violates the MSDOS primary/logical quota,
// or no table has been established yet.
func (d *Disk) AddPartition(b partition.Builder) (*partition.Info, error) {
	if d.TableType == NoTable && !d.Mklabel {
		return nil, &diskerr.PartitionTableNotFoundError{}
	}
	if b.End() >= d.Size {
		return nil, &diskerr.PartitionOOBError{}
	}
	if num, overlap := d.overlapsRegion(b.Start(), b.End(), -1 /* exclude nothing */); overlap {
		return nil, &diskerr.SectorOverlapsError{ID: num}
	}
	if d.TableType == Msdos {
		primary, logical := d.primaryAndLogicalCounts()
		if b.PartType() == partition.Logical {
			if primary == 4 {
				return nil, &diskerr.PrimaryPartitionsExceededError{}
			}
		} else {
			if primary == 4 || (primary == 3 && logical >= 1) {
				return nil, &diskerr.PrimaryPartitionsExceededError{}
			}
		}
	}

	built := b.Build()
	d.Partitions = append(d.Partitions, built)
	d.logger.Debugf("added partition to %s: %s", d.DevicePath, litter.Sdump(built))
	return &d.Partitions[len(d.Partitions)-1], nil
}

// RemovePartition deletes the partition numbered n from the in-memory
// list, or -- if it is a source partition -- marks it Remove in place so
// the layout validator still sees it as present. A marked source
// partition becomes a remove_partitions entry in the next Diff; a dropped
// non-source entry was never on the device and simply no longer becomes
// a create.
func (d *Disk) RemovePartition(n int) error {
	for i := range d.Partitions {
		if d.Partitions[i].Number != n {
			continue
		}
		if d.Partitions[i].IsSource {
			d.Partitions[i].Remove = true
			return nil
		}
		d.Partitions = append(d.Partitions[:i], d.Partitions[i+1:]...)
		return nil
	}
	return &diskerr.PartitionNotFoundError{Number: n}
}

// ResizePartition mutates partition n's end sector to start+length. The
// new range is checked for overlap before the end sector is written, so a
// failed resize leaves the disk byte-identical to before the call.
func (d *Disk) ResizePartition(n int, length uint64) error {
	if length < minResizeBytes/d.SectorSize {
		return &diskerr.ResizeTooSmallError{}
	}
	p, ok := d.GetPartitionMut(n)
	if !ok {
		return &diskerr.PartitionNotFoundError{Number: n}
	}

	prevEnd := p.EndSector
	newEnd := p.StartSector + length
	if num, overlap := d.overlapsRegion(p.StartSector, newEnd, d.indexOf(n)); overlap {
		return &diskerr.SectorOverlapsError{ID: num}
	}
	p.EndSector = newEnd
	d.logger.Debugf("resized partition %d on %s: end %d -> %d", n, d.DevicePath, prevEnd, newEnd)
	return nil
}

// MovePartition relocates partition n to begin at start, preserving its
// width. On overlap neither endpoint is changed.
func (d *Disk) MovePartition(n int, start uint64) error {
	p, ok := d.GetPartitionMut(n)
	if !ok {
		return &diskerr.PartitionNotFoundError{Number: n}
	}

	width := p.EndSector - p.StartSector
	newEnd := start + width
	if num, overlap := d.overlapsRegion(start, newEnd, d.indexOf(n)); overlap {
		return &diskerr.SectorOverlapsError{ID: num}
	}
	p.StartSector = start
	p.EndSector = newEnd
	return nil
}

// FormatPartition requests that partition n be reformatted to fs on
// commit.
func (d *Disk) FormatPartition(n int, fs filesystem.Type) error {
	p, ok := d.GetPartitionMut(n)
	if !ok {
		return &diskerr.PartitionNotFoundError{Number: n}
	}
	p.Format = true
	p.Filesystem = &fs
	return nil
}

// SetFlags replaces partition n's flag set outright -- for callers that
// have already computed the desired set, rather than an incremental
// add/remove. Diff picks the new set up from the target like any other
// edit.
func (d *Disk) SetFlags(n int, flags flag.Set) error {
	p, ok := d.GetPartitionMut(n)
	if !ok {
		return &diskerr.PartitionNotFoundError{Number: n}
	}
	p.Flags = flags.Clone()
	return nil
}
