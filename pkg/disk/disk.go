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

// Package disk models a block device and its partition table in memory:
// the record itself (this file), the builder-style editing operations
// (ops.go), the layout validator (validate.go) and the differ
// (diff.go). None of these touch a real device -- that is pkg/table and
// pkg/commit's job.
package disk

import (
	sdkTypes "github.com/kairos-io/kairos-sdk/types"

	"github.com/suse-edge/diskplan/pkg/partition"
	"github.com/suse-edge/diskplan/pkg/sector"
)

// Table identifies a partition-table kind, or its absence.
type Table int

const (
	// NoTable means the disk has not been labeled yet.
	NoTable Table = iota
	Msdos
	Gpt
)

func (t Table) String() string {
	switch t {
	case Msdos:
		return "msdos"
	case Gpt:
		return "gpt"
	default:
		return "none"
	}
}

// Disk is the in-memory record of one block device: its geometry, table
// kind, and ordered partition list. All of Disk's methods are pure
// in-memory edits -- nothing here opens the device. pkg/table and
// pkg/commit apply a Disk's accumulated edits (via Diff) to the real
// device.
type Disk struct {
	// Model is the manufacturer-reported device model string.
	Model string
	// Serial is the stable identifier used to re-match this Disk across a
	// probe/commit/reload cycle; DevicePath is not, since device nodes can
	// be reassigned.
	Serial string
	// DevicePath is the transient device node, e.g. /dev/sda.
	DevicePath string
	// Size is the total sector count.
	Size uint64
	// SectorSize is the logical sector size in bytes.
	SectorSize uint64
	// DeviceType is the device kind as reported by the probe (e.g. "hdd",
	// "ssd", "nvme"); opaque to the core beyond logging and selection.
	DeviceType string
	// ReadOnly is the read-only flag recorded at construction. The builder
	// ops do not consult it and edit a ReadOnly disk like any other.
	ReadOnly bool

	// TableType is the partition-table kind, or NoTable if the disk hasn't
	// been labeled yet.
	TableType Table
	// Mklabel, once set by Mklabel, requests a fresh table of TableType be
	// written on commit. Setting it empties Partitions; every partition
	// present afterwards was added since and is created on commit.
	Mklabel bool

	// Partitions is kept in insertion order: source partitions in the
	// order the probe reported them, then partitions added by AddPartition
	// appended at the end. Nothing sorts it by StartSector.
	Partitions []partition.Info

	logger sdkTypes.KairosLogger
}

// Option configures a Disk at construction time.
type Option func(*Disk)

// WithLogger overrides the Disk's logger.
func WithLogger(l sdkTypes.KairosLogger) Option {
	return func(d *Disk) { d.logger = l }
}

// New constructs a Disk record for an already-probed device. Use Mklabel
// afterwards to request a fresh table instead of keeping an existing one.
func New(model, serial, devicePath string, size, sectorSize uint64, deviceType string, readOnly bool, table Table, opts ...Option) *Disk {
	d := &Disk{
		Model:      model,
		Serial:     serial,
		DevicePath: devicePath,
		Size:       size,
		SectorSize: sectorSize,
		DeviceType: deviceType,
		ReadOnly:   readOnly,
		TableType:  table,
		logger:     sdkTypes.NewKairosLogger("disk", "info", false),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Path returns the disk's current device node.
func (d *Disk) Path() string { return d.DevicePath }

// Geometry returns the sector.Geometry view of this disk, for resolving
// Sector specifiers.
func (d *Disk) Geometry() sector.Geometry {
	return sector.Geometry{Size: d.Size, SectorSize: d.SectorSize}
}

// GetSector resolves a Sector specifier against this disk's geometry.
func (d *Disk) GetSector(s sector.Sector) uint64 {
	return sector.Resolve(s, d.Geometry())
}

// GetPartitionMut returns a pointer into d.Partitions for the partition
// numbered n, so callers can inspect or directly mutate flags/target
// without going through a dedicated op, or false if no such partition
// exists.
func (d *Disk) GetPartitionMut(n int) (*partition.Info, bool) {
	for i := range d.Partitions {
		if d.Partitions[i].Number == n {
			return &d.Partitions[i], true
		}
	}
	return nil, false
}

// indexOf returns the slice index of the partition numbered n, or -1.
func (d *Disk) indexOf(n int) int {
	for i := range d.Partitions {
		if d.Partitions[i].Number == n {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of d, safe to mutate independently -- used by
// the CLI to derive an editable target from a probed source, and by tests
// exercising a "no-op diff against a clone of itself" scenario.
func (d *Disk) Clone() *Disk {
	out := *d
	out.Partitions = make([]partition.Info, len(d.Partitions))
	for i, p := range d.Partitions {
		cp := p
		cp.Flags = p.Flags.Clone()
		if p.Filesystem != nil {
			fs := *p.Filesystem
			cp.Filesystem = &fs
		}
		out.Partitions[i] = cp
	}
	return &out
}

func (d *Disk) primaryAndLogicalCounts() (primary, logical int) {
	for _, p := range d.Partitions {
		if p.Remove {
			continue
		}
		if p.PartType == partition.Logical {
			logical++
		} else {
			primary++
		}
	}
	return
}
