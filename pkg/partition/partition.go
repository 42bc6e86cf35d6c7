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

// Package partition holds the immutable-identity, mutable-intent record of
// a single partition, plus the builder used to describe a not-yet-placed
// one.
package partition

import (
	"github.com/suse-edge/diskplan/pkg/filesystem"
	"github.com/suse-edge/diskplan/pkg/flag"
)

// Type distinguishes MSDOS partition classes. GPT disks only ever use
// Primary.
type Type int

const (
	Primary Type = iota
	Logical
)

func (t Type) String() string {
	if t == Logical {
		return "logical"
	}
	return "primary"
}

// Info is one partition, as held in a Disk's partition list. A partition
// that was present on disk at probe time (IsSource) may be mutated or
// marked for Remove, but must never simply vanish from the list -- that
// distinction is what the layout validator enforces.
type Info struct {
	// Number is 1-based and assigned by the partition-table library for
	// source partitions; -1 means "not yet placed".
	Number int

	// StartSector and EndSector are both inclusive.
	StartSector uint64
	EndSector   uint64

	PartType Type

	// Filesystem is nil until a filesystem is known or requested.
	Filesystem *filesystem.Type

	Flags flag.Set

	// Name is a GPT-only partition label; must be empty on MSDOS disks.
	Name string

	DevicePath string
	MountPoint string // observed current mount point
	Target     string // desired future mount point; independent of MountPoint

	IsSource bool
	Remove   bool
	Format   bool
	Active   bool
	Busy     bool
	Swapped  bool
}

// IsSamePartitionAs reports whether other identifies the same partition as
// info, for the purposes of the layout validator: same number, same start.
// The end sector, flags, and format request may all have changed.
func (info *Info) IsSamePartitionAs(other *Info) bool {
	return info.Number == other.Number && info.StartSector == other.StartSector
}

// RequiresChanges reports whether other differs from info in any field the
// differ must turn into a PartitionChange: boundaries, a requested
// reformat, or flags.
func (info *Info) RequiresChanges(other *Info) bool {
	if info.StartSector != other.StartSector || info.EndSector != other.EndSector {
		return true
	}
	if other.Format && (other.Filesystem == nil || info.Filesystem == nil || *other.Filesystem != *info.Filesystem) {
		return true
	}
	if !info.Flags.Equal(other.Flags) {
		return true
	}
	return false
}

// BlockInfo is the per-partition projection used only to emit fstab lines.
type BlockInfo struct {
	UUID    string
	Mount   string
	FS      string
	Options string
	Dump    bool
	Pass    bool
}

// GetBlockInfo returns the fstab projection for info, or false if info has
// no Target (nothing to mount, nothing to emit).
func (info *Info) GetBlockInfo(uuid string) (BlockInfo, bool) {
	if info.Target == "" || info.Filesystem == nil {
		return BlockInfo{}, false
	}

	options := "defaults"
	if info.Flags.Contains(flag.ESP) {
		options = "noatime"
	}

	pass := false
	if info.Target == "/" {
		pass = true
	}

	return BlockInfo{
		UUID:    uuid,
		Mount:   info.Target,
		FS:      info.Filesystem.MountName(),
		Options: options,
		Dump:    false,
		Pass:    pass,
	}, true
}
