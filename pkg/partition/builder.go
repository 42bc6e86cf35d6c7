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

package partition

import (
	"github.com/suse-edge/diskplan/pkg/filesystem"
	"github.com/suse-edge/diskplan/pkg/flag"
)

// Builder describes a partition that doesn't exist yet. Disk.AddPartition
// consumes one and appends the Info it Builds with Number set to -1.
type Builder struct {
	start, end uint64
	fs         filesystem.Type
	partType   Type
	name       string
	flags      flag.Set
	target     string
}

// NewBuilder starts a builder for a Primary partition spanning
// [start, end] inclusive, with the given filesystem.
func NewBuilder(start, end uint64, fs filesystem.Type) Builder {
	return Builder{start: start, end: end, fs: fs, partType: Primary}
}

// AsLogical marks the partition as an MSDOS logical partition instead of
// primary.
func (b Builder) AsLogical() Builder {
	b.partType = Logical
	return b
}

// WithName sets a GPT partition label. Callers must not set this for
// MSDOS targets; Disk.AddPartition does not itself reject it, since name
// validity depends on the disk's table_type which the builder doesn't see.
func (b Builder) WithName(name string) Builder {
	b.name = name
	return b
}

// WithFlags attaches the given flags to the built partition.
func (b Builder) WithFlags(flags ...flag.Flag) Builder {
	b.flags = append(b.flags, flags...)
	return b
}

// WithTarget records the desired future mount point.
func (b Builder) WithTarget(target string) Builder {
	b.target = target
	return b
}

// Start returns the builder's start sector, for overlap/bounds checks
// ahead of committing to Build.
func (b Builder) Start() uint64 { return b.start }

// End returns the builder's end sector, for overlap/bounds checks ahead of
// committing to Build.
func (b Builder) End() uint64 { return b.end }

// PartType returns the builder's partition class.
func (b Builder) PartType() Type { return b.partType }

// Build produces the non-source Info this builder describes.
func (b Builder) Build() Info {
	fs := b.fs
	return Info{
		Number:      -1,
		StartSector: b.start,
		EndSector:   b.end,
		PartType:    b.partType,
		Filesystem:  &fs,
		Flags:       b.flags.Clone(),
		Name:        b.name,
		Target:      b.target,
		IsSource:    false,
		Format:      false,
	}
}
