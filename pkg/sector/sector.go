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

// Package sector translates human-facing disk boundary specifiers into
// absolute sector numbers.
package sector

import "math"

// Kind distinguishes the unit a Sector value is expressed in.
type Kind int

const (
	// Start is the first sector on which a partition should begin.
	Start Kind = iota
	// End is the last sector on which a partition should end.
	End
	// Unit is a raw sector count.
	Unit
	// Megabyte is a decimal (1_000_000 byte) megabyte count.
	Megabyte
	// Percent is a value in 0..=65535 mapping to 0%..=100%.
	Percent
)

// Sector specifies a disk boundary declaratively, so that callers don't
// have to duplicate sector arithmetic for "90%" or "20 MB" style input.
type Sector struct {
	Kind  Kind
	Value uint64
}

// alignmentBytes is the offset reserved at the start and end of the disk so
// the first/last partition doesn't collide with the protective MBR, GPT
// headers, or a bootloader's embedding area.
const alignmentBytes = 2 * 1024 * 1024

// AtStart returns the Start sector specifier.
func AtStart() Sector { return Sector{Kind: Start} }

// AtEnd returns the End sector specifier.
func AtEnd() Sector { return Sector{Kind: End} }

// AtUnit returns a raw sector count specifier.
func AtUnit(n uint64) Sector { return Sector{Kind: Unit, Value: n} }

// AtMegabyte returns a decimal-megabyte specifier.
func AtMegabyte(n uint64) Sector { return Sector{Kind: Megabyte, Value: n} }

// AtPercent returns a specifier where Value is interpreted out of 65535.
func AtPercent(p uint16) Sector { return Sector{Kind: Percent, Value: uint64(p)} }

// Geometry is the subset of Disk needed to resolve a Sector; kept separate
// from pkg/disk to avoid an import cycle between the two packages.
type Geometry struct {
	Size       uint64
	SectorSize uint64
}

// Resolve computes the absolute sector corresponding to s on the given
// geometry. It is a pure function: callers are responsible for bounds
// checking the result against the geometry (e.g. via a subsequent
// AddPartition call), since Resolve itself cannot fail.
func Resolve(s Sector, g Geometry) uint64 {
	switch s.Kind {
	case Start:
		return alignmentBytes / g.SectorSize
	case End:
		return g.Size - (alignmentBytes / g.SectorSize)
	case Unit:
		return s.Value
	case Megabyte:
		return (s.Value * 1_000_000) / g.SectorSize
	case Percent:
		return ((g.Size * g.SectorSize) / uint64(math.MaxUint16)) * s.Value / g.SectorSize
	default:
		return 0
	}
}

// MiBToSectors converts a size in mebibytes to a sector count for the given
// sector size.
func MiBToSectors(mib uint64, sectorSize uint64) uint64 {
	return (mib * 1024 * 1024) / sectorSize
}

// SectorsToMiB converts a sector count back to mebibytes for the given
// sector size.
func SectorsToMiB(sectors uint64, sectorSize uint64) uint64 {
	return (sectors * sectorSize) / (1024 * 1024)
}
