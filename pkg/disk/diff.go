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
	"github.com/suse-edge/diskplan/pkg/filesystem"
	"github.com/suse-edge/diskplan/pkg/flag"
	"github.com/suse-edge/diskplan/pkg/partition"
)

// PartitionChange is an in-place mutation of an existing (source)
// partition: a new geometry, an optional reformat, and the flags added
// since source.
type PartitionChange struct {
	Number     int
	Start, End uint64
	Format     *filesystem.Type
	Flags      flag.Set
}

// PartitionCreate is a not-yet-placed partition to be created with this
// exact geometry, type, filesystem and flags.
type PartitionCreate struct {
	Start, End uint64
	PartType   partition.Type
	Filesystem *filesystem.Type
	Flags      flag.Set
	Name       string
}

// Ops is the minimal, ordered sequence of destructive operations that
// turns source into target, consumed by the commit engine in the order
// Mklabel < Remove < Change < Create.
type Ops struct {
	DevicePath string
	// Mklabel is the requested fresh table kind, or NoTable if no relabel
	// is requested.
	Mklabel          Table
	RemovePartitions []int
	ChangePartitions []PartitionChange
	CreatePartitions []PartitionCreate
}

// Diff computes the Ops that carry source to target. target must already
// have passed ValidateLayout against source -- Diff does not itself
// re-validate.
func Diff(source, target *Disk) Ops {
	ops := Ops{DevicePath: source.DevicePath}

	if target.Mklabel {
		ops.Mklabel = target.TableType
		for i := range target.Partitions {
			ops.CreatePartitions = append(ops.CreatePartitions, partitionCreateFrom(&target.Partitions[i]))
		}
		return ops
	}

	n := len(source.Partitions)
	for i := 0; i < n; i++ {
		s := &source.Partitions[i]
		t := &target.Partitions[i]

		if t.Remove {
			ops.RemovePartitions = append(ops.RemovePartitions, s.Number)
			continue
		}
		if !s.RequiresChanges(t) {
			continue
		}

		change := PartitionChange{
			Number: s.Number,
			Start:  t.StartSector,
			End:    t.EndSector,
			Flags:  flag.Diff(s.Flags, t.Flags),
		}
		if t.Format && t.Filesystem != nil {
			fs := *t.Filesystem
			change.Format = &fs
		}
		ops.ChangePartitions = append(ops.ChangePartitions, change)
	}

	for i := n; i < len(target.Partitions); i++ {
		ops.CreatePartitions = append(ops.CreatePartitions, partitionCreateFrom(&target.Partitions[i]))
	}

	return ops
}

func partitionCreateFrom(p *partition.Info) PartitionCreate {
	return PartitionCreate{
		Start:      p.StartSector,
		End:        p.EndSector,
		PartType:   p.PartType,
		Filesystem: p.Filesystem,
		Flags:      p.Flags.Clone(),
		Name:       p.Name,
	}
}
