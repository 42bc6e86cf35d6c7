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
	"reflect"
	"testing"

	"github.com/suse-edge/diskplan/pkg/filesystem"
)

// S1: diffing a clone of the source against itself produces an empty Ops.
func TestDiffNoOp(t *testing.T) {
	source := defaultDisk()
	target := source.Clone()

	ops := Diff(source, target)
	if len(ops.RemovePartitions) != 0 || len(ops.ChangePartitions) != 0 || len(ops.CreatePartitions) != 0 {
		t.Fatalf("expected empty ops, got %+v", ops)
	}
	if ops.Mklabel != NoTable {
		t.Fatalf("expected no relabel, got %v", ops.Mklabel)
	}
}

// S2: requesting a fresh label turns every target partition into a create.
func TestDiffRelabel(t *testing.T) {
	source := defaultDisk()
	target := source.Clone()
	target.Mklabel(Gpt)

	if _, err := target.AddPartition(bootPart(2048)); err != nil {
		t.Fatalf("AddPartition: %v", err)
	}
	if _, err := target.AddPartition(rootPart(1_026_048)); err != nil {
		t.Fatalf("AddPartition: %v", err)
	}

	ops := Diff(source, target)
	if ops.Mklabel != Gpt {
		t.Fatalf("expected Gpt relabel, got %v", ops.Mklabel)
	}
	if len(ops.RemovePartitions) != 0 || len(ops.ChangePartitions) != 0 {
		t.Fatalf("relabel diff must carry no removes/changes, got %+v", ops)
	}
	if len(ops.CreatePartitions) != 2 {
		t.Fatalf("expected 2 creates, got %d", len(ops.CreatePartitions))
	}
}

// S3: the mixed scenario from the original fixture -- two removes by
// identity, one reformat+resize, one more remove, and two appended
// creates.
func TestDiffMixed(t *testing.T) {
	source := defaultDisk()
	target := source.Clone()

	if err := target.RemovePartition(1); err != nil {
		t.Fatalf("RemovePartition(1): %v", err)
	}
	if err := target.RemovePartition(2); err != nil {
		t.Fatalf("RemovePartition(2): %v", err)
	}
	if err := target.FormatPartition(3, filesystem.Xfs); err != nil {
		t.Fatalf("FormatPartition(3): %v", err)
	}
	if err := target.ResizePartition(3, gib20); err != nil {
		t.Fatalf("ResizePartition(3): %v", err)
	}
	if err := target.RemovePartition(4); err != nil {
		t.Fatalf("RemovePartition(4): %v", err)
	}
	if _, err := target.AddPartition(bootPart(2048)); err != nil {
		t.Fatalf("AddPartition(boot): %v", err)
	}
	if _, err := target.AddPartition(rootPart(1_026_048)); err != nil {
		t.Fatalf("AddPartition(root): %v", err)
	}

	ops := Diff(source, target)

	if !reflect.DeepEqual(ops.RemovePartitions, []int{1, 2, 4}) {
		t.Fatalf("remove_partitions = %v, want [1 2 4]", ops.RemovePartitions)
	}

	if len(ops.ChangePartitions) != 1 {
		t.Fatalf("expected 1 change, got %d: %+v", len(ops.ChangePartitions), ops.ChangePartitions)
	}
	ch := ops.ChangePartitions[0]
	if ch.Number != 3 || ch.Start != 420_456_448 || ch.End != 420_456_448+gib20 {
		t.Fatalf("unexpected change: %+v", ch)
	}
	if ch.Format == nil || *ch.Format != filesystem.Xfs {
		t.Fatalf("expected Xfs reformat, got %+v", ch.Format)
	}
	if len(ch.Flags) != 0 {
		t.Fatalf("expected no flag diff, got %+v", ch.Flags)
	}

	if len(ops.CreatePartitions) != 2 {
		t.Fatalf("expected 2 creates, got %d", len(ops.CreatePartitions))
	}
	boot, root := ops.CreatePartitions[0], ops.CreatePartitions[1]
	if boot.Start != 2048 || boot.End != 1_024_000+2047 || boot.Filesystem == nil || *boot.Filesystem != filesystem.Fat16 {
		t.Fatalf("unexpected boot create: %+v", boot)
	}
	if root.Start != 1_026_048 || root.End != gib20+1_026_047 || root.Filesystem == nil || *root.Filesystem != filesystem.Ext4 {
		t.Fatalf("unexpected root create: %+v", root)
	}
}
