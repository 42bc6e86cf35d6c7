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
	"errors"
	"testing"

	"github.com/suse-edge/diskplan/pkg/diskerr"
)

// Invariant 6: a clone of source always validates against source.
func TestValidateLayoutRoundTrip(t *testing.T) {
	source := defaultDisk()
	clone := source.Clone()
	if err := ValidateLayout(source, clone); err != nil {
		t.Fatalf("clone of source should validate, got %v", err)
	}
}

// A target missing a source partition is rejected.
func TestValidateLayoutMissingSource(t *testing.T) {
	source := defaultDisk()
	target := source.Clone()
	target.Partitions = target.Partitions[1:]

	err := ValidateLayout(source, target)
	var changed *diskerr.LayoutChangedError
	if !errors.As(err, &changed) {
		t.Fatalf("expected LayoutChangedError, got %v", err)
	}
}

// Invariant 7: appending new (non-source) partitions after the surviving
// sources is always legal.
func TestValidateLayoutAppendedPartitions(t *testing.T) {
	source := emptyDisk()
	target := source.Clone()
	if err := ValidateLayout(source, target); err != nil {
		t.Fatalf("two empty disks should validate, got %v", err)
	}

	if _, err := target.AddPartition(bootPart(2048)); err != nil {
		t.Fatalf("AddPartition: %v", err)
	}
	if err := ValidateLayout(source, target); err != nil {
		t.Fatalf("appending a new partition should still validate, got %v", err)
	}
}

// A target requesting a fresh label always validates, regardless of what
// source held.
func TestValidateLayoutMklabelSkipsCheck(t *testing.T) {
	source := defaultDisk()
	target := source.Clone()
	target.Mklabel(Gpt)

	if err := ValidateLayout(source, target); err != nil {
		t.Fatalf("mklabel target should always validate, got %v", err)
	}
}
