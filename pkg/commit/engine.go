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

// Package commit executes a disk.Ops against a real device: relabel,
// then remove, then change, then create, syncing the kernel after each
// phase, formatting newly (re)created filesystems through the Runner
// abstraction. Mirrors Disk::commit in the original core: reprobe the
// device by serial to get a fresh source snapshot, diff it against the
// in-memory target, and apply.
package commit

import (
	"context"

	sdkTypes "github.com/kairos-io/kairos-sdk/types"
	"github.com/sanity-io/litter"
	"github.com/twpayne/go-vfs/v5"
	mountutils "k8s.io/mount-utils"

	"github.com/suse-edge/diskplan/pkg/disk"
	"github.com/suse-edge/diskplan/pkg/diskerr"
	"github.com/suse-edge/diskplan/pkg/filesystem"
	"github.com/suse-edge/diskplan/pkg/partition"
	"github.com/suse-edge/diskplan/pkg/runner"
	"github.com/suse-edge/diskplan/pkg/table"
)

// Prober reprobes a single device by its stable serial, used by Commit
// to obtain the authoritative pre-commit snapshot to diff against.
type Prober interface {
	Probe(ctx context.Context, serial string) (*disk.Disk, error)
}

// Engine executes DiskOps against real devices.
type Engine struct {
	Opener  table.Opener
	Prober  Prober
	Runner  runner.Runner
	Mounter mountutils.Interface
	FS      vfs.FS
	Logger  sdkTypes.KairosLogger

	// sync re-reads devicePath's partition table into the kernel after a
	// committed phase; overridable so tests don't need a real block device.
	sync func(devicePath string) error
}

// Option configures an Engine at construction time.
type Option func(*Engine)

func WithLogger(l sdkTypes.KairosLogger) Option { return func(e *Engine) { e.Logger = l } }
func WithRunner(r runner.Runner) Option         { return func(e *Engine) { e.Runner = r } }
func WithFS(fs vfs.FS) Option                   { return func(e *Engine) { e.FS = fs } }

// WithSyncFunc overrides the kernel-resync step, for tests that don't run
// against a real block device.
func WithSyncFunc(f func(devicePath string) error) Option {
	return func(e *Engine) { e.sync = f }
}

// NewEngine wires an Engine from its required collaborators, with
// optional overrides for tests.
func NewEngine(opener table.Opener, prober Prober, mounter mountutils.Interface, opts ...Option) *Engine {
	e := &Engine{
		Opener:  opener,
		Prober:  prober,
		Mounter: mounter,
		Runner:  &runner.RealRunner{},
		FS:      vfs.OSFS,
		Logger:  sdkTypes.NewKairosLogger("commit", "info", false),
		sync:    syncKernel,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Commit reprobes target's device by serial, validates and diffs the
// fresh snapshot against target, unmounts every source partition, then
// applies relabel/remove/change/create in order, syncing the kernel
// after each non-empty phase. Returns the freshly reprobed Disk.
func (e *Engine) Commit(ctx context.Context, target *disk.Disk) (*disk.Disk, error) {
	source, err := e.Prober.Probe(ctx, target.Serial)
	if err != nil {
		return nil, err
	}

	if err := disk.ValidateLayout(source, target); err != nil {
		return nil, err
	}
	ops := disk.Diff(source, target)
	e.Logger.Debugf("committing to %s: %s", ops.DevicePath, litter.Sdump(ops))

	if err := UnmountAllPartitions(e.Mounter, source.Partitions); err != nil {
		return nil, err
	}

	handle, err := e.Opener.Open(target.DevicePath, target.SectorSize)
	if err != nil {
		return nil, &diskerr.DiskNewError{Why: err}
	}
	defer handle.Close()

	current := clonePartitions(source.Partitions)

	if ops.Mklabel != disk.NoTable {
		if _, err := handle.WriteLabel(ops.Mklabel, nil); err != nil {
			return nil, &diskerr.DiskFreshError{Why: err}
		}
		if err := e.sync(target.DevicePath); err != nil {
			return nil, err
		}
		current = nil
	}

	if len(ops.RemovePartitions) > 0 {
		current = removeNumbers(current, ops.RemovePartitions)
		if _, err := handle.WriteLabel(target.TableType, current); err != nil {
			return nil, &diskerr.PartitionRemoveError{Number: ops.RemovePartitions[0], Why: err}
		}
		if err := e.sync(target.DevicePath); err != nil {
			return nil, err
		}
	}

	if len(ops.ChangePartitions) > 0 {
		current = applyChanges(current, ops.ChangePartitions)
		written, err := handle.WriteLabel(target.TableType, current)
		if err != nil {
			return nil, &diskerr.PartitionResizeError{Why: err}
		}
		current = written
		if err := e.sync(target.DevicePath); err != nil {
			return nil, err
		}
		for _, ch := range ops.ChangePartitions {
			if ch.Format == nil {
				continue
			}
			if err := e.formatChanged(target.DevicePath, ch); err != nil {
				return nil, err
			}
		}
	}

	if len(ops.CreatePartitions) > 0 {
		before := len(current)
		current = appendCreates(current, ops.CreatePartitions)
		written, err := handle.WriteLabel(target.TableType, current)
		if err != nil {
			return nil, &diskerr.PartitionCreateError{Why: err}
		}
		current = written
		if err := e.sync(target.DevicePath); err != nil {
			return nil, err
		}
		for i, c := range ops.CreatePartitions {
			p := current[before+i]
			if c.Filesystem == nil {
				continue
			}
			if err := e.formatCreated(target.DevicePath, p, *c.Filesystem); err != nil {
				return nil, err
			}
		}
	}

	return e.Prober.Probe(ctx, target.Serial)
}

func (e *Engine) formatChanged(devicePath string, ch disk.PartitionChange) error {
	dev, err := FindPartitionDevice(e.Runner, e.FS, devicePath, ch.Number)
	if err != nil {
		return &diskerr.PartitionFormatError{Why: err}
	}
	return FormatDevice(e.Runner, dev, *ch.Format, "")
}

func (e *Engine) formatCreated(devicePath string, p partition.Info, fs filesystem.Type) error {
	dev, err := FindPartitionDevice(e.Runner, e.FS, devicePath, p.Number)
	if err != nil {
		return &diskerr.PartitionFormatError{Why: err}
	}
	return FormatDevice(e.Runner, dev, fs, p.Name)
}

func clonePartitions(partitions []partition.Info) []partition.Info {
	out := make([]partition.Info, len(partitions))
	for i, p := range partitions {
		cp := p
		cp.Flags = p.Flags.Clone()
		out[i] = cp
	}
	return out
}

func removeNumbers(partitions []partition.Info, numbers []int) []partition.Info {
	remove := make(map[int]bool, len(numbers))
	for _, n := range numbers {
		remove[n] = true
	}
	out := partitions[:0:0]
	for _, p := range partitions {
		if !remove[p.Number] {
			out = append(out, p)
		}
	}
	return out
}

func applyChanges(partitions []partition.Info, changes []disk.PartitionChange) []partition.Info {
	byNumber := make(map[int]disk.PartitionChange, len(changes))
	for _, c := range changes {
		byNumber[c.Number] = c
	}
	out := make([]partition.Info, len(partitions))
	for i, p := range partitions {
		if c, ok := byNumber[p.Number]; ok {
			p.StartSector = c.Start
			p.EndSector = c.End
			if c.Format != nil {
				fs := *c.Format
				p.Filesystem = &fs
			}
			p.Flags = append(p.Flags.Clone(), c.Flags...)
		}
		out[i] = p
	}
	return out
}

func appendCreates(partitions []partition.Info, creates []disk.PartitionCreate) []partition.Info {
	out := make([]partition.Info, len(partitions), len(partitions)+len(creates))
	copy(out, partitions)
	for _, c := range creates {
		fs := c.Filesystem
		out = append(out, partition.Info{
			Number:      -1,
			StartSector: c.Start,
			EndSector:   c.End,
			PartType:    c.PartType,
			Filesystem:  fs,
			Flags:       c.Flags.Clone(),
			Name:        c.Name,
		})
	}
	return out
}
