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

// Package probe enumerates block devices via ghw and builds the in-memory
// disk.Disk records the rest of the core edits and commits. Mounts and
// swaps are cross-referenced from /proc so a freshly probed Disk already
// knows which of its partitions are busy.
package probe

import (
	"context"
	"fmt"
	"strings"

	"github.com/jaypipes/ghw"
	"github.com/jaypipes/ghw/pkg/block"
	ghwUtil "github.com/jaypipes/ghw/pkg/util"
	sdkTypes "github.com/kairos-io/kairos-sdk/types"
	"github.com/twpayne/go-vfs/v5"

	"github.com/suse-edge/diskplan/pkg/disk"
	"github.com/suse-edge/diskplan/pkg/diskerr"
	"github.com/suse-edge/diskplan/pkg/table"
)

// Prober enumerates and re-probes block devices through ghw, matching the
// role Disk::new/Disks::probe_devices play in the original core.
type Prober struct {
	Opener  table.Opener
	FS      vfs.FS
	Logger  sdkTypes.KairosLogger
	blockFn func() (*block.Info, error)
}

// Option configures a Prober at construction time.
type Option func(*Prober)

func WithLogger(l sdkTypes.KairosLogger) Option { return func(p *Prober) { p.Logger = l } }

// WithBlockFunc overrides how the ghw block inventory is obtained, so
// tests can supply a fixed one instead of inspecting the real machine.
func WithBlockFunc(f func() (*block.Info, error)) Option {
	return func(p *Prober) { p.blockFn = f }
}

// NewProber wires a Prober that reads partition-table detail for each
// device through opener and resolves paths through fsys.
func NewProber(opener table.Opener, fsys vfs.FS, opts ...Option) *Prober {
	p := &Prober{
		Opener: opener,
		FS:     fsys,
		Logger: sdkTypes.NewKairosLogger("probe", "info", false),
		blockFn: func() (*block.Info, error) {
			return block.New(ghw.WithDisableTools(), ghw.WithDisableWarnings())
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProbeDevices enumerates every disk ghw reports, skipping unusable
// device types, and returns one disk.Disk per remaining device --
// mirroring Disks::probe_devices' DeviceType skip-list.
func (p *Prober) ProbeDevices(ctx context.Context) ([]*disk.Disk, error) {
	info, err := p.blockFn()
	if err != nil {
		return nil, &diskerr.DeviceProbeError{Why: err}
	}

	mounts, err := readMounts(p.FS)
	if err != nil {
		return nil, &diskerr.MountsObtainError{Why: err}
	}
	swaps, err := readSwaps(p.FS)
	if err != nil {
		return nil, &diskerr.MountsObtainError{Why: err}
	}

	var disks []*disk.Disk
	for _, d := range info.Disks {
		if d.DriveType == block.DRIVE_TYPE_UNKNOWN || strings.HasPrefix(d.Name, "loop") {
			continue
		}
		built, err := p.buildDisk(d, mounts, swaps)
		if err != nil {
			return nil, err
		}
		disks = append(disks, built)
	}
	return disks, nil
}

// Probe re-probes the single device whose serial is serial, satisfying
// pkg/commit.Prober. Returns diskerr.InvalidSerialError if no currently
// attached device reports that serial -- the device node may have moved.
func (p *Prober) Probe(ctx context.Context, serial string) (*disk.Disk, error) {
	disks, err := p.ProbeDevices(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range disks {
		if d.Serial == serial {
			return d, nil
		}
	}
	return nil, &diskerr.InvalidSerialError{}
}

// FromName obtains the disk at devicePath, mirroring Disk::from_name: the
// one-shot lookup a caller makes before it has a serial to re-match by.
func (p *Prober) FromName(ctx context.Context, devicePath string) (*disk.Disk, error) {
	disks, err := p.ProbeDevices(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range disks {
		if d.DevicePath == devicePath {
			return d, nil
		}
	}
	return nil, &diskerr.DeviceGetError{Why: fmt.Errorf("no such device: %s", devicePath)}
}

// Reload re-probes d by serial (falling back across device nodes the way
// Disk::from_name_with_serial does) and carries over every Target the
// in-memory d had recorded, matched back up by start sector -- mirroring
// Disk::reload's mounts/target preservation.
func (p *Prober) Reload(ctx context.Context, d *disk.Disk) (*disk.Disk, error) {
	type mount struct {
		start  uint64
		target string
	}
	var mounts []mount
	for _, part := range d.Partitions {
		if part.Target != "" {
			mounts = append(mounts, mount{start: part.StartSector, target: part.Target})
		}
	}

	fresh, err := p.Probe(ctx, d.Serial)
	if err != nil {
		return nil, err
	}

	for _, m := range mounts {
		for i := range fresh.Partitions {
			if fresh.Partitions[i].StartSector == m.start {
				fresh.Partitions[i].Target = m.target
				break
			}
		}
	}
	return fresh, nil
}

func (p *Prober) buildDisk(d *block.Disk, mounts map[string]mountEntry, swaps map[string]bool) (*disk.Disk, error) {
	devicePath := fmt.Sprintf("/dev/%s", d.Name)
	serial := d.SerialNumber
	if serial == "" || serial == ghwUtil.UNKNOWN {
		var err error
		serial, err = serialFromByID(p.FS, devicePath)
		if err != nil {
			p.Logger.Debugf("no serial for %s: %s", devicePath, err)
		}
	}

	sectorSize := d.PhysicalBlockSizeBytes
	if sectorSize == 0 {
		sectorSize = 512
	}
	sizeSectors := d.SizeBytes / sectorSize

	out := disk.New(d.Model, serial, devicePath, sizeSectors, sectorSize, d.DriveType.String(), d.IsRemovable,
		disk.NoTable, disk.WithLogger(p.Logger))

	handle, err := p.Opener.Open(devicePath, sectorSize)
	if err != nil {
		p.Logger.Debugf("no partition table on %s: %s", devicePath, err)
		return out, nil
	}
	defer handle.Close()

	kind, partitions, err := handle.ReadLabel()
	if err != nil {
		return nil, &diskerr.DiskNewError{Why: err}
	}
	out.TableType = kind

	for i := range partitions {
		partitions[i].IsSource = true
		partitions[i].DevicePath = partitionDevicePath(devicePath, partitions[i].Number)
		if m, ok := mounts[partitions[i].DevicePath]; ok {
			partitions[i].MountPoint = m.mountpoint
		}
		partitions[i].Swapped = swaps[partitions[i].DevicePath]
	}
	out.Partitions = partitions

	return out, nil
}

func partitionDevicePath(devicePath string, number int) string {
	if number <= 0 {
		return ""
	}
	last := devicePath[len(devicePath)-1]
	if last >= '0' && last <= '9' {
		return fmt.Sprintf("%sp%d", devicePath, number)
	}
	return fmt.Sprintf("%s%d", devicePath, number)
}
