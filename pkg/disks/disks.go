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

// Package disks operates on a whole probed fleet of disk.Disk records:
// locating a partition by its desired mount target, checking the fleet
// satisfies a bootloader's layout requirements, and rendering an fstab.
package disks

import (
	"fmt"
	"strings"

	"github.com/suse-edge/diskplan/pkg/disk"
	"github.com/suse-edge/diskplan/pkg/flag"
	"github.com/suse-edge/diskplan/pkg/partition"
)

// Bootloader is the target firmware interface, which decides whether an
// EFI system partition is required alongside root.
type Bootloader int

const (
	Bios Bootloader = iota
	Efi
)

// Disks is every disk.Disk probed on the system.
type Disks []*disk.Disk

// FindPartition returns the device path and partition.Info whose Target
// matches target, or false if no partition on any disk claims it.
func (d Disks) FindPartition(target string) (string, *partition.Info, bool) {
	for _, dk := range d {
		for i := range dk.Partitions {
			if dk.Partitions[i].Target == target {
				return dk.Path(), &dk.Partitions[i], true
			}
		}
	}
	return "", nil, false
}

// VerifyPartitions checks the fleet has a root partition, and -- for Efi
// -- an EFI system partition carrying the ESP flag, before any format or
// commit is attempted.
func (d Disks) VerifyPartitions(bootloader Bootloader) error {
	if _, _, ok := d.FindPartition("/"); !ok {
		return fmt.Errorf("root partition was not defined")
	}

	if bootloader == Efi {
		_, efi, ok := d.FindPartition("/boot/efi")
		if !ok {
			return fmt.Errorf("EFI partition was not defined")
		}
		if !efi.Flags.Contains(flag.ESP) {
			return fmt.Errorf("EFI partition did not have ESP flag set")
		}
	}

	return nil
}

// BasePartitions is the root (and, for Efi, EFI system) partition a
// bootloader install needs.
type BasePartitions struct {
	RootDevice string
	Root       *partition.Info
	EfiDevice  string
	Efi        *partition.Info
}

// GetBasePartitions returns the root (and EFI, when required) partitions
// the bootloader install needs. Unlike the original, this never panics:
// a caller that skipped VerifyPartitions gets an error instead of an
// unchecked assumption.
func (d Disks) GetBasePartitions(bootloader Bootloader) (BasePartitions, error) {
	rootDevice, root, ok := d.FindPartition("/")
	if !ok {
		return BasePartitions{}, fmt.Errorf("no root partition: run VerifyPartitions first")
	}

	out := BasePartitions{RootDevice: rootDevice, Root: root}
	if bootloader != Efi {
		return out, nil
	}

	efiDevice, efi, ok := d.FindPartition("/boot/efi")
	if !ok {
		return BasePartitions{}, fmt.Errorf("no EFI partition: run VerifyPartitions first")
	}
	out.EfiDevice = efiDevice
	out.Efi = efi
	return out, nil
}

// UUIDResolver looks up the filesystem UUID for a partition device path,
// used only by GenerateFstab.
type UUIDResolver func(devicePath string) (string, error)

// GenerateFstab renders one fstab line per partition with both a Target
// and a Filesystem, in
// <UUID> <mount> <fs> <options> <dump> <pass> column order.
func (d Disks) GenerateFstab(resolveUUID UUIDResolver) (string, error) {
	var sb strings.Builder
	for _, dk := range d {
		for i := range dk.Partitions {
			p := &dk.Partitions[i]
			uuid, err := partitionUUID(dk, p, resolveUUID)
			if err != nil {
				return "", err
			}
			info, ok := p.GetBlockInfo(uuid)
			if !ok {
				continue
			}
			dump := "0"
			if info.Dump {
				dump = "1"
			}
			pass := "0"
			if info.Pass {
				pass = "1"
			}
			fmt.Fprintf(&sb, "UUID=%s  %s  %s  %s  %s  %s\n", info.UUID, info.Mount, info.FS, info.Options, dump, pass)
		}
	}
	return sb.String(), nil
}

func partitionUUID(d *disk.Disk, p *partition.Info, resolveUUID UUIDResolver) (string, error) {
	if p.Target == "" || p.Filesystem == nil {
		return "", nil
	}
	if resolveUUID == nil {
		return "", nil
	}
	return resolveUUID(p.DevicePath)
}
