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

// Package filesystem enumerates the filesystem kinds the core knows how to
// request formatting for, and maps each to the external mkfs.* binary and
// mount-table name the commit engine and fstab generator need.
package filesystem

// Type is a supported partition filesystem.
type Type int

const (
	Btrfs Type = iota
	Exfat
	Ext2
	Ext3
	Ext4
	F2fs
	Fat16
	Fat32
	Ntfs
	Swap
	Xfs
)

// String returns the canonical lowercase name, which is also the
// mkfs.<name> suffix for every type except Fat16/Fat32 and Swap (see
// MkfsCommand).
func (t Type) String() string {
	switch t {
	case Btrfs:
		return "btrfs"
	case Exfat:
		return "exfat"
	case Ext2:
		return "ext2"
	case Ext3:
		return "ext3"
	case Ext4:
		return "ext4"
	case F2fs:
		return "f2fs"
	case Fat16:
		return "fat16"
	case Fat32:
		return "fat32"
	case Ntfs:
		return "ntfs"
	case Swap:
		return "swap"
	case Xfs:
		return "xfs"
	default:
		return "unknown"
	}
}

// MkfsCommand returns the external formatter binary for this filesystem,
// matching the naming the commit engine's Runner shells out to.
func (t Type) MkfsCommand() string {
	switch t {
	case Fat16, Fat32:
		return "mkfs.fat"
	case Swap:
		return "mkswap"
	default:
		return "mkfs." + t.String()
	}
}

// MountName returns the name the kernel/mount table knows this filesystem
// by, which is not always the same as the mkfs binary suffix (e.g. both
// Fat16 and Fat32 mount as "vfat").
func (t Type) MountName() string {
	switch t {
	case Fat16, Fat32:
		return "vfat"
	default:
		return t.String()
	}
}
