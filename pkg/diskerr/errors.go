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

// Package diskerr defines the error taxonomy shared by the geometry,
// validation, differ, commit, and probe layers. Each kind is its own type
// so callers can tell them apart with errors.As instead of string
// matching, mirroring the distinct variants of the original DiskError enum
// this taxonomy is translated from.
package diskerr

import "fmt"

// SectorOverlapsError reports that a proposed range overlaps the partition
// numbered ID.
type SectorOverlapsError struct {
	ID int
}

func (e *SectorOverlapsError) Error() string {
	return fmt.Sprintf("sector overlaps partition %d", e.ID)
}

// PartitionOOBError reports that a partition's end sector exceeds the disk.
type PartitionOOBError struct{}

func (e *PartitionOOBError) Error() string { return "partition exceeds size of disk" }

// ResizeTooSmallError reports a resize request below the minimum length.
type ResizeTooSmallError struct{}

func (e *ResizeTooSmallError) Error() string { return "partition resize value is too small" }

// PrimaryPartitionsExceededError reports an MSDOS primary/logical quota
// violation.
type PrimaryPartitionsExceededError struct{}

func (e *PrimaryPartitionsExceededError) Error() string {
	return "too many primary partitions in MSDOS partition table"
}

// PartitionNotFoundError reports that no partition with Number exists.
type PartitionNotFoundError struct {
	Number int
}

func (e *PartitionNotFoundError) Error() string {
	return fmt.Sprintf("partition %d not found on disk", e.Number)
}

// InvalidSerialError reports that the serial recorded for a Disk no longer
// matches any probed device.
type InvalidSerialError struct{}

func (e *InvalidSerialError) Error() string { return "serial model does not match" }

// LayoutChangedError reports that a target layout dropped or reordered a
// source partition.
type LayoutChangedError struct{}

func (e *LayoutChangedError) Error() string { return "partition layout on disk has changed" }

// PartitionTableNotFoundError reports that a disk has no partition table.
type PartitionTableNotFoundError struct{}

func (e *PartitionTableNotFoundError) Error() string {
	return "partition table not found on disk"
}

// DeviceGetError wraps a failure to look up a block device.
type DeviceGetError struct{ Why error }

func (e *DeviceGetError) Error() string { return fmt.Sprintf("unable to get device: %s", e.Why) }
func (e *DeviceGetError) Unwrap() error { return e.Why }

// DeviceProbeError reports that enumerating devices on the system failed.
type DeviceProbeError struct{ Why error }

func (e *DeviceProbeError) Error() string {
	return fmt.Sprintf("unable to probe for devices: %s", e.Why)
}
func (e *DeviceProbeError) Unwrap() error { return e.Why }

// DiskGetError reports that a disk could not be located.
type DiskGetError struct{}

func (e *DiskGetError) Error() string { return "unable to find disk" }

// DiskNewError wraps a failure opening a disk's partition table.
type DiskNewError struct{ Why error }

func (e *DiskNewError) Error() string { return fmt.Sprintf("unable to open disk: %s", e.Why) }
func (e *DiskNewError) Unwrap() error { return e.Why }

// SerialGetError wraps a failure reading a device's serial number.
type SerialGetError struct{ Why error }

func (e *SerialGetError) Error() string {
	return fmt.Sprintf("unable to get serial model of device: %s", e.Why)
}
func (e *SerialGetError) Unwrap() error { return e.Why }

// MountsObtainError wraps a failure reading mount information.
type MountsObtainError struct{ Why error }

func (e *MountsObtainError) Error() string {
	return fmt.Sprintf("unable to get mount points: %s", e.Why)
}
func (e *MountsObtainError) Unwrap() error { return e.Why }

// PartitionCreateError wraps a failure creating a partition on the table
// library.
type PartitionCreateError struct{ Why error }

func (e *PartitionCreateError) Error() string {
	return fmt.Sprintf("unable to create partition: %s", e.Why)
}
func (e *PartitionCreateError) Unwrap() error { return e.Why }

// PartitionRemoveError wraps a failure removing a numbered partition.
type PartitionRemoveError struct {
	Number int
	Why    error
}

func (e *PartitionRemoveError) Error() string {
	return fmt.Sprintf("unable to remove partition %d: %s", e.Number, e.Why)
}
func (e *PartitionRemoveError) Unwrap() error { return e.Why }

// PartitionResizeError wraps a failure resizing/moving a partition on the
// table library.
type PartitionResizeError struct{ Why error }

func (e *PartitionResizeError) Error() string { return fmt.Sprintf("unable to resize partition: %s", e.Why) }
func (e *PartitionResizeError) Unwrap() error { return e.Why }

// PartitionFormatError wraps a failure invoking the external formatter.
type PartitionFormatError struct{ Why error }

func (e *PartitionFormatError) Error() string {
	return fmt.Sprintf("unable to format partition: %s", e.Why)
}
func (e *PartitionFormatError) Unwrap() error { return e.Why }

// DiskCommitError wraps a failure committing changes to the table library.
type DiskCommitError struct{ Why error }

func (e *DiskCommitError) Error() string {
	return fmt.Sprintf("unable to commit changes to disk: %s", e.Why)
}
func (e *DiskCommitError) Unwrap() error { return e.Why }

// DiskSyncError wraps a failure to make the kernel re-read the table.
type DiskSyncError struct{ Why error }

func (e *DiskSyncError) Error() string {
	return fmt.Sprintf("unable to sync disk changes with OS: %s", e.Why)
}
func (e *DiskSyncError) Unwrap() error { return e.Why }

// DiskFreshError wraps a failure writing a fresh partition table.
type DiskFreshError struct{ Why error }

func (e *DiskFreshError) Error() string {
	return fmt.Sprintf("unable to format partition table: %s", e.Why)
}
func (e *DiskFreshError) Unwrap() error { return e.Why }

// UnmountError wraps one or more failures unmounting/swapoff-ing
// partitions ahead of a commit.
type UnmountError struct{ Why error }

func (e *UnmountError) Error() string {
	return fmt.Sprintf("unable to unmount partition(s): %s", e.Why)
}
func (e *UnmountError) Unwrap() error { return e.Why }

// NoFilesystemError reports that a partition has no recognizable
// filesystem, so fstab/mount-option derivation has nothing to report.
type NoFilesystemError struct{}

func (e *NoFilesystemError) Error() string { return "no file system was found on the partition" }
