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

package probe_test

import (
	"context"
	"testing"

	"github.com/jaypipes/ghw/pkg/block"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/twpayne/go-vfs/v5/vfst"

	"github.com/suse-edge/diskplan/pkg/disk"
	"github.com/suse-edge/diskplan/pkg/partition"
	"github.com/suse-edge/diskplan/pkg/probe"
	"github.com/suse-edge/diskplan/pkg/table"
)

func TestProbeSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "probe test suite")
}

type fakeHandle struct {
	kind       disk.Table
	partitions []partition.Info
}

func (h *fakeHandle) ReadLabel() (disk.Table, []partition.Info, error) {
	return h.kind, h.partitions, nil
}
func (h *fakeHandle) WriteLabel(disk.Table, []partition.Info) ([]partition.Info, error) { return nil, nil }
func (h *fakeHandle) Close() error                                                       { return nil }

type fakeOpener struct{ handle *fakeHandle }

func (o *fakeOpener) Open(string, uint64) (table.Handle, error) { return o.handle, nil }

var _ = Describe("Prober", Label("probe"), func() {
	It("cross-references mounts, swaps, and skips loop/unknown devices", func() {
		fs, cleanup, err := vfst.NewTestFS(map[string]interface{}{
			"/proc/mounts": "/dev/sda1 /boot/efi vfat rw 0 0\n",
			"/proc/swaps":  "Filename\t\t\t\tType\t\tSize\tUsed\tPriority\n/dev/sda2       partition\t2097148\t0\t-2\n",
		})
		Expect(err).Should(BeNil())
		defer cleanup()

		handle := &fakeHandle{
			kind: disk.Gpt,
			partitions: []partition.Info{
				{Number: 1, StartSector: 2048, EndSector: 1026047, PartType: partition.Primary},
				{Number: 2, StartSector: 1026048, EndSector: 42966016, PartType: partition.Primary},
			},
		}

		p := probe.NewProber(&fakeOpener{handle: handle}, fs, probe.WithBlockFunc(func() (*block.Info, error) {
			return &block.Info{Disks: []*block.Disk{
				{Name: "loop0", DriveType: block.DRIVE_TYPE_UNKNOWN},
				{Name: "sda", Model: "QEMU HARDDISK", SerialNumber: "drive-scsi0-0-0-0", SizeBytes: 21474836480, PhysicalBlockSizeBytes: 512, DriveType: block.DRIVE_TYPE_SSD},
			}}, nil
		}))

		disks, err := p.ProbeDevices(context.Background())
		Expect(err).Should(BeNil())
		Expect(disks).To(HaveLen(1))

		d := disks[0]
		Expect(d.DevicePath).To(Equal("/dev/sda"))
		Expect(d.Serial).To(Equal("drive-scsi0-0-0-0"))
		Expect(d.TableType).To(Equal(disk.Gpt))
		Expect(d.Partitions).To(HaveLen(2))
		Expect(d.Partitions[0].MountPoint).To(Equal("/boot/efi"))
		Expect(d.Partitions[1].Swapped).To(BeTrue())

		again, err := p.Probe(context.Background(), "drive-scsi0-0-0-0")
		Expect(err).Should(BeNil())
		Expect(again.DevicePath).To(Equal("/dev/sda"))
	})
})
