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

package disks_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/twpayne/go-vfs/v5/vfst"

	"github.com/suse-edge/diskplan/pkg/disks"
)

func TestDisksSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "disks test suite")
}

var _ = Describe("UUIDResolverFromFS", Label("disks"), func() {
	It("resolves a partition device path to its by-uuid symlink name", func() {
		fs, cleanup, err := vfst.NewTestFS(map[string]interface{}{
			"/dev/sda2": "",
			"/dev/disk/by-uuid/11111111-2222-3333-4444-555555555555": &vfst.Symlink{Target: "../../sda2"},
		})
		Expect(err).Should(BeNil())
		defer cleanup()

		resolve := disks.UUIDResolverFromFS(fs)
		uuid, err := resolve("/dev/sda2")
		Expect(err).Should(BeNil())
		Expect(uuid).To(Equal("11111111-2222-3333-4444-555555555555"))
	})

	It("returns an error when nothing resolves to the device", func() {
		fs, cleanup, err := vfst.NewTestFS(map[string]interface{}{
			"/dev/sda2": "",
		})
		Expect(err).Should(BeNil())
		defer cleanup()

		resolve := disks.UUIDResolverFromFS(fs)
		_, err = resolve("/dev/sda2")
		Expect(err).ShouldNot(BeNil())
	})
})
