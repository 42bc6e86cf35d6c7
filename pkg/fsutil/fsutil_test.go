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

package fsutils_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/twpayne/go-vfs/v5"
	"github.com/twpayne/go-vfs/v5/vfst"

	fsutils "github.com/suse-edge/diskplan/pkg/fsutil"
)

func TestFsutilSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "fsutils test suite")
}

var _ = Describe("fsutils", Label("fsutils"), func() {
	var fs vfs.FS
	var cleanup func()

	BeforeEach(func() {
		var err error
		fs, cleanup, err = vfst.NewTestFS(map[string]interface{}{
			"/proc/swaps": "Filename\t\t\t\tType\t\tSize\tUsed\tPriority\n/dev/sdz4       partition\t2097148\t0\t-2\n",
		})
		Expect(err).Should(BeNil())
	})

	AfterEach(func() {
		cleanup()
	})

	Describe("Exists", Label("exists"), func() {
		It("reports true for a file that is there", func() {
			ok, err := fsutils.Exists(fs, "/proc/swaps")
			Expect(err).Should(BeNil())
			Expect(ok).To(BeTrue())
		})

		It("reports false, not an error, for a missing path", func() {
			ok, err := fsutils.Exists(fs, "/proc/does-not-exist")
			Expect(err).Should(BeNil())
			Expect(ok).To(BeFalse())
		})
	})

	Describe("MkdirAll", Label("mkdirall"), func() {
		It("creates nested directories", func() {
			Expect(fsutils.MkdirAll(fs, "/a/b/c", 0700)).To(Succeed())
			isDir, err := fsutils.IsDir(fs, "/a/b/c")
			Expect(err).Should(BeNil())
			Expect(isDir).To(BeTrue())
		})
	})

	Describe("TempDir", Label("tempdir"), func() {
		It("returns a predictable path under a vfst.TestFS", func() {
			name, err := fsutils.TempDir(fs, "/tmp", "diskplan-")
			Expect(err).Should(BeNil())
			Expect(name).To(Equal("/tmp/diskplan-"))
		})
	})

	Describe("ReadLines", Label("readlines"), func() {
		It("splits /proc/swaps without a trailing blank line", func() {
			lines, err := fsutils.ReadLines(fs, "/proc/swaps")
			Expect(err).Should(BeNil())
			Expect(lines).To(HaveLen(2))
			Expect(lines[1]).To(ContainSubstring("/dev/sdz4"))
		})
	})
})
