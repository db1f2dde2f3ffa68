/*
Copyright © 2025-2026 AnyLinQ B.V.
SPDX-License-Identifier: Apache-2.0

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

package remaster_test

import (
	"context"
	"crypto/sha512"
	"fmt"
	"slices"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/log"
	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/remaster"
	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/sys"
	sysmock "github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/sys/mock"
	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/sys/vfs"
)

func TestRemasterSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Remaster test suite")
}

const sourceISO = "/data/debian-12.5.0-amd64-netinst.iso"

var _ = Describe("Remaster", Label("remaster"), func() {
	var tfs vfs.FS
	var s *sys.System
	var runner *sysmock.Runner
	var cleanup func()
	var r *remaster.Remaster
	var sideEffects map[string]func(...string) ([]byte, error)
	BeforeEach(func() {
		var err error
		runner = sysmock.NewRunner()
		sideEffects = map[string]func(...string) ([]byte, error){}

		tfs, cleanup, err = sysmock.TestFS(map[string]any{
			sourceISO:                          strings.Repeat("iso-head-", 64),
			"/work/preseed.cfg":                "#_preseed_V1\nd-i passwd/username string alice\n",
			"/work/iso/install.amd/initrd.gz":  "ramdisk",
			"/work/iso/isolinux/isolinux.cfg":  "timeout 0\ndefault vesamenu.c32\n",
			"/work/iso/isolinux/isolinux.bin":  "loader",
			"/work/iso/boot/grub/grub.cfg":     "insmod gfxterm\n",
			"/work/iso/md5sum.txt":             "stale\n",
			"/output/.keep":                    []byte{},
		})
		Expect(err).NotTo(HaveOccurred())
		s, err = sys.NewSystem(
			sys.WithRunner(runner),
			sys.WithFS(tfs),
			sys.WithLogger(log.New(log.WithDiscardAll())),
		)
		Expect(err).NotTo(HaveOccurred())

		runner.SideEffect = func(cmd string, args ...string) ([]byte, error) {
			if f := sideEffects[cmd]; f != nil {
				return f(args...)
			}
			return runner.ReturnValue, runner.ReturnError
		}
		sideEffects["gzip"] = func(args ...string) ([]byte, error) {
			if args[0] == "-d" {
				data, err := tfs.ReadFile(args[1])
				if err != nil {
					return nil, err
				}
				plain := strings.TrimSuffix(args[1], ".gz")
				if err := tfs.WriteFile(plain, data, vfs.FilePerm); err != nil {
					return nil, err
				}
				return nil, tfs.Remove(args[1])
			}
			data, err := tfs.ReadFile(args[0])
			if err != nil {
				return nil, err
			}
			if err := tfs.WriteFile(args[0]+".gz", data, vfs.FilePerm); err != nil {
				return nil, err
			}
			return nil, tfs.Remove(args[0])
		}
		sideEffects["xorriso"] = func(args ...string) ([]byte, error) {
			if i := slices.Index(args, "-o"); i >= 0 {
				return nil, tfs.WriteFile(args[i+1], []byte("mastered image"), vfs.FilePerm)
			}
			return nil, nil
		}

		r = remaster.New(context.Background(), s, remaster.WithOutputDir("/output"))
	})
	AfterEach(func() {
		cleanup()
	})

	It("runs the full pipeline in order", func() {
		output, err := r.Run(sourceISO, "/work/preseed.cfg", "/work")
		Expect(err).NotTo(HaveOccurred())
		Expect(output).To(Equal("/output/preseed-debian-12.5.0-amd64-netinst.iso"))

		Expect(runner.MatchMilestones([][]string{
			{"xorriso", "-osirrox"},
			{"gzip", "-d"},
			{"cpio", "-H", "newc", "-o", "-A"},
			{"gzip", "/work/iso/install.amd/initrd"},
			{"xorriso", "-as", "mkisofs"},
		})).To(Succeed())
	})
	It("feeds the preseed document name to the archive append", func() {
		_, err := r.Run(sourceISO, "/work/preseed.cfg", "/work")
		Expect(err).NotTo(HaveOccurred())
		Expect(string(runner.InputFor("cpio"))).To(Equal("preseed.cfg\n"))
	})
	It("recompresses the ramdisk after the append", func() {
		_, err := r.Run(sourceISO, "/work/preseed.cfg", "/work")
		Expect(err).NotTo(HaveOccurred())
		Expect(vfs.Exists(tfs, "/work/iso/install.amd/initrd.gz")).To(BeTrue())
		Expect(vfs.Exists(tfs, "/work/iso/install.amd/initrd")).To(BeFalse())
	})
	It("forces the unattended entry on both bootloaders", func() {
		_, err := r.Run(sourceISO, "/work/preseed.cfg", "/work")
		Expect(err).NotTo(HaveOccurred())

		isolinux, err := tfs.ReadFile("/work/iso/isolinux/isolinux.cfg")
		Expect(err).NotTo(HaveOccurred())
		Expect(string(isolinux)).To(ContainSubstring("timeout 100"))
		Expect(string(isolinux)).To(ContainSubstring("default auto"))

		grub, err := tfs.ReadFile("/work/iso/boot/grub/grub.cfg")
		Expect(err).NotTo(HaveOccurred())
		Expect(string(grub)).To(ContainSubstring(`set default="2>5"`))
	})
	It("regenerates the checksum manifest of the tree", func() {
		_, err := r.Run(sourceISO, "/work/preseed.cfg", "/work")
		Expect(err).NotTo(HaveOccurred())

		data, err := tfs.ReadFile("/work/iso/md5sum.txt")
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).NotTo(Equal("stale\n"))
		Expect(string(data)).To(ContainSubstring("./isolinux/isolinux.bin"))
		Expect(string(data)).NotTo(ContainSubstring("md5sum.txt"))
	})
	It("captures the hybrid MBR template from the source image", func() {
		_, err := r.Run(sourceISO, "/work/preseed.cfg", "/work")
		Expect(err).NotTo(HaveOccurred())

		head, err := tfs.ReadFile("/work/isohdpfx.bin")
		Expect(err).NotTo(HaveOccurred())
		Expect(head).To(HaveLen(432))
		Expect(head).To(Equal([]byte(strings.Repeat("iso-head-", 64))[:432]))
	})
	It("masters with the loader, catalog and EFI image wired", func() {
		_, err := r.Run(sourceISO, "/work/preseed.cfg", "/work")
		Expect(err).NotTo(HaveOccurred())
		Expect(runner.IncludesCmds([][]string{
			{"xorriso", "-as", "mkisofs", "-r", "-J", "-V", "DEBIAN_PRESEED"},
		})).To(Succeed())
	})
	It("writes the digest of the output image beside it", func() {
		output, err := r.Run(sourceISO, "/work/preseed.cfg", "/work")
		Expect(err).NotTo(HaveOccurred())

		data, err := tfs.ReadFile(output + ".sha512")
		Expect(err).NotTo(HaveOccurred())
		sum := fmt.Sprintf("%x", sha512.Sum512([]byte("mastered image")))
		Expect(string(data)).To(Equal(sum + "  preseed-debian-12.5.0-amd64-netinst.iso\n"))
	})
	It("works on a read-only extracted tree", func() {
		Expect(tfs.Chmod("/work/iso/install.amd/initrd.gz", vfs.ReadOnlyPerm)).To(Succeed())
		Expect(tfs.Chmod("/work/iso/isolinux/isolinux.cfg", vfs.ReadOnlyPerm)).To(Succeed())
		Expect(tfs.Chmod("/work/iso/isolinux/isolinux.bin", vfs.ReadOnlyPerm)).To(Succeed())
		Expect(tfs.Chmod("/work/iso/install.amd", vfs.FileMode(0o555))).To(Succeed())

		_, err := r.Run(sourceISO, "/work/preseed.cfg", "/work")
		Expect(err).NotTo(HaveOccurred())

		info, err := tfs.Stat("/work/iso/install.amd")
		Expect(err).NotTo(HaveOccurred())
		Expect(info.Mode().Perm()).To(Equal(vfs.FileMode(0o555)))
	})
	It("fails when the ramdisk is missing", func() {
		Expect(tfs.Remove("/work/iso/install.amd/initrd.gz")).To(Succeed())
		_, err := r.Run(sourceISO, "/work/preseed.cfg", "/work")
		Expect(err).To(MatchError(ContainSubstring("inspecting ramdisk")))
	})
	It("fails when extraction fails", func() {
		sideEffects["xorriso"] = func(args ...string) ([]byte, error) {
			return []byte("extraction error"), fmt.Errorf("xorriso failed")
		}
		_, err := r.Run(sourceISO, "/work/preseed.cfg", "/work")
		Expect(err).To(MatchError(ContainSubstring("xorriso failed")))
	})
	It("fails when the archive append fails", func() {
		sideEffects["cpio"] = func(args ...string) ([]byte, error) {
			return nil, fmt.Errorf("cpio failed")
		}
		_, err := r.Run(sourceISO, "/work/preseed.cfg", "/work")
		Expect(err).To(MatchError(ContainSubstring("cpio failed")))
	})
})
