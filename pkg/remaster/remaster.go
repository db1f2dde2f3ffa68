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

// Package remaster mutates an extracted Debian installer tree into an
// unattended installer and masters it back into a hybrid BIOS+UEFI ISO.
// The steps are order dependent and none of them is retryable on its own.
package remaster

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/bootloader"
	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/checksum"
	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/sys"
	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/sys/vfs"
)

const (
	xorriso = "xorriso"

	initrdDir   = "install.amd"
	initrdName  = "initrd"
	isolinuxBin = "isolinux/isolinux.bin"
	bootCatalog = "isolinux/boot.cat"
	efiImage    = "boot/grub/efi.img"

	// mbrTemplateSize is the amount of bytes taken from the head of the
	// source image and replayed as the hybrid MBR of the new one.
	mbrTemplateSize = 432

	// OutputPrefix is prepended to the source image base name to build the
	// output image name.
	OutputPrefix = "preseed-"

	defaultLabel = "DEBIAN_PRESEED"
)

type Remaster struct {
	s   *sys.System
	ctx context.Context

	bls       []bootloader.Bootloader
	outputDir string
	label     string
}

type Option func(*Remaster)

// WithBootloaders overrides the default bootloader editors.
func WithBootloaders(bls ...bootloader.Bootloader) Option {
	return func(r *Remaster) {
		r.bls = bls
	}
}

// WithOutputDir places the mastered image in the given directory instead of
// the current one.
func WithOutputDir(dir string) Option {
	return func(r *Remaster) {
		r.outputDir = dir
	}
}

func WithLabel(label string) Option {
	return func(r *Remaster) {
		r.label = label
	}
}

func New(ctx context.Context, s *sys.System, opts ...Option) *Remaster {
	r := &Remaster{
		s:         s,
		ctx:       ctx,
		outputDir: ".",
		label:     defaultLabel,
	}
	for _, o := range opts {
		o(r)
	}
	if r.bls == nil {
		r.bls = bootloader.Defaults(s)
	}
	return r
}

// Run executes the full mutation pipeline on the given source image and
// returns the path of the mastered output image. workDir owns every
// intermediate artifact; the preseed document is expected to live directly
// under it.
func (r *Remaster) Run(iso, preseedPath, workDir string) (string, error) {
	tree := filepath.Join(workDir, "iso")

	err := r.Extract(iso, tree)
	if err != nil {
		return "", err
	}

	err = r.InjectInitrd(tree, preseedPath)
	if err != nil {
		return "", err
	}

	for _, bl := range r.bls {
		err = bl.ForceUnattended(tree)
		if err != nil {
			return "", err
		}
	}

	err = checksum.WriteManifest(r.s.FS(), tree)
	if err != nil {
		return "", fmt.Errorf("recomputing checksum manifest: %w", err)
	}

	return r.Master(iso, tree, workDir)
}

// Extract unpacks the source image filesystem into treeDir.
func (r *Remaster) Extract(iso, treeDir string) error {
	r.s.Logger().Info("Extracting '%s' to '%s'", iso, treeDir)

	err := vfs.MkdirAll(r.s.FS(), treeDir, vfs.DirPerm)
	if err != nil {
		return fmt.Errorf("creating extraction directory '%s': %w", treeDir, err)
	}

	args := []string{
		"-osirrox", "on:auto_chmod_on", "-overwrite", "nondir", "-indev", iso, "-extract", "/", treeDir,
	}
	out, err := r.s.Runner().RunContext(r.ctx, xorriso, args...)
	r.s.Logger().Debug("xorriso output: %s", string(out))
	if err != nil {
		return fmt.Errorf("failed extracting '%s' to '%s': %w", iso, treeDir, err)
	}
	return nil
}

// InjectInitrd appends the preseed document as a new entry of the initial
// ramdisk so the installer finds it before asking any question. This is an
// archive append, every pre-existing entry is preserved.
func (r *Remaster) InjectInitrd(treeDir, preseedPath string) (err error) {
	logger := r.s.Logger()
	fsys := r.s.FS()

	dir := filepath.Join(treeDir, initrdDir)
	initrd := filepath.Join(dir, initrdName)
	initrdGz := initrd + ".gz"

	logger.Info("Injecting '%s' into '%s'", preseedPath, initrdGz)

	dirInfo, err := fsys.Stat(dir)
	if err != nil {
		return fmt.Errorf("inspecting boot files directory '%s': %w", dir, err)
	}
	gzInfo, err := fsys.Stat(initrdGz)
	if err != nil {
		return fmt.Errorf("inspecting ramdisk '%s': %w", initrdGz, err)
	}

	err = fsys.Chmod(dir, dirInfo.Mode().Perm()|0o200)
	if err != nil {
		return fmt.Errorf("unlocking '%s': %w", dir, err)
	}
	defer func() {
		rErr := fsys.Chmod(dir, dirInfo.Mode().Perm())
		if err == nil && rErr != nil {
			err = fmt.Errorf("restoring permissions on '%s': %w", dir, rErr)
		}
	}()

	err = fsys.Chmod(initrdGz, gzInfo.Mode().Perm()|0o200)
	if err != nil {
		return fmt.Errorf("unlocking '%s': %w", initrdGz, err)
	}

	out, err := r.s.Runner().RunContext(r.ctx, "gzip", "-d", initrdGz)
	if err != nil {
		return fmt.Errorf("decompressing ramdisk '%s': %s: %w", initrdGz, string(out), err)
	}

	list := strings.NewReader(filepath.Base(preseedPath) + "\n")
	out, err = r.s.Runner().RunInput(
		r.ctx, list, filepath.Dir(preseedPath),
		"cpio", "-H", "newc", "-o", "-A", "-F", initrd,
	)
	if err != nil {
		return fmt.Errorf("appending preseed document to ramdisk: %s: %w", string(out), err)
	}

	out, err = r.s.Runner().RunContext(r.ctx, "gzip", initrd)
	if err != nil {
		return fmt.Errorf("recompressing ramdisk '%s': %s: %w", initrd, string(out), err)
	}

	err = fsys.Chmod(initrdGz, gzInfo.Mode().Perm())
	if err != nil {
		return fmt.Errorf("restoring permissions on '%s': %w", initrdGz, err)
	}
	return nil
}

// Master creates the hybrid bootable output image from the mutated tree,
// replaying the first bytes of the source image as MBR template. The output
// image is named after the source one and written beside the invocation
// location, never inside the work area.
func (r *Remaster) Master(iso, treeDir, workDir string) (string, error) {
	logger := r.s.Logger()
	fsys := r.s.FS()

	mbrTemplate := filepath.Join(workDir, "isohdpfx.bin")
	head, err := vfs.ReadHead(fsys, iso, mbrTemplateSize)
	if err != nil {
		return "", fmt.Errorf("capturing hybrid MBR template: %w", err)
	}
	err = fsys.WriteFile(mbrTemplate, head, vfs.FilePerm)
	if err != nil {
		return "", fmt.Errorf("writing hybrid MBR template '%s': %w", mbrTemplate, err)
	}

	// xorriso patches the boot info table into the loader binary.
	binPath := filepath.Join(treeDir, isolinuxBin)
	binInfo, err := fsys.Stat(binPath)
	if err != nil {
		return "", fmt.Errorf("inspecting legacy boot image '%s': %w", binPath, err)
	}
	err = fsys.Chmod(binPath, binInfo.Mode().Perm()|0o200)
	if err != nil {
		return "", fmt.Errorf("unlocking legacy boot image '%s': %w", binPath, err)
	}

	output := filepath.Join(r.outputDir, OutputPrefix+filepath.Base(iso))
	logger.Info("Mastering '%s'", output)

	args := []string{
		"-as", "mkisofs",
		"-r", "-J",
		"-V", r.label,
		"-o", output,
		"-isohybrid-mbr", mbrTemplate,
		"-b", isolinuxBin,
		"-c", bootCatalog,
		"-no-emul-boot", "-boot-load-size", "4", "-boot-info-table",
		"-eltorito-alt-boot",
		"-e", efiImage,
		"-no-emul-boot", "-isohybrid-gpt-basdat",
		treeDir,
	}
	out, err := r.s.Runner().RunContext(r.ctx, xorriso, args...)
	logger.Debug("xorriso output: %s", string(out))
	if err != nil {
		return "", fmt.Errorf("mastering output image '%s': %w", output, err)
	}

	err = r.writeChecksum(output)
	if err != nil {
		return "", err
	}
	return output, nil
}

// writeChecksum stores the digest of the output image beside it.
func (r *Remaster) writeChecksum(output string) error {
	sum, err := checksum.SHA512(r.s.FS(), output)
	if err != nil {
		return fmt.Errorf("computing output image checksum: %w", err)
	}

	checksumFile := output + ".sha512"
	content := fmt.Sprintf("%s  %s\n", sum, filepath.Base(output))
	err = r.s.FS().WriteFile(checksumFile, []byte(content), vfs.FilePerm)
	if err != nil {
		return fmt.Errorf("writing output checksum file '%s': %w", checksumFile, err)
	}
	return nil
}
