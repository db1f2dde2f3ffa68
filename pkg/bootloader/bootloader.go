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

// Package bootloader rewrites the bootloader configurations of an extracted
// installer tree so the media boots straight into the unattended entry,
// both via legacy BIOS (isolinux) and UEFI (grub).
package bootloader

import (
	"fmt"
	"strings"

	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/sys"
)

// Bootloader forces the unattended boot entry of one firmware flavor.
type Bootloader interface {
	Name() string
	// ForceUnattended edits the configuration under the extracted tree.
	// The edit is idempotent, directives are never duplicated.
	ForceUnattended(treeDir string) error
}

// Defaults returns the bootloaders of a hybrid BIOS+UEFI Debian image.
func Defaults(s *sys.System) []Bootloader {
	return []Bootloader{NewIsolinux(s), NewGrub(s)}
}

// editConfig rewrites a configuration file in place through the given
// transform, temporarily lifting the read-only permission the extracted
// tree carries and restoring the original mode afterwards.
func editConfig(s *sys.System, path string, transform func([]string) []string) error {
	fsys := s.FS()

	info, err := fsys.Stat(path)
	if err != nil {
		return fmt.Errorf("inspecting '%s': %w", path, err)
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading '%s': %w", path, err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	lines = transform(lines)
	out := strings.Join(lines, "\n") + "\n"

	if out == string(data) {
		s.Logger().Debug("No changes for '%s'", path)
		return nil
	}

	err = fsys.Chmod(path, info.Mode().Perm()|0o200)
	if err != nil {
		return fmt.Errorf("unlocking '%s': %w", path, err)
	}

	err = fsys.WriteFile(path, []byte(out), info.Mode().Perm()|0o200)
	if err != nil {
		return fmt.Errorf("writing '%s': %w", path, err)
	}

	err = fsys.Chmod(path, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("restoring permissions on '%s': %w", path, err)
	}
	return nil
}

// hasLine reports whether any line, once trimmed, equals the given one.
func hasLine(lines []string, line string) bool {
	for _, l := range lines {
		if strings.TrimSpace(l) == line {
			return true
		}
	}
	return false
}

// hasPrefix reports whether any line, once trimmed, starts with the prefix.
func hasPrefix(lines []string, prefix string) bool {
	for _, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), prefix) {
			return true
		}
	}
	return false
}
