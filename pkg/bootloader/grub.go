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

package bootloader

import (
	"fmt"
	"path/filepath"

	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/sys"
)

const (
	grubCfg = "boot/grub/grub.cfg"

	// grubDefault points at 'Advanced options' > 'Automated install' on the
	// stock Debian menu layout.
	grubDefault = `set default="2>5"`
	grubTimeout = "set timeout=5"
)

// Grub forces the unattended entry on the UEFI bootloader.
type Grub struct {
	s *sys.System
}

func NewGrub(s *sys.System) *Grub {
	return &Grub{s}
}

func (b *Grub) Name() string {
	return "grub"
}

func (b *Grub) ForceUnattended(treeDir string) error {
	path := filepath.Join(treeDir, grubCfg)
	b.s.Logger().Info("Forcing unattended default entry in %s", path)

	err := editConfig(b.s, path, func(lines []string) []string {
		if !hasPrefix(lines, "set default=") {
			lines = append(lines, grubDefault)
		}
		if !hasPrefix(lines, "set timeout=") {
			lines = append(lines, grubTimeout)
		}
		return lines
	})
	if err != nil {
		return fmt.Errorf("patching UEFI bootloader config: %w", err)
	}
	return nil
}
