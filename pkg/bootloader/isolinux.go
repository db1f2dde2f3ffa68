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
	"regexp"

	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/sys"
)

const (
	isolinuxCfg = "isolinux/isolinux.cfg"

	// isolinuxTimeout is in tenths of a second. The stock image ships with
	// 'timeout 0' which waits for a key forever on some firmware.
	isolinuxTimeout = "timeout 100"
	// isolinuxDefault selects the automated install label. In syslinux the
	// last 'default' directive wins, so appending is sufficient.
	isolinuxDefault = "default auto"
)

var isolinuxTimeoutRe = regexp.MustCompile(`^timeout\s+\d+$`)

// Isolinux forces the unattended entry on the legacy BIOS bootloader.
type Isolinux struct {
	s *sys.System
}

func NewIsolinux(s *sys.System) *Isolinux {
	return &Isolinux{s}
}

func (b *Isolinux) Name() string {
	return "isolinux"
}

func (b *Isolinux) ForceUnattended(treeDir string) error {
	path := filepath.Join(treeDir, isolinuxCfg)
	b.s.Logger().Info("Forcing unattended default entry in %s", path)

	err := editConfig(b.s, path, func(lines []string) []string {
		for i, line := range lines {
			if isolinuxTimeoutRe.MatchString(line) && line != isolinuxTimeout {
				lines[i] = isolinuxTimeout
			}
		}
		if !hasLine(lines, isolinuxDefault) {
			lines = append(lines, isolinuxDefault)
		}
		return lines
	})
	if err != nil {
		return fmt.Errorf("patching legacy bootloader config: %w", err)
	}
	return nil
}
