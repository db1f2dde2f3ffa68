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

// Package hostdeps checks the external executables the remaster pipeline
// shells out to and, when one is missing, offers to install it through the
// host package manager.
package hostdeps

import (
	"context"
	"fmt"
	"strings"

	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/sys"
	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/sys/vfs"
)

// Required lists the executables the pipeline invokes. Downloading and
// digest computation are done in process, so no fetch or checksum tool is
// needed on the host.
var Required = []string{"xorriso", "cpio", "gzip", "openssl"}

const osReleasePath = "/etc/os-release"

// Confirmer asks the operator a yes/no question.
type Confirmer interface {
	Confirm(question string, def bool) (bool, error)
}

// Check verifies every required executable is resolvable. Missing tools
// trigger an interactive installation offer; a declined or failed
// installation is an error.
func Check(ctx context.Context, s *sys.System, c Confirmer) error {
	var missing []string
	for _, tool := range Required {
		_, err := s.Runner().LookPath(tool)
		if err != nil {
			missing = append(missing, tool)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	s.Logger().Warn("Missing required tools: %s", strings.Join(missing, ", "))
	ok, err := c.Confirm(fmt.Sprintf("Install missing tools (%s) now?", strings.Join(missing, ", ")), true)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("required tools not available: %s", strings.Join(missing, ", "))
	}

	return install(ctx, s, missing)
}

func install(ctx context.Context, s *sys.System, packages []string) error {
	manager, args, err := packageManager(s.FS())
	if err != nil {
		return err
	}

	args = append(args, packages...)
	out, err := s.Runner().RunContext(ctx, manager, args...)
	if err != nil {
		return fmt.Errorf("installing packages with %s: %s: %w", manager, string(out), err)
	}
	s.Logger().Info("Installed: %s", strings.Join(packages, ", "))
	return nil
}

// packageManager picks the install command from the host os-release ID.
func packageManager(fsys vfs.FS) (string, []string, error) {
	vars, err := vfs.LoadEnvFile(fsys, osReleasePath)
	if err != nil {
		return "", nil, fmt.Errorf("detecting host distribution: %w", err)
	}

	ids := vars["ID"]
	if like, ok := vars["ID_LIKE"]; ok {
		ids = ids + " " + like
	}

	for _, id := range strings.Fields(ids) {
		switch id {
		case "debian", "ubuntu":
			return "apt-get", []string{"install", "-y"}, nil
		case "opensuse", "suse", "sles":
			return "zypper", []string{"--non-interactive", "install"}, nil
		case "fedora", "rhel", "centos":
			return "dnf", []string{"install", "-y"}, nil
		}
	}
	return "", nil, fmt.Errorf("unsupported host distribution '%s'", vars["ID"])
}
