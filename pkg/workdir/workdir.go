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

// Package workdir manages the ephemeral work area owning all intermediate
// artifacts of a single run. The area never survives the process: Close is
// expected to be registered on the process wide cleanup stack.
package workdir

import (
	"fmt"

	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/sys"
	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/sys/vfs"
)

type WorkDir struct {
	Path string

	s *sys.System
}

// New creates a fresh work area under base, or under the system temporary
// directory if base is empty.
func New(s *sys.System, base string) (*WorkDir, error) {
	path, err := vfs.TempDir(s.FS(), base, "isobuilder")
	if err != nil {
		return nil, fmt.Errorf("creating work area: %w", err)
	}
	s.Logger().Debug("Created work area '%s'", path)
	return &WorkDir{Path: path, s: s}, nil
}

// Close deletes the work area and everything below it. Extracted ISO trees
// are mostly read-only, so write permission is forced first.
func (w *WorkDir) Close() error {
	if w.Path == "" {
		return nil
	}
	err := vfs.ForceWritable(w.s.FS(), w.Path)
	if err != nil {
		w.s.Logger().Warn("Could not force write permissions on '%s': %s", w.Path, err.Error())
	}
	err = w.s.FS().RemoveAll(w.Path)
	if err != nil {
		return fmt.Errorf("removing work area '%s': %w", w.Path, err)
	}
	w.s.Logger().Debug("Removed work area '%s'", w.Path)
	w.Path = ""
	return nil
}
