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

// Package sys bundles the host facing collaborators (logger, subprocess
// runner and filesystem) into a single value that is passed explicitly to
// every stage instead of relying on ambient globals.
package sys

import (
	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/log"
	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/sys/vfs"
)

type System struct {
	logger log.Logger
	runner Runner
	fs     vfs.FS
}

type Option func(*System)

func WithLogger(logger log.Logger) Option {
	return func(s *System) {
		s.logger = logger
	}
}

func WithRunner(runner Runner) Option {
	return func(s *System) {
		s.runner = runner
	}
}

func WithFS(fs vfs.FS) Option {
	return func(s *System) {
		s.fs = fs
	}
}

// NewSystem returns a System with real collaborators for every option not
// explicitly provided.
func NewSystem(opts ...Option) (*System, error) {
	s := &System{}
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		s.logger = log.New()
	}
	if s.fs == nil {
		s.fs = vfs.OSFS
	}
	if s.runner == nil {
		s.runner = NewRunner(s.logger)
	}
	return s, nil
}

func (s *System) Logger() log.Logger {
	return s.logger
}

func (s *System) Runner() Runner {
	return s.runner
}

func (s *System) FS() vfs.FS {
	return s.fs
}
