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

package sys

import (
	"context"
	"io"
	"os/exec"
	"strings"

	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/log"
)

// Runner executes external commands. All subprocess invocations in the
// project go through this interface so tests can intercept them.
type Runner interface {
	Run(command string, args ...string) ([]byte, error)
	RunContext(ctx context.Context, command string, args ...string) ([]byte, error)
	// RunInput runs a command feeding it the given reader on stdin and, if
	// dir is not empty, with the given working directory.
	RunInput(ctx context.Context, input io.Reader, dir string, command string, args ...string) ([]byte, error)
	LookPath(command string) (string, error)
}

type runner struct {
	logger log.Logger
}

func NewRunner(logger log.Logger) Runner {
	return &runner{logger: logger}
}

func (r *runner) Run(command string, args ...string) ([]byte, error) {
	return r.RunContext(context.Background(), command, args...)
}

func (r *runner) RunContext(ctx context.Context, command string, args ...string) ([]byte, error) {
	return r.RunInput(ctx, nil, "", command, args...)
}

func (r *runner) RunInput(ctx context.Context, input io.Reader, dir string, command string, args ...string) ([]byte, error) {
	r.logger.Debug("Running cmd: '%s %s'", command, strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Stdin = input
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		r.logger.Debug("'%s' output: %s", command, string(out))
	}
	return out, err
}

func (r *runner) LookPath(command string) (string, error) {
	return exec.LookPath(command)
}
