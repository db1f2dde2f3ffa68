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

// Package mock provides test doubles for the sys package collaborators.
package mock

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
)

// Runner is a Runner implementation recording every invocation. Tests can
// set ReturnValue/ReturnError for a flat behavior or hook a SideEffect to
// fake individual commands.
type Runner struct {
	ReturnValue []byte
	ReturnError error
	SideEffect  func(command string, args ...string) ([]byte, error)

	cmds   [][]string
	inputs map[string][]byte
}

func NewRunner() *Runner {
	return &Runner{
		ReturnValue: []byte{},
		inputs:      map[string][]byte{},
	}
}

func (r *Runner) Run(command string, args ...string) ([]byte, error) {
	return r.RunContext(context.Background(), command, args...)
}

func (r *Runner) RunContext(_ context.Context, command string, args ...string) ([]byte, error) {
	r.cmds = append(r.cmds, append([]string{command}, args...))
	if r.SideEffect != nil {
		return r.SideEffect(command, args...)
	}
	return r.ReturnValue, r.ReturnError
}

func (r *Runner) RunInput(ctx context.Context, input io.Reader, _ string, command string, args ...string) ([]byte, error) {
	if input != nil {
		data, err := io.ReadAll(input)
		if err != nil {
			return nil, err
		}
		r.inputs[command] = data
	}
	return r.RunContext(ctx, command, args...)
}

func (r *Runner) LookPath(command string) (string, error) {
	if r.SideEffect != nil {
		_, err := r.SideEffect(command)
		if err != nil {
			return "", err
		}
	}
	return "/usr/bin/" + command, nil
}

// InputFor returns the stdin bytes captured for the given command.
func (r *Runner) InputFor(command string) []byte {
	return r.inputs[command]
}

// ClearCmds wipes the recorded command history.
func (r *Runner) ClearCmds() {
	r.cmds = nil
}

// CmdsMatch checks that the recorded commands match, in order and number,
// the given list. Each expected command is compared as a prefix of the
// recorded one so trailing arguments can be omitted.
func (r *Runner) CmdsMatch(cmdList [][]string) error {
	if len(cmdList) != len(r.cmds) {
		return fmt.Errorf("expected %d commands, got %d: %v", len(cmdList), len(r.cmds), r.cmds)
	}
	for i, cmd := range cmdList {
		got := r.cmds[i]
		if len(got) < len(cmd) || !slices.Equal(got[:len(cmd)], cmd) {
			return fmt.Errorf("expected command %d to start with '%s', got '%s'",
				i, strings.Join(cmd, " "), strings.Join(got, " "))
		}
	}
	return nil
}

// MatchMilestones checks that the given command prefixes appear in the
// recorded history in the given relative order, ignoring other commands.
func (r *Runner) MatchMilestones(milestones [][]string) error {
	idx := 0
	for _, cmd := range r.cmds {
		if idx == len(milestones) {
			break
		}
		m := milestones[idx]
		if len(cmd) >= len(m) && slices.Equal(cmd[:len(m)], m) {
			idx++
		}
	}
	if idx < len(milestones) {
		return fmt.Errorf("milestone '%s' not found in %v", strings.Join(milestones[idx], " "), r.cmds)
	}
	return nil
}

// IncludesCmds checks that every given command prefix was recorded at least
// once, in any order.
func (r *Runner) IncludesCmds(cmdList [][]string) error {
	for _, cmd := range cmdList {
		found := false
		for _, got := range r.cmds {
			if len(got) >= len(cmd) && slices.Equal(got[:len(cmd)], cmd) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("command '%s' not found in %v", strings.Join(cmd, " "), r.cmds)
		}
	}
	return nil
}
