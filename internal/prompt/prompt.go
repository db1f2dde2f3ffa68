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

// Package prompt gathers every operator input of a run. All prompts happen
// before the first mutating step, the pipeline itself never asks anything.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter reads interactive answers. The reader defaults to stdin with
// masked password entry; tests inject plain readers instead.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer

	passwordFd   int
	readPassword func(fd int) ([]byte, error)
	isTerminal   func(fd int) bool
}

type Option func(*Prompter)

// WithPasswordReader overrides masked password input, used in tests.
func WithPasswordReader(f func(fd int) ([]byte, error)) Option {
	return func(p *Prompter) {
		p.readPassword = f
		p.isTerminal = func(int) bool { return true }
	}
}

func New(in io.Reader, out io.Writer, opts ...Option) *Prompter {
	p := &Prompter{
		in:           bufio.NewReader(in),
		out:          out,
		passwordFd:   int(os.Stdin.Fd()),
		readPassword: term.ReadPassword,
		isTerminal:   term.IsTerminal,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Line asks a free text question and returns the trimmed answer.
func (p *Prompter) Line(question string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", question)
	answer, err := p.in.ReadString('\n')
	if err != nil && answer == "" {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

// Confirm asks a yes/no question. Empty input picks the default, anything
// not recognized as a yes/no token re-asks.
func (p *Prompter) Confirm(question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		answer, err := p.Line(fmt.Sprintf("%s [%s]", question, hint))
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, "Please answer 'yes' or 'no'.")
	}
}

// Username asks for the account name to create, re-asking while empty.
func (p *Prompter) Username() (string, error) {
	for {
		name, err := p.Line("Username for the created account")
		if err != nil {
			return "", err
		}
		if name != "" {
			return name, nil
		}
		fmt.Fprintln(p.out, "Username must not be empty.")
	}
}

// Password asks for the account password twice with echo suppressed and
// loops until both entries match and are non-empty. There is no retry
// limit.
func (p *Prompter) Password() (string, error) {
	for {
		first, err := p.secret("Password")
		if err != nil {
			return "", err
		}
		if first == "" {
			fmt.Fprintln(p.out, "Warning: password must not be empty.")
			continue
		}
		second, err := p.secret("Retype password")
		if err != nil {
			return "", err
		}
		if first == second {
			return first, nil
		}
		fmt.Fprintln(p.out, "Error: passwords do not match, try again.")
	}
}

func (p *Prompter) secret(question string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", question)
	if p.isTerminal(p.passwordFd) {
		data, err := p.readPassword(p.passwordFd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(data), nil
	}
	// Not a terminal, fall back to a plain line read.
	answer, err := p.in.ReadString('\n')
	if err != nil && answer == "" {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(answer, "\r\n"), nil
}

// Source is the operator's choice of installer image acquisition.
type Source struct {
	Download bool
	Path     string
}

// AcquireSource asks whether to download the latest image or use a local
// one. Any answer that is not a yes/no token is taken as a path itself.
func (p *Prompter) AcquireSource() (Source, error) {
	answer, err := p.Line("Download the latest Debian netinst image? [Y/n/<path>]")
	if err != nil {
		return Source{}, err
	}
	switch strings.ToLower(answer) {
	case "", "y", "yes":
		return Source{Download: true}, nil
	case "n", "no":
		path, err := p.Line("Path to the local installer image")
		if err != nil {
			return Source{}, err
		}
		return Source{Path: path}, nil
	default:
		return Source{Path: answer}, nil
	}
}
