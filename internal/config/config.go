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

// Package config loads the optional answers file for non-interactive runs.
// Fields left empty fall back to interactive prompts.
package config

import (
	"fmt"

	"go.yaml.in/yaml/v3"

	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/sys/vfs"
)

// LatestISO is the keyword selecting a download of the currently published
// image instead of a local path.
const LatestISO = "latest"

// Answers mirrors the interactive prompts of a run.
type Answers struct {
	// ISO is a local image path, or the keyword 'latest' to download the
	// current published image.
	ISO          string `yaml:"iso"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	PasswordHash string `yaml:"password-hash"`
	Hardened     *bool  `yaml:"hardened"`
	OutputDir    string `yaml:"output-dir"`
	CacheDir     string `yaml:"cache-dir"`
}

// Load reads and validates an answers file.
func Load(fsys vfs.FS, path string) (*Answers, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading answers file '%s': %w", path, err)
	}

	a := &Answers{}
	err = yaml.Unmarshal(data, a)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling answers file '%s': %w", path, err)
	}

	err = a.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid answers file '%s': %w", path, err)
	}
	return a, nil
}

func (a *Answers) Validate() error {
	if a.Password != "" && a.PasswordHash != "" {
		return fmt.Errorf("'password' and 'password-hash' are mutually exclusive")
	}
	return nil
}

// IsLatest reports whether the image should be downloaded.
func (a *Answers) IsLatest() bool {
	return a.ISO == LatestISO
}
