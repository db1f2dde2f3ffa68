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

package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// BuildFlags contains the flags for the build command.
type BuildFlags struct {
	Answers   string
	ISO       string
	OutputDir string
	CacheDir  string
	Hardened  bool
}

// BuildArgs holds the parsed build command flags.
var BuildArgs BuildFlags

// NewBuildCommand creates the build command. Anything not covered by flags
// or the answers file is gathered interactively before any mutating step.
func NewBuildCommand(appName string, action func(*cli.Context) error) *cli.Command {
	return &cli.Command{
		Name:      "build",
		Usage:     "Remaster an installer image into an unattended one",
		UsageText: fmt.Sprintf("%s build [OPTIONS]", appName),
		Action:    action,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "answers",
				Usage:       "Answers file for non-interactive runs",
				Destination: &BuildArgs.Answers,
			},
			&cli.StringFlag{
				Name:        "iso",
				Usage:       "Local installer image path, or 'latest' to download the current one",
				Destination: &BuildArgs.ISO,
			},
			&cli.StringFlag{
				Name:        "output-dir",
				Usage:       "Directory the output image is written to",
				Value:       ".",
				Destination: &BuildArgs.OutputDir,
			},
			&cli.StringFlag{
				Name:        "cache-dir",
				Usage:       "Directory keeping verified downloads across runs",
				Value:       "downloads",
				Destination: &BuildArgs.CacheDir,
			},
			&cli.BoolFlag{
				Name:        "hardened",
				Usage:       "Use the hardened partitioning and package profile",
				Destination: &BuildArgs.Hardened,
			},
		},
	}
}
