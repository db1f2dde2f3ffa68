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

// VerifyFlags contains the flags for the verify command.
type VerifyFlags struct {
	File   string
	Digest string
}

// VerifyArgs holds the parsed verify command flags.
var VerifyArgs VerifyFlags

// NewVerifyCommand creates the verify command. Without an explicit digest
// the published checksum manifest is consulted.
func NewVerifyCommand(appName string, action func(*cli.Context) error) *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "Verify an installer image against a SHA512 digest",
		UsageText: fmt.Sprintf("%s verify --file IMAGE [--digest HEX]", appName),
		Action:    action,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "file",
				Usage:       "Image file to verify",
				Required:    true,
				Destination: &VerifyArgs.File,
			},
			&cli.StringFlag{
				Name:        "digest",
				Usage:       "Expected SHA512 hex digest; defaults to the published manifest entry",
				Destination: &VerifyArgs.Digest,
			},
		},
	}
}
