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

// PreseedFlags contains the flags for the preseed command.
type PreseedFlags struct {
	Username     string
	PasswordHash string
	Hardened     bool
	Output       string
}

// PreseedArgs holds the parsed preseed command flags.
var PreseedArgs PreseedFlags

// NewPreseedCommand creates the preseed command, rendering a configuration
// document without touching any image.
func NewPreseedCommand(appName string, action func(*cli.Context) error) *cli.Command {
	return &cli.Command{
		Name:      "preseed",
		Usage:     "Render the unattended installer configuration document",
		UsageText: fmt.Sprintf("%s preseed [OPTIONS]", appName),
		Action:    action,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "username",
				Usage:       "Account name to create",
				Required:    true,
				Destination: &PreseedArgs.Username,
			},
			&cli.StringFlag{
				Name:        "password-hash",
				Usage:       "Pre-computed crypt hash for the account password",
				Required:    true,
				Destination: &PreseedArgs.PasswordHash,
			},
			&cli.BoolFlag{
				Name:        "hardened",
				Usage:       "Use the hardened partitioning and package profile",
				Destination: &PreseedArgs.Hardened,
			},
			&cli.StringFlag{
				Name:        "output",
				Usage:       "Target file, '-' for stdout",
				Value:       "-",
				Destination: &PreseedArgs.Output,
			},
		},
	}
}
