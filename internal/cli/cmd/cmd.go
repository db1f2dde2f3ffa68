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
	"github.com/urfave/cli/v2"

	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/log"
	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/sys"
)

const Usage = "Remaster Debian installer images into fully unattended ones"

// GlobalArgs holds the parsed global flags.
var GlobalArgs struct {
	Debug bool
}

func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "Enable debug output",
			Destination: &GlobalArgs.Debug,
		},
	}
}

// Setup builds the system collaborators and stores them in the application
// metadata for the actions to pick up.
func Setup(ctx *cli.Context) error {
	var opts []log.Opts
	if GlobalArgs.Debug {
		opts = append(opts, log.WithDebug())
	}

	s, err := sys.NewSystem(sys.WithLogger(log.New(opts...)))
	if err != nil {
		return err
	}
	ctx.App.Metadata["system"] = s
	return nil
}

func Teardown(_ *cli.Context) error {
	return nil
}
