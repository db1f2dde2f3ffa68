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

package action

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/AnyLinQ-B-V/debian12-isobuilder/internal/cli/cmd"
	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/preseed"
	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/sys/vfs"
)

// Preseed renders the installer configuration document on its own, without
// remastering any image.
func Preseed(ctx *cli.Context) error {
	s, err := systemFromMetadata(ctx)
	if err != nil {
		return err
	}
	args := &cmd.PreseedArgs

	doc := preseed.New(args.Username, args.PasswordHash, args.Hardened)
	data, err := doc.Render()
	if err != nil {
		return err
	}

	if args.Output == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}

	err = s.FS().WriteFile(args.Output, data, vfs.FilePerm)
	if err != nil {
		return fmt.Errorf("failed writing file '%s': %w", args.Output, err)
	}
	s.Logger().Info("Wrote %s", args.Output)
	return nil
}
