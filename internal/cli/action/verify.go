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
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/AnyLinQ-B-V/debian12-isobuilder/internal/cli/cmd"
	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/checksum"
	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/fetch"
)

// Verify checks an installer image against a SHA512 digest. Without an
// explicit digest the published checksum manifest is consulted, which only
// works for images still listed there.
func Verify(ctx *cli.Context) error {
	s, err := systemFromMetadata(ctx)
	if err != nil {
		return err
	}
	args := &cmd.VerifyArgs

	expected := args.Digest
	if expected == "" {
		release, err := fetch.NewClient(s).Resolve(ctx.Context)
		if err != nil {
			return err
		}
		if release.Filename != filepath.Base(args.File) {
			return fmt.Errorf("'%s' is not the published image '%s', pass --digest instead", filepath.Base(args.File), release.Filename)
		}
		expected = release.SHA512
	}

	err = checksum.VerifyFile(s.FS(), args.File, expected)
	if err != nil {
		return err
	}
	s.Logger().Info("OK %s", args.File)
	return nil
}
