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
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/AnyLinQ-B-V/debian12-isobuilder/internal/cli/cmd"
	"github.com/AnyLinQ-B-V/debian12-isobuilder/internal/config"
	"github.com/AnyLinQ-B-V/debian12-isobuilder/internal/prompt"
	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/cleanstack"
	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/creds"
	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/fetch"
	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/hostdeps"
	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/preseed"
	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/remaster"
	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/sys"
	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/workdir"
)

// buildInputs is everything a run needs, gathered up front. No prompt ever
// happens once the first mutating step started.
type buildInputs struct {
	download     bool
	isoPath      string
	username     string
	password     string
	passwordHash string
	hardened     bool
	outputDir    string
	cacheDir     string
}

// Build remasters an installer image into a fully unattended one.
func Build(ctx *cli.Context) (err error) {
	s, err := systemFromMetadata(ctx)
	if err != nil {
		return err
	}
	args := &cmd.BuildArgs

	p := prompt.New(ctx.App.Reader, ctx.App.Writer)

	err = hostdeps.Check(ctx.Context, s, p)
	if err != nil {
		return fmt.Errorf("checking host dependencies: %w", err)
	}

	var answers *config.Answers
	if args.Answers != "" {
		answers, err = config.Load(s.FS(), args.Answers)
		if err != nil {
			return err
		}
	}

	in, err := gatherInputs(ctx, p, args, answers)
	if err != nil {
		return err
	}

	// All inputs are gathered, no prompt happens past this point. Interrupts
	// now cancel the running stage and fall through to the cleanup stack.
	sigCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cleanup := cleanstack.NewCleanStack()
	defer func() { err = cleanup.Cleanup(err) }()

	wd, err := workdir.New(s, "")
	if err != nil {
		return err
	}
	cleanup.Push(wd.Close)

	iso, err := acquireImage(sigCtx, s, in)
	if err != nil {
		return err
	}

	hash := in.passwordHash
	if hash == "" {
		hash, err = creds.HashPassword(sigCtx, s, in.password)
		in.password = ""
		if err != nil {
			return err
		}
	}

	doc := preseed.New(in.username, hash, in.hardened)
	docPath, err := doc.Write(s, wd.Path)
	if err != nil {
		return err
	}

	r := remaster.New(sigCtx, s, remaster.WithOutputDir(in.outputDir))
	output, err := r.Run(iso, docPath, wd.Path)
	if err != nil {
		return err
	}

	s.Logger().Info("Unattended installer image ready: %s", output)
	return nil
}

// gatherInputs merges flags, the answers file and interactive prompts, in
// the fixed order: image acquisition, username, password, hardening.
func gatherInputs(ctx *cli.Context, p *prompt.Prompter, args *cmd.BuildFlags, answers *config.Answers) (*buildInputs, error) {
	in := &buildInputs{
		outputDir: args.OutputDir,
		cacheDir:  args.CacheDir,
	}
	if answers != nil {
		if answers.OutputDir != "" {
			in.outputDir = answers.OutputDir
		}
		if answers.CacheDir != "" {
			in.cacheDir = answers.CacheDir
		}
	}

	switch {
	case args.ISO != "":
		if args.ISO == config.LatestISO {
			in.download = true
		} else {
			in.isoPath = args.ISO
		}
	case answers != nil && answers.ISO != "":
		if answers.IsLatest() {
			in.download = true
		} else {
			in.isoPath = answers.ISO
		}
	default:
		source, err := p.AcquireSource()
		if err != nil {
			return nil, err
		}
		in.download = source.Download
		in.isoPath = source.Path
	}

	if answers != nil && answers.Username != "" {
		in.username = answers.Username
	} else {
		name, err := p.Username()
		if err != nil {
			return nil, err
		}
		in.username = name
	}

	switch {
	case answers != nil && answers.PasswordHash != "":
		in.passwordHash = answers.PasswordHash
	case answers != nil && answers.Password != "":
		in.password = answers.Password
	default:
		password, err := p.Password()
		if err != nil {
			return nil, err
		}
		in.password = password
	}

	switch {
	case ctx.IsSet("hardened"):
		in.hardened = args.Hardened
	case answers != nil && answers.Hardened != nil:
		in.hardened = *answers.Hardened
	default:
		hardened, err := p.Confirm("Apply the hardened installation profile?", false)
		if err != nil {
			return nil, err
		}
		in.hardened = hardened
	}

	return in, nil
}

// acquireImage turns the acquisition choice into a verified local image.
func acquireImage(ctx context.Context, s *sys.System, in *buildInputs) (string, error) {
	client := fetch.NewClient(s)
	if !in.download {
		return client.FetchLocal(in.isoPath)
	}

	release, err := client.Resolve(ctx)
	if err != nil {
		return "", err
	}
	return client.Fetch(ctx, release, in.cacheDir)
}
