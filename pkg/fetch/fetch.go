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

// Package fetch resolves and downloads the latest published Debian netinst
// installer image from the release checksum manifest.
package fetch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/checksum"
	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/sys"
	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/sys/vfs"
)

const (
	// DefaultMirror is the directory holding the current amd64 netinst
	// image and its SHA512SUMS manifest.
	DefaultMirror = "https://cdimage.debian.org/debian-cd/current/amd64/iso-cd"

	manifestName = "SHA512SUMS"
)

var netinstPattern = regexp.MustCompile(`^debian-[\d.]+-amd64-netinst\.iso$`)

// ErrNoRelease is returned when the manifest has no netinst entry.
var ErrNoRelease = errors.New("no netinst image found in checksum manifest")

// Release describes one published installer image.
type Release struct {
	Filename string
	SHA512   string
	URL      string
}

type Client struct {
	s      *sys.System
	http   *retryablehttp.Client
	mirror string
}

type Option func(*Client)

func WithMirror(mirror string) Option {
	return func(c *Client) {
		c.mirror = strings.TrimRight(mirror, "/")
	}
}

func NewClient(s *sys.System, opts ...Option) *Client {
	hc := retryablehttp.NewClient()
	hc.RetryMax = 3
	hc.Logger = nil

	c := &Client{s: s, http: hc, mirror: DefaultMirror}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for '%s': %w", url, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching '%s': %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("fetching '%s': unexpected status %s", url, resp.Status)
	}
	return resp, nil
}

// Resolve fetches the published checksum manifest and returns the netinst
// image it declares.
func (c *Client) Resolve(ctx context.Context) (Release, error) {
	url := fmt.Sprintf("%s/%s", c.mirror, manifestName)
	c.s.Logger().Info("Resolving latest installer image from %s", url)

	resp, err := c.get(ctx, url)
	if err != nil {
		return Release{}, err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 2 {
			continue
		}
		name := strings.TrimPrefix(fields[1], "*")
		if netinstPattern.MatchString(name) {
			return Release{
				Filename: name,
				SHA512:   fields[0],
				URL:      fmt.Sprintf("%s/%s", c.mirror, name),
			}, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return Release{}, fmt.Errorf("reading manifest: %w", err)
	}
	return Release{}, ErrNoRelease
}

// Fetch returns a local, checksum verified copy of the given release. A
// cached copy in cacheDir is reused when its digest still matches; a stale
// cached copy triggers a re-download instead of an abort. A digest mismatch
// on freshly downloaded data is an error.
func (c *Client) Fetch(ctx context.Context, release Release, cacheDir string) (string, error) {
	fsys := c.s.FS()
	logger := c.s.Logger()

	err := vfs.MkdirAll(fsys, cacheDir, vfs.DirPerm)
	if err != nil {
		return "", fmt.Errorf("creating download directory '%s': %w", cacheDir, err)
	}

	target := filepath.Join(cacheDir, release.Filename)
	if ok, _ := vfs.Exists(fsys, target); ok {
		err = checksum.VerifyFile(fsys, target, release.SHA512)
		if err == nil {
			logger.Info("Reusing verified image '%s'", target)
			return target, nil
		}
		if !errors.Is(err, checksum.ErrMismatch) {
			return "", err
		}
		logger.Warn("Cached image '%s' failed verification, downloading again", target)
	}

	err = c.download(ctx, release.URL, target)
	if err != nil {
		return "", err
	}

	err = checksum.VerifyFile(fsys, target, release.SHA512)
	if err != nil {
		return "", fmt.Errorf("downloaded image failed verification: %w", err)
	}
	logger.Info("Verified image '%s'", target)
	return target, nil
}

// FetchLocal validates an operator supplied path to an installer image.
func (c *Client) FetchLocal(path string) (string, error) {
	ok, err := vfs.Exists(c.s.FS(), path)
	if err != nil {
		return "", fmt.Errorf("checking '%s': %w", path, err)
	}
	if !ok {
		return "", fmt.Errorf("installer image '%s' does not exist", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return abs, nil
}

func (c *Client) download(ctx context.Context, url, target string) (err error) {
	c.s.Logger().Info("Downloading %s", url)

	resp, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	f, err := c.s.FS().Create(target)
	if err != nil {
		return fmt.Errorf("creating '%s': %w", target, err)
	}
	defer func() {
		cErr := f.Close()
		if err == nil {
			err = cErr
		}
	}()

	_, err = io.Copy(f, resp.Body)
	if err != nil {
		return fmt.Errorf("downloading '%s': %w", url, err)
	}
	return nil
}
