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

// Package checksum implements whole file digest verification and the
// md5sum.txt manifest format found on Debian install media.
package checksum

import (
	"crypto/md5"
	"crypto/sha512"
	"fmt"
	"hash"
	"io"
	"path/filepath"
	"strings"

	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/sys/vfs"
)

// ManifestName is the checksum manifest file name on Debian install media.
const ManifestName = "md5sum.txt"

// ErrMismatch is wrapped by every digest comparison failure.
var ErrMismatch = fmt.Errorf("checksum mismatch")

func digest(fsys vfs.FS, path string, h hash.Hash) (string, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening '%s': %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("reading '%s' for digest: %w", path, err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// SHA512 computes the whole file SHA512 hex digest of the given path.
func SHA512(fsys vfs.FS, path string) (string, error) {
	return digest(fsys, path, sha512.New())
}

// MD5 computes the whole file MD5 hex digest of the given path.
func MD5(fsys vfs.FS, path string) (string, error) {
	return digest(fsys, path, md5.New())
}

// VerifyFile compares the SHA512 digest of the file against the expected
// hex string. The comparison is exact and case sensitive. On mismatch the
// returned error carries both the expected and the computed value.
func VerifyFile(fsys vfs.FS, path, expected string) error {
	computed, err := SHA512(fsys, path)
	if err != nil {
		return err
	}
	if computed != expected {
		return fmt.Errorf("%w for '%s': expected %s, computed %s", ErrMismatch, path, expected, computed)
	}
	return nil
}

// WriteManifest regenerates the checksum manifest of the tree rooted at
// root. Every regular file is listed, following symlinks to files, except
// the manifest itself. The previous manifest is overwritten and left with
// read-only permission, matching the rest of the extracted tree.
func WriteManifest(fsys vfs.FS, root string) error {
	paths, err := vfs.RelativePaths(fsys, root)
	if err != nil {
		return fmt.Errorf("listing files for manifest: %w", err)
	}

	var b strings.Builder
	for _, rel := range paths {
		if rel == ManifestName {
			continue
		}
		sum, err := MD5(fsys, filepath.Join(root, rel))
		if err != nil {
			return fmt.Errorf("computing manifest digest: %w", err)
		}
		fmt.Fprintf(&b, "%s  ./%s\n", sum, rel)
	}

	manifest := filepath.Join(root, ManifestName)
	if ok, _ := vfs.Exists(fsys, manifest); ok {
		err = fsys.Chmod(manifest, vfs.FilePerm)
		if err != nil {
			return fmt.Errorf("unlocking manifest '%s': %w", manifest, err)
		}
	}
	err = fsys.WriteFile(manifest, []byte(b.String()), vfs.FilePerm)
	if err != nil {
		return fmt.Errorf("writing manifest '%s': %w", manifest, err)
	}
	return fsys.Chmod(manifest, vfs.ReadOnlyPerm)
}
