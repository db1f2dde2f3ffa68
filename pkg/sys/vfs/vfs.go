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

// Package vfs provides the filesystem abstraction used across the project.
// It is a thin layer on top of github.com/twpayne/go-vfs so that all
// filesystem access can be redirected to a test filesystem.
package vfs

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/twpayne/go-vfs/v4"
)

// FS is the filesystem interface consumed by all packages.
type FS = vfs.FS

// FileMode is re-exported so callers do not need the io/fs import.
type FileMode = fs.FileMode

// OSFS is the real, OS backed filesystem.
var OSFS FS = vfs.OSFS

const (
	DirPerm      = fs.FileMode(0o755)
	FilePerm     = fs.FileMode(0o644)
	ReadOnlyPerm = fs.FileMode(0o444)
)

// MkdirAll creates the given directory and all its missing parents.
func MkdirAll(fsys FS, path string, perm fs.FileMode) error {
	return vfs.MkdirAll(fsys, path, perm)
}

// Exists checks whether the given path exists.
func Exists(fsys FS, path string) (bool, error) {
	_, err := fsys.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// IsDir checks whether the given path is a directory.
func IsDir(fsys FS, path string) (bool, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

// TempDir creates a uniquely named directory under dir, or under the
// system temporary directory if dir is empty, and returns its path.
func TempDir(fsys FS, dir, prefix string) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	name := filepath.Join(dir, fmt.Sprintf("%s-%s", prefix, uuid.NewString()[:8]))
	err := MkdirAll(fsys, name, DirPerm)
	if err != nil {
		return "", fmt.Errorf("creating temporary directory '%s': %w", name, err)
	}
	return name, nil
}

// LoadEnvFile parses a shell style KEY=value file, such as /etc/os-release.
func LoadEnvFile(fsys FS, path string) (map[string]string, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading '%s': %w", path, err)
	}

	vars, err := godotenv.UnmarshalBytes(data)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling '%s': %w", path, err)
	}

	return vars, nil
}

// Walk walks the file tree rooted at path without following symlinks.
func Walk(fsys FS, path string, fn filepath.WalkFunc) error {
	return vfs.Walk(fsys, path, fn)
}

// ForceWritable recursively grants user write permission on the given tree.
// Extracted ISO trees come out read-only, so this is required before any in
// place edit and before removing the tree.
func ForceWritable(fsys FS, root string) error {
	return Walk(fsys, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return nil
		}
		if info.Mode().Perm()&0o200 != 0 {
			return nil
		}
		return fsys.Chmod(path, info.Mode().Perm()|0o200)
	})
}

// RelativePaths collects the paths of all regular files under root,
// relative to root, following symlinks to files. Symlinked directories are
// not descended to avoid loops such as the 'debian -> .' link on Debian
// install media.
func RelativePaths(fsys FS, root string) ([]string, error) {
	var paths []string
	err := Walk(fsys, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode()&os.ModeSymlink != 0 {
			target, err := fsys.Stat(path)
			if err != nil || !target.Mode().IsRegular() {
				return nil
			}
		} else if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking '%s': %w", root, err)
	}
	return paths, nil
}

// ReadHead reads up to n bytes from the beginning of the given file.
func ReadHead(fsys FS, path string, n int) ([]byte, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening '%s': %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("reading '%s': %w", path, err)
	}
	return buf[:read], nil
}
