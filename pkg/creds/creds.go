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

// Package creds derives the salted password credential embedded in the
// generated installer configuration.
package creds

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/sys"
)

const saltLength = 16

const saltChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789./"

// HashPassword derives a SHA512-crypt ($6$) hash of the given plaintext
// with a fresh random salt. The plaintext only travels over the stdin pipe
// of the hashing tool and is never persisted.
func HashPassword(ctx context.Context, s *sys.System, plaintext string) (string, error) {
	salt, err := genSalt(saltLength)
	if err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	out, err := s.Runner().RunInput(
		ctx, strings.NewReader(plaintext), "",
		"openssl", "passwd", "-6", "-salt", salt, "-stdin",
	)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	hash := strings.TrimSpace(string(out))
	if !strings.HasPrefix(hash, "$6$") {
		return "", fmt.Errorf("hashing password: unexpected digest format")
	}
	return hash, nil
}

func genSalt(length int) (string, error) {
	b := make([]byte, length)
	for i := range b {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(saltChars))))
		if err != nil {
			return "", err
		}
		b[i] = saltChars[idx.Int64()]
	}
	return string(b), nil
}
