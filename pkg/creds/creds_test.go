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

package creds_test

import (
	"context"
	"fmt"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/creds"
	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/log"
	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/sys"
	sysmock "github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/sys/mock"
)

func TestCredsSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Creds test suite")
}

var _ = Describe("Creds", Label("creds"), func() {
	var s *sys.System
	var runner *sysmock.Runner
	BeforeEach(func() {
		var err error
		runner = sysmock.NewRunner()
		s, err = sys.NewSystem(
			sys.WithRunner(runner),
			sys.WithLogger(log.New(log.WithDiscardAll())),
		)
		Expect(err).NotTo(HaveOccurred())
	})

	It("derives a $6$ hash through the hashing tool", func() {
		var salt string
		runner.SideEffect = func(cmd string, args ...string) ([]byte, error) {
			Expect(cmd).To(Equal("openssl"))
			Expect(args[:3]).To(Equal([]string{"passwd", "-6", "-salt"}))
			Expect(args[4]).To(Equal("-stdin"))
			salt = args[3]
			return []byte(fmt.Sprintf("$6$%s$fakedigest\n", salt)), nil
		}

		hash, err := creds.HashPassword(context.Background(), s, "hunter2")
		Expect(err).NotTo(HaveOccurred())
		Expect(hash).To(Equal(fmt.Sprintf("$6$%s$fakedigest", salt)))
		Expect(salt).To(HaveLen(16))
		Expect(salt).To(MatchRegexp(`^[a-zA-Z0-9./]+$`))
		Expect(runner.CmdsMatch([][]string{
			{"openssl", "passwd", "-6", "-salt", salt, "-stdin"},
		})).To(Succeed())
	})
	It("pipes the plaintext over stdin only", func() {
		runner.SideEffect = func(cmd string, args ...string) ([]byte, error) {
			Expect(args).NotTo(ContainElement("hunter2"))
			return []byte("$6$salt$digest\n"), nil
		}

		_, err := creds.HashPassword(context.Background(), s, "hunter2")
		Expect(err).NotTo(HaveOccurred())
		Expect(string(runner.InputFor("openssl"))).To(Equal("hunter2"))
	})
	It("salts every invocation differently", func() {
		salts := map[string]bool{}
		runner.SideEffect = func(cmd string, args ...string) ([]byte, error) {
			salts[args[3]] = true
			return []byte("$6$" + args[3] + "$digest\n"), nil
		}

		for i := 0; i < 8; i++ {
			_, err := creds.HashPassword(context.Background(), s, "hunter2")
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(len(salts)).To(Equal(8))
	})
	It("rejects output that is not a SHA512-crypt digest", func() {
		runner.SideEffect = func(cmd string, args ...string) ([]byte, error) {
			return []byte("$1$legacy$digest\n"), nil
		}

		_, err := creds.HashPassword(context.Background(), s, "hunter2")
		Expect(err).To(MatchError(ContainSubstring("unexpected digest format")))
	})
	It("propagates hashing tool failures", func() {
		runner.SideEffect = func(cmd string, args ...string) ([]byte, error) {
			return nil, fmt.Errorf("openssl not usable")
		}

		_, err := creds.HashPassword(context.Background(), s, "hunter2")
		Expect(err).To(MatchError(ContainSubstring("openssl not usable")))
	})
})
