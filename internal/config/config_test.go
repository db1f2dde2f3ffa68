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

package config_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/AnyLinQ-B-V/debian12-isobuilder/internal/config"
	sysmock "github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/sys/mock"
	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/sys/vfs"
)

func TestConfigSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Config test suite")
}

const fullAnswers = `iso: latest
username: alice
password: hunter2
hardened: true
output-dir: /srv/images
cache-dir: /srv/downloads
`

var _ = Describe("Config", Label("config"), func() {
	var tfs vfs.FS
	var cleanup func()
	BeforeEach(func() {
		var err error
		tfs, cleanup, err = sysmock.TestFS(map[string]any{
			"/answers.yaml": fullAnswers,
		})
		Expect(err).NotTo(HaveOccurred())
	})
	AfterEach(func() {
		cleanup()
	})

	It("loads a complete answers file", func() {
		a, err := config.Load(tfs, "/answers.yaml")
		Expect(err).NotTo(HaveOccurred())
		Expect(a.ISO).To(Equal("latest"))
		Expect(a.IsLatest()).To(BeTrue())
		Expect(a.Username).To(Equal("alice"))
		Expect(a.Password).To(Equal("hunter2"))
		Expect(a.Hardened).NotTo(BeNil())
		Expect(*a.Hardened).To(BeTrue())
		Expect(a.OutputDir).To(Equal("/srv/images"))
		Expect(a.CacheDir).To(Equal("/srv/downloads"))
	})
	It("keeps unset fields at their zero value", func() {
		Expect(tfs.WriteFile("/answers.yaml", []byte("username: bob\n"), vfs.FilePerm)).To(Succeed())
		a, err := config.Load(tfs, "/answers.yaml")
		Expect(err).NotTo(HaveOccurred())
		Expect(a.Username).To(Equal("bob"))
		Expect(a.ISO).To(BeEmpty())
		Expect(a.IsLatest()).To(BeFalse())
		Expect(a.Hardened).To(BeNil())
	})
	It("rejects a file with both password and password-hash", func() {
		content := "username: alice\npassword: hunter2\npassword-hash: $6$salt$digest\n"
		Expect(tfs.WriteFile("/answers.yaml", []byte(content), vfs.FilePerm)).To(Succeed())
		_, err := config.Load(tfs, "/answers.yaml")
		Expect(err).To(MatchError(ContainSubstring("mutually exclusive")))
	})
	It("fails on a missing file", func() {
		_, err := config.Load(tfs, "/nope.yaml")
		Expect(err).To(MatchError(ContainSubstring("reading answers file")))
	})
	It("fails on malformed yaml", func() {
		Expect(tfs.WriteFile("/answers.yaml", []byte("username: [\n"), vfs.FilePerm)).To(Succeed())
		_, err := config.Load(tfs, "/answers.yaml")
		Expect(err).To(MatchError(ContainSubstring("unmarshalling answers file")))
	})
})
