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

package cleanstack_test

import (
	"fmt"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/cleanstack"
)

func TestCleanstackSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Cleanstack test suite")
}

var _ = Describe("Cleanstack", Label("cleanstack"), func() {
	var cleanup *cleanstack.CleanStack
	BeforeEach(func() {
		cleanup = cleanstack.NewCleanStack()
	})

	It("runs jobs in reverse registration order", func() {
		var order []int
		for i := 1; i <= 3; i++ {
			i := i
			cleanup.Push(func() error {
				order = append(order, i)
				return nil
			})
		}
		Expect(cleanup.Cleanup(nil)).To(Succeed())
		Expect(order).To(Equal([]int{3, 2, 1}))
	})
	It("keeps the incoming error", func() {
		cleanup.Push(func() error { return nil })
		err := cleanup.Cleanup(fmt.Errorf("pipeline failed"))
		Expect(err).To(MatchError(ContainSubstring("pipeline failed")))
	})
	It("runs every job even when one fails", func() {
		var ran []string
		cleanup.Push(func() error {
			ran = append(ran, "first")
			return nil
		})
		cleanup.Push(func() error {
			ran = append(ran, "second")
			return fmt.Errorf("second failed")
		})
		err := cleanup.Cleanup(nil)
		Expect(err).To(MatchError(ContainSubstring("second failed")))
		Expect(ran).To(Equal([]string{"second", "first"}))
	})
	It("joins cleanup errors with the incoming one", func() {
		cleanup.Push(func() error { return fmt.Errorf("cleanup failed") })
		err := cleanup.Cleanup(fmt.Errorf("pipeline failed"))
		Expect(err).To(MatchError(ContainSubstring("pipeline failed")))
		Expect(err).To(MatchError(ContainSubstring("cleanup failed")))
	})
	It("pops nil on an empty stack", func() {
		Expect(cleanup.Pop()).To(BeNil())
		Expect(cleanup.Cleanup(nil)).To(Succeed())
	})
})
