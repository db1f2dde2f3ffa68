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

// Package cleanstack implements a LIFO stack of cleanup jobs meant to be
// collected during a multi step process and executed unconditionally at the
// end of it, whatever the outcome.
//
// Typical usage:
//
//	cleanup := cleanstack.NewCleanStack()
//	defer func() { err = cleanup.Cleanup(err) }()
package cleanstack

import (
	"container/list"
	"errors"
)

type Task func() error

type CleanStack struct {
	stack *list.List
}

func NewCleanStack() *CleanStack {
	return &CleanStack{stack: list.New()}
}

// Push adds a cleanup job on top of the stack.
func (c *CleanStack) Push(task Task) {
	c.stack.PushBack(task)
}

// Pop removes and returns the topmost job, or nil if the stack is empty.
func (c *CleanStack) Pop() Task {
	elem := c.stack.Back()
	if elem == nil {
		return nil
	}
	c.stack.Remove(elem)
	return elem.Value.(Task)
}

// Cleanup runs all stacked jobs in reverse order. Jobs run even if previous
// ones failed; all errors are joined with the given one.
func (c *CleanStack) Cleanup(err error) error {
	errs := []error{err}
	for task := c.Pop(); task != nil; task = c.Pop() {
		errs = append(errs, task())
	}
	return errors.Join(errs...)
}
