// Copyright 2025 filmrec Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package parallel

import (
	"context"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func TestParallel(t *testing.T) {
	a := make([]int, 1000)
	for i := range a {
		a[i] = i
	}
	b := make([]int, len(a))
	// multiple threads
	err := Parallel(context.Background(), len(a), 4, func(workerId, jobId int) error {
		b[jobId] = a[jobId]
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, a, b)
	// single thread
	b = make([]int, len(a))
	err = Parallel(context.Background(), len(a), 1, func(workerId, jobId int) error {
		b[jobId] = a[jobId]
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestParallelError(t *testing.T) {
	expected := errors.New("boom")
	err := Parallel(context.Background(), 100, 4, func(workerId, jobId int) error {
		if jobId == 50 {
			return expected
		}
		return nil
	})
	assert.ErrorIs(t, err, expected)
}

func TestParallelCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Parallel(ctx, 100, 1, func(workerId, jobId int) error {
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestForEach(t *testing.T) {
	a := []string{"a", "b", "c", "d"}
	b := make([]string, len(a))
	ForEach(a, 2, func(i int, v string) {
		b[i] = v
	})
	assert.Equal(t, a, b)
}
