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

package matrix

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"

	"github.com/filmrec-io/filmrec/dataset"
)

const simTestEpsilon = 1e-3

func TestPearson(t *testing.T) {
	a := []float32{1, 2, 3, 4, 5}
	b := []float32{2, 4, 6, 8, 10}
	r, ok := Pearson(a, b)
	assert.True(t, ok)
	assert.InDelta(t, 1.0, r, simTestEpsilon)

	c := []float32{5, 4, 3, 2, 1}
	r, ok = Pearson(a, c)
	assert.True(t, ok)
	assert.InDelta(t, -1.0, r, simTestEpsilon)
}

func TestPearsonPairwiseComplete(t *testing.T) {
	nan := math32.NaN()
	// only positions 1, 2 and 4 are co-observed
	a := []float32{1, 2, 3, nan, 5}
	b := []float32{nan, 4, 3, 8, 7}
	r, ok := Pearson(a, b)
	assert.True(t, ok)
	// Pearson over pairs (2,4), (3,3), (5,7)
	assert.InDelta(t, 0.8386, r, simTestEpsilon)
}

func TestPearsonIdentical(t *testing.T) {
	a := []float32{1, 2.5, 3, 4.5, 5}
	r, ok := Pearson(a, a)
	assert.True(t, ok)
	assert.Equal(t, float32(1.0), r)
}

func TestPearsonUndefined(t *testing.T) {
	nan := math32.NaN()
	// a single co-observed pair is not enough
	_, ok := Pearson([]float32{1, nan, 3}, []float32{nan, 2, 3})
	assert.False(t, ok)
	// no overlap at all
	_, ok = Pearson([]float32{1, nan}, []float32{nan, 2})
	assert.False(t, ok)
	// zero variance on the overlap
	_, ok = Pearson([]float32{3, 3, 3}, []float32{1, 2, 3})
	assert.False(t, ok)
}

func seedTestMatrix(t *testing.T) *Matrix {
	t.Helper()
	rows := []dataset.Row{
		// X and Y move together, Z moves against them
		row(1, "X", 1), row(1, "Y", 2), row(1, "Z", 5),
		row(2, "X", 2), row(2, "Y", 3), row(2, "Z", 4),
		row(3, "X", 3), row(3, "Y", 4), row(3, "Z", 3),
		row(4, "X", 4), row(4, "Y", 5), row(4, "Z", 2),
	}
	m, err := Build(rows, dataset.PivotTitle, Options{})
	assert.NoError(t, err)
	return m
}

func TestSeedScores(t *testing.T) {
	m := seedTestMatrix(t)
	scores, err := SeedScores(m, []string{"X"})
	assert.NoError(t, err)
	// the seed correlates with itself exactly
	assert.Equal(t, float32(1.0), scores["X"])
	assert.InDelta(t, 1.0, scores["Y"], simTestEpsilon)
	assert.InDelta(t, -1.0, scores["Z"], simTestEpsilon)
}

func TestSeedScoresAdditive(t *testing.T) {
	m := seedTestMatrix(t)
	scores, err := SeedScores(m, []string{"X", "Y"})
	assert.NoError(t, err)
	// a candidate correlated with both seeds scores the sum of both
	assert.InDelta(t, 2.0, scores["X"], simTestEpsilon)
	assert.InDelta(t, 2.0, scores["Y"], simTestEpsilon)
	assert.InDelta(t, -2.0, scores["Z"], simTestEpsilon)
}

func TestSeedScoresInvalidSeedsDropped(t *testing.T) {
	m := seedTestMatrix(t)
	// unknown seeds are dropped from the intersection, not zeroed
	scores, err := SeedScores(m, []string{"X", "Missing"})
	assert.NoError(t, err)
	assert.Equal(t, float32(1.0), scores["X"])
}

func TestSeedScoresNoValidSeed(t *testing.T) {
	m := seedTestMatrix(t)
	_, err := SeedScores(m, []string{"Missing", "AlsoMissing"})
	assert.ErrorIs(t, err, ErrNoValidSeed)
}
