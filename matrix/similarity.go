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
	"github.com/chewxy/math32"
	"github.com/juju/errors"
)

// ErrNoValidSeed is returned when none of the requested seed items exist in
// the matrix columns.
var ErrNoValidSeed = errors.New("no valid seed: none of the seed items exist in the matrix")

// minOverlap is the smallest number of co-observed cells for which a
// correlation is defined.
const minOverlap = 2

// Pearson computes the pairwise-complete Pearson correlation coefficient
// between a pair of score vectors. Only positions where both vectors have an
// observed (non-NaN) value contribute; means are taken over the overlap. The
// second return value is false when the correlation is undefined: fewer than
// two co-observed cells, or zero variance on the overlap. An undefined
// correlation must be excluded from aggregation, not treated as zero.
func Pearson(a, b []float32) (float32, bool) {
	// Means over the co-observed cells
	count, sumA, sumB := 0, float32(0), float32(0)
	for i := range a {
		if !math32.IsNaN(a[i]) && !math32.IsNaN(b[i]) {
			sumA += a[i]
			sumB += b[i]
			count++
		}
	}
	if count < minOverlap {
		return 0, false
	}
	meanA := sumA / float32(count)
	meanB := sumB / float32(count)
	// Mean-centered cosine
	m, n, l := float32(0), float32(0), float32(0)
	for i := range a {
		if !math32.IsNaN(a[i]) && !math32.IsNaN(b[i]) {
			ratingA := a[i] - meanA
			ratingB := b[i] - meanB
			m += ratingA * ratingA
			n += ratingB * ratingB
			l += ratingA * ratingB
		}
	}
	if m == 0 || n == 0 {
		return 0, false
	}
	return l / math32.Sqrt(m*n), true
}

// SeedScores scores every matrix column against a seed set. A candidate's
// score is the sum of its defined correlations against each valid seed, so
// items correlated with multiple seeds rank higher. Candidates without a
// single defined correlation are omitted. Seed columns are not excluded here;
// the recommender applies the already-seen filter.
func SeedScores(m *Matrix, seeds []string) (map[string]float32, error) {
	// intersect the seed list with matrix columns
	validSeeds := make([]string, 0, len(seeds))
	seen := make(map[string]bool, len(seeds))
	for _, seed := range seeds {
		if m.HasColumn(seed) && !seen[seed] {
			validSeeds = append(validSeeds, seed)
			seen[seed] = true
		}
	}
	if len(validSeeds) == 0 {
		return nil, errors.Trace(ErrNoValidSeed)
	}
	seedVectors := make([][]float32, len(validSeeds))
	for i, seed := range validSeeds {
		seedVectors[i] = m.Column(seed)
	}
	scores := make(map[string]float32)
	for _, column := range m.Columns() {
		candidate := m.Column(column)
		sum, defined := float32(0), false
		for _, seedVector := range seedVectors {
			if r, ok := Pearson(candidate, seedVector); ok {
				sum += r
				defined = true
			}
		}
		if defined {
			scores[column] = sum
		}
	}
	return scores, nil
}
