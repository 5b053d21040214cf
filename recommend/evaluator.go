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

package recommend

import (
	mapset "github.com/deckarep/golang-set/v2"
	"gonum.org/v1/gonum/stat"
)

/* Evaluate recommendation quality against held-out future viewing data */

// Outcome is the evaluation record of one user: what they watched, what was
// recommended and what they actually watched later.
type Outcome struct {
	UserId      int
	Watched     []string
	Recommended []string
	Future      []string
	Matches     int
}

// NewOutcome builds an evaluation record and counts the overlap between the
// recommended and the future set.
func NewOutcome(userId int, watched, recommended, future []string) Outcome {
	return Outcome{
		UserId:      userId,
		Watched:     watched,
		Recommended: recommended,
		Future:      future,
		Matches:     MatchCount(recommended, future),
	}
}

// MatchCount returns the size of the intersection of the recommended and the
// future set. A missing or empty set counts as zero matches, not an error.
func MatchCount(recommended, future []string) int {
	if len(recommended) == 0 || len(future) == 0 {
		return 0
	}
	return mapset.NewSet(recommended...).Intersect(mapset.NewSet(future...)).Cardinality()
}

// Metrics is the aggregate evaluation report. Accuracy and Precision are
// percentages. All three are report-only statistics: none feeds back into the
// recommender.
type Metrics struct {
	MAE       float64
	Accuracy  float64
	Precision float64
}

// Evaluate aggregates per-user outcomes against the maximum possible match
// count, which is the fixed recommendation-list size.
//
//	MAE       = mean(|matches - maxPossible|)
//	accuracy  = mean(matches / maxPossible)
//	precision = sum(matches) / (users * maxPossible)
func Evaluate(outcomes []Outcome, maxPossible int) Metrics {
	if len(outcomes) == 0 || maxPossible <= 0 {
		return Metrics{}
	}
	absErrors := make([]float64, len(outcomes))
	ratios := make([]float64, len(outcomes))
	sum := 0
	for i, outcome := range outcomes {
		absErrors[i] = float64(maxPossible - outcome.Matches)
		if absErrors[i] < 0 {
			absErrors[i] = -absErrors[i]
		}
		ratios[i] = float64(outcome.Matches) / float64(maxPossible)
		sum += outcome.Matches
	}
	return Metrics{
		MAE:       stat.Mean(absErrors, nil),
		Accuracy:  stat.Mean(ratios, nil) * 100,
		Precision: float64(sum) / float64(len(outcomes)*maxPossible) * 100,
	}
}
