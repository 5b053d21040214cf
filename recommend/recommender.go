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

// Package recommend merges similarity or rule scores with popularity
// statistics, applies quality filters and produces ranked top-N lists, plus
// the evaluation metrics over held-out future viewing data.
package recommend

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/filmrec-io/filmrec/base/heap"
	"github.com/filmrec-io/filmrec/dataset"
	"github.com/filmrec-io/filmrec/mining"
)

// Filter is the quality filter applied before ranking. Reference values are
// MinMeanRating 3.5 and MinRatingCount 300, but both must vary with dataset
// size, so they are required configuration.
type Filter struct {
	MinMeanRating  float64
	MinRatingCount int
	TopN           int
}

// Recommendation is one ranked output item.
type Recommendation struct {
	Title       string
	Genres      []string
	Score       float64
	RatingCount int
	MeanRating  float64
}

// FromSimilarity converts a similarity score map into the generic score map
// consumed by Recommend.
func FromSimilarity(scores map[string]float32) map[string]float64 {
	converted := make(map[string]float64, len(scores))
	for title, score := range scores {
		converted[title] = float64(score)
	}
	return converted
}

// FromRules scores every rule consequent item by the best lift among the
// rules producing it.
func FromRules(rules []mining.Rule) map[string]float64 {
	scores := make(map[string]float64)
	for _, rule := range rules {
		for _, item := range rule.Consequent {
			if lift, exist := scores[item]; !exist || rule.Lift > lift {
				scores[item] = rule.Lift
			}
		}
	}
	return scores
}

// Recommend filters candidates by popularity, excludes the seed set and
// returns the top-N candidates by score descending. Fewer than N items are
// returned when fewer survive filtering.
func Recommend(scores map[string]float64, stats map[string]dataset.Stats,
	catalog []dataset.Movie, seeds []string, filter Filter) []Recommendation {
	seedSet := mapset.NewSet(seeds...)
	genres := make(map[string][]string, len(catalog))
	for _, movie := range catalog {
		genres[movie.Title] = movie.Genres
	}
	filtered := heap.NewTopKFilter[Recommendation, float64](filter.TopN)
	for title, score := range scores {
		// an item present in the seed set never appears in the output
		if seedSet.Contains(title) {
			continue
		}
		stat, exist := stats[title]
		if !exist {
			continue
		}
		if stat.Mean <= filter.MinMeanRating || stat.Count <= filter.MinRatingCount {
			continue
		}
		filtered.Push(Recommendation{
			Title:       title,
			Genres:      genres[title],
			Score:       score,
			RatingCount: stat.Count,
			MeanRating:  stat.Mean,
		}, score)
	}
	recommendations, _ := filtered.PopAll()
	return recommendations
}
