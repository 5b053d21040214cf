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

package config

import (
	"strings"

	"github.com/juju/errors"
	"github.com/scylladb/go-set/strset"

	"github.com/filmrec-io/filmrec/dataset"
)

var pivotKeys = strset.New(string(dataset.PivotTitle), string(dataset.PivotGenre))

// Validate checks required fields and value ranges.
func (config *Config) Validate() error {
	if err := validateIn("matrix.pivot_key", strings.ToLower(config.Matrix.PivotKey), pivotKeys); err != nil {
		return errors.Trace(err)
	}
	if err := validateNotNegative("matrix.sample_users", config.Matrix.SampleUsers); err != nil {
		return errors.Trace(err)
	}
	if err := validateFraction("mining.min_support", config.Mining.MinSupport); err != nil {
		return errors.Trace(err)
	}
	if err := validateFraction("mining.min_confidence", config.Mining.MinConfidence); err != nil {
		return errors.Trace(err)
	}
	if err := validatePositive("mining.max_itemset_size", config.Mining.MaxItemsetSize); err != nil {
		return errors.Trace(err)
	}
	if config.Recommend.MinMeanRating <= 0 {
		return errors.Errorf("value of `recommend.min_mean_rating` must be positive, but the current value is %v",
			config.Recommend.MinMeanRating)
	}
	if err := validatePositive("recommend.min_rating_count", config.Recommend.MinRatingCount); err != nil {
		return errors.Trace(err)
	}
	if err := validatePositive("recommend.top_n", config.Recommend.TopN); err != nil {
		return errors.Trace(err)
	}
	if err := validatePositive("recommend.max_seeds", config.Recommend.MaxSeeds); err != nil {
		return errors.Trace(err)
	}
	return nil
}

func validateIn(name, val string, expected *strset.Set) error {
	if !expected.Has(val) {
		return errors.Errorf("value of `%s` must be one of [%s], but the current value is %s",
			name, strings.Join(expected.List(), ","), val)
	}
	return nil
}

func validateNotNegative(name string, val int) error {
	if val < 0 {
		return errors.Errorf("value of `%s` must not be negative, but the current value is %d", name, val)
	}
	return nil
}

func validatePositive(name string, val int) error {
	if val <= 0 {
		return errors.Errorf("value of `%s` must be positive, but the current value is %d", name, val)
	}
	return nil
}

// validateFraction rejects missing thresholds: mining thresholds have no
// silent defaults.
func validateFraction(name string, val float64) error {
	if val <= 0 || val > 1 {
		return errors.Errorf("value of `%s` must be in (0, 1], but the current value is %v", name, val)
	}
	return nil
}
