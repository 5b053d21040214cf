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
	"github.com/spf13/viper"

	"github.com/filmrec-io/filmrec/dataset"
)

// Config is the configuration of a filmrec run. Mining thresholds and
// popularity filter thresholds vary with dataset size, so they are required:
// there are no built-in defaults for them.
type Config struct {
	Data      DataConfig      `mapstructure:"data"`
	Matrix    MatrixConfig    `mapstructure:"matrix"`
	Mining    MiningConfig    `mapstructure:"mining"`
	Recommend RecommendConfig `mapstructure:"recommend"`
}

type DataConfig struct {
	// MoviesPath is the movie catalog CSV (movieId, title, genres).
	MoviesPath string `mapstructure:"movies_path"`
	// RatingsPath is the rating events CSV (userId, movieId, rating, timestamp).
	RatingsPath string `mapstructure:"ratings_path"`
}

type MatrixConfig struct {
	// PivotKey selects matrix columns: "title" or "genre".
	PivotKey string `mapstructure:"pivot_key"`
	// SampleUsers restricts the matrix to a random user sample. Zero keeps
	// all users.
	SampleUsers int `mapstructure:"sample_users"`
	// RandomSeed makes user sampling reproducible.
	RandomSeed int64 `mapstructure:"random_seed"`
}

type MiningConfig struct {
	MinSupport     float64 `mapstructure:"min_support"`
	MinConfidence  float64 `mapstructure:"min_confidence"`
	MaxItemsetSize int     `mapstructure:"max_itemset_size"`
}

type RecommendConfig struct {
	MinMeanRating  float64 `mapstructure:"min_mean_rating"`
	MinRatingCount int     `mapstructure:"min_rating_count"`
	TopN           int     `mapstructure:"top_n"`
	// MaxSeeds is the largest seed set accepted from the UI.
	MaxSeeds int `mapstructure:"max_seeds"`
}

func setDefault() {
	viper.SetDefault("data.movies_path", "movie.csv")
	viper.SetDefault("data.ratings_path", "rating.csv")
	viper.SetDefault("matrix.pivot_key", string(dataset.PivotTitle))
	viper.SetDefault("matrix.sample_users", 0)
	viper.SetDefault("matrix.random_seed", 0)
	viper.SetDefault("mining.max_itemset_size", 4)
	viper.SetDefault("recommend.top_n", 10)
	viper.SetDefault("recommend.max_seeds", 3)
}

// Load reads and validates a TOML configuration file.
func Load(path string) (*Config, error) {
	setDefault()
	viper.SetConfigType("toml")
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return nil, errors.Trace(err)
	}
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, errors.Trace(err)
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &config, nil
}

// PivotKey returns the typed pivot key.
func (config *Config) PivotKey() dataset.PivotKey {
	return dataset.PivotKey(strings.ToLower(config.Matrix.PivotKey))
}
