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

package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strconv"

	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/filmrec-io/filmrec/base/log"
	"github.com/filmrec-io/filmrec/config"
	"github.com/filmrec-io/filmrec/dataset"
	"github.com/filmrec-io/filmrec/matrix"
	"github.com/filmrec-io/filmrec/mining"
	"github.com/filmrec-io/filmrec/recommend"
)

var rootCommand = &cobra.Command{
	Use:   "filmrec",
	Short: "Batch movie recommendation over a ratings dataset.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		log.SetLogger(cmd.Root().PersistentFlags(), debug)
	},
}

var recommendCommand = &cobra.Command{
	Use:   "recommend SEED...",
	Short: "Recommend movies similar to a seed set of titles.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, data := loadAll(cmd)
		if len(args) > cfg.Recommend.MaxSeeds {
			log.Logger().Fatal("too many seed titles",
				zap.Int("seeds", len(args)), zap.Int("max_seeds", cfg.Recommend.MaxSeeds))
		}
		rows, err := data.Join()
		if err != nil {
			log.Logger().Fatal("failed to join tables", zap.Error(err))
		}
		m, err := matrix.Build(rows, cfg.PivotKey(), matrix.Options{
			SampleUsers: cfg.Matrix.SampleUsers,
			RandomSeed:  cfg.Matrix.RandomSeed,
		})
		if err != nil {
			log.Logger().Fatal("failed to build matrix", zap.Error(err))
		}
		scores, err := matrix.SeedScores(m, args)
		if err != nil {
			log.Logger().Fatal("failed to score candidates", zap.Error(err))
		}
		stats, err := data.Stats()
		if err != nil {
			log.Logger().Fatal("failed to compute popularity stats", zap.Error(err))
		}
		recommendations := recommend.Recommend(recommend.FromSimilarity(scores),
			stats, data.Movies, args, recommend.Filter{
				MinMeanRating:  cfg.Recommend.MinMeanRating,
				MinRatingCount: cfg.Recommend.MinRatingCount,
				TopN:           cfg.Recommend.TopN,
			})
		renderRecommendations(recommendations)
	},
}

var mineCommand = &cobra.Command{
	Use:   "mine",
	Short: "Mine association rules over per-user viewing transactions.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, data := loadAll(cmd)
		rows, err := data.Join()
		if err != nil {
			log.Logger().Fatal("failed to join tables", zap.Error(err))
		}
		transactions, err := mining.BuildTransactions(rows, cfg.PivotKey())
		if err != nil {
			log.Logger().Fatal("failed to build transactions", zap.Error(err))
		}
		antecedent, _ := cmd.Flags().GetStringSlice("antecedent")
		consequent, _ := cmd.Flags().GetStringSlice("consequent")
		rules, err := mining.Mine(transactions, mining.Config{
			MinSupport:      cfg.Mining.MinSupport,
			MinConfidence:   cfg.Mining.MinConfidence,
			MaxItemsetSize:  cfg.Mining.MaxItemsetSize,
			FixedAntecedent: antecedent,
			FixedConsequent: consequent,
		})
		if err != nil {
			log.Logger().Fatal("failed to mine rules", zap.Error(err))
		}
		if len(rules) == 0 {
			fmt.Println("no rules found: lower the mining thresholds")
			return
		}
		renderRules(rules)
	},
}

var evaluateCommand = &cobra.Command{
	Use:   "evaluate",
	Short: "Score recommendation quality against held-out future ratings.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, data := loadAll(cmd)
		futurePath, _ := cmd.Flags().GetString("future")
		futureRatings, err := dataset.LoadRatings(futurePath)
		if err != nil {
			log.Logger().Fatal("failed to load future ratings", zap.Error(err))
		}
		nJobs, _ := cmd.Flags().GetInt("jobs")
		metrics, evaluated := evaluate(cfg, data, futureRatings, nJobs)
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("METRIC", "VALUE")
		table.Append([]string{"users evaluated", strconv.Itoa(evaluated)})
		table.Append([]string{"mean absolute error", fmt.Sprintf("%.4f", metrics.MAE)})
		table.Append([]string{"accuracy", fmt.Sprintf("%.2f%%", metrics.Accuracy)})
		table.Append([]string{"precision", fmt.Sprintf("%.2f%%", metrics.Precision)})
		table.Render()
	},
}

func init() {
	log.AddFlags(rootCommand.PersistentFlags())
	rootCommand.PersistentFlags().Bool("debug", false, "use debug log mode")
	rootCommand.PersistentFlags().StringP("config", "c", "config.toml", "path of configuration file")
	mineCommand.Flags().StringSlice("antecedent", nil, "restrict rules to a fixed left-hand side")
	mineCommand.Flags().StringSlice("consequent", nil, "restrict rules to a fixed right-hand side")
	evaluateCommand.Flags().String("future", "future.csv", "path of held-out future ratings CSV")
	evaluateCommand.Flags().Int("jobs", runtime.NumCPU(), "number of concurrent evaluation jobs")
	rootCommand.AddCommand(recommendCommand)
	rootCommand.AddCommand(mineCommand)
	rootCommand.AddCommand(evaluateCommand)
}

func loadAll(cmd *cobra.Command) (*config.Config, *dataset.Dataset) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Logger().Fatal("failed to load configuration",
			zap.String("config", configPath), zap.Error(err))
	}
	movies, err := dataset.LoadMovies(cfg.Data.MoviesPath)
	if err != nil {
		log.Logger().Fatal("failed to load movie catalog",
			zap.String("path", cfg.Data.MoviesPath), zap.Error(err))
	}
	ratings, err := dataset.LoadRatings(cfg.Data.RatingsPath)
	if err != nil {
		log.Logger().Fatal("failed to load rating events",
			zap.String("path", cfg.Data.RatingsPath), zap.Error(err))
	}
	return cfg, dataset.NewDataset(movies, ratings)
}

func renderRecommendations(recommendations []recommend.Recommendation) {
	if len(recommendations) == 0 {
		fmt.Println("no recommendations survive the popularity filter")
		return
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("RANK", "TITLE", "SCORE", "MEAN", "COUNT")
	for i, recommendation := range recommendations {
		table.Append([]string{
			strconv.Itoa(i + 1),
			recommendation.Title,
			fmt.Sprintf("%.4f", recommendation.Score),
			fmt.Sprintf("%.2f", recommendation.MeanRating),
			strconv.Itoa(recommendation.RatingCount),
		})
	}
	table.Render()
}

func renderRules(rules []mining.Rule) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ANTECEDENT", "CONSEQUENT", "SUPPORT", "CONFIDENCE", "LIFT")
	for _, rule := range rules {
		table.Append([]string{
			fmt.Sprintf("%v", rule.Antecedent),
			fmt.Sprintf("%v", rule.Consequent),
			fmt.Sprintf("%.4f", rule.Support),
			fmt.Sprintf("%.4f", rule.Confidence),
			fmt.Sprintf("%.4f", rule.Lift),
		})
	}
	table.Render()
}

// evaluate recommends for every user present in both the training and the
// future ratings, seeded by the user's top-rated titles, and aggregates the
// evaluation metrics. Per-user failures are recorded and skipped.
func evaluate(cfg *config.Config, data *dataset.Dataset, futureRatings []dataset.Rating, nJobs int) (recommend.Metrics, int) {
	rows, err := data.Join()
	if err != nil {
		log.Logger().Fatal("failed to join tables", zap.Error(err))
	}
	m, err := matrix.Build(rows, cfg.PivotKey(), matrix.Options{
		SampleUsers: cfg.Matrix.SampleUsers,
		RandomSeed:  cfg.Matrix.RandomSeed,
	})
	if err != nil {
		log.Logger().Fatal("failed to build matrix", zap.Error(err))
	}
	stats, err := data.Stats()
	if err != nil {
		log.Logger().Fatal("failed to compute popularity stats", zap.Error(err))
	}
	watched := watchedTitles(rows)
	future := futureTitles(data, futureRatings)
	queries := make([]recommend.Query, 0, len(m.Users()))
	for _, userId := range m.Users() {
		if len(future[userId]) == 0 {
			continue
		}
		queries = append(queries, recommend.Query{
			UserId: userId,
			Seeds:  topRatedTitles(rows, userId, cfg.Recommend.MaxSeeds),
		})
	}
	results := recommend.Batch(context.Background(), queries, nJobs, func(query recommend.Query) ([]recommend.Recommendation, error) {
		scores, err := matrix.SeedScores(m, query.Seeds)
		if err != nil {
			return nil, errors.Trace(err)
		}
		// exclude everything the user has already watched
		return recommend.Recommend(recommend.FromSimilarity(scores), stats,
			data.Movies, watched[query.UserId], recommend.Filter{
				MinMeanRating:  cfg.Recommend.MinMeanRating,
				MinRatingCount: cfg.Recommend.MinRatingCount,
				TopN:           cfg.Recommend.TopN,
			}), nil
	})
	outcomes := make([]recommend.Outcome, 0, len(results))
	for _, result := range results {
		if result.Err != nil {
			continue
		}
		recommended := make([]string, 0, len(result.Recommendations))
		for _, recommendation := range result.Recommendations {
			recommended = append(recommended, recommendation.Title)
		}
		outcomes = append(outcomes, recommend.NewOutcome(result.Query.UserId,
			watched[result.Query.UserId], recommended, future[result.Query.UserId]))
	}
	return recommend.Evaluate(outcomes, cfg.Recommend.TopN), len(outcomes)
}

func watchedTitles(rows []dataset.Row) map[int][]string {
	watched := make(map[int][]string)
	seen := make(map[int]map[string]bool)
	for _, row := range rows {
		if seen[row.UserId] == nil {
			seen[row.UserId] = make(map[string]bool)
		}
		if !seen[row.UserId][row.Title] {
			seen[row.UserId][row.Title] = true
			watched[row.UserId] = append(watched[row.UserId], row.Title)
		}
	}
	return watched
}

func futureTitles(data *dataset.Dataset, futureRatings []dataset.Rating) map[int][]string {
	future := dataset.NewDataset(data.Movies, futureRatings)
	rows, err := future.Join()
	if err != nil {
		log.Logger().Fatal("failed to join future ratings", zap.Error(err))
	}
	return watchedTitles(rows)
}

// topRatedTitles picks the highest-scored titles of one user as the seed set.
func topRatedTitles(rows []dataset.Row, userId, n int) []string {
	type rated struct {
		title string
		score float32
	}
	best := make([]rated, 0)
	for _, row := range rows {
		if row.UserId == userId {
			best = append(best, rated{row.Title, row.Score})
		}
	}
	sort.SliceStable(best, func(i, j int) bool {
		return best[i].score > best[j].score
	})
	if len(best) > n {
		best = best[:n]
	}
	seeds := make([]string, 0, len(best))
	for _, r := range best {
		seeds = append(seeds, r.title)
	}
	return seeds
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		log.Logger().Fatal("failed to execute", zap.Error(err))
	}
}
