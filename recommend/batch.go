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
	"context"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/filmrec-io/filmrec/base/log"
	"github.com/filmrec-io/filmrec/base/parallel"
)

// Query is one independent recommendation request in a batch.
type Query struct {
	UserId int
	Seeds  []string
}

// Result is the per-query outcome of a batch run. Err is set when the query
// failed; the rest of the batch is unaffected.
type Result struct {
	Query           Query
	Recommendations []Recommendation
	Err             error
}

// Batch runs independent recommendation queries. Each query is isolated: a
// failing query is recorded as a failed result with a logged diagnostic and
// the batch continues. Queries share only read-only inputs, so they run in
// parallel.
func Batch(ctx context.Context, queries []Query, nWorkers int,
	run func(Query) ([]Recommendation, error)) []Result {
	results := make([]Result, len(queries))
	failures := atomic.NewInt64(0)
	_ = parallel.Parallel(ctx, len(queries), nWorkers, func(_, jobId int) error {
		query := queries[jobId]
		recommendations, err := run(query)
		if err != nil {
			failures.Inc()
			log.Logger().Warn("recommendation query failed",
				zap.Int("user_id", query.UserId),
				zap.Strings("seeds", query.Seeds),
				zap.Error(err))
		}
		results[jobId] = Result{
			Query:           query,
			Recommendations: recommendations,
			Err:             err,
		}
		return nil
	})
	if n := failures.Load(); n > 0 {
		log.Logger().Warn("batch finished with failed queries",
			zap.Int64("failed", n), zap.Int("total", len(queries)))
	}
	return results
}
