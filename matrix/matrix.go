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

// Package matrix pivots rating events into a user-item matrix and scores
// candidate items against a seed set with pairwise-complete correlation.
package matrix

import (
	"github.com/chewxy/math32"
	"github.com/juju/errors"

	"github.com/filmrec-io/filmrec/base"
	"github.com/filmrec-io/filmrec/dataset"
)

// Options controls matrix construction.
type Options struct {
	// SampleUsers restricts the matrix to a random sample of user ids.
	// Zero keeps all users.
	SampleUsers int
	// RandomSeed makes the user sample reproducible.
	RandomSeed int64
}

// Matrix is a dense user-item matrix. Rows are users, columns are titles or
// genre tags, cells are summed scores. Missing cells are NaN, never zero:
// absence means "never rated".
type Matrix struct {
	users       []int
	userIndex   map[int]int
	columns     []string
	columnIndex map[string]int
	values      [][]float32
}

// Build pivots joined catalog-rating rows into a user-item matrix. A user
// rating the same column multiple times sums the scores.
func Build(rows []dataset.Row, key dataset.PivotKey, opts Options) (*Matrix, error) {
	if len(rows) == 0 {
		return nil, errors.Trace(dataset.ErrEmptyInput)
	}
	// collect distinct users
	userIndex := make(map[int]int)
	users := make([]int, 0)
	for _, row := range rows {
		if _, exist := userIndex[row.UserId]; !exist {
			userIndex[row.UserId] = len(users)
			users = append(users, row.UserId)
		}
	}
	// sample users
	if opts.SampleUsers > 0 && opts.SampleUsers < len(users) {
		rng := base.NewRandomGenerator(opts.RandomSeed)
		sampled := rng.Sample(0, len(users), opts.SampleUsers)
		sampledUsers := make([]int, 0, len(sampled))
		sampledIndex := make(map[int]int, len(sampled))
		for _, i := range sampled {
			sampledIndex[users[i]] = len(sampledUsers)
			sampledUsers = append(sampledUsers, users[i])
		}
		users, userIndex = sampledUsers, sampledIndex
	}
	m := &Matrix{
		users:       users,
		userIndex:   userIndex,
		columnIndex: make(map[string]int),
	}
	for _, row := range rows {
		u, exist := m.userIndex[row.UserId]
		if !exist {
			continue
		}
		switch key {
		case dataset.PivotGenre:
			for _, genre := range row.Genres {
				m.add(u, genre, row.Score)
			}
		default:
			m.add(u, row.Title, row.Score)
		}
	}
	return m, nil
}

func (m *Matrix) add(user int, column string, score float32) {
	c, exist := m.columnIndex[column]
	if !exist {
		c = len(m.columns)
		m.columnIndex[column] = c
		m.columns = append(m.columns, column)
		for u := range m.values {
			m.values[u] = append(m.values[u], math32.NaN())
		}
	}
	for len(m.values) < len(m.users) {
		row := make([]float32, len(m.columns))
		for i := range row {
			row[i] = math32.NaN()
		}
		m.values = append(m.values, row)
	}
	if math32.IsNaN(m.values[user][c]) {
		m.values[user][c] = score
	} else {
		m.values[user][c] += score
	}
}

// Users returns the user ids of the matrix rows.
func (m *Matrix) Users() []int {
	return m.users
}

// Columns returns the column names of the matrix.
func (m *Matrix) Columns() []string {
	return m.columns
}

// HasColumn reports whether the matrix contains a column.
func (m *Matrix) HasColumn(name string) bool {
	_, exist := m.columnIndex[name]
	return exist
}

// Column returns the score vector of a column over all users. Missing cells
// are NaN.
func (m *Matrix) Column(name string) []float32 {
	c, exist := m.columnIndex[name]
	if !exist {
		return nil
	}
	vector := make([]float32, len(m.users))
	for u := range m.users {
		vector[u] = m.values[u][c]
	}
	return vector
}

// Get returns the cell of a user and a column. Missing cells are NaN.
func (m *Matrix) Get(userId int, column string) float32 {
	u, exist := m.userIndex[userId]
	if !exist {
		return math32.NaN()
	}
	c, exist := m.columnIndex[column]
	if !exist {
		return math32.NaN()
	}
	return m.values[u][c]
}
