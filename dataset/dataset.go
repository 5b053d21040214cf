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

// Package dataset loads the movie catalog and the rating events and joins them
// into the flat table consumed by the matrix and mining packages.
package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/filmrec-io/filmrec/base/log"
)

// ErrEmptyInput is returned when the joined catalog and rating tables contain
// zero rows.
var ErrEmptyInput = errors.New("empty input: no rows after joining catalog and ratings")

// UnknownGenre is substituted for movies without genre tags.
const UnknownGenre = "Unknown"

// PivotKey selects which column of the joined table keys a pivot: movie
// titles or genre tags.
type PivotKey string

const (
	// PivotTitle keys pivots by movie title.
	PivotTitle PivotKey = "title"
	// PivotGenre keys pivots by genre tag.
	PivotGenre PivotKey = "genre"
)

// Movie is one entry of the movie catalog. Immutable once loaded.
type Movie struct {
	MovieId int
	Title   string
	Genres  []string
}

// Rating is one rating event. Scores are typically 0.5-5.0 in half-point
// steps. The timestamp column of the source file is ignored.
type Rating struct {
	UserId  int
	MovieId int
	Score   float32
}

// Row is one row of the catalog-ratings join.
type Row struct {
	UserId int
	Title  string
	Genres []string
	Score  float32
}

// Stats is the popularity summary of one title.
type Stats struct {
	Count int
	Mean  float64
}

// Dataset bundles the loaded catalog and rating events.
type Dataset struct {
	Movies  []Movie
	Ratings []Rating

	movieIndex map[int]int
}

// NewDataset creates a dataset and indexes the catalog by movie id.
func NewDataset(movies []Movie, ratings []Rating) *Dataset {
	index := make(map[int]int, len(movies))
	for i, movie := range movies {
		index[movie.MovieId] = i
	}
	return &Dataset{
		Movies:     movies,
		Ratings:    ratings,
		movieIndex: index,
	}
}

// Join merges rating events with catalog metadata. Events referencing unknown
// movie ids are dropped, matching an inner join on movie id.
func (d *Dataset) Join() ([]Row, error) {
	rows := make([]Row, 0, len(d.Ratings))
	dropped := 0
	for _, rating := range d.Ratings {
		i, exist := d.movieIndex[rating.MovieId]
		if !exist {
			dropped++
			continue
		}
		rows = append(rows, Row{
			UserId: rating.UserId,
			Title:  d.Movies[i].Title,
			Genres: d.Movies[i].Genres,
			Score:  rating.Score,
		})
	}
	if dropped > 0 {
		log.Logger().Warn("dropped rating events referencing unknown movies",
			zap.Int("dropped", dropped))
	}
	if len(rows) == 0 {
		return nil, errors.Trace(ErrEmptyInput)
	}
	return rows, nil
}

// Stats groups rating events by title and returns rating count and mean
// rating per title.
func (d *Dataset) Stats() (map[string]Stats, error) {
	rows, err := d.Join()
	if err != nil {
		return nil, errors.Trace(err)
	}
	dict := NewFreqDict()
	sums := make([]float64, 0)
	for _, row := range rows {
		id := dict.Id(row.Title)
		if id >= len(sums) {
			sums = append(sums, 0)
		}
		sums[id] += float64(row.Score)
	}
	stats := make(map[string]Stats, dict.Count())
	for id := 0; id < dict.Count(); id++ {
		title, _ := dict.String(id)
		count := dict.Freq(id)
		stats[title] = Stats{
			Count: count,
			Mean:  sums[id] / float64(count),
		}
	}
	return stats, nil
}

// Users returns the sorted distinct user ids of the rating events.
func (d *Dataset) Users() []int {
	users := lo.Uniq(lo.Map(d.Ratings, func(r Rating, _ int) int {
		return r.UserId
	}))
	sort.Ints(users)
	return users
}

// Titles returns the catalog titles in catalog order.
func (d *Dataset) Titles() []string {
	return lo.Map(d.Movies, func(m Movie, _ int) string {
		return m.Title
	})
}

// LoadMovies reads a movie catalog with columns (movieId, title, genres).
// Genre tags are separated by '|'. A header line is detected and skipped.
// Rows with a malformed movie id are dropped with a logged diagnostic.
func LoadMovies(path string) ([]Movie, error) {
	movies := make([]Movie, 0)
	err := readCSV(path, "Loading movies", 3, func(line int, fields []string) {
		movieId, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			log.Logger().Warn("drop movie row with invalid id",
				zap.Int("line", line), zap.String("value", fields[0]))
			return
		}
		genres := strings.Split(fields[2], "|")
		if len(genres) == 1 && strings.TrimSpace(genres[0]) == "" {
			genres = []string{UnknownGenre}
		}
		movies = append(movies, Movie{
			MovieId: movieId,
			Title:   fields[1],
			Genres:  genres,
		})
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return movies, nil
}

// LoadRatings reads rating events with columns (userId, movieId, rating,
// [timestamp]). The timestamp column is ignored. Rows with malformed numeric
// fields are dropped with a logged diagnostic.
func LoadRatings(path string) ([]Rating, error) {
	ratings := make([]Rating, 0)
	err := readCSV(path, "Loading ratings", 3, func(line int, fields []string) {
		userId, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			log.Logger().Warn("drop rating row with invalid user id",
				zap.Int("line", line), zap.String("value", fields[0]))
			return
		}
		movieId, err := strconv.Atoi(strings.TrimSpace(fields[1]))
		if err != nil {
			log.Logger().Warn("drop rating row with invalid movie id",
				zap.Int("line", line), zap.String("value", fields[1]))
			return
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 32)
		if err != nil {
			log.Logger().Warn("drop rating row with invalid score",
				zap.Int("line", line), zap.String("value", fields[2]))
			return
		}
		ratings = append(ratings, Rating{
			UserId:  userId,
			MovieId: movieId,
			Score:   float32(score),
		})
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return ratings, nil
}

// readCSV streams records from a CSV file. The first line is treated as a
// header when its fields fail numeric parsing. Records shorter than minFields
// are dropped.
func readCSV(path, description string, minFields int, handler func(line int, fields []string)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Trace(err)
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		return errors.Trace(err)
	}
	pbReader := progressbar.NewReader(f, progressbar.DefaultBytes(stat.Size(), description))
	reader := csv.NewReader(&pbReader)
	reader.FieldsPerRecord = -1
	line := 0
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return errors.Trace(err)
		}
		line++
		if len(fields) < minFields {
			log.Logger().Warn("drop short row", zap.Int("line", line),
				zap.Int("fields", len(fields)))
			continue
		}
		if line == 1 {
			if _, err := strconv.Atoi(strings.TrimSpace(fields[0])); err != nil {
				// header line
				continue
			}
		}
		handler(line, fields)
	}
	return nil
}
