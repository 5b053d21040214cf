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

// Package mining converts rating events into per-user transactions and mines
// association rules over them with a level-wise frequent-itemset search.
package mining

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"

	"github.com/filmrec-io/filmrec/dataset"
)

// Pair is one row of the flat transactional representation: one row per
// (user, item) membership, no duplicates.
type Pair struct {
	UserId int
	Item   string
}

// Transaction is the basket of one user: the set of distinct items (or genre
// tags) the user rated at least once. This is a presence model, not a
// frequency model.
type Transaction struct {
	UserId int
	Items  mapset.Set[string]
}

// BuildTransactions groups joined catalog-rating rows into one transaction
// per distinct user, ordered by user id. Duplicate items within one user
// collapse into one basket entry.
func BuildTransactions(rows []dataset.Row, key dataset.PivotKey) ([]Transaction, error) {
	if len(rows) == 0 {
		return nil, errors.Trace(dataset.ErrEmptyInput)
	}
	baskets := make(map[int]mapset.Set[string])
	for _, row := range rows {
		basket, exist := baskets[row.UserId]
		if !exist {
			basket = mapset.NewSet[string]()
			baskets[row.UserId] = basket
		}
		switch key {
		case dataset.PivotGenre:
			basket.Append(row.Genres...)
		default:
			basket.Add(row.Title)
		}
	}
	userIds := make([]int, 0, len(baskets))
	for userId := range baskets {
		userIds = append(userIds, userId)
	}
	sort.Ints(userIds)
	transactions := make([]Transaction, 0, len(userIds))
	for _, userId := range userIds {
		transactions = append(transactions, Transaction{UserId: userId, Items: baskets[userId]})
	}
	return transactions, nil
}

// Pairs flattens transactions into the one-row-per-membership representation
// consumed by external itemset-mining tools. Rows are ordered by user id, then
// lexically by item.
func Pairs(transactions []Transaction) []Pair {
	pairs := make([]Pair, 0)
	for _, transaction := range transactions {
		items := transaction.Items.ToSlice()
		sort.Strings(items)
		for _, item := range items {
			pairs = append(pairs, Pair{UserId: transaction.UserId, Item: item})
		}
	}
	return pairs
}

// FromPairs rebuilds transactions from the flat representation. Duplicate
// pairs collapse.
func FromPairs(pairs []Pair) []Transaction {
	baskets := make(map[int]mapset.Set[string])
	for _, pair := range pairs {
		basket, exist := baskets[pair.UserId]
		if !exist {
			basket = mapset.NewSet[string]()
			baskets[pair.UserId] = basket
		}
		basket.Add(pair.Item)
	}
	userIds := make([]int, 0, len(baskets))
	for userId := range baskets {
		userIds = append(userIds, userId)
	}
	sort.Ints(userIds)
	transactions := make([]Transaction, 0, len(userIds))
	for _, userId := range userIds {
		transactions = append(transactions, Transaction{UserId: userId, Items: baskets[userId]})
	}
	return transactions
}
