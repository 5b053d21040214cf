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

package mining

import (
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
)

func basket(userId int, items ...string) Transaction {
	return Transaction{UserId: userId, Items: mapset.NewSet(items...)}
}

func TestMinePerfectRule(t *testing.T) {
	// every user who watched A and B also watched C; C appears in 4 of 5 baskets
	transactions := []Transaction{
		basket(1, "A", "B", "C"),
		basket(2, "A", "B", "C"),
		basket(3, "A", "B", "C"),
		basket(4, "C"),
		basket(5, "D"),
	}
	rules, err := Mine(transactions, Config{MinSupport: 0.5, MinConfidence: 0.9})
	assert.NoError(t, err)
	var found bool
	for _, rule := range rules {
		if assertEqualItems(rule.Antecedent, "A", "B") && assertEqualItems(rule.Consequent, "C") {
			found = true
			assert.Equal(t, 0.6, rule.Support)
			assert.Equal(t, 1.0, rule.Confidence)
			// lift = confidence / support(C) = 1 / 0.8
			assert.InDelta(t, 1.25, rule.Lift, 1e-9)
		}
	}
	assert.True(t, found)
}

func assertEqualItems(items []string, expected ...string) bool {
	return mapset.NewSet(items...).Equal(mapset.NewSet(expected...))
}

func TestMineThresholdsHold(t *testing.T) {
	transactions := []Transaction{
		basket(1, "A", "B"),
		basket(2, "A", "B", "C"),
		basket(3, "A", "C"),
		basket(4, "B", "C"),
		basket(5, "A", "B", "D"),
	}
	cfg := Config{MinSupport: 0.4, MinConfidence: 0.6}
	rules, err := Mine(transactions, cfg)
	assert.NoError(t, err)
	assert.NotEmpty(t, rules)
	for _, rule := range rules {
		assert.GreaterOrEqual(t, rule.Support, cfg.MinSupport)
		assert.GreaterOrEqual(t, rule.Confidence, cfg.MinConfidence)
	}
}

func TestMineAntiMonotonicity(t *testing.T) {
	transactions := []Transaction{
		basket(1, "A", "B", "C", "D"),
		basket(2, "A", "B", "C"),
		basket(3, "A", "B"),
		basket(4, "A"),
		basket(5, "B"),
	}
	support := frequentItemsets(transactions, 0.4, 4)
	// for all A ⊆ B: support(A) >= support(B)
	for key, count := range support {
		items := splitKey(key)
		if len(items) < 2 {
			continue
		}
		for drop := range items {
			subset := make([]string, 0, len(items)-1)
			subset = append(subset, items[:drop]...)
			subset = append(subset, items[drop+1:]...)
			subsetCount, frequent := support[itemsetKey(subset)]
			assert.True(t, frequent, "frequent itemset %v has pruned subset %v", items, subset)
			assert.GreaterOrEqual(t, subsetCount, count)
		}
	}
}

func splitKey(key string) []string {
	items := []string{}
	start := 0
	for i := 0; i < len(key); i++ {
		if key[i] == itemsetSeparator[0] {
			items = append(items, key[start:i])
			start = i + 1
		}
	}
	return append(items, key[start:])
}

func TestMineEmptyResult(t *testing.T) {
	transactions := []Transaction{
		basket(1, "A"),
		basket(2, "B"),
		basket(3, "C"),
	}
	// thresholds so high that no itemset qualifies
	rules, err := Mine(transactions, Config{MinSupport: 0.9, MinConfidence: 0.9})
	assert.NoError(t, err)
	assert.Empty(t, rules)
}

func TestMineInvalidConfig(t *testing.T) {
	transactions := []Transaction{basket(1, "A")}
	_, err := Mine(transactions, Config{MinSupport: 0, MinConfidence: 0.5})
	assert.Error(t, err)
	_, err = Mine(transactions, Config{MinSupport: 0.5, MinConfidence: 0})
	assert.Error(t, err)
	_, err = Mine(transactions, Config{MinSupport: 1.5, MinConfidence: 0.5})
	assert.Error(t, err)
}

func TestMineFixedAntecedent(t *testing.T) {
	transactions := []Transaction{
		basket(1, "A", "B"),
		basket(2, "A", "B"),
		basket(3, "A", "C"),
		basket(4, "B", "C"),
	}
	rules, err := Mine(transactions, Config{
		MinSupport:      0.25,
		MinConfidence:   0.1,
		FixedAntecedent: []string{"A"},
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, rules)
	for _, rule := range rules {
		assert.Equal(t, []string{"A"}, rule.Antecedent)
	}
}

func TestMineFixedConsequent(t *testing.T) {
	transactions := []Transaction{
		basket(1, "A", "B"),
		basket(2, "A", "B"),
		basket(3, "A", "C"),
		basket(4, "B", "C"),
	}
	rules, err := Mine(transactions, Config{
		MinSupport:      0.25,
		MinConfidence:   0.1,
		FixedConsequent: []string{"C"},
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, rules)
	for _, rule := range rules {
		assert.Equal(t, []string{"C"}, rule.Consequent)
	}
}

func TestMineDeterministicOrder(t *testing.T) {
	transactions := []Transaction{
		basket(1, "A", "B", "C"),
		basket(2, "A", "B", "C"),
		basket(3, "A", "B"),
		basket(4, "B", "C"),
		basket(5, "A", "C"),
	}
	cfg := Config{MinSupport: 0.2, MinConfidence: 0.2}
	first, err := Mine(transactions, cfg)
	assert.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Mine(transactions, cfg)
		assert.NoError(t, err)
		assert.Equal(t, first, again)
	}
	// lift descending
	for i := 1; i < len(first); i++ {
		assert.GreaterOrEqual(t, first[i-1].Lift, first[i].Lift)
	}
}

func TestMineMaxItemsetSize(t *testing.T) {
	transactions := []Transaction{
		basket(1, "A", "B", "C", "D", "E"),
		basket(2, "A", "B", "C", "D", "E"),
	}
	rules, err := Mine(transactions, Config{MinSupport: 0.5, MinConfidence: 0.5, MaxItemsetSize: 2})
	assert.NoError(t, err)
	for _, rule := range rules {
		assert.LessOrEqual(t, len(rule.Antecedent)+len(rule.Consequent), 2)
	}
}
