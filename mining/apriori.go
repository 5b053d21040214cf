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
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/filmrec-io/filmrec/base/log"
)

// DefaultMaxItemsetSize caps level-wise candidate generation. Candidate
// growth is exponential in itemset size, so the cap keeps mining practical on
// large catalogs.
const DefaultMaxItemsetSize = 4

// itemsets are sorted slices keyed by joining on a separator that cannot
// occur in titles or tags.
const itemsetSeparator = "\x1f"

// Rule is one association rule. Support is the fraction of transactions
// containing antecedent and consequent together, confidence the conditional
// probability of the consequent given the antecedent, and lift the ratio of
// confidence to the consequent's baseline frequency.
type Rule struct {
	Antecedent []string
	Consequent []string
	Support    float64
	Confidence float64
	Lift       float64
}

// Config configures a mining run. MinSupport and MinConfidence are required:
// there are no silent defaults.
type Config struct {
	MinSupport     float64
	MinConfidence  float64
	MaxItemsetSize int
	// FixedAntecedent restricts the rule list to rules whose left-hand side
	// equals the given set ("what do people who like X also like").
	FixedAntecedent []string
	// FixedConsequent restricts the rule list to rules whose right-hand side
	// equals the given set ("what do people watch before X").
	FixedConsequent []string
}

// Mine generates all association rules whose support and confidence meet the
// configured thresholds, sorted by lift descending with deterministic tie
// breaking. An empty rule list is a valid result, not an error: callers must
// lower thresholds or report "no recommendation".
func Mine(transactions []Transaction, cfg Config) ([]Rule, error) {
	if cfg.MinSupport <= 0 || cfg.MinSupport > 1 {
		return nil, errors.Errorf("minimum support must be in (0, 1], got %v", cfg.MinSupport)
	}
	if cfg.MinConfidence <= 0 || cfg.MinConfidence > 1 {
		return nil, errors.Errorf("minimum confidence must be in (0, 1], got %v", cfg.MinConfidence)
	}
	maxSize := cfg.MaxItemsetSize
	if maxSize <= 0 {
		maxSize = DefaultMaxItemsetSize
	}
	if len(transactions) == 0 {
		return []Rule{}, nil
	}
	support := frequentItemsets(transactions, cfg.MinSupport, maxSize)
	rules := generateRules(support, len(transactions), cfg.MinConfidence)
	if cfg.FixedAntecedent != nil {
		fixed := itemsetKey(normalizeItemset(cfg.FixedAntecedent))
		rules = lo.Filter(rules, func(rule Rule, _ int) bool {
			return itemsetKey(rule.Antecedent) == fixed
		})
	}
	if cfg.FixedConsequent != nil {
		fixed := itemsetKey(normalizeItemset(cfg.FixedConsequent))
		rules = lo.Filter(rules, func(rule Rule, _ int) bool {
			return itemsetKey(rule.Consequent) == fixed
		})
	}
	sortRules(rules)
	log.Logger().Debug("mined association rules",
		zap.Int("transactions", len(transactions)),
		zap.Int("frequent_itemsets", len(support)),
		zap.Int("rules", len(rules)))
	return rules, nil
}

// frequentItemsets runs the level-wise search. The anti-monotonicity
// invariant bounds the search: a superset's support can never exceed any
// subset's support, so candidates with an infrequent subset are pruned
// without counting.
func frequentItemsets(transactions []Transaction, minSupport float64, maxSize int) map[string]int {
	n := len(transactions)
	minCount := int(minSupport * float64(n))
	if float64(minCount) < minSupport*float64(n) {
		minCount++
	}
	if minCount < 1 {
		minCount = 1
	}
	support := make(map[string]int)
	// 1-itemsets
	counts := make(map[string]int)
	for _, transaction := range transactions {
		transaction.Items.Each(func(item string) bool {
			counts[item]++
			return false
		})
	}
	frequent := make([][]string, 0)
	for item, count := range counts {
		if count >= minCount {
			support[item] = count
			frequent = append(frequent, []string{item})
		}
	}
	sortItemsets(frequent)
	// (k+1)-itemsets from k-itemsets
	for k := 1; k < maxSize && len(frequent) > 0; k++ {
		candidates := joinItemsets(frequent, support)
		next := make([][]string, 0)
		for _, candidate := range candidates {
			count := 0
			for _, transaction := range transactions {
				if transaction.Items.Contains(candidate...) {
					count++
				}
			}
			if count >= minCount {
				support[itemsetKey(candidate)] = count
				next = append(next, candidate)
			}
		}
		sortItemsets(next)
		frequent = next
	}
	return support
}

// joinItemsets joins sorted k-itemsets sharing a (k-1)-prefix into candidate
// (k+1)-itemsets, pruning candidates with any infrequent k-subset.
func joinItemsets(frequent [][]string, support map[string]int) [][]string {
	candidates := make([][]string, 0)
	for i := 0; i < len(frequent); i++ {
		for j := i + 1; j < len(frequent); j++ {
			a, b := frequent[i], frequent[j]
			k := len(a)
			if !equalPrefix(a, b, k-1) {
				continue
			}
			candidate := make([]string, k+1)
			copy(candidate, a)
			candidate[k] = b[k-1]
			if candidate[k-1] > candidate[k] {
				candidate[k-1], candidate[k] = candidate[k], candidate[k-1]
			}
			if hasInfrequentSubset(candidate, support) {
				continue
			}
			candidates = append(candidates, candidate)
		}
	}
	return candidates
}

func equalPrefix(a, b []string, n int) bool {
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func hasInfrequentSubset(candidate []string, support map[string]int) bool {
	subset := make([]string, len(candidate)-1)
	for drop := range candidate {
		copy(subset, candidate[:drop])
		copy(subset[drop:], candidate[drop+1:])
		if _, frequent := support[itemsetKey(subset)]; !frequent {
			return true
		}
	}
	return false
}

// generateRules splits every frequent itemset of size >= 2 into all non-empty
// antecedent/consequent pairs and keeps splits meeting the confidence
// threshold. Every subset of a frequent itemset is frequent, so all required
// supports are known.
func generateRules(support map[string]int, n int, minConfidence float64) []Rule {
	rules := make([]Rule, 0)
	for key, count := range support {
		items := strings.Split(key, itemsetSeparator)
		if len(items) < 2 {
			continue
		}
		// enumerate non-empty proper subsets as antecedents
		for mask := 1; mask < (1<<len(items))-1; mask++ {
			antecedent := make([]string, 0, len(items))
			consequent := make([]string, 0, len(items))
			for i, item := range items {
				if mask&(1<<i) != 0 {
					antecedent = append(antecedent, item)
				} else {
					consequent = append(consequent, item)
				}
			}
			antecedentCount := support[itemsetKey(antecedent)]
			consequentCount := support[itemsetKey(consequent)]
			confidence := float64(count) / float64(antecedentCount)
			if confidence < minConfidence {
				continue
			}
			consequentSupport := float64(consequentCount) / float64(n)
			rules = append(rules, Rule{
				Antecedent: antecedent,
				Consequent: consequent,
				Support:    float64(count) / float64(n),
				Confidence: confidence,
				Lift:       confidence / consequentSupport,
			})
		}
	}
	return rules
}

func sortRules(rules []Rule) {
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Lift != rules[j].Lift {
			return rules[i].Lift > rules[j].Lift
		}
		if rules[i].Confidence != rules[j].Confidence {
			return rules[i].Confidence > rules[j].Confidence
		}
		a, b := itemsetKey(rules[i].Antecedent), itemsetKey(rules[j].Antecedent)
		if a != b {
			return a < b
		}
		return itemsetKey(rules[i].Consequent) < itemsetKey(rules[j].Consequent)
	})
}

func sortItemsets(itemsets [][]string) {
	sort.Slice(itemsets, func(i, j int) bool {
		return itemsetKey(itemsets[i]) < itemsetKey(itemsets[j])
	})
}

func normalizeItemset(items []string) []string {
	set := mapset.NewSet(items...)
	normalized := set.ToSlice()
	sort.Strings(normalized)
	return normalized
}

func itemsetKey(items []string) string {
	return strings.Join(items, itemsetSeparator)
}
