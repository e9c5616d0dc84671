// Walmart Hackathon - Contextual Bandit Product Recommendation Engine
// Copyright 2026 Samar J. (samarJ19)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/samarJ19/wallmart-Hackathon

package recommend

import (
	"math"
	"sort"

	"github.com/samarJ19/wallmart-Hackathon/internal/arms"
	"github.com/samarJ19/wallmart-Hackathon/internal/catalog"
)

// selectUCB ranks candidates with the UCB1 rule
//
//	score = mean + c * sqrt( ln(totalPulls+1) / (pulls+1) )
//
// and returns the top k.
//
// Untried arms (pulls = 0) are guaranteed top priority: they are
// partitioned strictly above every pulled arm so each candidate gets a
// first touch before ranking narrows to exploitation. Their reported
// numeric score is the finite confidence bonus at pulls = 0.
//
// Ties break by catalog popularity descending, then product id
// ascending, so rankings are deterministic.
func selectUCB(candidates []*catalog.Product, stats map[string]arms.Stat, c float64, k int) []ScoredProduct {
	if len(candidates) == 0 || k <= 0 {
		return nil
	}

	// totalPulls sums across all of the user's arms, not just the
	// candidates in this pool.
	var totalPulls int64
	for _, stat := range stats {
		totalPulls += stat.Pulls
	}
	bonusBase := math.Log(float64(totalPulls) + 1)

	type scored struct {
		product *catalog.Product
		stat    arms.Stat
		score   float64
	}

	untried := make([]scored, 0, len(candidates))
	tried := make([]scored, 0, len(candidates))
	for _, p := range candidates {
		stat := stats[p.ID]
		s := scored{
			product: p,
			stat:    stat,
			score:   stat.Mean() + c*math.Sqrt(bonusBase/float64(stat.Pulls+1)),
		}
		if stat.Pulls == 0 {
			untried = append(untried, s)
		} else {
			tried = append(tried, s)
		}
	}

	sort.Slice(untried, func(i, j int) bool {
		a, b := untried[i].product, untried[j].product
		if a.Popularity != b.Popularity {
			return a.Popularity > b.Popularity
		}
		return a.ID < b.ID
	})
	sort.Slice(tried, func(i, j int) bool {
		if tried[i].score != tried[j].score {
			return tried[i].score > tried[j].score
		}
		a, b := tried[i].product, tried[j].product
		if a.Popularity != b.Popularity {
			return a.Popularity > b.Popularity
		}
		return a.ID < b.ID
	})

	ranked := append(untried, tried...)
	if k > len(ranked) {
		k = len(ranked)
	}

	out := make([]ScoredProduct, k)
	for i := 0; i < k; i++ {
		out[i] = ScoredProduct{
			ProductID: ranked[i].product.ID,
			Score:     ranked[i].score,
			Rank:      i + 1,
		}
	}
	return out
}
