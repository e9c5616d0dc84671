// Walmart Hackathon - Contextual Bandit Product Recommendation Engine
// Copyright 2026 Samar J. (samarJ19)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/samarJ19/wallmart-Hackathon

package recommend

import (
	"fmt"
	"hash/fnv"
	"sort"
	"time"

	"github.com/samarJ19/wallmart-Hackathon/internal/catalog"
)

// jitterBucket is the time bucket width for the deterministic
// cold-start jitter seed. Within one bucket a user sees a stable
// ranking; across buckets the jitter reshuffles near-ties.
const jitterBucket = time.Hour

// ColdStartWeights are the heuristic score components for new users.
type ColdStartWeights struct {
	Popularity float64
	Recency    float64
	Affinity   float64
}

// selectColdStart ranks candidates for a user below the interaction
// threshold with a deterministic content/popularity heuristic:
//
//	score = w1*popularity + w2*recency + w3*affinity + jitter
//
// Popularity and recency are min-max normalized over the pool (an
// all-equal component normalizes to 0.5). The jitter is seeded from
// (userID, time bucket, productID), so brand-new users do not all see
// the identical ranking yet test runs stay reproducible.
func selectColdStart(candidates []*catalog.Product, affinity map[string]float64,
	weights ColdStartWeights, jitterAmplitude float64, userID string, now time.Time, k int,
) []ScoredProduct {
	if len(candidates) == 0 || k <= 0 {
		return nil
	}

	popNorm := normalizePopularity(candidates)
	recNorm := normalizeRecency(candidates)
	bucket := now.Unix() / int64(jitterBucket/time.Second)

	type scored struct {
		product *catalog.Product
		score   float64
	}
	ranked := make([]scored, len(candidates))
	for i, p := range candidates {
		score := weights.Popularity*popNorm[i] +
			weights.Recency*recNorm[i] +
			weights.Affinity*affinity[p.Category] +
			jitterAmplitude*jitter(userID, bucket, p.ID)
		ranked[i] = scored{product: p, score: score}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		a, b := ranked[i].product, ranked[j].product
		if a.Popularity != b.Popularity {
			return a.Popularity > b.Popularity
		}
		return a.ID < b.ID
	})

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

// normalizePopularity min-max normalizes popularity over the pool.
func normalizePopularity(candidates []*catalog.Product) []float64 {
	minPop, maxPop := candidates[0].Popularity, candidates[0].Popularity
	for _, p := range candidates[1:] {
		if p.Popularity < minPop {
			minPop = p.Popularity
		}
		if p.Popularity > maxPop {
			maxPop = p.Popularity
		}
	}

	out := make([]float64, len(candidates))
	if minPop == maxPop {
		for i := range out {
			out[i] = 0.5
		}
		return out
	}
	span := float64(maxPop - minPop)
	for i, p := range candidates {
		out[i] = float64(p.Popularity-minPop) / span
	}
	return out
}

// normalizeRecency min-max normalizes catalog age; newer products score
// higher. Products with no AddedAt collapse to the oldest bound.
func normalizeRecency(candidates []*catalog.Product) []float64 {
	minAt, maxAt := candidates[0].AddedAt.Unix(), candidates[0].AddedAt.Unix()
	for _, p := range candidates[1:] {
		at := p.AddedAt.Unix()
		if at < minAt {
			minAt = at
		}
		if at > maxAt {
			maxAt = at
		}
	}

	out := make([]float64, len(candidates))
	if minAt == maxAt {
		for i := range out {
			out[i] = 0.5
		}
		return out
	}
	span := float64(maxAt - minAt)
	for i, p := range candidates {
		out[i] = float64(p.AddedAt.Unix()-minAt) / span
	}
	return out
}

// jitter derives a deterministic value in [0, 1) from the user, the
// time bucket, and the product. Not randomness: the same inputs always
// produce the same value.
func jitter(userID string, bucket int64, productID string) float64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%d|%s", userID, bucket, productID)
	return float64(h.Sum64()>>11) / float64(1<<53)
}
