package analysis

import (
	"math"
	"sort"

	"titan-screener/internal/domain"
)

// priceCluster groups pivots that sit close together in price.
type priceCluster struct {
	Centroid float64
	Pivots   []domain.Pivot
}

const kmeansMaxIterations = 50

// clusterPivots partitions same-kind pivots by 1-D k-means over their
// prices. k is max(2, min(len/3, len-1)); the floor of 2 wins over the
// len-1 cap, so two lone pivots split into singletons that the touch
// filter discards rather than merging into a level the market never
// pivoted at. Initial centroids are spread over the sorted price range
// and assignment ties break toward the lower centroid index, so
// identical inputs always produce identical clusters. Clusters with
// fewer than minTouches members are discarded: a level is only
// meaningful once the market has revisited it.
func clusterPivots(pivots []domain.Pivot, minTouches int) []priceCluster {
	if len(pivots) < 2 {
		return nil
	}

	k := len(pivots) / 3
	if k > len(pivots)-1 {
		k = len(pivots) - 1
	}
	if k < 2 {
		k = 2
	}

	centroids := initialCentroids(pivots, k)
	assignments := make([]int, len(pivots))

	for iter := 0; iter < kmeansMaxIterations; iter++ {
		changed := false

		for i, p := range pivots {
			best := nearestCentroid(centroids, p.Price)
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}

		// Recompute centroids as member means. Empty clusters keep their
		// previous centroid so the index mapping stays stable.
		sums := make([]float64, k)
		counts := make([]int, k)
		for i, p := range pivots {
			sums[assignments[i]] += p.Price
			counts[assignments[i]]++
		}
		for c := 0; c < k; c++ {
			if counts[c] > 0 {
				centroids[c] = sums[c] / float64(counts[c])
			}
		}

		if !changed && iter > 0 {
			break
		}
	}

	clusters := make([]priceCluster, k)
	for c := 0; c < k; c++ {
		clusters[c].Centroid = centroids[c]
	}
	for i, p := range pivots {
		c := assignments[i]
		clusters[c].Pivots = append(clusters[c].Pivots, p)
	}

	kept := clusters[:0]
	for _, c := range clusters {
		if len(c.Pivots) >= minTouches {
			kept = append(kept, c)
		}
	}
	return kept
}

// initialCentroids spreads k starting centroids evenly across the sorted
// prices. No randomness: the same pivot set always seeds the same way.
func initialCentroids(pivots []domain.Pivot, k int) []float64 {
	prices := make([]float64, len(pivots))
	for i, p := range pivots {
		prices[i] = p.Price
	}
	sort.Float64s(prices)

	centroids := make([]float64, k)
	if k == 1 {
		centroids[0] = prices[len(prices)/2]
		return centroids
	}
	for c := 0; c < k; c++ {
		idx := c * (len(prices) - 1) / (k - 1)
		centroids[c] = prices[idx]
	}
	return centroids
}

func nearestCentroid(centroids []float64, price float64) int {
	best := 0
	bestDist := math.Abs(centroids[0] - price)
	for c := 1; c < len(centroids); c++ {
		d := math.Abs(centroids[c] - price)
		if d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}
