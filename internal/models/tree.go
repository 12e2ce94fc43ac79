/*
Copyright © 2024 the AeroSphere authors.
This file is part of AeroSphere.

AeroSphere is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

AeroSphere is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with AeroSphere.  If not, see <http://www.gnu.org/licenses/>.*/

package models

import "math/rand"

// treeNode is one node of a CART regression tree: either a leaf
// (carrying the mean target of its training rows) or a split on one
// feature index at a threshold.
type treeNode struct {
	isLeaf      bool
	value       float64
	featureIdx  int
	threshold   float64
	left, right *treeNode
}

func (n *treeNode) predict(x []float64) float64 {
	for !n.isLeaf {
		if x[n.featureIdx] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

// treeGrowth bounds how a tree is allowed to grow: either by maximum
// depth (grown depth-first by recursion, every node split until maxDepth) or by a
// maximum leaf count grown greedily best-split-first (leaf-wise),
// matching the two gradient-boosted variants §4.5 specifies.
type treeGrowth struct {
	maxDepth     int // 0 means unbounded when maxLeaves is set
	maxLeaves    int // 0 means unbounded when maxDepth is set
	minSamples   int
	featuresSubset int // if > 0, sample this many candidate features per split (random forest)
}

// regressionTree fits a single CART tree over rows (feature vectors)
// and targets y, using sum-of-squared-error reduction as the split
// criterion.
type regressionTree struct {
	root        *treeNode
	importances []float64
	nFeatures   int
}

func fitRegressionTree(rows [][]float64, y []float64, g treeGrowth, rng *rand.Rand) *regressionTree {
	nFeatures := 0
	if len(rows) > 0 {
		nFeatures = len(rows[0])
	}
	t := &regressionTree{importances: make([]float64, nFeatures), nFeatures: nFeatures}
	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	if g.minSamples <= 0 {
		g.minSamples = 2
	}

	if g.maxLeaves > 0 {
		t.root = growLeafwise(rows, y, idx, g, rng, t.importances)
	} else {
		t.root = growDepthFirst(rows, y, idx, g, rng, 0, t.importances)
	}
	return t
}

func (t *regressionTree) predict(x []float64) float64 { return t.root.predict(x) }

func leafValue(y []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	var sum float64
	for _, i := range idx {
		sum += y[i]
	}
	return sum / float64(len(idx))
}

func sse(y []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	mean := leafValue(y, idx)
	var s float64
	for _, i := range idx {
		d := y[i] - mean
		s += d * d
	}
	return s
}

// candidateFeatures returns the feature indices a split at this node
// is allowed to consider: all of them, or a random subset of size
// g.featuresSubset (bagging's per-split feature randomization).
func candidateFeatures(nFeatures int, g treeGrowth, rng *rand.Rand) []int {
	if g.featuresSubset <= 0 || g.featuresSubset >= nFeatures {
		all := make([]int, nFeatures)
		for i := range all {
			all[i] = i
		}
		return all
	}
	perm := rng.Perm(nFeatures)
	return perm[:g.featuresSubset]
}

// bestSplit scans candidate features' observed values as threshold
// candidates and returns the split minimizing total child SSE.
func bestSplit(rows [][]float64, y []float64, idx []int, g treeGrowth, rng *rand.Rand) (feature int, threshold float64, left, right []int, gain float64, found bool) {
	parentSSE := sse(y, idx)
	bestGain := 0.0
	for _, f := range candidateFeaturesFor(rows, g, rng) {
		thresholds := uniqueSortedValues(rows, idx, f)
		for _, thr := range thresholds {
			var l, r []int
			for _, i := range idx {
				if rows[i][f] <= thr {
					l = append(l, i)
				} else {
					r = append(r, i)
				}
			}
			if len(l) < g.minSamples || len(r) < g.minSamples {
				continue
			}
			childSSE := sse(y, l) + sse(y, r)
			gainCandidate := parentSSE - childSSE
			if gainCandidate > bestGain {
				bestGain, feature, threshold, left, right, found = gainCandidate, f, thr, l, r, true
			}
		}
	}
	return feature, threshold, left, right, bestGain, found
}

func candidateFeaturesFor(rows [][]float64, g treeGrowth, rng *rand.Rand) []int {
	nFeatures := 0
	if len(rows) > 0 {
		nFeatures = len(rows[0])
	}
	return candidateFeatures(nFeatures, g, rng)
}

func uniqueSortedValues(rows [][]float64, idx []int, feature int) []float64 {
	seen := make(map[float64]bool)
	var vals []float64
	for _, i := range idx {
		v := rows[i][feature]
		if !seen[v] {
			seen[v] = true
			vals = append(vals, v)
		}
	}
	// Candidate thresholds are the observed values themselves (<=
	// split); sufficient for a small tabular feature set and avoids
	// the midpoint-averaging step a larger dataset would warrant.
	return vals
}

func growDepthFirst(rows [][]float64, y []float64, idx []int, g treeGrowth, rng *rand.Rand, depth int, importances []float64) *treeNode {
	if len(idx) < g.minSamples || (g.maxDepth > 0 && depth >= g.maxDepth) {
		return &treeNode{isLeaf: true, value: leafValue(y, idx)}
	}
	f, thr, left, right, gain, ok := bestSplit(rows, y, idx, g, rng)
	if !ok {
		return &treeNode{isLeaf: true, value: leafValue(y, idx)}
	}
	importances[f] += gain
	return &treeNode{
		featureIdx: f, threshold: thr,
		left:  growDepthFirst(rows, y, left, g, rng, depth+1, importances),
		right: growDepthFirst(rows, y, right, g, rng, depth+1, importances),
	}
}

// leafwiseCandidate is one not-yet-split leaf awaiting evaluation in
// the leaf-wise growth priority queue.
type leafwiseCandidate struct {
	node *treeNode
	idx  []int
}

// growLeafwise grows the tree by repeatedly splitting whichever
// current leaf yields the largest SSE reduction, until maxLeaves
// leaves exist or no leaf can be usefully split -- the leaf-wise
// growth strategy that produces the "31 leaves" ensemble of §4.5,
// in contrast to the recursive, depth-bounded growth of the depth-6
// ensemble.
func growLeafwise(rows [][]float64, y []float64, idx []int, g treeGrowth, rng *rand.Rand, importances []float64) *treeNode {
	root := &treeNode{isLeaf: true, value: leafValue(y, idx)}
	leaves := []*leafwiseCandidate{{node: root, idx: idx}}
	nLeaves := 1

	for nLeaves < g.maxLeaves {
		bestI := -1
		var bestF int
		var bestThr, bestGain float64
		var bestLeft, bestRight []int
		for i, c := range leaves {
			f, thr, left, right, gain, ok := bestSplit(rows, y, c.idx, g, rng)
			if !ok || gain <= 0 {
				continue
			}
			if bestI == -1 || gain > bestGain {
				bestI, bestF, bestThr, bestLeft, bestRight, bestGain = i, f, thr, left, right, gain
			}
		}
		if bestI == -1 {
			break
		}
		importances[bestF] += bestGain
		c := leaves[bestI]
		c.node.isLeaf = false
		c.node.featureIdx, c.node.threshold = bestF, bestThr
		c.node.left = &treeNode{isLeaf: true, value: leafValue(y, bestLeft)}
		c.node.right = &treeNode{isLeaf: true, value: leafValue(y, bestRight)}

		leaves[bestI] = &leafwiseCandidate{node: c.node.left, idx: bestLeft}
		leaves = append(leaves, &leafwiseCandidate{node: c.node.right, idx: bestRight})
		nLeaves++
	}
	return root
}
