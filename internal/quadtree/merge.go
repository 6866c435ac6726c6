package quadtree

import "sync"

// collect walks n and every descendant, appending every stored segment
// to out. Segment order is irrelevant to the result of a merge — only
// the resulting multiset matters — so this makes no attempt to visit
// in any particular order.
func collect(n *node, out *[]Segment) {
	*out = append(*out, n.segments...)
	if n.isLeaf() {
		return
	}
	for _, c := range n.children {
		collect(c, out)
	}
}

// Merge combines two trees into a new tree holding the union of their
// segments. Because the tree Insert produces depends only on the set of
// segments inserted (each segment's bounding box and epsilon, and the
// point totals that trigger subdivision), never on insertion order, Merge is both
// commutative and associative: Merge(a, b) and Merge(b, a) place every
// segment identically, and the result of merging many trees doesn't
// depend on how they're paired up. That's what makes ParallelMerge
// correct regardless of how the fan-in tree happens to group its
// inputs.
func Merge(a, b *Tree) *Tree {
	maxPts := a.maxPts
	if b.maxPts > maxPts {
		maxPts = b.maxPts
	}

	var segs []Segment
	collect(a.root, &segs)
	collect(b.root, &segs)

	merged := New(Config{MaxPointsPerNode: maxPts, ReferenceViewportPixels: a.ref})
	for _, s := range segs {
		merged.Insert(s)
	}
	return merged
}

// ParallelMerge reduces many per-route trees into a single tree via a
// pairwise fan-in: each round merges adjacent pairs concurrently, then
// the surviving trees are paired again, until one remains. Depth is
// O(log n) merge rounds rather than n sequential merges.
func ParallelMerge(trees []*Tree) *Tree {
	if len(trees) == 0 {
		return New(DefaultConfig())
	}

	for len(trees) > 1 {
		next := make([]*Tree, (len(trees)+1)/2)
		var wg sync.WaitGroup

		for i := 0; i < len(next); i++ {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				left := trees[2*i]
				if 2*i+1 < len(trees) {
					next[i] = Merge(left, trees[2*i+1])
				} else {
					next[i] = left
				}
			}()
		}

		wg.Wait()
		trees = next
	}

	return trees[0]
}
