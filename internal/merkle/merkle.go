// Package merkle builds binary hash trees over ordered leaf digests and
// extracts inclusion proofs. Trees are immutable once built; the attestation
// issuer builds a fresh tree per attestation rather than caching them.
package merkle

import (
	"github.com/mbd888/zkroulette/internal/digest"
)

// Tree is a binary Merkle tree. levels[0] holds the leaves; each subsequent
// level hashes adjacent pairs, with an odd leftover paired with itself. The
// last level holds the single root.
type Tree struct {
	levels [][]string
	root   string
}

// Build constructs a tree over the given ordered leaf digests.
// An empty leaf set yields a tree with an empty root; this is a degenerate
// case, not an error.
func Build(leaves []string) *Tree {
	if len(leaves) == 0 {
		return &Tree{}
	}

	level := make([]string, len(leaves))
	copy(level, leaves)
	levels := [][]string{level}

	for len(level) > 1 {
		next := make([]string, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			left := level[i]
			right := left
			if i+1 < len(level) {
				right = level[i+1]
			}
			next = append(next, digest.Sum(left, right))
		}
		levels = append(levels, next)
		level = next
	}

	return &Tree{levels: levels, root: level[0]}
}

// Root returns the root digest, or "" for an empty tree.
func (t *Tree) Root() string {
	return t.root
}

// Depth returns the number of pair-hashing levels between a leaf and the root.
func (t *Tree) Depth() int {
	if len(t.levels) == 0 {
		return 0
	}
	return len(t.levels) - 1
}

// LeafCount returns the number of leaves the tree was built from.
func (t *Tree) LeafCount() int {
	if len(t.levels) == 0 {
		return 0
	}
	return len(t.levels[0])
}

// Proof returns the sibling path for the leaf at index, ordered from the leaf
// level upward. The sibling at each level is index XOR 1, clipped to the
// level length (an odd leftover is its own sibling). Returns nil when index
// is out of range.
func (t *Tree) Proof(index int) []string {
	if len(t.levels) == 0 || index < 0 || index >= len(t.levels[0]) {
		return nil
	}

	proof := make([]string, 0, t.Depth())
	for _, level := range t.levels[:len(t.levels)-1] {
		sibling := index ^ 1
		if sibling >= len(level) {
			sibling = index
		}
		proof = append(proof, level[sibling])
		index /= 2
	}
	return proof
}

// VerifyProof recomputes the root from a leaf, its index, and a sibling path,
// and reports whether it matches root. The fold direction at each level
// follows the leaf index: even positions hash (current, sibling), odd
// positions hash (sibling, current).
func VerifyProof(leaf string, index int, proof []string, root string) bool {
	current := leaf
	for _, sibling := range proof {
		if index%2 == 0 {
			current = digest.Sum(current, sibling)
		} else {
			current = digest.Sum(sibling, current)
		}
		index /= 2
	}
	return current == root
}
