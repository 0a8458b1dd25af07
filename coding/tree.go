package coding

import (
	"container/heap"
	"fmt"
)

// Handle identifies a node inside a Tree.
type Handle int32

const nilHandle Handle = -1

type node struct {
	freq        uint64
	left, right Handle
	symbol      byte
}

// Tree is a strict binary Huffman tree stored as an arena of nodes. Leaves
// are stored first, in ascending symbol order, followed by internal nodes in
// creation order. A Tree is immutable once BuildTree returns it.
type Tree struct {
	nodes []node
	root  Handle
}

// Root returns the handle of the root node.
func (t *Tree) Root() Handle { return t.root }

// IsLeaf reports whether h is a leaf.
func (t *Tree) IsLeaf(h Handle) bool { return t.nodes[h].left == nilHandle }

// Symbol returns the symbol stored in leaf h.
func (t *Tree) Symbol(h Handle) byte { return t.nodes[h].symbol }

// Freq returns the frequency of the subtree rooted at h.
func (t *Tree) Freq(h Handle) uint64 { return t.nodes[h].freq }

// Children returns the left and right children of internal node h.
func (t *Tree) Children(h Handle) (left, right Handle) {
	n := t.nodes[h]
	return n.left, n.right
}

// Leaves returns the number of distinct symbols in the tree.
func (t *Tree) Leaves() int { return (len(t.nodes) + 1) / 2 }

// Len returns the total number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Equal reports whether t and o have the same shape, symbols and frequencies.
func (t *Tree) Equal(o *Tree) bool {
	if t == nil || o == nil {
		return t == o
	}
	if len(t.nodes) != len(o.nodes) {
		return false
	}
	type pair struct{ a, b Handle }
	stack := []pair{{t.root, o.root}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		na, nb := t.nodes[p.a], o.nodes[p.b]
		if na.freq != nb.freq || t.IsLeaf(p.a) != o.IsLeaf(p.b) {
			return false
		}
		if t.IsLeaf(p.a) {
			if na.symbol != nb.symbol {
				return false
			}
			continue
		}
		stack = append(stack, pair{na.left, nb.left}, pair{na.right, nb.right})
	}
	return true
}

// queueItem orders nodes by frequency, then by sequence number so that
// equal frequencies always resolve the same way.
type queueItem struct {
	freq uint64
	seq  int
	h    Handle
}

type nodeQueue []queueItem

func (q nodeQueue) Len() int { return len(q) }
func (q nodeQueue) Less(i, j int) bool {
	if q[i].freq != q[j].freq {
		return q[i].freq < q[j].freq
	}
	return q[i].seq < q[j].seq
}
func (q nodeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *nodeQueue) Push(x any)   { *q = append(*q, x.(queueItem)) }
func (q *nodeQueue) Pop() any {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[:n-1]
	return x
}

// BuildTree builds a Huffman tree by repeatedly merging the two lowest
// frequency nodes. Ties are broken by sequence number: leaves are numbered
// in ascending symbol order and each merged node takes the next number.
// The first node extracted becomes the left child.
//
// A single-symbol map yields a tree whose root is its only leaf.
func BuildTree(freq FrequencyMap) (*Tree, error) {
	if len(freq) == 0 {
		return nil, ErrEmptyInput
	}

	symbols := freq.Symbols()
	t := &Tree{nodes: make([]node, 0, 2*len(symbols)-1)}
	q := make(nodeQueue, 0, len(symbols))
	for _, s := range symbols {
		c := freq[s]
		if c == 0 {
			return nil, fmt.Errorf("coding: zero frequency for symbol %#02x", s)
		}
		h := Handle(len(t.nodes))
		t.nodes = append(t.nodes, node{freq: c, left: nilHandle, right: nilHandle, symbol: s})
		q = append(q, queueItem{freq: c, seq: int(h), h: h})
	}
	heap.Init(&q)

	for q.Len() > 1 {
		a := heap.Pop(&q).(queueItem)
		b := heap.Pop(&q).(queueItem)
		h := Handle(len(t.nodes))
		sum := a.freq + b.freq
		t.nodes = append(t.nodes, node{freq: sum, left: a.h, right: b.h})
		heap.Push(&q, queueItem{freq: sum, seq: int(h), h: h})
	}
	t.root = q[0].h
	return t, nil
}
