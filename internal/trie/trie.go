package trie

import (
	"sort"
	"strconv"
	"strings"
)

/*
Arena-based prefix index

Rules are indexed by the literal text their pattern requires at the start of a
line. Looking a line up walks the trie byte by byte and collects every rule
whose leading literal is a prefix of the line, so a line is only ever handed to
rules that can possibly match it.

Nodes live in a single slice and refer to their children by index, which keeps
the index compact and cheap to rebuild when the rule file is reloaded.
*/

// NodeIndex represents the index of a trie node.
type NodeIndex int

// Arena is a memory pool that stores all trie nodes.
type Arena struct {
	nodes []arenaNode
}

type arenaNode struct {
	children map[byte]NodeIndex
	// values registered for the prefix ending at this node, in insertion order
	values []int
}

// NewArena creates a new arena holding only the root node.
func NewArena() *Arena {
	arena := &Arena{
		nodes: make([]arenaNode, 0, 64),
	}
	arena.nodes = append(arena.nodes, arenaNode{children: make(map[byte]NodeIndex)})
	return arena
}

func (a *Arena) newNode() NodeIndex {
	idx := NodeIndex(len(a.nodes))
	a.nodes = append(a.nodes, arenaNode{children: make(map[byte]NodeIndex)})
	return idx
}

// Insert registers value under prefix. The empty prefix matches every input.
func (a *Arena) Insert(prefix string, value int) {
	current := NodeIndex(0)
	for i := 0; i < len(prefix); i++ {
		node := &a.nodes[current]
		childIdx, exists := node.children[prefix[i]]
		if !exists {
			childIdx = a.newNode()
			// newNode may have grown the slice, so node is stale here
			a.nodes[current].children[prefix[i]] = childIdx
		}
		current = childIdx
	}
	a.nodes[current].values = append(a.nodes[current].values, value)
}

// PrefixesOf returns the values of every inserted prefix of s, shortest
// prefix first.
func (a *Arena) PrefixesOf(s string) []int {
	var out []int
	current := NodeIndex(0)
	out = append(out, a.nodes[current].values...)
	for i := 0; i < len(s); i++ {
		next, ok := a.nodes[current].children[s[i]]
		if !ok {
			break
		}
		current = next
		out = append(out, a.nodes[current].values...)
	}
	return out
}

// Len returns the number of nodes, root included.
func (a *Arena) Len() int { return len(a.nodes) }

// DebugString returns a string representation of the trie for debugging purposes.
func (a *Arena) DebugString() string {
	return a.debugStringNode(NodeIndex(0))
}

func (a *Arena) debugStringNode(idx NodeIndex) string {
	node := a.nodes[idx]
	var sb strings.Builder

	if len(node.values) > 0 {
		sb.WriteString("*")
		for i, v := range node.values {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.Itoa(v))
		}
	}

	keys := make([]byte, 0, len(node.children))
	for key := range node.children {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, key := range keys {
		sb.WriteByte(key)
		sb.WriteString("(")
		sb.WriteString(a.debugStringNode(node.children[key]))
		sb.WriteString(")")
	}

	return sb.String()
}

// Trie indexes integer values by string prefix.
type Trie struct {
	arena *Arena
}

// New returns an initialized Trie.
func New() *Trie {
	return &Trie{
		arena: NewArena(),
	}
}

func (t *Trie) Insert(prefix string, value int) { t.arena.Insert(prefix, value) }

// Match returns the values whose prefix starts s, sorted ascending.
func (t *Trie) Match(s string) []int {
	out := t.arena.PrefixesOf(s)
	sort.Ints(out)
	return out
}

func (t *Trie) DebugString() string { return t.arena.DebugString() }
