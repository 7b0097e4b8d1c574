package sentence

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidHead is returned when a token points to a head outside its
// sentence.
var ErrInvalidHead = errors.New("invalid head")

// Node is the view of a parsed token needed to walk a dependency graph.
// Any parser binding able to expose these attributes can feed the phrase
// extractor.
type Node interface {
	// Index is the position of the token in its sentence. It identifies the
	// node inside one Graph.
	Index() int
	Text() string
	Lemma() string
	Pos() string
	Dep() string

	// Parent returns nil for the root.
	Parent() Node
	Children() []Node
}

// Graph is one parsed sentence.
type Graph interface {
	// Nodes returns all nodes in sentence order.
	Nodes() []Node
}

type node struct {
	tok      Token
	parent   *node
	children []Node
}

func (n *node) Index() int       { return n.tok.Index }
func (n *node) Text() string     { return n.tok.Text }
func (n *node) Lemma() string    { return n.tok.Lemma }
func (n *node) Pos() string      { return n.tok.Pos }
func (n *node) Dep() string      { return n.tok.Dep }
func (n *node) Children() []Node { return n.children }

func (n *node) Parent() Node {
	// avoid a typed nil inside the interface
	if n.parent == nil {
		return nil
	}
	return n.parent
}

// Tree is the Graph built from the flat token list of a Sentence.
type Tree struct {
	nodes []Node
	roots []Node
}

var _ Graph = (*Tree)(nil)

// NewTree links the tokens of a sentence by their Head field. Tokens are
// ordered by Index; children keep sentence order.
func NewTree(tokens []Token) (*Tree, error) {
	sorted := make([]Token, len(tokens))
	copy(sorted, tokens)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	byIndex := make(map[int]*node, len(sorted))
	nodes := make([]*node, 0, len(sorted))
	for _, t := range sorted {
		if _, ok := byIndex[t.Index]; ok {
			return nil, fmt.Errorf("duplicate token index %d", t.Index)
		}
		n := &node{tok: t}
		byIndex[t.Index] = n
		nodes = append(nodes, n)
	}

	tree := &Tree{nodes: make([]Node, 0, len(nodes))}
	for _, n := range nodes {
		tree.nodes = append(tree.nodes, n)

		if n.tok.IsRoot() {
			tree.roots = append(tree.roots, n)
			continue
		}

		head, ok := byIndex[n.tok.Head]
		if !ok {
			return nil, fmt.Errorf("%w: token %d (%q) points to %d", ErrInvalidHead, n.tok.Index, n.tok.Text, n.tok.Head)
		}

		n.parent = head
		head.children = append(head.children, n)
	}

	return tree, nil
}

// Nodes returns all nodes in sentence order.
func (t *Tree) Nodes() []Node {
	return t.nodes
}

// Roots returns the sentence predicates, the nodes without a head.
func (t *Tree) Roots() []Node {
	return t.roots
}

// Trees builds one Tree per sentence of the doc.
func Trees(doc Doc) ([]Graph, error) {
	graphs := make([]Graph, 0, len(doc.Sentences))
	for _, s := range doc.Sentences {
		tree, err := NewTree(s.Tokens)
		if err != nil {
			return nil, fmt.Errorf("sentence %d: %w", s.Id, err)
		}
		graphs = append(graphs, tree)
	}

	return graphs, nil
}
