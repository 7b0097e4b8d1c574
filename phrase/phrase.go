// Package phrase extracts verb centered action phrases from dependency
// parsed sentences.
//
// For every verb that is not negated, a breadth first traversal of the verb
// subtree looks for the first object, adverbial clause, preposition or
// adverbial modifier that completes the verb. Each visited node is checked
// against a fixed chain of rules; the first rule that applies decides.
package phrase

import (
	"strings"

	"github.com/revelaction/phascan/sentence"
)

// Rule names, recorded in each Phrase.
const (
	RuleDirectObject      = "direct-object"
	RuleAdverbialClause   = "adverbial-clause"
	RulePreposition       = "preposition"
	RuleAdverbialModifier = "adverbial-modifier"
)

// Phrase is an action phrase attributed to one verb.
type Phrase struct {
	// Sentence is the position of the sentence graph passed to Extract.
	Sentence int `json:"sentence"`

	// Verb is the sentence index of the verb the phrase is rooted at.
	Verb     int    `json:"verb"`
	VerbText string `json:"verb_text"`
	Text     string `json:"text"`
	Rule     string `json:"rule"`
}

// outcome tells the traversal what to do after a node was checked.
type outcome int

const (
	// pass: no rule applied, explore the children of the node.
	pass outcome = iota
	// prune: do not explore the children of the node.
	prune
	// stop: the verb is complete, end the traversal.
	stop
)

type step struct {
	outcome outcome
	phrases []Phrase
}

// rule checks node n reached from verb root.
type rule func(root, n sentence.Node) (step, bool)

// chain is evaluated in order for each dequeued node. The first rule that
// returns true decides.
var chain = []rule{
	clausalSubject,
	clauseBoundary,
	directObject,
	adverbialClause,
	preposition,
	adverbialModifier,
}

// Extract returns the action phrases of all verbs of the graphs, in verb
// order and then in traversal order.
func Extract(graphs ...sentence.Graph) []Phrase {
	phrases := []Phrase{}

	for i, g := range graphs {
		excluded := Exclusions(g)

		for _, n := range g.Nodes() {
			if !isVerb(n) || excluded[n.Index()] {
				continue
			}

			for _, p := range ExtractVerb(n) {
				p.Sentence = i
				phrases = append(phrases, p)
			}
		}
	}

	return phrases
}

// ExtractVerb runs the traversal rooted at verb. A verb without a qualifying
// descendant has no phrase.
func ExtractVerb(verb sentence.Node) []Phrase {
	var phrases []Phrase

	visited := map[int]bool{verb.Index(): true}
	queue := []sentence.Node{verb}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		s := evaluate(verb, n)
		phrases = append(phrases, s.phrases...)

		switch s.outcome {
		case stop:
			return phrases
		case prune:
			continue
		}

		for _, c := range n.Children() {
			if visited[c.Index()] {
				continue
			}

			visited[c.Index()] = true
			queue = append(queue, c)
		}
	}

	return phrases
}

func evaluate(root, n sentence.Node) step {
	for _, r := range chain {
		if s, ok := r(root, n); ok {
			return s
		}
	}

	return step{outcome: pass}
}

// Texts returns the phrase strings.
func Texts(phrases []Phrase) []string {
	texts := make([]string, 0, len(phrases))
	for _, p := range phrases {
		texts = append(texts, p.Text)
	}
	return texts
}

func newPhrase(root sentence.Node, r string, words ...string) Phrase {
	return Phrase{
		Verb:     root.Index(),
		VerbText: root.Text(),
		Text:     strings.Join(append([]string{root.Text()}, words...), " "),
		Rule:     r,
	}
}

// A clausal subject is never a continuation of the verb. A verb heading a
// clausal subject still roots its own phrases.
func clausalSubject(root, n sentence.Node) (step, bool) {
	if !isClausalSubject(n.Dep()) || n.Index() == root.Index() {
		return step{}, false
	}

	return step{outcome: prune}, true
}

// A different verb opens a new clause unless it is attached as a conjunct or
// a complement.
func clauseBoundary(root, n sentence.Node) (step, bool) {
	if n.Index() == root.Index() || !isVerb(n) || continuesClause(n.Dep()) {
		return step{}, false
	}

	return step{outcome: prune}, true
}

// verb [compound] object
func directObject(root, n sentence.Node) (step, bool) {
	if !isDirectObject(n.Dep()) {
		return step{}, false
	}

	words := []string{n.Text()}
	if c := firstChild(n, func(dep string) bool { return dep == depCompound }); c != nil {
		words = []string{c.Text(), n.Text()}
	}

	return step{outcome: stop, phrases: []Phrase{newPhrase(root, RuleDirectObject, words...)}}, true
}

// verb [passive-subject] clause
func adverbialClause(root, n sentence.Node) (step, bool) {
	if n.Dep() != depAdvcl || n.Index() == root.Index() {
		return step{}, false
	}

	words := []string{n.Text()}
	if c := firstChild(n, isPassiveSubject); c != nil {
		words = []string{c.Text(), n.Text()}
	}

	return step{outcome: stop, phrases: []Phrase{newPhrase(root, RuleAdverbialClause, words...)}}, true
}

// verb preposition object, once per object child. The verb is complete even
// when the preposition has no object.
func preposition(root, n sentence.Node) (step, bool) {
	if n.Dep() != depPrep {
		return step{}, false
	}

	var phrases []Phrase
	for _, c := range n.Children() {
		if isObject(c.Dep()) {
			phrases = append(phrases, newPhrase(root, RulePreposition, n.Text(), c.Text()))
		}
	}

	return step{outcome: stop, phrases: phrases}, true
}

// verb modifier
func adverbialModifier(root, n sentence.Node) (step, bool) {
	if n.Dep() != depAdvmod {
		return step{}, false
	}

	return step{outcome: stop, phrases: []Phrase{newPhrase(root, RuleAdverbialModifier, n.Text())}}, true
}
