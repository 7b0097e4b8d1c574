package phrase

import "github.com/revelaction/phascan/sentence"

// Exclusions returns the indexes of the verbs of g that must not root an
// action phrase: verbs with a negation child, and the open clausal
// complements of those verbs.
//
//	We will never use it to collect information
//
// excludes both "use" and "collect".
//
// The returned set is built per call.
func Exclusions(g sentence.Graph) map[int]bool {
	excluded := map[int]bool{}

	for _, n := range g.Nodes() {
		if !isVerb(n) {
			continue
		}

		if firstChild(n, func(dep string) bool { return dep == depNeg }) == nil {
			continue
		}

		excluded[n.Index()] = true

		for _, c := range n.Children() {
			if c.Dep() == depXcomp && isVerb(c) {
				excluded[c.Index()] = true
			}
		}
	}

	return excluded
}
