package phrase

import (
	"strings"

	"github.com/revelaction/phascan/sentence"
)

// Coarse POS and dependency labels. The parser output uses the spaCy English
// scheme; the Universal Dependencies names are accepted as well.
const (
	posVerb = "VERB"

	depNeg      = "neg"
	depXcomp    = "xcomp"
	depConj     = "conj"
	depAdvcl    = "advcl"
	depCcomp    = "ccomp"
	depPcomp    = "pcomp"
	depCompound = "compound"
	depPrep     = "prep"
	depAdvmod   = "advmod"
)

func isVerb(n sentence.Node) bool {
	return n.Pos() == posVerb
}

func isClausalSubject(dep string) bool {
	switch dep {
	case "csubj", "csubjpass", "csubj:pass":
		return true
	}
	return false
}

func isDirectObject(dep string) bool {
	return dep == "dobj" || dep == "obj"
}

func isPassiveSubject(dep string) bool {
	return dep == "nsubjpass" || dep == "nsubj:pass"
}

func isObject(dep string) bool {
	return strings.Contains(dep, "obj")
}

// continuesClause reports whether a verb attached with dep still belongs to
// the clause of the verb the traversal started from.
func continuesClause(dep string) bool {
	switch dep {
	case depConj, depXcomp, depAdvcl, depCcomp, depPcomp:
		return true
	}
	return false
}

// firstChild returns the first child of n, in sentence order, matching the
// dependency predicate.
func firstChild(n sentence.Node, match func(dep string) bool) sentence.Node {
	for _, c := range n.Children() {
		if match(c.Dep()) {
			return c
		}
	}
	return nil
}
