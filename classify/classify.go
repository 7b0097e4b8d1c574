// Package classify buckets stemmed action phrases into one category of a
// rule table.
package classify

import (
	"strings"

	"github.com/revelaction/phascan/category"
)

// Score is the number of trigger occurrences counted for a category.
type Score struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Result is the chosen category and the stemmed phrases it was chosen from.
type Result struct {
	// Category is a table category, category.Uncategorized or
	// category.NoEvidence.
	Category string `json:"category"`

	// Evidence is never nil.
	Evidence []string `json:"evidence"`

	// Scores has one entry per table category, in table order.
	Scores []Score `json:"scores"`
}

// Classifier matches stemmed phrases against a rule table. The table is not
// modified, a Classifier can be shared between goroutines.
type Classifier struct {
	table category.Table
}

// New returns a Classifier for a copy of table.
func New(table category.Table) *Classifier {
	t := make(category.Table, len(table))
	for i, r := range table {
		t[i] = category.Rule{Name: r.Name, Triggers: append([]string(nil), r.Triggers...)}
	}

	return &Classifier{table: t}
}

// Table returns the rules of the classifier.
func (c *Classifier) Table() category.Table {
	return c.table
}

// Classify counts, for every phrase and every category, the triggers of the
// category contained in the phrase. A phrase can count for several triggers
// and several categories.
//
// The category with the highest count wins. On a tie the category declared
// first keeps the lead; with no match the result is uncategorized.
func (c *Classifier) Classify(stemmed []string) Result {
	scores := c.Score(stemmed)

	best := Score{Category: category.Uncategorized}
	for _, s := range scores {
		if s.Count > best.Count {
			best = s
		}
	}

	evidence := make([]string, len(stemmed))
	copy(evidence, stemmed)

	return Result{
		Category: best.Category,
		Evidence: evidence,
		Scores:   scores,
	}
}

// Score returns the match count of every category, in table order.
func (c *Classifier) Score(stemmed []string) []Score {
	scores := make([]Score, len(c.table))
	for i, r := range c.table {
		scores[i].Category = r.Name
	}

	for _, p := range stemmed {
		for i, r := range c.table {
			for _, trigger := range r.Triggers {
				if strings.Contains(p, trigger) {
					scores[i].Count++
				}
			}
		}
	}

	return scores
}

// NoEvidence is the result of an application without phrases.
func NoEvidence() Result {
	return Result{Category: category.NoEvidence, Evidence: []string{}, Scores: []Score{}}
}
