// Package category holds the ordered table of functionality categories and
// the trigger fragments that select them.
package category

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Labels that are results of the classification, never categories.
const (
	Uncategorized = "uncategorized"
	NoEvidence    = "no evidence"
)

var (
	ErrDuplicate = errors.New("duplicate category")
	ErrReserved  = errors.New("reserved category name")
)

//go:embed rules.yaml
var defaultRules []byte

// Rule is a category and its trigger fragments.
type Rule struct {
	Name     string   `yaml:"name" json:"name"`
	Triggers []string `yaml:"triggers" json:"triggers"`
}

// HasTrigger reports whether trigger is already in the rule.
func (r Rule) HasTrigger(trigger string) bool {
	for _, t := range r.Triggers {
		if t == trigger {
			return true
		}
	}

	return false
}

// WithTrigger returns a copy of the rule with trigger appended.
func (r Rule) WithTrigger(trigger string) Rule {
	triggers := make([]string, 0, len(r.Triggers)+1)
	triggers = append(triggers, r.Triggers...)
	return Rule{Name: r.Name, Triggers: append(triggers, trigger)}
}

// WithoutTrigger returns a copy of the rule without trigger.
func (r Rule) WithoutTrigger(trigger string) Rule {
	triggers := make([]string, 0, len(r.Triggers))
	for _, t := range r.Triggers {
		if t != trigger {
			triggers = append(triggers, t)
		}
	}

	return Rule{Name: r.Name, Triggers: triggers}
}

// Table is the ordered list of rules. Declaration order breaks ties.
type Table []Rule

// Names returns the category names in table order.
func (t Table) Names() []string {
	var names []string
	for _, r := range t {
		names = append(names, r.Name)
	}
	return names
}

// Rule returns the rule named name.
func (t Table) Rule(name string) (Rule, bool) {
	for _, r := range t {
		if r.Name == name {
			return r, true
		}
	}

	return Rule{}, false
}

// With returns a copy of the table where rule replaces the rule with the
// same name, keeping its position. A new name is appended.
func (t Table) With(rule Rule) Table {
	out := make(Table, 0, len(t)+1)
	replaced := false
	for _, r := range t {
		if r.Name == rule.Name {
			out = append(out, rule)
			replaced = true
			continue
		}
		out = append(out, r)
	}

	if !replaced {
		out = append(out, rule)
	}

	return out
}

// Without returns a copy of the table without the named rule.
func (t Table) Without(name string) Table {
	out := make(Table, 0, len(t))
	for _, r := range t {
		if r.Name != name {
			out = append(out, r)
		}
	}
	return out
}

// Validate checks names are present, unique and not one of the result
// labels, and that no trigger is blank.
func (t Table) Validate() error {
	seen := map[string]bool{}
	for i, r := range t {
		if strings.TrimSpace(r.Name) == "" {
			return fmt.Errorf("category %d has no name", i)
		}

		if r.Name == Uncategorized || r.Name == NoEvidence {
			return fmt.Errorf("%w: %q", ErrReserved, r.Name)
		}

		if seen[r.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicate, r.Name)
		}
		seen[r.Name] = true

		for _, tr := range r.Triggers {
			if strings.TrimSpace(tr) == "" {
				return fmt.Errorf("category %q has a blank trigger", r.Name)
			}
		}
	}

	return nil
}

type file struct {
	Categories Table `yaml:"categories"`
}

// Decode reads a YAML rule table and validates it.
func Decode(r io.Reader) (Table, error) {
	var f file
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return Table{}, nil
		}
		return nil, fmt.Errorf("YAML decoding error: %w", err)
	}

	if err := f.Categories.Validate(); err != nil {
		return nil, err
	}

	if f.Categories == nil {
		return Table{}, nil
	}

	return f.Categories, nil
}

// Encode writes the table as YAML.
func Encode(w io.Writer, t Table) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(file{Categories: t}); err != nil {
		return err
	}

	return enc.Close()
}

// Default returns the built in rule table.
func Default() Table {
	t, err := Decode(bytes.NewReader(defaultRules))
	if err != nil {
		panic(fmt.Sprintf("embedded rule table: %v", err))
	}

	return t
}
