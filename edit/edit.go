package edit

import (
	"errors"
	"fmt"
	"io"
	"strings"

	prompt "github.com/c-bata/go-prompt"

	"github.com/revelaction/phascan/category"
	"github.com/revelaction/phascan/storage"
)

const (
	actionAdd    = 1
	actionDelete = 0

	// newPrefix marks a category name that does not exist yet
	newPrefix = "+"
)

// Handler edits the triggers of the rule table. Triggers are typed as
// plain words and stored stemmed.
type Handler struct {
	Table category.Table
	Repo  storage.RuleRepository
	Stem  func(string) string
	Out   io.Writer
}

func NewHandler(t category.Table, repo storage.RuleRepository, stem func(string) string, out io.Writer) *Handler {
	return &Handler{
		Table: t,
		Repo:  repo,
		Stem:  stem,
		Out:   out,
	}
}

func (h *Handler) Run() error {

	fmt.Fprintln(h.Out, "🔑 category words: add, category words/: delete, category/: drop, +category words: new, 🔧 quit")

	// initialize prompt history
	history := []string{}

	for {

		in := prompt.Input("      🔖 ", h.completer(),
			prompt.OptionTitle("phascan edit"),
			prompt.OptionPrefixTextColor(prompt.Yellow),
			prompt.OptionPreviewSuggestionTextColor(prompt.Blue),
			prompt.OptionSelectedSuggestionBGColor(prompt.LightGray),
			prompt.OptionSuggestionBGColor(prompt.DarkGray),
			prompt.OptionMaxSuggestion(12),
			prompt.OptionHistory(history),
		)

		if in == "quit" {
			return nil
		}

		history = append(history, in)

		msg, err := h.Apply(in)
		if err != nil {
			var uerr userError
			if errors.As(err, &uerr) {
				fmt.Fprintf(h.Out, "❌ %s\n", err)
				continue
			}
			return err
		}

		fmt.Fprintf(h.Out, "✅ %s\n", msg)
	}
}

// userError is a mistake in the typed line; the editor keeps running.
type userError struct{ msg string }

func (e userError) Error() string { return e.msg }

func errUser(msg string) error { return userError{msg: msg} }

// Apply executes one editor line and persists the changed rule. Errors of
// the line itself are userErrors; storage errors are returned as they are.
func (h *Handler) Apply(in string) (string, error) {
	rule, trigger, action, err := h.parse(in)
	if err != nil {
		return "", err
	}

	// a category name alone with the delete suffix drops the category
	if trigger == "" {
		if err := h.Repo.Delete(rule.Name); err != nil {
			return "", err
		}

		h.Table = h.Table.Without(rule.Name)
		return "Category " + rule.Name + " deleted.", nil
	}

	if action == actionAdd {
		if rule.HasTrigger(trigger) {
			return "", errUser("Trigger already exist.")
		}

		rule = rule.WithTrigger(trigger)
	} else {
		if !rule.HasTrigger(trigger) {
			return "", errUser("Trigger does not exist.")
		}

		rule = rule.WithoutTrigger(trigger)
	}

	if err := h.Repo.Write(rule); err != nil {
		return "", err
	}

	h.Table = h.Table.With(rule)

	if action == actionAdd {
		return fmt.Sprintf("%s: added %q", rule.Name, trigger), nil
	}

	return fmt.Sprintf("%s: removed %q", rule.Name, trigger), nil
}

func (h *Handler) completer() func(in prompt.Document) []prompt.Suggest {
	return func(in prompt.Document) []prompt.Suggest {
		return h.suggest(in.TextBeforeCursor())
	}
}

func (h *Handler) suggest(befCursor string) []prompt.Suggest {
	s := []prompt.Suggest{}

	// Only one character in line
	if "" == befCursor {
		return s
	}

	tokens := strings.Split(befCursor, " ")

	if len(tokens) == 1 {
		for _, r := range h.Table {
			if strings.HasPrefix(r.Name, befCursor) {
				s = append(s, prompt.Suggest{Text: r.Name, Description: fmt.Sprintf("%d triggers", len(r.Triggers))})
			}
		}

		return s
	}

	// First token must be the category
	r, ok := h.Table.Rule(tokens[0])
	if !ok {
		return s
	}

	rest := strings.Join(tokens[1:], " ")

	if rest == "" {
		return s
	}

	for _, t := range r.Triggers {
		// Do not show sugestion at the end of the text
		if strings.HasPrefix(t, rest) && len(rest) < len(t) {
			s = append(s, prompt.Suggest{Text: t, Description: ""})
		}
	}

	return s
}

// parse returns the rule named by the first token, the stemmed trigger of
// the rest and the action. An empty trigger with actionDelete drops the
// rule.
func (h *Handler) parse(in string) (category.Rule, string, int, error) {

	rule := category.Rule{}

	tokens := strings.Fields(in)

	action := actionAdd
	if len(tokens) == 0 {
		return rule, "", action, errUser("No category given.")
	}

	lastToken := tokens[len(tokens)-1]
	if strings.HasSuffix(lastToken, "/") {
		action = actionDelete
		tokens[len(tokens)-1] = lastToken[:len(lastToken)-1]
	}

	name := tokens[0]
	isNew := strings.HasPrefix(name, newPrefix)

	if isNew {
		name = strings.TrimPrefix(name, newPrefix)
		if _, ok := h.Table.Rule(name); ok {
			return rule, "", action, errUser("Category " + name + " already exist.")
		}

		rule = category.Rule{Name: name, Triggers: []string{}}
		if err := (category.Table{rule}).Validate(); err != nil {
			return rule, "", action, errUser(err.Error())
		}
	}

	// First token must be a category, exact match first, then prefix
	if !isNew {
		if r, ok := h.Table.Rule(name); ok {
			rule = r
		} else {
			for _, r := range h.Table {
				if strings.HasPrefix(r.Name, name) {
					rule = r
					break
				}
			}
		}
	}

	if rule.Name == "" {
		return rule, "", action, errUser("There is no such category: " + name + ".")
	}

	words := tokens[1:]
	if len(words) == 0 {
		if action == actionDelete && !isNew && tokens[0] != "" {
			return rule, "", action, nil
		}
		return rule, "", action, errUser("No trigger given.")
	}

	trigger, err := category.ParseTrigger(words, h.Stem)
	if err != nil {
		return rule, "", action, errUser(err.Error())
	}

	return rule, trigger, action, nil
}
