package query

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/c-bata/go-prompt"

	"github.com/revelaction/phascan/pipeline"
	"github.com/revelaction/phascan/render"
)

const (
	completionThreshold = 2

	// commandPrefix is the Character in the prompt that prefixes commands
	commandPrefix = ":"
)

// Handler classifies descriptions typed by the user.
type Handler struct {
	Analyzer *pipeline.Analyzer
	Renderer *render.Renderer
}

func NewHandler(a *pipeline.Analyzer, r *render.Renderer) *Handler {
	return &Handler{
		Analyzer: a,
		Renderer: r,
	}
}

func (h *Handler) Run(ctx context.Context) error {

	fmt.Fprintln(h.Renderer.W, "🔑 Ctrl+X: toggle color, :rules, :rule <category>, 🔧 quit")

	// initialize prompt history
	history := []string{}

	for {

		in := prompt.Input("      🔖 ", h.completer(),
			prompt.OptionTitle("phascan query"),
			prompt.OptionPrefixTextColor(prompt.Yellow),
			prompt.OptionPreviewSuggestionTextColor(prompt.Blue),
			prompt.OptionSelectedSuggestionBGColor(prompt.LightGray),
			prompt.OptionMaxSuggestion(12),
			prompt.OptionSuggestionBGColor(prompt.DarkGray),
			prompt.OptionHistory(history),
			prompt.OptionAddKeyBind(prompt.KeyBind{
				Key: prompt.ControlX,
				Fn: func(buf *prompt.Buffer) {
					h.Renderer.HasColor = !h.Renderer.HasColor
					fmt.Fprintln(h.Renderer.W, "Color set to "+fmt.Sprintf("%t", h.Renderer.HasColor))
				}}),
		)

		if in == "quit" {
			return nil
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		history = append(history, in)

		if err := h.Eval(ctx, in); err != nil {
			fmt.Fprintf(h.Renderer.W, "❌ %s\n", err)
		}
	}
}

// Eval classifies one typed description, or runs a command.
func (h *Handler) Eval(ctx context.Context, in string) error {
	in = strings.TrimSpace(in)
	if in == "" {
		return nil
	}

	if strings.HasPrefix(in, commandPrefix) {
		return h.command(strings.Fields(strings.TrimPrefix(in, commandPrefix)))
	}

	an, res, err := h.Analyzer.Classify(ctx, in)
	if err != nil {
		return err
	}

	h.Renderer.Analysis(an, res)
	return nil
}

func (h *Handler) command(fields []string) error {
	if len(fields) == 0 {
		return errors.New("No command given.")
	}

	table := h.Analyzer.Classifier().Table()

	switch fields[0] {
	case "rules":
		h.Renderer.Rules(table)
		return nil
	case "rule":
		if len(fields) < 2 {
			return errors.New("No category given.")
		}

		r, ok := table.Rule(fields[1])
		if !ok {
			return fmt.Errorf("There is no such category: %s.", fields[1])
		}

		h.Renderer.Rule(r)
		return nil
	}

	return fmt.Errorf("Unknown command: %s.", fields[0])
}

func (h *Handler) completer() func(in prompt.Document) []prompt.Suggest {
	return func(in prompt.Document) []prompt.Suggest {
		return h.suggest(in.TextBeforeCursor())
	}
}

func (h *Handler) suggest(befCursor string) []prompt.Suggest {
	s := []prompt.Suggest{}

	if len(befCursor) < completionThreshold || !strings.HasPrefix(befCursor, commandPrefix) {
		return s
	}

	tokens := strings.Split(strings.TrimPrefix(befCursor, commandPrefix), " ")

	if len(tokens) == 1 {
		for _, c := range []string{"rules", "rule"} {
			if strings.HasPrefix(c, tokens[0]) {
				s = append(s, prompt.Suggest{Text: commandPrefix + c})
			}
		}
		return s
	}

	if tokens[0] != "rule" {
		return s
	}

	for _, r := range h.Analyzer.Classifier().Table() {
		if strings.HasPrefix(r.Name, tokens[1]) {
			s = append(s, prompt.Suggest{Text: r.Name, Description: "🔖 " + r.Name})
		}
	}

	return s
}
