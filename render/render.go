package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/revelaction/phascan/category"
	"github.com/revelaction/phascan/classify"
	"github.com/revelaction/phascan/phrase"
	"github.com/revelaction/phascan/pipeline"
	sent "github.com/revelaction/phascan/sentence"
	"github.com/revelaction/phascan/stat"
	"github.com/revelaction/phascan/storage"
)

var (
	Black   = "\033[1;30m"
	Red     = "\033[1;31m"
	Green   = "\033[1;32m"
	Yellow  = "\033[0;33m"
	Purple  = "\033[1;34m"
	Magenta = "\033[1;35m"
	Teal    = "\033[1;36m"
	Gray    = "\033[0;37m"
	White   = "\033[1;37m"
	Off     = "\033[0m"
	//Yellow256  = "\033[1;38;5;202m"
	Yellow256 = "\033[1;38;5;130m"
	Grey256   = "\033[1;38;5;145m"
	Green256  = "\033[1;38;5;70m"
	ClearLine = "\033[K"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

func SupportedFormats() []string {
	return []string{FormatText, FormatJSON}
}

// ReportRenderer writes analysis reports.
type ReportRenderer interface {
	Report(r pipeline.Report) error
}

// Renderer writes human readable output.
type Renderer struct {
	W io.Writer

	HasColor bool

	// HasPrefix prints the package name before each line of a report
	HasPrefix bool
}

var _ ReportRenderer = (*Renderer)(nil)

func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{W: w}
}

// Report renders the category of an application and the phrases it was
// chosen from.
func (r *Renderer) Report(rp pipeline.Report) error {
	prefix := ""
	if r.HasPrefix {
		prefix = fmt.Sprintf("[%s] ", r.color(Grey256, title(rp.Package)))
	}

	fmt.Fprintf(r.W, "%s📦 %s  🏷  %s\n", prefix, rp.Package, r.category(rp.Category))

	for i, d := range rp.Descriptions {
		fmt.Fprintf(r.W, "%s  %2d ✍  %s\n", prefix, i, oneLine(d))
	}

	for _, f := range rp.Failures {
		fmt.Fprintf(r.W, "%s  %2d %s\n", prefix, f.Index, r.color(Red, fmt.Sprintf("%s failure: %s", f.Kind, f.Err)))
	}

	for i, p := range rp.Phrases {
		stemmed := ""
		if i < len(rp.Evidence) {
			stemmed = rp.Evidence[i]
		}
		fmt.Fprintf(r.W, "%s     ➜ %-40s %s\n", prefix, p, r.color(Gray, stemmed))
	}

	if line := r.scores(rp.Scores, rp.Category); line != "" {
		fmt.Fprintf(r.W, "%s     %s\n", prefix, line)
	}

	if len(rp.EventTypes) > 0 {
		fmt.Fprintf(r.W, "%s     events: %s\n", prefix, strings.Join(rp.EventTypes, ", "))
	}

	return nil
}

// Analysis renders one description, its phrases and the result of
// classifying them alone.
func (r *Renderer) Analysis(an pipeline.Analysis, res classify.Result) {
	fmt.Fprintf(r.W, "✍  %s\n", oneLine(an.Text))
	if an.Translation != "" && an.Translation != an.Text {
		fmt.Fprintf(r.W, "🌐 %s\n", oneLine(an.Translation))
	}

	for i, p := range an.Phrases {
		fmt.Fprintf(r.W, "   ➜ %-40s %s\n", p, r.color(Gray, an.Stemmed[i]))
	}

	fmt.Fprintf(r.W, "🏷  %s\n", r.category(res.Category))
	if line := r.scores(res.Scores, res.Category); line != "" {
		fmt.Fprintf(r.W, "   %s\n", line)
	}
}

// Phrases renders the sentences of a doc with the verbs of phrases
// highlighted, followed by the phrases.
func (r *Renderer) Phrases(doc sent.Doc, phrases []phrase.Phrase) {
	verbs := map[int]map[int]bool{}
	for _, p := range phrases {
		if verbs[p.Sentence] == nil {
			verbs[p.Sentence] = map[int]bool{}
		}
		verbs[p.Sentence][p.Verb] = true
	}

	for i, s := range doc.Sentences {
		var matches []sent.Token
		for _, t := range s.Tokens {
			if verbs[i][t.Index] {
				matches = append(matches, t)
			}
		}

		fmt.Fprintf(r.W, "%2d ✍  %s\n", i, r.SentenceString(s.Tokens, matches))
	}

	for _, p := range phrases {
		fmt.Fprintf(r.W, "   ➜ %-40s %s\n", p.Text, r.color(Gray, p.Rule))
	}
}

func (r *Renderer) SentenceString(s []sent.Token, matches []sent.Token) string {
	text := r.sentence(s, matches)
	return strings.ReplaceAll(text, "\n", " ")
}

func (r *Renderer) sentence(sentence, matches []sent.Token) string {
	var str strings.Builder
	var lastIdx, lastLen int
	for i, token := range sentence {
		l := len([]rune(token.Text))
		if i == 0 {
			str.WriteString(colorToken(token, matches, r.HasColor))
			lastIdx = token.Idx
			lastLen = l
			continue
		}

		// parsers without character offsets leave idx at zero
		if token.Idx == 0 && lastIdx == 0 {
			str.WriteString(" ")
			str.WriteString(colorToken(token, matches, r.HasColor))
			lastLen = l
			continue
		}

		// both parts of a multi token word share `text` and `idx`; only the
		// first is rendered.
		diff := token.Idx - lastIdx

		if diff > 0 {
			str.WriteString(strings.Repeat(" ", max(diff-lastLen, 0)))
			str.WriteString(colorToken(token, matches, r.HasColor))
		}

		lastIdx = token.Idx
		lastLen = l
	}

	return str.String()
}

// Rules renders the rule table in priority order.
func (r *Renderer) Rules(t category.Table) {
	for i, rule := range t {
		fmt.Fprintf(r.W, "%2d %s\n", i, r.color(Yellow256, rule.Name))
		r.Rule(rule)
	}
}

// Rule renders the triggers of a rule, one per line.
func (r *Renderer) Rule(rule category.Rule) {
	for _, t := range rule.Triggers {
		fmt.Fprintf(r.W, "     %s\n", t)
	}
}

func (r *Renderer) EventTypes(types []string) {
	for _, t := range types {
		fmt.Fprintln(r.W, t)
	}
}

func (r *Renderer) Runs(runs []storage.Run) {
	for _, run := range runs {
		fmt.Fprintf(r.W, "%s  %s  %5d reports\n", run.Id, run.Started.Format("2006-01-02 15:04:05"), run.Reports)
	}
}

// Stats renders the category distribution, most frequent first.
func (r *Renderer) Stats(s stat.Stats) {
	fmt.Fprintf(r.W, "apps:         %d\n", s.NumApps)
	fmt.Fprintf(r.W, "descriptions: %d\n", s.NumDescriptions)
	fmt.Fprintf(r.W, "phrases:      %d\n", s.NumPhrases)
	fmt.Fprintf(r.W, "failures:     %d (translation %d, parser %d)\n",
		s.NumFailures, s.FailuresByKind[pipeline.KindTranslation], s.FailuresByKind[pipeline.KindParser])
	fmt.Fprintf(r.W, "phrases/app:  %.2f\n", s.PhrasesPerAppMean)

	type entry struct {
		name  string
		count int
	}

	entries := []entry{}
	for name, count := range s.Categories {
		entries = append(entries, entry{name, count})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})

	for _, e := range entries {
		pct := 0.0
		if s.NumApps > 0 {
			pct = 100 * float64(e.count) / float64(s.NumApps)
		}
		fmt.Fprintf(r.W, "[%5d %5.1f%%] 🏷  %s\n", e.count, pct, r.category(e.name))
	}
}

// scores renders the non zero category counts in table order.
func (r *Renderer) scores(scores []classify.Score, winner string) string {
	parts := []string{}
	for _, s := range scores {
		if s.Count == 0 {
			continue
		}

		part := fmt.Sprintf("%s:%d", s.Category, s.Count)
		if s.Category == winner {
			part = r.color(Green256, part)
		}
		parts = append(parts, part)
	}

	return strings.Join(parts, " ")
}

func (r *Renderer) category(name string) string {
	switch name {
	case category.NoEvidence:
		return r.color(Red, name)
	case category.Uncategorized:
		return r.color(Magenta, name)
	}

	return r.color(Yellow256, name)
}

func (r *Renderer) color(c, s string) string {
	if !r.HasColor || s == "" {
		return s
	}

	return c + s + Off
}

func colorToken(token sent.Token, matches []sent.Token, hasColor bool) string {
	if !hasColor {
		return token.Text
	}

	for _, mt := range matches {
		if mt.Index == token.Index {
			return Green256 + token.Text + Off
		}
	}

	return token.Text
}

func title(name string) string {
	if len(name) <= 20 {
		return fmt.Sprintf("%-20s", name)
	}

	return name[:20]
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
