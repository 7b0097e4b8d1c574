package pipeline

import (
	"errors"

	"github.com/revelaction/phascan/classify"
	"github.com/revelaction/phascan/translate"
)

// Kind of a local failure.
type Kind string

const (
	KindTranslation Kind = "translation"
	KindParser      Kind = "parser"
)

const outcomeOK = "ok"

// kindOf maps a description error to its failure kind. Description
// errors wrap either translate.ErrTranslation or parse.ErrParser.
func kindOf(err error) Kind {
	if errors.Is(err, translate.ErrTranslation) {
		return KindTranslation
	}

	return KindParser
}

// Failure is a description that was skipped.
type Failure struct {
	// Index of the description in App.Descriptions.
	Index int    `json:"index"`
	Kind  Kind   `json:"kind"`
	Err   string `json:"error"`
}

// App is an application with its accessibility service descriptions.
type App struct {
	Package string `json:"package"`

	// Source is the decoded directory or the apk path.
	Source       string   `json:"source"`
	Descriptions []string `json:"descriptions"`
	EventTypes   []string `json:"event_types"`
}

// Report is the analysis of one application.
type Report struct {
	Package      string   `json:"package"`
	Source       string   `json:"source"`
	Descriptions []string `json:"descriptions"`

	// Translations of the descriptions that could be translated, in
	// description order.
	Translations []string `json:"translations"`

	// Phrases of all descriptions, in description order.
	Phrases []string `json:"phrases"`

	// Evidence is the stemmed form of Phrases.
	Evidence []string         `json:"evidence"`
	Category string           `json:"category"`
	Scores   []classify.Score `json:"scores"`
	Failures []Failure        `json:"failures"`

	EventTypes []string `json:"event_types"`
}

// Analysis is the result of one description.
type Analysis struct {
	Text        string   `json:"text"`
	Translation string   `json:"translation"`
	Phrases     []string `json:"phrases"`
	Stemmed     []string `json:"stemmed"`
}

// Result carries a Report, or the error that prevented loading the
// application.
type Result struct {
	Source string
	Report Report
	Err    error
}
