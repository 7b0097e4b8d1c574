package storage

import (
	"errors"
	"time"

	"github.com/revelaction/phascan/category"
	"github.com/revelaction/phascan/pipeline"
	"github.com/revelaction/phascan/sentence"
)

// ErrNotFound is wrapped by the errors of reads of missing rules, runs or
// docs.
var ErrNotFound = errors.New("not found")

// RuleReader defines read operations for the category rule table
type RuleReader interface {
	// ReadAll returns the table, in priority order
	ReadAll() (category.Table, error)

	// Read returns a single rule by category name
	Read(name string) (category.Rule, error)
}

// RuleWriter defines write operations for the category rule table
type RuleWriter interface {
	// Write replaces the rule with the same name, keeping its position, or
	// appends a new one at the end of the table
	Write(r category.Rule) error

	// Delete removes a rule by category name
	Delete(name string) error
}

// RuleRepository combines read and write operations
type RuleRepository interface {
	RuleReader
	RuleWriter
}

// Run is one invocation of the analyzer over a batch of applications.
type Run struct {
	Id      string    `json:"id"`
	Started time.Time `json:"started"`
	Reports int       `json:"reports"`
}

// ReportReader defines read operations for analysis reports
type ReportReader interface {
	// Runs returns all runs, most recent first
	Runs() ([]Run, error)

	// List returns the reports of a run in the order they were written
	List(run string) ([]pipeline.Report, error)
}

// ReportWriter defines write operations for analysis reports
type ReportWriter interface {
	// Start creates a new run
	Start() (Run, error)

	// Write persists a report of a run
	Write(run string, r pipeline.Report) error
}

// ReportRepository combines read and write operations
type ReportRepository interface {
	ReportReader
	ReportWriter
}

// DocCache stores dependency parses by the text they were parsed from.
type DocCache interface {
	// Get returns false if text was never parsed
	Get(text string) (sentence.Doc, bool, error)
	Put(text string, doc sentence.Doc) error
}
