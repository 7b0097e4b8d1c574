// Package parse adapts external dependency parsers to sentence graphs.
package parse

import (
	"context"
	"errors"
	"fmt"

	"github.com/revelaction/phascan/sentence"
)

// ErrParser is wrapped by every error caused by the parser not being able
// to process a text.
var ErrParser = errors.New("parser failure")

// Parser returns the dependency parse of a text.
type Parser interface {
	Parse(ctx context.Context, text string) (sentence.Doc, error)
}

// Func adapts a function to the Parser interface.
type Func func(ctx context.Context, text string) (sentence.Doc, error)

func (f Func) Parse(ctx context.Context, text string) (sentence.Doc, error) {
	return f(ctx, text)
}

// Docs is a Parser over already parsed texts, keyed by text.
type Docs map[string]sentence.Doc

func (d Docs) Parse(ctx context.Context, text string) (sentence.Doc, error) {
	doc, ok := d[text]
	if !ok {
		return sentence.Doc{}, fmt.Errorf("%w: no parse for %q", ErrParser, text)
	}

	return doc, nil
}

// Graphs parses text and builds one graph per sentence. Malformed parser
// output is a parser failure.
func Graphs(ctx context.Context, p Parser, text string) ([]sentence.Graph, error) {
	doc, err := p.Parse(ctx, text)
	if err != nil {
		if errors.Is(err, ErrParser) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrParser, err)
	}

	graphs, err := sentence.Trees(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParser, err)
	}

	return graphs, nil
}
