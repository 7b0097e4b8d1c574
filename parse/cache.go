package parse

import (
	"context"

	"go.uber.org/zap"

	"github.com/revelaction/phascan/sentence"
)

// Cache stores parses by text.
type Cache interface {
	Get(text string) (sentence.Doc, bool, error)
	Put(text string, doc sentence.Doc) error
}

// Cached is a Parser that answers from a cache and fills it on a miss.
// Cache failures are logged, never returned.
type Cached struct {
	parser Parser
	cache  Cache
	logger *zap.Logger
}

var _ Parser = (*Cached)(nil)

// NewCached wraps p with c. A nil logger discards cache failures.
func NewCached(p Parser, c Cache, logger *zap.Logger) *Cached {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Cached{parser: p, cache: c, logger: logger}
}

func (c *Cached) Parse(ctx context.Context, text string) (sentence.Doc, error) {
	doc, ok, err := c.cache.Get(text)
	if err != nil {
		c.logger.Warn("parse cache read failed", zap.Error(err))
	}

	if ok {
		return doc, nil
	}

	doc, err = c.parser.Parse(ctx, text)
	if err != nil {
		return sentence.Doc{}, err
	}

	if err := c.cache.Put(text, doc); err != nil {
		c.logger.Warn("parse cache write failed", zap.Error(err))
	}

	return doc, nil
}
