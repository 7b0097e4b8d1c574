package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/revelaction/phascan/category"
	"github.com/revelaction/phascan/classify"
	"github.com/revelaction/phascan/manifest"
	"github.com/revelaction/phascan/parse"
	"github.com/revelaction/phascan/pipeline"
	"github.com/revelaction/phascan/storage"
	"github.com/revelaction/phascan/storage/filesystem"
	"github.com/revelaction/phascan/storage/sqlite/zombiezen"
	"github.com/revelaction/phascan/translate"
)

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// NewRuleRepository returns a YAML file store for .yaml paths and a sqlite
// store otherwise.
func NewRuleRepository(p *Pool, path string) (storage.RuleRepository, error) {
	if isYAML(path) {
		return filesystem.NewRuleStore(path), nil
	}

	pool, err := p.Open(path, zombiezen.SchemaRules)
	if err != nil {
		return nil, err
	}
	return zombiezen.NewRuleStore(pool), nil
}

func NewReportRepository(p *Pool, path string) (storage.ReportRepository, error) {
	pool, err := p.Open(path, zombiezen.SchemaReports)
	if err != nil {
		return nil, err
	}
	return zombiezen.NewReportStore(pool), nil
}

// NewDocCache returns a directory cache for paths without extension and a
// sqlite cache otherwise.
func NewDocCache(p *Pool, path string) (storage.DocCache, error) {
	if filepath.Ext(path) == "" {
		return filesystem.NewDocCache(path)
	}

	pool, err := p.Open(path, zombiezen.SchemaDocs)
	if err != nil {
		return nil, err
	}
	return zombiezen.NewDocCache(pool), nil
}

// table returns the configured rule table, or the built in one.
func (e *env) table() (category.Table, error) {
	path := e.cfg.Rules.Path
	if path == "" {
		return category.Default(), nil
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("rule table not found: %s", path)
	}

	repo, err := NewRuleRepository(e.pool, path)
	if err != nil {
		return nil, err
	}

	t, err := repo.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(t) == 0 {
		return nil, fmt.Errorf("rule table %s is empty", path)
	}

	return t, nil
}

// parser returns a parser over the pre-parsed docs of docsDir, or the HTTP
// parse service, cached if configured.
func (e *env) parser(docsDir string) (parse.Parser, error) {
	if docsDir != "" {
		docs, err := filesystem.ReadDocs(docsDir)
		if err != nil {
			return nil, err
		}
		return docs, nil
	}

	var p parse.Parser = parse.NewHTTP(e.cfg.Parser.URL, e.cfg.ParserPolicy(), nil)

	if e.cfg.Parser.Cache != "" {
		cache, err := NewDocCache(e.pool, e.cfg.Parser.Cache)
		if err != nil {
			return nil, err
		}
		p = parse.NewCached(p, cache, e.logger)
	}

	return p, nil
}

// translator returns the passthrough translator for pre-parsed docs, which
// are keyed by the working language text.
func (e *env) translator(docsDir string) translate.Translator {
	if docsDir != "" || !e.cfg.Translate.Enabled {
		return translate.Passthrough{}
	}

	return translate.NewHTTP(translate.Options{
		URL:       e.cfg.Translate.URL,
		APIKey:    e.cfg.Translate.APIKey,
		Source:    e.cfg.Translate.Source,
		Target:    e.cfg.Translate.Target,
		Policy:    e.cfg.TranslatePolicy(),
		RateLimit: e.cfg.Translate.RateLimit,
	})
}

func (e *env) analyzer(docsDir string, workers int) (*pipeline.Analyzer, error) {
	t, err := e.table()
	if err != nil {
		return nil, err
	}

	p, err := e.parser(docsDir)
	if err != nil {
		return nil, err
	}

	if workers < 1 {
		workers = e.cfg.Pipeline.Workers
	}

	return pipeline.New(p,
		pipeline.WithTranslator(e.translator(docsDir)),
		pipeline.WithClassifier(classify.New(t)),
		pipeline.WithLogger(e.logger),
		pipeline.WithWorkers(workers),
		pipeline.WithDescriptionWorkers(e.cfg.Pipeline.DescriptionWorkers),
	), nil
}

func (e *env) decoder() manifest.Decoder {
	return manifest.Decoder{Path: e.cfg.Apktool.Path, Timeout: e.cfg.GetApktoolTimeout()}
}
