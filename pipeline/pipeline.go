// Package pipeline drives the analysis of accessibility service
// descriptions: translation, dependency parse, action phrase extraction,
// stemming and classification, per description and per application.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/revelaction/phascan/category"
	"github.com/revelaction/phascan/classify"
	"github.com/revelaction/phascan/parse"
	"github.com/revelaction/phascan/phrase"
	"github.com/revelaction/phascan/stem"
	"github.com/revelaction/phascan/translate"
)

// Analyzer analyzes descriptions and applications. It holds no per-call
// state and can be used from several goroutines. The classifier can be
// replaced while analyses run; each call uses one classifier throughout.
type Analyzer struct {
	parser     parse.Parser
	translator translate.Translator
	stemmer    stem.Stemmer
	classifier atomic.Pointer[classify.Classifier]
	logger     *zap.Logger

	workers            int
	descriptionWorkers int
}

type Option func(*Analyzer)

// WithTranslator sets the translator. The default is translate.Passthrough.
func WithTranslator(t translate.Translator) Option {
	return func(a *Analyzer) { a.translator = t }
}

// WithStemmer sets the stemmer. The default is Snowball English.
func WithStemmer(s stem.Stemmer) Option {
	return func(a *Analyzer) { a.stemmer = s }
}

// WithClassifier sets the classifier. The default classifies with
// category.Default().
func WithClassifier(c *classify.Classifier) Option {
	return func(a *Analyzer) { a.classifier.Store(c) }
}

func WithLogger(l *zap.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

// WithWorkers sets the number of applications analyzed at once.
func WithWorkers(n int) Option {
	return func(a *Analyzer) { a.workers = n }
}

// WithDescriptionWorkers sets the number of descriptions of one application
// analyzed at once.
func WithDescriptionWorkers(n int) Option {
	return func(a *Analyzer) { a.descriptionWorkers = n }
}

// New returns an Analyzer that parses with p.
func New(p parse.Parser, opts ...Option) *Analyzer {
	a := &Analyzer{
		parser:             p,
		translator:         translate.Passthrough{},
		stemmer:            stem.NewSnowball(),
		logger:             zap.NewNop(),
		workers:            1,
		descriptionWorkers: 1,
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.classifier.Load() == nil {
		a.classifier.Store(classify.New(category.Default()))
	}

	if a.workers < 1 {
		a.workers = 1
	}

	if a.descriptionWorkers < 1 {
		a.descriptionWorkers = 1
	}

	return a
}

// Classifier returns the classifier of the Analyzer.
func (a *Analyzer) Classifier() *classify.Classifier {
	return a.classifier.Load()
}

// SetClassifier replaces the classifier for the calls that start after it.
func (a *Analyzer) SetClassifier(c *classify.Classifier) {
	a.classifier.Store(c)
}

// Description translates, parses and extracts the action phrases of one
// description. The error wraps translate.ErrTranslation or parse.ErrParser.
// Untranslated text is never parsed.
func (a *Analyzer) Description(ctx context.Context, text string) (Analysis, error) {
	an := Analysis{Text: text, Phrases: []string{}, Stemmed: []string{}}

	translation, err := a.translator.Translate(ctx, text)
	if err != nil {
		if !errors.Is(err, translate.ErrTranslation) {
			err = fmt.Errorf("%w: %w", translate.ErrTranslation, err)
		}
		return an, err
	}

	an.Translation = translation

	if a.parser == nil {
		return an, fmt.Errorf("%w: no parser", parse.ErrParser)
	}

	graphs, err := parse.Graphs(ctx, a.parser, translation)
	if err != nil {
		return an, err
	}

	an.Phrases = phrase.Texts(phrase.Extract(graphs...))
	an.Stemmed = stem.NormalizeAll(a.stemmer, an.Phrases)

	return an, nil
}

// Classify analyzes one description and classifies its phrases alone. A
// description without phrases has no evidence.
func (a *Analyzer) Classify(ctx context.Context, text string) (Analysis, classify.Result, error) {
	an, err := a.Description(ctx, text)
	if err != nil {
		return an, classify.Result{}, err
	}

	c := a.Classifier()
	if len(an.Stemmed) == 0 {
		res := classify.NoEvidence()
		res.Scores = c.Score(nil)
		return an, res, nil
	}

	return an, c.Classify(an.Stemmed), nil
}

// App analyzes every description of app. Description failures are recorded
// in the report and do not stop the analysis. Only a canceled context
// returns an error.
func (a *Analyzer) App(ctx context.Context, app App) (Report, error) {
	r := Report{
		Package:      app.Package,
		Source:       app.Source,
		Descriptions: nonNil(app.Descriptions),
		Translations: []string{},
		Phrases:      []string{},
		Evidence:     []string{},
		Failures:     []Failure{},
		EventTypes:   nonNil(app.EventTypes),
	}

	analyses := make([]Analysis, len(app.Descriptions))
	errs := make([]error, len(app.Descriptions))

	g := new(errgroup.Group)
	g.SetLimit(a.descriptionWorkers)

	for i, text := range app.Descriptions {
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			start := time.Now()
			analyses[i], errs[i] = a.Description(ctx, text)

			outcome := outcomeOK
			if errs[i] != nil {
				outcome = string(kindOf(errs[i]))
			}
			RecordDescription(outcome, len(analyses[i].Phrases), time.Since(start).Seconds())

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return r, err
	}

	if err := ctx.Err(); err != nil {
		return r, err
	}

	for i, an := range analyses {
		if err := errs[i]; err != nil {
			f := Failure{Index: i, Kind: kindOf(err), Err: err.Error()}
			r.Failures = append(r.Failures, f)

			a.logger.Warn("description skipped",
				zap.String("package", app.Package),
				zap.Int("description", i),
				zap.String("kind", string(f.Kind)),
				zap.Error(err),
			)
			continue
		}

		r.Translations = append(r.Translations, an.Translation)
		r.Phrases = append(r.Phrases, an.Phrases...)
		r.Evidence = append(r.Evidence, an.Stemmed...)
	}

	// No description, or descriptions without a single action, is a
	// distinct result from phrases that match no category.
	c := a.Classifier()
	var res classify.Result
	if len(r.Descriptions) == 0 || len(r.Evidence) == 0 {
		res = classify.NoEvidence()
		res.Scores = c.Score(nil)
	} else {
		res = c.Classify(r.Evidence)
	}

	r.Category = res.Category
	r.Scores = res.Scores

	RecordApp(r.Category)
	a.logger.Debug("application analyzed",
		zap.String("package", app.Package),
		zap.String("category", r.Category),
		zap.Int("phrases", len(r.Phrases)),
		zap.Int("failures", len(r.Failures)),
	)

	return r, nil
}

// Job loads one application, for instance by decoding an apk.
type Job struct {
	Source string
	Load   func(ctx context.Context) (App, error)
}

// Jobs loads and analyzes applications with a bounded number of workers.
// onResult is called once per job, never concurrently, in completion
// order. A load error is delivered in the Result and does not stop the
// batch; a canceled context does.
func (a *Analyzer) Jobs(ctx context.Context, jobs []Job, onResult func(Result)) error {
	var mu sync.Mutex
	deliver := func(res Result) {
		mu.Lock()
		defer mu.Unlock()
		if onResult != nil {
			onResult(res)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	for _, job := range jobs {
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			app, err := job.Load(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}

				RecordAppError()
				a.logger.Warn("application skipped", zap.String("source", job.Source), zap.Error(err))
				deliver(Result{Source: job.Source, Err: err})
				return nil
			}

			r, err := a.App(ctx, app)
			if err != nil {
				return err
			}

			deliver(Result{Source: job.Source, Report: r})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	return ctx.Err()
}

// Apps analyzes already loaded applications. See Jobs.
func (a *Analyzer) Apps(ctx context.Context, apps []App, onReport func(Report)) error {
	jobs := make([]Job, len(apps))
	for i, app := range apps {
		jobs[i] = Job{
			Source: app.Source,
			Load:   func(context.Context) (App, error) { return app, nil },
		}
	}

	return a.Jobs(ctx, jobs, func(res Result) {
		if onReport != nil {
			onReport(res.Report)
		}
	})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
