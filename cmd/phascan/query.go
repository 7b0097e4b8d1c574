package main

import (
	"context"
	"errors"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/revelaction/phascan/classify"
	"github.com/revelaction/phascan/pipeline"
	"github.com/revelaction/phascan/query"
	"github.com/revelaction/phascan/storage/filesystem"
)

func queryCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "query",
		Usage: "classify descriptions typed interactively",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "docs", Usage: "directory of pre-parsed doc JSON files used instead of the parse service"},
			&cli.BoolFlag{Name: "watch", Aliases: []string{"w"}, Usage: "reload the YAML rule table when it changes, f.ex. while edited in another terminal"},
		},
		Action: func(c *cli.Context) error {
			a, err := e.analyzer(c.String("docs"), 1)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(c.Context)
			defer cancel()

			if c.Bool("watch") {
				path := e.cfg.Rules.Path
				if !isYAML(path) {
					return errors.New("--watch needs a YAML rule table, use --rules")
				}

				go func() {
					if err := filesystem.Watch(ctx, path, func() { e.reload(a) }); err != nil {
						e.logger.Warn("rule table watch stopped", zap.String("path", path), zap.Error(err))
					}
				}()
			}

			return query.NewHandler(a, e.renderer(c)).Run(ctx)
		},
	}
}

// reload classifies the next queries with the current rule table. A table
// that cannot be read leaves the previous one in use.
func (e *env) reload(a *pipeline.Analyzer) {
	t, err := filesystem.NewRuleStore(e.cfg.Rules.Path).ReadAll()
	if err == nil && len(t) == 0 {
		err = errors.New("empty rule table")
	}
	if err == nil {
		err = t.Validate()
	}

	if err != nil {
		e.logger.Warn("rule table not reloaded", zap.String("path", e.cfg.Rules.Path), zap.Error(err))
		return
	}

	a.SetClassifier(classify.New(t))
	e.logger.Info("rule table reloaded", zap.String("path", e.cfg.Rules.Path), zap.Int("categories", len(t)))
}
