package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/c-bata/go-prompt"
	"github.com/gosuri/uiprogress"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/revelaction/phascan/pipeline"
	"github.com/revelaction/phascan/render"
	"github.com/revelaction/phascan/stat"
	"github.com/revelaction/phascan/storage"
)

type AnalyzeOptions struct {
	Jobs        int
	Format      string
	Store       string
	Docs        string
	Sort        bool
	Review      bool
	Progress    bool
	MetricsAddr string
}

func analyzeCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "classify the accessibility services of apks or decoded apk directories",
		ArgsUsage: "PATH...",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "jobs", Aliases: []string{"j"}, Usage: "applications analyzed at once (default: pipeline.workers)"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: render.FormatText, Usage: "output format: " + strings.Join(render.SupportedFormats(), ", ")},
			&cli.StringFlag{Name: "store", Usage: "sqlite database to store the reports (default: store.path)"},
			&cli.StringFlag{Name: "docs", Usage: "directory of pre-parsed doc JSON files used instead of the parse service"},
			&cli.BoolFlag{Name: "sort", Usage: "move categorized apks into successful/, unusable ones into useless/ and list packages in samples.csv"},
			&cli.BoolFlag{Name: "review", Usage: "analyze one application at a time and ask to continue"},
			&cli.BoolFlag{Name: "progress", Usage: "show a progress bar instead of the reports"},
			&cli.StringFlag{Name: "metrics-addr", Usage: "serve prometheus metrics on this address, f.ex. :9090"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return errors.New("no path given")
			}

			opts := AnalyzeOptions{
				Jobs:        c.Int("jobs"),
				Format:      c.String("format"),
				Store:       c.String("store"),
				Docs:        c.String("docs"),
				Sort:        c.Bool("sort"),
				Review:      c.Bool("review"),
				Progress:    c.Bool("progress"),
				MetricsAddr: c.String("metrics-addr"),
			}

			return analyzeCommand(c, e, opts, c.Args().Slice())
		},
	}
}

func analyzeCommand(c *cli.Context, e *env, opts AnalyzeOptions, paths []string) error {
	if opts.Format != render.FormatText && opts.Format != render.FormatJSON {
		return fmt.Errorf("unsupported format: %s", opts.Format)
	}

	if opts.Review {
		opts.Jobs = 1
		opts.Progress = false
	}

	jobs, err := e.jobs(paths)
	if err != nil {
		return err
	}

	a, err := e.analyzer(opts.Docs, opts.Jobs)
	if err != nil {
		return err
	}

	var rr render.ReportRenderer = e.renderer(c)
	if opts.Format == render.FormatJSON {
		rr = render.NewJSONRenderer(e.ui.Out)
	}

	storePath := opts.Store
	if storePath == "" {
		storePath = e.cfg.Store.Path
	}

	var (
		reports storage.ReportWriter
		run     storage.Run
	)
	if storePath != "" {
		repo, err := NewReportRepository(e.pool, storePath)
		if err != nil {
			return err
		}

		if run, err = repo.Start(); err != nil {
			return err
		}
		reports = repo
	}

	if opts.MetricsAddr != "" {
		srv := serveMetrics(opts.MetricsAddr, e.logger)
		defer srv.Close()
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var bar *uiprogress.Bar
	if opts.Progress {
		uiprogress.Start()
		bar = uiprogress.AddBar(len(jobs))
		bar.AppendCompleted()
		bar.PrependElapsed()
	}

	stats := stat.NewHandler()
	var failed error

	onResult := func(res pipeline.Result) {
		if bar != nil {
			bar.Incr()
		}

		if opts.Sort {
			if err := sortApk(res); err != nil {
				e.logger.Warn("could not sort apk", zap.String("source", res.Source), zap.Error(err))
			}
		}

		if res.Err != nil {
			if !opts.Progress && opts.Format == render.FormatText {
				fmt.Fprintf(e.ui.Out, "❌ %s: %v\n", res.Source, res.Err)
			}
			return
		}

		stats.Aggregate(res.Report)

		if reports != nil && failed == nil {
			if err := reports.Write(run.Id, res.Report); err != nil {
				failed = err
				cancel()
				return
			}
		}

		if !opts.Progress {
			if err := rr.Report(res.Report); err != nil {
				failed = err
				cancel()
				return
			}
		}

		if opts.Review && !confirm() {
			cancel()
		}
	}

	err = a.Jobs(ctx, jobs, onResult)

	if bar != nil {
		uiprogress.Stop()
	}

	if failed != nil {
		return failed
	}

	aborted := errors.Is(err, context.Canceled)
	if err != nil && !aborted {
		return err
	}

	if opts.Format == render.FormatText {
		if aborted {
			fmt.Fprintln(e.ui.Out, "Aborted.")
		}

		e.renderer(c).Stats(stats.Get())

		if reports != nil {
			fmt.Fprintf(e.ui.Out, "run %s stored in %s\n", run.Id, storePath)
		}
	}

	return nil
}

// confirm asks the operator whether to continue with the next application.
func confirm() bool {
	in := prompt.Input("Enter y to abort, anything else to continue: ", func(prompt.Document) []prompt.Suggest {
		return nil
	})

	return strings.TrimSpace(strings.ToLower(in)) != "y"
}

// jobs expands the paths into one job per application: a decoded apk
// directory, an apk file, or the apks and decoded directories inside a
// directory.
func (e *env) jobs(paths []string) ([]pipeline.Job, error) {
	var jobs []pipeline.Job

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			jobs = append(jobs, e.apkJob(path))
			continue
		}

		if isDecoded(path) {
			jobs = append(jobs, decodedJob(path))
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}

		for _, entry := range entries {
			p := filepath.Join(path, entry.Name())
			switch {
			case entry.IsDir() && isDecoded(p):
				jobs = append(jobs, decodedJob(p))
			case !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ".apk"):
				jobs = append(jobs, e.apkJob(p))
			}
		}
	}

	if len(jobs) == 0 {
		return nil, errors.New("no apk or decoded apk directory found")
	}

	return jobs, nil
}

func isDecoded(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, "AndroidManifest.xml"))
	return err == nil
}

func decodedJob(dir string) pipeline.Job {
	return pipeline.Job{
		Source: dir,
		Load: func(ctx context.Context) (pipeline.App, error) {
			return pipeline.LoadApp(dir)
		},
	}
}

// apkJob decodes the apk in a temporary directory removed after loading.
func (e *env) apkJob(apk string) pipeline.Job {
	return pipeline.Job{
		Source: apk,
		Load: func(ctx context.Context) (pipeline.App, error) {
			tmp, err := os.MkdirTemp("", "phascan-")
			if err != nil {
				return pipeline.App{}, err
			}
			defer os.RemoveAll(tmp)

			out := filepath.Join(tmp, "decoded")
			if err := e.decoder().Decode(ctx, apk, out); err != nil {
				return pipeline.App{}, err
			}

			app, err := pipeline.LoadApp(out)
			if err != nil {
				return pipeline.App{}, err
			}

			app.Source = apk
			return app, nil
		},
	}
}

func serveMetrics(addr string, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	logger.Info("serving metrics", zap.String("addr", addr))
	return srv
}
