package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/revelaction/phascan/config"
	"github.com/revelaction/phascan/render"
)

// UI contains the output streams for the application.
// Used for injecting buffers during testing.
type UI struct {
	Out io.Writer
	Err io.Writer
}

// env is the state shared by all commands, built before any command runs.
type env struct {
	ui     UI
	cfg    *config.Config
	logger *zap.Logger
	pool   *Pool
}

func main() {
	ui := UI{Out: os.Stdout, Err: os.Stderr}

	if err := newApp(ui).Run(os.Args); err != nil {
		fprintErr(ui.Err, err)
		os.Exit(1)
	}
}

func fprintErr(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "phascan: %v\n", err)
}

func newApp(ui UI) *cli.App {
	e := &env{ui: ui, pool: &Pool{}}

	return &cli.App{
		Name:                 "phascan",
		Usage:                "classify what Android accessibility services claim to do",
		Writer:               ui.Out,
		ErrWriter:            ui.Err,
		EnableBashCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file",
				EnvVars: []string{"PHASCAN_CONFIG"},
				Value:   "phascan.yaml",
			},
			&cli.StringFlag{
				Name:  "rules",
				Usage: "rule table: a .yaml file or a sqlite database (default: built in table)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "debug logging",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "do not color the output (default when not writing to a terminal)",
			},
		},
		Before: e.setup,
		After:  e.close,
		Commands: []*cli.Command{
			analyzeCmd(e),
			classifyCmd(e),
			phrasesCmd(e),
			eventsCmd(e),
			rulesCmd(e),
			editCmd(e),
			queryCmd(e),
			importRulesCmd(e),
			exportRulesCmd(e),
			statCmd(e),
			initConfigCmd(e),
			versionCmd(e),
			bashCmd(e),
		},
	}
}

func (e *env) setup(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	if c.IsSet("rules") {
		cfg.Rules.Path = c.String("rules")
	}

	if c.Bool("verbose") {
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	e.cfg = cfg

	e.logger, err = newLogger(cfg.Logging.Level, e.ui.Err)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	return nil
}

func (e *env) close(c *cli.Context) error {
	if e.logger != nil {
		_ = e.logger.Sync()
	}

	return e.pool.Close()
}

func (e *env) renderer(c *cli.Context) *render.Renderer {
	r := render.NewRenderer(e.ui.Out)
	r.HasColor = !c.Bool("no-color") && isTerminal(e.ui.Out)
	return r
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
