package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/revelaction/phascan/category"
	"github.com/revelaction/phascan/storage/filesystem"
	"github.com/revelaction/phascan/storage/sqlite/zombiezen"
)

type ImportRulesOptions struct {
	From string
	To   string
}

type ExportRulesOptions struct {
	From string
	To   string
}

func importRulesCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "import-rules",
		Usage: "copy a YAML rule table into a sqlite database, replacing its table",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "from", Usage: "YAML file (default: built in table)"},
			&cli.StringFlag{Name: "to", Usage: "sqlite database", Required: true},
		},
		Action: func(c *cli.Context) error {
			return importRulesCommand(e, ImportRulesOptions{From: c.String("from"), To: c.String("to")})
		},
	}
}

func importRulesCommand(e *env, opts ImportRulesOptions) error {
	t := category.Default()
	if opts.From != "" {
		var err error
		if t, err = filesystem.NewRuleStore(opts.From).ReadAll(); err != nil {
			return err
		}
	}

	pool, err := e.pool.Open(opts.To, zombiezen.SchemaRules)
	if err != nil {
		return err
	}

	if err := zombiezen.NewRuleStore(pool).WriteAll(t); err != nil {
		return fmt.Errorf("failed to write rules: %w", err)
	}

	fmt.Fprintf(e.ui.Out, "Successfully imported %d categories to %s\n", len(t), opts.To)
	return nil
}

func exportRulesCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "export-rules",
		Usage: "write the rule table of a sqlite database as YAML",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "from", Usage: "sqlite database", Required: true},
			&cli.StringFlag{Name: "to", Usage: "YAML file (default: standard output)"},
		},
		Action: func(c *cli.Context) error {
			return exportRulesCommand(e, ExportRulesOptions{From: c.String("from"), To: c.String("to")})
		},
	}
}

func exportRulesCommand(e *env, opts ExportRulesOptions) error {
	pool, err := e.pool.Open(opts.From, zombiezen.SchemaRules)
	if err != nil {
		return err
	}

	t, err := zombiezen.NewRuleStore(pool).ReadAll()
	if err != nil {
		return err
	}

	if opts.To == "" {
		return category.Encode(e.ui.Out, t)
	}

	if err := filesystem.NewRuleStore(opts.To).WriteAll(t); err != nil {
		return err
	}

	fmt.Fprintf(e.ui.Out, "Successfully exported %d categories to %s\n", len(t), opts.To)
	return nil
}
