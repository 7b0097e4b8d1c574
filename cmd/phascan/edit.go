package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/revelaction/phascan/category"
	"github.com/revelaction/phascan/edit"
	"github.com/revelaction/phascan/stem"
)

func editCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "edit",
		Usage: "edit the rule table interactively",
		Action: func(c *cli.Context) error {
			path := e.cfg.Rules.Path
			if path == "" {
				return errors.New("no rule table given, use --rules")
			}

			repo, err := NewRuleRepository(e.pool, path)
			if err != nil {
				return err
			}

			t, err := repo.ReadAll()
			if err != nil {
				return err
			}

			// a new table starts as a copy of the built in one
			if len(t) == 0 {
				t = category.Default()
				for _, r := range t {
					if err := repo.Write(r); err != nil {
						return err
					}
				}
				fmt.Fprintf(e.ui.Out, "%s created from the built in table\n", path)
			}

			h := edit.NewHandler(t, repo, stem.NewSnowball().Stem, e.ui.Out)
			return h.Run()
		},
	}
}
