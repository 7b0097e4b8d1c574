package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

func rulesCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "rules",
		Usage:     "print the rule table, or the triggers of one category",
		ArgsUsage: "[NAME]",
		Action: func(c *cli.Context) error {
			t, err := e.table()
			if err != nil {
				return err
			}

			r := e.renderer(c)

			name := c.Args().First()
			if name == "" {
				r.Rules(t)
				return nil
			}

			rule, ok := t.Rule(name)
			if !ok {
				return fmt.Errorf("there is no such category: %s", name)
			}

			r.Rule(rule)
			return nil
		},
	}
}
