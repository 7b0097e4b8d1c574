package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/revelaction/phascan/config"
)

func initConfigCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "init-config",
		Usage:     "write the default configuration",
		ArgsUsage: "[PATH]",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				path = "phascan.yaml"
			}

			if err := config.Default().Save(path); err != nil {
				return err
			}

			fmt.Fprintf(e.ui.Out, "configuration written to %s\n", path)
			return nil
		},
	}
}
