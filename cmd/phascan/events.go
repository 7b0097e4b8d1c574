package main

import (
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/revelaction/phascan/manifest"
)

func eventsCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "events",
		Usage:     "print the accessibility event types of a decoded apk",
		ArgsUsage: "DIR",
		Action: func(c *cli.Context) error {
			dir := c.Args().First()
			if dir == "" {
				return errors.New("no directory given")
			}

			m, err := manifest.Read(dir)
			if err != nil {
				return err
			}

			configs, err := manifest.Configs(dir, m)
			if err != nil {
				return err
			}

			e.renderer(c).EventTypes(manifest.EventTypes(configs))
			return nil
		},
	}
}
