package main

import (
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/revelaction/phascan/stat"
)

func statCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "stat",
		Usage: "category distribution of a stored run",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "store", Usage: "sqlite database of reports (default: store.path)"},
			&cli.StringFlag{Name: "run", Usage: "run id (default: the most recent run)"},
			&cli.BoolFlag{Name: "runs", Usage: "list the runs"},
		},
		Action: func(c *cli.Context) error {
			path := c.String("store")
			if path == "" {
				path = e.cfg.Store.Path
			}
			if path == "" {
				return errors.New("no report store given, use --store")
			}

			repo, err := NewReportRepository(e.pool, path)
			if err != nil {
				return err
			}

			runs, err := repo.Runs()
			if err != nil {
				return err
			}

			r := e.renderer(c)

			if c.Bool("runs") {
				r.Runs(runs)
				return nil
			}

			run := c.String("run")
			if run == "" {
				if len(runs) == 0 {
					return errors.New("no run stored")
				}
				run = runs[0].Id
			}

			reports, err := repo.List(run)
			if err != nil {
				return err
			}

			hdl := stat.NewHandler()
			for _, rp := range reports {
				hdl.Aggregate(rp)
			}

			r.Stats(hdl.Get())
			return nil
		},
	}
}
