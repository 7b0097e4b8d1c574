package main

import (
	"errors"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/revelaction/phascan/render"
)

func classifyCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "classify",
		Usage:     "classify one description",
		ArgsUsage: "TEXT...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "docs", Usage: "directory of pre-parsed doc JSON files used instead of the parse service"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: render.FormatText, Usage: "output format: " + strings.Join(render.SupportedFormats(), ", ")},
		},
		Action: func(c *cli.Context) error {
			text := strings.Join(c.Args().Slice(), " ")
			if strings.TrimSpace(text) == "" {
				return errors.New("no description given")
			}

			a, err := e.analyzer(c.String("docs"), 1)
			if err != nil {
				return err
			}

			an, res, err := a.Classify(c.Context, text)
			if err != nil {
				return err
			}

			if c.String("format") == render.FormatJSON {
				return render.NewJSONRenderer(e.ui.Out).Render(struct {
					Analysis any `json:"analysis"`
					Result   any `json:"result"`
				}{an, res})
			}

			e.renderer(c).Analysis(an, res)
			return nil
		},
	}
}
