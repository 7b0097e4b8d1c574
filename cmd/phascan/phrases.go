package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/revelaction/phascan/classify"
	"github.com/revelaction/phascan/phrase"
	"github.com/revelaction/phascan/sentence"
	"github.com/revelaction/phascan/stem"
	"github.com/revelaction/phascan/storage/filesystem"
)

// phrasesCmd works offline on a pre-parsed doc.
func phrasesCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "phrases",
		Usage: "extract and classify the action phrases of a pre-parsed doc",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "doc", Aliases: []string{"d"}, Usage: "doc JSON file", Required: true},
		},
		Action: func(c *cli.Context) error {
			doc, err := filesystem.ReadDoc(c.String("doc"))
			if err != nil {
				return err
			}

			graphs, err := sentence.Trees(doc)
			if err != nil {
				return err
			}

			t, err := e.table()
			if err != nil {
				return err
			}

			phrases := phrase.Extract(graphs...)
			stemmed := stem.NormalizeAll(stem.NewSnowball(), phrase.Texts(phrases))

			r := e.renderer(c)
			r.Phrases(doc, phrases)

			if len(stemmed) == 0 {
				return errors.New("no action phrase found")
			}

			res := classify.New(t).Classify(stemmed)
			for _, s := range stemmed {
				fmt.Fprintf(e.ui.Out, "   %s\n", s)
			}
			fmt.Fprintf(e.ui.Out, "🏷  %s\n", res.Category)

			return nil
		},
	}
}
