package cli

import (
	"github.com/dmitrijs2005/truthchain/internal/fingerprint"
	"github.com/urfave/cli/v2"
)

func (a *App) fingerprintCommand() *cli.Command {
	return &cli.Command{
		Name:  "fingerprint",
		Usage: "compute the fingerprint of text, cid and timestamp",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "text", Required: true},
			&cli.StringFlag{Name: "cid", Required: true},
			&cli.StringFlag{Name: "timestamp", Usage: "exact ISO-8601 timestamp string", Required: true},
		},
		Action: func(c *cli.Context) error {
			a.printf("%s\n", fingerprint.Compute(c.String("text"), c.String("cid"), c.String("timestamp")))
			return nil
		},
	}
}
