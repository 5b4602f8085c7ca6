package cli

import (
	"encoding/json"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
)

func (a *App) listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "print verified records, newest first",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print raw JSON"},
		},
		Action: func(c *cli.Context) error {
			r, err := a.reader()
			if err != nil {
				return err
			}
			defer r.Close()

			ctx, cancel := a.withTimeout(c.Context)
			defer cancel()

			recs, err := r.ListRecords(ctx)
			if err != nil {
				return err
			}

			if c.Bool("json") {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(recs)
			}

			if len(recs) == 0 {
				a.printf("no records\n")
				return nil
			}

			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			_, _ = tw.Write([]byte("CREATED\tHASH\tCID\tMODE\tTEXT\n"))
			for _, rec := range recs {
				_, _ = tw.Write([]byte(formatTime(rec.CreatedAt) + "\t" + shortHash(rec.Fingerprint) + "\t" +
					rec.ContentID + "\t" + string(rec.VerificationMode) + "\t" + rec.Text + "\n"))
			}
			return tw.Flush()
		},
	}
}
