package cli

import (
	"encoding/json"

	"github.com/urfave/cli/v2"
)

func (a *App) statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "print the server configuration summary",
		Action: func(c *cli.Context) error {
			r, err := a.reader()
			if err != nil {
				return err
			}
			defer r.Close()

			ctx, cancel := a.withTimeout(c.Context)
			defer cancel()

			st, err := r.Status(ctx)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(a.out)
			enc.SetIndent("", "  ")
			return enc.Encode(st)
		},
	}
}
