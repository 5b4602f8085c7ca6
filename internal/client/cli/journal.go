package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/dmitrijs2005/truthchain/internal/client/client"
	"github.com/dmitrijs2005/truthchain/internal/client/models"
	"github.com/dmitrijs2005/truthchain/internal/client/repositories/pending"
	"github.com/dmitrijs2005/truthchain/internal/common"
	"github.com/urfave/cli/v2"
)

// openJournal opens the pending-submission journal. The returned func closes it.
func (a *App) openJournal(ctx context.Context) (pending.Repository, func(), error) {
	db, err := client.InitDatabase(ctx, a.config.JournalPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open journal: %w", err)
	}
	return pending.NewSQLiteRepository(db), func() { _ = db.Close() }, nil
}

func (a *App) pendingCommand() *cli.Command {
	return &cli.Command{
		Name:  "pending",
		Usage: "print mined submissions the server has not stored yet",
		Action: func(c *cli.Context) error {
			repo, closeFn, err := a.openJournal(c.Context)
			if err != nil {
				return err
			}
			defer closeFn()

			list, err := repo.List(c.Context)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				a.printf("nothing pending\n")
				return nil
			}

			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			_, _ = tw.Write([]byte("HASH\tTX\tATTEMPTS\tLAST ERROR\n"))
			for _, p := range list {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", shortHash(p.Fingerprint), shortHash(p.LedgerTxRef), p.Attempts, p.LastError)
			}
			return tw.Flush()
		},
	}
}

func (a *App) retryCommand() *cli.Command {
	return &cli.Command{
		Name:  "retry",
		Usage: "call save-record again for every pending submission",
		Action: func(c *cli.Context) error {
			repo, closeFn, err := a.openJournal(c.Context)
			if err != nil {
				return err
			}
			defer closeFn()

			list, err := repo.List(c.Context)
			if err != nil {
				return err
			}

			failed := 0
			for _, p := range list {
				if err := a.finalize(c.Context, repo, p); err != nil {
					a.printf("%s: %v\n", shortHash(p.Fingerprint), err)
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d submissions still pending", failed, len(list))
			}
			a.printf("%d submissions stored\n", len(list))
			return nil
		},
	}
}

// finalize calls save-record for p. The journal entry is removed once the
// server has the record and updated with the error otherwise.
func (a *App) finalize(ctx context.Context, repo pending.Repository, p *models.Pending) error {
	api := a.httpClientFor(p.ServerURL)

	rctx, cancel := a.withTimeout(ctx)
	rec, err := api.SaveRecord(rctx, p.Submission)
	cancel()

	switch {
	case err == nil:
		a.printf("Record %s stored (tx %s, %s)\n", rec.ID, rec.LedgerTxRef, rec.VerificationMode)
		return repo.Delete(ctx, p.Fingerprint)
	case errors.Is(err, common.ErrDuplicateRecord):
		a.printf("%s is already stored\n", shortHash(p.Fingerprint))
		return repo.Delete(ctx, p.Fingerprint)
	}

	p.Attempts++
	p.LastError = err.Error()
	if serr := repo.Save(ctx, p); serr != nil {
		return errors.Join(err, serr)
	}
	return err
}
