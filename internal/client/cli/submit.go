package cli

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	cmodels "github.com/dmitrijs2005/truthchain/internal/client/models"
	"github.com/dmitrijs2005/truthchain/internal/common"
	"github.com/dmitrijs2005/truthchain/internal/cryptox"
	"github.com/dmitrijs2005/truthchain/internal/fingerprint"
	"github.com/dmitrijs2005/truthchain/internal/logging"
	"github.com/dmitrijs2005/truthchain/internal/server/ledger"
	"github.com/dmitrijs2005/truthchain/internal/server/models"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/urfave/cli/v2"
)

// submitter sends storeRecord and waits for it to be mined.
type submitter interface {
	Submit(ctx context.Context, hash [32]byte, cid string) (string, error)
	Close()
}

// newSubmitter is a test seam for ledger.NewEVM.
var newSubmitter = func(ctx context.Context, cfg ledger.EVMConfig, log logging.Logger) (submitter, error) {
	e, err := ledger.NewEVM(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (a *App) submitCommand() *cli.Command {
	return &cli.Command{
		Name:  "submit",
		Usage: "pin a file with a statement, anchor it on the ledger and store the record",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "text", Aliases: []string{"t"}, Usage: "statement text; prompted when empty"},
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "media file", Required: true},
			&cli.StringFlag{Name: "type", Usage: "MIME type of the file; guessed when empty"},
			&cli.StringFlag{Name: "rpc", Usage: "EVM JSON-RPC endpoint", EnvVars: []string{"TRUTHCTL_RPC_URL"}},
			&cli.Int64Flag{Name: "chain-id", Usage: "EVM chain id", EnvVars: []string{"TRUTHCTL_CHAIN_ID"}},
			&cli.StringFlag{Name: "key-file", Aliases: []string{"k"}, Usage: "file with the hex private key; prompted when empty", EnvVars: []string{"TRUTHCTL_KEY_FILE"}},
			&cli.DurationFlag{Name: "ledger-timeout", Usage: "how long to wait for the transaction to be mined"},
		},
		Action: a.submit,
	}
}

func (a *App) submit(c *cli.Context) error {
	if c.IsSet("rpc") {
		a.config.RPCURL = c.String("rpc")
	}
	if c.IsSet("chain-id") {
		a.config.ChainID = c.Int64("chain-id")
	}
	if c.IsSet("key-file") {
		a.config.KeyFile = c.String("key-file")
	}
	if c.IsSet("ledger-timeout") {
		a.config.LedgerTimeout = c.Duration("ledger-timeout")
	}

	path := c.String("file")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	text := c.String("text")
	if text == "" {
		text, err = GetMultiline(a.in, "Statement text", a.errOut)
		if err != nil {
			return err
		}
	}

	fileName := filepath.Base(path)
	fileType := c.String("type")
	if fileType == "" {
		fileType = guessType(fileName, data)
	}

	api := a.httpClient()

	ctx, cancel := a.withTimeout(c.Context)
	p, err := api.PrepareUpload(ctx, text, fileName, fileType, data)
	cancel()
	if err != nil {
		return fmt.Errorf("prepare upload: %w", err)
	}
	a.printf("Pinned:      %s\nFingerprint: %s\nTimestamp:   %s\n", p.ContentID, p.Fingerprint, p.Timestamp)

	sub := models.Submission{
		Text:        text,
		ContentID:   p.ContentID,
		Fingerprint: p.Fingerprint,
		FileName:    p.FileName,
		FileType:    p.FileType,
		Timestamp:   p.Timestamp,
		Ticket:      p.Ticket,
	}

	if p.VerificationMode != common.ModeLive {
		a.printf("Server runs in %s mode; skipping the ledger\n", p.VerificationMode)

		ctx, cancel := a.withTimeout(c.Context)
		defer cancel()

		rec, err := api.SaveRecord(ctx, sub)
		if err != nil {
			return fmt.Errorf("save record: %w", err)
		}
		a.printf("Record %s stored (tx %s, %s)\n", rec.ID, rec.LedgerTxRef, rec.VerificationMode)
		return nil
	}

	repo, closeJournal, err := a.openJournal(c.Context)
	if err != nil {
		return err
	}
	defer closeJournal()

	tx, wallet, aerr := a.anchor(c.Context, api, p)
	if tx == "" || errors.Is(aerr, common.ErrLedgerTxFailed) {
		return aerr
	}
	sub.LedgerTxRef = tx
	sub.WalletAddress = wallet

	entry := &cmodels.Pending{Submission: sub, ServerURL: a.config.ServerURL, CreatedAt: time.Now().UTC()}
	if aerr != nil {
		// Broadcast but not confirmed: keep the reference so retry can finish it.
		entry.LastError = aerr.Error()
	}
	if err := repo.Save(c.Context, entry); err != nil {
		return errors.Join(aerr, err)
	}
	if aerr != nil {
		return fmt.Errorf("%w; %s is kept in the journal, run truthctl retry once it is mined", aerr, tx)
	}

	if err := a.finalize(c.Context, repo, entry); err != nil {
		return fmt.Errorf("save record: %w; the submission is kept in the journal, run truthctl retry", err)
	}
	return nil
}

// anchor signs and sends storeRecord(fingerprint, cid) with the user's key.
// A transaction that was broadcast but not confirmed is returned together
// with the error.
func (a *App) anchor(ctx context.Context, api interface {
	ContractAddress(context.Context) (string, error)
}, p *models.PreparedUpload) (string, string, error) {
	contract := p.ContractAddress
	if contract == "" {
		var err error
		if contract, err = api.ContractAddress(ctx); err != nil {
			return "", "", fmt.Errorf("contract address: %w", err)
		}
	}
	if contract == "" {
		return "", "", errors.New("the server has no contract address; deploy the contract first")
	}

	key, err := a.loadKey()
	if err != nil {
		return "", "", err
	}
	wallet := cryptox.Address(key)

	hash, err := fingerprint.ToBytes32(p.Fingerprint)
	if err != nil {
		return "", "", err
	}

	lctx, cancel := context.WithTimeout(ctx, a.config.LedgerTimeout)
	defer cancel()

	s, err := newSubmitter(lctx, ledger.EVMConfig{
		RPCURL:          a.config.RPCURL,
		ContractAddress: contract,
		ChainID:         a.config.ChainID,
		SignerKey:       hex.EncodeToString(ethcrypto.FromECDSA(key)),
	}, logging.New(a.errOut, "warn"))
	if err != nil {
		return "", "", err
	}
	defer s.Close()

	a.printf("Sending storeRecord from %s and waiting for it to be mined...\n", wallet)
	tx, err := s.Submit(lctx, hash, p.ContentID)
	if err != nil {
		if tx != "" {
			a.printf("Sent:        %s\n", tx)
		}
		return tx, wallet, fmt.Errorf("storeRecord: %w", err)
	}
	a.printf("Mined:       %s\n", tx)

	return tx, wallet, nil
}

func (a *App) loadKey() (*ecdsa.PrivateKey, error) {
	if a.config.KeyFile != "" {
		return cryptox.LoadPrivateKey(a.config.KeyFile)
	}

	secret, err := GetSecret(a.inFd, "Private key (hex): ", a.errOut)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	defer clear(secret)

	return cryptox.ParsePrivateKey(string(bytes.TrimSpace(secret)))
}

func guessType(name string, data []byte) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return http.DetectContentType(data)
}
