// Package services contains server-side business logic. RecordService runs
// the verification protocol: intake and pinning, fingerprinting, ledger
// cross-check and persistence.
package services

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/truthchain/internal/common"
	"github.com/dmitrijs2005/truthchain/internal/fingerprint"
	"github.com/dmitrijs2005/truthchain/internal/logging"
	"github.com/dmitrijs2005/truthchain/internal/server/auth"
	"github.com/dmitrijs2005/truthchain/internal/server/config"
	"github.com/dmitrijs2005/truthchain/internal/server/contentstore"
	"github.com/dmitrijs2005/truthchain/internal/server/ledger"
	"github.com/dmitrijs2005/truthchain/internal/server/models"
	"github.com/dmitrijs2005/truthchain/internal/server/repositories/records"
)

const (
	defaultFileName = "unknown"
	defaultFileType = "application/octet-stream"
)

var fingerprintPattern = regexp.MustCompile(`^(0x)?[0-9a-fA-F]{64}$`)

// Upload is the intake input.
type Upload struct {
	Text     string
	FileName string
	FileType string
	Data     []byte
}

// Status describes how the server is configured. It never includes secrets.
type Status struct {
	StorageMode        string                  `json:"storageMode"`
	VerificationMode   common.VerificationMode `json:"verificationMode"`
	ContractAddress    string                  `json:"contractAddress,omitempty"`
	HasContractAddress bool                    `json:"hasContractAddress"`
	HasPinataJwt       bool                    `json:"hasPinataJwt"`
	HasWeb3Token       bool                    `json:"hasWeb3Token"`
	HasS3Credentials   bool                    `json:"hasS3Credentials"`
	HasPolygonKey      bool                    `json:"hasPolygonKey"`
	RelayEnabled       bool                    `json:"relayEnabled"`
	TicketRequired     bool                    `json:"ticketRequired"`
}

// RecordService implements the verification protocol. The verification mode
// is fixed at construction.
type RecordService struct {
	repo   records.Repository
	store  contentstore.Store
	ledger ledger.Ledger
	cache  *ListingCache
	log    logging.Logger

	mode           common.VerificationMode
	secretKey      []byte
	ticketValidity time.Duration
	requireTicket  bool
	maxUploadBytes int64
	allowedTypes   []string
	ledgerTimeout  time.Duration
	relayEnabled   bool
	status         Status

	now func() time.Time
}

// NewRecordService wires the protocol to its collaborators and the server
// configuration.
func NewRecordService(repo records.Repository, store contentstore.Store, l ledger.Ledger,
	cache *ListingCache, cfg *config.Config, log logging.Logger) *RecordService {
	s := &RecordService{
		repo:           repo,
		store:          store,
		ledger:         l,
		cache:          cache,
		log:            log.With("module", "records"),
		mode:           cfg.VerificationMode,
		secretKey:      []byte(cfg.SecretKey),
		ticketValidity: cfg.TicketValidityDuration,
		requireTicket:  cfg.RequireTicket,
		maxUploadBytes: cfg.MaxUploadBytes,
		allowedTypes:   cfg.AllowedFileTypes,
		ledgerTimeout:  cfg.LedgerTimeout,
		relayEnabled:   cfg.LedgerSignerKey != "",
		now:            time.Now,
	}

	s.status = Status{
		StorageMode:        store.Name(),
		VerificationMode:   cfg.VerificationMode,
		HasContractAddress: cfg.ContractAddress != "",
		HasPinataJwt:       cfg.PinataJWT != "",
		HasWeb3Token:       cfg.Web3StorageToken != "",
		HasS3Credentials:   cfg.S3RootUser != "" && cfg.S3RootPassword != "",
		HasPolygonKey:      cfg.LedgerSignerKey != "",
		RelayEnabled:       s.relayEnabled,
		TicketRequired:     cfg.RequireTicket,
	}
	if cfg.ContractAddress != "" {
		s.status.ContractAddress = l.ContractAddress()
	}

	return s
}

// Mode returns the verification mode.
func (s *RecordService) Mode() common.VerificationMode { return s.mode }

// RelayEnabled reports whether Relay is available.
func (s *RecordService) RelayEnabled() bool { return s.relayEnabled }

// ContractAddress returns the configured contract, or "" if none.
func (s *RecordService) ContractAddress() string { return s.status.ContractAddress }

// Status reports the active configuration.
func (s *RecordService) Status() Status { return s.status }

// List returns all records newest first.
func (s *RecordService) List(ctx context.Context) ([]*models.Record, error) {
	cached, gen, ok := s.cache.Get()
	if ok {
		return cached, nil
	}

	recs, err := s.repo.ListAll(ctx)
	if err != nil {
		s.log.Error(ctx, "list records failed", "error", err)
		return nil, fmt.Errorf("%w: list records", common.ErrorInternal)
	}

	s.cache.Set(gen, recs)
	return recs, nil
}

// Prepare validates the upload, pins the file and fingerprints it. The
// result includes a ticket that Finalize accepts as proof the server
// computed the fingerprint.
func (s *RecordService) Prepare(ctx context.Context, in Upload) (*models.PreparedUpload, error) {
	fileType, err := s.validateUpload(in)
	if err != nil {
		return nil, err
	}
	fileName := in.FileName
	if fileName == "" {
		fileName = defaultFileName
	}

	cid, err := s.store.Upload(ctx, in.Data, fileName)
	if err != nil {
		s.log.Error(ctx, "content upload failed", "store", s.store.Name(), "error", err)
		if !errors.Is(err, common.ErrUpstreamUnavailable) {
			err = fmt.Errorf("%w: %v", common.ErrUpstreamUnavailable, err)
		}
		return nil, err
	}

	ts := fingerprint.Timestamp(s.now())
	fp := fingerprint.Compute(in.Text, cid, ts)

	out := &models.PreparedUpload{
		ContentID:        cid,
		Fingerprint:      fp,
		Timestamp:        ts,
		FileName:         fileName,
		FileType:         fileType,
		ContractAddress:  s.status.ContractAddress,
		VerificationMode: s.mode,
	}

	if len(s.secretKey) > 0 {
		ticket, err := auth.GenerateTicket(auth.Ticket{
			Fingerprint: fp,
			ContentID:   cid,
			Timestamp:   ts,
			FileName:    fileName,
			FileType:    fileType,
		}, s.secretKey, s.ticketValidity)
		if err != nil {
			return nil, fmt.Errorf("%w: ticket: %v", common.ErrorInternal, err)
		}
		out.Ticket = ticket
	}

	s.log.Info(ctx, "upload prepared", "cid", cid, "hash", fp[:16])
	return out, nil
}

func (s *RecordService) validateUpload(in Upload) (string, error) {
	if strings.TrimSpace(in.Text) == "" {
		return "", fmt.Errorf("%w: text is required", common.ErrValidation)
	}
	if len(in.Data) == 0 {
		return "", fmt.Errorf("%w: file is required", common.ErrValidation)
	}
	if s.maxUploadBytes > 0 && int64(len(in.Data)) > s.maxUploadBytes {
		return "", fmt.Errorf("%w: file exceeds %d bytes", common.ErrValidation, s.maxUploadBytes)
	}

	fileType := in.FileType
	if mt, _, err := mime.ParseMediaType(fileType); err == nil {
		fileType = mt
	}
	fileType = strings.ToLower(fileType)
	if len(s.allowedTypes) > 0 && !slices.Contains(s.allowedTypes, fileType) {
		return "", fmt.Errorf("%w: file type %q is not supported (allowed: %s)",
			common.ErrValidation, in.FileType, strings.Join(s.allowedTypes, ", "))
	}
	return fileType, nil
}

// Finalize persists a submission after checking its ticket, cross-checking
// the ledger transaction (live mode) and recomputing the fingerprint.
func (s *RecordService) Finalize(ctx context.Context, sub models.Submission) (rec *models.Record, err error) {
	defer func() { observeVerification(s.mode, err) }()

	if err := s.validateSubmission(sub); err != nil {
		return nil, err
	}
	fp := fingerprint.Normalize(sub.Fingerprint)

	if err := s.checkTicket(sub, fp); err != nil {
		return nil, err
	}

	txRef := strings.TrimSpace(sub.LedgerTxRef)

	switch s.mode {
	case common.ModeLive:
		cctx, cancel := s.withLedgerTimeout(ctx)
		_, err := CrossCheck(cctx, s.ledger, txRef, fp, sub.ContentID, sub.WalletAddress)
		cancel()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				err = fmt.Errorf("%w: ledger did not answer within %s, retry later", common.ErrLedgerTxNotFound, s.ledgerTimeout)
			}
			s.log.Warn(ctx, "cross-check failed", "tx", txRef, "kind", common.KindOf(err), "error", err)
			return nil, err
		}
	default:
		if txRef == "" {
			b, _ := fingerprint.ToBytes32(fp)
			txRef = ledger.OfflineTxRef(b)
		}
	}

	return s.persist(ctx, sub, fp, txRef)
}

func (s *RecordService) validateSubmission(sub models.Submission) error {
	var missing []string
	if strings.TrimSpace(sub.Text) == "" {
		missing = append(missing, "text")
	}
	if sub.ContentID == "" {
		missing = append(missing, "cid")
	}
	if sub.Fingerprint == "" {
		missing = append(missing, "hash")
	}
	if sub.Timestamp == "" {
		missing = append(missing, "timestamp")
	}
	if s.mode == common.ModeLive && strings.TrimSpace(sub.LedgerTxRef) == "" {
		missing = append(missing, "tx")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", common.ErrValidation, strings.Join(missing, ", "))
	}
	if !fingerprintPattern.MatchString(sub.Fingerprint) {
		return fmt.Errorf("%w: hash must be 64 hex characters", common.ErrValidation)
	}
	return nil
}

func (s *RecordService) checkTicket(sub models.Submission, fp string) error {
	if sub.Ticket == "" {
		if s.requireTicket {
			return fmt.Errorf("%w: ticket is required", common.ErrValidation)
		}
		return nil
	}

	// In live mode the ledger event proves the upload was attested, so a
	// ticket that expired while the transaction was pending is still accepted.
	parse := auth.ParseTicket
	if s.mode == common.ModeLive {
		parse = auth.ParseTicketAllowExpired
	}

	t, err := parse(sub.Ticket, s.secretKey)
	if err != nil {
		return err
	}
	if !t.Matches(fp, sub.ContentID, sub.Timestamp) {
		return fmt.Errorf("%w: ticket was issued for a different upload", common.ErrInvalidTicket)
	}
	if sub.FileType != "" && t.FileType != "" && !strings.EqualFold(sub.FileType, t.FileType) {
		return fmt.Errorf("%w: ticket was issued for a different file type", common.ErrInvalidTicket)
	}
	return nil
}

func (s *RecordService) persist(ctx context.Context, sub models.Submission, fp, txRef string) (*models.Record, error) {
	if !fingerprint.Verify(sub.Text, sub.ContentID, sub.Timestamp, fp) {
		return nil, fmt.Errorf("%w: hash does not match text, cid and timestamp", common.ErrHashVerificationFailed)
	}

	rec := &models.Record{
		Text:             sub.Text,
		ContentID:        sub.ContentID,
		Fingerprint:      fp,
		LedgerTxRef:      txRef,
		FileName:         orDefault(sub.FileName, defaultFileName),
		FileType:         orDefault(sub.FileType, defaultFileType),
		Timestamp:        sub.Timestamp,
		Submitter:        sub.WalletAddress,
		VerificationMode: s.mode,
	}

	stored, err := s.repo.Create(ctx, rec)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateRecord) {
			return nil, err
		}
		s.log.Error(ctx, "record insert failed", "error", err)
		return nil, fmt.Errorf("%w: store record", common.ErrorInternal)
	}

	s.cache.Invalidate()
	s.log.Info(ctx, "record stored", "id", stored.ID, "tx", txRef, "mode", s.mode)
	return stored, nil
}

// Relay is the server-submits variant, available only with a server signer
// key: it prepares the upload, sends storeRecord itself, waits for it to be
// mined and finalizes. The client never sees the ticket.
func (s *RecordService) Relay(ctx context.Context, in Upload) (*models.Record, error) {
	if !s.relayEnabled {
		return nil, fmt.Errorf("%w: relay is disabled; configure a ledger signer key", common.ErrUpstreamUnavailable)
	}

	p, err := s.Prepare(ctx, in)
	if err != nil {
		return nil, err
	}

	hash, err := fingerprint.ToBytes32(p.Fingerprint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	sctx, cancel := s.withLedgerTimeout(ctx)
	txRef, err := s.ledger.Submit(sctx, hash, p.ContentID)
	cancel()
	if err != nil {
		s.log.Error(ctx, "relay submit failed", "tx", txRef, "error", err)
		return nil, err
	}

	return s.Finalize(ctx, models.Submission{
		Text:        in.Text,
		ContentID:   p.ContentID,
		Fingerprint: p.Fingerprint,
		LedgerTxRef: txRef,
		FileName:    p.FileName,
		FileType:    p.FileType,
		Timestamp:   p.Timestamp,
		Ticket:      p.Ticket,
	})
}

func (s *RecordService) withLedgerTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.ledgerTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.ledgerTimeout)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
