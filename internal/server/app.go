// Package server initializes and runs the TruthChain server: it selects the
// record repository, content store and ledger from configuration, wires the
// record service and serves it over HTTP and gRPC until it is signalled to
// stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/truthchain/internal/common"
	"github.com/dmitrijs2005/truthchain/internal/logging"
	"github.com/dmitrijs2005/truthchain/internal/server/config"
	"github.com/dmitrijs2005/truthchain/internal/server/contentstore"
	"github.com/dmitrijs2005/truthchain/internal/server/httpapi"
	"github.com/dmitrijs2005/truthchain/internal/server/ledger"
	"github.com/dmitrijs2005/truthchain/internal/server/repositories/records"
	"github.com/dmitrijs2005/truthchain/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/truthchain/internal/server/services"

	gs "github.com/dmitrijs2005/truthchain/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	store   contentstore.Store
	ledger  ledger.Ledger
	records *services.RecordService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.New(os.Stdout, c.LogLevel)

	if err := c.Validate(); err != nil {
		return nil, err
	}

	app := &App{config: c, logger: logger}

	repo, err := app.initRepository(ctx)
	if err != nil {
		return nil, err
	}

	app.store, err = contentstore.New(ctx, c, logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("content store init error: %w", err)
	}

	app.ledger, err = app.initLedger(ctx)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("ledger init error: %w", err)
	}

	app.records = services.NewRecordService(repo, app.store, app.ledger,
		services.NewListingCache(c.ListingCacheTTL), c, logger)

	return app, nil
}

func (app *App) initRepository(ctx context.Context) (records.Repository, error) {
	if app.config.DatabaseDSN == "" {
		app.logger.Warn(ctx, "no database configured; records are kept in memory and lost on restart")
		return records.NewMemoryRepository(), nil
	}

	db, err := repomanager.Open(ctx, app.config.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app.db = db

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		app.Close()
		return nil, fmt.Errorf("db migrations error: %w", err)
	}

	return rm.Records(db), nil
}

func (app *App) initLedger(ctx context.Context) (ledger.Ledger, error) {
	if app.config.VerificationMode != common.ModeLive {
		app.logger.Warn(ctx, "offline-test mode: submissions are not cross-checked against the ledger")
		return ledger.NewOffline(app.config.ContractAddress), nil
	}

	return ledger.NewEVM(ctx, ledger.EVMConfig{
		RPCURL:          app.config.LedgerRPCURL,
		ContractAddress: app.config.ContractAddress,
		ChainID:         app.config.ChainID,
		SignerKey:       app.config.LedgerSignerKey,
	}, app.logger)
}

// Close releases the database and ledger connections.
func (app *App) Close() {
	if e, ok := app.ledger.(*ledger.EVM); ok {
		e.Close()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(context.Background(), "db close failed", "error", err)
		}
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.records)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	var files httpapi.FileLocator
	if local, ok := app.store.(*contentstore.Local); ok {
		files = local
	}

	var ready httpapi.ReadinessChecker
	if app.db != nil {
		ready = app.db
	}

	h := httpapi.NewHandler(app.records, ready, files, app.config.MaxUploadBytes, app.logger)
	s := httpapi.New(app.config.EndpointAddrHTTP, h, app.logger, app.config.ShutdownTimeout)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves HTTP and gRPC until ctx is done, a signal arrives or either
// server fails.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "mode", app.config.VerificationMode, "store", app.store.Name())

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.Close()
	app.logger.Info(context.Background(), "App stopped")
}
