package server

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/truthchain/internal/common"
	"github.com/dmitrijs2005/truthchain/internal/server/config"
	"github.com/dmitrijs2005/truthchain/internal/server/contentstore"
	"github.com/dmitrijs2005/truthchain/internal/server/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func offlineConfig(t *testing.T) *config.Config {
	var c config.Config
	c.LoadDefaults()
	c.VerificationMode = common.ModeOfflineTest
	c.DatabaseDSN = ""
	c.ContentStore = config.StoreLocal
	c.UploadsDir = t.TempDir()
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.LogLevel = "error"
	return &c
}

func TestNewApp_Offline(t *testing.T) {
	app, err := NewApp(context.Background(), offlineConfig(t))
	require.NoError(t, err)

	assert.Nil(t, app.db)
	assert.IsType(t, &contentstore.Local{}, app.store)
	assert.IsType(t, &ledger.Offline{}, app.ledger)
	assert.Equal(t, common.ModeOfflineTest, app.records.Mode())
	assert.False(t, app.records.RelayEnabled())
}

func TestNewApp_RejectsInvalidConfig(t *testing.T) {
	c := offlineConfig(t)
	c.VerificationMode = common.ModeLive
	c.ContractAddress = ""

	_, err := NewApp(context.Background(), c)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUpstreamUnavailable)
	assert.Contains(t, err.Error(), "CONTRACT_ADDRESS")
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), offlineConfig(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after context cancel")
	}
}
