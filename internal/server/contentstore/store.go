// Package contentstore pins uploaded files to an IPFS-compatible store and
// returns their content identifier (CID).
package contentstore

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/truthchain/internal/common"
	"github.com/dmitrijs2005/truthchain/internal/logging"
	"github.com/dmitrijs2005/truthchain/internal/server/config"
	"github.com/ipfs/go-cid"
)

// Store uploads a file and returns its CID. Failures wrap
// common.ErrUpstreamUnavailable.
type Store interface {
	Upload(ctx context.Context, data []byte, filename string) (string, error)
	Name() string
}

const uploadTimeout = 60 * time.Second

// New builds the backend selected by cfg (see config.ResolveContentStore).
func New(ctx context.Context, cfg *config.Config, log logging.Logger) (Store, error) {
	name := cfg.ResolveContentStore()
	log.Info(ctx, "content store selected", "store", name)

	httpClient := &http.Client{Timeout: uploadTimeout}

	switch name {
	case config.StorePinata:
		return NewPinata(httpClient, cfg.PinataEndpoint, cfg.PinataJWT), nil
	case config.StoreWeb3Storage:
		return NewWeb3Storage(httpClient, cfg.Web3StorageEndpoint, cfg.Web3StorageToken), nil
	case config.StoreS3:
		return NewS3(ctx, cfg)
	default:
		if cfg.VerificationMode == common.ModeLive {
			log.Warn(ctx, "no IPFS credentials configured; files are kept on local disk and are not pinned",
				"dir", cfg.UploadsDir)
		}
		return NewLocal(cfg.UploadsDir)
	}
}

// checkCID validates a CID returned by a remote service and returns its
// canonical string form.
func checkCID(store, raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("%w: %s returned no CID", common.ErrUpstreamUnavailable, store)
	}
	c, err := cid.Decode(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %s returned invalid CID %q: %v", common.ErrUpstreamUnavailable, store, raw, err)
	}
	return c.String(), nil
}

func upstream(store string, err error, hint string) error {
	return fmt.Errorf("%w: %s upload failed: %v (%s)", common.ErrUpstreamUnavailable, store, err, hint)
}
