package contentstore

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/truthchain/internal/netx"
)

// Web3Storage uploads files through the web3.storage HTTP API.
type Web3Storage struct {
	client   *http.Client
	endpoint string
	token    string
}

func NewWeb3Storage(client *http.Client, endpoint, token string) *Web3Storage {
	return &Web3Storage{client: client, endpoint: strings.TrimRight(endpoint, "/"), token: token}
}

func (w *Web3Storage) Name() string { return "web3storage" }

func (w *Web3Storage) Upload(ctx context.Context, data []byte, filename string) (string, error) {
	body, err := netx.UploadMultipart(ctx, w.client, w.endpoint+"/upload", w.token, filename, data)
	if err != nil {
		return "", upstream(w.Name(), err, "check WEB3_STORAGE_TOKEN")
	}

	var resp struct {
		CID string `json:"cid"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", upstream(w.Name(), err, "unexpected response")
	}
	return checkCID(w.Name(), resp.CID)
}
