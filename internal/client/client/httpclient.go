package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/truthchain/internal/common"
	"github.com/dmitrijs2005/truthchain/internal/netx"
	"github.com/dmitrijs2005/truthchain/internal/server/models"
)

// maxResponse bounds a decoded response body.
const maxResponse = 32 << 20

type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string, hc *http.Client) *HTTPClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

func (c *HTTPClient) Close() error { return nil }

func (c *HTTPClient) ListRecords(ctx context.Context) ([]*models.Record, error) {
	var out []*models.Record
	if err := c.do(ctx, http.MethodGet, "/api/records", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) Status(ctx context.Context) (*ServerStatus, error) {
	var out ServerStatus
	if err := c.do(ctx, http.MethodGet, "/api/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ContractAddress returns the server's contract, or "" when none is deployed.
func (c *HTTPClient) ContractAddress(ctx context.Context) (string, error) {
	var out struct {
		Address *string `json:"address"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/contract-address", nil, &out); err != nil {
		return "", err
	}
	if out.Address == nil {
		return "", nil
	}
	return *out.Address, nil
}

// PrepareUpload pins the file and returns the server computed fingerprint.
func (c *HTTPClient) PrepareUpload(ctx context.Context, text, fileName, fileType string, data []byte) (*models.PreparedUpload, error) {
	body, err := netx.UploadForm(ctx, c.http, c.baseURL+"/api/prepare-upload", "", netx.Form{
		Fields:   map[string]string{"text": text},
		FileName: fileName,
		FileType: fileType,
		Data:     data,
	})
	if err != nil {
		return nil, c.mapError(err)
	}

	var out models.PreparedUpload
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode prepare-upload response: %w", err)
	}
	return &out, nil
}

// SaveRecord finalizes a submission.
func (c *HTTPClient) SaveRecord(ctx context.Context, sub models.Submission) (*models.Record, error) {
	var out struct {
		Success bool           `json:"success"`
		Record  *models.Record `json:"record"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/save-record", sub, &out); err != nil {
		return nil, err
	}
	if out.Record == nil {
		return nil, fmt.Errorf("%w: save-record returned no record", common.ErrorInternal)
	}
	return out.Record, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.mapError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponse))
	if err != nil {
		return c.mapError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) mapError(err error) error {
	var se *netx.StatusError
	if errors.As(err, &se) {
		return decodeAPIError(se.StatusCode, se.Body)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func decodeAPIError(status int, body []byte) error {
	var e struct {
		Kind    common.Kind `json:"kind"`
		Message string      `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err != nil || e.Kind == "" {
		return &APIError{StatusCode: status, Kind: common.KindInternal, Message: strings.TrimSpace(string(body))}
	}
	return &APIError{StatusCode: status, Kind: e.Kind, Message: e.Message}
}
