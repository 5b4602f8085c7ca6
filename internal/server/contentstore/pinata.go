package contentstore

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/truthchain/internal/netx"
)

// Pinata pins files through the Pinata pinning API.
type Pinata struct {
	client   *http.Client
	endpoint string
	jwt      string
}

func NewPinata(client *http.Client, endpoint, jwt string) *Pinata {
	return &Pinata{client: client, endpoint: strings.TrimRight(endpoint, "/"), jwt: jwt}
}

func (p *Pinata) Name() string { return "pinata" }

type pinataResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

func (p *Pinata) Upload(ctx context.Context, data []byte, filename string) (string, error) {
	body, err := netx.UploadMultipart(ctx, p.client, p.endpoint+"/pinning/pinFileToIPFS", p.jwt, filename, data)
	if err != nil {
		return "", upstream(p.Name(), err, "check PINATA_JWT")
	}

	var resp pinataResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", upstream(p.Name(), err, "unexpected response")
	}
	return checkCID(p.Name(), resp.IpfsHash)
}
