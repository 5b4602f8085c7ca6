package contentstore

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dmitrijs2005/truthchain/internal/common"
	"github.com/dmitrijs2005/truthchain/internal/filex"
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// Local keeps files on disk under their CIDv1 (raw codec, sha2-256). It is
// the fallback when no pinning service is configured.
type Local struct {
	dir string
}

func NewLocal(dir string) (*Local, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: local store: %v", common.ErrUpstreamUnavailable, err)
	}
	return &Local{dir: abs}, nil
}

func (l *Local) Name() string { return "local" }

// Dir is the directory files are written to.
func (l *Local) Dir() string { return l.dir }

// ComputeCID returns the CIDv1 of data as the local store names it.
func ComputeCID(data []byte) (string, error) {
	pref := cid.Prefix{
		Version:  1,
		Codec:    cid.Raw,
		MhType:   multihash.SHA2_256,
		MhLength: -1,
	}
	c, err := pref.Sum(data)
	if err != nil {
		return "", err
	}
	return c.String(), nil
}

func (l *Local) Upload(_ context.Context, data []byte, _ string) (string, error) {
	id, err := ComputeCID(data)
	if err != nil {
		return "", fmt.Errorf("%w: local store: %v", common.ErrUpstreamUnavailable, err)
	}
	if err := filex.WriteFileAtomic(filepath.Join(l.dir, id), data, 0o640); err != nil {
		return "", fmt.Errorf("%w: local store: %v", common.ErrUpstreamUnavailable, err)
	}
	return id, nil
}

// Path returns the on-disk path for a CID. Strings that are not valid CIDs
// are rejected so they cannot address files outside the store.
func (l *Local) Path(id string) (string, error) {
	c, err := cid.Decode(id)
	if err != nil {
		return "", fmt.Errorf("%w: invalid cid", common.ErrorNotFound)
	}
	return filepath.Join(l.dir, c.String()), nil
}
