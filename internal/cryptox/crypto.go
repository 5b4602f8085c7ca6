// Package cryptox holds the Ethereum-flavoured hashing and key helpers used
// by the ledger adapter and the command line client.
package cryptox

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/sha3"
)

// ErrInvalidKey is returned for malformed private keys.
var ErrInvalidKey = errors.New("invalid private key")

// Keccak256 returns the legacy Keccak-256 digest of the concatenated inputs
// (the variant Ethereum uses, not NIST SHA3-256).
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, b := range data {
		h.Write(b)
	}
	return h.Sum(nil)
}

// EventTopic returns the topic-0 value of an event signature such as
// "RecordStored(bytes32,string,address,uint256)".
func EventTopic(signature string) [32]byte {
	var out [32]byte
	copy(out[:], Keccak256([]byte(signature)))
	return out
}

// MethodID returns the 4-byte selector of a method signature.
func MethodID(signature string) []byte {
	return Keccak256([]byte(signature))[:4]
}

// ParsePrivateKey decodes a hex secp256k1 key, with or without 0x prefix.
func ParsePrivateKey(s string) (*ecdsa.PrivateKey, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) != 64 {
		return nil, fmt.Errorf("%w: want 64 hex characters, got %d", ErrInvalidKey, len(s))
	}
	if _, err := hex.DecodeString(s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	key, err := crypto.HexToECDSA(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return key, nil
}

// LoadPrivateKey reads a hex key from a file.
func LoadPrivateKey(path string) (*ecdsa.PrivateKey, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	return ParsePrivateKey(string(b))
}

// Address returns the checksummed address controlled by key.
func Address(key *ecdsa.PrivateKey) string {
	return crypto.PubkeyToAddress(key.PublicKey).Hex()
}
