// Package auth issues and verifies intake tickets: short-lived HS256 JWTs
// that bind the output of prepare-upload to the input of save-record, so a
// client cannot finalize a fingerprint the server did not compute.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/truthchain/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Ticket is the intake data a ticket vouches for.
type Ticket struct {
	Fingerprint string `json:"fp"`
	ContentID   string `json:"cid"`
	Timestamp   string `json:"ts"`
	FileName    string `json:"fn,omitempty"`
	FileType    string `json:"ft,omitempty"`
}

// Claims is the JWT body of a ticket.
type Claims struct {
	jwt.RegisteredClaims
	Ticket
}

const issuer = "truthchain"

// GenerateTicket signs t with secretKey; the ticket expires after validity.
func GenerateTicket(t Ticket, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		Ticket: t,
	})

	return token.SignedString(secretKey)
}

// ParseTicket verifies the signature, issuer and expiry of tokenString.
// All failures wrap common.ErrInvalidTicket.
func ParseTicket(tokenString string, secretKey []byte) (*Ticket, error) {
	return parseTicket(tokenString, secretKey, true)
}

// ParseTicketAllowExpired verifies the signature and issuer but accepts a
// ticket past its expiry. Callers must establish freshness some other way,
// such as a matching ledger event.
func ParseTicketAllowExpired(tokenString string, secretKey []byte) (*Ticket, error) {
	return parseTicket(tokenString, secretKey, false)
}

func parseTicket(tokenString string, secretKey []byte, checkExpiry bool) (*Ticket, error) {
	claims := &Claims{}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if !checkExpiry {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: expired, prepare the upload again", common.ErrInvalidTicket)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidTicket, err)
	}

	if !token.Valid {
		return nil, common.ErrInvalidTicket
	}
	if claims.Issuer != issuer {
		return nil, fmt.Errorf("%w: unexpected issuer %q", common.ErrInvalidTicket, claims.Issuer)
	}

	return &claims.Ticket, nil
}

// Matches reports whether the ticket vouches for the given fingerprint,
// content identifier and timestamp.
func (t *Ticket) Matches(fp, cid, ts string) bool {
	return t.Fingerprint == fp && t.ContentID == cid && t.Timestamp == ts
}
