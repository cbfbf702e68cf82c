// Package auth validates the shared-secret tokens that gate the
// mutating and review surfaces. Two independent secrets exist — ingest
// and review — and they are never interchangeable.
package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/dropped95si/alpha-terminal/pkg/config"
)

// Header names the scanner and the review UI send their tokens in.
// A bearer Authorization header is accepted as an alternative.
const (
	IngestHeader = "X-Ingest-Secret"
	ReviewHeader = "X-Review-Secret"
)

// ErrUnauthorized is returned on a missing or mismatched token.
var ErrUnauthorized = errors.New("auth: unauthorized")

// Gatekeeper holds the configured secrets. An empty secret leaves the
// corresponding surface open — development mode, documented behavior.
type Gatekeeper struct {
	ingestSecret string
	reviewSecret string
}

// New builds a gatekeeper from config.
func New(cfg *config.Config) *Gatekeeper {
	return &Gatekeeper{
		ingestSecret: cfg.Ingest.Secret,
		reviewSecret: cfg.Review.Secret,
	}
}

// AuthorizeIngest checks the scanner-ingest secret.
func (g *Gatekeeper) AuthorizeIngest(r *http.Request) error {
	return authorize(r, g.ingestSecret, IngestHeader)
}

// AuthorizeReview checks the review-labeling secret.
func (g *Gatekeeper) AuthorizeReview(r *http.Request) error {
	return authorize(r, g.reviewSecret, ReviewHeader)
}

func authorize(r *http.Request, secret, header string) error {
	if secret == "" {
		return nil
	}

	token := r.Header.Get(header)
	if token == "" {
		token = bearerToken(r.Header.Get("Authorization"))
	}
	if token == "" {
		return ErrUnauthorized
	}

	if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

func bearerToken(authHeader string) string {
	const prefix = "Bearer "
	if strings.HasPrefix(authHeader, prefix) {
		return strings.TrimSpace(authHeader[len(prefix):])
	}
	return ""
}
