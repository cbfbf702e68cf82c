package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dropped95si/alpha-terminal/pkg/config"
)

func gate(ingest, review string) *Gatekeeper {
	return New(&config.Config{
		Ingest: config.IngestConfig{Secret: ingest},
		Review: config.ReviewConfig{Secret: review},
	})
}

func TestAuthorize_OpenWhenSecretUnset(t *testing.T) {
	g := gate("", "")
	r := httptest.NewRequest("POST", "/api/ingest", nil)

	assert.NoError(t, g.AuthorizeIngest(r))
	assert.NoError(t, g.AuthorizeReview(r))
}

func TestAuthorize_CustomHeader(t *testing.T) {
	g := gate("scan-secret", "review-secret")

	r := httptest.NewRequest("POST", "/api/ingest", nil)
	r.Header.Set(IngestHeader, "scan-secret")
	assert.NoError(t, g.AuthorizeIngest(r))

	r = httptest.NewRequest("POST", "/api/review/labels", nil)
	r.Header.Set(ReviewHeader, "review-secret")
	assert.NoError(t, g.AuthorizeReview(r))
}

func TestAuthorize_BearerHeader(t *testing.T) {
	g := gate("scan-secret", "")
	r := httptest.NewRequest("POST", "/api/ingest", nil)
	r.Header.Set("Authorization", "Bearer scan-secret")

	assert.NoError(t, g.AuthorizeIngest(r))
}

func TestAuthorize_MismatchAndAbsence(t *testing.T) {
	g := gate("scan-secret", "review-secret")

	r := httptest.NewRequest("POST", "/api/ingest", nil)
	assert.ErrorIs(t, g.AuthorizeIngest(r), ErrUnauthorized)

	r.Header.Set(IngestHeader, "wrong")
	assert.ErrorIs(t, g.AuthorizeIngest(r), ErrUnauthorized)
}

func TestAuthorize_SecretsNotInterchangeable(t *testing.T) {
	g := gate("scan-secret", "review-secret")

	r := httptest.NewRequest("POST", "/api/review/labels", nil)
	r.Header.Set(ReviewHeader, "scan-secret")
	assert.ErrorIs(t, g.AuthorizeReview(r), ErrUnauthorized)

	r = httptest.NewRequest("POST", "/api/ingest", nil)
	r.Header.Set(IngestHeader, "review-secret")
	assert.ErrorIs(t, g.AuthorizeIngest(r), ErrUnauthorized)
}
