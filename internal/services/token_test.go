package services_test

import (
	"testing"
	"time"

	"todos-app/backend/internal/apperr"
	"todos-app/backend/internal/services"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_IssueAndParse(t *testing.T) {
	svc := services.NewTokenService("secret", 24*time.Hour)
	userID := uuid.Must(uuid.NewV4())

	token, expiresAt, err := svc.Issue(userID)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), expiresAt, time.Minute)

	parsed, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestTokenService_RejectsExpired(t *testing.T) {
	svc := services.NewTokenService("secret", -time.Minute)
	userID := uuid.Must(uuid.NewV4())

	token, _, err := svc.Issue(userID)
	require.NoError(t, err)

	_, err = svc.Parse(token)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestTokenService_RejectsWrongSecret(t *testing.T) {
	issuer := services.NewTokenService("secret-a", time.Hour)
	verifier := services.NewTokenService("secret-b", time.Hour)

	token, _, err := issuer.Issue(uuid.Must(uuid.NewV4()))
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestTokenService_RejectsTampered(t *testing.T) {
	svc := services.NewTokenService("secret", time.Hour)

	token, _, err := svc.Issue(uuid.Must(uuid.NewV4()))
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = svc.Parse(tampered)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestTokenService_RejectsUnsignedAlgorithm(t *testing.T) {
	svc := services.NewTokenService("secret", time.Hour)

	claims := jwt.RegisteredClaims{
		Subject:   uuid.Must(uuid.NewV4()).String(),
		Issuer:    "todos-app",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Parse(token)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestTokenService_RejectsWrongIssuer(t *testing.T) {
	svc := services.NewTokenService("secret", time.Hour)

	claims := jwt.RegisteredClaims{
		Subject:   uuid.Must(uuid.NewV4()).String(),
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = svc.Parse(token)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}
