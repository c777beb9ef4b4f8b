package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const TokenCookie = "__care_shift_token"

// AuthClaims is issued by the identity provider in front of this service.
type AuthClaims struct {
	Installation string `json:"installation"`
	Role         string `json:"role"`
	jwt.RegisteredClaims
}

// Identity is who is calling and for which installation.
type Identity struct {
	ActorID        uuid.UUID
	InstallationID uuid.UUID
	Role           domain.Role
}

// IssueToken signs an HS256 token for the identity.
func IssueToken(secret string, id Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		Installation: id.InstallationID.String(),
		Role:         string(id.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   id.ActorID.String(),
		},
	})
	return token.SignedString([]byte(secret))
}

func parseToken(secret, tokenString string) (Identity, error) {
	claims := &AuthClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Identity{}, err
	}

	actorID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid subject: %w", err)
	}
	installationID, err := uuid.Parse(claims.Installation)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid installation: %w", err)
	}

	return Identity{
		ActorID:        actorID,
		InstallationID: installationID,
		Role:           domain.Role(claims.Role),
	}, nil
}

var errNoToken = errors.New("no token")

// tokenFromRequest prefers the cookie and falls back to a bearer header.
func tokenFromRequest(r *http.Request) (string, error) {
	if cookie, err := r.Cookie(TokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok && token != "" {
		return token, nil
	}
	return "", errNoToken
}

func identity(ctx context.Context) Identity {
	return ctx.Value(IdentityCtx).(Identity)
}
