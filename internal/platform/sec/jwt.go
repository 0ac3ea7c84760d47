// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, Token Signing,
// CSRF binding) from the domain logic. It acts as an Infrastructure service
// injected into the Application layer via small interfaces.
package sec

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSessionSecretLength is the minimum byte length of the session signing
// secret. A shorter secret is a misconfiguration and is rejected at startup,
// never tolerated at runtime.
const MinSessionSecretLength = 32

// SessionClaims represents the payload embedded inside a signed session token.
//
// # Why custom claims?
//
// Besides identity (UserID, Username, Role), the claims carry TokenVersion —
// the monotonic fencing counter stored on the account row. A token is
// authoritative only while its embedded version equals the account's current
// version, which is what lets a newer login, a logout, or an admin
// deactivation invalidate every previously issued token at once.
type SessionClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the token payload small.
	UserID       int64  `json:"uid"`
	Username     string `json:"unm"`
	Role         string `json:"rol"`
	TokenVersion int    `json:"ver"`
}

// Identity is the authenticated principal's projection carried inside a
// session token and attached to the request context after verification.
type Identity struct {
	UserID       int64    `json:"id"`
	Username     string   `json:"username"`
	Role         UserRole `json:"role"`
	TokenVersion int      `json:"-"`
}

// SessionCodec signs and verifies session tokens using HS256 over a
// server-held symmetric secret.
type SessionCodec struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewSessionCodec creates a SessionCodec.
//
// The secret must be at least [MinSessionSecretLength] bytes. Returning an
// error here makes a weak secret a startup-time fatal condition.
func NewSessionCodec(secret string, issuer string, ttl time.Duration) (*SessionCodec, error) {
	if len(secret) < MinSessionSecretLength {
		return nil, fmt.Errorf("sec: session secret must be at least %d bytes, got %d", MinSessionSecretLength, len(secret))
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("sec: session token TTL must be positive")
	}

	return &SessionCodec{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}, nil
}

// Sign produces a signed session token embedding the identity and its
// token version, expiring after the codec's fixed TTL.
func (codec *SessionCodec) Sign(identity Identity) (string, error) {
	currentTime := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", identity.UserID),
			Issuer:    codec.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(codec.ttl)),
		},
		UserID:       identity.UserID,
		Username:     identity.Username,
		Role:         string(identity.Role),
		TokenVersion: identity.TokenVersion,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(codec.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign session token: %w", err)
	}

	return signedToken, nil
}

// Verify checks the signature and expiry of a session token string.
//
// A valid signature alone is NOT sufficient for authorization: callers must
// still fence the embedded TokenVersion against the account's current value.
func (codec *SessionCodec) Verify(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return codec.secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("sec: invalid session token: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("sec: invalid session token claims")
	}

	return claims, nil
}

// Identity reconstructs the authenticated principal from verified claims.
func (c *SessionClaims) Identity() Identity {
	return Identity{
		UserID:       c.UserID,
		Username:     c.Username,
		Role:         UserRole(c.Role),
		TokenVersion: c.TokenVersion,
	}
}
