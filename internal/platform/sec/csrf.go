// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

package sec

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// # CSRF Double-Submit Codec
//
// The server never persists CSRF tokens. A per-browser secret lives in an
// HTTP-only cookie, and a derived token of the form "<random>.<hmac>" must be
// echoed back in a request header. Verification is an O(1) HMAC computation
// against the presented secret — there is no token store to clean up or leak.

const csrfRandomLength = 32

// GenerateCSRFSecret returns a fresh high-entropy secret (32 bytes, hex).
func GenerateCSRFSecret() (string, error) {
	return randomHex(csrfRandomLength)
}

// GenerateCSRFToken derives a token from the given secret.
//
// The token is "<random>.<hmac>", where hmac = HMAC-SHA256(key=secret,
// message=random). A fresh random component is drawn on every call.
func GenerateCSRFToken(secret string) (string, error) {
	random, err := randomHex(csrfRandomLength)
	if err != nil {
		return "", err
	}
	return random + "." + computeCSRFMAC(secret, random), nil
}

// VerifyCSRFToken checks a presented token against the secret.
//
// It fails closed: a malformed token (missing either segment) or a MAC
// mismatch returns false, never an error or a panic. The comparison is
// constant-time.
func VerifyCSRFToken(token, secret string) bool {
	if token == "" || secret == "" {
		return false
	}

	random, presentedMAC, found := strings.Cut(token, ".")
	if !found || random == "" || presentedMAC == "" {
		return false
	}

	expected := computeCSRFMAC(secret, random)
	return hmac.Equal([]byte(expected), []byte(presentedMAC))
}

// computeCSRFMAC returns hex(HMAC-SHA256(key=secret, message=random)).
func computeCSRFMAC(secret, random string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(random))
	return hex.EncodeToString(mac.Sum(nil))
}

// randomHex returns n cryptographically random bytes, hex-encoded.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("sec: failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
