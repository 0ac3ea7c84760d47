// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

package sec_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanrihq/kanri/internal/platform/sec"
)

/*
TestCSRF_RoundTrip verifies that a token derived from a secret verifies
against that secret.
*/
func TestCSRF_RoundTrip(t *testing.T) {
	secret, err := sec.GenerateCSRFSecret()
	require.NoError(t, err)

	token, err := sec.GenerateCSRFToken(secret)
	require.NoError(t, err)

	assert.True(t, sec.VerifyCSRFToken(token, secret))
}

/*
TestCSRF_TokensAreUnique verifies that every token draws a fresh random
component, so a token is never reused verbatim.
*/
func TestCSRF_TokensAreUnique(t *testing.T) {
	secret, err := sec.GenerateCSRFSecret()
	require.NoError(t, err)

	first, err := sec.GenerateCSRFToken(secret)
	require.NoError(t, err)
	second, err := sec.GenerateCSRFToken(secret)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	// Both still verify: multiple live tokens per secret are allowed.
	assert.True(t, sec.VerifyCSRFToken(first, secret))
	assert.True(t, sec.VerifyCSRFToken(second, secret))
}

/*
TestCSRF_WrongSecret verifies that a token minted under one secret never
verifies against another.
*/
func TestCSRF_WrongSecret(t *testing.T) {
	secretA, err := sec.GenerateCSRFSecret()
	require.NoError(t, err)
	secretB, err := sec.GenerateCSRFSecret()
	require.NoError(t, err)

	token, err := sec.GenerateCSRFToken(secretA)
	require.NoError(t, err)

	assert.False(t, sec.VerifyCSRFToken(token, secretB))
}

/*
TestCSRF_TamperedToken verifies that flipping a single character in either
segment invalidates the token.
*/
func TestCSRF_TamperedToken(t *testing.T) {
	secret, err := sec.GenerateCSRFSecret()
	require.NoError(t, err)

	token, err := sec.GenerateCSRFToken(secret)
	require.NoError(t, err)

	// Flip one hex character in the MAC segment.
	tampered := []byte(token)
	last := len(tampered) - 1
	if tampered[last] == 'a' {
		tampered[last] = 'b'
	} else {
		tampered[last] = 'a'
	}

	assert.False(t, sec.VerifyCSRFToken(string(tampered), secret))

	// Flip one character in the random segment.
	tampered = []byte(token)
	if tampered[0] == 'a' {
		tampered[0] = 'b'
	} else {
		tampered[0] = 'a'
	}

	assert.False(t, sec.VerifyCSRFToken(string(tampered), secret))
}

/*
TestCSRF_Malformed verifies that structurally invalid inputs fail closed
without panicking.
*/
func TestCSRF_Malformed(t *testing.T) {
	secret, err := sec.GenerateCSRFSecret()
	require.NoError(t, err)

	token, _ := sec.GenerateCSRFToken(secret)
	random, mac, _ := strings.Cut(token, ".")

	cases := map[string]string{
		"empty":           "",
		"no separator":    random + mac,
		"missing random":  "." + mac,
		"missing mac":     random + ".",
		"only separator":  ".",
		"extra separator": random + ".." + mac,
	}

	for name, input := range cases {
		assert.False(t, sec.VerifyCSRFToken(input, secret), name)
	}

	// Empty secret always fails regardless of token shape.
	assert.False(t, sec.VerifyCSRFToken(token, ""))
}
