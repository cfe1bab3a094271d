package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQRTokenRoundTrip(t *testing.T) {
	enc := NewQRTokenEncoder("gate-secret")

	token, err := enc.Encode("6f1c2a44-9f0e-4f6b-8f83-0f0f4f9d2d31", 42, 7)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	payload, err := enc.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "6f1c2a44-9f0e-4f6b-8f83-0f0f4f9d2d31", payload.ReservationID)
	assert.Equal(t, uint64(42), payload.UserID)
	assert.Equal(t, uint64(7), payload.EventID)
}

func TestQRTokenRejectsTampering(t *testing.T) {
	enc := NewQRTokenEncoder("gate-secret")

	token, err := enc.Encode("6f1c2a44-9f0e-4f6b-8f83-0f0f4f9d2d31", 42, 7)
	require.NoError(t, err)

	// Flip a character in the payload segment.
	mangled := []byte(token)
	mid := len(mangled) / 2
	if mangled[mid] == 'a' {
		mangled[mid] = 'b'
	} else {
		mangled[mid] = 'a'
	}
	_, err = enc.Decode(string(mangled))
	assert.ErrorIs(t, err, ErrBadCheckInToken)
}

func TestQRTokenRejectsWrongSecret(t *testing.T) {
	enc := NewQRTokenEncoder("gate-secret")
	other := NewQRTokenEncoder("different-secret")

	token, err := enc.Encode("6f1c2a44-9f0e-4f6b-8f83-0f0f4f9d2d31", 42, 7)
	require.NoError(t, err)

	_, err = other.Decode(token)
	assert.ErrorIs(t, err, ErrBadCheckInToken)
}

func TestQRTokenRejectsGarbage(t *testing.T) {
	enc := NewQRTokenEncoder("gate-secret")

	_, err := enc.Decode("not-a-token")
	assert.ErrorIs(t, err, ErrBadCheckInToken)
}
