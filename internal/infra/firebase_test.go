package infra

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticVerifier(t *testing.T) {
	v := StaticVerifier{Token: "dev-secret", UID: "dev", Role: "admin"}

	tok, err := v.VerifyIDToken(context.Background(), "dev-secret")
	require.NoError(t, err)
	assert.Equal(t, "dev", tok.UID)
	assert.Equal(t, "admin", tok.Claims["role"])

	_, err = v.VerifyIDToken(context.Background(), "guess")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = StaticVerifier{}.VerifyIDToken(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
