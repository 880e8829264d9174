package keys_test

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quenero/masternode/pkg/keys"
	"github.com/quenero/masternode/pkg/quorum"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	k := keys.Generate()
	msg := []byte("decision content")
	sig := k.Sign(msg)

	verify := quorum.DefaultVerifyFunc()
	assert.True(t, verify(k.PublicKey(), msg, sig))
	assert.False(t, verify(k.PublicKey(), []byte("other content"), sig))
}

func TestFromSeed(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	seed[0] = 42

	k1, err := keys.FromSeed(seed)
	require.NoError(t, err)
	k2, err := keys.FromSeed(seed)
	require.NoError(t, err)
	assert.Equal(t, k1.PublicKey(), k2.PublicKey())

	_, err = keys.FromSeed(seed[:16])
	assert.Error(t, err)
}

func TestFromPrivateKey(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	k, err := keys.FromPrivateKey(priv)
	require.NoError(t, err)
	assert.EqualValues(t, priv.Public().(ed25519.PublicKey), []byte(k.PublicKey()))

	_, err = keys.FromPrivateKey(priv[:10])
	assert.Error(t, err)
}
