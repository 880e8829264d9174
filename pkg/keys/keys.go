package keys

import (
	"crypto/ed25519"
	"fmt"

	"github.com/quenero/masternode/pkg/quorum"
)

// Keys holds a local masternode's key material. Votes are signed with the
// private key; the public key is what appears in resolved quorums.
type Keys struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
}

// Generate creates a fresh random key pair. Primarily useful for tests
// and local networks.
func Generate() *Keys {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		panic(err)
	}
	return &Keys{
		privateKey: priv,
		publicKey:  pub,
	}
}

// FromPrivateKey restores key material from a raw ed25519 private key.
func FromPrivateKey(priv []byte) (*Keys, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid private key length %d", len(priv))
	}
	key := ed25519.PrivateKey(priv)
	return &Keys{
		privateKey: key,
		publicKey:  key.Public().(ed25519.PublicKey),
	}, nil
}

// FromSeed restores key material from a 32 byte seed.
func FromSeed(seed []byte) (*Keys, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("invalid seed length %d", len(seed))
	}
	key := ed25519.NewKeyFromSeed(seed)
	return &Keys{
		privateKey: key,
		publicKey:  key.Public().(ed25519.PublicKey),
	}, nil
}

func (k *Keys) Sign(msg []byte) []byte {
	return ed25519.Sign(k.privateKey, msg)
}

func (k *Keys) PublicKey() quorum.PubKey {
	return quorum.PubKey(k.publicKey)
}
