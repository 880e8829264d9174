package quorum

import (
	"crypto/ed25519"
)

// PubKey is a member's raw public key. The key protocol is opaque to the
// voting core; it only has to match the VerifyFunc in use.
type PubKey []byte

// Dictates how signatures from voters should be verified. This needs
// to match with the key protocol of the signer.
type VerifyFunc func(publicKey, message, signature []byte) bool

// Default to ed25519
func DefaultVerifyFunc() VerifyFunc {
	return func(publicKey, message, signature []byte) bool {
		if len(publicKey) != ed25519.PublicKeySize {
			return false
		}
		return ed25519.Verify(ed25519.PublicKey(publicKey), message, signature)
	}
}
