// Package peerid derives and encodes the opaque node identity used to key
// vector clocks and tag records.
package peerid

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// ID is a stable, hashable, printable node identity derived from an
// Ed25519 public key. Its textual form (String) is the base58 encoding
// used on the wire wherever a peer identity appears in a VectorClock.
type ID struct {
	text string
}

// FromPublicKey derives an ID from an Ed25519 public key by hashing it
// with SHA-256 and base58-encoding the digest, mirroring the way
// libp2p peer IDs are derived from key material.
func FromPublicKey(pub ed25519.PublicKey) ID {
	sum := sha256.Sum256(pub)
	return ID{text: base58.Encode(sum[:])}
}

// Parse reconstructs an ID from its base58 textual form, as received
// over the wire in a VectorClock's peer keys. It does not validate
// that the text corresponds to a real key; peer identities are opaque.
func Parse(text string) (ID, error) {
	if text == "" {
		return ID{}, errors.New("peerid: empty identity text")
	}
	if _, err := base58.Decode(text); err != nil {
		return ID{}, fmt.Errorf("peerid: invalid base58 identity %q: %w", text, err)
	}
	return ID{text: text}, nil
}

// String returns the stable base58 textual form.
func (id ID) String() string { return id.text }

// IsZero reports whether id is the zero value (no identity assigned).
func (id ID) IsZero() bool { return id.text == "" }

// Keypair bundles the Ed25519 keys used to derive this node's identity.
type Keypair struct {
	Public  ed25519.PublicKey
	Private ed25519.PrivateKey
}

// Generate creates a fresh Ed25519 keypair.
func Generate() (Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return Keypair{}, fmt.Errorf("peerid: generate keypair: %w", err)
	}
	return Keypair{Public: pub, Private: priv}, nil
}

// EncodeBase64 renders the private key as the base64 string stored in
// node.private_key.
func (k Keypair) EncodeBase64() string {
	return base64.StdEncoding.EncodeToString(k.Private)
}

// DecodeKeypair parses a base64-encoded Ed25519 private key, the format
// used by node.private_key, and reconstructs the full keypair.
func DecodeKeypair(encoded string) (Keypair, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Keypair{}, fmt.Errorf("peerid: decode private key: %w", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return Keypair{}, fmt.Errorf("peerid: private key has wrong size %d, want %d", len(raw), ed25519.PrivateKeySize)
	}
	priv := ed25519.PrivateKey(raw)
	pub, ok := priv.Public().(ed25519.PublicKey)
	if !ok {
		return Keypair{}, errors.New("peerid: unable to derive public key")
	}
	return Keypair{Public: pub, Private: priv}, nil
}
