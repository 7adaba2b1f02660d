// Package identity provides account identities for the marketplace.
//
// An Address is the 20-byte hash of an account's public key
// (RIPEMD-160 over SHA-256), printed as 40 hex characters. Every party
// in the system (creators, sellers, buyers, the operator and the
// marketplace escrow account itself) is identified by an Address.
package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // address hashing, not collision resistance
)

// AddressSize is the length of an account address in bytes.
const AddressSize = 20

// Address identifies an account.
type Address [AddressSize]byte

// String returns the address as lowercase hex.
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// IsZero reports whether the address is the all-zero value.
func (a Address) IsZero() bool {
	return a == Address{}
}

// AddressFromString parses a 40-character hex address.
func AddressFromString(s string) (Address, error) {
	var addr Address
	b, err := hex.DecodeString(s)
	if err != nil {
		return addr, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(b) != AddressSize {
		return addr, fmt.Errorf("%w: must be %d bytes, got %d", ErrInvalidAddress, AddressSize, len(b))
	}
	copy(addr[:], b)
	return addr, nil
}

// KeyPair holds an account's signing keys.
type KeyPair struct {
	PublicKey  ed25519.PublicKey
	PrivateKey ed25519.PrivateKey
}

// NewKeyPair generates a fresh account key pair.
func NewKeyPair() (*KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("identity: generate key: %w", err)
	}
	return &KeyPair{PublicKey: pub, PrivateKey: priv}, nil
}

// Address derives the account address from the public key.
func (kp *KeyPair) Address() Address {
	return AddressFromPubKey(kp.PublicKey)
}

// AddressFromPubKey hashes a public key into an account address.
func AddressFromPubKey(pub ed25519.PublicKey) Address {
	sha := sha256.Sum256(pub)
	h := ripemd160.New()
	h.Write(sha[:])

	var addr Address
	copy(addr[:], h.Sum(nil))
	return addr
}
