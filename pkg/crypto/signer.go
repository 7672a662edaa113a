// Package crypto implements account key handling for the Laminar
// client: ed25519 signing keys and the account address scheme derived
// from them.
package crypto

import (
	"crypto/rand"
	"fmt"

	"github.com/cloudflare/circl/sign/ed25519"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/sha3"

	"github.com/laminarhq/laminar-go/pkg/types"
)

// ed25519Scheme is the authentication-scheme suffix appended to the
// public key before hashing into an account address.
const ed25519Scheme = 0x00

// Signer holds an ed25519 key pair and the account address derived
// from it.
type Signer struct {
	priv    ed25519.PrivateKey
	pub     ed25519.PublicKey
	address types.Address
}

// GenerateKey creates a new random ed25519 key pair.
func GenerateKey() (*Signer, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return &Signer{priv: priv, pub: pub, address: DeriveAddress(pub)}, nil
}

// FromPrivateKeyHex creates a Signer from a hex-encoded private key.
// Accepts a 32-byte seed or a 64-byte expanded key, with or without
// the 0x prefix.
func FromPrivateKeyHex(hexKey string) (*Signer, error) {
	if len(hexKey) < 2 || hexKey[:2] != "0x" {
		hexKey = "0x" + hexKey
	}
	raw, err := hexutil.Decode(hexKey)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	var priv ed25519.PrivateKey
	switch len(raw) {
	case ed25519.SeedSize:
		priv = ed25519.NewKeyFromSeed(raw)
	case ed25519.PrivateKeySize:
		priv = ed25519.PrivateKey(raw)
	default:
		return nil, fmt.Errorf("parse private key: want %d or %d bytes, got %d",
			ed25519.SeedSize, ed25519.PrivateKeySize, len(raw))
	}

	pub := priv.Public().(ed25519.PublicKey)
	return &Signer{priv: priv, pub: pub, address: DeriveAddress(pub)}, nil
}

// DeriveAddress computes the account address for a public key:
// sha3-256(pubkey || scheme byte).
func DeriveAddress(pub ed25519.PublicKey) types.Address {
	preimage := make([]byte, 0, len(pub)+1)
	preimage = append(preimage, pub...)
	preimage = append(preimage, ed25519Scheme)
	return types.Address(sha3.Sum256(preimage))
}

// Address returns the account address derived from the public key.
func (s *Signer) Address() types.Address { return s.address }

// PublicKeyHex returns the 32-byte public key as a 0x hex string.
func (s *Signer) PublicKeyHex() string { return hexutil.Encode(s.pub) }

// PrivateKeyHex returns the 32-byte seed as a 0x hex string. Keep it
// secret; never log it.
func (s *Signer) PrivateKeyHex() string { return hexutil.Encode(s.priv.Seed()) }

// Sign signs an arbitrary message. ed25519 signs the message itself,
// not a prehash.
func (s *Signer) Sign(message []byte) []byte {
	return ed25519.Sign(s.priv, message)
}

// Verify reports whether signature is a valid signature of message
// under the given public key.
func Verify(pub ed25519.PublicKey, message, signature []byte) bool {
	if len(pub) != ed25519.PublicKeySize || len(signature) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(pub, message, signature)
}

// VerifyHex is Verify with hex-encoded public key and signature, the
// form both take on the wire.
func VerifyHex(pubHex string, message []byte, sigHex string) bool {
	pub, err := hexutil.Decode(pubHex)
	if err != nil {
		return false
	}
	sig, err := hexutil.Decode(sigHex)
	if err != nil {
		return false
	}
	return Verify(pub, message, sig)
}

// TransactionSigningMessage prepends the domain-separation salt to a
// raw transaction encoding. Signatures are always made over this, so a
// signed transaction cannot be replayed as any other message kind.
func TransactionSigningMessage(rawTxn []byte) []byte {
	salt := sha3.Sum256([]byte("LAMINAR::RawTransaction"))
	msg := make([]byte, 0, len(salt)+len(rawTxn))
	msg = append(msg, salt[:]...)
	msg = append(msg, rawTxn...)
	return msg
}
