package crypto

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

func TestSignVerify(t *testing.T) {
	s, err := GenerateKey()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	msg := []byte("place_limit_order 0x42 100 10")
	sig := s.Sign(msg)

	if !VerifyHex(s.PublicKeyHex(), msg, hexutil.Encode(sig)) {
		t.Error("valid signature rejected")
	}

	tampered := append([]byte(nil), msg...)
	tampered[0] ^= 0xff
	if VerifyHex(s.PublicKeyHex(), tampered, hexutil.Encode(sig)) {
		t.Error("signature over different message accepted")
	}

	badSig := append([]byte(nil), sig...)
	badSig[0] ^= 0xff
	if Verify([]byte(nil), msg, sig) {
		t.Error("malformed public key accepted")
	}
	if VerifyHex(s.PublicKeyHex(), msg, hexutil.Encode(badSig)) {
		t.Error("corrupted signature accepted")
	}
	if VerifyHex("not-hex", msg, hexutil.Encode(sig)) {
		t.Error("bad hex public key accepted")
	}
}

func TestFromPrivateKeyHex(t *testing.T) {
	s, err := GenerateKey()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	t.Run("seed round trip", func(t *testing.T) {
		loaded, err := FromPrivateKeyHex(s.PrivateKeyHex())
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if loaded.Address() != s.Address() {
			t.Errorf("address changed across reload: %s vs %s", loaded.Address().ShortHex(), s.Address().ShortHex())
		}
		if loaded.PublicKeyHex() != s.PublicKeyHex() {
			t.Error("public key changed across reload")
		}
	})

	t.Run("prefix optional", func(t *testing.T) {
		bare := strings.TrimPrefix(s.PrivateKeyHex(), "0x")
		loaded, err := FromPrivateKeyHex(bare)
		if err != nil {
			t.Fatalf("load without prefix: %v", err)
		}
		if loaded.Address() != s.Address() {
			t.Error("address differs when prefix omitted")
		}
	})

	t.Run("signatures agree", func(t *testing.T) {
		loaded, err := FromPrivateKeyHex(s.PrivateKeyHex())
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		msg := []byte("same key, same signature")
		if !bytes.Equal(loaded.Sign(msg), s.Sign(msg)) {
			t.Error("reloaded key signs differently")
		}
	})

	t.Run("bad inputs", func(t *testing.T) {
		for _, bad := range []string{"", "0x", "0xdead", "zz"} {
			if _, err := FromPrivateKeyHex(bad); err == nil {
				t.Errorf("FromPrivateKeyHex(%q): want error", bad)
			}
		}
	})
}

func TestDeriveAddressDeterministic(t *testing.T) {
	s, err := GenerateKey()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	a := DeriveAddress(s.pub)
	b := DeriveAddress(s.pub)
	if a != b {
		t.Error("derivation not deterministic")
	}
	if a.IsZero() {
		t.Error("derived address is zero")
	}
	if a != s.Address() {
		t.Error("signer address disagrees with DeriveAddress")
	}

	other, err := GenerateKey()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if other.Address() == s.Address() {
		t.Error("distinct keys derived the same address")
	}
}

func TestTransactionSigningMessage(t *testing.T) {
	raw := []byte{1, 2, 3}
	msg := TransactionSigningMessage(raw)
	if len(msg) != 32+len(raw) {
		t.Fatalf("message length: got %d, want %d", len(msg), 32+len(raw))
	}
	if !bytes.Equal(msg[32:], raw) {
		t.Error("raw transaction bytes not carried verbatim after salt")
	}
	again := TransactionSigningMessage(raw)
	if !bytes.Equal(msg, again) {
		t.Error("salt not stable")
	}
	if bytes.Equal(TransactionSigningMessage([]byte{9})[:32], make([]byte, 32)) {
		t.Error("salt is zero")
	}
}
