package util

import (
	"bytes"
	"testing"
)

func TestAES(t *testing.T) {
	key, _ := RandomBytes(AESKeySize)
	plainText := []byte("hello world")

	t.Run("EncryptDecrypt", func(t *testing.T) {
		cipherText, err := EncryptAES(plainText, key)
		if err != nil {
			t.Fatalf("EncryptAES failed: %v", err)
		}

		decrypted, err := DecryptAES(cipherText, key)
		if err != nil {
			t.Fatalf("DecryptAES failed: %v", err)
		}

		if !bytes.Equal(plainText, decrypted) {
			t.Errorf("expected %s, got %s", plainText, decrypted)
		}
	})

	t.Run("TamperCipherText", func(t *testing.T) {
		cipherText, _ := EncryptAES(plainText, key)
		cipherText[len(cipherText)-1] ^= 0xFF
		_, err := DecryptAES(cipherText, key)
		if err == nil {
			t.Error("expected error with tampered ciphertext, got nil")
		}
	})

	t.Run("RejectBadKeySize", func(t *testing.T) {
		_, err := EncryptAES(plainText, []byte("too short"))
		if err == nil {
			t.Error("expected error with wrong key size, got nil")
		}
	})

	t.Run("NonceMakesCiphertextsDiffer", func(t *testing.T) {
		a, _ := EncryptAES(plainText, key)
		b, _ := EncryptAES(plainText, key)
		if bytes.Equal(a, b) {
			t.Error("two encryptions of the same plaintext must differ")
		}
	})

	t.Run("TruncatedCiphertext", func(t *testing.T) {
		if _, err := DecryptAES([]byte("short"), key); err == nil {
			t.Error("expected error for ciphertext shorter than nonce, got nil")
		}
	})
}

func TestHashSecret(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		hash, err := HashSecret("hunter2")
		if err != nil {
			t.Fatalf("HashSecret failed: %v", err)
		}
		if !CheckSecret("hunter2", hash) {
			t.Error("correct secret rejected")
		}
		if CheckSecret("hunter3", hash) {
			t.Error("wrong secret accepted")
		}
	})

	t.Run("IndependentSalts", func(t *testing.T) {
		a, _ := HashSecret("same input")
		b, _ := HashSecret("same input")
		if a == b {
			t.Error("two hashes of the same input must use independent salts")
		}
	})

	t.Run("UnicodeNormalization", func(t *testing.T) {
		// U+00E9 vs e + combining acute: same secret after NFKD.
		hash, err := HashSecret("café")
		if err != nil {
			t.Fatalf("HashSecret failed: %v", err)
		}
		if !CheckSecret("café", hash) {
			t.Error("normalized forms of the same secret must match")
		}
	})
}

func TestNewOpaqueToken(t *testing.T) {
	a, err := NewOpaqueToken()
	if err != nil {
		t.Fatalf("NewOpaqueToken failed: %v", err)
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex characters, got %d", len(a))
	}
	b, _ := NewOpaqueToken()
	if a == b {
		t.Error("two tokens must not collide")
	}
}
