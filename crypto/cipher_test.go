package crypto

import (
	"strings"
	"testing"
)

func testCipher(t *testing.T) *Cipher {
	t.Helper()
	c, err := NewCipherFromHex(strings.Repeat("0f", 32))
	if err != nil {
		t.Fatalf("NewCipherFromHex failed: %v", err)
	}
	return c
}

func TestCipherRoundTrip(t *testing.T) {
	c := testCipher(t)

	for _, plaintext := range []string{
		"hunter2",
		"",
		"päßwörd with ünïcode 🔑",
		strings.Repeat("long ", 1000),
	} {
		encoded, err := c.EncryptString(plaintext)
		if err != nil {
			t.Fatalf("EncryptString(%q) failed: %v", plaintext, err)
		}
		if strings.Contains(encoded, plaintext) && plaintext != "" {
			t.Errorf("ciphertext leaks plaintext %q", plaintext)
		}

		decrypted, err := c.DecryptString(encoded)
		if err != nil {
			t.Fatalf("DecryptString failed: %v", err)
		}
		if decrypted != plaintext {
			t.Errorf("round trip mismatch: got %q, want %q", decrypted, plaintext)
		}
	}
}

func TestCipherRejectsWrongKey(t *testing.T) {
	c := testCipher(t)
	other, err := NewCipherFromHex(strings.Repeat("aa", 32))
	if err != nil {
		t.Fatal(err)
	}

	encoded, err := c.EncryptString("secret")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := other.DecryptString(encoded); err == nil {
		t.Error("expected decryption under a different key to fail")
	}
}

func TestCipherRejectsBadInput(t *testing.T) {
	c := testCipher(t)

	if _, err := c.DecryptString("not base64!!!"); err == nil {
		t.Error("expected error for invalid base64")
	}
	if _, err := c.DecryptString("aGVsbG8="); err == nil {
		t.Error("expected error for truncated ciphertext")
	}
}

func TestNewCipherKeySize(t *testing.T) {
	if _, err := NewCipher([]byte("short")); err == nil {
		t.Error("expected error for short key")
	}
	if _, err := NewCipherFromHex("zz"); err == nil {
		t.Error("expected error for invalid hex")
	}
}
