// Package crypto holds the symmetric cipher protecting secret fields at rest.
package crypto

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/awnumar/memguard"

	"github.com/salapa/vaultd/internal/util"
)

// Cipher encrypts and decrypts credential secrets with a single static
// AES-256 key. The key lives in a memguard enclave and is only materialised
// for the duration of each operation. Safe for concurrent use.
type Cipher struct {
	key *memguard.Enclave
}

// NewCipher wraps the given 32-byte key. The caller's copy is wiped.
func NewCipher(rawKey []byte) (*Cipher, error) {
	if len(rawKey) != util.AESKeySize {
		util.WipeBytes(rawKey)
		return nil, fmt.Errorf("cipher key must be %d bytes, got %d", util.AESKeySize, len(rawKey))
	}
	// NewEnclave wipes rawKey after copying it in.
	return &Cipher{key: memguard.NewEnclave(rawKey)}, nil
}

// NewCipherFromHex parses a hex-encoded 32-byte key, as supplied via
// configuration.
func NewCipherFromHex(hexKey string) (*Cipher, error) {
	rawKey, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("decoding cipher key: %w", err)
	}
	return NewCipher(rawKey)
}

// EncryptString encrypts a secret and returns base64(nonce || ciphertext).
func (c *Cipher) EncryptString(plaintext string) (string, error) {
	keyBuf, err := c.key.Open()
	if err != nil {
		return "", fmt.Errorf("opening cipher key enclave: %w", err)
	}
	defer keyBuf.Destroy()

	ct, err := util.EncryptAES([]byte(plaintext), keyBuf.Bytes())
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(ct), nil
}

// DecryptString reverses EncryptString.
func (c *Cipher) DecryptString(encoded string) (string, error) {
	ct, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decoding ciphertext: %w", err)
	}

	keyBuf, err := c.key.Open()
	if err != nil {
		return "", fmt.Errorf("opening cipher key enclave: %w", err)
	}
	defer keyBuf.Destroy()

	pt, err := util.DecryptAES(ct, keyBuf.Bytes())
	if err != nil {
		return "", err
	}
	return string(pt), nil
}
