// Package vault шифрует секреты провайдеров перед записью в базу.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// ErrDecrypt возвращается, если полезная нагрузка повреждена или ключ не подходит.
var ErrDecrypt = errors.New("failed to decrypt secret")

const (
	keyInfo   = "content-pipeline/api-keys/v1"
	keyLength = 32
	nonceSize = 12
)

// Cipher шифрует строки AES-256-GCM.
// Формат результата: hex(nonce):hex(ciphertext||tag).
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher выводит 32-байтный ключ из секрета сервера через HKDF-SHA256.
func NewCipher(secret string) (*Cipher, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("encryption secret is empty")
	}

	key := make([]byte, keyLength)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCMWithNonceSize(block, nonceSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// Encrypt шифрует plaintext со свежим случайным nonce.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := c.aead.Seal(nil, nonce, []byte(plaintext), nil)
	return hex.EncodeToString(nonce) + ":" + hex.EncodeToString(sealed), nil
}

// Decrypt восстанавливает plaintext. Любая ошибка оборачивает ErrDecrypt.
func (c *Cipher) Decrypt(payload string) (string, error) {
	nonceHex, sealedHex, ok := strings.Cut(payload, ":")
	if !ok {
		return "", fmt.Errorf("%w: malformed payload", ErrDecrypt)
	}
	nonce, err := hex.DecodeString(nonceHex)
	if err != nil || len(nonce) != nonceSize {
		return "", fmt.Errorf("%w: invalid nonce", ErrDecrypt)
	}
	sealed, err := hex.DecodeString(sealedHex)
	if err != nil {
		return "", fmt.Errorf("%w: invalid ciphertext encoding", ErrDecrypt)
	}
	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return string(plaintext), nil
}
