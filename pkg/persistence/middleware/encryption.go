package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/fsmgen/pkg/domain"
	"github.com/aretw0/fsmgen/pkg/ports"
)

// sealedPrefix marks a Code field that holds an encrypted payload.
const sealedPrefix = "sealed:v1:"

// ErrNotSealed is returned when a stored record was written without encryption.
var ErrNotSealed = errors.New("record is missing its sealed payload")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey seals new records. Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys are tried in order when the active key cannot open a
	// record, so keys can be rotated without rewriting the store.
	FallbackKeys [][]byte
}

// ParseKeys decodes base64 keys into an EncryptionConfig. The first key is active.
func ParseKeys(keys ...string) (EncryptionConfig, error) {
	var cfg EncryptionConfig
	for i, k := range keys {
		raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(k))
		if err != nil {
			return EncryptionConfig{}, fmt.Errorf("key %d: %w", i, err)
		}
		if len(raw) != 32 {
			return EncryptionConfig{}, fmt.Errorf("key %d: must be 32 bytes, got %d", i, len(raw))
		}
		if i == 0 {
			cfg.ActiveKey = raw
		} else {
			cfg.FallbackKeys = append(cfg.FallbackKeys, raw)
		}
	}
	if cfg.ActiveKey == nil {
		return EncryptionConfig{}, errors.New("no encryption key")
	}
	return cfg, nil
}

// sealed is the part of a record that never reaches the store in clear text.
type sealed struct {
	UserRequirement string `json:"user_requirement"`
	FSM             string `json:"FSM"`
	Code            string `json:"code"`
}

type encryptionMiddleware struct {
	next   ports.OutcomeStore
	config EncryptionConfig
}

// NewEncryptionMiddleware seals the requirement and the generated artifacts
// of every record with AES-GCM. ID, model and outcomes stay readable so
// stored runs can still be listed and resumed.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, errors.New("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.OutcomeStore) ports.OutcomeStore {
		return &encryptionMiddleware{next: next, config: config}
	}, nil
}

func (m *encryptionMiddleware) Save(ctx context.Context, rec domain.Record) error {
	plain, err := json.Marshal(sealed{UserRequirement: rec.UserRequirement, FSM: rec.FSM, Code: rec.Code})
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	ciphertext, err := encrypt(plain, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt record: %w", err)
	}

	envelope := rec
	envelope.UserRequirement = ""
	envelope.FSM = ""
	envelope.Code = sealedPrefix + base64.StdEncoding.EncodeToString(ciphertext)
	return m.next.Save(ctx, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, id string) (domain.Record, error) {
	envelope, err := m.next.Load(ctx, id)
	if err != nil {
		return domain.Record{}, err
	}

	encoded, ok := strings.CutPrefix(envelope.Code, sealedPrefix)
	if !ok {
		return domain.Record{}, fmt.Errorf("%s: %w", id, ErrNotSealed)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return domain.Record{}, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}
	plain, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return domain.Record{}, fmt.Errorf("failed to decrypt record %s: %w", id, err)
	}

	var s sealed
	if err := json.Unmarshal(plain, &s); err != nil {
		return domain.Record{}, fmt.Errorf("failed to unmarshal decrypted record: %w", err)
	}
	rec := envelope
	rec.UserRequirement, rec.FSM, rec.Code = s.UserRequirement, s.FSM, s.Code
	return rec, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func encrypt(plaintext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	for _, key := range append([][]byte{activeKey}, fallbackKeys...) {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, body := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
