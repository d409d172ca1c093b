package store

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// Cipher encrypts and decrypts token strings for SecureStore. The primitive
// is replaceable; the default is an XChaCha20-Poly1305 AEAD.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// aeadCipher implements Cipher with XChaCha20-Poly1305. The nonce is random
// per encryption and prepended to the ciphertext.
type aeadCipher struct {
	key []byte
}

// NewAEADCipher creates the default Cipher from a 32-byte key.
func NewAEADCipher(key []byte) (Cipher, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("store: cipher key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	return &aeadCipher{key: append([]byte(nil), key...)}, nil
}

// DeriveKey stretches a passphrase into a cipher key with HKDF-SHA256. The
// salt must be stable across restarts for previously written records to
// remain readable.
func DeriveKey(passphrase, salt string) []byte {
	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, []byte(passphrase), []byte(salt), []byte("tower-credential-store"))
	_, _ = io.ReadFull(kdf, key)
	return key
}

func (c *aeadCipher) Encrypt(plaintext string) (string, error) {
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawStdEncoding.EncodeToString(sealed), nil
}

func (c *aeadCipher) Decrypt(ciphertext string) (string, error) {
	sealed, err := base64.RawStdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", err
	}

	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", err
	}
	if len(sealed) < aead.NonceSize() {
		return "", fmt.Errorf("store: ciphertext shorter than nonce")
	}

	plaintext, err := aead.Open(nil, sealed[:aead.NonceSize()], sealed[aead.NonceSize():], nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// SecureStore decorates another CredentialStore, encrypting the access and
// refresh token strings before they reach the delegate. Everything else
// (expiry instants, identity, tenant bookkeeping) passes through untouched.
//
// A record that fails to decrypt is deleted from the delegate and reported
// absent, matching the corruption semantics of the persistent backends.
type SecureStore struct {
	delegate CredentialStore
	cipher   Cipher
}

// NewSecureStore wraps delegate with the given cipher. A nil cipher is
// rejected; use NewAEADCipher for the default.
func NewSecureStore(delegate CredentialStore, cipher Cipher) (*SecureStore, error) {
	if cipher == nil {
		return nil, fmt.Errorf("store: nil cipher")
	}
	return &SecureStore{delegate: delegate, cipher: cipher}, nil
}

// GetUserToken implements CredentialStore.
func (s *SecureStore) GetUserToken(ctx context.Context, tenantID string) (*UserToken, error) {
	token, err := s.delegate.GetUserToken(ctx, tenantID)
	if err != nil || token == nil {
		return nil, err
	}

	access, aerr := s.cipher.Decrypt(token.AccessToken)
	refresh, rerr := s.cipher.Decrypt(token.RefreshToken)
	if aerr != nil || rerr != nil {
		_ = s.delegate.RemoveUserToken(ctx, tenantID)
		return nil, nil
	}

	decrypted := token.Clone()
	decrypted.AccessToken = access
	decrypted.RefreshToken = refresh
	return decrypted, nil
}

// SetUserToken implements CredentialStore.
func (s *SecureStore) SetUserToken(ctx context.Context, tenantID string, token *UserToken) error {
	access, err := s.cipher.Encrypt(token.AccessToken)
	if err != nil {
		return fmt.Errorf("store: encrypt access token: %w", err)
	}
	refresh, err := s.cipher.Encrypt(token.RefreshToken)
	if err != nil {
		return fmt.Errorf("store: encrypt refresh token: %w", err)
	}

	encrypted := token.Clone()
	encrypted.AccessToken = access
	encrypted.RefreshToken = refresh
	return s.delegate.SetUserToken(ctx, tenantID, encrypted)
}

// RemoveUserToken implements CredentialStore.
func (s *SecureStore) RemoveUserToken(ctx context.Context, tenantID string) error {
	return s.delegate.RemoveUserToken(ctx, tenantID)
}

// GetClientToken implements CredentialStore.
func (s *SecureStore) GetClientToken(ctx context.Context, tenantID string) (*ClientToken, error) {
	token, err := s.delegate.GetClientToken(ctx, tenantID)
	if err != nil || token == nil {
		return nil, err
	}

	access, err := s.cipher.Decrypt(token.AccessToken)
	if err != nil {
		_ = s.delegate.RemoveClientToken(ctx, tenantID)
		return nil, nil
	}

	decrypted := token.Clone()
	decrypted.AccessToken = access
	return decrypted, nil
}

// SetClientToken implements CredentialStore.
func (s *SecureStore) SetClientToken(ctx context.Context, tenantID string, token *ClientToken) error {
	access, err := s.cipher.Encrypt(token.AccessToken)
	if err != nil {
		return fmt.Errorf("store: encrypt access token: %w", err)
	}

	encrypted := token.Clone()
	encrypted.AccessToken = access
	return s.delegate.SetClientToken(ctx, tenantID, encrypted)
}

// RemoveClientToken implements CredentialStore.
func (s *SecureStore) RemoveClientToken(ctx context.Context, tenantID string) error {
	return s.delegate.RemoveClientToken(ctx, tenantID)
}

// CurrentTenantID implements CredentialStore.
func (s *SecureStore) CurrentTenantID(ctx context.Context) (string, error) {
	return s.delegate.CurrentTenantID(ctx)
}

// SetCurrentTenantID implements CredentialStore.
func (s *SecureStore) SetCurrentTenantID(ctx context.Context, tenantID string) error {
	return s.delegate.SetCurrentTenantID(ctx, tenantID)
}

// RemoveCurrentTenantID implements CredentialStore.
func (s *SecureStore) RemoveCurrentTenantID(ctx context.Context) error {
	return s.delegate.RemoveCurrentTenantID(ctx)
}

// Clear implements CredentialStore.
func (s *SecureStore) Clear(ctx context.Context) error {
	return s.delegate.Clear(ctx)
}

// ListTenants implements CredentialStore.
func (s *SecureStore) ListTenants(ctx context.Context) ([]string, error) {
	return s.delegate.ListTenants(ctx)
}

var _ CredentialStore = (*SecureStore)(nil)
