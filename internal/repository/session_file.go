package repository

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/model"
)

// FileSessionRepository keeps one file per session key under dir/namespace.
// With a key set, values are sealed with XChaCha20-Poly1305.
type FileSessionRepository struct {
	dir    string
	sealer *sealer
}

var ErrInvalidEncryptionKey = errors.New("session encryption key must be 32 bytes, base64 encoded")

// NewFileSessionRepository creates the namespace directory. encryptionKey is
// optional base64 of 32 random bytes.
func NewFileSessionRepository(dir, namespace, encryptionKey string) (*FileSessionRepository, error) {
	const op = "repository.NewFileSessionRepository"

	var s *sealer
	if encryptionKey != "" {
		key, err := base64.StdEncoding.DecodeString(encryptionKey)
		if err != nil || len(key) != chacha20poly1305.KeySize {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidEncryptionKey)
		}
		s, err = newSealer(key)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	path := filepath.Join(dir, namespaceOrDefault(namespace))
	if err := os.MkdirAll(path, 0o700); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &FileSessionRepository{dir: path, sealer: s}, nil
}

func (repository *FileSessionRepository) Load(_ context.Context) (*model.TokenPair, error) {
	const op = "repository.FileSessionRepository.Load"

	data, err := os.ReadFile(repository.path(model.SessionKey))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, model.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if repository.sealer != nil {
		data, err = repository.sealer.open(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return decodePair(data)
}

func (repository *FileSessionRepository) Save(_ context.Context, pair *model.TokenPair) error {
	const op = "repository.FileSessionRepository.Save"

	data, err := encodePair(pair)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if repository.sealer != nil {
		data, err = repository.sealer.seal(data)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	tmp, err := os.CreateTemp(repository.dir, ".session-*")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := os.Rename(tmp.Name(), repository.path(model.SessionKey)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Clear removes every file of the namespace, not only the token pair.
func (repository *FileSessionRepository) Clear(_ context.Context) error {
	const op = "repository.FileSessionRepository.Clear"

	entries, err := os.ReadDir(repository.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(repository.dir, entry.Name())); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

func (repository *FileSessionRepository) path(key string) string {
	return filepath.Join(repository.dir, key+".json")
}

type sealer struct {
	key []byte
}

func newSealer(key []byte) (*sealer, error) {
	if _, err := chacha20poly1305.NewX(key); err != nil {
		return nil, err
	}
	return &sealer{key: key}, nil
}

// seal prepends the random nonce to the ciphertext.
func (s *sealer) seal(plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	return aead.Seal(nonce, nonce, plaintext, []byte(model.SessionKey)), nil
}

func (s *sealer) open(sealed []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, err
	}
	if len(sealed) < aead.NonceSize() {
		return nil, errors.New("sealed session too short")
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	return aead.Open(nil, nonce, ciphertext, []byte(model.SessionKey))
}
