package repository

import (
	"context"
	"sync"

	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/model"
)

// MemorySessionRepository keeps the session in process memory.
// Nothing survives a restart; used by tests and the "memory" store kind.
type MemorySessionRepository struct {
	mu     sync.Mutex
	values map[string][]byte
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{values: make(map[string][]byte)}
}

func (repository *MemorySessionRepository) Load(_ context.Context) (*model.TokenPair, error) {
	repository.mu.Lock()
	data, ok := repository.values[model.SessionKey]
	repository.mu.Unlock()

	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return decodePair(data)
}

func (repository *MemorySessionRepository) Save(_ context.Context, pair *model.TokenPair) error {
	data, err := encodePair(pair)
	if err != nil {
		return err
	}

	repository.mu.Lock()
	repository.values[model.SessionKey] = data
	repository.mu.Unlock()
	return nil
}

func (repository *MemorySessionRepository) Clear(_ context.Context) error {
	repository.mu.Lock()
	clear(repository.values)
	repository.mu.Unlock()
	return nil
}
