package repository

// put stores an arbitrary session value next to the token pair.
func (repository *MemorySessionRepository) put(key string, value []byte) {
	repository.mu.Lock()
	repository.values[key] = value
	repository.mu.Unlock()
}

func (repository *MemorySessionRepository) size() int {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	return len(repository.values)
}
