package repository

import (
	"encoding/json"
	"fmt"

	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/model"
)

const defaultNamespace = "ibe"

func encodePair(pair *model.TokenPair) ([]byte, error) {
	data, err := json.Marshal(pair)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	return data, nil
}

func decodePair(data []byte) (*model.TokenPair, error) {
	var pair model.TokenPair
	if err := json.Unmarshal(data, &pair); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if pair.Empty() {
		return nil, model.ErrSessionNotFound
	}
	return &pair, nil
}

func namespaceOrDefault(namespace string) string {
	if namespace == "" {
		return defaultNamespace
	}
	return namespace
}
