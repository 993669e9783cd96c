package storage

import (
	"context"
	"errors"

	"github.com/ogulcanaydogan/slotwatch/pkg/model"
)

var (
	// ErrNotFound is returned by Load when no observation has been saved yet.
	ErrNotFound = errors.New("state not found")
	// ErrCorrupt is returned by Load when persisted state cannot be decoded.
	ErrCorrupt = errors.New("state corrupt")
)

// Store persists the most recent observation. Implementations hold at most
// one record per store and Save is last-writer-wins.
type Store interface {
	// Load returns the last saved observation, ErrNotFound if there is none.
	Load(ctx context.Context) (*model.Observation, error)

	// Save overwrites the stored observation.
	Save(ctx context.Context, obs model.Observation) error

	// Close releases resources.
	Close() error
}
