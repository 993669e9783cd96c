package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/slotwatch/pkg/model"
	"github.com/ogulcanaydogan/slotwatch/pkg/storage"
)

func TestMemory_Empty(t *testing.T) {
	m := storage.NewMemory(nil)

	_, err := m.Load(context.Background())
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Equal(t, 0, m.Saves())
}

func TestMemory_SeedAndSave(t *testing.T) {
	seed := sampleObservation()
	m := storage.NewMemory(&seed)
	ctx := context.Background()

	got, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Slots)

	require.NoError(t, m.Save(ctx, model.Observation{Location: "ABU DHABI", Slots: 8}))
	got, err = m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, got.Slots)
	assert.Equal(t, 1, m.Saves())
}

func TestMemory_ReturnsCopies(t *testing.T) {
	seed := sampleObservation()
	m := storage.NewMemory(&seed)

	got, err := m.Load(context.Background())
	require.NoError(t, err)
	*got.StartDate = "changed"

	again, err := m.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "10 Mar 2026", again.StartDateValue())
}
