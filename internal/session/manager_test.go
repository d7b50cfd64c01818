package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryManagerActivePatient(t *testing.T) {
	m := NewMemoryManager()

	_, ok := m.ActivePatient()
	assert.False(t, ok)

	m.SetActivePatient(7)
	id, ok := m.ActivePatient()
	assert.True(t, ok)
	assert.Equal(t, uint(7), id)

	m.ClearActivePatient()
	_, ok = m.ActivePatient()
	assert.False(t, ok)
}

func TestMemoryManagerWindowDays(t *testing.T) {
	m := NewMemoryManager()

	_, ok := m.WindowDays()
	assert.False(t, ok)

	m.SetWindowDays(14)
	days, ok := m.WindowDays()
	assert.True(t, ok)
	assert.Equal(t, 14, days)
}

func TestMemoryManagerHistoryClearedPerPatient(t *testing.T) {
	m := NewMemoryManager()
	now := time.Now()

	_, ok := m.HistoryClearedAt(1)
	assert.False(t, ok)

	m.MarkHistoryCleared(1, now)

	at, ok := m.HistoryClearedAt(1)
	assert.True(t, ok)
	assert.Equal(t, now, at)

	// Marker is scoped to one patient.
	_, ok = m.HistoryClearedAt(2)
	assert.False(t, ok)
}

func TestManagersImplementClose(t *testing.T) {
	// Both managers satisfy the full Manager contract, including Close.
	var m Manager = NewMemoryManager()
	assert.NoError(t, m.Close())
}
