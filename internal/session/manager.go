// Package session holds per-session UI state: the active patient, the
// statistics window and display-only history clearing. It replaces the old
// pattern of a singleton window owning this state; the calling layer owns
// the manager's lifecycle and the analysis core never touches it.
package session

import (
	"sync"
	"time"
)

// Manager is the session state contract. Clearing history here is a display
// concern only: persisted readings survive and a separate repository purge
// is the destructive path.
type Manager interface {
	SetActivePatient(patientID uint)
	ActivePatient() (uint, bool)
	ClearActivePatient()

	SetWindowDays(days int)
	WindowDays() (int, bool)

	MarkHistoryCleared(patientID uint, at time.Time)
	HistoryClearedAt(patientID uint) (time.Time, bool)

	Close() error
}

// MemoryManager is an in-process Manager. State lives for one run only.
type MemoryManager struct {
	mu            sync.RWMutex
	activePatient uint
	hasActive     bool
	windowDays    int
	hasWindow     bool
	clearedAt     map[uint]time.Time
}

// NewMemoryManager creates a new in-memory session manager.
func NewMemoryManager() *MemoryManager {
	return &MemoryManager{
		clearedAt: make(map[uint]time.Time),
	}
}

// SetActivePatient sets the patient subsequent commands operate on.
func (m *MemoryManager) SetActivePatient(patientID uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activePatient = patientID
	m.hasActive = true
}

// ActivePatient returns the active patient, if one is set.
func (m *MemoryManager) ActivePatient() (uint, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activePatient, m.hasActive
}

// ClearActivePatient unsets the active patient.
func (m *MemoryManager) ClearActivePatient() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activePatient = 0
	m.hasActive = false
}

// SetWindowDays overrides the statistics window for this session.
func (m *MemoryManager) SetWindowDays(days int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.windowDays = days
	m.hasWindow = true
}

// WindowDays returns the session's window override, if one is set.
func (m *MemoryManager) WindowDays() (int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.windowDays, m.hasWindow
}

// MarkHistoryCleared hides readings at or before the given instant from the
// display for one patient.
func (m *MemoryManager) MarkHistoryCleared(patientID uint, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearedAt[patientID] = at
}

// HistoryClearedAt returns the patient's display-clear marker, if any.
func (m *MemoryManager) HistoryClearedAt(patientID uint) (time.Time, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	at, ok := m.clearedAt[patientID]
	return at, ok
}

// Close releases nothing; in-memory state has no external resources.
func (m *MemoryManager) Close() error {
	return nil
}
