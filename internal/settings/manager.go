// manager.go - In-memory settings owner backed by a storage slot

package settings

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// Manager loads settings once, serves snapshots and writes every change back to the store
type Manager struct {
	store    Store
	settings Settings
	prompts  PromptSet
	mu       sync.RWMutex
}

// NewManager loads the settings slot. An empty slot yields Defaults.
func NewManager(ctx context.Context, store Store) (*Manager, error) {
	loaded, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if loaded == nil {
		loaded = Defaults()
	}

	m := &Manager{store: store}
	m.apply(*loaded)

	log.Printf("✓ Settings loaded: model=%s, prompts=%d, active=%d",
		m.settings.ResolvedModel(), m.prompts.Len(), m.prompts.ActiveIndex())
	return m, nil
}

// apply replaces the in-memory state; caller holds the write lock or owns m exclusively
func (m *Manager) apply(s Settings) {
	m.prompts = NewPromptSet(s.Prompts)
	s.Prompts = nil
	s.Temperature = s.ClampedTemperature()
	m.settings = s
}

// snapshot returns the persisted form; caller holds a lock
func (m *Manager) snapshot() Settings {
	s := m.settings.Clone()
	s.Prompts = m.prompts.Export()
	return s
}

// Current returns a deep copy of the settings with IsEnabled flags rebuilt from the selection
func (m *Manager) Current() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot()
}

// ActivePrompt returns a copy of the active prompt
func (m *Manager) ActivePrompt() (Prompt, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.prompts.Active()
}

// Prompts returns all prompts in persisted form
func (m *Manager) Prompts() []Prompt {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.prompts.Export()
}

// SelectPrompt activates the prompt at index, deactivating all others, and saves
func (m *Manager) SelectPrompt(ctx context.Context, index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	previous := m.prompts.ActiveIndex()
	if err := m.prompts.Select(index); err != nil {
		return err
	}

	s := m.snapshot()
	if err := m.store.Save(ctx, &s); err != nil {
		m.prompts.active = previous
		return fmt.Errorf("failed to save settings: %w", err)
	}

	log.Printf("✓ Prompt %d (%s) selected", index, s.Prompts[index].Name)
	return nil
}

// Update replaces the whole settings document and saves it
func (m *Manager) Update(ctx context.Context, s Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	previous := m.snapshot()
	m.apply(s.Clone())

	next := m.snapshot()
	if err := m.store.Save(ctx, &next); err != nil {
		m.apply(previous)
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
