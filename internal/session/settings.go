package session

import (
	"sync"

	"github.com/Lyzr-Apps/corey-support-agent-amazing-gear-2llo/internal/models"
)

// Settings is the mutable runtime copy of AppSettings, seeded from config at
// startup and editable through the settings endpoints.
type Settings struct {
	mu      sync.RWMutex
	current models.AppSettings
}

func NewSettings(initial models.AppSettings) *Settings {
	return &Settings{current: initial}
}

func (s *Settings) Get() models.AppSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Settings) Update(next models.AppSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = next
}
