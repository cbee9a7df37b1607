package storage

import (
	"errors"
	"time"

	json "github.com/goccy/go-json"

	"github.com/lockedloop/tempus-fugit/internal/models"
)

const ExportVersion = 1

var ErrInvalidImport = errors.New("import document must carry a containers array")

// ExportDocument is the portable backup envelope.
type ExportDocument struct {
	Version    int                `json:"version"`
	ExportedAt string             `json:"exportedAt"`
	Containers []models.Container `json:"containers"`
	Settings   models.Settings    `json:"settings"`
}

func (s *Store) Export() ([]byte, error) {
	state := s.Get()

	s.mu.Lock()
	defer s.mu.Unlock()
	return json.Marshal(ExportDocument{
		Version:    ExportVersion,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Containers: state.Containers,
		Settings:   state.Settings,
	})
}

// Import replaces the durable store wholesale after validating the
// document. A rejected document leaves existing data untouched.
func (s *Store) Import(raw []byte) error {
	var probe struct {
		Containers json.RawMessage `json:"containers"`
		Settings   json.RawMessage `json:"settings"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return ErrInvalidImport
	}

	containers, ok := decodeContainers(probe.Containers)
	if !ok || containers == nil {
		return ErrInvalidImport
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeContainers(containers); err != nil {
		return err
	}
	if len(probe.Settings) > 0 {
		if err := s.writeKey(KeySettings, probe.Settings); err != nil {
			return err
		}
	}
	return nil
}
