package storage

import (
	"fmt"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"github.com/lockedloop/tempus-fugit/internal/models"
	"github.com/lockedloop/tempus-fugit/internal/providers"
)

const (
	KeyContainers = "containers"
	KeySettings   = "settings"
)

// State is one full read of the store.
type State struct {
	Containers []models.Container `json:"containers"`
	Settings   models.Settings    `json:"settings"`
}

type StoreInterface interface {
	Migrate() error
	Get() State
	GetSettings() models.Settings
	SetSettings(settings models.Settings) error
	SetContainers(containers []models.Container) error
	AddContainer(draft models.Draft) (models.Container, error)
	UpdateContainer(id string, patch models.ContainerPatch) (*models.Container, error)
	DeleteContainer(id string) ([]models.Container, error)
	ReorderContainers(orderedIds []string) ([]models.Container, error)
	Export() ([]byte, error)
	Import(raw []byte) error
	FlushSync()
	HasSync() bool
}

// Store is the dual-tier persistence layer. The local tier is authoritative
// for writes: a local write failure is fatal to the operation. The sync tier
// is preferred on read when it holds a well-formed document and is written
// best-effort, so every read is total.
type Store struct {
	mu      sync.Mutex
	local   Backend
	synced  Backend
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
}

func NewStore(local *FileBackend, synced *SyncBackend, logger providers.Logger, metrics providers.MetricsProviderInterface) StoreInterface {
	if synced == nil {
		return NewStoreWithBackends(local, nil, logger, metrics)
	}
	return NewStoreWithBackends(local, synced, logger, metrics)
}

// NewStoreWithBackends wires arbitrary tiers; synced may be nil.
func NewStoreWithBackends(local, synced Backend, logger providers.Logger, metrics providers.MetricsProviderInterface) StoreInterface {
	return &Store{
		local:   local,
		synced:  synced,
		logger:  logger,
		metrics: metrics,
	}
}

func (s *Store) HasSync() bool {
	return s.synced != nil
}

// readKey applies the read policy: prefer the sync tier when it yields a
// document, otherwise the local tier, otherwise nil.
func (s *Store) readKey(key string) []byte {
	if s.synced != nil {
		raw, err := s.synced.Get(key)
		if err != nil {
			s.logger.Warnf(providers.TypeStore, "Sync backend unavailable for %q: %s", key, err)
		} else if raw != nil {
			return raw
		}
	}

	raw, err := s.local.Get(key)
	if err != nil {
		s.logger.Errorf(providers.TypeStore, "Local read of %q failed: %s", key, err)
		return nil
	}
	return raw
}

// writeKey persists to the local tier (fatal on failure) and then to the
// sync tier (logged, never surfaced).
func (s *Store) writeKey(key string, val []byte) error {
	start := time.Now()
	if err := s.local.Set(key, val); err != nil {
		return fmt.Errorf("durable write of %q: %w", key, err)
	}
	s.metrics.ObservePersistenceDuration(time.Since(start))

	if s.synced != nil {
		if err := s.synced.Set(key, val); err != nil {
			s.metrics.IncSyncFailures()
			s.logger.Warnf(providers.TypeStore, "Sync write of %q failed: %s", key, err)
		}
	}
	return nil
}

func decodeContainers(raw []byte) ([]models.Container, bool) {
	if raw == nil {
		return nil, false
	}
	var containers []models.Container
	if err := json.Unmarshal(raw, &containers); err != nil {
		return nil, false
	}
	return containers, true
}

func (s *Store) readContainers() []models.Container {
	if s.synced != nil {
		raw, err := s.synced.Get(KeyContainers)
		if err != nil {
			s.logger.Warnf(providers.TypeStore, "Sync backend unavailable: %s", err)
		} else if containers, ok := decodeContainers(raw); ok && containers != nil {
			return containers
		}
	}

	raw, err := s.local.Get(KeyContainers)
	if err != nil {
		s.logger.Errorf(providers.TypeStore, "Local read failed: %s", err)
		return []models.Container{}
	}
	if containers, ok := decodeContainers(raw); ok && containers != nil {
		return containers
	}
	return []models.Container{}
}

func (s *Store) writeContainers(containers []models.Container) error {
	raw, err := json.Marshal(containers)
	if err != nil {
		return err
	}
	return s.writeKey(KeyContainers, raw)
}

func (s *Store) Get() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Containers: s.readContainers(),
		Settings:   models.DecodeSettings(s.readKey(KeySettings)),
	}
}

func (s *Store) GetSettings() models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.DecodeSettings(s.readKey(KeySettings))
}

func (s *Store) SetSettings(settings models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	return s.writeKey(KeySettings, raw)
}

func (s *Store) SetContainers(containers []models.Container) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeContainers(containers)
}

// AddContainer assigns the server-side fields (id, createdAt, defaults),
// appends and persists. The returned record is the stored one, not the
// draft, so the caller can display generated fields immediately.
func (s *Store) AddContainer(draft models.Draft) (models.Container, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	container := models.Container{
		ID:          models.NewContainerID(),
		Type:        draft.Type,
		Title:       draft.Title,
		Description: draft.Description,
		Height:      models.DefaultHeight,
		CreatedAt:   time.Now().UnixMilli(),
		Data:        draft.Data,
	}
	if draft.Height != 0 {
		container.Height = models.ClampHeight(draft.Height)
	}
	if draft.Column != nil {
		container.Column = *draft.Column
	}
	if container.Type == "" {
		container.Type = models.TypeCountdown
	}
	if container.Data == nil {
		container.Data = models.CountdownData{}
	}

	containers := append(s.readContainers(), container)
	if err := s.writeContainers(containers); err != nil {
		return models.Container{}, err
	}
	return container, nil
}

// UpdateContainer shallow-merges the patch onto the stored record. A stale
// id yields (nil, nil), not an error.
func (s *Store) UpdateContainer(id string, patch models.ContainerPatch) (*models.Container, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	containers := s.readContainers()
	for i := range containers {
		if containers[i].ID != id {
			continue
		}
		patch.Apply(&containers[i])
		if err := s.writeContainers(containers); err != nil {
			return nil, err
		}
		updated := containers[i]
		return &updated, nil
	}
	return nil, nil
}

func (s *Store) DeleteContainer(id string) ([]models.Container, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	containers := s.readContainers()
	remaining := make([]models.Container, 0, len(containers))
	for _, c := range containers {
		if c.ID != id {
			remaining = append(remaining, c)
		}
	}
	if len(remaining) == len(containers) {
		return containers, nil
	}
	if err := s.writeContainers(remaining); err != nil {
		return nil, err
	}
	return remaining, nil
}

// ReorderContainers re-projects the stored list into the given id order.
// Unknown ids are dropped; stored records missing from the order keep their
// relative position at the tail so a stale order can never lose data. This
// is the only operation that changes order without touching record content.
func (s *Store) ReorderContainers(orderedIds []string) ([]models.Container, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	containers := s.readContainers()
	byID := make(map[string]int, len(containers))
	for i, c := range containers {
		byID[c.ID] = i
	}

	reordered := make([]models.Container, 0, len(containers))
	seen := make(map[string]struct{}, len(orderedIds))
	for _, id := range orderedIds {
		if i, ok := byID[id]; ok {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			reordered = append(reordered, containers[i])
		}
	}
	for _, c := range containers {
		if _, ok := seen[c.ID]; !ok {
			reordered = append(reordered, c)
		}
	}

	if err := s.writeContainers(reordered); err != nil {
		return nil, err
	}
	return reordered, nil
}

// FlushSync pushes the local state to the sync tier. Best effort: failures
// are logged and counted, never surfaced.
func (s *Store) FlushSync() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.synced == nil {
		return
	}
	for _, key := range []string{KeyContainers, KeySettings} {
		raw, err := s.local.Get(key)
		if err != nil || raw == nil {
			continue
		}
		if err := s.synced.Set(key, raw); err != nil {
			s.metrics.IncSyncFailures()
			s.logger.Warnf(providers.TypeStore, "Sync flush of %q failed: %s", key, err)
		}
	}
}
