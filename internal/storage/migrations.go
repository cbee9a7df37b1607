package storage

import (
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"

	"github.com/lockedloop/tempus-fugit/internal/models"
	"github.com/lockedloop/tempus-fugit/internal/providers"
)

// Legacy schema keys, newest generation first. Each generation's key is
// removed from both tiers once its data has been written back in the
// current shape.
const (
	keyLegacyWidgets = "widgets"
	keyLegacyTimers  = "timers"
	keyLegacyTimer   = "timer"
)

// migrationStep transforms one legacy generation into the current container
// list. transform reports ok=false when the raw document does not match the
// generation's shape. Steps are pure; the store applies the first match.
type migrationStep struct {
	name      string
	key       string
	consumes  []string
	transform func(raw []byte) ([]models.Container, bool)
}

var migrationSteps = []migrationStep{
	{name: "widgets", key: keyLegacyWidgets, consumes: []string{keyLegacyWidgets}, transform: transformWidgets},
	{name: "timers", key: keyLegacyTimers, consumes: []string{keyLegacyTimers}, transform: transformTimers},
	{name: "timer", key: keyLegacyTimer, consumes: []string{keyLegacyTimer}, transform: transformSingleTimer},
}

// legacyWidget is the flat per-type field layout of the "widgets"
// generation. Numeric fields were written as strings by some builds, hence
// the lenient any + cast handling.
type legacyWidget struct {
	ID          string            `json:"id"`
	Type        string            `json:"type"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Height      any               `json:"height"`
	Column      any               `json:"column"`
	CreatedAt   any               `json:"createdAt"`
	StartDate   string            `json:"startDate"`
	TargetDate  string            `json:"targetDate"`
	Todos       []models.TodoItem `json:"todos"`
	ShowTodos   bool              `json:"showTodos"`
	ImageURL    string            `json:"imageUrl"`
	Fit         string            `json:"fit"`
	Content     string            `json:"content"`
	FontSize    string            `json:"fontSize"`
	Alignment   string            `json:"alignment"`
}

// migratedID moves a legacy id into the current "c-" namespace. The old
// generation prefix is stripped first; bare ids (numeric timer ids, ids
// written without a prefix) are namespaced as-is so references stay stable
// across repeated migrations.
func migratedID(legacy, prefix string) string {
	if legacy == "" {
		return models.NewContainerID()
	}
	legacy = strings.TrimPrefix(legacy, prefix)
	if strings.HasPrefix(legacy, "c-") {
		return legacy
	}
	return "c-" + legacy
}

func migratedHeight(v any) int {
	h := cast.ToInt(v)
	if h == 0 {
		return models.DefaultHeight
	}
	return models.ClampHeight(h)
}

func migratedCreatedAt(v any) int64 {
	if ms := cast.ToInt64(v); ms > 0 {
		return ms
	}
	return time.Now().UnixMilli()
}

func transformWidgets(raw []byte) ([]models.Container, bool) {
	var widgets []legacyWidget
	if err := json.Unmarshal(raw, &widgets); err != nil {
		return nil, false
	}

	containers := make([]models.Container, 0, len(widgets))
	for _, w := range widgets {
		c := models.Container{
			ID:          migratedID(w.ID, "widget-"),
			Type:        models.ContainerType(w.Type),
			Title:       w.Title,
			Description: w.Description,
			Height:      migratedHeight(w.Height),
			Column:      cast.ToInt(w.Column),
			CreatedAt:   migratedCreatedAt(w.CreatedAt),
		}
		switch c.Type {
		case models.TypeImage:
			c.Data = models.ImageData{ImageURL: w.ImageURL, Fit: w.Fit}
		case models.TypeText:
			c.Data = models.TextData{Content: w.Content, FontSize: w.FontSize, Alignment: w.Alignment}
		default:
			c.Type = models.TypeCountdown
			c.Data = models.CountdownData{
				StartDate:  w.StartDate,
				TargetDate: w.TargetDate,
				Todos:      w.Todos,
				ShowTodos:  w.ShowTodos,
			}
		}
		containers = append(containers, c)
	}
	return containers, true
}

// legacyTimerRecord is the countdown-only "timers" array generation.
type legacyTimerRecord struct {
	ID         any    `json:"id"`
	Title      string `json:"title"`
	StartDate  string `json:"startDate"`
	TargetDate string `json:"targetDate"`
}

func transformTimers(raw []byte) ([]models.Container, bool) {
	var timers []legacyTimerRecord
	if err := json.Unmarshal(raw, &timers); err != nil {
		return nil, false
	}

	containers := make([]models.Container, 0, len(timers))
	for _, t := range timers {
		containers = append(containers, models.Container{
			ID:        migratedID(cast.ToString(t.ID), "timer-"),
			Type:      models.TypeCountdown,
			Title:     t.Title,
			Height:    models.DefaultHeight,
			CreatedAt: time.Now().UnixMilli(),
			Data: models.CountdownData{
				StartDate:  t.StartDate,
				TargetDate: t.TargetDate,
			},
		})
	}
	return containers, true
}

// transformSingleTimer synthesizes one countdown container from the oldest
// single-timer-per-install record.
func transformSingleTimer(raw []byte) ([]models.Container, bool) {
	var t legacyTimerRecord
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, false
	}
	if t.StartDate == "" && t.TargetDate == "" {
		return nil, false
	}

	return []models.Container{{
		ID:        models.NewContainerID(),
		Type:      models.TypeCountdown,
		Title:     t.Title,
		Height:    models.DefaultHeight,
		CreatedAt: time.Now().UnixMilli(),
		Data: models.CountdownData{
			StartDate:  t.StartDate,
			TargetDate: t.TargetDate,
		},
	}}, true
}

// Migrate brings the stored data up to the current generation. It runs once
// at startup and is idempotent: once the current key holds a well-formed
// list, no legacy path is consulted again. Legacy keys are removed from both
// tiers only after the transformed list has been durably written.
func (s *Store) Migrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := decodeContainers(s.readKey(KeyContainers)); ok {
		return nil
	}

	for _, step := range migrationSteps {
		raw := s.readKey(step.key)
		if raw == nil {
			continue
		}
		containers, ok := step.transform(raw)
		if !ok {
			s.logger.Warnf(providers.TypeStore, "Legacy %q data is malformed, skipping", step.name)
			continue
		}

		if err := s.writeContainers(containers); err != nil {
			return err
		}

		for _, key := range step.consumes {
			if err := s.local.Delete(key); err != nil {
				s.logger.Warnf(providers.TypeStore, "Failed to remove legacy key %q: %s", key, err)
			}
			if s.synced != nil {
				if err := s.synced.Delete(key); err != nil {
					s.logger.Warnf(providers.TypeStore, "Failed to remove legacy key %q from sync tier: %s", key, err)
				}
			}
		}

		s.logger.Infof(providers.TypeStore, "Migrated %d container(s) from legacy %q schema", len(containers), step.name)
		return nil
	}

	return nil
}
