package models

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

type ContainerType string

const (
	TypeCountdown ContainerType = "countdown"
	TypeImage     ContainerType = "image"
	TypeText      ContainerType = "text"
)

const (
	MinHeight     = 1
	MaxHeight     = 5
	DefaultHeight = 2
)

// DateLayout is the on-disk format of countdown start/target dates.
const DateLayout = "2006-01-02"

// ContainerData is the variant payload of a container. Exactly one concrete
// type exists per ContainerType; every operation site switches on Kind.
type ContainerData interface {
	Kind() ContainerType
}

type TodoItem struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

type CountdownData struct {
	StartDate  string     `json:"startDate"`
	TargetDate string     `json:"targetDate"`
	Todos      []TodoItem `json:"todos"`
	ShowTodos  bool       `json:"showTodos"`
}

func (CountdownData) Kind() ContainerType { return TypeCountdown }

// Dates parses the start/target date strings. Unparseable dates come back as
// the zero time so an inverted or corrupt range degrades to a finished
// countdown instead of an error on load.
func (d CountdownData) Dates() (start, target time.Time) {
	start, _ = time.Parse(DateLayout, d.StartDate)
	target, _ = time.Parse(DateLayout, d.TargetDate)
	return start, target
}

type ImageData struct {
	ImageURL string `json:"imageUrl"`
	Fit      string `json:"fit"`
}

func (ImageData) Kind() ContainerType { return TypeImage }

type TextData struct {
	Content   string `json:"content"`
	FontSize  string `json:"fontSize"`
	Alignment string `json:"alignment"`
}

func (TextData) Kind() ContainerType { return TypeText }

// Container is one persisted dashboard widget. Array order within the stored
// list is display order and must survive every round-trip.
type Container struct {
	ID          string        `json:"id"`
	Type        ContainerType `json:"type"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Height      int           `json:"height"`
	Column      int           `json:"column"`
	CreatedAt   int64         `json:"createdAt"`
	Data        ContainerData `json:"data"`
}

type containerAlias struct {
	ID          string          `json:"id"`
	Type        ContainerType   `json:"type"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Height      int             `json:"height"`
	Column      int             `json:"column"`
	CreatedAt   int64           `json:"createdAt"`
	Data        json.RawMessage `json:"data"`
}

func (c *Container) UnmarshalJSON(raw []byte) error {
	var a containerAlias
	if err := json.Unmarshal(raw, &a); err != nil {
		return err
	}

	data, err := ParseData(a.Type, a.Data)
	if err != nil {
		return err
	}

	*c = Container{
		ID:          a.ID,
		Type:        a.Type,
		Title:       a.Title,
		Description: a.Description,
		Height:      ClampHeight(a.Height),
		Column:      a.Column,
		CreatedAt:   a.CreatedAt,
		Data:        data,
	}
	return nil
}

// ParseData decodes a variant payload for the given container type. An
// unrecognized or empty type decodes as countdown, so records written by a
// newer schema still load instead of failing the whole list.
func ParseData(typ ContainerType, raw []byte) (ContainerData, error) {
	if len(raw) == 0 || string(raw) == "null" {
		raw = []byte("{}")
	}

	switch typ {
	case TypeImage:
		var d ImageData
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("image data: %w", err)
		}
		return d, nil
	case TypeText:
		var d TextData
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("text data: %w", err)
		}
		return d, nil
	default:
		var d CountdownData
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("countdown data: %w", err)
		}
		return d, nil
	}
}

func ClampHeight(h int) int {
	if h < MinHeight {
		return MinHeight
	}
	if h > MaxHeight {
		return MaxHeight
	}
	return h
}

func NewContainerID() string {
	return "c-" + uuid.NewString()
}

func NewTodoID() string {
	return "t-" + uuid.NewString()
}

// Countdown returns the countdown payload of c, nil for other variants.
func (c *Container) Countdown() *CountdownData {
	if d, ok := c.Data.(CountdownData); ok {
		return &d
	}
	return nil
}
