package models

import (
	"errors"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gookit/validate"
)

// Draft is a create request as collected by the editor. Validation runs
// before any persistence attempt; a rejected draft never writes.
type Draft struct {
	Type        ContainerType `json:"type" validate:"in:countdown,image,text"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Height      int           `json:"height" validate:"int|max:5"`
	Column      *int          `json:"column"`
	Data        ContainerData `json:"data"`
}

type draftAlias struct {
	Type        ContainerType   `json:"type"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Height      int             `json:"height"`
	Column      *int            `json:"column"`
	Data        json.RawMessage `json:"data"`
}

func DecodeDraft(raw []byte) (Draft, error) {
	var a draftAlias
	if err := json.Unmarshal(raw, &a); err != nil {
		return Draft{}, err
	}
	if a.Type == "" {
		a.Type = TypeCountdown
	}

	data, err := ParseData(a.Type, a.Data)
	if err != nil {
		return Draft{}, err
	}

	return Draft{
		Type:        a.Type,
		Title:       a.Title,
		Description: a.Description,
		Height:      a.Height,
		Column:      a.Column,
		Data:        data,
	}, nil
}

var (
	ErrMissingDate      = errors.New("countdown requires a start and a target date")
	ErrInvertedRange    = errors.New("target date must be after the start date")
	ErrMissingImageURL  = errors.New("image requires a source url")
	ErrUnknownDataShape = errors.New("data payload does not match the container type")
)

// Validate rejects a draft before it reaches the store.
func (d Draft) Validate() error {
	v := validate.Struct(d)
	if !v.Validate() {
		return v.Errors
	}

	switch data := d.Data.(type) {
	case CountdownData:
		start, err := time.Parse(DateLayout, data.StartDate)
		if err != nil {
			return ErrMissingDate
		}
		target, err := time.Parse(DateLayout, data.TargetDate)
		if err != nil {
			return ErrMissingDate
		}
		if !target.After(start) {
			return ErrInvertedRange
		}
	case ImageData:
		if data.ImageURL == "" {
			return ErrMissingImageURL
		}
	case TextData:
		// nothing required
	default:
		return ErrUnknownDataShape
	}
	return nil
}
