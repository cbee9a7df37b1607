package models

import (
	json "github.com/goccy/go-json"
)

// ContainerPatch is a shallow partial update. Nil fields are left untouched;
// a non-nil Data replaces the whole payload, it does not deep-merge. The
// container type is immutable, so a patch carries no type field.
type ContainerPatch struct {
	Title       *string
	Description *string
	Height      *int
	Column      *int
	Data        ContainerData
}

type patchAlias struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Height      *int            `json:"height"`
	Column      *int            `json:"column"`
	Data        json.RawMessage `json:"data"`
}

// DecodePatch decodes a wire patch. The payload, if present, is decoded
// against the target container's existing type.
func DecodePatch(typ ContainerType, raw []byte) (ContainerPatch, error) {
	var a patchAlias
	if err := json.Unmarshal(raw, &a); err != nil {
		return ContainerPatch{}, err
	}

	p := ContainerPatch{
		Title:       a.Title,
		Description: a.Description,
		Height:      a.Height,
		Column:      a.Column,
	}
	if len(a.Data) > 0 && string(a.Data) != "null" {
		data, err := ParseData(typ, a.Data)
		if err != nil {
			return ContainerPatch{}, err
		}
		p.Data = data
	}
	return p, nil
}

// Apply merges the patch onto c. Height is clamped on every mutation.
func (p ContainerPatch) Apply(c *Container) {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Height != nil {
		c.Height = ClampHeight(*p.Height)
	}
	if p.Column != nil {
		c.Column = *p.Column
	}
	if p.Data != nil {
		c.Data = p.Data
	}
}
