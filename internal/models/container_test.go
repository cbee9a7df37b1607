package models

import (
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainer_JSONRoundtrip_Countdown(t *testing.T) {
	original := Container{
		ID:        "c-1",
		Type:      TypeCountdown,
		Title:     "Sabbatical",
		Height:    3,
		Column:    1,
		CreatedAt: 1700000000000,
		Data: CountdownData{
			StartDate:  "2024-01-01",
			TargetDate: "2024-06-01",
			Todos:      []TodoItem{{ID: "t-1", Text: "book flight", Completed: true}},
			ShowTodos:  true,
		},
	}

	raw, err := json.Marshal(original)
	require.NoError(t, err)

	var restored Container
	require.NoError(t, json.Unmarshal(raw, &restored))
	assert.Equal(t, original, restored)
}

func TestContainer_JSONRoundtrip_ImageAndText(t *testing.T) {
	image := Container{ID: "c-2", Type: TypeImage, Height: 2, Data: ImageData{ImageURL: "https://example.com/x.png", Fit: "cover"}}
	text := Container{ID: "c-3", Type: TypeText, Height: 2, Data: TextData{Content: "hello", FontSize: "large", Alignment: "center"}}

	for _, original := range []Container{image, text} {
		raw, err := json.Marshal(original)
		require.NoError(t, err)

		var restored Container
		require.NoError(t, json.Unmarshal(raw, &restored))
		assert.Equal(t, original, restored)
	}
}

func TestContainer_UnknownTypeDecodesAsCountdown(t *testing.T) {
	raw := `{"id":"c-9","type":"hologram","height":2,"data":{"startDate":"2024-01-01","targetDate":"2024-02-01"}}`

	var c Container
	require.NoError(t, json.Unmarshal([]byte(raw), &c))

	data, ok := c.Data.(CountdownData)
	require.True(t, ok)
	assert.Equal(t, "2024-01-01", data.StartDate)
}

func TestContainer_MissingDataDecodesToZeroPayload(t *testing.T) {
	raw := `{"id":"c-9","type":"text","height":2}`

	var c Container
	require.NoError(t, json.Unmarshal([]byte(raw), &c))

	data, ok := c.Data.(TextData)
	require.True(t, ok)
	assert.Equal(t, TextData{}, data)
}

func TestContainer_HeightClampedOnLoad(t *testing.T) {
	var c Container
	require.NoError(t, json.Unmarshal([]byte(`{"id":"c-1","type":"text","height":9,"data":{}}`), &c))
	assert.Equal(t, MaxHeight, c.Height)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"c-1","type":"text","height":-2,"data":{}}`), &c))
	assert.Equal(t, MinHeight, c.Height)
}

func TestClampHeight(t *testing.T) {
	assert.Equal(t, 5, ClampHeight(7))
	assert.Equal(t, 1, ClampHeight(0))
	assert.Equal(t, 3, ClampHeight(3))
}

func TestCountdownData_DatesDegradeToZero(t *testing.T) {
	start, target := CountdownData{StartDate: "garbage", TargetDate: ""}.Dates()
	assert.True(t, start.IsZero())
	assert.True(t, target.IsZero())
}

func TestNewContainerID_UniquePrefixed(t *testing.T) {
	a, b := NewContainerID(), NewContainerID()
	assert.True(t, strings.HasPrefix(a, "c-"))
	assert.NotEqual(t, a, b)
}

func TestPatch_ShallowMerge(t *testing.T) {
	c := Container{
		ID:     "c-1",
		Type:   TypeCountdown,
		Title:  "old",
		Height: 2,
		Data:   CountdownData{StartDate: "2024-01-01", TargetDate: "2024-02-01", ShowTodos: true},
	}

	title := "new"
	patch, err := DecodePatch(c.Type, []byte(`{"title":"new"}`))
	require.NoError(t, err)
	patch.Apply(&c)

	assert.Equal(t, title, c.Title)
	assert.Equal(t, 2, c.Height)
	assert.Equal(t, "2024-01-01", c.Data.(CountdownData).StartDate)
}

func TestPatch_DataReplacesWholePayload(t *testing.T) {
	c := Container{
		ID:   "c-1",
		Type: TypeCountdown,
		Data: CountdownData{StartDate: "2024-01-01", TargetDate: "2024-02-01", ShowTodos: true},
	}

	patch, err := DecodePatch(c.Type, []byte(`{"data":{"startDate":"2024-03-01","targetDate":"2024-04-01"}}`))
	require.NoError(t, err)
	patch.Apply(&c)

	data := c.Data.(CountdownData)
	assert.Equal(t, "2024-03-01", data.StartDate)
	// the old payload's fields are gone, not merged
	assert.False(t, data.ShowTodos)
}

func TestPatch_HeightClamped(t *testing.T) {
	c := Container{ID: "c-1", Type: TypeText, Height: 2, Data: TextData{}}

	patch, err := DecodePatch(c.Type, []byte(`{"height":7}`))
	require.NoError(t, err)
	patch.Apply(&c)

	assert.Equal(t, 5, c.Height)
}

func TestDraft_Validate_CountdownDates(t *testing.T) {
	draft := Draft{
		Type: TypeCountdown,
		Data: CountdownData{StartDate: "2024-01-01", TargetDate: "2024-02-01"},
	}
	assert.NoError(t, draft.Validate())

	draft.Data = CountdownData{StartDate: "2024-02-01", TargetDate: "2024-01-01"}
	assert.ErrorIs(t, draft.Validate(), ErrInvertedRange)

	draft.Data = CountdownData{StartDate: "2024-02-01", TargetDate: "2024-02-01"}
	assert.ErrorIs(t, draft.Validate(), ErrInvertedRange)

	draft.Data = CountdownData{TargetDate: "2024-02-01"}
	assert.ErrorIs(t, draft.Validate(), ErrMissingDate)
}

func TestDraft_Validate_ImageRequiresURL(t *testing.T) {
	draft := Draft{Type: TypeImage, Data: ImageData{}}
	assert.ErrorIs(t, draft.Validate(), ErrMissingImageURL)

	draft.Data = ImageData{ImageURL: "https://example.com/a.png"}
	assert.NoError(t, draft.Validate())
}

func TestDecodeDraft_DefaultsToCountdown(t *testing.T) {
	draft, err := DecodeDraft([]byte(`{"title":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, TypeCountdown, draft.Type)
	_, ok := draft.Data.(CountdownData)
	assert.True(t, ok)
}
