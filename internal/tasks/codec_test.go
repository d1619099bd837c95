package tasks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	list := []Task{
		{ID: "c", Text: "newest", CreatedAt: time.Date(2024, 5, 3, 8, 0, 0, 123456789, time.UTC)},
		{ID: "b", Text: "middle", Completed: true, CreatedAt: time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)},
		{ID: "a", Text: "oldest", CreatedAt: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)},
	}

	data, err := Encode(list)
	require.NoError(t, err)
	got, err := Decode(data)
	require.NoError(t, err)

	assert.Equal(t, list, got)
}

func TestEncode_RecordShape(t *testing.T) {
	data, err := Encode([]Task{{ID: "1", Text: "x", CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1","text":"x","completed":false,"createdAt":"2024-01-02T03:04:05Z"}]`, string(data))
}

func TestDecode_Empty(t *testing.T) {
	got, err := Decode([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecode_Rejects(t *testing.T) {
	cases := map[string]string{
		"not json":     `nope`,
		"object":       `{"id":"1"}`,
		"missing id":   `[{"text":"x"}]`,
		"blank text":   `[{"id":"1","text":"  "}]`,
		"duplicate id": `[{"id":"1","text":"a"},{"id":"1","text":"b"}]`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(in))
			assert.Error(t, err)
		})
	}
}

func TestParseFilter(t *testing.T) {
	for in, want := range map[string]Filter{
		"":          FilterAll,
		"All":       FilterAll,
		"completed": FilterCompleted,
		"done":      FilterCompleted,
		" pending ": FilterPending,
	} {
		got, err := ParseFilter(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFilter("archived")
	assert.Error(t, err)
}
