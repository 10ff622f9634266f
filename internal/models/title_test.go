package models

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitleEntry_PrependKeepsBlockOrder(t *testing.T) {
	e := NewTitleEntry()
	e.Prepend(VersionRecord{ID: "a"})
	e.Prepend(VersionRecord{ID: "c"}, VersionRecord{ID: "b"})

	ids := make([]string, 0, len(e.Versions))
	for _, v := range e.Versions {
		ids = append(ids, v.ID)
	}
	assert.Equal(t, []string{"c", "b", "a"}, ids)
	assert.True(t, e.HasVersion("b"))
	assert.False(t, e.HasVersion("z"))
}

func TestTitleEntry_PrependNothing(t *testing.T) {
	e := NewTitleEntry()
	e.Prepend()
	assert.NotNil(t, e.Versions)
	assert.Empty(t, e.Versions)
}

func TestTitleEntry_FindVersion(t *testing.T) {
	e := NewTitleEntry()
	e.Prepend(VersionRecord{ID: "a", PatchNotes: "first"})

	rec, ok := e.FindVersion("a")
	require.True(t, ok)
	assert.Equal(t, "first", rec.PatchNotes)

	_, ok = e.FindVersion("b")
	assert.False(t, ok)
}

func TestTitleEntry_CurrentVersion(t *testing.T) {
	e := NewTitleEntry()
	assert.Equal(t, "", e.CurrentVersion())

	v := "42"
	e.Version = &v
	assert.Equal(t, "42", e.CurrentVersion())
}

func TestTitles_EntryCreatesOnce(t *testing.T) {
	titles := Titles{}
	first := titles.Entry("g1")
	first.Prepend(VersionRecord{ID: "x"})

	again := titles.Entry("g1")
	assert.Same(t, first, again)
	assert.Len(t, titles, 1)
}

func TestTitles_EntryRepairsNilVersions(t *testing.T) {
	titles := Titles{"g1": {}}
	assert.NotNil(t, titles.Entry("g1").Versions)
}

func TestTitleEntry_JSONUsesNullForUnset(t *testing.T) {
	data, err := json.Marshal(NewTitleEntry())
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":null,"patchNotes":null,"lastUpdated":null,"versions":[]}`, string(data))
}
