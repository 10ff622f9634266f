package controllers

import (
	"buildwatch/internal/models"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnouncements_CreateListCached(t *testing.T) {
	f := newFixture(t)
	ac := NewAnnouncementController(f.logger, f.announcements, f.cache)

	rr := httptest.NewRecorder()
	ac.Create(rr, jsonRequest(http.MethodPost, "/admin/announcements", `{"title":"Hello","content":"World"}`))
	require.Equal(t, http.StatusCreated, rr.Code)
	var created models.Announcement
	decodeResponse(t, rr, &created)
	assert.Equal(t, models.KindGlobal, created.Kind)
	assert.NotEmpty(t, created.ID)

	rr = httptest.NewRecorder()
	ac.List(rr, httptest.NewRequest(http.MethodGet, "/announcements", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var list []models.Announcement
	decodeResponse(t, rr, &list)
	require.Len(t, list, 1)

	_, cached := f.cache.Data["announcements::"]
	assert.True(t, cached)

	// a write invalidates the cached feed
	rr = httptest.NewRecorder()
	ac.Create(rr, jsonRequest(http.MethodPost, "/admin/announcements", `{"title":"Second","content":"x","kind":"title-specific","titleId":"g1"}`))
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Empty(t, f.cache.Data)

	rr = httptest.NewRecorder()
	ac.List(rr, httptest.NewRequest(http.MethodGet, "/announcements?kind=title-specific&titleId=g1", nil))
	decodeResponse(t, rr, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Second", list[0].Title)
}

func TestAnnouncements_ServedFromCache(t *testing.T) {
	f := newFixture(t)
	ac := NewAnnouncementController(f.logger, f.announcements, f.cache)
	f.cache.Set("announcements:global:", []byte(`[{"id":"cached"}]`))

	rr := httptest.NewRecorder()
	ac.List(rr, httptest.NewRequest(http.MethodGet, "/announcements?kind=global", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[{"id":"cached"}]`, rr.Body.String())
}

func TestAnnouncements_CreateInvalid(t *testing.T) {
	f := newFixture(t)
	ac := NewAnnouncementController(f.logger, f.announcements, f.cache)

	rr := httptest.NewRecorder()
	ac.Create(rr, jsonRequest(http.MethodPost, "/admin/announcements", `{"content":"no title"}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAnnouncements_EditDelete(t *testing.T) {
	f := newFixture(t)
	ac := NewAnnouncementController(f.logger, f.announcements, f.cache)
	a, err := f.announcements.Create(servicesAnnouncement("t", "c"))
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	ac.Edit(rr, withURLParams(jsonRequest(http.MethodPut, "/admin/announcements/"+a.ID, `{"title":"new"}`), "id", a.ID))
	require.Equal(t, http.StatusOK, rr.Code)
	var edited models.Announcement
	decodeResponse(t, rr, &edited)
	assert.Equal(t, "new", edited.Title)
	assert.Equal(t, "c", edited.Content)

	rr = httptest.NewRecorder()
	ac.Edit(rr, withURLParams(jsonRequest(http.MethodPut, "/admin/announcements/missing", `{"title":"new"}`), "id", "missing"))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	ac.Delete(rr, withURLParams(httptest.NewRequest(http.MethodDelete, "/admin/announcements/"+a.ID, nil), "id", a.ID))
	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Success bool                `json:"success"`
		Removed models.Announcement `json:"removed"`
	}
	decodeResponse(t, rr, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, a.ID, resp.Removed.ID)

	rr = httptest.NewRecorder()
	ac.Delete(rr, withURLParams(httptest.NewRequest(http.MethodDelete, "/admin/announcements/"+a.ID, nil), "id", a.ID))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
