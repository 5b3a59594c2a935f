package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	announcementdomain "github.com/hintboard/hintboard/internal/announcement/domain"
)

func seedAnnouncement(f *serverFixture, published bool) *announcementdomain.Announcement {
	a := &announcementdomain.Announcement{
		ID:       testAnnouncementID,
		OrgID:    testOrgID,
		AuthorID: testAdminID,
		Title:    "Maintenance window",
		Body:     "Saturday 02:00 UTC",
	}
	if published {
		now := time.Now()
		a.PublishedAt = &now
	}
	f.anns.announcements[a.ID] = a
	return a
}

func TestListAnnouncementsHidesDraftsFromGuests(t *testing.T) {
	f := newServerFixture()
	seedAnnouncement(f, false)

	resp := f.request(http.MethodGet, "acme.localhost", "/api/announcements", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.NotContains(t, resp.Body.String(), "Maintenance window")

	// include_drafts is ignored for non-admins.
	resp = f.request(http.MethodGet, "acme.localhost", "/api/announcements?include_drafts=true", testMemberToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.NotContains(t, resp.Body.String(), "Maintenance window")
}

func TestListAnnouncementsAdminSeesDrafts(t *testing.T) {
	f := newServerFixture()
	seedAnnouncement(f, false)

	resp := f.request(http.MethodGet, "acme.localhost", "/api/announcements?include_drafts=true", testAdminToken, nil)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Maintenance window")
}

func TestGetDraftAnnouncementHiddenFromMembers(t *testing.T) {
	f := newServerFixture()
	a := seedAnnouncement(f, false)

	resp := f.request(http.MethodGet, "acme.localhost", "/api/announcements/"+a.ID.String(), testMemberToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = f.request(http.MethodGet, "acme.localhost", "/api/announcements/"+a.ID.String(), testAdminToken, nil)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestAnnouncementWritesAreAdminOnly(t *testing.T) {
	f := newServerFixture()

	body := bytes.NewBufferString(`{"title":"New roadmap","body":"Q4 plans"}`)
	resp := f.request(http.MethodPost, "acme.localhost", "/api/announcements", testMemberToken, body)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	body = bytes.NewBufferString(`{"title":"New roadmap","body":"Q4 plans"}`)
	resp = f.request(http.MethodPost, "acme.localhost", "/api/announcements", testAdminToken, body)
	require.Equal(t, http.StatusCreated, resp.Code)

	var created announcementdomain.Announcement
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	assert.Equal(t, "New roadmap", created.Title)
	assert.Equal(t, testAdminID, created.AuthorID)
}

func TestPublishAndUnpublishAnnouncement(t *testing.T) {
	f := newServerFixture()
	a := seedAnnouncement(f, false)

	resp := f.request(http.MethodPost, "acme.localhost", "/api/announcements/"+a.ID.String()+"/publish", testAdminToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "published_at")

	resp = f.request(http.MethodPost, "acme.localhost", "/api/announcements/"+a.ID.String()+"/unpublish", testAdminToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.NotContains(t, resp.Body.String(), "published_at")
}

func TestDeleteAnnouncement(t *testing.T) {
	f := newServerFixture()
	a := seedAnnouncement(f, true)

	resp := f.request(http.MethodDelete, "acme.localhost", "/api/announcements/"+a.ID.String(), testAdminToken, nil)
	require.Equal(t, http.StatusNoContent, resp.Code)

	resp = f.request(http.MethodGet, "acme.localhost", "/api/announcements/"+a.ID.String(), testAdminToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
