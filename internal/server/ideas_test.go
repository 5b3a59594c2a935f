package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ideadomain "github.com/hintboard/hintboard/internal/idea/domain"
)

func TestListIdeasReturnsPageInfo(t *testing.T) {
	f := newServerFixture()

	resp := f.request(http.MethodGet, "acme.localhost", "/api/ideas", "", nil)

	require.Equal(t, http.StatusOK, resp.Code)

	var payload struct {
		Ideas    []*ideadomain.Idea `json:"ideas"`
		PageInfo struct {
			HasMore bool `json:"has_more"`
		} `json:"page_info"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	require.Len(t, payload.Ideas, 1)
	assert.Equal(t, "Dark mode", payload.Ideas[0].Title)
	assert.False(t, payload.PageInfo.HasMore)
}

func TestListIdeasRejectsMalformedTopicID(t *testing.T) {
	f := newServerFixture()

	resp := f.request(http.MethodGet, "acme.localhost", "/api/ideas?topic_id=not-a-number", "", nil)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCreateIdeaRequiresAuth(t *testing.T) {
	f := newServerFixture()

	body := bytes.NewBufferString(`{"title":"Faster exports"}`)
	resp := f.request(http.MethodPost, "acme.localhost", "/api/ideas", "", body)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestCreateIdeaAsMember(t *testing.T) {
	f := newServerFixture()

	body := bytes.NewBufferString(`{"title":"Faster exports","description":"CSV takes minutes"}`)
	resp := f.request(http.MethodPost, "acme.localhost", "/api/ideas", testMemberToken, body)

	require.Equal(t, http.StatusCreated, resp.Code)

	var idea ideadomain.Idea
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &idea))
	assert.Equal(t, "Faster exports", idea.Title)
	assert.Equal(t, testMemberID, idea.AuthorID)
	assert.Equal(t, ideadomain.StatusOpen, idea.Status)
}

func TestCreateIdeaEmptyTitleRejected(t *testing.T) {
	f := newServerFixture()
	f.ideas.createErr = ideadomain.ErrInvalidTitle

	body := bytes.NewBufferString(`{"title":"   "}`)
	resp := f.request(http.MethodPost, "acme.localhost", "/api/ideas", testMemberToken, body)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestUpdateIdeaStatusAdminOnly(t *testing.T) {
	f := newServerFixture()

	body := bytes.NewBufferString(`{"status":"planned"}`)
	resp := f.request(http.MethodPatch, "acme.localhost", "/api/ideas/"+testIdeaID.String()+"/status", testMemberToken, body)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	body = bytes.NewBufferString(`{"status":"planned"}`)
	resp = f.request(http.MethodPatch, "acme.localhost", "/api/ideas/"+testIdeaID.String()+"/status", testAdminToken, body)
	require.Equal(t, http.StatusOK, resp.Code)

	var idea ideadomain.Idea
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &idea))
	assert.Equal(t, ideadomain.StatusPlanned, idea.Status)
}

func TestUpdateIdeaStatusUnknownValue(t *testing.T) {
	f := newServerFixture()

	body := bytes.NewBufferString(`{"status":"SHIPPED"}`)
	resp := f.request(http.MethodPatch, "acme.localhost", "/api/ideas/"+testIdeaID.String()+"/status", testAdminToken, body)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestVoteIdea(t *testing.T) {
	f := newServerFixture()

	resp := f.request(http.MethodPost, "acme.localhost", "/api/ideas/"+testIdeaID.String()+"/vote", testMemberToken, nil)

	require.Equal(t, http.StatusOK, resp.Code)

	var idea ideadomain.Idea
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &idea))
	assert.Equal(t, int64(2), idea.VoteCount)
}

func TestVoteIdeaTwiceConflicts(t *testing.T) {
	f := newServerFixture()
	f.ideas.voteErr = ideadomain.ErrAlreadyVoted

	resp := f.request(http.MethodPost, "acme.localhost", "/api/ideas/"+testIdeaID.String()+"/vote", testMemberToken, nil)

	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestUnvoteIdeaWithoutVoteNotFound(t *testing.T) {
	f := newServerFixture()
	f.ideas.ideas[testIdeaID].VoteCount = 0

	resp := f.request(http.MethodDelete, "acme.localhost", "/api/ideas/"+testIdeaID.String()+"/vote", testMemberToken, nil)

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestGetIdeaMalformedIDRejected(t *testing.T) {
	f := newServerFixture()

	resp := f.request(http.MethodGet, "acme.localhost", "/api/ideas/abc", "", nil)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
