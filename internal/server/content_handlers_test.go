package server

import (
	"net/http"
	"testing"

	"sangrachna/internal/models"
	"sangrachna/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoemSubmissionModerationAndFeed(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.public(t, http.MethodPost, "/api/poems", map[string]any{
		"title":   "Dawn",
		"content": "First light on the river",
		"author":  "Asha",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	poem := decode[models.Poem](t, body)
	assert.Equal(t, models.ContentStatusPending, poem.Status)

	_, body = env.public(t, http.MethodGet, "/api/poems", nil)
	assert.Empty(t, decode[[]models.FeedItem](t, body), "pending poems stay off the feed")

	resp, body = env.admin(t, http.MethodPost, "/api/admin/poems/"+poem.ID.String()+"/status", map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	tr := decode[transitionResponse](t, body)
	require.NotNil(t, tr.Record)
	assert.Equal(t, models.ContentStatusApproved, tr.Record.Status)
	assert.NotNil(t, tr.Record.PublishedAt)
	assert.Nil(t, tr.Request)

	_, body = env.public(t, http.MethodGet, "/api/poems", nil)
	feed := decode[[]models.FeedItem](t, body)
	require.Len(t, feed, 1)
	assert.Equal(t, "Dawn", feed[0].Title)
	assert.Equal(t, 0, feed[0].LikesCount)
}

func TestToggleLikeEndpoint(t *testing.T) {
	env := newTestEnv(t)
	poem := testutil.CreatePoem(t, env.db, "Kite", "Sunil", models.ContentStatusApproved)
	path := "/api/poems/" + poem.ID.String() + "/like"

	resp, body := env.public(t, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.JSONEq(t, `{"user_liked":true,"likes_count":1}`, string(body))

	_, body = env.public(t, http.MethodPost, path, nil)
	assert.JSONEq(t, `{"user_liked":false,"likes_count":0}`, string(body))

	pending := testutil.CreatePoem(t, env.db, "Draft", "Anon", models.ContentStatusPending)
	resp, _ = env.public(t, http.MethodPost, "/api/poems/"+pending.ID.String()+"/like", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.public(t, http.MethodPost, "/api/poems/not-a-uuid/like", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSubmitPendownEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.public(t, http.MethodPost, "/api/pendown", map[string]any{
		"title":   "On Translation",
		"content": "Long form",
		"author":  "Editorial Board",
		"tags":    []string{"Essay", "essay"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	post := decode[models.PendownPost](t, body)
	assert.Equal(t, []string{"essay"}, post.Tags)

	resp, body = env.public(t, http.MethodPost, "/api/pendown", map[string]any{"title": "No body"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errResp := decode[models.ErrorResponse](t, body)
	assert.Equal(t, models.CodeValidation, errResp.Code)
}

func TestContentTransitionErrors(t *testing.T) {
	env := newTestEnv(t)
	post := testutil.CreatePendown(t, env.db, "Letters", models.ContentStatusPending)
	path := "/api/admin/pendown/" + post.ID.String() + "/status"

	resp, _ := env.public(t, http.MethodPost, path, map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, path, map[string]string{"status": "approved"}, "garbage")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := env.admin(t, http.MethodPost, path, map[string]string{"status": "pending"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, models.CodeValidation, decode[models.ErrorResponse](t, body).Code)

	resp, body = env.admin(t, http.MethodPost, "/api/admin/pendown/"+uuid.NewString()+"/status", map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, models.CodeNotFound, decode[models.ErrorResponse](t, body).Code)

	resp, body = env.admin(t, http.MethodPost, path, map[string]string{"status": "rejected"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Nil(t, decode[transitionResponse](t, body).Record.PublishedAt)
}

func TestAdminContentListAndDelete(t *testing.T) {
	env := newTestEnv(t)
	poem := testutil.CreatePoem(t, env.db, "One", "A", models.ContentStatusPending)
	testutil.CreatePoem(t, env.db, "Two", "B", models.ContentStatusRejected)
	testutil.CreatePendown(t, env.db, "Essay", models.ContentStatusApproved)

	resp, body := env.admin(t, http.MethodGet, "/api/admin/poems", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]models.Poem](t, body), 2)

	_, body = env.admin(t, http.MethodGet, "/api/admin/pendown", nil)
	assert.Len(t, decode[[]models.PendownPost](t, body), 1)

	resp, _ = env.admin(t, http.MethodDelete, "/api/admin/poems/"+poem.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = env.admin(t, http.MethodDelete, "/api/admin/poems/"+poem.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
