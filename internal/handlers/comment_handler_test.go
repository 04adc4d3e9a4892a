package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/miniblog/backend/internal/models"
)

func TestCreateComment(t *testing.T) {
	env := newTestEnv(t)
	author, token := env.newUser(t, "alice")

	rec := env.do(t, http.MethodPost, "/api/v1/posts", token, map[string]interface{}{"text": "post"})
	var post models.Post
	if err := json.Unmarshal(rec.Body.Bytes(), &post); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = env.do(t, http.MethodPost, "/api/v1/posts/"+post.ID.Hex()+"/comments", token, map[string]interface{}{"text": "well said"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("comment code %d: %s", rec.Code, rec.Body.String())
	}

	if len(env.comments.comments) != 1 {
		t.Fatalf("%d comments stored", len(env.comments.comments))
	}
	stored := env.comments.comments[0]
	if stored.PostID != post.ID.Hex() || stored.AuthorID != author.ID || stored.Text != "well said" {
		t.Fatalf("stored comment %+v", stored)
	}
}

func TestCreateCommentInvalidBodyPersistsNothing(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.newUser(t, "alice")

	rec := env.do(t, http.MethodPost, "/api/v1/posts", token, map[string]interface{}{"text": "post"})
	var post models.Post
	if err := json.Unmarshal(rec.Body.Bytes(), &post); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = env.do(t, http.MethodPost, "/api/v1/posts/"+post.ID.Hex()+"/comments", token, map[string]interface{}{"text": ""})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty comment code %d, want 400", rec.Code)
	}
	if len(env.comments.comments) != 0 {
		t.Fatalf("invalid comment was persisted: %+v", env.comments.comments)
	}
}

func TestCreateCommentOnMissingPostIs404(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.newUser(t, "alice")

	rec := env.do(t, http.MethodPost, "/api/v1/posts/ffffffffffffffffffffffff/comments", token, map[string]interface{}{"text": "hello?"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("code %d, want 404", rec.Code)
	}
	if len(env.comments.comments) != 0 {
		t.Fatalf("comment persisted for missing post")
	}
}

func TestCreateCommentRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/posts/ffffffffffffffffffffffff/comments", "", map[string]interface{}{"text": "anon"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("code %d, want 401", rec.Code)
	}
}
