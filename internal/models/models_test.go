package models

import (
	"encoding/json"
	"testing"
)

func TestMapComments(t *testing.T) {
	t.Run("keeps author and content only", func(t *testing.T) {
		raw := json.RawMessage(`{
			"commentCount": 2,
			"comments": [
				{"author": "alice", "content": "first", "likeCount": 10, "authorId": "UC1"},
				{"author": "bob", "content": "second", "published": 1700000000}
			]
		}`)

		page, err := MapComments(raw)
		if err != nil {
			t.Fatalf("expected mapping to succeed, got %v", err)
		}
		if len(page.Comments) != 2 {
			t.Fatalf("expected 2 comments, got %d", len(page.Comments))
		}
		if page.Comments[0].Author != "alice" || page.Comments[0].Content != "first" {
			t.Errorf("unexpected first comment: %+v", page.Comments[0])
		}

		out, err := json.Marshal(page)
		if err != nil {
			t.Fatalf("failed to marshal page: %v", err)
		}
		want := `{"comments":[{"author":"alice","content":"first"},{"author":"bob","content":"second"}]}`
		if string(out) != want {
			t.Errorf("unexpected serialized page: %s", out)
		}
	})

	t.Run("drops entries with neither field", func(t *testing.T) {
		raw := json.RawMessage(`{"comments":[{"likeCount":3},{"author":"carol","content":"hi"}]}`)
		page, err := MapComments(raw)
		if err != nil {
			t.Fatalf("expected mapping to succeed, got %v", err)
		}
		if len(page.Comments) != 1 {
			t.Errorf("expected 1 comment, got %d", len(page.Comments))
		}
	})

	t.Run("missing comments key yields empty page", func(t *testing.T) {
		page, err := MapComments(json.RawMessage(`{"commentCount":0}`))
		if err != nil {
			t.Fatalf("expected mapping to succeed, got %v", err)
		}
		if len(page.Comments) != 0 {
			t.Errorf("expected empty page, got %d comments", len(page.Comments))
		}
	})

	t.Run("rejects non-object payload", func(t *testing.T) {
		if _, err := MapComments(json.RawMessage(`[1,2,3]`)); err == nil {
			t.Error("expected error for non-object payload")
		}
	})
}
