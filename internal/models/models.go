// package models defines the thin response types the front-end exposes to
// its own clients. Most upstream payloads pass through untouched; only
// comments are reshaped, matching what the page JavaScript expects.
package models

import (
	"encoding/json"
	"fmt"
)

// Comment is a single reshaped upstream comment.
type Comment struct {
	Author  string `json:"author"`
	Content string `json:"content"`
}

// CommentPage is the response body served for comment lookups.
type CommentPage struct {
	Comments []Comment `json:"comments"`
}

// MapComments reshapes a raw Invidious comments payload into a CommentPage,
// keeping only the author and content fields of each comment. Comments
// missing both fields are dropped.
func MapComments(raw json.RawMessage) (*CommentPage, error) {
	var doc struct {
		Comments []struct {
			Author  string `json:"author"`
			Content string `json:"content"`
		} `json:"comments"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode comments payload: %w", err)
	}

	page := &CommentPage{Comments: make([]Comment, 0, len(doc.Comments))}
	for _, c := range doc.Comments {
		if c.Author == "" && c.Content == "" {
			continue
		}
		page.Comments = append(page.Comments, Comment{Author: c.Author, Content: c.Content})
	}
	return page, nil
}
