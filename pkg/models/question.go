package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Question is the incoming natural-language input. At least one of Text or
// Hash must be present; Hash is derived from Text when absent.
type Question struct {
	Text string
	Hash string
	Page int
}

// HashText returns the one-way hash used to key questions and embedding
// records: sha256 over the trimmed text, hex encoded.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(text)))
	return hex.EncodeToString(sum[:])
}

// Normalize trims the text, defaults the page to 1 and fills in the hash
// when only text was supplied.
func (q *Question) Normalize() {
	q.Text = strings.TrimSpace(q.Text)
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Hash == "" && q.Text != "" {
		q.Hash = HashText(q.Text)
	}
}

// Valid reports whether the question carries enough to look anything up.
func (q *Question) Valid() bool {
	return q.Text != "" || q.Hash != ""
}
