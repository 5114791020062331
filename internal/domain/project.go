package domain

import "time"

// ProjectEntry is one record in the project catalog. Entries are immutable
// once appended; ID is dense and assigned in insertion order starting at 0.
type ProjectEntry struct {
	ID         int       `json:"id"`
	Title      string    `json:"title"`
	ContentRef string    `json:"content_ref"`
	CreatedAt  time.Time `json:"created_at"`
}
