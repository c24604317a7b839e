package entities

import "time"

type Document struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	ProjectID string    `json:"project_id" db:"project_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// HistoryEntry is one revision of a document's content. The log is
// append-only: the current content is the entry with the greatest
// UpdatedAt, nothing else marks it as current.
type HistoryEntry struct {
	ID         string    `json:"id" db:"id"`
	DocumentID string    `json:"document_id" db:"document_id"`
	Content    string    `json:"content" db:"content"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
	UpdatedBy  string    `json:"updated_by" db:"updated_by"`
}

// DocumentView is the document as served by the API: stable fields plus
// the latest revision and the document team. Content is empty in list
// responses, which only carry the revision timestamp.
type DocumentView struct {
	Document
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy Member    `json:"updated_by"`
	Team      Team      `json:"team"`
}
