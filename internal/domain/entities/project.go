package entities

import "time"

type Project struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Owner     string    `json:"owner" db:"owner"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DocumentSummary is the denormalized document preview embedded in
// project listings.
type DocumentSummary struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// ProjectView is the project as served by the API: the row itself plus
// its document summaries and a team preview.
type ProjectView struct {
	Project
	Documents []DocumentSummary `json:"documents"`
	Team      Team              `json:"team"`
}
