package dto

import "github.com/anjerodev/dotenv/internal/domain/entities"

type MemberSearchRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// MemberReconcileRequest is the team dialog's pending edit list as
// submitted on save.
type MemberReconcileRequest struct {
	ProjectID  string                   `json:"project_id" binding:"required"`
	DocumentID string                   `json:"document_id" binding:"required"`
	Members    []entities.PendingMember `json:"members" binding:"required"`
}
