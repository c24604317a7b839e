package dto

type DocumentCreateRequest struct {
	Name    string `json:"name" binding:"required"`
	Content string `json:"content"`
}

// DocumentUpdateRequest carries the new revision content and optionally
// a new name. A missing or unchanged name leaves the document as is.
type DocumentUpdateRequest struct {
	Name    *string `json:"name"`
	Content string  `json:"content"`
}

type DocumentCountResponse struct {
	Count int `json:"count"`
}

type DocumentUpdateResponse struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
}
