package dto

type ProjectCreateRequest struct {
	Name string `json:"name" binding:"required"`
}

type ProjectUpdateRequest struct {
	Name string `json:"name" binding:"required"`
	// RemovedDocs lists document ids the edit dialog marked for deletion.
	RemovedDocs []string `json:"removed_docs"`
}

type ProjectCountResponse struct {
	Count    int      `json:"count"`
	Projects []string `json:"projects"`
}

type ProjectDeleteResponse struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
}
