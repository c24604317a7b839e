package dto

// ErrorResponse is the wire shape of every failure. Form is present only
// for validation failures and maps field names to their messages so the
// client can attach them to the originating inputs.
type ErrorResponse struct {
	Message string            `json:"message"`
	Form    map[string]string `json:"form,omitempty"`
}
