package dto

type ProfileUpdateRequest struct {
	Username *string `json:"username"`
	Website  *string `json:"website"`
}

type AvatarResponse struct {
	AvatarURL string `json:"avatar_url"`
}
