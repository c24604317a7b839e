package entities

import "time"

// Profile is the public identity of a user. AvatarKey is the object key
// inside the avatars bucket; the resolved public URL is attached when
// the profile crosses the API boundary.
type Profile struct {
	ID        string    `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Website   string    `json:"website" db:"website"`
	AvatarKey string    `json:"-" db:"avatar_url"`
	AvatarURL string    `json:"avatar_url"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
