package user

import "time"

type User struct {
	ID        string    `json:"id"`
	Sub       string    `json:"sub"`
	Nickname  string    `json:"nickname"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Picture   string    `json:"picture,omitempty"`
	Bio       string    `json:"bio"`
	CreatedAt time.Time `json:"createdAt"`
}

// Profile is what other users see. It leaves out the identity subject and
// email.
type Profile struct {
	ID        string    `json:"id"`
	Nickname  string    `json:"nickname"`
	Name      string    `json:"name"`
	Picture   string    `json:"picture,omitempty"`
	Bio       string    `json:"bio"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) Profile() *Profile {
	return &Profile{
		ID:        u.ID,
		Nickname:  u.Nickname,
		Name:      u.Name,
		Picture:   u.Picture,
		Bio:       u.Bio,
		CreatedAt: u.CreatedAt,
	}
}

// Author is the snapshot of a user embedded in posts and feed entries.
func (u *User) Author() Author {
	return Author{
		ID:       u.ID,
		Nickname: u.Nickname,
		Name:     u.Name,
		Picture:  u.Picture,
	}
}

type Author struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Name     string `json:"name,omitempty"`
	Picture  string `json:"picture,omitempty"`
}

type DeviceToken struct {
	UserID    string    `json:"userId"`
	Token     string    `json:"token"`
	Platform  string    `json:"platform"`
	UpdatedAt time.Time `json:"updatedAt"`
}
