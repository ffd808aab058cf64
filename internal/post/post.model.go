package post

import (
	"time"

	"liftingLadsAPI/internal/user"
)

type PostType string

const (
	TypeLive PostType = "live"
	TypeLift PostType = "lift"
	TypePR   PostType = "pr"
)

// ParseType normalises a client supplied post type. Empty means live.
func ParseType(s string) (PostType, bool) {
	switch PostType(s) {
	case "", TypeLive, "default":
		return TypeLive, true
	case TypeLift:
		return TypeLift, true
	case TypePR:
		return TypePR, true
	}
	return "", false
}

type MediaKind string

const (
	MediaNone  MediaKind = "none"
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

type Post struct {
	ID          string      `json:"id"`
	OwnerID     string      `json:"ownerId"`
	ImageURL    string      `json:"imageUrl,omitempty"`
	MediaKind   MediaKind   `json:"mediaKind"`
	Description string      `json:"description"`
	PostType    PostType    `json:"postType"`
	Tags        []string    `json:"tags"`
	CreatedAt   time.Time   `json:"createdAt"`
	Author      user.Author `json:"author"`
}

// PostView is the feed projection of a post.
type PostView struct {
	ID        string      `json:"id"`
	Type      PostType    `json:"type"`
	Content   string      `json:"content"`
	ImageURL  string      `json:"imageUrl,omitempty"`
	Tags      []string    `json:"tags"`
	CreatedAt time.Time   `json:"createdAt"`
	Author    user.Author `json:"author"`
}

func (p *Post) View() PostView {
	t := p.PostType
	if t == "" {
		t = TypeLive
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return PostView{
		ID:        p.ID,
		Type:      t,
		Content:   p.Description,
		ImageURL:  p.ImageURL,
		Tags:      tags,
		CreatedAt: p.CreatedAt,
		Author:    p.Author,
	}
}
