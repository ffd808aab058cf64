package post

import "liftingLadsAPI/internal/user"

// NewPost is what the ledger needs to append a record for an owner.
type NewPost struct {
	MediaURL    string
	MediaKind   MediaKind
	Description string
	PostType    string
	Tags        []string
}

type AddPostRequest struct {
	UserInfo    *user.UserInfo `json:"userInfo"`
	Nickname    string         `json:"nickname"`
	Description string         `json:"description"`
	PostType    string         `json:"postType"`
	Tags        []string       `json:"tags"`
}

type UploadImageResponse struct {
	ImageURL string `json:"imageUrl"`
}

type UploadVideoResponse struct {
	VideoURL string `json:"videoUrl"`
}
