package user

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// UserInfo is the identity payload sent by the client after sign-in. The
// field names follow the identity provider's userinfo claims.
type UserInfo struct {
	Sub      string `json:"sub"`
	Nickname string `json:"nickname"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Picture  string `json:"picture,omitempty"`
	Bio      string `json:"bio,omitempty"`
}

// UnmarshalJSON accepts either an object or a JSON string holding an object,
// since multipart uploads send userInfo as a string form field.
func (u *UserInfo) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		data = []byte(raw)
	}

	type plain UserInfo
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("invalid userInfo: %w", err)
	}
	*u = UserInfo(p)
	u.Sub = strings.TrimSpace(u.Sub)
	u.Nickname = strings.TrimSpace(u.Nickname)
	return nil
}

// ParseUserInfo decodes a userInfo form field.
func ParseUserInfo(raw string) (*UserInfo, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var info UserInfo
	if err := info.UnmarshalJSON([]byte(raw)); err != nil {
		return nil, err
	}
	return &info, nil
}

type SaveUserRequest struct {
	UserInfo *UserInfo `json:"userInfo"`
}

type RegisterDeviceRequest struct {
	Nickname string `json:"nickname"`
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

type ProfileQRResponse struct {
	UserID       string `json:"userId"`
	Nickname     string `json:"nickname"`
	DeepLink     string `json:"deepLink"`
	QrCodeBase64 string `json:"qrCodeBase64"`
}
