package services

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/skip2/go-qrcode"

	"liftingLadsAPI/internal/user"
)

const profileDeepLink = "liftinglads://lifting-lad/add/%s"

// ProfileQR renders a "scan to add" QR code for the user's profile.
func (s *UserService) ProfileQR(ctx context.Context, userID string) (*user.ProfileQRResponse, error) {
	u, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	deepLink := fmt.Sprintf(profileDeepLink, u.Nickname)
	pngBytes, err := qrcode.Encode(deepLink, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR png: %w", err)
	}

	return &user.ProfileQRResponse{
		UserID:       u.ID,
		Nickname:     u.Nickname,
		DeepLink:     deepLink,
		QrCodeBase64: base64.StdEncoding.EncodeToString(pngBytes),
	}, nil
}
