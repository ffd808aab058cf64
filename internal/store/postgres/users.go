package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"liftingLadsAPI/internal/store"
	"liftingLadsAPI/internal/user"
)

const userColumns = `id::text, sub, nickname, name, email, picture, bio, created_at`

func scanUser(row pgx.Row) (*user.User, error) {
	u := &user.User{}
	err := row.Scan(
		&u.ID,
		&u.Sub,
		&u.Nickname,
		&u.Name,
		&u.Email,
		&u.Picture,
		&u.Bio,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*user.User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, store.ErrNotFound
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(s.db.QueryRow(ctx, query, userID))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, err
}

func (s *Store) GetUserBySub(ctx context.Context, sub string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE sub = $1`
	u, err := scanUser(s.db.QueryRow(ctx, query, sub))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to get user by sub: %w", err)
	}
	return u, err
}

func (s *Store) GetUserByNickname(ctx context.Context, nickname string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(nickname) = LOWER($1)`
	u, err := scanUser(s.db.QueryRow(ctx, query, nickname))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to get user by nickname: %w", err)
	}
	return u, err
}

func (s *Store) CreateUser(ctx context.Context, u *user.User) (*user.User, bool, error) {
	id := uuid.New()
	if u.ID != "" {
		parsed, err := uuid.Parse(u.ID)
		if err != nil {
			return nil, false, fmt.Errorf("invalid user id %q: %w", u.ID, err)
		}
		id = parsed
	}
	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `
	INSERT INTO users (id, sub, nickname, name, email, picture, bio, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (sub) DO NOTHING
	RETURNING ` + userColumns

	created, err := scanUser(s.db.QueryRow(
		ctx,
		query,
		id,
		u.Sub,
		u.Nickname,
		u.Name,
		u.Email,
		u.Picture,
		u.Bio,
		createdAt,
	))
	switch {
	case err == nil:
		return created, true, nil
	case errors.Is(err, store.ErrNotFound):
		// Lost the race against another sign-in for the same sub.
		existing, err := s.GetUserBySub(ctx, u.Sub)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	case isUniqueViolation(err, "users_nickname_lower_idx"):
		return nil, false, store.ErrNicknameTaken
	default:
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}
}

func (s *Store) SearchUsers(ctx context.Context, query string) ([]*user.User, error) {
	pattern := "%" + escapeLike(strings.TrimSpace(query)) + "%"

	sqlQuery := `
	SELECT ` + userColumns + `
	FROM users
	WHERE nickname ILIKE $1 ESCAPE '\'
	ORDER BY LOWER(nickname)
	`

	rows, err := s.db.Query(ctx, sqlQuery, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	users := []*user.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return users, nil
}

func (s *Store) UpsertDeviceToken(ctx context.Context, token *user.DeviceToken) error {
	userID, err := uuid.Parse(token.UserID)
	if err != nil {
		return store.ErrNotFound
	}

	query := `
	INSERT INTO device_tokens (token, user_id, platform, updated_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT (token) DO UPDATE
	SET user_id = EXCLUDED.user_id, platform = EXCLUDED.platform, updated_at = NOW()
	`
	if _, err := s.db.Exec(ctx, query, token.Token, userID, token.Platform); err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrNotFound
		}
		return fmt.Errorf("failed to save device token: %w", err)
	}
	return nil
}

func (s *Store) ListDeviceTokens(ctx context.Context, userID string) ([]user.DeviceToken, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, store.ErrNotFound
	}

	rows, err := s.db.Query(ctx, `
	SELECT user_id::text, token, platform, updated_at
	FROM device_tokens
	WHERE user_id = $1
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []user.DeviceToken
	for rows.Next() {
		var t user.DeviceToken
		if err := rows.Scan(&t.UserID, &t.Token, &t.Platform, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
