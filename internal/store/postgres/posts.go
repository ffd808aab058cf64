package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"liftingLadsAPI/internal/post"
	"liftingLadsAPI/internal/store"
)

func (s *Store) InsertPost(ctx context.Context, p *post.Post) error {
	ownerID, err := uuid.Parse(p.OwnerID)
	if err != nil {
		return store.ErrNotFound
	}
	postID := uuid.New()
	if p.ID != "" {
		if postID, err = uuid.Parse(p.ID); err != nil {
			return fmt.Errorf("invalid post id %q: %w", p.ID, err)
		}
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.MediaKind == "" {
		p.MediaKind = post.MediaNone
	}

	query := `
	INSERT INTO posts (id, owner_id, media_url, media_kind, description, post_type, tags, author, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = s.db.Exec(
		ctx,
		query,
		postID,
		ownerID,
		p.ImageURL,
		string(p.MediaKind),
		p.Description,
		string(p.PostType),
		p.Tags,
		p.Author,
		p.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrNotFound
		}
		return fmt.Errorf("failed to insert post: %w", err)
	}
	p.ID = postID.String()
	return nil
}

func (s *Store) ListPostsByOwner(ctx context.Context, ownerID string) ([]*post.Post, error) {
	id, err := uuid.Parse(ownerID)
	if err != nil {
		return []*post.Post{}, nil
	}

	query := `
	SELECT id::text, owner_id::text, media_url, media_kind, description, post_type, tags, author, created_at
	FROM posts
	WHERE owner_id = $1
	ORDER BY created_at DESC
	`

	rows, err := s.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := []*post.Post{}
	for rows.Next() {
		p := &post.Post{}
		var mediaKind, postType string
		err := rows.Scan(
			&p.ID,
			&p.OwnerID,
			&p.ImageURL,
			&mediaKind,
			&p.Description,
			&postType,
			&p.Tags,
			&p.Author,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		p.MediaKind = post.MediaKind(mediaKind)
		p.PostType = post.PostType(postType)
		posts = append(posts, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}
	return posts, nil
}
