package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"liftingLadsAPI/internal/liftinglad"
	"liftingLadsAPI/internal/store"
)

const requestSelect = `
	SELECT r.id::text, r.requester_id::text, r.requested_id::text,
	       requester.nickname, requested.nickname,
	       r.requester_picture, r.friend_type, r.status, r.created_at
	FROM lifting_lad_requests r
	JOIN users requester ON requester.id = r.requester_id
	JOIN users requested ON requested.id = r.requested_id
`

func scanRequest(row pgx.Row) (*liftinglad.Request, error) {
	req := &liftinglad.Request{}
	var status string
	err := row.Scan(
		&req.ID,
		&req.RequesterID,
		&req.RequestedID,
		&req.RequesterName,
		&req.RequestedName,
		&req.RequesterPicture,
		&req.FriendType,
		&status,
		&req.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	req.Status = liftinglad.RequestStatus(status)
	return req, nil
}

func parsePair(a, b string) (uuid.UUID, uuid.UUID, error) {
	first, err := uuid.Parse(a)
	if err != nil {
		return uuid.Nil, uuid.Nil, store.ErrNotFound
	}
	second, err := uuid.Parse(b)
	if err != nil {
		return uuid.Nil, uuid.Nil, store.ErrNotFound
	}
	return first, second, nil
}

func (s *Store) GetPendingRequest(ctx context.Context, requesterID, requestedID string) (*liftinglad.Request, error) {
	requester, requested, err := parsePair(requesterID, requestedID)
	if err != nil {
		return nil, err
	}

	query := requestSelect + `WHERE r.requester_id = $1 AND r.requested_id = $2 AND r.status = 'pending'`
	req, err := scanRequest(s.db.QueryRow(ctx, query, requester, requested))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to get lifting lad request: %w", err)
	}
	return req, err
}

func (s *Store) InsertRequest(ctx context.Context, req *liftinglad.Request) error {
	requester, requested, err := parsePair(req.RequesterID, req.RequestedID)
	if err != nil {
		return err
	}
	id := uuid.New()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	req.Status = liftinglad.StatusPending

	query := `
	INSERT INTO lifting_lad_requests (id, requester_id, requested_id, requester_picture, friend_type, status, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = s.db.Exec(ctx, query, id, requester, requested, req.RequesterPicture, req.FriendType, string(req.Status), req.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "") {
			return store.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return store.ErrNotFound
		}
		return fmt.Errorf("failed to insert lifting lad request: %w", err)
	}
	req.ID = id.String()
	return nil
}

func (s *Store) DeleteRequest(ctx context.Context, requesterID, requestedID string) error {
	requester, requested, err := parsePair(requesterID, requestedID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx, `
	DELETE FROM lifting_lad_requests
	WHERE requester_id = $1 AND requested_id = $2 AND status = 'pending'
	`, requester, requested)
	if err != nil {
		return fmt.Errorf("failed to delete lifting lad request: %w", err)
	}
	if result.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListRequestsFor(ctx context.Context, requestedID string) ([]*liftinglad.Request, error) {
	requested, err := uuid.Parse(requestedID)
	if err != nil {
		return []*liftinglad.Request{}, nil
	}

	query := requestSelect + `WHERE r.requested_id = $1 AND r.status = 'pending' ORDER BY r.created_at DESC`
	rows, err := s.db.Query(ctx, query, requested)
	if err != nil {
		return nil, fmt.Errorf("failed to list lifting lad requests: %w", err)
	}
	defer rows.Close()

	requests := []*liftinglad.Request{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lifting lad request: %w", err)
		}
		requests = append(requests, req)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lifting lad requests: %w", err)
	}
	return requests, nil
}

func (s *Store) AcceptRequest(ctx context.Context, requesterID, requestedID string, toRequested, toRequester *liftinglad.Lad) error {
	requester, requested, err := parsePair(requesterID, requestedID)
	if err != nil {
		return err
	}

	insertLad := `
	INSERT INTO lifting_lads (id, owner_id, lad_id, requester_name, requested_name, picture, friend_type, added_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (owner_id, lad_id) DO NOTHING
	`

	now := time.Now().UTC()
	return pgx.BeginTxFunc(ctx, s.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		edges := []struct {
			lad   *liftinglad.Lad
			owner uuid.UUID
			other uuid.UUID
		}{
			{toRequested, requested, requester},
			{toRequester, requester, requested},
		}

		for _, e := range edges {
			id := uuid.New()
			if e.lad.AddedAt.IsZero() {
				e.lad.AddedAt = now
			}
			result, err := tx.Exec(ctx, insertLad,
				id,
				e.owner,
				e.other,
				e.lad.RequesterName,
				e.lad.RequestedName,
				e.lad.Picture,
				e.lad.FriendType,
				e.lad.AddedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert lifting lad: %w", err)
			}
			if result.RowsAffected() == 1 {
				e.lad.ID = id.String()
			}
		}

		result, err := tx.Exec(ctx, `
		DELETE FROM lifting_lad_requests
		WHERE requester_id = $1 AND requested_id = $2 AND status = 'pending'
		`, requester, requested)
		if err != nil {
			return fmt.Errorf("failed to delete lifting lad request: %w", err)
		}
		if result.RowsAffected() == 0 {
			return store.ErrNotFound
		}

		// A crossed request in the other direction is settled by this accept.
		_, err = tx.Exec(ctx, `
		DELETE FROM lifting_lad_requests
		WHERE requester_id = $1 AND requested_id = $2 AND status = 'pending'
		`, requested, requester)
		if err != nil {
			return fmt.Errorf("failed to delete reverse lifting lad request: %w", err)
		}
		return nil
	})
}

func (s *Store) ListLads(ctx context.Context, ownerID string) ([]*liftinglad.Lad, error) {
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return []*liftinglad.Lad{}, nil
	}

	query := `
	SELECT l.id::text, l.owner_id::text, l.lad_id::text, o.nickname, lad.nickname,
	       l.requester_name, l.requested_name, l.picture, l.friend_type, l.added_at
	FROM lifting_lads l
	JOIN users o ON o.id = l.owner_id
	JOIN users lad ON lad.id = l.lad_id
	WHERE l.owner_id = $1
	ORDER BY l.added_at DESC
	`
	rows, err := s.db.Query(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list lifting lads: %w", err)
	}
	defer rows.Close()

	lads := []*liftinglad.Lad{}
	for rows.Next() {
		l := &liftinglad.Lad{}
		err := rows.Scan(
			&l.ID,
			&l.OwnerID,
			&l.LadID,
			&l.OwnerName,
			&l.LadName,
			&l.RequesterName,
			&l.RequestedName,
			&l.Picture,
			&l.FriendType,
			&l.AddedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lifting lad: %w", err)
		}
		lads = append(lads, l)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lifting lads: %w", err)
	}
	return lads, nil
}

func (s *Store) AreLads(ctx context.Context, userID, otherID string) (bool, error) {
	a, b, err := parsePair(userID, otherID)
	if err != nil {
		return false, nil
	}

	var exists bool
	err = s.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM lifting_lads
			WHERE (owner_id = $1 AND lad_id = $2)
			   OR (owner_id = $2 AND lad_id = $1)
		)
	`, a, b).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check lifting lads: %w", err)
	}
	return exists, nil
}
