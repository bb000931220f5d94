package notifications

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func (s *Store) CreateNotification(ctx context.Context, recipientID string, activity Activity) (Notification, error) {
	n := Notification{
		ID:            uuid.NewString(),
		AccountID:     recipientID,
		FromAccountID: activity.Actor.ID,
		ActivityID:    activity.ID,
		Type:          activity.Kind,
	}
	if activity.Status != nil {
		n.StatusID = activity.Status.ID
	}

	err := s.DB.QueryRow(ctx, `
    INSERT INTO notifications (id, account_id, from_account_id, activity_id, activity_type, status_id)
    VALUES ($1,$2,$3,$4,$5,$6)
    ON CONFLICT (account_id, activity_type, activity_id) DO NOTHING
    RETURNING created_at
  `, n.ID, n.AccountID, n.FromAccountID, n.ActivityID, string(n.Type), nullIfEmpty(n.StatusID)).Scan(&n.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Notification{}, ErrDuplicateNotification
	}
	if err != nil {
		return Notification{}, err
	}
	return n, nil
}

func (s *Store) ListNotifications(ctx context.Context, accountID string, limit, offset int) ([]Notification, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, account_id, from_account_id, activity_id, activity_type, COALESCE(status_id, ''), read_at, created_at
    FROM notifications
    WHERE account_id = $1
    ORDER BY created_at DESC
    LIMIT $2 OFFSET $3
  `, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Notification{}
	for rows.Next() {
		var n Notification
		var kind string
		if err := rows.Scan(&n.ID, &n.AccountID, &n.FromAccountID, &n.ActivityID, &kind, &n.StatusID, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Type = Kind(kind)
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) CountNotifications(ctx context.Context, accountID string) (int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM notifications WHERE account_id = $1", accountID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) MarkRead(ctx context.Context, accountID, notificationID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE notifications SET read_at = COALESCE(read_at, now())
    WHERE account_id = $1 AND id = $2
  `, accountID, notificationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) EmailPreference(ctx context.Context, accountID, category string) (bool, bool, error) {
	var enabled bool
	err := s.DB.QueryRow(ctx, `
    SELECT enabled FROM email_preferences
    WHERE account_id = $1 AND category = $2
  `, accountID, category).Scan(&enabled)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return enabled, true, nil
}

func (s *Store) EmailPreferences(ctx context.Context, accountID string) (map[string]bool, error) {
	rows, err := s.DB.Query(ctx, "SELECT category, enabled FROM email_preferences WHERE account_id = $1", accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]bool{}
	for rows.Next() {
		var category string
		var enabled bool
		if err := rows.Scan(&category, &enabled); err != nil {
			return nil, err
		}
		out[category] = enabled
	}
	return out, rows.Err()
}

func (s *Store) SetEmailPreference(ctx context.Context, accountID, category string, enabled bool) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO email_preferences (account_id, category, enabled)
    VALUES ($1,$2,$3)
    ON CONFLICT (account_id, category) DO UPDATE
      SET enabled = EXCLUDED.enabled,
          updated_at = now()
  `, accountID, category, enabled)
	return err
}

func (s *Store) InteractionSettings(ctx context.Context, accountID string) (InteractionSettings, error) {
	var settings InteractionSettings
	err := s.DB.QueryRow(ctx, `
    SELECT must_be_follower, must_be_following
    FROM interaction_settings
    WHERE account_id = $1
  `, accountID).Scan(&settings.MustBeFollower, &settings.MustBeFollowing)
	if errors.Is(err, pgx.ErrNoRows) {
		return InteractionSettings{}, nil
	}
	if err != nil {
		return InteractionSettings{}, err
	}
	return settings, nil
}

func (s *Store) UpdateInteractionSettings(ctx context.Context, accountID string, settings InteractionSettings) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO interaction_settings (account_id, must_be_follower, must_be_following)
    VALUES ($1,$2,$3)
    ON CONFLICT (account_id) DO UPDATE
      SET must_be_follower = EXCLUDED.must_be_follower,
          must_be_following = EXCLUDED.must_be_following,
          updated_at = now()
  `, accountID, settings.MustBeFollower, settings.MustBeFollowing)
	return err
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
