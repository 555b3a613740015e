package localtable

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewVerificationToken returns a fresh single-use token.
func NewVerificationToken() string {
	return uuid.NewString()
}

// CreateContact inserts a submission. ID and token are generated when empty.
func (s *Store) CreateContact(ctx context.Context, sub *ContactSubmission) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.VerificationToken == "" {
		sub.VerificationToken = NewVerificationToken()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO contact_submissions (id, name, email, phone, message, inquiry_type, topic,
    cooking_description, experience, heard_from, verification_token, verified, expires_at, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		sub.ID, sub.Name, sub.Email, sub.Phone, sub.Message, sub.InquiryType, sub.Topic,
		sub.CookingDescription, sub.Experience, sub.HeardFrom, sub.VerificationToken,
		formatTime(sub.ExpiresAt), formatTime(sub.CreatedAt))
	if err != nil {
		return fmt.Errorf("localtable: insert contact: %w", err)
	}
	return nil
}

// ContactByToken looks up a submission by its verification token.
func (s *Store) ContactByToken(ctx context.Context, token string) (ContactSubmission, error) {
	var sub ContactSubmission
	var verified int
	var verifiedAt sql.NullString
	var expires, created string
	err := s.db.QueryRowContext(ctx, `
SELECT id, name, email, phone, message, inquiry_type, topic, cooking_description, experience,
    heard_from, verification_token, verified, verified_at, expires_at, created_at
FROM contact_submissions WHERE verification_token = ?`, token).
		Scan(&sub.ID, &sub.Name, &sub.Email, &sub.Phone, &sub.Message, &sub.InquiryType, &sub.Topic,
			&sub.CookingDescription, &sub.Experience, &sub.HeardFrom, &sub.VerificationToken,
			&verified, &verifiedAt, &expires, &created)
	if err != nil {
		return ContactSubmission{}, notFound(err)
	}
	sub.Verified = verified == 1
	sub.VerifiedAt = nullTime(verifiedAt)
	sub.ExpiresAt = parseTime(expires)
	sub.CreatedAt = parseTime(created)
	return sub, nil
}

// MarkContactVerified flags the submission as verified at the given time.
// It returns ErrNotFound when no unverified row matched.
func (s *Store) MarkContactVerified(ctx context.Context, id string, at time.Time) error {
	return s.markVerified(ctx, "contact_submissions", id, at)
}

// CreateSubscription inserts a newsletter signup.
func (s *Store) CreateSubscription(ctx context.Context, sub *NewsletterSubscription) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.VerificationToken == "" {
		sub.VerificationToken = NewVerificationToken()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO newsletter_subscriptions (id, email, verification_token, verified, expires_at, created_at)
VALUES (?, ?, ?, 0, ?, ?)`,
		sub.ID, sub.Email, sub.VerificationToken, formatTime(sub.ExpiresAt), formatTime(sub.CreatedAt))
	if err != nil {
		return fmt.Errorf("localtable: insert subscription: %w", err)
	}
	return nil
}

// SubscriptionByToken looks up a newsletter signup by its verification token.
func (s *Store) SubscriptionByToken(ctx context.Context, token string) (NewsletterSubscription, error) {
	var sub NewsletterSubscription
	var verified int
	var verifiedAt sql.NullString
	var expires, created string
	err := s.db.QueryRowContext(ctx, `
SELECT id, email, verification_token, verified, verified_at, expires_at, created_at
FROM newsletter_subscriptions WHERE verification_token = ?`, token).
		Scan(&sub.ID, &sub.Email, &sub.VerificationToken, &verified, &verifiedAt, &expires, &created)
	if err != nil {
		return NewsletterSubscription{}, notFound(err)
	}
	sub.Verified = verified == 1
	sub.VerifiedAt = nullTime(verifiedAt)
	sub.ExpiresAt = parseTime(expires)
	sub.CreatedAt = parseTime(created)
	return sub, nil
}

// MarkSubscriptionVerified flags the signup as verified.
func (s *Store) MarkSubscriptionVerified(ctx context.Context, id string, at time.Time) error {
	return s.markVerified(ctx, "newsletter_subscriptions", id, at)
}

func (s *Store) markVerified(ctx context.Context, table, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE `+table+` SET verified = 1, verified_at = ? WHERE id = ? AND verified = 0`,
		formatTime(at), id)
	if err != nil {
		return fmt.Errorf("localtable: verify %s %s: %w", table, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullTime(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	t := parseTime(ns.String)
	return &t
}
