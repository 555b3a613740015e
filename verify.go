package localtable

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

// Verification error codes carried in the redirect query.
const (
	VerifyMissingToken = "missing_token"
	VerifyInvalidToken = "invalid_token"
	VerifyExpiredToken = "expired_token"
	VerifyFailed       = "verification_failed"
	VerifyServerError  = "server_error"
)

// Verification kinds.
const (
	VerifyContact    = "contact"
	VerifyNewsletter = "newsletter"
)

// VerificationResult is the outcome shown on the verification page.
type VerificationResult struct {
	Type            string
	Success         bool
	AlreadyVerified bool
	Error           string
}

// Query encodes the result as redirect parameters.
func (r VerificationResult) Query() url.Values {
	v := url.Values{}
	if r.Success {
		v.Set("success", "true")
	}
	if r.AlreadyVerified {
		v.Set("already_verified", "true")
	}
	if r.Error != "" {
		v.Set("error", r.Error)
	}
	v.Set("type", r.Type)
	return v
}

// ParseVerificationResult reads the parameters written by Query.
func ParseVerificationResult(q url.Values) VerificationResult {
	return VerificationResult{
		Type:            q.Get("type"),
		Success:         q.Get("success") == "true",
		AlreadyVerified: q.Get("already_verified") == "true",
		Error:           q.Get("error"),
	}
}

// Title is a short heading for the result page.
func (r VerificationResult) Title() string {
	switch {
	case r.AlreadyVerified:
		return "Already verified"
	case r.Success:
		return "Email verified"
	case r.Error == VerifyExpiredToken:
		return "Link expired"
	default:
		return "Verification failed"
	}
}

// Message explains the result to the visitor.
func (r VerificationResult) Message() string {
	subject := "submission"
	if r.Type == VerifyNewsletter {
		subject = "subscription"
	}
	switch {
	case r.AlreadyVerified:
		return "Your " + subject + " was already verified. No further action is needed."
	case r.Success && r.Type == VerifyNewsletter:
		return "You're subscribed. Look out for seasonal menus and stories from local kitchens."
	case r.Success:
		return "Thanks for confirming. Our team will be in touch soon."
	}
	switch r.Error {
	case VerifyMissingToken:
		return "The verification link is incomplete. Please use the full link from your email."
	case VerifyInvalidToken:
		return "We couldn't find that verification link. It may have been mistyped."
	case VerifyExpiredToken:
		return "This verification link has expired. Please submit the form again."
	case VerifyFailed:
		return "We couldn't verify your " + subject + ". Please try again."
	default:
		return "Something went wrong on our side. Please try again later."
	}
}

func (a *App) redirectVerification(c echo.Context, r VerificationResult) error {
	path := a.Config.VerifyPagePath
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	return c.Redirect(http.StatusFound, path+"?"+r.Query().Encode())
}

// verifyRecord is the common view of a token-gated row.
type verifyRecord struct {
	id       string
	verified bool
	expired  bool
}

// verify runs the token protocol shared by both verification endpoints.
// lookup finds the row, mark flags it, and onVerified runs side effects
// after a first successful verification.
func (a *App) verify(c echo.Context, kind string,
	lookup func(ctx context.Context, token string) (verifyRecord, error),
	mark func(ctx context.Context, id string) error,
	onVerified func(ctx context.Context),
) error {
	res := VerificationResult{Type: kind}
	token := strings.TrimSpace(c.QueryParam("token"))
	if token == "" {
		res.Error = VerifyMissingToken
		return a.redirectVerification(c, res)
	}

	ctx := c.Request().Context()
	rec, err := lookup(ctx, token)
	switch {
	case errors.Is(err, ErrNotFound):
		res.Error = VerifyInvalidToken
		return a.redirectVerification(c, res)
	case err != nil:
		a.Logger.Error("verification lookup", "kind", kind, "error", err)
		res.Error = VerifyServerError
		return a.redirectVerification(c, res)
	}

	if rec.verified {
		res.Success = true
		res.AlreadyVerified = true
		return a.redirectVerification(c, res)
	}
	if rec.expired {
		res.Error = VerifyExpiredToken
		return a.redirectVerification(c, res)
	}
	if err := mark(ctx, rec.id); err != nil {
		a.Logger.Error("mark verified", "kind", kind, "id", rec.id, "error", err)
		res.Error = VerifyFailed
		return a.redirectVerification(c, res)
	}
	a.Logger.Info("verified", "kind", kind, "id", rec.id)
	if onVerified != nil {
		onVerified(ctx)
	}
	res.Success = true
	return a.redirectVerification(c, res)
}

func (a *App) handleVerifyContact(c echo.Context) error {
	var sub ContactSubmission
	return a.verify(c, VerifyContact,
		func(ctx context.Context, token string) (verifyRecord, error) {
			var err error
			sub, err = a.Store.ContactByToken(ctx, token)
			if err != nil {
				return verifyRecord{}, err
			}
			return verifyRecord{id: sub.ID, verified: sub.Verified, expired: a.now().After(sub.ExpiresAt)}, nil
		},
		func(ctx context.Context, id string) error {
			at := a.now().UTC()
			if err := a.Store.MarkContactVerified(ctx, id, at); err != nil {
				return err
			}
			sub.Verified = true
			sub.VerifiedAt = &at
			return nil
		},
		func(ctx context.Context) { a.contactVerified(ctx, sub) },
	)
}

func (a *App) handleVerifyNewsletter(c echo.Context) error {
	return a.verify(c, VerifyNewsletter,
		func(ctx context.Context, token string) (verifyRecord, error) {
			sub, err := a.Store.SubscriptionByToken(ctx, token)
			if err != nil {
				return verifyRecord{}, err
			}
			return verifyRecord{id: sub.ID, verified: sub.Verified, expired: a.now().After(sub.ExpiresAt)}, nil
		},
		func(ctx context.Context, id string) error {
			return a.Store.MarkSubscriptionVerified(ctx, id, a.now().UTC())
		},
		nil,
	)
}
