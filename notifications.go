package localtable

import (
	"context"
	"time"
)

// notifyTimeout bounds each best-effort side effect.
const notifyTimeout = 10 * time.Second

// bestEffort runs fn detached from request cancellation and logs failures.
// The caller's response does not depend on the outcome.
func (a *App) bestEffort(ctx context.Context, kind, target string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		a.Logger.NotifyFailed(kind, target, err)
	}
}

func (a *App) sendContactVerification(ctx context.Context, sub ContactSubmission) {
	a.bestEffort(ctx, "contact verification email", sub.Email, func(ctx context.Context) error {
		msg, err := a.contactVerificationEmail(ctx, sub)
		if err != nil {
			return err
		}
		return a.Mailer.Send(ctx, msg)
	})
}

// contactVerified fans out a newly verified submission to the team inbox and
// the spreadsheet mirror.
func (a *App) contactVerified(ctx context.Context, sub ContactSubmission) {
	if a.Mailer != nil && a.Config.Mail.TeamEmail != "" {
		a.bestEffort(ctx, "team notification email", a.Config.Mail.TeamEmail, func(ctx context.Context) error {
			msg, err := a.contactTeamEmail(ctx, sub)
			if err != nil {
				return err
			}
			return a.Mailer.Send(ctx, msg)
		})
	}
	if a.Sheets != nil {
		a.bestEffort(ctx, "contact sheet row", a.Config.Sheets.ContactRange, func(ctx context.Context) error {
			return a.Sheets.Append(ctx, a.Config.Sheets.ContactRange, contactRow(sub))
		})
	}
}

func (a *App) newsletterSubscribed(ctx context.Context, sub NewsletterSubscription) {
	if a.Sheets != nil {
		a.bestEffort(ctx, "newsletter sheet row", a.Config.Sheets.NewsletterRange, func(ctx context.Context) error {
			return a.Sheets.Append(ctx, a.Config.Sheets.NewsletterRange, []string{
				sub.Email, sub.CreatedAt.Format(time.RFC3339), "pending",
			})
		})
	}
	if a.Mailer != nil {
		a.bestEffort(ctx, "newsletter confirmation email", sub.Email, func(ctx context.Context) error {
			msg, err := a.newsletterConfirmationEmail(ctx, sub)
			if err != nil {
				return err
			}
			return a.Mailer.Send(ctx, msg)
		})
	}
}

func contactRow(sub ContactSubmission) []string {
	verifiedAt := ""
	if sub.VerifiedAt != nil {
		verifiedAt = sub.VerifiedAt.Format(time.RFC3339)
	}
	return []string{
		sub.CreatedAt.Format(time.RFC3339),
		sub.Name,
		sub.Email,
		sub.Phone,
		sub.InquiryType,
		sub.Topic,
		sub.Message,
		sub.CookingDescription,
		sub.Experience,
		sub.HeardFrom,
		verifiedAt,
	}
}
