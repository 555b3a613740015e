package localtable

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (a *App) handleNewsletter(c echo.Context) error {
	if !a.formLimiter.Allow(c.RealIP()) {
		return apiError(c, http.StatusTooManyRequests, "Too many requests", "Please try again later.")
	}

	var req newsletterRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c, err)
	}
	email, verr := req.email()
	if verr != nil {
		return apiError(c, http.StatusBadRequest, verr.Message, "")
	}

	ctx := c.Request().Context()
	now := a.now().UTC()
	sub := NewsletterSubscription{
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.Add(a.Config.VerificationTTL),
	}
	if err := a.Store.CreateSubscription(ctx, &sub); err != nil {
		a.Logger.Error("save subscription", "email", email, "error", err)
		return apiError(c, http.StatusInternalServerError, "Failed to subscribe", "")
	}
	a.Logger.Saved("newsletter", sub.ID)

	a.newsletterSubscribed(ctx, sub)

	return c.JSON(http.StatusOK, successResponse{
		Success: true,
		Message: "Thanks for subscribing! Check your inbox to confirm.",
	})
}
