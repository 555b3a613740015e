package localtable

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type contactResponse struct {
	Success              bool   `json:"success"`
	Message              string `json:"message"`
	RequiresVerification bool   `json:"requiresVerification"`
}

func (a *App) handleContact(c echo.Context) error {
	if !a.formLimiter.Allow(c.RealIP()) {
		return apiError(c, http.StatusTooManyRequests, "Too many requests", "Please try again later.")
	}

	var req contactRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c, err)
	}
	sub, verr := req.submission()
	if verr != nil {
		return apiError(c, http.StatusBadRequest, verr.Message, "")
	}

	if a.Mailer == nil {
		a.Logger.ConfigError("mail", errors.New("contact form needs mail.api_key and mail.from"))
		return apiError(c, http.StatusInternalServerError, "Server configuration error", "")
	}

	ctx := c.Request().Context()
	now := a.now().UTC()
	sub.CreatedAt = now
	sub.ExpiresAt = now.Add(a.Config.VerificationTTL)
	if err := a.Store.CreateContact(ctx, &sub); err != nil {
		a.Logger.Error("save contact", "email", sub.Email, "error", err)
		return apiError(c, http.StatusInternalServerError, "Failed to save submission", "")
	}
	a.Logger.Saved("contact", sub.ID)

	a.sendContactVerification(ctx, sub)

	return c.JSON(http.StatusOK, contactResponse{
		Success:              true,
		Message:              "Thanks! Please check your email to verify your submission.",
		RequiresVerification: true,
	})
}

// bindError turns a decode failure into the API error shape.
func bindError(c echo.Context, err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, _ := he.Message.(string)
		if msg == "" {
			msg = "Invalid request body"
		}
		return apiError(c, he.Code, msg, "")
	}
	return apiError(c, http.StatusBadRequest, "Invalid request body", err.Error())
}
