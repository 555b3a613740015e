package localtable

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/localtable/notify"
)

// emailRow is one labelled field in the team notification.
type emailRow struct {
	label, value string
}

func renderEmail(ctx context.Context, cmp templ.Component) (string, error) {
	var b strings.Builder
	if err := cmp.Render(ctx, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (a *App) verifyLink(endpoint, token string) string {
	return a.Config.URL + "/api/" + endpoint + "?token=" + url.QueryEscape(token)
}

func (a *App) contactVerificationEmail(ctx context.Context, sub ContactSubmission) (notify.Message, error) {
	link := a.verifyLink("verify-contact", sub.VerificationToken)
	hours := int(a.Config.VerificationTTL.Hours())
	html, err := renderEmail(ctx, contactVerificationHTML(a.Config.Name, sub.Name, link, hours))
	if err != nil {
		return notify.Message{}, err
	}
	return notify.Message{
		To:      []string{sub.Email},
		Subject: "Please verify your email - " + a.Config.Name,
		HTML:    html,
		Text: fmt.Sprintf("Hi %s,\n\nThanks for reaching out. Confirm your email address here:\n%s\n\nThis link expires in %d hours.\n",
			sub.Name, link, hours),
	}, nil
}

func (a *App) contactTeamEmail(ctx context.Context, sub ContactSubmission) (notify.Message, error) {
	fields := []emailRow{
		{"Name", sub.Name},
		{"Email", sub.Email},
		{"Phone", sub.Phone},
		{"Inquiry", sub.InquiryType},
		{"Topic", sub.Topic},
		{"Message", sub.Message},
		{"Cooking", sub.CookingDescription},
		{"Experience", sub.Experience},
		{"Heard from", sub.HeardFrom},
	}
	var rows []emailRow
	for _, r := range fields {
		if r.value != "" {
			rows = append(rows, r)
		}
	}
	subject := "New contact: " + sub.Name
	if sub.InquiryType == InquiryChef {
		subject = "New chef application: " + sub.Name
	}
	html, err := renderEmail(ctx, contactTeamHTML(a.Config.Name, rows))
	if err != nil {
		return notify.Message{}, err
	}
	var text strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&text, "%s: %s\n", r.label, r.value)
	}
	return notify.Message{
		To:      []string{a.Config.Mail.TeamEmail},
		ReplyTo: sub.Email,
		Subject: subject,
		HTML:    html,
		Text:    text.String(),
	}, nil
}

func (a *App) newsletterConfirmationEmail(ctx context.Context, sub NewsletterSubscription) (notify.Message, error) {
	link := a.verifyLink("verify-newsletter", sub.VerificationToken)
	html, err := renderEmail(ctx, newsletterConfirmationHTML(a.Config.Name, link))
	if err != nil {
		return notify.Message{}, err
	}
	return notify.Message{
		To:      []string{sub.Email},
		Subject: "Confirm your subscription - " + a.Config.Name,
		HTML:    html,
		Text:    "Confirm your subscription here:\n" + link + "\n",
	}, nil
}
