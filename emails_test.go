package localtable

import (
	"context"
	"strings"
	"testing"
	"time"
)

func emailApp() *App {
	cfg := SiteConfig{Name: "Local Table", URL: "https://localtable.test", VerificationTTL: 24 * time.Hour}
	cfg.Mail.TeamEmail = "team@localtable.test"
	return &App{Config: cfg}
}

func TestContactVerificationEmail(t *testing.T) {
	msg, err := emailApp().contactVerificationEmail(context.Background(), ContactSubmission{
		Name: "<Ana>", Email: "ana@example.com", VerificationToken: "tok en",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(msg.To) != 1 || msg.To[0] != "ana@example.com" {
		t.Errorf("To = %v", msg.To)
	}
	if !strings.Contains(msg.HTML, "https://localtable.test/api/verify-contact?token=tok+en") {
		t.Errorf("HTML missing verify link: %s", msg.HTML)
	}
	if strings.Contains(msg.HTML, "<Ana>") || !strings.Contains(msg.HTML, "&lt;Ana&gt;") {
		t.Error("name not escaped")
	}
	if !strings.Contains(msg.Text, "24 hours") {
		t.Errorf("Text = %q", msg.Text)
	}
}

func TestContactTeamEmail(t *testing.T) {
	a := emailApp()
	msg, err := a.contactTeamEmail(context.Background(), ContactSubmission{
		Name: "Marco", Email: "marco@example.com", InquiryType: InquiryChef, Experience: "10 years",
	})
	if err != nil {
		t.Fatal(err)
	}
	if msg.Subject != "New chef application: Marco" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	if msg.ReplyTo != "marco@example.com" || msg.To[0] != "team@localtable.test" {
		t.Errorf("routing = %v / %q", msg.To, msg.ReplyTo)
	}
	if strings.Contains(msg.Text, "Phone:") {
		t.Error("empty fields should be omitted")
	}
	if !strings.Contains(msg.Text, "Experience: 10 years") {
		t.Errorf("Text = %q", msg.Text)
	}
	if !strings.Contains(msg.HTML, ">Experience</th>") || !strings.Contains(msg.HTML, ">10 years</td>") {
		t.Errorf("HTML table missing experience row: %s", msg.HTML)
	}
	if strings.Contains(msg.HTML, ">Phone</th>") {
		t.Error("empty phone rendered in HTML table")
	}
}

func TestEmailLayoutWrapsBody(t *testing.T) {
	html, err := renderEmail(context.Background(), newsletterConfirmationHTML("Fish & Chips Co", "https://x.test/api/verify-newsletter?token=a&b"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"<!doctype html>",
		">Fish &amp; Chips Co</p>",
		">Confirm your subscription</h1>",
		`href="https://x.test/api/verify-newsletter?token=a&amp;b"`,
		"</div></body></html>",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("email HTML missing %q: %s", want, html)
		}
	}
}

func TestNewsletterConfirmationEmail(t *testing.T) {
	msg, err := emailApp().newsletterConfirmationEmail(context.Background(), NewsletterSubscription{Email: "a@b.co", VerificationToken: "t1"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(msg.HTML, "/api/verify-newsletter?token=t1") {
		t.Error("missing newsletter verify link")
	}
}
