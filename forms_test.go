package localtable

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"
)

const validContact = `{"name":"Rosa","email":"rosa@example.com","inquiryType":"general","message":"Do you deliver to Eastside?"}`

func TestContactValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing name", `{"email":"a@b.co","inquiryType":"general","message":"hi"}`, "Name is required"},
		{"missing email", `{"name":"A","inquiryType":"general","message":"hi"}`, "Email is required"},
		{"bad email", `{"name":"A","email":"not-an-email","inquiryType":"general","message":"hi"}`, "Invalid email format"},
		{"general without message", `{"name":"A","email":"a@b.co","inquiryType":"general"}`, "Message is required for general inquiries"},
		{"chef without experience", `{"name":"A","email":"a@b.co","inquiryType":"chef","cookingDescription":"Stews"}`, "Experience is required for chef applications"},
		{"unknown inquiry type", `{"name":"A","email":"a@b.co","inquiryType":"press","message":"hi"}`, "Invalid inquiry type"},
		{"message too long", `{"name":"A","email":"a@b.co","inquiryType":"general","message":"` + strings.Repeat("x", maxTextLen+1) + `"}`, "Message is too long"},
		{"malformed json", `{"name":`, "Invalid JSON body"},
	}
	ta := newTestApp(t, nil)
	for _, tt := range tests {
		rec := ta.do(http.MethodPost, "/api/contact", tt.body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400 (%s)", tt.name, rec.Code, rec.Body.String())
			continue
		}
		if got := decodeBody(t, rec)["error"]; got != tt.want {
			t.Errorf("%s: error = %v, want %q", tt.name, got, tt.want)
		}
	}
	if n := len(ta.mailer.messages()); n != 0 {
		t.Errorf("invalid submissions sent %d emails", n)
	}
}

func TestContactSuccess(t *testing.T) {
	ta := newTestApp(t, nil)
	rec := ta.do(http.MethodPost, "/api/contact", validContact)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["success"] != true || body["requiresVerification"] != true {
		t.Errorf("body = %v", body)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header on success")
	}

	sent := ta.mailer.messages()
	if len(sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sent))
	}
	if sent[0].To[0] != "rosa@example.com" {
		t.Errorf("verification email to %v", sent[0].To)
	}
	if !strings.Contains(sent[0].HTML, "https://localtable.example/api/verify-contact?token=") {
		t.Errorf("verification email missing link:\n%s", sent[0].HTML)
	}
}

func TestChefApplicationAccepted(t *testing.T) {
	ta := newTestApp(t, nil)
	body := `{"name":"Kofi","email":"kofi@example.com","inquiryType":"chef","experience":"Ten years of supper clubs","cookingDescription":"West African"}`
	rec := ta.do(http.MethodPost, "/api/contact", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestContactStripsMarkup(t *testing.T) {
	ta := newTestApp(t, nil)
	body := `{"name":"<b>Rosa</b>","email":"Rosa@Example.com","inquiryType":"general","message":"Fish & chips <script>alert(1)</script>please"}`
	if rec := ta.do(http.MethodPost, "/api/contact", body); rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	token := tokenFromEmail(t, ta.mailer.messages()[0].Text, "verify-contact")
	sub, err := ta.Store.ContactByToken(context.Background(), token)
	if err != nil {
		t.Fatal(err)
	}
	if sub.Name != "Rosa" || sub.Email != "rosa@example.com" {
		t.Errorf("name/email = %q/%q", sub.Name, sub.Email)
	}
	if strings.Contains(sub.Message, "<script>") || !strings.Contains(sub.Message, "Fish & chips") {
		t.Errorf("message = %q", sub.Message)
	}
}

func TestContactWithoutMailerIsConfigurationError(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.Mailer = nil
	rec := ta.do(http.MethodPost, "/api/contact", validContact)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "Server configuration error" {
		t.Errorf("error = %v", got)
	}
}

func TestContactEmailFailureStillSucceeds(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.mailer.err = errBoom
	rec := ta.do(http.MethodPost, "/api/contact", validContact)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 when email fails", rec.Code)
	}
}

func TestContactStoreFailure(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.Store.Close()
	rec := ta.do(http.MethodPost, "/api/contact", validContact)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "Failed to save submission" {
		t.Errorf("error = %v", got)
	}
	if n := len(ta.mailer.messages()); n != 0 {
		t.Errorf("sent %d emails after failed write", n)
	}
}

func TestFormRateLimit(t *testing.T) {
	ta := newTestApp(t, func(c *SiteConfig) { c.FormRateLimit = 2 })
	for i := 0; i < 2; i++ {
		if rec := ta.do(http.MethodPost, "/api/newsletter", `{"email":"x@y.com"}`); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}
	rec := ta.do(http.MethodPost, "/api/newsletter", `{"email":"x@y.com"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "Too many requests" {
		t.Errorf("error = %v", got)
	}
}

func tokenFromEmail(t *testing.T, body, endpoint string) string {
	t.Helper()
	marker := "/api/" + endpoint + "?token="
	i := strings.Index(body, marker)
	if i < 0 {
		t.Fatalf("no %s link in:\n%s", endpoint, body)
	}
	rest := body[i+len(marker):]
	if j := strings.IndexAny(rest, "\n\" "); j >= 0 {
		rest = rest[:j]
	}
	token, err := url.QueryUnescape(rest)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func verifyLocation(t *testing.T, ta *testApp, target string) url.Values {
	t.Helper()
	rec := ta.do(http.MethodGet, target, "")
	if rec.Code != http.StatusFound {
		t.Fatalf("GET %s status = %d, want 302", target, rec.Code)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatal(err)
	}
	if loc.Path != "/verification/" {
		t.Errorf("redirect path = %q, want /verification/", loc.Path)
	}
	return loc.Query()
}

func TestVerifyContactFlow(t *testing.T) {
	ta := newTestApp(t, func(c *SiteConfig) { c.Mail.TeamEmail = "team@localtable.example" })
	if rec := ta.do(http.MethodPost, "/api/contact", validContact); rec.Code != http.StatusOK {
		t.Fatalf("submit status = %d", rec.Code)
	}
	token := tokenFromEmail(t, ta.mailer.messages()[0].Text, "verify-contact")

	q := verifyLocation(t, ta, "/api/verify-contact?token="+url.QueryEscape(token))
	if q.Get("success") != "true" || q.Get("type") != "contact" || q.Get("already_verified") != "" {
		t.Errorf("first verify query = %v", q)
	}
	sent := ta.mailer.messages()
	if len(sent) != 2 || sent[1].To[0] != "team@localtable.example" || sent[1].ReplyTo != "rosa@example.com" {
		t.Errorf("team notification not sent: %+v", sent)
	}
	if n := ta.sheets.count(ta.Config.Sheets.ContactRange); n != 1 {
		t.Errorf("contact rows = %d, want 1", n)
	}

	q = verifyLocation(t, ta, "/api/verify-contact?token="+url.QueryEscape(token))
	if q.Get("success") != "true" || q.Get("already_verified") != "true" {
		t.Errorf("second verify query = %v", q)
	}
	if n := len(ta.mailer.messages()); n != 2 {
		t.Errorf("re-verification sent more email: %d", n)
	}
}

func TestVerifyContactErrors(t *testing.T) {
	ta := newTestApp(t, nil)

	q := verifyLocation(t, ta, "/api/verify-contact")
	if q.Get("error") != VerifyMissingToken || q.Get("type") != "contact" {
		t.Errorf("missing token query = %v", q)
	}
	q = verifyLocation(t, ta, "/api/verify-contact?token=does-not-exist")
	if q.Get("error") != VerifyInvalidToken {
		t.Errorf("unknown token query = %v", q)
	}

	if rec := ta.do(http.MethodPost, "/api/contact", validContact); rec.Code != http.StatusOK {
		t.Fatalf("submit status = %d", rec.Code)
	}
	token := tokenFromEmail(t, ta.mailer.messages()[0].Text, "verify-contact")
	ta.clock.Advance(25 * time.Hour)
	q = verifyLocation(t, ta, "/api/verify-contact?token="+url.QueryEscape(token))
	if q.Get("error") != VerifyExpiredToken || q.Get("success") != "" {
		t.Errorf("expired token query = %v", q)
	}
}

func TestVerifyLookupFailureIsServerError(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.Store.Close()
	q := verifyLocation(t, ta, "/api/verify-newsletter?token=abc")
	if q.Get("error") != VerifyServerError || q.Get("type") != "newsletter" {
		t.Errorf("query = %v", q)
	}
}

func TestNewsletterValidation(t *testing.T) {
	ta := newTestApp(t, nil)
	tests := []struct {
		body string
		want string
	}{
		{`{}`, "Email is required"},
		{`{"email":"  "}`, "Email is required"},
		{`{"email":"not-an-email"}`, "Invalid email format"},
		{`{"email":"a@b"}`, "Invalid email format"},
	}
	for _, tt := range tests {
		rec := ta.do(http.MethodPost, "/api/newsletter", tt.body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tt.body, rec.Code)
			continue
		}
		if got := decodeBody(t, rec)["error"]; got != tt.want {
			t.Errorf("%s: error = %v, want %q", tt.body, got, tt.want)
		}
	}
}

func TestNewsletterSubscribeAndVerify(t *testing.T) {
	ta := newTestApp(t, nil)
	rec := ta.do(http.MethodPost, "/api/newsletter", `{"email":"x@y.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["success"] != true || body["message"] == "" {
		t.Errorf("body = %v", body)
	}
	if n := ta.sheets.count(ta.Config.Sheets.NewsletterRange); n != 1 {
		t.Errorf("newsletter rows = %d, want 1", n)
	}
	sent := ta.mailer.messages()
	if len(sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sent))
	}
	token := tokenFromEmail(t, sent[0].Text, "verify-newsletter")

	q := verifyLocation(t, ta, "/api/verify-newsletter?token="+url.QueryEscape(token))
	if q.Get("success") != "true" || q.Get("type") != "newsletter" {
		t.Errorf("verify query = %v", q)
	}
	q = verifyLocation(t, ta, "/api/verify-newsletter?token="+url.QueryEscape(token))
	if q.Get("already_verified") != "true" {
		t.Errorf("second verify query = %v", q)
	}
}

func TestNewsletterSideEffectFailuresStillSucceed(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.sheets.err = errBoom
	ta.mailer.err = errBoom
	rec := ta.do(http.MethodPost, "/api/newsletter", `{"email":"x@y.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestVerificationPageRendersResult(t *testing.T) {
	ta := newTestApp(t, nil)
	rec := ta.do(http.MethodGet, "/verification/?error=expired_token&type=newsletter", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Body.String(); got != "verification|newsletter|Link expired" {
		t.Errorf("body = %q", got)
	}
}

func TestVerificationPageWithTrailingSlashPath(t *testing.T) {
	ta := newTestApp(t, func(c *SiteConfig) { c.VerifyPagePath = "/thanks/" })
	rec := ta.do(http.MethodGet, "/api/verify-newsletter", "")
	if rec.Code != http.StatusFound {
		t.Fatalf("verify status = %d, want 302", rec.Code)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatal(err)
	}
	if loc.Path != "/thanks/" {
		t.Fatalf("redirect path = %q, want /thanks/", loc.Path)
	}
	page := ta.do(http.MethodGet, loc.String(), "")
	if page.Code != http.StatusOK {
		t.Fatalf("GET %s status = %d, want 200", loc.String(), page.Code)
	}
	if got := page.Body.String(); got != "verification|newsletter|Verification failed" {
		t.Errorf("body = %q", got)
	}
}

func TestVerificationResultRoundTrip(t *testing.T) {
	in := VerificationResult{Type: VerifyContact, Success: true, AlreadyVerified: true}
	out := ParseVerificationResult(in.Query())
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
	if in.Query().Encode() != "already_verified=true&success=true&type=contact" {
		t.Errorf("Encode = %q", in.Query().Encode())
	}
}
