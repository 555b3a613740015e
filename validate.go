package localtable

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// Field limits for form input, in runes.
const (
	maxNameLen  = 200
	maxEmailLen = 254
	maxPhoneLen = 50
	maxShortLen = 200
	maxTextLen  = 5000
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// stripTags removes any markup a visitor pasted into a form field.
var stripTags = bluemonday.StrictPolicy()

// ValidEmail reports whether s looks like a deliverable address.
func ValidEmail(s string) bool {
	return utf8.RuneCountInString(s) <= maxEmailLen && emailPattern.MatchString(s)
}

// ValidationError is a 400-class problem with one input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// cleanText trims s and drops HTML tags while keeping literal characters.
func cleanText(s string) string {
	s = strings.TrimSpace(s)
	if !strings.ContainsAny(s, "<>") {
		return s
	}
	return strings.TrimSpace(html.UnescapeString(stripTags.Sanitize(s)))
}

func tooLong(s string, max int) bool {
	return utf8.RuneCountInString(s) > max
}

type contactRequest struct {
	Name               string `json:"name" form:"name"`
	Email              string `json:"email" form:"email"`
	Phone              string `json:"phone" form:"phone"`
	Message            string `json:"message" form:"message"`
	InquiryType        string `json:"inquiryType" form:"inquiryType"`
	Topic              string `json:"topic" form:"topic"`
	CookingDescription string `json:"cookingDescription" form:"cookingDescription"`
	Experience         string `json:"experience" form:"experience"`
	HeardFrom          string `json:"heardFrom" form:"heardFrom"`
}

// submission validates the request and returns the row to store.
// An empty inquiry type is treated as a general inquiry.
func (r contactRequest) submission() (ContactSubmission, *ValidationError) {
	sub := ContactSubmission{
		Name:               cleanText(r.Name),
		Email:              strings.ToLower(strings.TrimSpace(r.Email)),
		Phone:              cleanText(r.Phone),
		Message:            cleanText(r.Message),
		InquiryType:        strings.ToLower(strings.TrimSpace(r.InquiryType)),
		Topic:              cleanText(r.Topic),
		CookingDescription: cleanText(r.CookingDescription),
		Experience:         cleanText(r.Experience),
		HeardFrom:          cleanText(r.HeardFrom),
	}
	if sub.InquiryType == "" {
		sub.InquiryType = InquiryGeneral
	}

	switch {
	case sub.Name == "":
		return sub, invalid("name", "Name is required")
	case tooLong(sub.Name, maxNameLen):
		return sub, invalid("name", "Name is too long")
	case sub.Email == "":
		return sub, invalid("email", "Email is required")
	case !ValidEmail(sub.Email):
		return sub, invalid("email", "Invalid email format")
	case tooLong(sub.Phone, maxPhoneLen):
		return sub, invalid("phone", "Phone number is too long")
	case sub.InquiryType != InquiryGeneral && sub.InquiryType != InquiryChef:
		return sub, invalid("inquiryType", "Invalid inquiry type")
	case sub.InquiryType == InquiryGeneral && sub.Message == "":
		return sub, invalid("message", "Message is required for general inquiries")
	case sub.InquiryType == InquiryChef && sub.Experience == "":
		return sub, invalid("experience", "Experience is required for chef applications")
	case tooLong(sub.Topic, maxShortLen):
		return sub, invalid("topic", "Topic is too long")
	case tooLong(sub.HeardFrom, maxShortLen):
		return sub, invalid("heardFrom", "Referral source is too long")
	case tooLong(sub.Message, maxTextLen), tooLong(sub.CookingDescription, maxTextLen), tooLong(sub.Experience, maxTextLen):
		return sub, invalid("message", "Message is too long")
	}
	return sub, nil
}

type newsletterRequest struct {
	Email string `json:"email" form:"email"`
}

func (r newsletterRequest) email() (string, *ValidationError) {
	email := strings.ToLower(strings.TrimSpace(r.Email))
	switch {
	case email == "":
		return "", invalid("email", "Email is required")
	case !ValidEmail(email):
		return "", invalid("email", "Invalid email format")
	}
	return email, nil
}
