package localtable

import "time"

// BlogPost is the core content type stored in SQLite and rendered by templates.
type BlogPost struct {
	ID         string    `json:"id"`
	Slug       string    `json:"slug"`
	Title      string    `json:"title"`
	Content    string    `json:"content,omitempty"`
	Excerpt    string    `json:"excerpt"`
	AuthorName string    `json:"authorName"`
	Tags       []string  `json:"tags"`
	ImageURL   string    `json:"imageUrl,omitempty"`
	Published  bool      `json:"published"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	Link       string    `json:"link"`
}

// Date is the publication day in YYYY-MM-DD form.
func (p BlogPost) Date() string {
	if p.CreatedAt.IsZero() {
		return ""
	}
	return p.CreatedAt.Format(time.DateOnly)
}

// Inquiry types accepted by the contact form.
const (
	InquiryGeneral = "general"
	InquiryChef    = "chef"
)

// ContactSubmission is a contact-form entry awaiting or past email verification.
type ContactSubmission struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	Phone              string     `json:"phone,omitempty"`
	Message            string     `json:"message,omitempty"`
	InquiryType        string     `json:"inquiryType"`
	Topic              string     `json:"topic,omitempty"`
	CookingDescription string     `json:"cookingDescription,omitempty"`
	Experience         string     `json:"experience,omitempty"`
	HeardFrom          string     `json:"heardFrom,omitempty"`
	VerificationToken  string     `json:"-"`
	Verified           bool       `json:"verified"`
	VerifiedAt         *time.Time `json:"verifiedAt,omitempty"`
	ExpiresAt          time.Time  `json:"expiresAt"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// NewsletterSubscription is a newsletter signup.
type NewsletterSubscription struct {
	ID                string     `json:"id"`
	Email             string     `json:"email"`
	VerificationToken string     `json:"-"`
	Verified          bool       `json:"verified"`
	VerifiedAt        *time.Time `json:"verifiedAt,omitempty"`
	ExpiresAt         time.Time  `json:"expiresAt"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
	JSONLD      string
}

// Image is an uploaded cover image.
type Image struct {
	Filename     string
	OriginalName string
	Width        int
	Height       int
	Size         int
	UploadedAt   time.Time
}

// URL is the public path of the image.
func (i Image) URL() string {
	return "/public/" + uploadsSubdir + "/" + i.Filename
}
