package notify

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestNewResendMailerRequiresCredentials(t *testing.T) {
	tests := []struct {
		key, from string
	}{
		{"", "hello@example.com"},
		{"re_123", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if _, err := NewResendMailer(tt.key, tt.from); !errors.Is(err, ErrNotConfigured) {
			t.Errorf("NewResendMailer(%q, %q) err = %v, want ErrNotConfigured", tt.key, tt.from, err)
		}
	}
	m, err := NewResendMailer("re_123", "Local Table <hello@example.com>")
	if err != nil || m == nil {
		t.Fatalf("NewResendMailer with credentials: %v", err)
	}
}

func TestResendMailerRejectsEmptyRecipients(t *testing.T) {
	m, err := NewResendMailer("re_123", "hello@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Send(context.Background(), Message{Subject: "hi"}); err == nil {
		t.Error("expected error for message without recipients")
	}
}

func TestNewGoogleSheetsRequiresConfig(t *testing.T) {
	ctx := context.Background()
	if _, err := NewGoogleSheets(ctx, "", "sheet-id"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("missing credentials: err = %v, want ErrNotConfigured", err)
	}
	if _, err := NewGoogleSheets(ctx, "creds.json", ""); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("missing spreadsheet: err = %v, want ErrNotConfigured", err)
	}
	missing := filepath.Join(t.TempDir(), "nope.json")
	if _, err := NewGoogleSheets(ctx, missing, "sheet-id"); err == nil {
		t.Error("expected error for unreadable credentials file")
	}
}
