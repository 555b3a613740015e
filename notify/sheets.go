package notify

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetAppender appends rows to a spreadsheet range such as "Contacts!A:K".
type SheetAppender interface {
	Append(ctx context.Context, sheetRange string, row []string) error
}

// GoogleSheets appends rows through the Sheets v4 API using a service account.
type GoogleSheets struct {
	svc           *sheets.Service
	spreadsheetID string
}

// NewGoogleSheets authenticates with the service-account key at
// credentialsFile. The Google client handles token exchange and refresh.
func NewGoogleSheets(ctx context.Context, credentialsFile, spreadsheetID string) (*GoogleSheets, error) {
	if credentialsFile == "" || spreadsheetID == "" {
		return nil, ErrNotConfigured
	}
	creds, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("notify: read sheets credentials: %w", err)
	}
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsJSON(creds),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("notify: sheets client: %w", err)
	}
	return &GoogleSheets{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// Append writes row after the last row of sheetRange.
func (g *GoogleSheets) Append(ctx context.Context, sheetRange string, row []string) error {
	values := make([]interface{}, len(row))
	for i, v := range row {
		values[i] = v
	}
	vr := &sheets.ValueRange{Values: [][]interface{}{values}}
	_, err := g.svc.Spreadsheets.Values.Append(g.spreadsheetID, sheetRange, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("notify: append to %s: %w", sheetRange, err)
	}
	return nil
}
