// Package google exposes a Google Sheets spreadsheet as a workbook.Source.
// Values are requested unformatted, so date cells arrive as day serials
// just like the xlsx backend delivers them.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"pdw/internal/workbook"
)

type Source struct {
	svc           *gsheet.Service
	spreadsheetID string
}

var _ workbook.Source = (*Source)(nil)

// NewFromEnv creates a Sheets-backed source using environment variables.
// Required: GOOGLE_SPREADSHEET_ID. Auth comes from GOOGLE_CREDENTIALS_JSON,
// GOOGLE_APPLICATION_CREDENTIALS, or application default credentials.
func NewFromEnv(ctx context.Context) (*Source, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Source{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	if credentialsJSON := os.Getenv("GOOGLE_CREDENTIALS_JSON"); credentialsJSON != "" {
		return gsheet.NewService(ctx,
			goption.WithCredentialsJSON([]byte(credentialsJSON)),
			goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	}
	if credentialsFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credentialsFile != "" {
		return gsheet.NewService(ctx,
			goption.WithCredentialsFile(credentialsFile),
			goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	}
	return gsheet.NewService(ctx, goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
}

func (s *Source) SheetNames(ctx context.Context) ([]string, error) {
	doc, err := s.svc.Spreadsheets.Get(s.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get spreadsheet %s: %w", s.spreadsheetID, err)
	}
	names := make([]string, 0, len(doc.Sheets))
	for _, sheet := range doc.Sheets {
		if sheet.Properties != nil {
			names = append(names, sheet.Properties.Title)
		}
	}
	return names, nil
}

func (s *Source) Rows(ctx context.Context, sheet string) ([][]workbook.Cell, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, sheet).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read sheet %s of %s: %w", sheet, s.spreadsheetID, err)
	}
	rows := make([][]workbook.Cell, len(resp.Values))
	for i, values := range resp.Values {
		row := make([]workbook.Cell, len(values))
		for j, value := range values {
			row[j] = cellOf(value)
		}
		rows[i] = row
	}
	return rows, nil
}

func cellOf(v interface{}) workbook.Cell {
	switch t := v.(type) {
	case nil:
		return workbook.Empty()
	case bool:
		return workbook.Boolean(t)
	case float64:
		return workbook.Number(t)
	case string:
		if t == "" {
			return workbook.Empty()
		}
		if strings.HasPrefix(t, "#") {
			return workbook.ErrorCell(t)
		}
		return workbook.String(t)
	default:
		return workbook.String(fmt.Sprintf("%v", t))
	}
}
