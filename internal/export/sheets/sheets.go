// Package sheets writes the monthly reward report to a Google spreadsheet
// using service account credentials.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"github.com/badyy8/Ardiin-erh/internal/analytics"
	"github.com/badyy8/Ardiin-erh/internal/config"
	ports "github.com/badyy8/Ardiin-erh/internal/export"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.ReportWriter = (*Client)(nil)

// NewFromConfig creates a Sheets client from the export configuration.
// Credentials come either inline (GOOGLE_CREDENTIALS_JSON) or from a
// service account file.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Client, error) {
	if cfg.GoogleSpreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	sheetName := cfg.GoogleSheetName
	if sheetName == "" {
		sheetName = "Monthly"
	}

	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.GoogleSpreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func newSheetsService(ctx context.Context, cfg *config.Config) (*gsheet.Service, error) {
	credentialsJSON := []byte(strings.TrimSpace(cfg.GoogleCredentialsJSON))

	if len(credentialsJSON) == 0 && cfg.GoogleCredentialsFile != "" {
		data, err := os.ReadFile(cfg.GoogleCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = data
	}
	if len(credentialsJSON) == 0 {
		return nil, errors.New("missing service account credentials (set GOOGLE_CREDENTIALS_JSON or GOOGLE_CREDENTIALS_FILE)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return service, nil
}

// WriteMonthlyReport replaces the report sheet's contents with one row per
// month of the given year.
func (c *Client) WriteMonthlyReport(ctx context.Context, year int, stats []analytics.MonthlyRewardStat) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	values := [][]any{
		{"Month", "Total points", "Users", "Reached 1000", "Below 1000", "Success %", "New users", "Points per user"},
	}
	for _, s := range stats {
		values = append(values, []any{
			s.YearMonth,
			s.TotalPoints,
			s.TotalUsers,
			s.PassedThousand,
			s.FailedThousand,
			s.SuccessPercent,
			s.NewUsers,
			s.PointsPerUser,
		})
	}

	clearRange := fmt.Sprintf("%s!A:H", c.sheetName)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("clear sheet %s: %w", c.sheetName, err)
	}

	writeRange := fmt.Sprintf("%s!A1", c.sheetName)
	vr := &gsheet.ValueRange{Values: values}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("write sheet %s: %w", c.sheetName, err)
	}

	ref := fmt.Sprintf("%s!A1:H%d", c.sheetName, len(values))
	slog.InfoContext(ctx, "Monthly report exported to Google Sheets",
		"year", year,
		"months", len(stats),
		"sheets_ref", ref)
	return ref, nil
}
