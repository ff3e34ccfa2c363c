// Package export renders a search's leads as a CSV download.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"leadscout/internal/textutil"
	"leadscout/models"
)

// ErrNoLeads is returned when there is nothing to export.
var ErrNoLeads = errors.New("no data to export")

// ContentType is served with the rendered file.
const ContentType = "text/csv; charset=utf-8"

// Headers is the column order of the export.
var Headers = []string{
	"Business Name",
	"Address",
	"Phone",
	"Website",
	"Rating",
	"Review Count",
	"Problem Type",
	"Urgency Score",
	"AI Summary",
	"Outreach Message",
}

// WriteCSV writes the header row and one row per business.
func WriteCSV(w io.Writer, businesses []models.Business) error {
	if len(businesses) == 0 {
		return ErrNoLeads
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i := range businesses {
		if err := cw.Write(Row(&businesses[i])); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// Row flattens a business and its analysis. Missing values become empty cells.
func Row(b *models.Business) []string {
	row := []string{
		b.Name,
		deref(b.Address),
		deref(b.Phone),
		deref(b.Website),
		"",
		strconv.Itoa(b.ReviewCount),
		"", "", "", "",
	}
	if b.Rating != nil {
		row[4] = strconv.FormatFloat(*b.Rating, 'f', -1, 64)
	}
	if a := b.Analysis; a != nil {
		row[6] = deref(a.ProblemType)
		if a.UrgencyScore != nil {
			row[7] = strconv.Itoa(*a.UrgencyScore)
		}
		row[8] = a.Summary
		row[9] = a.OutreachMessage
	}
	return row
}

// Filename names the download after the search and the export date.
func Filename(search *models.SearchJob, now time.Time) string {
	return fmt.Sprintf("leadscout-%s-%s-%s.csv",
		search.BusinessType,
		textutil.Dashed(search.Location),
		now.UTC().Format("2006-01-02"),
	)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
