// Package report exports outreach data as XLSX workbooks.
package report

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/justjjosh/Hermes-backend/internal/model"
	"github.com/justjjosh/Hermes-backend/internal/store"
)

var brandHeaders = []string{
	"ID", "Name", "Email", "Website", "Category", "Status",
	"Discovered By AI", "Last Pitched At", "Created At",
}

var pitchHeaders = []string{
	"ID", "Brand", "Brand Email", "Subject", "Status",
	"Sent At", "Opened At", "Clicked At", "Replied At", "Reply Notes",
}

// Export writes a workbook with one sheet of brands and one sheet of
// pitches with their engagement timestamps.
func Export(ctx context.Context, st store.Store, path string) error {
	brands, err := st.ListBrands(ctx, store.BrandFilter{})
	if err != nil {
		return eris.Wrap(err, "report: list brands")
	}

	pitches, err := st.ListPitches(ctx, store.PitchFilter{})
	if err != nil {
		return eris.Wrap(err, "report: list pitches")
	}

	brandsByID := make(map[int64]*model.Brand, len(brands))
	for i := range brands {
		brandsByID[brands[i].ID] = &brands[i]
	}

	f := xlsx.NewFile()

	if err := addBrandSheet(f, brands); err != nil {
		return err
	}
	if err := addPitchSheet(f, pitches, brandsByID); err != nil {
		return err
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "report: save %s", path)
	}
	return nil
}

func addBrandSheet(f *xlsx.File, brands []model.Brand) error {
	sheet, err := f.AddSheet("Brands")
	if err != nil {
		return eris.Wrap(err, "report: add brands sheet")
	}

	writeHeader(sheet, brandHeaders)
	for _, b := range brands {
		row := sheet.AddRow()
		row.AddCell().SetInt64(b.ID)
		row.AddCell().Value = b.Name
		row.AddCell().Value = b.Email
		row.AddCell().Value = b.Website
		row.AddCell().Value = b.Category
		row.AddCell().Value = b.Status
		row.AddCell().SetBool(b.DiscoveredByAI)
		row.AddCell().Value = formatTime(b.LastPitchedAt)
		row.AddCell().Value = b.CreatedAt.Format(time.RFC3339)
	}
	return nil
}

func addPitchSheet(f *xlsx.File, pitches []model.Pitch, brandsByID map[int64]*model.Brand) error {
	sheet, err := f.AddSheet("Pitches")
	if err != nil {
		return eris.Wrap(err, "report: add pitches sheet")
	}

	writeHeader(sheet, pitchHeaders)
	for _, p := range pitches {
		brandName, brandEmail := "", ""
		if b, ok := brandsByID[p.BrandID]; ok {
			brandName, brandEmail = b.Name, b.Email
		}

		row := sheet.AddRow()
		row.AddCell().SetInt64(p.ID)
		row.AddCell().Value = brandName
		row.AddCell().Value = brandEmail
		row.AddCell().Value = p.Subject
		row.AddCell().Value = string(p.Status)
		row.AddCell().Value = formatTime(p.SentAt)
		row.AddCell().Value = formatTime(p.OpenedAt)
		row.AddCell().Value = formatTime(p.ClickedAt)
		row.AddCell().Value = formatTime(p.RepliedAt)
		row.AddCell().Value = p.ReplyNotes
	}
	return nil
}

func writeHeader(sheet *xlsx.Sheet, headers []string) {
	row := sheet.AddRow()
	for _, h := range headers {
		row.AddCell().Value = h
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
