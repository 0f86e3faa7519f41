package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/pkordes/tripwizard/internal/api"
	"github.com/pkordes/tripwizard/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"trip_id", "trip_title", "day", "date", "stop_name",
	"component_type", "component_title", "location", "price", "currency", "status",
}

// ExportTrip handles GET /api/trips/{id}/export.
// ?format=csv returns CSV, ?format=pdf a printable itinerary; default is JSON.
func (s *Server) ExportTrip(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := tripParams(w, r)
	if !ok {
		return
	}
	var format *string
	if !queryParam(w, r, "format", false, &format) {
		return
	}
	f := deref(format)
	if f != "" && f != "json" && f != "csv" && f != "pdf" {
		writeError(w, http.StatusBadRequest, "validation_error", "format must be one of: json, csv, pdf")
		return
	}

	trip, rows, err := s.exports.Export(r.Context(), owner, id)
	if err != nil {
		s.fail(w, r, err, http.StatusUnprocessableEntity)
		return
	}

	switch f {
	case "csv":
		body := buildCSV(rows)
		attach(w, "text/csv", fmt.Sprintf("trip-%s.csv", trip.ID))
		_, _ = w.Write(body)
	case "pdf":
		body, err := buildPDF(trip, rows)
		if err != nil {
			s.fail(w, r, fmt.Errorf("handler.Server.ExportTrip: %w", err), http.StatusUnprocessableEntity)
			return
		}
		attach(w, "application/pdf", fmt.Sprintf("trip-%s.pdf", trip.ID))
		_, _ = w.Write(body)
	default:
		writeJSON(w, http.StatusOK, api.NewExportRows(rows))
	}
}

func attach(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
}

// buildCSV encodes rows as CSV with a header line.
func buildCSV(rows []domain.ExportRow) []byte {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		cw.Write(csvRecord(r))
	}
	cw.Flush()
	return buf.Bytes()
}

// csvRecord encodes a row as a flat string slice. Day 0 (unscheduled) is empty.
func csvRecord(r domain.ExportRow) []string {
	day := ""
	if r.Day > 0 {
		day = strconv.Itoa(r.Day)
	}
	price := ""
	if r.ComponentType != "" {
		price = strconv.FormatFloat(r.Price, 'f', 2, 64)
	}
	return []string{
		r.TripID, r.TripTitle, day, r.Date, r.StopName,
		r.ComponentType, r.ComponentTitle, r.Location, price, r.Currency, r.Status,
	}
}

// buildPDF renders a one-table itinerary with the trip header and cost total.
func buildPDF(trip domain.Trip, rows []domain.ExportRow) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(trip.Title), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, tr(trip.Title))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	if trip.HasDates() {
		pdf.Cell(0, 6, fmt.Sprintf("%s to %s", trip.StartDate.Format(domain.DateLayout), trip.EndDate.Format(domain.DateLayout)))
		pdf.Ln(6)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Travelers: %d    Status: %s", trip.Travelers, trip.Status))
	pdf.Ln(10)

	widths := []float64{12, 24, 38, 22, 64, 30}
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range []string{"Day", "Date", "Stop", "Type", "Item", "Price"} {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, r := range rows {
		rec := csvRecord(r)
		price := rec[8]
		if price != "" {
			price += " " + r.Currency
		}
		cells := []string{rec[2], r.Date, r.StopName, r.ComponentType, r.ComponentTitle, price}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 7, tr(truncate(c, widths[i])), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	sum := domain.Summarize(trip)
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Total: %.2f %s  (%.2f per person)", sum.Total, sum.Currency, sum.PerPerson))
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 6, "Generated "+time.Now().UTC().Format("2006-01-02 15:04 MST"))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// truncate shortens s to roughly fit a cell of width mm at 10pt.
func truncate(s string, width float64) string {
	limit := int(width / 2)
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-3]) + "..."
}
