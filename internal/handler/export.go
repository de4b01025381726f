// Package handler — export.go implements GET /api/trips/{id}/export.
// Returns the trip and its stops as a flat table, one row per stop.
// Supports content negotiation via ?format=csv (CSV) or default (JSON).
package handler

import (
	"encoding/csv"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"eld-trip-service/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"trip_id", "current_location", "pickup_location", "dropoff_location",
	"total_distance", "status",
	"stop_type", "stop_location", "arrival_time", "departure_time",
	"duration_minutes", "distance_from_start", "notes",
}

// exportTrip handles GET /api/trips/{id}/export.
// It returns one flat row per planned stop; a trip with no stops yields a
// single row carrying just the trip columns.
func (s *Server) exportTrip(w http.ResponseWriter, r *http.Request) {
	id, err := tripID(r)
	if err != nil {
		writeRequestError(w, r, "trip id must be a valid UUID")
		return
	}

	rows, err := s.exporter.Export(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		writeCSV(w, r, rows)
		return
	}
	writeJSON(w, r, http.StatusOK, rows)
}

// writeCSV streams the rows as CSV with a header line.
func writeCSV(w http.ResponseWriter, r *http.Request, rows []domain.ExportRow) {
	w.Header().Set("Content-Type", "text/csv")
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	cw.Write(csvHeaders)
	for _, row := range rows {
		cw.Write(csvRecord(row))
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		slog.ErrorContext(r.Context(), "write csv export",
			"method", r.Method, "path", r.URL.Path, "error", err)
	}
}

// csvRecord encodes an ExportRow as a flat string slice.
// Nil time pointers are encoded as empty strings.
func csvRecord(row domain.ExportRow) []string {
	return []string{
		row.TripID,
		row.CurrentLocation,
		row.PickupLocation,
		row.DropoffLocation,
		strconv.FormatFloat(row.TotalDistance, 'f', 2, 64),
		row.Status,
		row.StopType,
		row.StopLocation,
		formatOptionalTime(row.ArrivalTime),
		formatOptionalTime(row.DepartureTime),
		strconv.Itoa(row.DurationMinutes),
		strconv.FormatFloat(row.DistanceFromStart, 'f', 2, 64),
		row.Notes,
	}
}

// formatOptionalTime returns the RFC3339 representation of t, or "" if t is nil.
func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
