package service

import (
	"context"

	"github.com/google/uuid"

	"eld-trip-service/internal/domain"
	"eld-trip-service/internal/repo"
)

// ExportService assembles a flat export of a trip and its planned stops.
type ExportService struct {
	trips repo.TripRepo
	stops repo.StopRepo
}

// NewExportService constructs an ExportService backed by the provided repos.
func NewExportService(trips repo.TripRepo, stops repo.StopRepo) *ExportService {
	return &ExportService{trips: trips, stops: stops}
}

// Export returns one ExportRow per stop on the trip, in sequence order.
// A trip with no stops contributes one row with empty stop fields.
func (s *ExportService) Export(ctx context.Context, tripID uuid.UUID) ([]domain.ExportRow, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	stops, err := s.stops.ListByTripID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	base := domain.ExportRow{
		TripID:          trip.ID.String(),
		CurrentLocation: trip.CurrentLocation,
		PickupLocation:  trip.PickupLocation,
		DropoffLocation: trip.DropoffLocation,
		TotalDistance:   trip.TotalDistance,
		Status:          string(trip.Status),
	}

	if len(stops) == 0 {
		return []domain.ExportRow{base}, nil
	}

	rows := make([]domain.ExportRow, 0, len(stops))
	for _, stop := range stops {
		row := base
		row.StopType = string(stop.StopType)
		row.StopLocation = stop.Location
		arrival, departure := stop.ArrivalTime, stop.DepartureTime
		row.ArrivalTime = &arrival
		row.DepartureTime = &departure
		row.DurationMinutes = stop.DurationMinutes
		row.DistanceFromStart = stop.DistanceFromStart
		row.Notes = stop.Notes
		rows = append(rows, row)
	}

	return rows, nil
}
