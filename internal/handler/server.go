// Package handler implements the HTTP layer of the ELD trip API.
// Handlers are methods on Server, split into domain-specific files
// (trip.go, export.go, health.go) that all share the same struct so
// they can access its dependencies. Routes assembles the chi router.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"eld-trip-service/internal/domain"
	"eld-trip-service/internal/repo"
	"eld-trip-service/internal/service"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type TripServicer interface {
	PlanTrip(ctx context.Context, driverID uuid.UUID, in service.CreateTripInput) (repo.PlanResult, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	GetDetail(ctx context.Context, id uuid.UUID) (repo.PlanResult, error)
	List(ctx context.Context, driverID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, error)
	Recalculate(ctx context.Context, id uuid.UUID) (repo.PlanResult, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, next domain.TripStatus) (domain.Trip, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Exporter defines the flat-export operation the export handler depends on.
type Exporter interface {
	Export(ctx context.Context, tripID uuid.UUID) ([]domain.ExportRow, error)
}

// Server holds the handler dependencies for all API endpoints.
type Server struct {
	trips    TripServicer
	exporter Exporter
}

// NewServer constructs the Server with all its dependencies.
func NewServer(trips TripServicer, exporter Exporter) *Server {
	return &Server{trips: trips, exporter: exporter}
}

// Routes returns the API route tree. Cross-cutting middleware (request ID,
// logging, CORS, body limits) is wired by the caller around this router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", s.getHealth)

	r.Route("/api/trips", func(r chi.Router) {
		r.Post("/", s.createTrip)
		r.Get("/", s.listTrips)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getTrip)
			r.Post("/recalculate", s.recalculateTrip)
			r.Patch("/status", s.updateTripStatus)
			r.Delete("/", s.deleteTrip)
			r.Get("/export", s.exportTrip)
		})
	})

	return r
}

// tripID extracts and parses the {id} URL parameter.
func tripID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}
