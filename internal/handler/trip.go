package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"eld-trip-service/internal/domain"
	"eld-trip-service/internal/repo"
	"eld-trip-service/internal/service"
)

// driverIDHeader carries the caller's identity. There is no ambient auth;
// the driver is an explicit parameter of every trip-creating request.
const driverIDHeader = "X-Driver-ID"

// createTripRequest is the POST /api/trips body. Coordinates are optional;
// a half-specified lat/lng pair is treated as absent and the address is
// geocoded instead.
type createTripRequest struct {
	CurrentLocation string   `json:"current_location"`
	CurrentLat      *float64 `json:"current_lat"`
	CurrentLng      *float64 `json:"current_lng"`

	PickupLocation string   `json:"pickup_location"`
	PickupLat      *float64 `json:"pickup_lat"`
	PickupLng      *float64 `json:"pickup_lng"`

	DropoffLocation string   `json:"dropoff_location"`
	DropoffLat      *float64 `json:"dropoff_lat"`
	DropoffLng      *float64 `json:"dropoff_lng"`

	CurrentCycleUsed float64 `json:"current_cycle_used"`
}

// planResponse is the body for endpoints that return a trip with its plan.
type planResponse struct {
	Trip      domain.Trip       `json:"trip"`
	Stops     []domain.Stop     `json:"stops"`
	DailyLogs []domain.DailyLog `json:"daily_logs"`
}

func toPlanResponse(res repo.PlanResult) planResponse {
	if res.Stops == nil {
		res.Stops = []domain.Stop{}
	}
	if res.Logs == nil {
		res.Logs = []domain.DailyLog{}
	}
	return planResponse{Trip: res.Trip, Stops: res.Stops, DailyLogs: res.Logs}
}

// createTrip handles POST /api/trips.
func (s *Server) createTrip(w http.ResponseWriter, r *http.Request) {
	driverID, err := uuid.Parse(r.Header.Get(driverIDHeader))
	if err != nil {
		writeRequestError(w, r, "X-Driver-ID header must be a valid UUID")
		return
	}

	var req createTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRequestError(w, r, "invalid JSON body")
		return
	}

	in := service.CreateTripInput{
		CurrentLocation:  req.CurrentLocation,
		CurrentCoords:    domain.NewCoordinates(req.CurrentLat, req.CurrentLng),
		PickupLocation:   req.PickupLocation,
		PickupCoords:     domain.NewCoordinates(req.PickupLat, req.PickupLng),
		DropoffLocation:  req.DropoffLocation,
		DropoffCoords:    domain.NewCoordinates(req.DropoffLat, req.DropoffLng),
		CurrentCycleUsed: req.CurrentCycleUsed,
	}

	result, err := s.trips.PlanTrip(r.Context(), driverID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, toPlanResponse(result))
}

// listTrips handles GET /api/trips.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) listTrips(w http.ResponseWriter, r *http.Request) {
	driverID, err := uuid.Parse(r.Header.Get(driverIDHeader))
	if err != nil {
		writeRequestError(w, r, "X-Driver-ID header must be a valid UUID")
		return
	}

	params := domain.NewPaginationParams(queryInt(r, "page"), queryInt(r, "limit"))
	trips, err := s.trips.List(r.Context(), driverID, params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"data": trips,
		"pagination": map[string]int{
			"page":  params.Page,
			"limit": params.Limit,
		},
	})
}

// getTrip handles GET /api/trips/{id}. The response carries the trip with its
// ordered stops and daily logs.
func (s *Server) getTrip(w http.ResponseWriter, r *http.Request) {
	id, err := tripID(r)
	if err != nil {
		writeRequestError(w, r, "trip id must be a valid UUID")
		return
	}

	result, err := s.trips.GetDetail(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toPlanResponse(result))
}

// recalculateTrip handles POST /api/trips/{id}/recalculate.
func (s *Server) recalculateTrip(w http.ResponseWriter, r *http.Request) {
	id, err := tripID(r)
	if err != nil {
		writeRequestError(w, r, "trip id must be a valid UUID")
		return
	}

	result, err := s.trips.Recalculate(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toPlanResponse(result))
}

// updateStatusRequest is the PATCH /api/trips/{id}/status body.
type updateStatusRequest struct {
	Status domain.TripStatus `json:"status"`
}

// updateTripStatus handles PATCH /api/trips/{id}/status.
func (s *Server) updateTripStatus(w http.ResponseWriter, r *http.Request) {
	id, err := tripID(r)
	if err != nil {
		writeRequestError(w, r, "trip id must be a valid UUID")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRequestError(w, r, "invalid JSON body")
		return
	}

	trip, err := s.trips.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, trip)
}

// deleteTrip handles DELETE /api/trips/{id}.
func (s *Server) deleteTrip(w http.ResponseWriter, r *http.Request) {
	id, err := tripID(r)
	if err != nil {
		writeRequestError(w, r, "trip id must be a valid UUID")
		return
	}

	if err := s.trips.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// queryInt parses an optional integer query parameter. Malformed values are
// ignored rather than rejected; pagination falls back to its defaults.
func queryInt(r *http.Request, name string) *int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}
