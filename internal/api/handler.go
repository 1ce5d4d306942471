package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/waylog/waylog/internal/models"
	"github.com/waylog/waylog/internal/service"
	"github.com/waylog/waylog/internal/storage"
)

// userIDHeader identifies the acting user. Authentication is an upstream
// concern (a gateway or session layer); the API only needs to know who is
// acting.
const userIDHeader = "X-User-ID"

// Handler holds the services behind the HTTP surface.
type Handler struct {
	logs  *service.LogService
	trips *service.TripService
}

// NewHandler creates a Handler over the given services.
func NewHandler(logs *service.LogService, trips *service.TripService) *Handler {
	return &Handler{logs: logs, trips: trips}
}

func (h *Handler) userID(r *http.Request) string {
	if id := r.Header.Get(userIDHeader); id != "" {
		return id
	}
	return r.URL.Query().Get("userId")
}

// --- trips ---

func (h *Handler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	ownerID := h.userID(r)
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, "acting user is required")
		return
	}

	var req tripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	trip, err := tripFromRequest(&req, ownerID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.trips.CreateTrip(r.Context(), trip); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTripJSON(trip))
}

func (h *Handler) ListTrips(w http.ResponseWriter, r *http.Request) {
	userID := h.userID(r)
	if userID == "" {
		writeError(w, http.StatusBadRequest, "acting user is required")
		return
	}

	trips, err := h.trips.ListTrips(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	out := make([]tripJSON, 0, len(trips))
	for i := range trips {
		out = append(out, toTripJSON(&trips[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetTrip(w http.ResponseWriter, r *http.Request) {
	trip, err := h.trips.GetTrip(r.Context(), chi.URLParam(r, "tripID"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTripJSON(trip))
}

func (h *Handler) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripID")

	existing, err := h.trips.GetTrip(r.Context(), tripID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	var req tripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	trip, err := tripFromRequest(&req, existing.OwnerID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	trip.ID = tripID
	trip.CreatedAt = existing.CreatedAt

	if err := h.trips.UpdateTrip(r.Context(), trip); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTripJSON(trip))
}

func (h *Handler) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	if err := h.trips.DeleteTrip(r.Context(), chi.URLParam(r, "tripID")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	if err := h.trips.AddMember(r.Context(), chi.URLParam(r, "tripID"), req.UserID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	err := h.trips.RemoveMember(r.Context(), chi.URLParam(r, "tripID"), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- entries ---

func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripID")

	var from, to time.Time
	if s := r.URL.Query().Get("from"); s != "" {
		t, err := parseDay(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from date")
			return
		}
		from = t
	}
	if s := r.URL.Query().Get("to"); s != "" {
		t, err := parseDay(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to date")
			return
		}
		to = t
	}

	entries, err := h.logs.Entries(r.Context(), tripID, from, to)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	out := make([]entryJSON, 0, len(entries))
	for i := range entries {
		out = append(out, toEntryJSON(&entries[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	in, ok := h.entryInput(w, r)
	if !ok {
		return
	}
	if err := h.logs.CreateEntry(r.Context(), in); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) SaveEntry(w http.ResponseWriter, r *http.Request) {
	in, ok := h.entryInput(w, r)
	if !ok {
		return
	}
	if err := h.logs.SaveEntry(r.Context(), in); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	ownerID := h.userID(r)
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, "acting user is required")
		return
	}
	date, err := parseDay(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}

	if err := h.logs.DeleteEntry(r.Context(), chi.URLParam(r, "tripID"), ownerID, date); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// entryInput decodes and validates the shared entry payload.
func (h *Handler) entryInput(w http.ResponseWriter, r *http.Request) (service.EntryInput, bool) {
	var in service.EntryInput

	ownerID := h.userID(r)
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, "acting user is required")
		return in, false
	}

	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return in, false
	}

	date, err := parseDay(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return in, false
	}

	shared := make([]models.Category, 0, len(req.SharedCategories))
	for _, s := range req.SharedCategories {
		c := models.Category(s)
		if !c.Valid() {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown category %q", s))
			return in, false
		}
		shared = append(shared, c)
	}

	in = service.EntryInput{
		TripID:           chi.URLParam(r, "tripID"),
		OwnerID:          ownerID,
		Date:             date,
		AppliedTo:        req.AppliedTo,
		SharedCategories: shared,
	}
	if req.Worktime != nil {
		in.Drafts.Worktime = &models.WorktimeFields{
			StartTime:   req.Worktime.StartTime,
			EndTime:     req.Worktime.EndTime,
			Description: req.Worktime.Description,
		}
	}
	if req.Accommodation != nil {
		in.Drafts.Accommodation = &models.AccommodationFields{
			Lodging:   req.Accommodation.Lodging,
			Breakfast: req.Accommodation.Breakfast,
			Lunch:     req.Accommodation.Lunch,
			Dinner:    req.Accommodation.Dinner,
		}
	}
	if req.Additional != nil {
		in.Drafts.Additional = &models.AdditionalFields{Notes: req.Additional.Notes}
	}
	if len(req.OverridesByUser) > 0 {
		in.OverridesByUser = make(map[string]*models.WorktimeFields, len(req.OverridesByUser))
		for userID, o := range req.OverridesByUser {
			if o == nil {
				continue
			}
			in.OverridesByUser[userID] = &models.WorktimeFields{
				StartTime:   o.StartTime,
				EndTime:     o.EndTime,
				Description: o.Description,
			}
		}
	}

	return in, true
}

// --- helpers ---

func tripFromRequest(req *tripRequest, ownerID string) (*models.Trip, error) {
	if req.Name == "" {
		return nil, errors.New("trip name is required")
	}
	start, err := parseDay(req.StartDate)
	if err != nil {
		return nil, errors.New("invalid start date")
	}
	end, err := parseDay(req.EndDate)
	if err != nil {
		return nil, errors.New("invalid end date")
	}
	return &models.Trip{
		Name:        req.Name,
		Destination: req.Destination,
		StartDate:   start,
		EndDate:     end,
		OwnerID:     ownerID,
		MemberIDs:   req.MemberIDs,
	}, nil
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var conflict *service.ConflictError
	if errors.As(err, &conflict) {
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error":   "conflict",
			"message": conflict.Error(),
			"userIds": conflict.UserIDs,
		})
		return
	}

	var sealed *service.SealedRecordError
	if errors.As(err, &sealed) {
		writeError(w, http.StatusUnprocessableEntity, sealed.Error())
		return
	}

	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	slog.Error("request handling failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
