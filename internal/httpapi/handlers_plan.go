package httpapi

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"einsatzplan/internal/plan"
	"einsatzplan/internal/storage"
	logx "einsatzplan/pkg/logx"
	"einsatzplan/pkg/mapslink"
)

type einsatzRequest struct {
	Customer    string   `json:"customer"`
	Location    string   `json:"location,omitempty"`
	Note        string   `json:"note,omitempty"`
	Date        string   `json:"date"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	PeopleCount int      `json:"peopleCount,omitempty"`
	PeopleList  []string `json:"peopleList,omitempty"`
	Status      string   `json:"status,omitempty"`
}

// handlePutEinsatz creates or replaces one entry. The client owns the ID
// (path segment); a fresh UUID string is the convention for new entries.
func (s *Server) handlePutEinsatz(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	entryID := r.PathValue("id")
	if entryID == "" {
		entryID = uuid.NewString()
	}

	var req einsatzRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := s.now()
	createdAt := now
	if prev, err := s.store.GetEinsatz(r.Context(), id.Membership.OrgID, entryID); err == nil {
		createdAt = prev.CreatedAt
	}

	e, err := plan.NewEinsatz(plan.Draft{
		ID:          entryID,
		OrgID:       id.Membership.OrgID,
		Customer:    req.Customer,
		Location:    req.Location,
		Note:        req.Note,
		Date:        req.Date,
		Start:       req.Start,
		End:         req.End,
		PeopleCount: req.PeopleCount,
		PeopleList:  req.PeopleList,
		Status:      plan.ParseStatus(req.Status),
		CreatedAt:   createdAt,
	})
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := s.store.UpsertEinsatz(r.Context(), e, now); err != nil {
		s.log.Error("save entry failed", logx.String("id", entryID), logx.Err(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, e)
}

func (s *Server) handleListEinsaetze(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	q := r.URL.Query()
	list, err := s.store.ListEinsaetze(r.Context(), id.Membership.OrgID, q.Get("from"), q.Get("to"))
	if err != nil {
		s.log.Error("list entries failed", logx.Err(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if list == nil {
		list = []plan.Einsatz{}
	}
	respondJSON(w, http.StatusOK, list)
}

type patchStatusRequest struct {
	Status string `json:"status,omitempty"` // empty toggles
}

func (s *Server) handlePatchStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	entryID := r.PathValue("id")

	var req patchStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	cur, err := s.store.GetEinsatz(r.Context(), id.Membership.OrgID, entryID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "entry not found")
			return
		}
		s.log.Error("load entry failed", logx.Err(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	next := cur.Status.Toggle()
	if req.Status != "" {
		next = plan.ParseStatus(req.Status)
	}
	if err := s.store.PatchEinsatzStatus(r.Context(), id.Membership.OrgID, entryID, next, s.now()); err != nil {
		s.log.Error("patch status failed", logx.Err(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	cur.Status = next
	respondJSON(w, http.StatusOK, cur)
}

func (s *Server) handleDeleteEinsatz(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	err := s.store.DeleteEinsatz(r.Context(), id.Membership.OrgID, r.PathValue("id"))
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, storage.ErrNotFound):
		respondError(w, http.StatusNotFound, "entry not found")
	default:
		s.log.Error("delete entry failed", logx.Err(err))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// handleWeekView returns the laid-out week containing ?date (default:
// today). ?status and ?q narrow the shown entries; totals stay unfiltered.
func (s *Server) handleWeekView(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	q := r.URL.Query()

	anchor := s.now()
	if raw := q.Get("date"); raw != "" {
		d, err := plan.ParseISODate(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		anchor = d
	}
	week := plan.WeekOf(anchor)

	var filter plan.Filter
	if raw := q.Get("status"); raw != "" {
		st := plan.ParseStatus(raw)
		filter.Status = &st
	}
	filter.Query = q.Get("q")

	list, err := s.store.ListEinsaetze(r.Context(), id.Membership.OrgID,
		plan.ToISODate(week.Monday), plan.ToISODate(plan.AddDays(week.Monday, 6)))
	if err != nil {
		s.log.Error("list entries failed", logx.Err(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	view := plan.BuildWeekView(list, week, filter, s.cfg.Geometry, s.cfg.WeekTargetHours)
	for _, day := range view.Days {
		for _, sk := range day.Skipped {
			s.log.Warn("entry skipped in layout",
				logx.String("id", sk.ID),
				logx.String("date", sk.Date),
				logx.String("start", sk.Start),
				logx.String("end", sk.End))
		}
	}
	respondJSON(w, http.StatusOK, view)
}

// handleMapsLink resolves an address to a Google Maps search URL.
func (s *Server) handleMapsLink(w http.ResponseWriter, r *http.Request) {
	url := mapslink.SearchURL(r.URL.Query().Get("address"))
	if url == "" {
		respondError(w, http.StatusBadRequest, "address required")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"url": url})
}
