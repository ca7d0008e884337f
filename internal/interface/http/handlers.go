package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rhythm-hub/rhythm-core/internal/application/command"
	"github.com/rhythm-hub/rhythm-core/internal/application/query"
	"github.com/rhythm-hub/rhythm-core/internal/domain/content"
	"github.com/rhythm-hub/rhythm-core/internal/domain/role"
	"github.com/rhythm-hub/rhythm-core/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"name":    "rhythm-core",
		"version": s.config.Version,
		"endpoints": map[string]string{
			"daily":    "POST /api/v1/rhythm/daily",
			"range":    "POST /api/v1/rhythm/range",
			"monthly":  "POST /api/v1/rhythm/monthly",
			"yearly":   "POST /api/v1/rhythm/yearly",
			"profiles": "POST /api/v1/profiles",
			"health":   "GET /health",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.deps.HealthChecker.Check(r.Context())
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, r, code, status)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := s.deps.HealthChecker.Check(r.Context())
	if !status.Ready {
		writeJSONError(w, r, http.StatusServiceUnavailable, "not_ready", status.Message)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// RHYTHM HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleDaily handles POST /api/v1/rhythm/daily
func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	var req dailyRequest
	if !s.decode(w, r, &req) {
		return
	}
	q, err := req.query(s.config.DefaultUTCOffset)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := s.deps.Daily.Handle(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeDocument(w, r, doc, "")
}

// handleRange handles POST /api/v1/rhythm/range
func (s *Server) handleRange(w http.ResponseWriter, r *http.Request) {
	var req rangeRequest
	if !s.decode(w, r, &req) {
		return
	}
	q, err := req.query(s.config.DefaultUTCOffset)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.deps.Range.Handle(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if s.markdown(r, "") {
		docs := make([]content.Content, len(res.Days))
		for i, d := range res.Days {
			docs[i] = d.Content
		}
		writeMarkdown(w, http.StatusOK, s.deps.Presenter.RenderMany(docs))
		return
	}
	writeJSONWithMeta(w, r, http.StatusOK, res, &ResponseMeta{TotalCount: len(res.Days)})
}

// handleMonthly handles POST /api/v1/rhythm/monthly
func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	var req monthlyRequest
	if !s.decode(w, r, &req) {
		return
	}
	q, err := req.query(s.config.DefaultUTCOffset)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := s.deps.Monthly.Handle(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeDocument(w, r, doc, "")
}

// handleYearly handles POST /api/v1/rhythm/yearly
func (s *Server) handleYearly(w http.ResponseWriter, r *http.Request) {
	var req yearlyRequest
	if !s.decode(w, r, &req) {
		return
	}
	q, err := req.query(s.config.DefaultUTCOffset)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := s.deps.Yearly.Handle(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeDocument(w, r, doc, "")
}

func (s *Server) writeDocument(w http.ResponseWriter, r *http.Request, doc *query.Document, profileID string) {
	if s.markdown(r, profileID) {
		writeMarkdown(w, http.StatusOK, s.deps.Presenter.Render(doc.Content))
		return
	}
	writeJSON(w, r, http.StatusOK, doc)
}

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleCreateProfile handles POST /api/v1/profiles
func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	if s.deps.CreateProfile == nil {
		s.storageDisabled(w, r)
		return
	}
	var req createProfileRequest
	if !s.decode(w, r, &req) {
		return
	}
	p, err := s.deps.CreateProfile.Handle(r.Context(), command.CreateProfileCommand{
		Birth: req.params(),
		Role:  req.Role,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/v1/profiles/"+p.ID)
	writeJSON(w, r, http.StatusCreated, p)
}

// handleGetProfile handles GET /api/v1/profiles/{id}
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetProfile == nil {
		s.storageDisabled(w, r)
		return
	}
	p, err := s.deps.GetProfile.Handle(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

// handleDeleteProfile handles DELETE /api/v1/profiles/{id}
func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	if s.deps.DeleteProfile == nil {
		s.storageDisabled(w, r)
		return
	}
	if err := s.deps.DeleteProfile.Handle(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleProfileDaily handles GET /api/v1/profiles/{id}/rhythm/daily?date=&role=
func (s *Server) handleProfileDaily(w http.ResponseWriter, r *http.Request) {
	if s.deps.ProfileRhythm == nil {
		s.storageDisabled(w, r)
		return
	}
	q := query.GetProfileRhythmQuery{ProfileID: r.PathValue("id")}

	if v := r.URL.Query().Get("date"); v != "" {
		date, err := timeutil.ParseDate(v)
		if err != nil {
			s.writeError(w, r, invalidParam("date", err))
			return
		}
		q.Date = date
	} else {
		q.Date = timeutil.DateOf(time.Now().In(timeutil.FixedZone(s.config.DefaultUTCOffset)))
	}

	if v, ok := r.URL.Query()["role"]; ok {
		parsed, err := role.ParseRole(v[0])
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		q.Role = &parsed
	}

	doc, err := s.deps.ProfileRhythm.Handle(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeDocument(w, r, doc, q.ProfileID)
}

// handleContentLog handles GET /api/v1/profiles/{id}/logs?limit=
func (s *Server) handleContentLog(w http.ResponseWriter, r *http.Request) {
	if s.deps.ContentLog == nil {
		s.storageDisabled(w, r)
		return
	}
	limit := query.DefaultContentLogLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, r, invalidParam("limit", err))
			return
		}
		limit = n
	}

	entries, err := s.deps.ContentLog.Handle(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSONWithMeta(w, r, http.StatusOK, entries, &ResponseMeta{TotalCount: len(entries)})
}

func (s *Server) storageDisabled(w http.ResponseWriter, r *http.Request) {
	writeJSONError(w, r, http.StatusServiceUnavailable, "storage_disabled", "profile storage is not configured")
}
