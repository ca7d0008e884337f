package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rhythm-hub/rhythm-core/internal/application/query"
	"github.com/rhythm-hub/rhythm-core/internal/domain/birth"
	"github.com/rhythm-hub/rhythm-core/internal/domain/role"
	"github.com/rhythm-hub/rhythm-core/internal/domain/shared"
	"github.com/rhythm-hub/rhythm-core/pkg/logger"
	"github.com/rhythm-hub/rhythm-core/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST BODIES
// ══════════════════════════════════════════════════════════════════════════════

// birthRequest is the wire form of a birth record.
type birthRequest struct {
	Name      string   `json:"name"`
	BirthDate string   `json:"birth_date"`
	BirthTime string   `json:"birth_time"`
	Gender    string   `json:"gender"`
	Place     string   `json:"place"`
	Latitude  *float64 `json:"lat,omitempty"`
	Longitude *float64 `json:"lng,omitempty"`
	UTCOffset *int     `json:"utc_offset_minutes,omitempty"`
}

func (b birthRequest) params() birth.NewInfoParams {
	return birth.NewInfoParams{
		Name:      b.Name,
		BirthDate: b.BirthDate,
		BirthTime: b.BirthTime,
		Gender:    b.Gender,
		PlaceName: b.Place,
		Latitude:  b.Latitude,
		Longitude: b.Longitude,
		UTCOffset: b.UTCOffset,
	}
}

func (b birthRequest) info(defaultOffset int) (birth.Info, error) {
	p := b.params()
	if p.UTCOffset == nil {
		p.UTCOffset = &defaultOffset
	}
	return birth.NewInfo(p)
}

type dailyRequest struct {
	Birth birthRequest `json:"birth"`
	Date  string       `json:"date"`
	Role  string       `json:"role"`
}

func (req dailyRequest) query(defaultOffset int) (query.GetDailyRhythmQuery, error) {
	info, err := req.Birth.info(defaultOffset)
	if err != nil {
		return query.GetDailyRhythmQuery{}, err
	}
	date, err := timeutil.ParseDate(req.Date)
	if err != nil {
		return query.GetDailyRhythmQuery{}, invalidParam("date", err)
	}
	r, err := role.ParseRole(req.Role)
	if err != nil {
		return query.GetDailyRhythmQuery{}, err
	}
	return query.GetDailyRhythmQuery{Birth: info, Date: date, Role: r}, nil
}

type rangeRequest struct {
	Birth birthRequest `json:"birth"`
	From  string       `json:"from"`
	To    string       `json:"to"`
	Role  string       `json:"role"`
}

func (req rangeRequest) query(defaultOffset int) (query.GetRangeRhythmQuery, error) {
	info, err := req.Birth.info(defaultOffset)
	if err != nil {
		return query.GetRangeRhythmQuery{}, err
	}
	from, err := timeutil.ParseDate(req.From)
	if err != nil {
		return query.GetRangeRhythmQuery{}, invalidParam("from", err)
	}
	to, err := timeutil.ParseDate(req.To)
	if err != nil {
		return query.GetRangeRhythmQuery{}, invalidParam("to", err)
	}
	r, err := role.ParseRole(req.Role)
	if err != nil {
		return query.GetRangeRhythmQuery{}, err
	}
	return query.GetRangeRhythmQuery{Birth: info, From: from, To: to, Role: r}, nil
}

type monthlyRequest struct {
	Birth birthRequest `json:"birth"`
	Year  int          `json:"year"`
	Month int          `json:"month"`
	Role  string       `json:"role"`
}

func (req monthlyRequest) query(defaultOffset int) (query.GetMonthlyRhythmQuery, error) {
	info, err := req.Birth.info(defaultOffset)
	if err != nil {
		return query.GetMonthlyRhythmQuery{}, err
	}
	r, err := role.ParseRole(req.Role)
	if err != nil {
		return query.GetMonthlyRhythmQuery{}, err
	}
	return query.GetMonthlyRhythmQuery{Birth: info, Year: req.Year, Month: req.Month, Role: r}, nil
}

type yearlyRequest struct {
	Birth birthRequest `json:"birth"`
	Year  int          `json:"year"`
	Role  string       `json:"role"`
}

func (req yearlyRequest) query(defaultOffset int) (query.GetYearlyRhythmQuery, error) {
	info, err := req.Birth.info(defaultOffset)
	if err != nil {
		return query.GetYearlyRhythmQuery{}, err
	}
	r, err := role.ParseRole(req.Role)
	if err != nil {
		return query.GetYearlyRhythmQuery{}, err
	}
	return query.GetYearlyRhythmQuery{Birth: info, Year: req.Year, Role: r}, nil
}

// createProfileRequest is a flat birth record plus an optional default role.
type createProfileRequest struct {
	birthRequest
	Role string `json:"role"`
}

// ══════════════════════════════════════════════════════════════════════════════
// DECODING AND ERRORS
// ══════════════════════════════════════════════════════════════════════════════

// decode reads a JSON body into dst and writes the error response itself
// when it fails.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSONError(w, r, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large")
			return false
		}
		writeJSONError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

func invalidParam(name string, err error) error {
	return shared.WrapError("http", "parse", shared.ErrInvalidFormat, fmt.Sprintf("invalid %s", name), err)
}

// wantsMarkdown reports whether the caller asked for Markdown, by
// ?format=markdown or an Accept header.
func wantsMarkdown(r *http.Request) bool {
	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "markdown", "md":
		return true
	case "json":
		return false
	}
	return strings.Contains(r.Header.Get("Accept"), "text/markdown")
}

// markdown reports whether r gets Markdown. Callers fall back to JSON while
// FeatureMarkdown is off for profileID.
func (s *Server) markdown(r *http.Request, profileID string) bool {
	return wantsMarkdown(r) && s.deps.Features.IsEnabled(FeatureMarkdown, profileID)
}

// writeError maps domain errors onto status codes. Internal failures are
// logged and reported without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case shared.IsValidation(err):
		writeJSONError(w, r, http.StatusBadRequest, "validation_error", err.Error())
	case shared.IsFeatureDisabled(err):
		writeJSONError(w, r, http.StatusForbidden, "feature_disabled", err.Error())
	case shared.IsNotFound(err):
		writeJSONError(w, r, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, shared.ErrAlreadyExists):
		writeJSONError(w, r, http.StatusConflict, "already_exists", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeJSONError(w, r, http.StatusGatewayTimeout, "timeout", "request deadline exceeded")
	case errors.Is(err, context.Canceled):
		writeJSONError(w, r, http.StatusServiceUnavailable, "canceled", "request canceled")
	default:
		code := "internal_error"
		switch {
		case shared.IsComputation(err):
			code = "computation_error"
		case shared.IsAssembly(err):
			code = "assembly_error"
		}
		logger.FromContextOr(r.Context(), s.logger).Error("request failed",
			logger.String("path", r.URL.Path),
			logger.String("code", code),
			logger.Err(err),
		)
		writeJSONError(w, r, http.StatusInternalServerError, code, "the request could not be completed")
	}
}
