package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"probook/pkg/config"
	apperrors "probook/pkg/errors"
	"probook/pkg/model"
)

const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorRole = "X-Actor-Role"

	DateLayout = "2006-01-02"
)

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64
	if s := query.Get("offset"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = v
	}

	return config.NormalizePaginationLimit(limit), config.NormalizeOffset(offset), nil
}

// DecodeJSON reads a single JSON object into dst, rejecting unknown fields.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.InvalidInput("request body is empty")
		}
		return apperrors.InvalidInput("invalid request body: " + err.Error())
	}
	return nil
}

// ActorFromRequest reads the caller identity forwarded by the gateway.
func ActorFromRequest(r *http.Request) (model.Actor, error) {
	actor := model.Actor{
		ID:   strings.TrimSpace(r.Header.Get(HeaderActorID)),
		Role: model.ActorRole(strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderActorRole)))),
	}
	if actor.ID == "" {
		return actor, apperrors.InvalidInput(HeaderActorID + " header is required")
	}
	if !actor.IsClient() && !actor.IsProfessional() {
		return actor, apperrors.InvalidInput(HeaderActorRole + " header must be 'client' or 'professional'")
	}
	return actor, nil
}

// QueryDate parses a YYYY-MM-DD query parameter as a calendar date.
func QueryDate(r *http.Request, key string) (time.Time, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return time.Time{}, apperrors.InvalidInput(key + " query parameter is required")
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput("invalid " + key + ", expected YYYY-MM-DD: " + s)
	}
	return d, nil
}

func QueryTime(r *http.Request, key string) (*time.Time, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid " + key + ", must be RFC3339: " + s)
	}
	return &t, nil
}

func QueryInt(r *http.Request, key string) (int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperrors.InvalidInput("invalid " + key + " parameter: " + s)
	}
	return v, nil
}
