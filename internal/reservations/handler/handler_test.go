package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"probook/internal/availability"
	"probook/internal/lifecycle"
	"probook/internal/reservations/service"
	apperrors "probook/pkg/errors"
	"probook/pkg/logger"
	"probook/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReservationService struct {
	createFunc     func(ctx context.Context, req *model.ReservationRequest, actor model.Actor) (*model.Reservation, error)
	getFunc        func(ctx context.Context, id string, actor model.Actor) (*model.Reservation, error)
	transitionFunc func(ctx context.Context, id string, action lifecycle.Action, actor model.Actor, opts lifecycle.Options) (*model.TransitionResult, error)
	listFunc       func(ctx context.Context, ownerID string, filter model.ReservationFilter, actor model.Actor) ([]*model.Reservation, int64, error)
}

func (m *mockReservationService) Create(ctx context.Context, req *model.ReservationRequest, actor model.Actor) (*model.Reservation, error) {
	return m.createFunc(ctx, req, actor)
}

func (m *mockReservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	return nil, nil
}

func (m *mockReservationService) GetForActor(ctx context.Context, id string, actor model.Actor) (*model.Reservation, error) {
	return m.getFunc(ctx, id, actor)
}

func (m *mockReservationService) Confirm(ctx context.Context, id string, actor model.Actor) (*model.TransitionResult, error) {
	return m.Transition(ctx, id, lifecycle.Confirm, actor, lifecycle.Options{})
}

func (m *mockReservationService) Reject(ctx context.Context, id string, actor model.Actor) (*model.TransitionResult, error) {
	return m.Transition(ctx, id, lifecycle.Reject, actor, lifecycle.Options{})
}

func (m *mockReservationService) Cancel(ctx context.Context, id string, actor model.Actor) (*model.TransitionResult, error) {
	return m.Transition(ctx, id, lifecycle.Cancel, actor, lifecycle.Options{})
}

func (m *mockReservationService) Complete(ctx context.Context, id string, actor model.Actor, opts lifecycle.Options) (*model.TransitionResult, error) {
	return m.Transition(ctx, id, lifecycle.Complete, actor, opts)
}

func (m *mockReservationService) Transition(ctx context.Context, id string, action lifecycle.Action, actor model.Actor, opts lifecycle.Options) (*model.TransitionResult, error) {
	return m.transitionFunc(ctx, id, action, actor, opts)
}

func (m *mockReservationService) ListForProfessional(ctx context.Context, professionalID string, filter model.ReservationFilter, actor model.Actor) ([]*model.Reservation, int64, error) {
	return m.listFunc(ctx, professionalID, filter, actor)
}

func (m *mockReservationService) ListForClient(ctx context.Context, clientID string, filter model.ReservationFilter, actor model.Actor) ([]*model.Reservation, int64, error) {
	return m.listFunc(ctx, clientID, filter, actor)
}

type mockAvailabilityService struct {
	windowsFunc   func(ctx context.Context, professionalID string, date time.Time) ([]availability.Window, error)
	slotsFunc     func(ctx context.Context, q service.SlotQuery) (*service.SlotList, error)
	durationsFunc func(ctx context.Context, professionalID string, start time.Time) ([]int, error)
	isFreeFunc    func(ctx context.Context, professionalID string, start, end time.Time) (bool, error)
}

func (m *mockAvailabilityService) Windows(ctx context.Context, professionalID string, date time.Time) ([]availability.Window, error) {
	return m.windowsFunc(ctx, professionalID, date)
}

func (m *mockAvailabilityService) Slots(ctx context.Context, q service.SlotQuery) (*service.SlotList, error) {
	return m.slotsFunc(ctx, q)
}

func (m *mockAvailabilityService) DurationOptions(ctx context.Context, professionalID string, start time.Time) ([]int, error) {
	return m.durationsFunc(ctx, professionalID, start)
}

func (m *mockAvailabilityService) IsFree(ctx context.Context, professionalID string, start, end time.Time) (bool, error) {
	return m.isFreeFunc(ctx, professionalID, start, end)
}

func newRouter(rs service.ReservationService, as service.AvailabilityService) *httprouter.Router {
	router := httprouter.New()
	NewReservationHandler(rs, logger.Discard()).RegisterRoutes(router)
	NewAvailabilityHandler(as, logger.Discard()).RegisterRoutes(router)
	return router
}

func serve(router http.Handler, method, target, body string, actor *model.Actor) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if actor != nil {
		req.Header.Set("X-Actor-ID", actor.ID)
		req.Header.Set("X-Actor-Role", string(actor.Role))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body apperrors.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

var (
	client = model.Actor{ID: "client-1", Role: model.RoleClient}
	pro    = model.Actor{ID: "pro-1", Role: model.RoleProfessional}
)

func TestCreate(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	body := `{"professional_id":"pro-1","client_id":"client-1","start_at":"2026-03-02T09:00:00Z","duration_minutes":60}`

	tests := []struct {
		name       string
		body       string
		actor      *model.Actor
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{name: "created", body: body, actor: &client, wantStatus: http.StatusCreated},
		{name: "missing actor", body: body, wantStatus: http.StatusBadRequest, wantCode: apperrors.CodeInvalidInput},
		{name: "unknown field", body: `{"professional_id":"pro-1","colour":"red"}`, actor: &client, wantStatus: http.StatusBadRequest, wantCode: apperrors.CodeInvalidInput},
		{name: "slot taken", body: body, actor: &client, serviceErr: apperrors.SlotConflict("pro-1"), wantStatus: http.StatusConflict, wantCode: apperrors.CodeSlotConflict},
		{name: "validation", body: body, actor: &client, serviceErr: apperrors.Validation("bad", nil), wantStatus: http.StatusUnprocessableEntity, wantCode: apperrors.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *model.ReservationRequest
			rs := &mockReservationService{
				createFunc: func(ctx context.Context, req *model.ReservationRequest, actor model.Actor) (*model.Reservation, error) {
					got = req
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					return &model.Reservation{ID: "r1", ProfessionalID: req.ProfessionalID, StartAt: req.StartAt, Status: model.StatusPending}, nil
				},
			}

			rec := serve(newRouter(rs, nil), http.MethodPost, "/api/v1/reservations", tt.body, tt.actor)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorCode(t, rec))
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, start, got.StartAt)
			assert.Equal(t, 60, got.DurationMinutes)
		})
	}
}

func TestTransition_NoOpIsOK(t *testing.T) {
	rs := &mockReservationService{
		transitionFunc: func(ctx context.Context, id string, action lifecycle.Action, actor model.Actor, opts lifecycle.Options) (*model.TransitionResult, error) {
			assert.Equal(t, "r1", id)
			assert.Equal(t, lifecycle.Confirm, action)
			return &model.TransitionResult{Reservation: &model.Reservation{ID: id, Status: model.StatusConfirmed}, NoOp: true}, nil
		},
	}

	rec := serve(newRouter(rs, nil), http.MethodPost, "/api/v1/reservations/r1/confirm", "", &pro)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data model.TransitionResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Data.NoOp)
	assert.Equal(t, model.StatusConfirmed, body.Data.Reservation.Status)
}

func TestTransition_CompleteAllowEarly(t *testing.T) {
	var gotOpts lifecycle.Options
	rs := &mockReservationService{
		transitionFunc: func(ctx context.Context, id string, action lifecycle.Action, actor model.Actor, opts lifecycle.Options) (*model.TransitionResult, error) {
			gotOpts = opts
			return &model.TransitionResult{Reservation: &model.Reservation{ID: id, Status: model.StatusCompleted}}, nil
		},
	}
	router := newRouter(rs, nil)

	rec := serve(router, http.MethodPost, "/api/v1/reservations/r1/complete?allow_early=true", "", &pro)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gotOpts.AllowEarlyCompletion)

	rec = serve(router, http.MethodPost, "/api/v1/reservations/r1/complete?allow_early=maybe", "", &pro)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransition_InvalidIsConflict(t *testing.T) {
	rs := &mockReservationService{
		transitionFunc: func(ctx context.Context, id string, action lifecycle.Action, actor model.Actor, opts lifecycle.Options) (*model.TransitionResult, error) {
			return nil, apperrors.InvalidTransition("REJECTED", "CANCELLED", "")
		},
	}

	rec := serve(newRouter(rs, nil), http.MethodPost, "/api/v1/reservations/r1/cancel", "", &client)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, apperrors.CodeInvalidTransition, errorCode(t, rec))
}

func TestListForProfessional_ParsesFilter(t *testing.T) {
	var (
		gotOwner  string
		gotFilter model.ReservationFilter
	)
	rs := &mockReservationService{
		listFunc: func(ctx context.Context, ownerID string, filter model.ReservationFilter, actor model.Actor) ([]*model.Reservation, int64, error) {
			gotOwner, gotFilter = ownerID, filter
			return []*model.Reservation{{ID: "r1"}}, 7, nil
		},
	}

	target := "/api/v1/professionals/pro-1/reservations?status=PENDING&status=CONFIRMED&from=2026-03-01T00:00:00Z&limit=5&offset=5"
	rec := serve(newRouter(rs, nil), http.MethodGet, target, "", &pro)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, "pro-1", gotOwner)
	assert.Equal(t, []model.ReservationStatus{model.StatusPending, model.StatusConfirmed}, gotFilter.Statuses)
	require.NotNil(t, gotFilter.From)
	assert.Nil(t, gotFilter.To)
	assert.Equal(t, 5, gotFilter.Limit)
	assert.Equal(t, int64(5), gotFilter.Offset)

	var body struct {
		TotalCount int64 `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(7), body.TotalCount)
}

func TestListForClient_BadTime(t *testing.T) {
	rs := &mockReservationService{}
	rec := serve(newRouter(rs, nil), http.MethodGet, "/api/v1/clients/client-1/reservations?to=tomorrow", "", &client)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSlots(t *testing.T) {
	var got service.SlotQuery
	as := &mockAvailabilityService{
		slotsFunc: func(ctx context.Context, q service.SlotQuery) (*service.SlotList, error) {
			got = q
			return &service.SlotList{ProfessionalID: q.ProfessionalID, Date: q.Date.Format(time.DateOnly)}, nil
		},
	}
	router := newRouter(&mockReservationService{}, as)

	rec := serve(router, http.MethodGet, "/api/v1/professionals/pro-1/slots?date=2026-03-02&duration_minutes=45", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pro-1", got.ProfessionalID)
	assert.Equal(t, 45, got.DurationMinutes)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), got.Date)

	rec = serve(router, http.MethodGet, "/api/v1/professionals/pro-1/slots?duration_minutes=45", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIsFree(t *testing.T) {
	as := &mockAvailabilityService{
		isFreeFunc: func(ctx context.Context, professionalID string, start, end time.Time) (bool, error) {
			return end.Sub(start) <= time.Hour, nil
		},
	}
	router := newRouter(&mockReservationService{}, as)

	rec := serve(router, http.MethodGet, "/api/v1/professionals/pro-1/availability?start=2026-03-02T09:00:00Z&end=2026-03-02T10:00:00Z", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data struct {
			Free bool `json:"free"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Data.Free)

	rec = serve(router, http.MethodGet, "/api/v1/professionals/pro-1/availability?start=2026-03-02T09:00:00Z", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDurations_RequiresStart(t *testing.T) {
	as := &mockAvailabilityService{
		durationsFunc: func(ctx context.Context, professionalID string, start time.Time) ([]int, error) {
			return []int{30, 60}, nil
		},
	}
	router := newRouter(&mockReservationService{}, as)

	rec := serve(router, http.MethodGet, "/api/v1/professionals/pro-1/durations", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(router, http.MethodGet, "/api/v1/professionals/pro-1/durations?start=2026-03-02T09:00:00Z", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"duration_minutes":[30,60]`)
}
