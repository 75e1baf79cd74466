package service

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"probook/internal/availability"
	"probook/internal/lifecycle"
	"probook/internal/notifications"
	reservationserrors "probook/internal/reservations/errors"
	"probook/internal/reservations/validator"
	"probook/pkg/config"
	apperrors "probook/pkg/errors"
	"probook/pkg/logger"
	"probook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ────────────────────────────────────────────────
// In-memory collaborators
// ────────────────────────────────────────────────

type memoryRepository struct {
	mu           sync.Mutex
	reservations map[string]*model.Reservation
	casFunc      func(id string, from, to model.ReservationStatus) (bool, error)
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{reservations: make(map[string]*model.Reservation)}
}

func (m *memoryRepository) CreateIfFree(ctx context.Context, r *model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.reservations {
		if existing.ProfessionalID == r.ProfessionalID && existing.Status.Active() &&
			existing.StartAt.Before(r.EndAt) && r.StartAt.Before(existing.EndAt) {
			return reservationserrors.ErrSlotTaken
		}
	}
	stored := *r
	m.reservations[r.ID] = &stored
	return nil
}

func (m *memoryRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok {
		return nil, reservationserrors.ErrNotFound
	}
	out := *r
	return &out, nil
}

func (m *memoryRepository) FindActiveOverlapping(ctx context.Context, professionalID string, start, end time.Time) ([]*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Reservation
	for _, r := range m.reservations {
		if r.ProfessionalID == professionalID && r.Status.Active() && r.StartAt.Before(end) && start.Before(r.EndAt) {
			c := *r
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memoryRepository) matching(match func(*model.Reservation) bool) []*model.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Reservation
	for _, r := range m.reservations {
		if match(r) {
			c := *r
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *model.Reservation) int { return a.StartAt.Compare(b.StartAt) })
	return out
}

func (m *memoryRepository) ListByProfessional(ctx context.Context, professionalID string, filter model.ReservationFilter) ([]*model.Reservation, error) {
	return m.matching(func(r *model.Reservation) bool { return r.ProfessionalID == professionalID }), nil
}

func (m *memoryRepository) CountByProfessional(ctx context.Context, professionalID string, filter model.ReservationFilter) (int64, error) {
	return int64(len(m.matching(func(r *model.Reservation) bool { return r.ProfessionalID == professionalID }))), nil
}

func (m *memoryRepository) ListByClient(ctx context.Context, clientID string, filter model.ReservationFilter) ([]*model.Reservation, error) {
	return m.matching(func(r *model.Reservation) bool { return r.ClientID == clientID }), nil
}

func (m *memoryRepository) CountByClient(ctx context.Context, clientID string, filter model.ReservationFilter) (int64, error) {
	return int64(len(m.matching(func(r *model.Reservation) bool { return r.ClientID == clientID }))), nil
}

func (m *memoryRepository) CompareAndSwapStatus(ctx context.Context, id string, from, to model.ReservationStatus, at time.Time) (bool, error) {
	if m.casFunc != nil {
		return m.casFunc(id, from, to)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok || r.Status != from {
		return false, nil
	}
	r.Status = to
	r.UpdatedAt = at
	return true, nil
}

func (m *memoryRepository) setStatus(id string, status model.ReservationStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reservations[id].Status = status
}

type fakeProfessionals map[string]*model.Professional

func (f fakeProfessionals) GetByID(ctx context.Context, id string) (*model.Professional, error) {
	p, ok := f[id]
	if !ok {
		return nil, apperrors.NotFoundWithID("Professional", id)
	}
	return p, nil
}

type fakeServices map[string]*model.Service

func (f fakeServices) GetByID(ctx context.Context, id string) (*model.Service, error) {
	s, ok := f[id]
	if !ok {
		return nil, apperrors.NotFoundWithID("Service", id)
	}
	return s, nil
}

type fakeSchedules map[string]*model.WeeklySchedule

func (f fakeSchedules) GetSchedule(ctx context.Context, professionalID string) (*model.WeeklySchedule, error) {
	s, ok := f[professionalID]
	if !ok {
		return nil, apperrors.NotFoundWithID("Schedule", professionalID)
	}
	return s, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notifications.Event
	err    error
}

func (n *recordingNotifier) Notify(ctx context.Context, e notifications.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return n.err
}

func (n *recordingNotifier) recorded() []notifications.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.events)
}

// ────────────────────────────────────────────────
// Fixtures
// ────────────────────────────────────────────────

var (
	// 2026-03-01 is a Sunday; bookings below land on Monday 2026-03-02.
	testNow  = time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	monday   = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	proActor = model.Actor{ID: "pro-1", Role: model.RoleProfessional}
	clientA  = model.Actor{ID: "client-a", Role: model.RoleClient}
	clientB  = model.Actor{ID: "client-b", Role: model.RoleClient}
	otherPro = model.Actor{ID: "pro-2", Role: model.RoleProfessional}
)

func at(hour, minute int) time.Time {
	return monday.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

// utcWeek is open 08:00-18:00 UTC every day with a 12:00-13:00 break.
func utcWeek(professionalID string) *model.WeeklySchedule {
	s := &model.WeeklySchedule{ProfessionalID: professionalID, TimeZone: "UTC"}
	for _, w := range model.Weekdays {
		s.Days = append(s.Days, model.DaySchedule{
			Weekday:    w,
			IsOpen:     true,
			OpenTime:   "08:00",
			CloseTime:  "18:00",
			BreakStart: "12:00",
			BreakEnd:   "13:00",
		})
	}
	return s
}

func testConfig() *config.Config {
	return &config.Config{
		Log:                logger.Discard(),
		SlotStep:           30 * time.Minute,
		CancellationNotice: 0,
	}
}

type fixture struct {
	repo         *memoryRepository
	notifier     *recordingNotifier
	reservations *reservationService
	availability *availabilityService
	clock        *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testConfig()
	repo := newMemoryRepository()
	notifier := &recordingNotifier{}
	windows := availability.New(fakeSchedules{"pro-1": utcWeek("pro-1")})
	services := fakeServices{
		"svc-haircut": {ID: "svc-haircut", ProfessionalID: "pro-1", Name: "Haircut", DurationMinutes: 45, Price: 9000, IsActive: true},
		"svc-retired": {ID: "svc-retired", ProfessionalID: "pro-1", Name: "Old", DurationMinutes: 30, Price: 5000, IsActive: false},
		"svc-free":    {ID: "svc-free", ProfessionalID: "pro-1", Name: "Free", DurationMinutes: 30, Price: 0, IsActive: true},
	}
	professionals := fakeProfessionals{
		"pro-1": {ID: "pro-1", Name: "Dana", HourlyRate: 20000, TimeZone: "UTC"},
	}

	clock := testNow
	now := func() time.Time { return clock }

	rs := NewReservationService(repo, validator.NewReservationValidator(cfg.Log), professionals, services, windows, notifier, cfg).(*reservationService)
	rs.now = now
	as := NewAvailabilityService(windows, services, repo, cfg).(*availabilityService)
	as.now = now

	return &fixture{repo: repo, notifier: notifier, reservations: rs, availability: as, clock: &clock}
}

func request(client model.Actor, start time.Time, minutes int) *model.ReservationRequest {
	return &model.ReservationRequest{
		ProfessionalID:  "pro-1",
		ClientID:        client.ID,
		StartAt:         start,
		DurationMinutes: minutes,
	}
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr, "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code, appErr.Message)
}

// ────────────────────────────────────────────────
// Create
// ────────────────────────────────────────────────

func TestCreate_PricesByHourlyRate(t *testing.T) {
	f := newFixture(t)

	res, err := f.reservations.Create(context.Background(), request(clientA, at(9, 0), 90), clientA)
	require.NoError(t, err)

	assert.NotEmpty(t, res.ID)
	assert.Equal(t, model.StatusPending, res.Status)
	assert.Equal(t, at(10, 30), res.EndAt)
	assert.Equal(t, int64(30000), res.TotalPrice)
	assert.Equal(t, model.CurrencyILS, res.Currency)

	events := f.notifier.recorded()
	require.Len(t, events, 1)
	assert.Equal(t, res.ID, events[0].ReservationID)
	assert.Equal(t, model.StatusPending, events[0].ToStatus)
	assert.Empty(t, events[0].FromStatus)
}

func TestCreate_ServiceFixesDurationAndPrice(t *testing.T) {
	f := newFixture(t)
	req := request(clientA, at(9, 0), 120)
	req.ServiceID = "svc-haircut"

	res, err := f.reservations.Create(context.Background(), req, clientA)
	require.NoError(t, err)
	assert.Equal(t, at(9, 45), res.EndAt)
	assert.Equal(t, int64(9000), res.TotalPrice)
	assert.Equal(t, "svc-haircut", res.ServiceID)
}

func TestCreate_EndAtSetsDuration(t *testing.T) {
	f := newFixture(t)
	end := at(14, 30)
	req := &model.ReservationRequest{ProfessionalID: "pro-1", ClientID: clientA.ID, StartAt: at(14, 0), EndAt: &end}

	res, err := f.reservations.Create(context.Background(), req, clientA)
	require.NoError(t, err)
	assert.Equal(t, end, res.EndAt)
	assert.Equal(t, int64(10000), res.TotalPrice)
}

func TestCreate_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		req   func() *model.ReservationRequest
		actor model.Actor
		code  string
	}{
		{
			name:  "start in the past",
			req:   func() *model.ReservationRequest { return request(clientA, testNow.Add(-time.Hour), 60) },
			actor: clientA,
			code:  apperrors.CodeValidation,
		},
		{
			name:  "missing length",
			req:   func() *model.ReservationRequest { return request(clientA, at(9, 0), 0) },
			actor: clientA,
			code:  apperrors.CodeValidation,
		},
		{
			name:  "crosses the break",
			req:   func() *model.ReservationRequest { return request(clientA, at(11, 30), 60) },
			actor: clientA,
			code:  apperrors.CodeValidation,
		},
		{
			name:  "after closing",
			req:   func() *model.ReservationRequest { return request(clientA, at(17, 30), 60) },
			actor: clientA,
			code:  apperrors.CodeValidation,
		},
		{
			name: "inactive service",
			req: func() *model.ReservationRequest {
				r := request(clientA, at(9, 0), 0)
				r.ServiceID = "svc-retired"
				return r
			},
			actor: clientA,
			code:  apperrors.CodeValidation,
		},
		{
			name: "zero price service",
			req: func() *model.ReservationRequest {
				r := request(clientA, at(9, 0), 0)
				r.ServiceID = "svc-free"
				return r
			},
			actor: clientA,
			code:  apperrors.CodeValidation,
		},
		{
			name: "unknown professional",
			req: func() *model.ReservationRequest {
				r := request(clientA, at(9, 0), 60)
				r.ProfessionalID = "pro-404"
				return r
			},
			actor: clientA,
			code:  apperrors.CodeNotFound,
		},
		{
			name:  "booking for someone else",
			req:   func() *model.ReservationRequest { return request(clientA, at(9, 0), 60) },
			actor: clientB,
			code:  apperrors.CodeForbidden,
		},
		{
			name:  "another professional",
			req:   func() *model.ReservationRequest { return request(clientA, at(9, 0), 60) },
			actor: otherPro,
			code:  apperrors.CodeForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.reservations.Create(context.Background(), tt.req(), tt.actor)
			requireCode(t, err, tt.code)
			assert.Empty(t, f.notifier.recorded())
		})
	}
}

func TestCreate_ProfessionalEntersBooking(t *testing.T) {
	f := newFixture(t)
	_, err := f.reservations.Create(context.Background(), request(clientA, at(9, 0), 60), proActor)
	require.NoError(t, err)
}

func TestCreate_OverlapIsSlotConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.reservations.Create(ctx, request(clientA, at(10, 0), 60), clientA)
	require.NoError(t, err)

	_, err = f.reservations.Create(ctx, request(clientB, at(10, 30), 60), clientB)
	requireCode(t, err, apperrors.CodeSlotConflict)
	assert.Equal(t, 409, apperrors.AsAppError(err).StatusCode())
}

func TestCreate_BackToBackIsAllowed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.reservations.Create(ctx, request(clientA, at(10, 0), 60), clientA)
	require.NoError(t, err)
	_, err = f.reservations.Create(ctx, request(clientB, at(11, 0), 60), clientB)
	require.NoError(t, err)
	_, err = f.reservations.Create(ctx, request(clientB, at(9, 0), 60), clientB)
	require.NoError(t, err)
}

func TestCreate_CancelledReservationFreesSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.reservations.Create(ctx, request(clientA, at(10, 0), 60), clientA)
	require.NoError(t, err)
	_, err = f.reservations.Cancel(ctx, res.ID, clientA)
	require.NoError(t, err)

	_, err = f.reservations.Create(ctx, request(clientB, at(10, 0), 60), clientB)
	require.NoError(t, err)
}

func TestCreate_ConcurrentRequestsForSameSlot(t *testing.T) {
	f := newFixture(t)
	const callers = 25

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		conflicts atomic.Int32
	)
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			client := model.Actor{ID: "client-" + string(rune('a'+i)), Role: model.RoleClient}
			_, err := f.reservations.Create(context.Background(), request(client, at(15, 0), 60), client)
			switch {
			case err == nil:
				succeeded.Add(1)
			case apperrors.HasCode(err, apperrors.CodeSlotConflict):
				conflicts.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(callers-1), conflicts.Load())
}

func TestCreate_NotifierFailureDoesNotFailCreate(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("broker down")

	res, err := f.reservations.Create(context.Background(), request(clientA, at(9, 0), 60), clientA)
	require.NoError(t, err)

	stored, err := f.repo.FindByID(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, stored.Status)
}

// ────────────────────────────────────────────────
// Lifecycle
// ────────────────────────────────────────────────

func created(t *testing.T, f *fixture, start time.Time) *model.Reservation {
	t.Helper()
	res, err := f.reservations.Create(context.Background(), request(clientA, start, 60), clientA)
	require.NoError(t, err)
	return res
}

func TestConfirm_TwiceIsNoOp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := created(t, f, at(9, 0))

	first, err := f.reservations.Confirm(ctx, res.ID, proActor)
	require.NoError(t, err)
	assert.False(t, first.NoOp)
	assert.Equal(t, model.StatusConfirmed, first.Reservation.Status)

	second, err := f.reservations.Confirm(ctx, res.ID, proActor)
	require.NoError(t, err)
	assert.True(t, second.NoOp)
	assert.Equal(t, model.StatusConfirmed, second.Reservation.Status)

	events := f.notifier.recorded()
	require.Len(t, events, 2)
	assert.Equal(t, model.StatusPending, events[1].FromStatus)
	assert.Equal(t, model.StatusConfirmed, events[1].ToStatus)
	assert.Equal(t, model.RoleProfessional, events[1].Actor)
}

func TestConfirm_ByClientIsForbidden(t *testing.T) {
	f := newFixture(t)
	res := created(t, f, at(9, 0))

	_, err := f.reservations.Confirm(context.Background(), res.ID, clientA)
	requireCode(t, err, apperrors.CodeForbidden)
}

func TestTransition_ByNonParticipantIsForbidden(t *testing.T) {
	f := newFixture(t)
	res := created(t, f, at(9, 0))

	_, err := f.reservations.Cancel(context.Background(), res.ID, clientB)
	requireCode(t, err, apperrors.CodeForbidden)
}

func TestTransition_FromTerminalIsInvalid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := created(t, f, at(9, 0))

	_, err := f.reservations.Reject(ctx, res.ID, proActor)
	require.NoError(t, err)

	_, err = f.reservations.Confirm(ctx, res.ID, proActor)
	requireCode(t, err, apperrors.CodeInvalidTransition)
	assert.Equal(t, 409, apperrors.AsAppError(err).StatusCode())
}

func TestTransition_UnknownReservation(t *testing.T) {
	f := newFixture(t)
	_, err := f.reservations.Confirm(context.Background(), "missing", proActor)
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestComplete_BeforeEndIsRefused(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := created(t, f, at(9, 0))
	_, err := f.reservations.Confirm(ctx, res.ID, proActor)
	require.NoError(t, err)

	assert.Equal(t, model.SourceClient, res.Source)

	_, err = f.reservations.Complete(ctx, res.ID, proActor, lifecycle.Options{})
	requireCode(t, err, apperrors.CodeInvalidTransition)

	_, err = f.reservations.Complete(ctx, res.ID, proActor, lifecycle.Options{AllowEarlyCompletion: true})
	requireCode(t, err, apperrors.CodeInvalidTransition)
	assert.Equal(t, "cannot complete before end time", apperrors.AsAppError(err).Message)

	stored, err := f.reservations.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, stored.Status)
}

func TestComplete_ManualBookingEarly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.reservations.Create(ctx, request(clientA, at(9, 0), 60), proActor)
	require.NoError(t, err)
	assert.Equal(t, model.SourceManual, res.Source)
	_, err = f.reservations.Confirm(ctx, res.ID, proActor)
	require.NoError(t, err)

	_, err = f.reservations.Complete(ctx, res.ID, proActor, lifecycle.Options{})
	requireCode(t, err, apperrors.CodeInvalidTransition)

	out, err := f.reservations.Complete(ctx, res.ID, proActor, lifecycle.Options{AllowEarlyCompletion: true})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, out.Reservation.Status)
}

func TestComplete_AfterEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := created(t, f, at(9, 0))
	_, err := f.reservations.Confirm(ctx, res.ID, proActor)
	require.NoError(t, err)

	*f.clock = at(10, 0)
	out, err := f.reservations.Complete(ctx, res.ID, proActor, lifecycle.Options{})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, out.Reservation.Status)
}

func TestCancel_NoticePolicyAppliesToClients(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.reservations.machine = lifecycle.NewMachine(lifecycle.NoticePolicy{Notice: 48 * time.Hour})
	res := created(t, f, at(9, 0))
	_, err := f.reservations.Confirm(ctx, res.ID, proActor)
	require.NoError(t, err)

	_, err = f.reservations.Cancel(ctx, res.ID, clientA)
	requireCode(t, err, apperrors.CodeInvalidTransition)

	out, err := f.reservations.Cancel(ctx, res.ID, proActor)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, out.Reservation.Status)
}

func TestTransition_LostSwapToSameTargetIsNoOp(t *testing.T) {
	f := newFixture(t)
	res := created(t, f, at(9, 0))
	f.repo.casFunc = func(id string, from, to model.ReservationStatus) (bool, error) {
		f.repo.setStatus(id, to)
		return false, nil
	}

	out, err := f.reservations.Confirm(context.Background(), res.ID, proActor)
	require.NoError(t, err)
	assert.True(t, out.NoOp)
	assert.Len(t, f.notifier.recorded(), 1, "only the creation event")
}

func TestTransition_LostSwapToOtherStatusIsInvalid(t *testing.T) {
	f := newFixture(t)
	res := created(t, f, at(9, 0))
	f.repo.casFunc = func(id string, from, to model.ReservationStatus) (bool, error) {
		f.repo.setStatus(id, model.StatusCancelled)
		return false, nil
	}

	_, err := f.reservations.Confirm(context.Background(), res.ID, proActor)
	requireCode(t, err, apperrors.CodeInvalidTransition)
	assert.Equal(t, "CANCELLED", apperrors.AsAppError(err).Details["from"])
}

func TestTransition_StoreFailureIsInternal(t *testing.T) {
	f := newFixture(t)
	res := created(t, f, at(9, 0))
	f.repo.casFunc = func(string, model.ReservationStatus, model.ReservationStatus) (bool, error) {
		return false, errors.New("connection reset")
	}

	_, err := f.reservations.Confirm(context.Background(), res.ID, proActor)
	requireCode(t, err, apperrors.CodeInternal)
}

// ────────────────────────────────────────────────
// Queries
// ────────────────────────────────────────────────

func TestGetForActor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := created(t, f, at(9, 0))

	got, err := f.reservations.GetForActor(ctx, res.ID, proActor)
	require.NoError(t, err)
	assert.Equal(t, res.ID, got.ID)

	_, err = f.reservations.GetForActor(ctx, res.ID, clientB)
	requireCode(t, err, apperrors.CodeForbidden)
}

func TestListForProfessional(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created(t, f, at(14, 0))
	created(t, f, at(9, 0))

	list, total, err := f.reservations.ListForProfessional(ctx, "pro-1", model.ReservationFilter{}, proActor)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 2)
	assert.True(t, list[0].StartAt.Before(list[1].StartAt))

	_, _, err = f.reservations.ListForProfessional(ctx, "pro-1", model.ReservationFilter{}, otherPro)
	requireCode(t, err, apperrors.CodeForbidden)

	_, _, err = f.reservations.ListForProfessional(ctx, "pro-1", model.ReservationFilter{Statuses: []model.ReservationStatus{"LOST"}}, proActor)
	requireCode(t, err, apperrors.CodeValidation)
}

func TestListForClient_Empty(t *testing.T) {
	f := newFixture(t)
	list, total, err := f.reservations.ListForClient(context.Background(), clientB.ID, model.ReservationFilter{}, clientB)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

// ────────────────────────────────────────────────
// Availability
// ────────────────────────────────────────────────

func TestAvailability_Windows(t *testing.T) {
	f := newFixture(t)
	windows, err := f.availability.Windows(context.Background(), "pro-1", monday)
	require.NoError(t, err)
	assert.Equal(t, []availability.Window{
		{Start: at(8, 0), End: at(12, 0)},
		{Start: at(13, 0), End: at(18, 0)},
	}, windows)

	_, err = f.availability.Windows(context.Background(), "pro-404", monday)
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestAvailability_SlotsMarkBusyTime(t *testing.T) {
	f := newFixture(t)
	created(t, f, at(9, 0))

	list, err := f.availability.Slots(context.Background(), SlotQuery{ProfessionalID: "pro-1", Date: monday, DurationMinutes: 60})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", list.Date)

	// 08:00..11:00 in the morning window, 13:00..17:00 in the afternoon.
	require.Len(t, list.Slots, 7+9)
	byStart := make(map[time.Time]bool)
	for _, s := range list.Slots {
		byStart[s.Start] = s.Available
	}
	assert.True(t, byStart[at(8, 0)])
	assert.False(t, byStart[at(8, 30)])
	assert.False(t, byStart[at(9, 0)])
	assert.False(t, byStart[at(9, 30)])
	assert.True(t, byStart[at(10, 0)])
}

func TestAvailability_SlotsForService(t *testing.T) {
	f := newFixture(t)

	list, err := f.availability.Slots(context.Background(), SlotQuery{ProfessionalID: "pro-1", Date: monday, ServiceID: "svc-haircut"})
	require.NoError(t, err)
	assert.Equal(t, 45, list.Duration)
	require.NotEmpty(t, list.Slots)
	assert.Equal(t, at(8, 45), list.Slots[0].End)

	_, err = f.availability.Slots(context.Background(), SlotQuery{ProfessionalID: "pro-1", Date: monday, ServiceID: "svc-retired"})
	requireCode(t, err, apperrors.CodeValidation)

	_, err = f.availability.Slots(context.Background(), SlotQuery{ProfessionalID: "pro-1", Date: monday})
	requireCode(t, err, apperrors.CodeValidation)
}

func TestAvailability_DurationOptions(t *testing.T) {
	f := newFixture(t)
	created(t, f, at(10, 0))

	options, err := f.availability.DurationOptions(context.Background(), "pro-1", at(8, 30))
	require.NoError(t, err)
	assert.Equal(t, []int{30, 60, 90}, options)

	options, err = f.availability.DurationOptions(context.Background(), "pro-1", at(12, 30))
	require.NoError(t, err)
	assert.Empty(t, options)
}

func TestAvailability_IsFree(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created(t, f, at(10, 0))

	free, err := f.availability.IsFree(ctx, "pro-1", at(10, 30), at(11, 30))
	require.NoError(t, err)
	assert.False(t, free)

	free, err = f.availability.IsFree(ctx, "pro-1", at(11, 0), at(12, 0))
	require.NoError(t, err)
	assert.True(t, free)

	_, err = f.availability.IsFree(ctx, "pro-1", at(11, 0), at(11, 0))
	requireCode(t, err, apperrors.CodeValidation)
}
