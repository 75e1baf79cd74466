package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
	_ "time/tzdata"

	"go.mongodb.org/mongo-driver/mongo"

	professionalserrors "probook/internal/professionals/errors"
	"probook/internal/professionals/validator"
	"probook/pkg/config"
	mongotx "probook/pkg/db/mongo"
	apperrors "probook/pkg/errors"
	"probook/pkg/logger"
	"probook/pkg/model"
)

// Mock repository for testing
type mockProfessionalRepository struct {
	createFunc func(ctx context.Context, pro *model.Professional) error
	findFunc   func(ctx context.Context, id string) (*model.Professional, error)
	updateFunc func(ctx context.Context, id string, pro *model.Professional) error
}

func (m *mockProfessionalRepository) Create(ctx context.Context, pro *model.Professional) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, pro)
	}
	return nil
}

func (m *mockProfessionalRepository) FindByID(ctx context.Context, id string) (*model.Professional, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, id)
	}
	return nil, fmt.Errorf("%w: %s", professionalserrors.ErrNotFound, id)
}

func (m *mockProfessionalRepository) Update(ctx context.Context, id string, pro *model.Professional) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, pro)
	}
	return nil
}

func (m *mockProfessionalRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	var sessCtx mongo.SessionContext
	return fn(sessCtx)
}

type recordingSchedules struct {
	created []*model.WeeklySchedule
	err     error
}

func (r *recordingSchedules) Create(ctx context.Context, sc *model.WeeklySchedule) error {
	if r.err != nil {
		return r.err
	}
	r.created = append(r.created, sc)
	return nil
}

func newTestService(repo *mockProfessionalRepository, schedules *recordingSchedules) *professionalService {
	log := logger.New(logger.Config{
		Level:     "info",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	cfg := &config.Config{
		Log:              log,
		ReadTimeout:      5 * time.Second,
		WriteTimeout:     5 * time.Second,
		ScheduleTemplate: config.BuiltinScheduleTemplate(),
	}
	return NewProfessionalService(repo, schedules, validator.NewProfessionalValidator(log), cfg).(*professionalService)
}

func TestOnboard(t *testing.T) {
	tests := []struct {
		name      string
		input     model.Professional
		wantCode  string
		wantPhone string
		wantTZ    string
	}{
		{
			name:      "local israeli number",
			input:     model.Professional{Name: "  Dana   Levi ", Phone: "050-123-4567", HourlyRate: 20000},
			wantPhone: "+972501234567",
			wantTZ:    "Asia/Jerusalem",
		},
		{
			name:      "explicit zone wins",
			input:     model.Professional{Name: "Sam Cohen", Phone: "+972501234567", TimeZone: "Europe/London"},
			wantPhone: "+972501234567",
			wantTZ:    "Europe/London",
		},
		{
			name:      "us number",
			input:     model.Professional{Name: "Alex Stone", Phone: "+1 212 555 0100"},
			wantPhone: "+12125550100",
			wantTZ:    "America/New_York",
		},
		{
			name:     "unparseable phone",
			input:    model.Professional{Name: "Dana Levi", Phone: "call me"},
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "name too short",
			input:    model.Professional{Name: "D", Phone: "0501234567"},
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "unknown zone",
			input:    model.Professional{Name: "Dana Levi", Phone: "0501234567", TimeZone: "Mars/Olympus"},
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "negative rate",
			input:    model.Professional{Name: "Dana Levi", Phone: "0501234567", HourlyRate: -100},
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "rate beyond cap",
			input:    model.Professional{Name: "Dana Levi", Phone: "0501234567", HourlyRate: model.MaxHourlyRate + 1},
			wantCode: apperrors.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedules := &recordingSchedules{}
			service := newTestService(&mockProfessionalRepository{}, schedules)

			pro := tt.input
			err := service.Onboard(context.Background(), &pro)
			if tt.wantCode != "" {
				if !apperrors.HasCode(err, tt.wantCode) {
					t.Fatalf("expected %s, got %v", tt.wantCode, err)
				}
				if len(schedules.created) != 0 {
					t.Error("schedule created for a rejected professional")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if pro.ID == "" {
				t.Error("expected an id to be assigned")
			}
			if pro.Phone != tt.wantPhone {
				t.Errorf("phone = %q, want %q", pro.Phone, tt.wantPhone)
			}
			if pro.TimeZone != tt.wantTZ {
				t.Errorf("time zone = %q, want %q", pro.TimeZone, tt.wantTZ)
			}
			if len(schedules.created) != 1 {
				t.Fatalf("expected one schedule, got %d", len(schedules.created))
			}
			sc := schedules.created[0]
			if sc.ProfessionalID != pro.ID || sc.TimeZone != pro.TimeZone {
				t.Errorf("schedule = %+v, want it keyed to %s in %s", sc, pro.ID, pro.TimeZone)
			}
			if len(sc.Days) != 7 {
				t.Errorf("schedule has %d days, want 7", len(sc.Days))
			}
		})
	}
}

func TestOnboard_DuplicatePhone(t *testing.T) {
	schedules := &recordingSchedules{}
	service := newTestService(&mockProfessionalRepository{
		createFunc: func(ctx context.Context, pro *model.Professional) error {
			return fmt.Errorf("%w: %s", professionalserrors.ErrDuplicatePhone, pro.Phone)
		},
	}, schedules)

	err := service.Onboard(context.Background(), &model.Professional{Name: "Dana Levi", Phone: "0501234567"})
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
	if len(schedules.created) != 0 {
		t.Error("schedule created despite the failed insert")
	}
}

func TestOnboard_ScheduleFailure(t *testing.T) {
	service := newTestService(&mockProfessionalRepository{}, &recordingSchedules{err: errors.New("write conflict")})

	err := service.Onboard(context.Background(), &model.Professional{Name: "Dana Levi", Phone: "0501234567"})
	if !apperrors.HasCode(err, apperrors.CodeInternal) {
		t.Fatalf("expected INTERNAL_ERROR, got %v", err)
	}
}

func TestGetByID(t *testing.T) {
	service := newTestService(&mockProfessionalRepository{
		findFunc: func(ctx context.Context, id string) (*model.Professional, error) {
			switch id {
			case "pro-1":
				return &model.Professional{ID: id, Name: "Dana Levi"}, nil
			case "pro-broken":
				return nil, errors.New("socket closed")
			}
			return nil, fmt.Errorf("%w: %s", professionalserrors.ErrNotFound, id)
		},
	}, &recordingSchedules{})

	tests := []struct {
		id       string
		wantCode string
	}{
		{id: "pro-1"},
		{id: "pro-404", wantCode: apperrors.CodeNotFound},
		{id: "pro-broken", wantCode: apperrors.CodeInternal},
		{id: "", wantCode: apperrors.CodeInvalidInput},
	}

	for _, tt := range tests {
		_, err := service.GetByID(context.Background(), tt.id)
		if tt.wantCode == "" {
			if err != nil {
				t.Errorf("GetByID(%q): unexpected error: %v", tt.id, err)
			}
			continue
		}
		if !apperrors.HasCode(err, tt.wantCode) {
			t.Errorf("GetByID(%q): expected %s, got %v", tt.id, tt.wantCode, err)
		}
	}
}

func TestUpdate(t *testing.T) {
	rate := int64(25000)
	owner := model.Actor{ID: "pro-1", Role: model.RoleProfessional}
	existing := func(ctx context.Context, id string) (*model.Professional, error) {
		return &model.Professional{
			ID:         id,
			Name:       "Dana Levi",
			Phone:      "+972501234567",
			HourlyRate: 20000,
			TimeZone:   "Asia/Jerusalem",
		}, nil
	}

	tests := []struct {
		name     string
		updates  model.ProfessionalUpdate
		actor    model.Actor
		wantCode string
		check    func(t *testing.T, pro *model.Professional)
	}{
		{
			name:    "new rate",
			updates: model.ProfessionalUpdate{HourlyRate: &rate},
			actor:   owner,
			check: func(t *testing.T, pro *model.Professional) {
				if pro.HourlyRate != 25000 || pro.Name != "Dana Levi" {
					t.Errorf("unexpected merge result: %+v", pro)
				}
			},
		},
		{
			name:     "garbage zone",
			updates:  model.ProfessionalUpdate{TimeZone: "!!"},
			actor:    owner,
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "client",
			updates:  model.ProfessionalUpdate{HourlyRate: &rate},
			actor:    model.Actor{ID: "pro-1", Role: model.RoleClient},
			wantCode: apperrors.CodeForbidden,
		},
		{
			name:     "someone else",
			updates:  model.ProfessionalUpdate{HourlyRate: &rate},
			actor:    model.Actor{ID: "pro-2", Role: model.RoleProfessional},
			wantCode: apperrors.CodeForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := newTestService(&mockProfessionalRepository{findFunc: existing}, &recordingSchedules{})

			updates := tt.updates
			pro, err := service.Update(context.Background(), "pro-1", &updates, tt.actor)
			if tt.wantCode != "" {
				if !apperrors.HasCode(err, tt.wantCode) {
					t.Fatalf("expected %s, got %v", tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, pro)
		})
	}
}
