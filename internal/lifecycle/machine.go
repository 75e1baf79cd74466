// Package lifecycle holds the reservation state machine. It decides whether
// a command may move a reservation; persisting the move is the caller's job
// and must be a compare-and-swap on the source status.
package lifecycle

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"probook/pkg/model"
)

type Action string

const (
	Confirm  Action = "confirm"
	Reject   Action = "reject"
	Cancel   Action = "cancel"
	Complete Action = "complete"
)

var targets = map[Action]model.ReservationStatus{
	Confirm:  model.StatusConfirmed,
	Reject:   model.StatusRejected,
	Cancel:   model.StatusCancelled,
	Complete: model.StatusCompleted,
}

func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := targets[a]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
	return a, nil
}

func (a Action) Target() (model.ReservationStatus, bool) {
	to, ok := targets[a]
	return to, ok
}

// transitions is the complete table; a status without outgoing edges is terminal.
var transitions = map[model.ReservationStatus][]model.ReservationStatus{
	model.StatusPending:   {model.StatusConfirmed, model.StatusRejected, model.StatusCancelled},
	model.StatusConfirmed: {model.StatusCancelled, model.StatusCompleted},
	model.StatusCompleted: nil,
	model.StatusCancelled: nil,
	model.StatusRejected:  nil,
}

type edge struct {
	from, to model.ReservationStatus
}

var edgeRoles = map[edge][]model.ActorRole{
	{model.StatusPending, model.StatusConfirmed}:   {model.RoleProfessional},
	{model.StatusPending, model.StatusRejected}:    {model.RoleProfessional},
	{model.StatusPending, model.StatusCancelled}:   {model.RoleClient},
	{model.StatusConfirmed, model.StatusCancelled}: {model.RoleClient, model.RoleProfessional},
	{model.StatusConfirmed, model.StatusCompleted}: {model.RoleProfessional},
}

var actionRoles = map[Action][]model.ActorRole{
	Confirm:  {model.RoleProfessional},
	Reject:   {model.RoleProfessional},
	Cancel:   {model.RoleClient, model.RoleProfessional},
	Complete: {model.RoleProfessional},
}

func CanTransition(from, to model.ReservationStatus) bool {
	return slices.Contains(transitions[from], to)
}

func IsTerminal(s model.ReservationStatus) bool {
	next, known := transitions[s]
	return known && len(next) == 0
}

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrEarlyCompletion   = errors.New("cannot complete before end time")
	ErrNotParticipant    = errors.New("actor is not a party to this reservation")
	ErrRoleNotPermitted  = errors.New("actor role may not perform this action")
	ErrUnknownAction     = errors.New("unknown lifecycle action")
)

// TransitionError is returned for every refused move. It matches
// ErrInvalidTransition with errors.Is.
type TransitionError struct {
	From   model.ReservationStatus
	To     model.ReservationStatus
	Reason string
	Err    error
}

func (e *TransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot move reservation from %s to %s: %s", e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("cannot move reservation from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidTransition, e.Err}
	}
	return []error{ErrInvalidTransition}
}

// CancellationPolicy decides whether a confirmed reservation may still be cancelled.
type CancellationPolicy interface {
	AllowCancel(r *model.Reservation, actor model.Actor, now time.Time) error
}

type CancellationPolicyFunc func(r *model.Reservation, actor model.Actor, now time.Time) error

func (f CancellationPolicyFunc) AllowCancel(r *model.Reservation, actor model.Actor, now time.Time) error {
	return f(r, actor, now)
}

var AllowAllCancellations = CancellationPolicyFunc(func(*model.Reservation, model.Actor, time.Time) error {
	return nil
})

// NoticePolicy refuses client cancellations closer than Notice to the start.
// Professionals can always cancel. A zero Notice allows everything.
type NoticePolicy struct {
	Notice time.Duration
}

func (p NoticePolicy) AllowCancel(r *model.Reservation, actor model.Actor, now time.Time) error {
	if p.Notice <= 0 || actor.IsProfessional() {
		return nil
	}
	if r.StartAt.Sub(now) < p.Notice {
		return fmt.Errorf("cancellation requires %s notice before start", p.Notice)
	}
	return nil
}

type Options struct {
	// AllowEarlyCompletion lets a professional close out a manual booking
	// before its end time. It has no effect on client bookings.
	AllowEarlyCompletion bool
}

type Decision struct {
	From model.ReservationStatus
	To   model.ReservationStatus
	NoOp bool
}

type Machine struct {
	policy CancellationPolicy
}

func NewMachine(policy CancellationPolicy) *Machine {
	if policy == nil {
		policy = AllowAllCancellations
	}
	return &Machine{policy: policy}
}

// Plan validates action against the reservation as currently stored. When
// the reservation already sits in the action's target status the decision is
// a no-op, which is how duplicate submissions stay harmless.
func (m *Machine) Plan(r *model.Reservation, action Action, actor model.Actor, now time.Time, opts Options) (Decision, error) {
	to, ok := action.Target()
	if !ok {
		return Decision{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	if !isParticipant(r, actor) {
		return Decision{}, ErrNotParticipant
	}
	if !slices.Contains(actionRoles[action], actor.Role) {
		return Decision{}, ErrRoleNotPermitted
	}

	from := r.Status
	if from == to {
		return Decision{From: from, To: to, NoOp: true}, nil
	}
	if !CanTransition(from, to) {
		reason := ""
		if IsTerminal(from) {
			reason = fmt.Sprintf("%s is a terminal status", from)
		}
		return Decision{}, &TransitionError{From: from, To: to, Reason: reason}
	}
	if !slices.Contains(edgeRoles[edge{from, to}], actor.Role) {
		return Decision{}, ErrRoleNotPermitted
	}

	if to == model.StatusCompleted && now.Before(r.EndAt) && !(opts.AllowEarlyCompletion && r.Manual()) {
		return Decision{}, &TransitionError{From: from, To: to, Reason: ErrEarlyCompletion.Error(), Err: ErrEarlyCompletion}
	}
	if from == model.StatusConfirmed && to == model.StatusCancelled {
		if err := m.policy.AllowCancel(r, actor, now); err != nil {
			return Decision{}, &TransitionError{From: from, To: to, Reason: err.Error(), Err: err}
		}
	}

	return Decision{From: from, To: to}, nil
}

func isParticipant(r *model.Reservation, actor model.Actor) bool {
	switch actor.Role {
	case model.RoleProfessional:
		return actor.ID == r.ProfessionalID
	case model.RoleClient:
		return actor.ID == r.ClientID
	}
	return false
}
