package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	reservationserrors "probook/internal/reservations/errors"
	"probook/pkg/config"
	pgtx "probook/pkg/db/postgres"
	"probook/pkg/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const selectColumns = `id, professional_id, client_id, COALESCE(service_id, '') AS service_id,
	start_at, end_at, status, source, total_price, currency, created_at, updated_at`

type postgresReservationRepository struct {
	cfg       *config.Config
	pool      *pgxpool.Pool
	txManager *pgtx.TransactionManager
}

func NewPostgresReservationRepository(cfg *config.Config) ReservationRepository {
	return &postgresReservationRepository{
		cfg:       cfg,
		pool:      cfg.Client.Postgres,
		txManager: pgtx.NewTransactionManager(cfg.Client.Postgres),
	}
}

// CreateIfFree serialises creators per professional with a transaction-scoped
// advisory lock. The exclusion constraint on the table backs this up, so a
// 23P01 from the insert means the same thing as a positive overlap check.
func (r *postgresReservationRepository) CreateIfFree(ctx context.Context, res *model.Reservation) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	err := r.txManager.ExecuteTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, res.ProfessionalID); err != nil {
			return fmt.Errorf("failed to lock professional: %w", err)
		}

		var taken bool
		err := tx.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM reservations
				WHERE professional_id = $1
				  AND status IN ('PENDING', 'CONFIRMED')
				  AND start_at < $3 AND end_at > $2
			)`, res.ProfessionalID, res.StartAt, res.EndAt).Scan(&taken)
		if err != nil {
			return fmt.Errorf("failed to check overlapping reservations: %w", err)
		}
		if taken {
			return reservationserrors.ErrSlotTaken
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO reservations (id, professional_id, client_id, service_id, start_at, end_at,
				status, source, total_price, currency, created_at, updated_at)
			VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11, $12)`,
			res.ID, res.ProfessionalID, res.ClientID, res.ServiceID, res.StartAt, res.EndAt,
			string(res.Status), string(res.Source), res.TotalPrice, res.Currency, res.CreatedAt, res.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create reservation: %w", err)
		}
		return nil
	})

	return createError(err)
}

// createError folds an exclusion-constraint violation into ErrSlotTaken.
func createError(err error) error {
	if pgtx.SQLState(err) == pgtx.SQLStateExclusionViolation {
		return reservationserrors.ErrSlotTaken
	}
	return err
}

func (r *postgresReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT `+selectColumns+` FROM reservations WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}
	res, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[model.Reservation])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, reservationserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to decode reservation: %w", err)
	}
	return res, nil
}

func (r *postgresReservationRepository) FindActiveOverlapping(ctx context.Context, professionalID string, start, end time.Time) ([]*model.Reservation, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return r.query(ctx, `
		SELECT `+selectColumns+` FROM reservations
		WHERE professional_id = $1
		  AND status IN ('PENDING', 'CONFIRMED')
		  AND start_at < $3 AND end_at > $2
		ORDER BY start_at`, professionalID, start, end)
}

func (r *postgresReservationRepository) ListByProfessional(ctx context.Context, professionalID string, filter model.ReservationFilter) ([]*model.Reservation, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	where, args := buildWhere("professional_id", professionalID, filter)
	return r.query(ctx, `SELECT `+selectColumns+` FROM reservations WHERE `+where+` ORDER BY start_at`+pageClause(filter), args...)
}

func (r *postgresReservationRepository) CountByProfessional(ctx context.Context, professionalID string, filter model.ReservationFilter) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	where, args := buildWhere("professional_id", professionalID, filter)
	return r.count(ctx, where, args)
}

func (r *postgresReservationRepository) ListByClient(ctx context.Context, clientID string, filter model.ReservationFilter) ([]*model.Reservation, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	where, args := buildWhere("client_id", clientID, filter)
	return r.query(ctx, `SELECT `+selectColumns+` FROM reservations WHERE `+where+` ORDER BY start_at`+pageClause(filter), args...)
}

func (r *postgresReservationRepository) CountByClient(ctx context.Context, clientID string, filter model.ReservationFilter) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	where, args := buildWhere("client_id", clientID, filter)
	return r.count(ctx, where, args)
}

func (r *postgresReservationRepository) CompareAndSwapStatus(ctx context.Context, id string, from, to model.ReservationStatus, at time.Time) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx,
		`UPDATE reservations SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`,
		id, string(from), string(to), at.UTC())
	if err != nil {
		return false, fmt.Errorf("failed to update reservation status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *postgresReservationRepository) query(ctx context.Context, sql string, args ...any) ([]*model.Reservation, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find reservations: %w", err)
	}
	reservations, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.Reservation])
	if err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}
	return reservations, nil
}

func (r *postgresReservationRepository) count(ctx context.Context, where string, args []any) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM reservations WHERE `+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}
	return n, nil
}

// buildWhere renders the filter as a parameterised WHERE body. column is
// always a constant from this file.
func buildWhere(column, value string, f model.ReservationFilter) (string, []any) {
	clauses := []string{column + " = $1"}
	args := []any{value}
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		clauses = append(clauses, "status = ANY("+next(statuses)+")")
	}
	if f.To != nil {
		clauses = append(clauses, "start_at < "+next(*f.To))
	}
	if f.From != nil {
		clauses = append(clauses, "end_at > "+next(*f.From))
	}
	return strings.Join(clauses, " AND "), args
}

func pageClause(f model.ReservationFilter) string {
	var b strings.Builder
	if f.Limit > 0 {
		b.WriteString(" LIMIT " + strconv.Itoa(f.Limit))
	}
	if f.Offset > 0 {
		b.WriteString(" OFFSET " + strconv.FormatInt(f.Offset, 10))
	}
	return b.String()
}
