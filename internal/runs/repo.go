package runs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fitrackhq/fitrack/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

var _ Store = (*Repo)(nil)

func (r *Repo) Add(ctx context.Context, run Run) (_ *Run, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "runsRepo.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx,
		`INSERT INTO runs (user_id, distance_km, duration_minutes, date)
		VALUES ($1, $2, $3, $4)
		RETURNING id;`,
		run.UserID, run.DistanceKm, run.DurationMinutes, run.Date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, errors.New("unexpected error, no rows returned")
	}

	var id int
	if err := rows.Scan(&id); err != nil {
		return nil, fmt.Errorf("rows scan: %w", err)
	}

	run.ID = id
	return &run, nil
}

func (r *Repo) List(ctx context.Context, userID int, from, to time.Time) (_ []Run, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "runsRepo.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, distance_km, duration_minutes, date
		FROM runs
		WHERE user_id = $1 AND date >= $2 AND date < $3
		ORDER BY date, id;`,
		userID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(
			&run.ID, &run.UserID, &run.DistanceKm,
			&run.DurationMinutes, &run.Date,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return runs, nil
}
