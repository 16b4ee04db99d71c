package runs

import (
	"context"
	"time"

	"github.com/fitrackhq/fitrack/internal/validation"
)

type Run struct {
	ID              int       `json:"id"`
	UserID          int       `json:"userId"`
	DistanceKm      int       `json:"distance"`
	DurationMinutes int       `json:"duration,omitempty"`
	Date            time.Time `json:"date"`
}

// Store is implemented by the postgres repo and the in-memory repo.
type Store interface {
	Add(ctx context.Context, run Run) (*Run, error)
	// List returns the user runs within [from, to), ordered by date.
	List(ctx context.Context, userID int, from, to time.Time) ([]Run, error)
}

type AddRunRequest struct {
	Distance validation.Number `json:"distance"`
	Duration validation.Number `json:"duration"`
	Date     validation.Date   `json:"date"`
}

// Validate coerces the request into a run. Distances come in as whole
// kilometers, fractional values get rounded. A missing date means the
// run just happened.
func (req *AddRunRequest) Validate(userID int, now time.Time) (*Run, error) {
	verr := validation.NewError()

	distance := validation.PositiveInt(verr, "distance", req.Distance)

	var duration int
	switch {
	case !req.Duration.IsSet():
	case !req.Duration.IsValid():
		verr.Add("duration", "must be a number")
	case req.Duration.Int() <= 0:
		verr.Add("duration", "must be positive")
	default:
		duration = req.Duration.Int()
	}

	date := now
	switch {
	case !req.Date.IsSet():
	case !req.Date.IsValid():
		verr.Add("date", "must be an ISO-8601 date")
	default:
		date = req.Date.Time()
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	return &Run{
		UserID:          userID,
		DistanceKm:      distance,
		DurationMinutes: duration,
		Date:            date,
	}, nil
}
