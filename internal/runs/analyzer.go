package runs

import (
	"context"
	"time"
)

type runsLister interface {
	List(ctx context.Context, userID int, from, to time.Time) ([]Run, error)
}

// PeriodStats aggregates the runs of one calendar period. StartDate and
// EndDate are both inclusive, matching what gets displayed to the user.
type PeriodStats struct {
	Runs            []Run     `json:"runs"`
	TotalDistanceKm int       `json:"totalDistance"`
	AvgPaceMinPerKm float64   `json:"avgPaceMinPerKm"`
	StartDate       time.Time `json:"startDate"`
	EndDate         time.Time `json:"endDate"`
}

type Stats struct {
	Weekly  PeriodStats `json:"weekly"`
	Monthly PeriodStats `json:"monthly"`
	Yearly  PeriodStats `json:"yearly"`
}

// Analyzer computes running statistics over calendar periods. Weeks start
// on Monday, all period boundaries are taken in UTC.
type Analyzer struct {
	repo runsLister
	// ability to inject the clock for unit testing
	NowFunc func() time.Time
}

func NewAnalyzer(repo runsLister) *Analyzer {
	return &Analyzer{
		repo:    repo,
		NowFunc: time.Now,
	}
}

func (a *Analyzer) WeekStats(ctx context.Context, userID int) (*PeriodStats, error) {
	now := a.NowFunc().UTC()
	start := weekStart(now)
	return a.periodStats(ctx, userID, start, start.AddDate(0, 0, 7))
}

func (a *Analyzer) AllStats(ctx context.Context, userID int) (*Stats, error) {
	now := a.NowFunc().UTC()

	week := weekStart(now)
	weekly, err := a.periodStats(ctx, userID, week, week.AddDate(0, 0, 7))
	if err != nil {
		return nil, err
	}

	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthly, err := a.periodStats(ctx, userID, month, month.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}

	year := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	yearly, err := a.periodStats(ctx, userID, year, year.AddDate(1, 0, 0))
	if err != nil {
		return nil, err
	}

	return &Stats{
		Weekly:  *weekly,
		Monthly: *monthly,
		Yearly:  *yearly,
	}, nil
}

// periodStats queries the half-open interval [start, end) and reports the
// last day of the period as the inclusive end date.
func (a *Analyzer) periodStats(
	ctx context.Context,
	userID int,
	start, end time.Time,
) (*PeriodStats, error) {
	periodRuns, err := a.repo.List(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	if periodRuns == nil {
		periodRuns = []Run{}
	}

	var totalDistance int
	var paceSum float64
	var timedRuns int
	for _, run := range periodRuns {
		totalDistance += run.DistanceKm
		if run.DurationMinutes > 0 && run.DistanceKm > 0 {
			paceSum += float64(run.DurationMinutes) / float64(run.DistanceKm)
			timedRuns++
		}
	}

	var avgPace float64
	if timedRuns > 0 {
		avgPace = paceSum / float64(timedRuns)
	}

	return &PeriodStats{
		Runs:            periodRuns,
		TotalDistanceKm: totalDistance,
		AvgPaceMinPerKm: avgPace,
		StartDate:       start,
		EndDate:         end.AddDate(0, 0, -1),
	}, nil
}

func weekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	// time.Weekday counts from Sunday, shift so the week starts on Monday
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
