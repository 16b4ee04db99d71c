package runs

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemRepo is an in-memory Store, used in tests and when the service
// runs without a database.
type MemRepo struct {
	mutex  sync.Mutex
	runs   map[int]Run
	nextID int
}

var _ Store = (*MemRepo)(nil)

func NewMemRepo() *MemRepo {
	return &MemRepo{
		runs:   make(map[int]Run),
		nextID: 1,
	}
}

func (r *MemRepo) Add(_ context.Context, run Run) (*Run, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	run.ID = r.nextID
	r.nextID++
	r.runs[run.ID] = run

	return &run, nil
}

func (r *MemRepo) List(_ context.Context, userID int, from, to time.Time) ([]Run, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var runs []Run
	for _, run := range r.runs {
		if run.UserID != userID {
			continue
		}
		if run.Date.Before(from) || !run.Date.Before(to) {
			continue
		}
		runs = append(runs, run)
	}

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].Date.Equal(runs[j].Date) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Date.Before(runs[j].Date)
	})

	return runs, nil
}
