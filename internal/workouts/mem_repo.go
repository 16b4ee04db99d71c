package workouts

import (
	"context"
	"sort"
	"sync"
)

// MemRepo is an in-memory Store, used in tests and when the service
// runs without a database.
type MemRepo struct {
	mutex          sync.Mutex
	workouts       map[int]Workout
	exercises      map[int]Exercise
	nextWorkoutID  int
	nextExerciseID int
}

var _ Store = (*MemRepo)(nil)

func NewMemRepo() *MemRepo {
	return &MemRepo{
		workouts:       make(map[int]Workout),
		exercises:      make(map[int]Exercise),
		nextWorkoutID:  1,
		nextExerciseID: 1,
	}
}

func (r *MemRepo) Add(_ context.Context, workout Workout) (*Workout, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	workout.ID = r.nextWorkoutID
	r.nextWorkoutID++
	r.workouts[workout.ID] = workout

	return &workout, nil
}

func (r *MemRepo) Get(_ context.Context, id int) (*Workout, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	workout, ok := r.workouts[id]
	if !ok {
		return nil, ErrWorkoutNotFound
	}
	return &workout, nil
}

func (r *MemRepo) List(_ context.Context, params ListParams) ([]Workout, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var workouts []Workout
	for _, workout := range r.workouts {
		if workout.UserID != params.UserID {
			continue
		}
		if params.From != nil && workout.Date.Before(*params.From) {
			continue
		}
		if params.To != nil && !workout.Date.Before(*params.To) {
			continue
		}
		workouts = append(workouts, workout)
	}

	sort.Slice(workouts, func(i, j int) bool {
		if workouts[i].Date.Equal(workouts[j].Date) {
			return workouts[i].ID > workouts[j].ID
		}
		return workouts[i].Date.After(workouts[j].Date)
	})

	return workouts, nil
}

func (r *MemRepo) Delete(_ context.Context, id int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.workouts[id]; !ok {
		return ErrWorkoutNotFound
	}
	delete(r.workouts, id)

	// exercises go down with their workout
	for exerciseID, exercise := range r.exercises {
		if exercise.WorkoutID == id {
			delete(r.exercises, exerciseID)
		}
	}

	return nil
}

func (r *MemRepo) AddExercise(_ context.Context, exercise Exercise) (*Exercise, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.workouts[exercise.WorkoutID]; !ok {
		return nil, ErrWorkoutNotFound
	}

	exercise.ID = r.nextExerciseID
	r.nextExerciseID++
	r.exercises[exercise.ID] = exercise

	return &exercise, nil
}

func (r *MemRepo) ListExercises(_ context.Context, workoutID int) ([]Exercise, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var exercises []Exercise
	for _, exercise := range r.exercises {
		if exercise.WorkoutID == workoutID {
			exercises = append(exercises, exercise)
		}
	}

	sort.Slice(exercises, func(i, j int) bool {
		return exercises[i].ID < exercises[j].ID
	})

	return exercises, nil
}
