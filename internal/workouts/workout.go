package workouts

import (
	"context"
	"errors"
	"time"

	"github.com/fitrackhq/fitrack/internal/validation"
)

var ErrWorkoutNotFound = errors.New("workout not found")

// Category is the closed set of workout types the service tracks.
type Category string

const (
	CategorySwimming      Category = "Swimming"
	CategoryBoxing        Category = "Boxing"
	CategoryRunning       Category = "Running"
	CategoryCycling       Category = "Cycling"
	CategoryWeightlifting Category = "Weightlifting"
	CategoryYoga          Category = "Yoga"
	CategoryOther         Category = "Other"
)

var allCategories = map[Category]struct{}{
	CategorySwimming:      {},
	CategoryBoxing:        {},
	CategoryRunning:       {},
	CategoryCycling:       {},
	CategoryWeightlifting: {},
	CategoryYoga:          {},
	CategoryOther:         {},
}

func (c Category) Valid() bool {
	_, ok := allCategories[c]
	return ok
}

type Workout struct {
	ID              int       `json:"id"`
	UserID          int       `json:"userId"`
	Category        Category  `json:"name"`
	Date            time.Time `json:"date"`
	DurationMinutes int       `json:"duration"`
}

type Exercise struct {
	ID        int    `json:"id"`
	WorkoutID int    `json:"workoutId"`
	Name      string `json:"name"`
	Sets      int    `json:"sets"`
	Reps      int    `json:"reps"`
	WeightKg  int    `json:"weight"`
}

type ListParams struct {
	UserID int
	// half-open interval: [From, To)
	From *time.Time
	To   *time.Time
}

// Store is implemented by the postgres repo and the in-memory repo.
type Store interface {
	Add(ctx context.Context, workout Workout) (*Workout, error)
	Get(ctx context.Context, id int) (*Workout, error)
	List(ctx context.Context, params ListParams) ([]Workout, error)
	Delete(ctx context.Context, id int) error
	AddExercise(ctx context.Context, exercise Exercise) (*Exercise, error)
	ListExercises(ctx context.Context, workoutID int) ([]Exercise, error)
}

type AddWorkoutRequest struct {
	Name     string            `json:"name"`
	Date     validation.Date   `json:"date"`
	Duration validation.Number `json:"duration"`
}

func (req *AddWorkoutRequest) Validate(userID int) (*Workout, error) {
	verr := validation.NewError()

	name := validation.RequiredString(verr, "name", req.Name)
	category := Category(name)
	if name != "" && !category.Valid() {
		verr.Add("name", "unknown workout category")
	}
	date := validation.RequiredDate(verr, "date", req.Date)
	duration := validation.PositiveInt(verr, "duration", req.Duration)

	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	return &Workout{
		UserID:          userID,
		Category:        category,
		Date:            date,
		DurationMinutes: duration,
	}, nil
}

type AddExerciseRequest struct {
	Name   string            `json:"name"`
	Sets   validation.Number `json:"sets"`
	Reps   validation.Number `json:"reps"`
	Weight validation.Number `json:"weight"`
}

func (req *AddExerciseRequest) Validate(workoutID int) (*Exercise, error) {
	verr := validation.NewError()

	name := validation.RequiredString(verr, "name", req.Name)
	sets := validation.PositiveInt(verr, "sets", req.Sets)
	reps := validation.PositiveInt(verr, "reps", req.Reps)

	// weight is optional, bodyweight exercises come in without it
	var weight int
	switch {
	case !req.Weight.IsSet():
	case !req.Weight.IsValid():
		verr.Add("weight", "must be a number")
	case req.Weight.Int() <= 0:
		verr.Add("weight", "must be positive")
	default:
		weight = req.Weight.Int()
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	return &Exercise{
		WorkoutID: workoutID,
		Name:      name,
		Sets:      sets,
		Reps:      reps,
		WeightKg:  weight,
	}, nil
}
