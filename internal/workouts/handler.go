package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/fitrackhq/fitrack/internal/auth"
	"github.com/fitrackhq/fitrack/internal/telemetry/metrics"
	"github.com/fitrackhq/fitrack/internal/telemetry/tracing"
	"github.com/fitrackhq/fitrack/internal/validation"
	"github.com/fitrackhq/fitrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type workoutsRepo interface {
	Add(ctx context.Context, workout Workout) (*Workout, error)
	Get(ctx context.Context, id int) (*Workout, error)
	List(ctx context.Context, params ListParams) ([]Workout, error)
	Delete(ctx context.Context, id int) error
	AddExercise(ctx context.Context, exercise Exercise) (*Exercise, error)
	ListExercises(ctx context.Context, workoutID int) ([]Exercise, error)
}

type Handler struct {
	repo    workoutsRepo
	metrics *metrics.Manager
	nowFunc func() time.Time
}

func NewHandler(repo workoutsRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:    repo,
		metrics: metricsManager,
		nowFunc: time.Now,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/api/workouts", handler.HandleAdd).Methods("POST", "OPTIONS").Name("add-workout")
	router.HandleFunc("/api/workouts", handler.HandleList).Methods("GET", "OPTIONS").Name("list-workouts")
	router.HandleFunc("/api/workouts/{id}", handler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-workout")
	router.HandleFunc("/api/workouts/{id}/exercises", handler.HandleAddExercise).Methods("POST", "OPTIONS").Name("add-exercise")
	router.HandleFunc("/api/workouts/{id}/exercises", handler.HandleListExercises).Methods("GET", "OPTIONS").Name("list-exercises")
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "workoutsHandler.add")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var req AddWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("add workout, decode request: %s", err)
		http.Error(w, "error, request payload invalid", http.StatusBadRequest)
		return
	}

	workout, err := req.Validate(userID)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	addedWorkout, err := handler.repo.Add(ctx, *workout)
	if err != nil {
		log.Errorf("add workout: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterWorkouts.Inc()
	log.Tracef("user %d added workout %d [%s]", userID, addedWorkout.ID, addedWorkout.Category)

	pkg.WriteJSON(w, http.StatusCreated, addedWorkout)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "workoutsHandler.list")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	params := ListParams{UserID: userID}
	if r.URL.Query().Get("today") == "true" {
		now := handler.nowFunc().UTC()
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		dayEnd := dayStart.AddDate(0, 0, 1)
		params.From = &dayStart
		params.To = &dayEnd
	}

	workouts, err := handler.repo.List(ctx, params)
	if err != nil {
		log.Errorf("list workouts for user %d: %s", userID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if workouts == nil {
		workouts = []Workout{}
	}

	pkg.WriteJSON(w, http.StatusOK, workouts)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "workoutsHandler.delete")
	defer span.End()

	workout, ok := handler.ownedWorkout(ctx, w, r)
	if !ok {
		return
	}

	if err := handler.repo.Delete(ctx, workout.ID); err != nil {
		if errors.Is(err, ErrWorkoutNotFound) {
			http.Error(w, "workout not found", http.StatusNotFound)
			return
		}
		log.Errorf("delete workout %d: %s", workout.ID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, http.StatusOK, struct {
		DeletedID int `json:"deletedId"`
	}{DeletedID: workout.ID})
}

func (handler *Handler) HandleAddExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "workoutsHandler.addExercise")
	defer span.End()

	workout, ok := handler.ownedWorkout(ctx, w, r)
	if !ok {
		return
	}

	var req AddExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("add exercise, decode request: %s", err)
		http.Error(w, "error, request payload invalid", http.StatusBadRequest)
		return
	}

	exercise, err := req.Validate(workout.ID)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	addedExercise, err := handler.repo.AddExercise(ctx, *exercise)
	if err != nil {
		log.Errorf("add exercise to workout %d: %s", workout.ID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, http.StatusCreated, addedExercise)
}

func (handler *Handler) HandleListExercises(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "workoutsHandler.listExercises")
	defer span.End()

	workout, ok := handler.ownedWorkout(ctx, w, r)
	if !ok {
		return
	}

	exercises, err := handler.repo.ListExercises(ctx, workout.ID)
	if err != nil {
		log.Errorf("list exercises for workout %d: %s", workout.ID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if exercises == nil {
		exercises = []Exercise{}
	}

	pkg.WriteJSON(w, http.StatusOK, exercises)
}

// ownedWorkout resolves the {id} path variable to a workout owned by the
// authenticated user. Foreign workouts are reported as not found, so that
// the API does not leak which ids exist.
func (handler *Handler) ownedWorkout(
	ctx context.Context,
	w http.ResponseWriter,
	r *http.Request,
) (*Workout, bool) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return nil, false
	}

	idStr := mux.Vars(r)["id"]
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "error, workout id invalid", http.StatusBadRequest)
		return nil, false
	}

	workout, err := handler.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrWorkoutNotFound) {
			http.Error(w, "workout not found", http.StatusNotFound)
			return nil, false
		}
		log.Errorf("get workout %d: %s", id, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return nil, false
	}

	if workout.UserID != userID {
		http.Error(w, "workout not found", http.StatusNotFound)
		return nil, false
	}

	return workout, true
}

func writeValidationError(w http.ResponseWriter, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		pkg.WriteJSON(w, http.StatusBadRequest, verr)
		return
	}
	http.Error(w, "error, request payload invalid", http.StatusBadRequest)
}
