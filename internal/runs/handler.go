package runs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fitrackhq/fitrack/internal/auth"
	"github.com/fitrackhq/fitrack/internal/telemetry/metrics"
	"github.com/fitrackhq/fitrack/internal/telemetry/tracing"
	"github.com/fitrackhq/fitrack/internal/validation"
	"github.com/fitrackhq/fitrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=runs

type runsRepo interface {
	Add(ctx context.Context, run Run) (*Run, error)
	List(ctx context.Context, userID int, from, to time.Time) ([]Run, error)
}

type Handler struct {
	repo     runsRepo
	analyzer *Analyzer
	metrics  *metrics.Manager
}

func NewHandler(repo runsRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:     repo,
		analyzer: NewAnalyzer(repo),
		metrics:  metricsManager,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/api/runs", handler.HandleAdd).Methods("POST", "OPTIONS").Name("add-run")
	router.HandleFunc("/api/runs/week", handler.HandleWeek).Methods("GET", "OPTIONS").Name("week-runs")
	router.HandleFunc("/api/runs/stats", handler.HandleStats).Methods("GET", "OPTIONS").Name("runs-stats")
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "runsHandler.add")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var req AddRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("add run, decode request: %s", err)
		http.Error(w, "error, request payload invalid", http.StatusBadRequest)
		return
	}

	run, err := req.Validate(userID, handler.analyzer.NowFunc())
	if err != nil {
		writeValidationError(w, err)
		return
	}

	addedRun, err := handler.repo.Add(ctx, *run)
	if err != nil {
		log.Errorf("add run: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterRuns.Inc()
	log.Tracef("user %d added run %d [%d km]", userID, addedRun.ID, addedRun.DistanceKm)

	pkg.WriteJSON(w, http.StatusCreated, addedRun)
}

func (handler *Handler) HandleWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "runsHandler.week")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	stats, err := handler.analyzer.WeekStats(ctx, userID)
	if err != nil {
		log.Errorf("week stats for user %d: %s", userID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, http.StatusOK, stats)
}

func (handler *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "runsHandler.stats")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	stats, err := handler.analyzer.AllStats(ctx, userID)
	if err != nil {
		log.Errorf("stats for user %d: %s", userID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, http.StatusOK, stats)
}

func writeValidationError(w http.ResponseWriter, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		pkg.WriteJSON(w, http.StatusBadRequest, verr)
		return
	}
	http.Error(w, "error, request payload invalid", http.StatusBadRequest)
}
