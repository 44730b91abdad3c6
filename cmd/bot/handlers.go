package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/brandpulse/review-analytics/internal/analytics"
	"github.com/brandpulse/review-analytics/internal/categories"
	"github.com/brandpulse/review-analytics/internal/monitoring"
	"github.com/brandpulse/review-analytics/internal/sources"
	"github.com/brandpulse/review-analytics/internal/storage"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 10 << 20

type analyzeRequest struct {
	Brand   string            `json:"brand"`
	Reviews json.RawMessage   `json:"reviews"`
	Options analytics.Options `json:"options"`
	Filters analytics.Filters `json:"filters"`
}

type inspectRequest struct {
	Text       string   `json:"text"`
	Categories []string `json:"categories"`
}

type keywordRequest struct {
	Keyword string `json:"keyword"`
}

type replaceRequest struct {
	Keywords []string `json:"keywords"`
}

func newRouter(monitoringService *monitoring.Service) *mux.Router {
	router := mux.NewRouter()
	store := monitoringService.Categories()

	// Health check endpoint
	router.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// Metrics endpoint
	router.HandleFunc("/metrics", metricsHandler(monitoringService)).Methods("GET")

	// Manual trigger endpoint
	router.HandleFunc("/trigger", triggerHandler(monitoringService)).Methods("POST")

	router.HandleFunc("/analyze", analyzeHandler(monitoringService)).Methods("POST")
	router.HandleFunc("/inspect", inspectHandler(monitoringService)).Methods("POST")
	router.HandleFunc("/reports/{brand}/latest", latestReportHandler(monitoringService)).Methods("GET")

	// Keyword category management
	router.HandleFunc("/categories", listCategoriesHandler(store)).Methods("GET")
	router.HandleFunc("/categories/reset", resetCategoriesHandler(store)).Methods("POST")
	router.HandleFunc("/categories/bulk", getBulkHandler(store)).Methods("GET")
	router.HandleFunc("/categories/bulk", putBulkHandler(store)).Methods("PUT")
	router.HandleFunc("/categories/{name}", replaceCategoryHandler(store)).Methods("PUT")
	router.HandleFunc("/categories/{name}/keywords", addKeywordHandler(store)).Methods("POST")
	router.HandleFunc("/categories/{name}/keywords/{keyword}", removeKeywordHandler(store)).Methods("DELETE")

	return router
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func metricsHandler(monitoringService *monitoring.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(monitoringService.GetMetrics()))
	}
}

func triggerHandler(monitoringService *monitoring.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		go func() {
			if err := monitoringService.RunMonitoring(context.Background()); err != nil {
				logrus.Errorf("Manual digest trigger failed: %v", err)
			}
		}()

		writeJSON(w, http.StatusAccepted, map[string]string{"message": "Digest run triggered successfully"})
	}
}

func analyzeHandler(monitoringService *monitoring.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req analyzeRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		var (
			result analytics.Result
			err    error
		)
		if len(req.Reviews) > 0 {
			reviews, decodeErr := sources.DecodeReviews(req.Reviews)
			if decodeErr != nil {
				writeError(w, http.StatusBadRequest, decodeErr)
				return
			}
			result, err = monitoringService.Analyze(sources.Dedupe(reviews), req.Options, req.Filters)
		} else if req.Brand != "" {
			result, err = monitoringService.AnalyzeBrand(r.Context(), req.Brand, req.Options, req.Filters)
		} else {
			writeError(w, http.StatusBadRequest, errors.New("either brand or reviews is required"))
			return
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func inspectHandler(monitoringService *monitoring.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req inspectRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		writeJSON(w, http.StatusOK, monitoringService.Inspect(req.Text, req.Categories))
	}
}

func latestReportHandler(monitoringService *monitoring.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := monitoringService.LatestReport(r.Context(), mux.Vars(r)["brand"])
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func listCategoriesHandler(store *categories.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, store.Categories())
	}
}

func addKeywordHandler(store *categories.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req keywordRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		added, err := store.AddKeyword(mux.Vars(r)["name"], req.Keyword)
		switch {
		case errors.Is(err, categories.ErrUnknownCategory):
			writeError(w, http.StatusNotFound, err)
		case err != nil:
			writeError(w, http.StatusBadRequest, err)
		case added:
			writeJSON(w, http.StatusCreated, map[string]bool{"added": true})
		default:
			writeJSON(w, http.StatusOK, map[string]bool{"added": false})
		}
	}
}

func removeKeywordHandler(store *categories.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		if !store.RemoveKeyword(vars["name"], vars["keyword"]) {
			writeError(w, http.StatusNotFound, errors.New("keyword not found"))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func replaceCategoryHandler(store *categories.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req replaceRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		name := mux.Vars(r)["name"]
		if err := store.BulkReplace(name, req.Keywords); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		keywords, _ := store.Keywords(name)
		writeJSON(w, http.StatusOK, map[string]any{"name": name, "keywords": keywords})
	}
}

func resetCategoriesHandler(store *categories.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store.ResetToDefaults()
		writeJSON(w, http.StatusOK, store.Categories())
	}
}

func getBulkHandler(store *categories.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, store.BulkText())
	}
}

func putBulkHandler(store *categories.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		applied, err := store.ApplyBulkEdit(string(body))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, applied)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Errorf("Failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
