package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"jobads/internal/domain"
	"jobads/internal/infrastructure/metrics"
	"jobads/internal/link"
	"jobads/internal/storage"
	"jobads/internal/store"
	"jobads/pkg/logger"
	"jobads/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type AdHandler struct {
	store   store.AdvertisementStore
	opener  link.Opener
	logger  *logger.Loggers
	metrics *metrics.HandlerMetrics
	tracer  trace.Tracer
}

func NewAdHandler(store store.AdvertisementStore, opener link.Opener, logger *logger.Loggers, metrics *metrics.HandlerMetrics) *AdHandler {
	tracer := otel.Tracer("jobads/handler")
	return &AdHandler{
		store:   store,
		opener:  opener,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
	}
}

// CreateAdRequest is the add-form payload. Field names match the durable
// record layout.
type CreateAdRequest struct {
	ImageURI    string `json:"imageUri"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// ListResult carries the (possibly filtered) list plus the capacity state a
// client needs to disable its add affordance before hitting the cap.
type ListResult struct {
	Ads      []*domain.Advertisement `json:"ads"`
	Count    int                     `json:"count"`
	Capacity int                     `json:"capacity"`
	Full     bool                    `json:"full"`
}

func (h *AdHandler) GetAds(w http.ResponseWriter, r *http.Request) {
	_, span := h.tracer.Start(r.Context(), "GetAds")
	defer span.End()

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		h.metrics.RequestCount.WithLabelValues("GET", "/ads", status).Inc()
		h.metrics.RequestDuration.WithLabelValues("GET", "/ads", status).Observe(duration)
	}()

	if !h.store.Ready() {
		status = "not_ready"
		utils.RespondWithErrorJSON(w, http.StatusServiceUnavailable, "advertisements are still loading")
		return
	}

	query := r.URL.Query().Get("q")
	span.SetAttributes(attribute.String("ads.query", query))

	ads := h.store.Search(query)
	count := h.store.Count()

	utils.RespondWithJSON(w, http.StatusOK, ListResult{
		Ads:      ads,
		Count:    count,
		Capacity: h.store.Capacity(),
		Full:     count >= h.store.Capacity(),
	})
}

func (h *AdHandler) GetAdByID(w http.ResponseWriter, r *http.Request) {
	_, span := h.tracer.Start(r.Context(), "GetAdByID")
	defer span.End()

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		h.metrics.RequestCount.WithLabelValues("GET", "/ads/{id}", status).Inc()
		h.metrics.RequestDuration.WithLabelValues("GET", "/ads/{id}", status).Observe(duration)
	}()

	if !h.store.Ready() {
		status = "not_ready"
		utils.RespondWithErrorJSON(w, http.StatusServiceUnavailable, "advertisements are still loading")
		return
	}

	id := chi.URLParam(r, "id")
	span.SetAttributes(attribute.String("ad.id", id))

	ad := h.findAd(id)
	if ad == nil {
		status = "not_found"
		utils.RespondWithErrorJSON(w, http.StatusNotFound, "advertisement not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, ad)
}

func (h *AdHandler) CreateAd(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateAd")
	defer span.End()

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		h.metrics.RequestCount.WithLabelValues("POST", "/ads", status).Inc()
		h.metrics.RequestDuration.WithLabelValues("POST", "/ads", status).Observe(duration)
	}()

	var req CreateAdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		status = "error"
		h.logger.ErrorLogger.Error("invalid request payload", utils.Err(err))
		span.RecordError(err)
		utils.RespondWithErrorJSON(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	ad, err := h.store.Add(ctx, req.ImageURI, req.Description, req.URL)
	if err != nil {
		var writeErr *storage.WriteError
		switch {
		case errors.Is(err, domain.ErrValidation):
			status = "invalid"
			utils.RespondWithErrorJSON(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, store.ErrCapacityExceeded):
			// Advisory, not a fault: the body shape is distinct from error
			// responses so clients cannot conflate the two.
			status = "rejected"
			utils.RespondWithJSON(w, http.StatusConflict, map[string]string{
				"advisory": "you can track at most 5 advertisements; delete one first",
			})
		case errors.Is(err, store.ErrNotReady):
			status = "not_ready"
			utils.RespondWithErrorJSON(w, http.StatusServiceUnavailable, "advertisements are still loading")
		case errors.As(err, &writeErr):
			status = "error"
			h.logger.ErrorLogger.Error("could not save advertisement", utils.Err(err))
			span.RecordError(err)
			utils.RespondWithErrorJSON(w, http.StatusInternalServerError, "advertisement was not saved")
		default:
			status = "error"
			h.logger.ErrorLogger.Error("could not create advertisement", utils.Err(err))
			span.RecordError(err)
			utils.RespondWithErrorJSON(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	span.SetAttributes(attribute.String("ad.id", ad.ID))
	utils.RespondWithJSON(w, http.StatusCreated, ad)
}

// DeleteAd removes a record. Deletion is destructive and unconfirmed here;
// clients are expected to gate it behind an explicit confirmation prompt.
func (h *AdHandler) DeleteAd(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DeleteAd")
	defer span.End()

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		h.metrics.RequestCount.WithLabelValues("DELETE", "/ads/{id}", status).Inc()
		h.metrics.RequestDuration.WithLabelValues("DELETE", "/ads/{id}", status).Observe(duration)
	}()

	id := chi.URLParam(r, "id")
	span.SetAttributes(attribute.String("ad.id", id))

	removed, err := h.store.Remove(ctx, id)
	if err != nil {
		var writeErr *storage.WriteError
		switch {
		case errors.Is(err, store.ErrNotReady):
			status = "not_ready"
			utils.RespondWithErrorJSON(w, http.StatusServiceUnavailable, "advertisements are still loading")
		case errors.As(err, &writeErr):
			status = "error"
			h.logger.ErrorLogger.Error("could not save deletion", utils.Err(err))
			span.RecordError(err)
			utils.RespondWithErrorJSON(w, http.StatusInternalServerError, "deletion was not saved")
		default:
			status = "error"
			h.logger.ErrorLogger.Error("could not delete advertisement", utils.Err(err))
			span.RecordError(err)
			utils.RespondWithErrorJSON(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	if !removed {
		status = "not_found"
		utils.RespondWithErrorJSON(w, http.StatusNotFound, "advertisement not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"removed": true})
}

// OpenLink probes an advertisement's url on behalf of the detail view. An
// unsupported scheme and a failed open return different statuses.
func (h *AdHandler) OpenLink(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "OpenLink")
	defer span.End()

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		h.metrics.RequestCount.WithLabelValues("GET", "/ads/{id}/link", status).Inc()
		h.metrics.RequestDuration.WithLabelValues("GET", "/ads/{id}/link", status).Observe(duration)
	}()

	if !h.store.Ready() {
		status = "not_ready"
		utils.RespondWithErrorJSON(w, http.StatusServiceUnavailable, "advertisements are still loading")
		return
	}

	id := chi.URLParam(r, "id")
	span.SetAttributes(attribute.String("ad.id", id))

	ad := h.findAd(id)
	if ad == nil {
		status = "not_found"
		utils.RespondWithErrorJSON(w, http.StatusNotFound, "advertisement not found")
		return
	}

	if err := h.opener.Open(ctx, ad.URL); err != nil {
		span.RecordError(err)
		if errors.Is(err, link.ErrUnsupportedScheme) {
			status = "unsupported"
			utils.RespondWithErrorJSON(w, http.StatusUnprocessableEntity, "link scheme is not supported")
			return
		}
		status = "error"
		h.logger.ErrorLogger.Error("could not open link", utils.Err(err))
		utils.RespondWithErrorJSON(w, http.StatusBadGateway, "link could not be opened")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"url":       ad.URL,
		"supported": true,
	})
}

func (h *AdHandler) findAd(id string) *domain.Advertisement {
	for _, ad := range h.store.List() {
		if ad.ID == id {
			return ad
		}
	}
	return nil
}
