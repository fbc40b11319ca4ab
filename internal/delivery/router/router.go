package router

import (
	"jobads/internal/delivery/handler"
	"jobads/internal/infrastructure/metrics"
	"jobads/internal/link"
	"jobads/internal/store"
	"jobads/pkg/logger"

	"github.com/go-chi/chi/v5"
)

func SetupAdRoutes(adRouter *chi.Mux, adStore store.AdvertisementStore, opener link.Opener, loggers *logger.Loggers, metrics *metrics.HandlerMetrics) {
	adHandler := handler.NewAdHandler(adStore, opener, loggers, metrics)

	adRouter.Get("/ads", adHandler.GetAds)
	adRouter.Get("/ads/{id}", adHandler.GetAdByID)
	adRouter.Get("/ads/{id}/link", adHandler.OpenLink)
	adRouter.Post("/ads", adHandler.CreateAd)
	adRouter.Delete("/ads/{id}", adHandler.DeleteAd)
}
