package handlers

import (
	"log/slog"
	"net/http"

	"github.com/careops/homenurse/services/booking-service/internal/storage"
)

type CatalogHandler struct {
	catalog *storage.CatalogRepository
	logger  *slog.Logger
}

func NewCatalogHandler(catalog *storage.CatalogRepository, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

type serviceItem struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Description          string `json:"description,omitempty"`
	BasePriceCents       int64  `json:"base_price_cents"`
	SupplySurchargeCents int64  `json:"supply_surcharge_cents"`
	IncludesSupplies     bool   `json:"includes_supplies"`
	DurationMinutes      int    `json:"duration_minutes"`
	IsGuard              bool   `json:"is_guard"`
	AllowsBase           bool   `json:"allows_base"`
	AllowsHome           bool   `json:"allows_home"`
}

func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	services, err := h.catalog.ListActiveServices(r.Context())
	if err != nil {
		respondAppError(w, h.logger, err, "failed to list services")
		return
	}

	items := make([]serviceItem, 0, len(services))
	for _, s := range services {
		items = append(items, serviceItem{
			ID:                   s.ID,
			Name:                 s.Name,
			Description:          s.Description,
			BasePriceCents:       s.BasePriceCents,
			SupplySurchargeCents: s.SupplySurchargeCents,
			IncludesSupplies:     s.IncludesSupplies,
			DurationMinutes:      s.DurationMinutes,
			IsGuard:              s.IsGuard,
			AllowsBase:           s.AllowsBase,
			AllowsHome:           s.AllowsHome,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": "success", "services": items})
}
