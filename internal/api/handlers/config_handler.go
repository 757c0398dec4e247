package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"shop-backend/internal/models"
	"shop-backend/internal/repository"
)

type ConfigHandler struct {
	configs  repository.ConfigRepository
	statuses repository.StatusRepository
}

func NewConfigHandler(configs repository.ConfigRepository, statuses repository.StatusRepository) *ConfigHandler {
	return &ConfigHandler{configs: configs, statuses: statuses}
}

func (h *ConfigHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	configs, err := h.configs.GetAll(r.Context())
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusOK, configs)
}

type setConfigRequest struct {
	Value string `json:"value"`
}

func (h *ConfigHandler) Set(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		writeMessage(w, http.StatusBadRequest, "config key required")
		return
	}

	var req setConfigRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.configs.Set(r.Context(), key, req.Value); err != nil {
		writeRepoError(w, err, "configuration")
		return
	}

	writeMessage(w, http.StatusOK, "Configuration updated")
}

func (h *ConfigHandler) GetStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.statuses.GetAll(r.Context())
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Error fetching order statuses")
		return
	}
	if statuses == nil {
		statuses = []models.OrderStatus{}
	}

	writeJSON(w, http.StatusOK, statuses)
}
