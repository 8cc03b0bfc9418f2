package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"wasteland-server/pkg/api"
)

// DebugHandler предоставляет доступ к состоянию хоста
type DebugHandler struct {
	State StateReader
}

func NewDebugHandler(state StateReader) *DebugHandler {
	return &DebugHandler{State: state}
}

// RegisterRoutes регистрирует debug-эндпоинты
func (h *DebugHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/debug/state", h.handleState)
	mux.HandleFunc("/debug/enemies", h.handleEnemies)
}

// /debug/state - полный снимок, тот же, что уходит пиру
func (h *DebugHandler) handleState(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, snap)
}

// /debug/enemies - враги текущего боя вместе с объявленными намерениями
func (h *DebugHandler) handleEnemies(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	if snap.State.Enemies == nil {
		writeJSON(w, nil)
		return
	}
	writeJSON(w, snap.State.Enemies.Snapshot())
}

func (h *DebugHandler) snapshot(w http.ResponseWriter, r *http.Request) (api.StateSyncPayload, bool) {
	if h.State == nil {
		http.Error(w, "No session", http.StatusServiceUnavailable)
		return api.StateSyncPayload{}, false
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	s, err := h.State.Snapshot(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return api.StateSyncPayload{}, false
	}
	return s, true
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	// Разрешаем запросы с любого источника (нужно для локальных отладочных страниц)
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	w.Header().Set("Content-Type", "application/json")

	// Если data == nil (например, боя нет), возвращаем пустой массив [], а не null
	if data == nil {
		_, _ = w.Write([]byte("[]"))
		return
	}

	_ = json.NewEncoder(w).Encode(data)
}
