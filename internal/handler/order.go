package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"orderwarden/internal/model"
	"orderwarden/internal/mw"
	"orderwarden/internal/service"
	"orderwarden/internal/store"
)

const maxBodyBytes = 4096

func ListOrdersHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orders, err := orderSvc.ListByUser(r.Context(), userID)
		if err != nil {
			slog.Error("list orders failed", "user", userID, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, model.OrderList{Orders: orders})
	}
}

func CreateOrderHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var in model.NewOrder
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&in); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		o, err := orderSvc.Create(r.Context(), userID, in)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidOrder):
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			case errors.Is(err, store.ErrOrderExists):
				http.Error(w, "order already exists", http.StatusConflict)
			default:
				slog.Error("order create failed", "user", userID, "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, o)
	}
}

func DeleteOrderHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		id := chi.URLParam(r, "id")
		if err := orderSvc.Delete(r.Context(), userID, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "order not found", http.StatusNotFound)
				return
			}
			slog.Error("order delete failed", "user", userID, "id", id, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func CheckOrderHandler(trackingSvc *service.TrackingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		id := chi.URLParam(r, "id")
		res, err := trackingSvc.Check(r.Context(), userID, id)
		if err != nil {
			switch {
			case errors.Is(err, store.ErrNotFound):
				http.Error(w, "order not found", http.StatusNotFound)
			case errors.Is(err, service.ErrRateLimited):
				http.Error(w, "carrier rate limit exceeded", http.StatusTooManyRequests)
			default:
				slog.Error("tracking check failed", "user", userID, "id", id, "error", err)
				http.Error(w, "tracking lookup failed", http.StatusBadGateway)
			}
			return
		}

		writeJSON(w, http.StatusOK, res)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}
