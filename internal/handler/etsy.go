package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"orderwarden/internal/identity"
	"orderwarden/internal/mw"
	"orderwarden/internal/navigation"
	"orderwarden/internal/service"
)

func EtsyStatusHandler(etsySvc *service.EtsyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		status, err := etsySvc.Status(r.Context(), userID)
		if err != nil {
			slog.Error("etsy status failed", "user", userID, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, status)
	}
}

func EtsySyncHandler(etsySvc *service.EtsyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		res, err := etsySvc.Sync(r.Context(), userID)
		if err != nil {
			slog.Error("etsy sync failed", "user", userID, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		if res.Success {
			slog.Info("etsy sync", "user", userID, "imported", res.Imported)
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func EtsyDisconnectHandler(etsySvc *service.EtsyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := etsySvc.Disconnect(r.Context(), userID); err != nil {
			slog.Error("etsy disconnect failed", "user", userID, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// EtsyAuthHandler is opened by the user's browser, so the user comes from the
// query string. With a JWT secret configured the browser must also carry a
// token for that user. It finishes the shop handshake and sends the browser
// back to return_to, which must share the dashboard's origin.
func EtsyAuthHandler(etsySvc *service.EtsyService, jwtSecret, dashboardURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
		if userID == "" {
			http.Error(w, "user_id is required", http.StatusBadRequest)
			return
		}

		if jwtSecret != "" {
			subject, err := identity.ParseToken(r.URL.Query().Get("token"), jwtSecret)
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}
			if subject != userID {
				http.Error(w, "token does not match user", http.StatusForbidden)
				return
			}
		}

		back, err := returnURL(r.URL.Query().Get("return_to"), dashboardURL)
		if err != nil {
			http.Error(w, "invalid return_to", http.StatusBadRequest)
			return
		}

		q := back.Query()
		shop, err := etsySvc.Connect(r.Context(), userID)
		if err != nil {
			slog.Error("etsy connect failed", "user", userID, "error", err)
			q.Set(navigation.ParamEtsyError, "connection_failed")
		} else {
			slog.Info("etsy connected", "user", userID, "shop", shop)
			q.Set(navigation.ParamEtsyConnected, "true")
			q.Set(navigation.ParamShop, shop)
		}
		back.RawQuery = q.Encode()

		http.Redirect(w, r, back.String(), http.StatusFound)
	}
}

// returnURL keeps returnTo only when it points at the dashboard's origin.
func returnURL(returnTo, dashboardURL string) (*url.URL, error) {
	dashboard, err := url.Parse(dashboardURL)
	if err != nil {
		return nil, err
	}
	if returnTo == "" {
		return dashboard, nil
	}
	u, err := url.Parse(returnTo)
	if err != nil || u.Scheme != dashboard.Scheme || !strings.EqualFold(u.Host, dashboard.Host) {
		return dashboard, nil
	}
	return u, nil
}
