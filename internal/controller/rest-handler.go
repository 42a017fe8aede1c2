package controller

import (
	"errors"
	"net/http"

	"github.com/satvikdua06/server/internal/service/search"
	"github.com/satvikdua06/server/pkg/rest"
)

func (c controller) healthz(w http.ResponseWriter, r *http.Request) {
	if err := rest.WriteJSON(w, http.StatusOK, rest.Envelope{"status": "ok"}); err != nil {
		c.logger.WarnContext(r.Context(), "failed to write response", "error", err)
	}
}

func (c controller) stats(w http.ResponseWriter, r *http.Request) {
	stats := c.roomService.Stats(r.Context())
	if err := rest.WriteJSON(w, http.StatusOK, rest.Envelope{
		"rooms":   stats.Rooms,
		"members": stats.Members,
	}); err != nil {
		c.logger.WarnContext(r.Context(), "failed to write response", "error", err)
	}
}

func (c controller) search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")

	tracks, err := c.searchService.Search(r.Context(), query)
	if err != nil {
		if errors.Is(err, search.ErrEmptyQuery) {
			rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": "query is required"})
			return
		}

		c.logger.ErrorContext(r.Context(), "failed to search", "error", err)
		rest.WriteJSON(w, http.StatusBadGateway, rest.Envelope{"error": "search is unavailable"})
		return
	}

	if err := rest.WriteJSON(w, http.StatusOK, rest.Envelope{"tracks": tracks}); err != nil {
		c.logger.WarnContext(r.Context(), "failed to write response", "error", err)
	}
}
