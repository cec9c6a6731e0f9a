package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Guilhem-Bonnet/xdraft/internal/app"
	"github.com/Guilhem-Bonnet/xdraft/internal/domain"
	"github.com/Guilhem-Bonnet/xdraft/internal/httpjson"
)

type PlayersHandler struct {
	players *app.PlayersService
}

func NewPlayersHandler(players *app.PlayersService) *PlayersHandler {
	return &PlayersHandler{players: players}
}

func (h *PlayersHandler) Routes(r chi.Router) {
	r.Route("/hitters", func(r chi.Router) {
		r.Get("/", h.listHitters)
		r.Get("/{name}", h.getHitter)
	})
	r.Get("/pitchers", h.listPitchers)
	r.Get("/lookups", h.listLookups)
}

func (h *PlayersHandler) listHitters(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	var pos domain.Position
	if raw := r.URL.Query().Get("position"); raw != "" {
		set, err := domain.ParseEligibilitySet(raw)
		if err != nil || set.Len() != 1 {
			httpjson.WriteError(w, http.StatusBadRequest, "invalid position")
			return
		}
		pos = set.Slice()[0]
	}
	hitters, err := h.players.Hitters(r.Context(), pos, limit)
	if err != nil {
		writeReadError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, hitters)
}

func (h *PlayersHandler) getHitter(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	hitter, err := h.players.Hitter(r.Context(), name)
	if err != nil {
		writeReadError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, hitter)
}

func (h *PlayersHandler) listPitchers(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	pitchers, err := h.players.Pitchers(r.Context(), limit)
	if err != nil {
		writeReadError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, pitchers)
}

func (h *PlayersHandler) listLookups(w http.ResponseWriter, r *http.Request) {
	status := domain.LookupStatus(r.URL.Query().Get("status"))
	lookups, err := h.players.Lookups(r.Context(), status)
	if err != nil {
		writeReadError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, lookups)
}

func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid limit")
		return 0, false
	}
	return limit, true
}

func writeReadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrCacheCold):
		httpjson.WriteError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, app.ErrNotFound):
		httpjson.WriteError(w, http.StatusNotFound, "not found")
	default:
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
