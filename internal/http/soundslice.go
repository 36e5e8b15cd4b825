package http

import (
	"errors"
	"net/http"

	"github.com/FaridaNelson/sp-server/internal/apperr"
	"github.com/FaridaNelson/sp-server/internal/soundslice"
)

func (s *Server) handleDailySlice(w http.ResponseWriter, r *http.Request) {
	slice, err := s.sound.DailySlice(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, soundslice.ErrNotConfigured):
			s.writeAppError(w, r, &apperr.Error{Status: http.StatusNotImplemented, Message: "soundslice credentials not configured"})
		case errors.Is(err, soundslice.ErrUpstream):
			s.writeAppError(w, r, &apperr.Error{Status: http.StatusBadGateway, Message: "soundslice upstream error"})
		default:
			s.writeAppError(w, r, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, slice)
}
