// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"net/http"

	"github.com/tvh2g/tvh2g/internal/rewrite"
)

func (s *Server) handlePlaylist(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Playlist()
	if snap == nil || snap.Text == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/x-mpegurl")
	_, _ = w.Write([]byte(snap.Text))
}

// handleEPG serves the retained merged document when retention is enabled,
// and proxies a live fetch from the backend otherwise. Any failure yields
// 204 rather than an error page, matching what IPTV clients expect.
func (s *Server) handleEPG(w http.ResponseWriter, r *http.Request) {
	if s.cfg.ServerAuth == "" {
		s.logger.Error().Str("event", "epg.serve_failed").Msg("no server auth token configured")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if s.cfg.EPGRetentionEnabled {
		snap := s.store.EPG()
		if snap == nil || snap.Text == "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(snap.Text))
		return
	}

	text, err := s.client.XMLTV(r.Context(), s.cfg.ServerAuth)
	if err != nil {
		s.logger.Error().Err(err).Str("event", "epg.serve_failed").Msg("failed to fetch EPG XML")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if s.cfg.EPGStripOffset {
		text = rewrite.StripTimezoneOffset(text)
	}
	w.Header().Set("Content-Type", "application/xml")
	_, _ = w.Write([]byte(text))
}

func (s *Server) handlePlaylistRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.runner.RefreshPlaylist(r.Context()); err != nil {
		s.logger.Error().Err(err).Str("event", "playlist.manual_refresh_failed").Msg("manual playlist refresh failed")
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleEPGRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.runner.RefreshEPG(r.Context()); err != nil {
		s.logger.Error().Err(err).Str("event", "epg.manual_refresh_failed").Msg("manual EPG refresh failed")
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleServerStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]int64{"start_time": s.started.Unix()})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
