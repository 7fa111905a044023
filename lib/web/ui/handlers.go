package ui

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"threepole/lib/config"
	"threepole/lib/dto"
	"threepole/lib/messaging/routing"
	"threepole/lib/utils/logging"
	"threepole/lib/web/bungie"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeRemoteError maps a remote lookup failure. A missing entity is a 404.
func (s *Server) writeRemoteError(w http.ResponseWriter, endpoint string, err error) {
	if bungie.IsResponseMissing(err) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.logger.Warn("UI_REMOTE_LOOKUP_FAILED", err, map[string]any{
		logging.ENDPOINT: endpoint,
	})
	writeError(w, http.StatusBadGateway, err.Error())
}

// isNumeric reports whether s is a non-empty decimal id. Ids are interpolated
// into remote API paths, so nothing else is accepted.
func isNumeric(s string) bool {
	_, err := strconv.ParseUint(s, 10, 64)
	return err == nil
}

func validProfile(profile dto.Profile) bool {
	return profile.MembershipType > 0 && isNumeric(profile.MembershipId)
}

func (s *Server) handlePlayerData(w http.ResponseWriter, r *http.Request) {
	status, ok := s.config.Status.GetData()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func sendSSE(w http.ResponseWriter, event string, data []byte) {
	fmt.Fprintf(w, "event: %s\n", event)
	fmt.Fprintf(w, "data: %s\n\n", data)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	messages, unsubscribe := s.config.Events.Subscribe()
	defer unsubscribe()

	// Initial paint before the first change event
	if status, ok := s.config.Status.GetData(); ok {
		if body, err := json.Marshal(status); err == nil {
			sendSSE(w, routing.PlayerDataUpdate, body)
		}
	} else {
		fmt.Fprint(w, ": connected\n\n")
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			sendSSE(w, msg.Route, msg.Body)
		}
	}
}

func (s *Server) handleProfileInfo(w http.ResponseWriter, r *http.Request) {
	platform, err := strconv.Atoi(r.URL.Query().Get("platform"))
	profile := dto.Profile{MembershipType: platform, MembershipId: r.URL.Query().Get("id")}
	if err != nil || !validProfile(profile) {
		writeError(w, http.StatusBadRequest, "invalid platform or id")
		return
	}

	info, err := s.config.Profiles.Get(r.Context(), profile)
	if err != nil {
		s.writeRemoteError(w, "profile-info", err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleActivityInfo(w http.ResponseWriter, r *http.Request) {
	hash, err := strconv.ParseUint(r.PathValue("hash"), 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid activity hash")
		return
	}

	info, err := s.config.Activities.Get(r.Context(), uint32(hash))
	if err != nil {
		s.writeRemoteError(w, "activity-info", err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	code, err := strconv.Atoi(r.URL.Query().Get("code"))
	if name == "" || err != nil || code < 0 || code > 9999 {
		writeError(w, http.StatusBadRequest, "expected name and a 4 digit code")
		return
	}

	results, err := s.config.Search.SearchDestinyPlayerByBungieName(r.Context(), name, code)
	if err != nil {
		s.writeRemoteError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleGetProfiles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.config.Store.Profiles())
}

func (s *Server) handlePutProfiles(w http.ResponseWriter, r *http.Request) {
	var profiles config.Profiles
	if err := json.NewDecoder(r.Body).Decode(&profiles); err != nil {
		writeError(w, http.StatusBadRequest, "invalid profiles body")
		return
	}
	for _, profile := range profiles.SavedProfiles {
		if !validProfile(profile) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid profile %s", profile))
			return
		}
	}
	if profiles.SelectedProfile != nil && !validProfile(*profiles.SelectedProfile) {
		writeError(w, http.StatusBadRequest, "invalid selected profile")
		return
	}

	changed, err := s.config.Store.SetProfiles(profiles)
	if err != nil {
		s.logger.Error("PROFILES_WRITE_FAILED", err, nil)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	stored := s.config.Store.Profiles()
	if changed {
		s.publish(routing.ProfilesUpdate, stored)
		if s.config.OnProfilesChanged != nil {
			s.config.OnProfilesChanged()
		}
	}
	writeJSON(w, http.StatusOK, stored)
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.config.Store.Preferences())
}

func (s *Server) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	// Omitted fields keep their stored value
	preferences := s.config.Store.Preferences()
	if err := json.NewDecoder(r.Body).Decode(&preferences); err != nil {
		writeError(w, http.StatusBadRequest, "invalid preferences body")
		return
	}

	changed, err := s.config.Store.SetPreferences(preferences)
	if err != nil {
		s.logger.Error("PREFERENCES_WRITE_FAILED", err, nil)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if changed {
		s.publish(routing.PreferencesUpdate, preferences)
		if s.config.OnPreferencesChanged != nil {
			s.config.OnPreferencesChanged(preferences)
		}
	}
	writeJSON(w, http.StatusOK, preferences)
}

func (s *Server) publish(route string, body any) {
	if s.config.Publisher == nil {
		return
	}
	if err := s.config.Publisher.PublishMessage(route, body); err != nil {
		s.logger.Warn("UI_PUBLISH_FAILED", err, map[string]any{logging.EVENT: route})
	}
}
