// Package ui serves the local HTTP API consumed by the overlay and the
// profile and preferences windows.
package ui

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"threepole/lib/config"
	"threepole/lib/dto"
	"threepole/lib/messaging/publishing"
	"threepole/lib/services/sources"
	"threepole/lib/utils/logging"
)

type StatusReader interface {
	GetData() (dto.PlayerDataStatus, bool)
}

type ConfigStore interface {
	Profiles() config.Profiles
	SetProfiles(profiles config.Profiles) (bool, error)
	Preferences() config.Preferences
	SetPreferences(preferences config.Preferences) (bool, error)
}

type PlayerSearcher interface {
	SearchDestinyPlayerByBungieName(ctx context.Context, displayName string, displayNameCode int) ([]dto.PlayerSearchResult, error)
}

type EventSource interface {
	Subscribe() (<-chan publishing.Message, func())
}

type Config struct {
	Status     StatusReader
	Store      ConfigStore
	Profiles   sources.Cache[dto.Profile, dto.ProfileInfo]
	Activities sources.Cache[uint32, dto.ActivityInfo]
	Search     PlayerSearcher
	Events     EventSource
	Publisher  publishing.MessagePublisher

	// Called after a write that changed the stored value.
	OnProfilesChanged    func()
	OnPreferencesChanged func(config.Preferences)
}

type Server struct {
	config Config
	logger logging.Logger
	mux    *http.ServeMux
}

func NewServer(config Config) *Server {
	s := &Server{
		config: config,
		logger: logging.NewLogger("UI_SERVER"),
		mux:    http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /api/playerdata", s.handlePlayerData)
	s.mux.HandleFunc("GET /api/events", s.handleEvents)
	s.mux.HandleFunc("GET /api/profile-info", s.handleProfileInfo)
	s.mux.HandleFunc("GET /api/activity-info/{hash}", s.handleActivityInfo)
	s.mux.HandleFunc("GET /api/search", s.handleSearch)
	s.mux.HandleFunc("GET /api/profiles", s.handleGetProfiles)
	s.mux.HandleFunc("PUT /api/profiles", s.handlePutProfiles)
	s.mux.HandleFunc("GET /api/preferences", s.handleGetPreferences)
	s.mux.HandleFunc("PUT /api/preferences", s.handlePutPreferences)
	return s
}

func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		s.logger.Debug("UI_REQUEST", map[string]any{
			logging.METHOD: r.Method,
			logging.PATH:   r.URL.Path,
		})
		s.mux.ServeHTTP(w, r)
	})
}

// ListenAndServe serves the API on localhost until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, port string) error {
	server := &http.Server{
		Addr:              net.JoinHostPort("127.0.0.1", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("UI_SERVER_STARTED", map[string]any{
		logging.ADDRESS: server.Addr,
	})
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
