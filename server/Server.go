// Package server implements a JSON HTTP front end which runs a single
// session of the model-based agent on a grid world configured by the
// client.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/samuelfneumann/modelrl/config"
	"github.com/samuelfneumann/modelrl/environment/envconfig"
	"github.com/samuelfneumann/modelrl/environment/gridworld"
	"github.com/samuelfneumann/modelrl/experiment"
	"github.com/samuelfneumann/modelrl/rlerr"
	"github.com/sirupsen/logrus"
)

const (
	// CellSize is the side length in pixels of a grid cell in GET /map.png
	CellSize = 40

	// MaxRequestBytes bounds the body of POST /simulator
	MaxRequestBytes = 1 << 20
)

// ErrNotInitialized is returned when a session is used before it is
// created with POST /simulator
var ErrNotInitialized = errors.New("the simulator is not initialized")

// errInvalidRequest reports an unknown route
var errInvalidRequest = errors.New("invalid request")

// SimulatorRequest is the body of POST /simulator, which is echoed back
// on success. Map[x][y] is the cell at (x, y).
type SimulatorRequest struct {
	Map             [][]gridworld.Cell `json:"map"`
	IRCapability    int                `json:"ir_capability"`
	InitialPosition envconfig.Position `json:"initial_position"`
}

// NextResponse is the body of GET /next
type NextResponse struct {
	Action   string             `json:"action"`
	Position envconfig.Position `json:"position"`
	State    string             `json:"state"`
	Reward   float64            `json:"reward"`
}

// StateResponse is the body of GET /state
type StateResponse struct {
	Tick       int                `json:"tick"`
	PrevState  string             `json:"prev_state"`
	PrevAction string             `json:"prev_action"`
	State      string             `json:"state"`
	Reward     float64            `json:"reward"`
	Position   envconfig.Position `json:"position"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server serves a single session. Creating a new session replaces the
// previous one.
type Server struct {
	config config.Config
	logger logrus.FieldLogger

	mu      sync.Mutex
	session *experiment.Online
	env     *gridworld.GridWorld

	routes map[string]map[string]http.HandlerFunc
}

// New returns a new Server. Sessions use the agent and experiment
// settings of c together with the grid world sent by the client, whose
// drift is seeded with c.Environment.Seed.
func New(c config.Config, logger logrus.FieldLogger) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	s := &Server{config: c, logger: logger}
	s.routes = map[string]map[string]http.HandlerFunc{
		http.MethodPost: {
			"/simulator": s.handleSimulator,
		},
		http.MethodGet: {
			"/next":    s.handleNext,
			"/state":   s.handleState,
			"/map.png": s.handleMap,
		},
	}
	return s
}

// ServeHTTP dispatches a request on its method and case-insensitive
// path, answering 400 for unknown routes
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

	handler, ok := s.routes[r.Method][strings.ToLower(r.URL.Path)]
	if !ok {
		s.fail(rec, http.StatusBadRequest, errInvalidRequest)
	} else {
		handler(rec, r)
	}

	s.logger.WithFields(logrus.Fields{
		"method":   r.Method,
		"path":     r.URL.Path,
		"status":   rec.status,
		"duration": time.Since(start),
	}).Info("request")
}

// ListenAndServe serves on c.Server.Address until ctx is cancelled, at
// which point the server is shut down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:        s.config.Server.Address,
		Handler:     s,
		ReadTimeout: s.config.Server.ReadTimeout,
	}

	errs := make(chan error, 1)
	go func() {
		errs <- srv.ListenAndServe()
	}()
	s.logger.WithField("address", srv.Addr).Info("listening")

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(),
			5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			return err
		}
		<-errs
		return nil
	}
}

// Session returns the current session, or nil if none was created
func (s *Server) Session() *experiment.Online {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

func (s *Server) handleSimulator(w http.ResponseWriter, r *http.Request) {
	var req SimulatorRequest
	body := http.MaxBytesReader(w, r.Body, MaxRequestBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.fail(w, http.StatusBadRequest, fmt.Errorf("could not decode "+
			"simulator: %v", err))
		return
	}

	envConf := envconfig.NewConfig(gridworld.Grid(req.Map).Columns(),
		req.IRCapability, req.InitialPosition.X, req.InitialPosition.Y,
		s.config.Environment.Seed)
	env, _, err := envConf.Create()
	if err != nil {
		s.fail(w, statusOf(err), err)
		return
	}

	expConf := experiment.Config{InitialAction: s.config.Experiment.InitialAction}
	session, err := expConf.CreateExp(env, s.config.Agent, nil, s.logger)
	if err != nil {
		s.fail(w, statusOf(err), err)
		return
	}

	s.mu.Lock()
	s.session, s.env = session, env
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"x":     req.InitialPosition.X,
		"y":     req.InitialPosition.Y,
		"state": session.CurState(),
	}).Info("simulator initialized")

	s.respond(w, http.StatusCreated, req)
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		s.fail(w, http.StatusBadRequest, ErrNotInitialized)
		return
	}

	tick, err := s.session.Tick()
	if err != nil {
		s.fail(w, statusOf(err), err)
		return
	}

	x, y := s.env.Position()
	s.respond(w, http.StatusOK, NextResponse{
		Action:   string(tick.Action),
		Position: envconfig.Position{X: x, Y: y},
		State:    string(tick.State),
		Reward:   tick.Reward,
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		s.fail(w, http.StatusBadRequest, ErrNotInitialized)
		return
	}

	x, y := s.env.Position()
	s.respond(w, http.StatusOK, StateResponse{
		Tick:       s.session.Ticks(),
		PrevState:  string(s.session.PrevState()),
		PrevAction: string(s.session.PrevAction()),
		State:      string(s.session.CurState()),
		Reward:     s.session.CurReward(),
		Position:   envconfig.Position{X: x, Y: y},
	})
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		s.fail(w, http.StatusBadRequest, ErrNotInitialized)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if err := s.env.EncodePNG(w, CellSize); err != nil {
		s.logger.WithError(err).Error("could not render map")
	}
}

func (s *Server) respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).Error("could not write response")
	}
}

func (s *Server) fail(w http.ResponseWriter, status int, err error) {
	s.logger.WithError(err).WithField("status", status).Warn("request failed")
	s.respond(w, status, ErrorResponse{Error: err.Error()})
}

// statusOf maps errors caused by the client to 400 and every other
// error to 500
func statusOf(err error) int {
	if rlerr.IsInvalidArgument(err) || rlerr.IsKeyNotFound(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// statusRecorder records the status code written to a ResponseWriter
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
