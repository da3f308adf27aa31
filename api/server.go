// Package api serves position analysis over HTTP and streams self-play
// games over a websocket.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/tictacterm/alphabeta"
	"github.com/domino14/tictacterm/board"
	"github.com/domino14/tictacterm/config"
)

// MaxBoardSize bounds the boards the API will search.
const MaxBoardSize = 6

var (
	errBadPayload = errors.New("invalid payload")
	errTooLarge   = fmt.Errorf("board size must be at most %d", MaxBoardSize)
)

// Server bundles the router and the config that solvers are built from.
type Server struct {
	r   *chi.Mux
	cfg *config.Config
}

type positionRequest struct {
	// Rows of X, O and '.' characters, one string per row.
	Board []string `json:"board"`
	// Side to move, X or O. Defaults to the side on turn by move count.
	Side  string `json:"side,omitempty"`
	Depth int    `json:"depth,omitempty"`
}

type moveDTO struct {
	Row  int    `json:"row"`
	Col  int    `json:"col"`
	Mark string `json:"mark,omitempty"`
}

type bestMoveResponse struct {
	Move   *moveDTO `json:"move"`
	Value  int      `json:"value"`
	Depth  int      `json:"depth"`
	Nodes  uint64   `json:"nodes"`
	Side   string   `json:"side"`
	Winner string   `json:"winner,omitempty"`
}

type sequenceResponse struct {
	Steps  []moveDTO `json:"steps"`
	Value  int       `json:"value"`
	Depth  int       `json:"depth"`
	Result string    `json:"result"`
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg *config.Config) *Server {
	s := &Server{r: chi.NewRouter(), cfg: cfg}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)

	s.r.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(30 * time.Second))
		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		})
		r.Post("/bestmove", s.handleBestMove)
		r.Post("/sequence", s.handleSequence)
	})
	s.r.Get("/ws/selfplay", s.serveSelfPlay)

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})
	return s
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func markName(m board.Mark) string {
	if m == board.Empty {
		return ""
	}
	return m.String()
}

// solver builds a single-use solver from the server config, with the
// request's depth if given.
func (s *Server) solver(depth int) *alphabeta.Solver {
	solver := alphabeta.NewSolverFromConfig(s.cfg)
	if depth != 0 {
		solver.SetDepthBound(depth)
	}
	return solver
}

func decodePosition(r *http.Request) (*board.Board, board.Mark, positionRequest, error) {
	var req positionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, board.Empty, req, errBadPayload
	}
	n := len(req.Board)
	if n > MaxBoardSize {
		return nil, board.Empty, req, errTooLarge
	}
	b, err := board.NewBoard(n, n)
	if err != nil {
		return nil, board.Empty, req, err
	}
	if err := b.SetFromPlaintext(req.Board); err != nil {
		return nil, board.Empty, req, err
	}
	side := board.First
	if b.NumMoves()%2 == 1 {
		side = board.Second
	}
	if req.Side != "" {
		if side, err = board.MarkFromString(req.Side); err != nil {
			return nil, board.Empty, req, err
		}
	}
	return b, side, req, nil
}

func (s *Server) handleBestMove(w http.ResponseWriter, r *http.Request) {
	b, side, req, err := decodePosition(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	solver := s.solver(req.Depth)
	value, m := solver.Search(b, side)
	resp := bestMoveResponse{
		Value:  value,
		Depth:  solver.DepthBound(),
		Nodes:  solver.Nodes(),
		Side:   side.String(),
		Winner: markName(b.CheckWinner()),
	}
	if m != nil {
		resp.Move = &moveDTO{Row: m.Row, Col: m.Col, Mark: side.String()}
	}
	log.Debug().Str("reqID", chimw.GetReqID(r.Context())).Int("value", value).Msg("bestmove")
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSequence(w http.ResponseWriter, r *http.Request) {
	b, side, req, err := decodePosition(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	solver := s.solver(req.Depth)
	pv := solver.PrincipalVariation(b, side)
	result := markName(pv.Result)
	if result == "" {
		result = "draw"
	}
	writeJSON(w, http.StatusOK, sequenceResponse{
		Steps: lo.Map(pv.Steps, func(st alphabeta.Step, _ int) moveDTO {
			return moveDTO{Row: st.Row, Col: st.Col, Mark: st.Mark.String()}
		}),
		Value:  pv.Score,
		Depth:  solver.DepthBound(),
		Result: result,
	})
}
