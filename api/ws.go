package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/domino14/tictacterm/automatic"
	"github.com/domino14/tictacterm/board"
	"github.com/domino14/tictacterm/config"
)

const wsIdlePingInterval = 20 * time.Second

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type boardPayload struct {
	Board   []string `json:"board"`
	Move    *moveDTO `json:"move,omitempty"`
	Value   int      `json:"value"`
	Turn    int      `json:"turn"`
	Outcome string   `json:"outcome"`
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}

func boardRows(b *board.Board) []string {
	rows := make([]string, b.Dim())
	for i := range rows {
		row := make([]byte, b.Dim())
		for j := range row {
			row[j] = b.Get(i, j).String()[0]
		}
		rows[i] = string(row)
	}
	return rows
}

func writeWSWithHeartbeat(conn *websocket.Conn, send <-chan []byte) error {
	ticker := time.NewTicker(wsIdlePingInterval)
	defer ticker.Stop()
	lastWrite := time.Now()
	pingPayload := mustMarshal(wsMessage{Type: "ping"})

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				return conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < wsIdlePingInterval {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, pingPayload); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}

// selfPlayConfig copies the server config, overriding depth and board
// size from the query string.
func (s *Server) selfPlayConfig(r *http.Request) (*config.Config, int, error) {
	cfg := config.DefaultConfig()
	if err := cfg.MergeConfigMap(s.cfg.AllSettings()); err != nil {
		return nil, 0, err
	}
	q := r.URL.Query()
	if d := q.Get("depth"); d != "" {
		depth, err := strconv.Atoi(d)
		if err != nil {
			return nil, 0, err
		}
		cfg.Set(config.ConfigDepth, depth)
	}
	if sz := q.Get("size"); sz != "" {
		size, err := strconv.Atoi(sz)
		if err != nil {
			return nil, 0, err
		}
		if size > MaxBoardSize {
			return nil, 0, errTooLarge
		}
		cfg.Set(config.ConfigBoardSize, size)
		cfg.Set(config.ConfigWinCount, size)
	}
	opening := 0
	if o := q.Get("opening"); o != "" {
		var err error
		if opening, err = strconv.Atoi(o); err != nil {
			return nil, 0, err
		}
	}
	return &cfg, opening, nil
}

// serveSelfPlay streams one engine-vs-engine game: a "board" message after
// every move and a final "gameover".
func (s *Server) serveSelfPlay(w http.ResponseWriter, r *http.Request) {
	cfg, opening, err := s.selfPlayConfig(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	runner, err := automatic.NewGameRunner(nil, nil, cfg, opening)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	send := make(chan []byte, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer conn.Close()
		if err := writeWSWithHeartbeat(conn, send); err != nil {
			log.Debug().Err(err).Msg("ws-write")
		}
	}()
	// Reader: notice when the client goes away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	g := runner.Game()
	emit := func(typ string, m *board.Move, value int) bool {
		p := boardPayload{
			Board:   boardRows(g.Board()),
			Value:   value,
			Turn:    g.Turn(),
			Outcome: g.Outcome().String(),
		}
		if m != nil {
			last, _ := g.Board().LastMove()
			p.Move = &moveDTO{Row: m.Row, Col: m.Col, Mark: last.Mark.String()}
		}
		select {
		case send <- mustMarshal(wsMessage{Type: typ, Payload: mustMarshal(p)}):
			return true
		case <-gone:
			return false
		}
	}

	defer func() {
		close(send)
		<-done
	}()
	if err := runner.StartGame(); err != nil {
		log.Err(err).Msg("selfplay-start")
		return
	}
	if !emit("board", nil, 0) {
		return
	}
	for g.Playing() {
		m, value, err := g.AIMoveScored()
		if err != nil {
			log.Err(err).Msg("selfplay-move")
			return
		}
		if !emit("board", m, value) {
			return
		}
	}
	emit("gameover", nil, 0)
}
