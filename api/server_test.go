package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domino14/tictacterm/config"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func newTestServer() *Server {
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigDepth, 9)
	return New(&cfg)
}

func post(t *testing.T, s *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestPing(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestBestMoveCompletesRow(t *testing.T) {
	s := newTestServer()
	rec := post(t, s, "/api/bestmove", `{"board":["OO.","XX.","X.."],"side":"O","depth":3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp bestMoveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Move)
	assert.Equal(t, 0, resp.Move.Row)
	assert.Equal(t, 2, resp.Move.Col)
	assert.Equal(t, 102, resp.Value)
	assert.Equal(t, 3, resp.Depth)
	assert.Equal(t, "O", resp.Side)
	assert.Empty(t, resp.Winner)
}

func TestBestMoveSideFromParity(t *testing.T) {
	s := newTestServer()
	rec := post(t, s, "/api/bestmove", `{"board":["X..","...","..."]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp bestMoveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "O", resp.Side)
	assert.Equal(t, moveDTO{Row: 1, Col: 1, Mark: "O"}, *resp.Move)
	assert.Equal(t, 0, resp.Value)
}

func TestBestMoveFinishedGame(t *testing.T) {
	s := newTestServer()
	rec := post(t, s, "/api/bestmove", `{"board":["XXX","OO.","..."],"side":"O"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp bestMoveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.Move)
	assert.Equal(t, "X", resp.Winner)
	assert.Equal(t, -109, resp.Value)
}

func TestBadRequests(t *testing.T) {
	s := newTestServer()
	cases := map[string]string{
		"not json":   `{"board":`,
		"empty":      `{"board":[]}`,
		"ragged":     `{"board":["X..","..","..."]}`,
		"bad side":   `{"board":["...","...","..."],"side":"Q"}`,
		"bad letter": `{"board":["Z..","...","..."]}`,
		"too large":  `{"board":[".......",".......",".......",".......",".......",".......","......."]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := post(t, s, "/api/bestmove", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestSequence(t *testing.T) {
	s := newTestServer()
	rec := post(t, s, "/api/sequence", `{"board":["...","...","..."],"side":"X"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp sequenceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Steps, 9)
	assert.Equal(t, "draw", resp.Result)
	assert.Equal(t, 0, resp.Value)
	assert.Equal(t, moveDTO{Row: 0, Col: 0, Mark: "X"}, resp.Steps[0])
	assert.Equal(t, "O", resp.Steps[1].Mark)
}

func TestNotFound(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSelfPlayStream(t *testing.T) {
	srv := httptest.NewServer(newTestServer().Router())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/selfplay?depth=9"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var boards []boardPayload
	var last wsMessage
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var msg wsMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		if msg.Type == "ping" {
			continue
		}
		last = msg
		if msg.Type == "board" {
			var p boardPayload
			require.NoError(t, json.Unmarshal(msg.Payload, &p))
			boards = append(boards, p)
		}
	}
	require.Equal(t, "gameover", last.Type)
	// the empty board, then nine moves
	require.Len(t, boards, 10)
	assert.Equal(t, []string{"...", "...", "..."}, boards[0].Board)
	assert.Equal(t, &moveDTO{Row: 0, Col: 0, Mark: "X"}, boards[1].Move)
	var final boardPayload
	require.NoError(t, json.Unmarshal(last.Payload, &final))
	assert.Equal(t, "draw", final.Outcome)
	assert.Equal(t, 9, final.Turn)
}

func TestSelfPlayBadQuery(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/ws/selfplay?size=12", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
