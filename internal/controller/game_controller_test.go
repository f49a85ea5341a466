package controller

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benbeisheim/infinichess-backend/internal/codec"
	"github.com/benbeisheim/infinichess-backend/internal/middleware"
	"github.com/benbeisheim/infinichess-backend/internal/model"
	"github.com/benbeisheim/infinichess-backend/internal/rules"
	"github.com/benbeisheim/infinichess-backend/internal/service"
	"github.com/benbeisheim/infinichess-backend/internal/ws"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

func newTestApp(t *testing.T) (*fiber.App, *service.GameService) {
	t.Helper()
	b := model.NewBoard()
	model.StandardSetup(b)
	gs := service.NewGameService(b, rules.NewStandard(), zerolog.Nop())

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(middleware.EnsureClientID())
	gc := NewGameController(gs, Options{LongPollTimeout: 100 * time.Millisecond, MaxWindow: 16}, zerolog.Nop())
	gc.Register(app)
	return app, gs
}

func get(t *testing.T, app *fiber.App, path string) (int, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), 5000)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, body
}

func TestGetBoard(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := get(t, app, "/board")
	if status != http.StatusOK {
		t.Fatalf("status = %d, body %s", status, body)
	}
	b, err := codec.Decode(body)
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Pieces()) != 16 {
		t.Errorf("board has %d pieces, want 16", len(b.Pieces()))
	}
}

func TestMalformedParametersAreBadRequests(t *testing.T) {
	app, _ := newTestApp(t)

	paths := []string{
		"/board/abc",
		"/legal/6/x/0/0/8",
		"/legal/6/0/0/0/1e3",
		"/move/6/0/5/zero",
		"/promote/6/-/queen",
		"/square/a/b",
		"/piece/first",
		"/pawns/0/wide",
	}
	for _, path := range paths {
		status, body := get(t, app, path)
		if status != http.StatusBadRequest {
			t.Errorf("GET %s = %d, want 400", path, status)
			continue
		}
		var resp map[string]string
		if err := json.Unmarshal(body, &resp); err != nil || resp["error"] != ErrBadRequest.Message {
			t.Errorf("GET %s body = %s", path, body)
		}
	}
}

func TestMoveAndVersionedBoard(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := get(t, app, "/move/6/4/4/4")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	var result struct {
		Applied bool  `json:"applied"`
		Turn    int64 `json:"turn"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatal(err)
	}
	if !result.Applied || result.Turn != 1 {
		t.Errorf("move result = %+v", result)
	}

	status, body = get(t, app, "/board/1")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	b, _ := codec.Decode(body)
	if b.Turn().Int64() != 1 {
		t.Errorf("turn = %s", b.Turn())
	}
}

func TestIllegalMoveReportsNotApplied(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := get(t, app, "/move/7/0/0/0")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if string(body) != `{"applied":false,"turn":0}` {
		t.Errorf("body = %s", body)
	}
}

func TestVersionedBoardTimesOut(t *testing.T) {
	app, _ := newTestApp(t)

	start := time.Now()
	status, body := get(t, app, "/board/3")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if time.Since(start) < 100*time.Millisecond {
		t.Error("long poll returned before its timeout")
	}
	b, _ := codec.Decode(body)
	if b.Turn().Sign() != 0 {
		t.Errorf("turn = %s", b.Turn())
	}
}

func TestLegalMoves(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := get(t, app, "/legal/7/6/0/0/8")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if string(body) != "[[5,5],[5,7]]" {
		t.Errorf("body = %s", body)
	}

	_, body = get(t, app, "/legal/7/6/0/0/0")
	if string(body) != "[]" {
		t.Errorf("empty window body = %s", body)
	}

	status, _ = get(t, app, "/legal/7/6/0/0/17")
	if status != http.StatusBadRequest {
		t.Errorf("oversized window status = %d", status)
	}
}

func TestPromoteAndSquare(t *testing.T) {
	app, gs := newTestApp(t)

	status, body := get(t, app, "/promote/6/0/queen")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if string(body) != `{"id":16,"promoted":true}` {
		t.Errorf("body = %s", body)
	}
	if gs.Turn().Sign() != 0 {
		t.Error("promotion advanced the turn")
	}

	_, body = get(t, app, "/square/6/0")
	var doc codec.PieceDoc
	if err := json.Unmarshal(body, &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Type != model.Queen || doc.Color != model.White {
		t.Errorf("square holds %+v", doc)
	}

	_, body = get(t, app, "/square/3/3")
	if string(body) != "null" {
		t.Errorf("empty square body = %s", body)
	}

	_, body = get(t, app, "/promote/3/3/queen")
	if string(body) != `{"promoted":false}` {
		t.Errorf("body = %s", body)
	}
}

func TestPieceLookups(t *testing.T) {
	app, _ := newTestApp(t)

	get(t, app, "/move/7/1/5/2")
	get(t, app, "/move/1/3/3/3")
	get(t, app, "/move/5/2/3/3")

	_, body := get(t, app, "/piece/16")
	var doc codec.PieceDoc
	if err := json.Unmarshal(body, &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Type != model.Pawn || !doc.Captured {
		t.Errorf("piece 16 = %+v", doc)
	}

	status, _ := get(t, app, "/piece/999")
	if status != http.StatusNotFound {
		t.Errorf("unknown piece status = %d", status)
	}

	_, body = get(t, app, "/pieces")
	var docs []codec.PieceDoc
	if err := json.Unmarshal(body, &docs); err != nil {
		t.Fatal(err)
	}
	for _, d := range docs {
		if d.Captured {
			t.Errorf("captured piece %d listed", d.ID)
		}
	}

	_, body = get(t, app, "/history")
	var plies []model.Ply
	if err := json.Unmarshal(body, &plies); err != nil {
		t.Fatal(err)
	}
	if len(plies) != 3 || plies[2].Notation != "Nx[3, 3]" {
		t.Errorf("history = %s", body)
	}
}

func TestMaterializePawnsRoute(t *testing.T) {
	app, gs := newTestApp(t)

	status, _ := get(t, app, "/pawns/-4/4")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if got := len(gs.Pieces()); got != 24 {
		t.Errorf("got %d pieces, want 24", got)
	}
}

func TestClientIDEchoed(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/board", nil)
	req.Header.Set(middleware.ClientIDHeader, "abc")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if got := resp.Header.Get(middleware.ClientIDHeader); got != "abc" {
		t.Errorf("client id = %q", got)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/board", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.Header.Get(middleware.ClientIDHeader) == "" {
		t.Error("no client id generated")
	}
}

func TestHandleMessage(t *testing.T) {
	_, gs := newTestApp(t)
	wsc := NewWebSocketController(gs, zerolog.Nop())

	reply, err := wsc.handleMessage(ws.Message{
		Type:    ws.MessageTypeMove,
		Payload: json.RawMessage(`{"from":[1,0],"to":[3,0]}`),
	})
	if err != nil {
		t.Fatal(err)
	}
	if reply.Type != ws.MessageTypeResult || string(reply.Payload) != `{"applied":true,"turn":1}` {
		t.Errorf("reply = %s %s", reply.Type, reply.Payload)
	}

	if _, err := wsc.handleMessage(ws.Message{
		Type:    ws.MessageTypeMove,
		Payload: json.RawMessage(`{"from":[1,0]}`),
	}); err != errMissingSquare {
		t.Errorf("err = %v, want errMissingSquare", err)
	}

	reply, err = wsc.handleMessage(ws.Message{
		Type:    ws.MessageTypePromote,
		Payload: json.RawMessage(`{"at":[3,0],"piece":"knight"}`),
	})
	if err != nil {
		t.Fatal(err)
	}
	if string(reply.Payload) != `{"id":16,"promoted":true}` {
		t.Errorf("reply = %s", reply.Payload)
	}

	if _, err := wsc.handleMessage(ws.Message{Type: "resign"}); err == nil {
		t.Error("unknown message type accepted")
	}
}
