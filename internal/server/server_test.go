package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corkboard/corkd/internal/auth"
	"github.com/corkboard/corkd/internal/config"
	"github.com/corkboard/corkd/internal/store"
	"github.com/corkboard/corkd/pkg/board"
)

type testEnv struct {
	t     *testing.T
	ts    *httptest.Server
	store *store.Store
	feed  *board.Feed
}

// envelope mirrors the API response wrapper with the data left raw so each
// test can decode it into the type it expects.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *apiError       `json:"error"`
}

func setupTestServer(t *testing.T) *testEnv {
	mr := miniredis.RunT(t)

	st, err := store.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	feed, err := board.NewFeed(&redis.Options{Addr: mr.Addr()}, "test")
	require.NoError(t, err)
	t.Cleanup(func() { feed.Close() })

	authSvc, err := auth.NewService("test-secret", time.Hour)
	require.NoError(t, err)

	cfg := config.Default()
	srv := New(cfg, st, feed, authSvc)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	return &testEnv{t: t, ts: ts, store: st, feed: feed}
}

// do issues a request against the test server and decodes the response
// envelope.
func (e *testEnv) do(method, path, token string, body any) (int, envelope) {
	e.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, e.ts.URL+path, &buf)
	require.NoError(e.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(e.t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(e.t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

// cardsIn filters a board snapshot's cards down to one column, preserving
// position order.
func cardsIn(full store.FullBoard, columnID string) []board.Card {
	var out []board.Card
	for _, c := range full.Cards {
		if c.ColumnID == columnID {
			out = append(out, c)
		}
	}
	return out
}

// register creates an account and returns the token and user ID.
func (e *testEnv) register(username string) (token, userID string) {
	e.t.Helper()
	status, env := e.do("POST", "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "hunter22",
	})
	require.Equal(e.t, http.StatusCreated, status)
	resp := decodeData[authResponse](e.t, env)
	return resp.Token, resp.UserID
}

// makeBoard creates a board owned by the token's user.
func (e *testEnv) makeBoard(token, title string) board.Board {
	e.t.Helper()
	status, env := e.do("POST", "/api/boards", token, map[string]string{"title": title})
	require.Equal(e.t, http.StatusCreated, status)
	return decodeData[board.Board](e.t, env)
}

func (e *testEnv) makeColumn(token, boardID, title string) board.Column {
	e.t.Helper()
	status, env := e.do("POST", "/api/boards/"+boardID+"/columns", token, map[string]string{"title": title})
	require.Equal(e.t, http.StatusCreated, status)
	return decodeData[board.Column](e.t, env)
}

func (e *testEnv) makeCard(token, columnID, title string) board.Card {
	e.t.Helper()
	status, env := e.do("POST", "/api/columns/"+columnID+"/cards", token, map[string]string{"title": title})
	require.Equal(e.t, http.StatusCreated, status)
	return decodeData[board.Card](e.t, env)
}

func TestAuthEndpoints(t *testing.T) {
	env := setupTestServer(t)

	t.Run("register then login", func(t *testing.T) {
		token, userID := env.register("alice")
		assert.NotEmpty(t, token)
		assert.NotEmpty(t, userID)

		status, resp := env.do("POST", "/api/auth/login", "", map[string]string{
			"username": "alice",
			"password": "hunter22",
		})
		require.Equal(t, http.StatusOK, status)
		login := decodeData[authResponse](t, resp)
		assert.Equal(t, userID, login.UserID)
		assert.Equal(t, "alice", login.Username)
	})

	t.Run("duplicate username is a conflict", func(t *testing.T) {
		status, resp := env.do("POST", "/api/auth/register", "", map[string]string{
			"username": "alice",
			"password": "other",
		})
		assert.Equal(t, http.StatusConflict, status)
		assert.False(t, resp.Success)
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		status, _ := env.do("POST", "/api/auth/login", "", map[string]string{
			"username": "alice",
			"password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("unknown user gets the same response as wrong password", func(t *testing.T) {
		status, resp := env.do("POST", "/api/auth/login", "", map[string]string{
			"username": "nobody",
			"password": "hunter22",
		})
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "invalid username or password", resp.Error.Message)
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		status, _ := env.do("POST", "/api/auth/register", "", map[string]string{"username": "bare"})
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestMe(t *testing.T) {
	env := setupTestServer(t)
	token, userID := env.register("alice")

	status, resp := env.do("GET", "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, status)

	var me struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &me))
	assert.Equal(t, userID, me.ID)
	assert.Equal(t, "alice", me.Username)
	assert.Equal(t, "alice@example.com", me.Email)
	assert.NotContains(t, string(resp.Data), "password")

	status, _ = env.do("GET", "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestSearchUsers(t *testing.T) {
	env := setupTestServer(t)
	token, _ := env.register("alice")
	_, bobID := env.register("bob")
	env.register("bobby")
	env.register("carol")

	search := func(q string) []store.User {
		t := env.t
		status, resp := env.do("GET", "/api/users/search?query="+q, token, nil)
		require.Equal(t, http.StatusOK, status)
		return decodeData[[]store.User](t, resp)
	}

	t.Run("matches username fragment", func(t *testing.T) {
		users := search("bob")
		require.Len(t, users, 2)
		assert.Equal(t, "bob", users[0].Username)
		assert.Equal(t, bobID, users[0].ID)
		assert.Equal(t, "bobby", users[1].Username)
	})

	t.Run("matches email fragment", func(t *testing.T) {
		users := search("carol@example")
		require.Len(t, users, 1)
		assert.Equal(t, "carol", users[0].Username)
	})

	t.Run("excludes the caller", func(t *testing.T) {
		for _, u := range search("alice") {
			assert.NotEqual(t, "alice", u.Username)
		}
	})

	t.Run("empty query returns nothing", func(t *testing.T) {
		assert.Empty(t, search(""))
	})
}

func TestAuthRequired(t *testing.T) {
	env := setupTestServer(t)

	status, resp := env.do("GET", "/api/boards", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, resp.Success)

	status, _ = env.do("GET", "/api/boards", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestBoardLifecycle(t *testing.T) {
	env := setupTestServer(t)
	token, userID := env.register("alice")

	b := env.makeBoard(token, "Launch plan")
	assert.Equal(t, "Launch plan", b.Title)
	assert.Equal(t, userID, b.OwnerID)

	t.Run("list shows the board", func(t *testing.T) {
		status, resp := env.do("GET", "/api/boards", token, nil)
		require.Equal(t, http.StatusOK, status)
		boards := decodeData[[]board.Board](t, resp)
		require.Len(t, boards, 1)
		assert.Equal(t, b.ID, boards[0].ID)
	})

	t.Run("full board snapshot is ordered", func(t *testing.T) {
		todo := env.makeColumn(token, b.ID, "To Do")
		doing := env.makeColumn(token, b.ID, "Doing")
		env.makeCard(token, todo.ID, "first")
		env.makeCard(token, todo.ID, "second")

		status, resp := env.do("GET", "/api/boards/"+b.ID, token, nil)
		require.Equal(t, http.StatusOK, status)
		full := decodeData[store.FullBoard](t, resp)
		require.Len(t, full.Columns, 2)
		assert.Equal(t, []int{0, 1}, []int{full.Columns[0].Position, full.Columns[1].Position})
		assert.Equal(t, "To Do", full.Columns[0].Title)
		assert.Equal(t, "Doing", full.Columns[1].Title)
		todoCards := cardsIn(full, todo.ID)
		require.Len(t, todoCards, 2)
		assert.Equal(t, "first", todoCards[0].Title)
		assert.Empty(t, cardsIn(full, doing.ID))
		require.Len(t, full.Members, 1)
		assert.Equal(t, board.RoleOwner, full.Members[0].Role)
	})

	t.Run("unknown board is not found", func(t *testing.T) {
		status, _ := env.do("GET", "/api/boards/b8f6f8f0-0000-0000-0000-000000000000", token, nil)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("non-member cannot see the board", func(t *testing.T) {
		other, _ := env.register("mallory")
		status, _ := env.do("GET", "/api/boards/"+b.ID, other, nil)
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("only the owner deletes the board", func(t *testing.T) {
		other, otherID := env.register("bob")
		status, _ := env.do("POST", "/api/boards/"+b.ID+"/members", token, map[string]string{"user_id": otherID})
		require.Equal(t, http.StatusCreated, status)

		status, _ = env.do("DELETE", "/api/boards/"+b.ID, other, nil)
		assert.Equal(t, http.StatusForbidden, status)

		status, _ = env.do("DELETE", "/api/boards/"+b.ID, token, nil)
		assert.Equal(t, http.StatusOK, status)

		status, _ = env.do("GET", "/api/boards/"+b.ID, token, nil)
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestMemberEndpoints(t *testing.T) {
	env := setupTestServer(t)
	ownerToken, ownerID := env.register("alice")
	memberToken, memberID := env.register("bob")
	b := env.makeBoard(ownerToken, "Shared")

	t.Run("owner invites a member", func(t *testing.T) {
		status, resp := env.do("POST", "/api/boards/"+b.ID+"/members", ownerToken, map[string]string{"user_id": memberID})
		require.Equal(t, http.StatusCreated, status)
		m := decodeData[board.Member](t, resp)
		assert.Equal(t, "bob", m.Username)
		assert.Equal(t, board.RoleMember, m.Role)
	})

	t.Run("members cannot invite", func(t *testing.T) {
		_, thirdID := env.register("carol")
		status, _ := env.do("POST", "/api/boards/"+b.ID+"/members", memberToken, map[string]string{"user_id": thirdID})
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("second owner rejected", func(t *testing.T) {
		_, dID := env.register("dave")
		status, _ := env.do("POST", "/api/boards/"+b.ID+"/members", ownerToken, map[string]any{"user_id": dID, "role": "owner"})
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("owner cannot remove self", func(t *testing.T) {
		status, _ := env.do("DELETE", "/api/boards/"+b.ID+"/members/"+ownerID, ownerToken, nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("owner removes a member", func(t *testing.T) {
		status, _ := env.do("DELETE", "/api/boards/"+b.ID+"/members/"+memberID, ownerToken, nil)
		assert.Equal(t, http.StatusOK, status)

		status, _ = env.do("GET", "/api/boards/"+b.ID, memberToken, nil)
		assert.Equal(t, http.StatusForbidden, status)
	})
}

func TestColumnEndpoints(t *testing.T) {
	env := setupTestServer(t)
	token, _ := env.register("alice")
	b := env.makeBoard(token, "Sprint")

	todo := env.makeColumn(token, b.ID, "To Do")
	doing := env.makeColumn(token, b.ID, "Doing")
	done := env.makeColumn(token, b.ID, "Done")
	assert.Equal(t, 0, todo.Position)
	assert.Equal(t, 2, done.Position)

	t.Run("rename", func(t *testing.T) {
		status, resp := env.do("PUT", "/api/columns/"+doing.ID, token, map[string]string{"title": "In Progress"})
		require.Equal(t, http.StatusOK, status)
		col := decodeData[board.Column](t, resp)
		assert.Equal(t, "In Progress", col.Title)
		assert.Equal(t, 1, col.Position)
	})

	t.Run("move to front", func(t *testing.T) {
		status, resp := env.do("PUT", "/api/columns/"+done.ID+"/move", token, map[string]int{"newPosition": 0})
		require.Equal(t, http.StatusOK, status)
		var moved struct {
			ID       string `json:"id"`
			Position int    `json:"position"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &moved))
		assert.Equal(t, done.ID, moved.ID)
		assert.Equal(t, 0, moved.Position)

		_, snap := env.do("GET", "/api/boards/"+b.ID, token, nil)
		full := decodeData[store.FullBoard](t, snap)
		assert.Equal(t, "Done", full.Columns[0].Title)
		assert.Equal(t, "To Do", full.Columns[1].Title)
	})

	t.Run("move past the end clamps", func(t *testing.T) {
		status, resp := env.do("PUT", "/api/columns/"+todo.ID+"/move", token, map[string]int{"newPosition": 99})
		require.Equal(t, http.StatusOK, status)
		var moved struct {
			Position int `json:"position"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &moved))
		assert.Equal(t, 2, moved.Position)
	})

	t.Run("missing position rejected", func(t *testing.T) {
		status, _ := env.do("PUT", "/api/columns/"+todo.ID+"/move", token, map[string]string{})
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("delete renumbers survivors", func(t *testing.T) {
		status, _ := env.do("DELETE", "/api/columns/"+doing.ID, token, nil)
		require.Equal(t, http.StatusOK, status)

		_, snap := env.do("GET", "/api/boards/"+b.ID, token, nil)
		full := decodeData[store.FullBoard](t, snap)
		require.Len(t, full.Columns, 2)
		assert.Equal(t, 0, full.Columns[0].Position)
		assert.Equal(t, 1, full.Columns[1].Position)
	})

	t.Run("unknown column is not found", func(t *testing.T) {
		status, _ := env.do("DELETE", "/api/columns/00000000-0000-0000-0000-000000000000", token, nil)
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestCardEndpoints(t *testing.T) {
	env := setupTestServer(t)
	token, userID := env.register("alice")
	b := env.makeBoard(token, "Sprint")
	todo := env.makeColumn(token, b.ID, "To Do")
	done := env.makeColumn(token, b.ID, "Done")

	a := env.makeCard(token, todo.ID, "A")
	bb := env.makeCard(token, todo.ID, "B")
	c := env.makeCard(token, todo.ID, "C")
	assert.Equal(t, 0, a.Position)
	assert.Equal(t, 2, c.Position)
	assert.Equal(t, userID, a.CreatorID)

	t.Run("partial update leaves other fields alone", func(t *testing.T) {
		desc := "write the report"
		status, resp := env.do("PUT", "/api/cards/"+a.ID, token, map[string]any{
			"description": desc,
			"labels":      []board.Label{{Color: "red", Text: "urgent"}},
		})
		require.Equal(t, http.StatusOK, status)
		card := decodeData[board.Card](t, resp)
		assert.Equal(t, "A", card.Title)
		require.NotNil(t, card.Description)
		assert.Equal(t, desc, *card.Description)
		require.Len(t, card.Labels, 1)
		assert.Equal(t, "urgent", card.Labels[0].Text)
		assert.Equal(t, 0, card.Position)
	})

	t.Run("move within the column", func(t *testing.T) {
		status, resp := env.do("PUT", "/api/cards/"+c.ID+"/move", token, map[string]any{"newPosition": 0})
		require.Equal(t, http.StatusOK, status)
		var moved struct {
			ColumnID string `json:"columnId"`
			Position int    `json:"position"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &moved))
		assert.Equal(t, todo.ID, moved.ColumnID)
		assert.Equal(t, 0, moved.Position)
	})

	t.Run("move across columns", func(t *testing.T) {
		status, resp := env.do("PUT", "/api/cards/"+bb.ID+"/move", token, map[string]any{
			"newColumnId": done.ID,
			"newPosition": 0,
		})
		require.Equal(t, http.StatusOK, status)
		var moved struct {
			ColumnID string `json:"columnId"`
			Position int    `json:"position"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &moved))
		assert.Equal(t, done.ID, moved.ColumnID)
		assert.Equal(t, 0, moved.Position)

		_, snap := env.do("GET", "/api/boards/"+b.ID, token, nil)
		full := decodeData[store.FullBoard](t, snap)
		todoCards := cardsIn(full, todo.ID)
		require.Len(t, todoCards, 2)
		assert.Equal(t, 0, todoCards[0].Position)
		assert.Equal(t, 1, todoCards[1].Position)
		require.Len(t, cardsIn(full, done.ID), 1)
	})

	t.Run("move to a column on another board conflicts", func(t *testing.T) {
		other := env.makeBoard(token, "Other")
		foreign := env.makeColumn(token, other.ID, "Elsewhere")
		status, _ := env.do("PUT", "/api/cards/"+a.ID+"/move", token, map[string]any{
			"newColumnId": foreign.ID,
			"newPosition": 0,
		})
		assert.Equal(t, http.StatusConflict, status)
	})

	t.Run("delete renumbers the column", func(t *testing.T) {
		status, _ := env.do("DELETE", "/api/cards/"+c.ID, token, nil)
		require.Equal(t, http.StatusOK, status)

		_, snap := env.do("GET", "/api/boards/"+b.ID, token, nil)
		full := decodeData[store.FullBoard](t, snap)
		remaining := cardsIn(full, todo.ID)
		require.Len(t, remaining, 1)
		assert.Equal(t, 0, remaining[0].Position)
	})
}

func TestReorderEndpoints(t *testing.T) {
	env := setupTestServer(t)
	token, _ := env.register("alice")
	b := env.makeBoard(token, "Bulk")
	c0 := env.makeColumn(token, b.ID, "First")
	c1 := env.makeColumn(token, b.ID, "Second")
	k0 := env.makeCard(token, c0.ID, "one")
	k1 := env.makeCard(token, c0.ID, "two")

	t.Run("columns full replace", func(t *testing.T) {
		status, _ := env.do("PUT", "/api/boards/"+b.ID+"/columns/order", token, map[string]any{
			"columns": []board.ColumnOrder{
				{ID: c1.ID, Position: 0},
				{ID: c0.ID, Position: 1},
			},
		})
		require.Equal(t, http.StatusOK, status)

		_, snap := env.do("GET", "/api/boards/"+b.ID, token, nil)
		full := decodeData[store.FullBoard](t, snap)
		assert.Equal(t, "Second", full.Columns[0].Title)
	})

	t.Run("unknown column id aborts the batch", func(t *testing.T) {
		status, _ := env.do("PUT", "/api/boards/"+b.ID+"/columns/order", token, map[string]any{
			"columns": []board.ColumnOrder{
				{ID: "00000000-0000-0000-0000-000000000000", Position: 0},
			},
		})
		assert.Equal(t, http.StatusConflict, status)
	})

	t.Run("cards full replace across columns", func(t *testing.T) {
		status, _ := env.do("PUT", "/api/boards/"+b.ID+"/cards/order", token, map[string]any{
			"cards": []board.CardOrder{
				{ID: k0.ID, Position: 0, ColumnID: c1.ID},
				{ID: k1.ID, Position: 0, ColumnID: c0.ID},
			},
		})
		require.Equal(t, http.StatusOK, status)

		_, snap := env.do("GET", "/api/boards/"+b.ID, token, nil)
		full := decodeData[store.FullBoard](t, snap)
		movedCards := cardsIn(full, c1.ID)
		require.Len(t, movedCards, 1)
		assert.Equal(t, "one", movedCards[0].Title)
	})

	t.Run("empty batch rejected", func(t *testing.T) {
		status, _ := env.do("PUT", "/api/boards/"+b.ID+"/cards/order", token, map[string]any{"cards": []board.CardOrder{}})
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestMutationsPublishEvents(t *testing.T) {
	env := setupTestServer(t)
	token, userID := env.register("alice")
	b := env.makeBoard(token, "Live")
	col := env.makeColumn(token, b.ID, "To Do")

	sub, err := env.feed.Subscribe(context.Background(), b.ID)
	require.NoError(t, err)
	defer sub.Close()

	card := env.makeCard(token, col.ID, "watch me")

	select {
	case ev := <-sub.Events():
		assert.Equal(t, board.EventCardCreated, ev.Kind)
		assert.Equal(t, b.ID, ev.BoardID)
		assert.Equal(t, userID, ev.ActorID)
		created, err := board.DecodePayload[board.Card](ev)
		require.NoError(t, err)
		assert.Equal(t, card.ID, created.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a card:created event")
	}

	status, _ := env.do("PUT", "/api/cards/"+card.ID+"/move", token, map[string]any{"newPosition": 0})
	require.Equal(t, http.StatusOK, status)

	select {
	case ev := <-sub.Events():
		assert.Equal(t, board.EventCardMoved, ev.Kind)
		moved, err := board.DecodePayload[board.CardMoved](ev)
		require.NoError(t, err)
		assert.Equal(t, card.ID, moved.CardID)
		assert.Equal(t, 0, moved.Position)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a card:moved event")
	}
}

func TestEventStream(t *testing.T) {
	env := setupTestServer(t)
	token, _ := env.register("alice")
	b := env.makeBoard(token, "Streamed")
	col := env.makeColumn(token, b.ID, "To Do")

	t.Run("rejects missing token before subscribing", func(t *testing.T) {
		resp, err := http.Get(env.ts.URL + "/api/boards/" + b.ID + "/events")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("rejects non-members before subscribing", func(t *testing.T) {
		other, _ := env.register("mallory")
		resp, err := http.Get(env.ts.URL + "/api/boards/" + b.ID + "/events?token=" + other)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("relays events to a member", func(t *testing.T) {
		resp, err := http.Get(env.ts.URL + "/api/boards/" + b.ID + "/events?token=" + token)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

		lines := make(chan string, 16)
		go func() {
			scanner := bufio.NewScanner(resp.Body)
			for scanner.Scan() {
				lines <- scanner.Text()
			}
			close(lines)
		}()

		ev, err := board.NewEvent(board.EventColumnMoved, b.ID, "peer", board.ColumnMoved{ColumnID: col.ID, Position: 0})
		require.NoError(t, err)
		require.NoError(t, env.feed.Publish(context.Background(), ev))

		deadline := time.After(2 * time.Second)
		var eventLine, dataLine string
		for eventLine == "" || dataLine == "" {
			select {
			case line, open := <-lines:
				require.True(t, open, "stream closed early")
				switch {
				case strings.HasPrefix(line, "event: "):
					eventLine = line
				case strings.HasPrefix(line, "data: "):
					dataLine = line
				}
			case <-deadline:
				t.Fatal("no event arrived on the stream")
			}
		}

		assert.Equal(t, fmt.Sprintf("event: %s", board.EventColumnMoved), eventLine)
		var got board.Event
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(dataLine, "data: ")), &got))
		assert.Equal(t, board.EventColumnMoved, got.Kind)
		assert.Equal(t, "peer", got.ActorID)
	})
}

func TestHealthz(t *testing.T) {
	env := setupTestServer(t)

	resp, err := http.Get(env.ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health struct {
		Status   string `json:"status"`
		Database string `json:"database"`
		Redis    string `json:"redis"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "connected", health.Database)
	assert.Equal(t, "connected", health.Redis)
}
