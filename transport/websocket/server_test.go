package websocket

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/renju-backend/internal/repository"
	"github.com/rocketscienceinc/renju-backend/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClient struct {
	t    *testing.T
	conn *websocket.Conn
	id   string
}

func newTestServer(t *testing.T) (*httptest.Server, *Hub) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := NewHub(logger)
	coordinator := usecase.NewRoomCoordinator(logger, repository.NewMemoryRoomRepository(), repository.NewSessionRepository(), hub)
	server := New(logger, coordinator, hub, []string{"*"})

	srv := httptest.NewServer(server.Handler())
	t.Cleanup(srv.Close)

	return srv, hub
}

func dial(t *testing.T, srv *httptest.Server) *testClient {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
	})

	c := &testClient{t: t, conn: conn}

	var hello ConnectPayload
	c.expect("connect", &hello)
	require.NotEmpty(t, hello.ConnectionID)
	c.id = hello.ConnectionID

	return c
}

func (that *testClient) send(action string, payload any) {
	that.t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(that.t, err)
	require.NoError(that.t, that.conn.WriteJSON(Message{Action: action, Payload: raw}))
}

// expect skips other events until the given action arrives and decodes its payload.
func (that *testClient) expect(action string, out any) {
	that.t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for {
		require.NoError(that.t, that.conn.SetReadDeadline(deadline))

		var msg Message
		require.NoError(that.t, that.conn.ReadJSON(&msg), "waiting for %s", action)

		if msg.Action == action {
			if out != nil {
				require.NoError(that.t, json.Unmarshal(msg.Payload, out))
			}
			return
		}
	}
}

func TestServer_GameFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	host := dial(t, srv)
	guest := dial(t, srv)

	// Given: the host opens a room and the guest joins and gets ready
	var opened usecase.RoomState
	host.send("room:open", nil)
	host.expect("room:open", &opened)
	roomID := opened.Room.ID
	require.NotEmpty(t, roomID)

	var joined usecase.RoomState
	guest.send("room:join", RoomRequest{RoomID: roomID})
	guest.expect("room:join", &joined)
	require.Len(t, joined.Room.Players, 2)

	var updated usecase.RoomState
	host.expect("room:updated", &updated)
	assert.Len(t, updated.Room.Players, 2)

	guest.send("room:ready", RoomRequest{RoomID: roomID})
	guest.expect("room:ready", nil)

	// When: the host starts and plays the first stone
	host.send("game:start", RoomRequest{RoomID: roomID})
	host.expect("game:start", nil)
	guest.expect("game:started", nil)

	row, col := 7, 7
	host.send("game:move", MoveRequest{RoomID: roomID, Row: &row, Col: &col})

	// Then: the guest sees the move
	var moved usecase.MoveResult
	guest.expect("game:move", &moved)
	assert.Equal(t, 7, moved.Move.Row)
	assert.Equal(t, 1, moved.Move.Seq)

	// the host gets the broadcast and then its own reply
	host.expect("game:move", nil)
	host.expect("game:move", nil)

	// Then: playing out of turn is answered with an error code
	host.send("game:move", MoveRequest{RoomID: roomID, Row: &row, Col: &col})
	var rejected ErrorPayload
	host.expect("game:move", &rejected)
	assert.Equal(t, "not_your_turn", rejected.Code)
}

func TestServer_Errors(t *testing.T) {
	srv, _ := newTestServer(t)
	c := dial(t, srv)

	t.Run("unknown action", func(t *testing.T) {
		var reply ErrorPayload
		c.send("game:fly", nil)
		c.expect("game:fly", &reply)

		assert.Equal(t, "unknown_action", reply.Code)
	})

	t.Run("missing room id", func(t *testing.T) {
		var reply ErrorPayload
		c.send("room:join", map[string]string{})
		c.expect("room:join", &reply)

		assert.Equal(t, "invalid_payload", reply.Code)
	})

	t.Run("unknown room", func(t *testing.T) {
		var reply ErrorPayload
		c.send("room:join", RoomRequest{RoomID: "missing"})
		c.expect("room:join", &reply)

		assert.Equal(t, "room_not_found", reply.Code)
		assert.Equal(t, "room not found", reply.Error)
	})
}

func TestServer_DisconnectLeavesRoom(t *testing.T) {
	srv, hub := newTestServer(t)
	host := dial(t, srv)
	guest := dial(t, srv)

	// Given: both players share a room
	var opened usecase.RoomState
	host.send("room:open", nil)
	host.expect("room:open", &opened)

	guest.send("room:join", RoomRequest{RoomID: opened.Room.ID})
	guest.expect("room:join", nil)
	host.expect("room:updated", nil)

	// When: the guest's socket closes
	require.NoError(t, guest.conn.Close())

	// Then: the host is told the guest is gone
	var updated usecase.RoomState
	host.expect("room:updated", &updated)
	require.Len(t, updated.Room.Players, 1)
	assert.Equal(t, host.id, updated.Room.Players[0].ConnID)

	assert.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)
}
