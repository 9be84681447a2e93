package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/almanac/internal/greeting"
)

type fakePresence struct {
	mu     sync.Mutex
	joined []string
	moves  []float64
	left   []string
}

func (p *fakePresence) Join(_ context.Context, name string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.joined = append(p.joined, name)
	return "p-" + name, nil
}

func (p *fakePresence) Move(_ context.Context, _ string, _, _, yaw float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.moves = append(p.moves, yaw)
	return nil
}

func (p *fakePresence) Leave(_ context.Context, id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.left = append(p.left, id)
}

func (p *fakePresence) snapshot() (joined []string, moves []float64, left []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.joined...), append([]float64(nil), p.moves...), append([]string(nil), p.left...)
}

func dial(t *testing.T, srv *httptest.Server, name string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?name=" + name
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func TestHubDeliversChat(t *testing.T) {
	presence := &fakePresence{}
	hub := NewHub(presence, nil)
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	conn := dial(t, srv, "ada")
	welcome := readEnvelope(t, conn)
	assert.Equal(t, "welcome", welcome.Type)
	assert.Equal(t, "p-ada", welcome.ID)
	assert.Equal(t, 1, hub.Clients())

	hub.Broadcast("§eGood morning!")
	chat := readEnvelope(t, conn)
	assert.Equal(t, "chat", chat.Type)
	assert.Equal(t, "§eGood morning!", chat.Text)
	assert.Equal(t, "Good morning!", chat.Plain)
}

func TestHubForwardsLookAndLeave(t *testing.T) {
	presence := &fakePresence{}
	hub := NewHub(presence, nil)
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	conn := dial(t, srv, "bo")
	readEnvelope(t, conn)
	require.NoError(t, conn.WriteJSON(Envelope{Type: "look", X: 3, Z: 4, Yaw: 90}))

	assert.Eventually(t, func() bool {
		_, moves, _ := presence.snapshot()
		return len(moves) == 1 && moves[0] == 90
	}, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool {
		_, _, left := presence.snapshot()
		return len(left) == 1 && left[0] == "p-bo"
	}, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHubDropsWhenClientQueueFull(t *testing.T) {
	hub := NewHub(nil, nil)
	c := &client{send: make(chan []byte, 1)}
	hub.add(c)

	hub.Broadcast("one")
	hub.Broadcast("two")
	hub.Broadcast("three")

	assert.Equal(t, uint64(2), hub.Dropped())
	var env Envelope
	require.NoError(t, json.Unmarshal(<-c.send, &env))
	assert.Equal(t, "one", env.Text)

	hub.remove(c)
	hub.remove(c)
	assert.Zero(t, hub.Clients())
}

type fakePublisher struct {
	subject string
	data    []byte
	err     error
}

func (p *fakePublisher) Publish(subject string, data []byte) error {
	p.subject, p.data = subject, data
	return p.err
}

func TestNATSSink(t *testing.T) {
	pub := &fakePublisher{}
	NewNATSSink(pub, "almanac.broadcast", nil).Broadcast("§9It starts to rain.")

	assert.Equal(t, "almanac.broadcast", pub.subject)
	var msg Message
	require.NoError(t, json.Unmarshal(pub.data, &msg))
	assert.Equal(t, "§9It starts to rain.", msg.Text)
	assert.Equal(t, "It starts to rain.", msg.Plain)
	assert.False(t, msg.At.IsZero())
}

func TestNATSSinkSwallowsErrors(t *testing.T) {
	pub := &fakePublisher{err: errors.New("no responders")}
	assert.NotPanics(t, func() {
		NewNATSSink(pub, "x", nil).Broadcast("hi")
	})
}

func TestFanout(t *testing.T) {
	var got []string
	a := greeting.SinkFunc(func(m string) { got = append(got, "a:"+m) })
	b := greeting.SinkFunc(func(m string) { got = append(got, "b:"+m) })

	Fanout{a, b}.Broadcast("hello")
	assert.Equal(t, []string{"a:hello", "b:hello"}, got)
}
