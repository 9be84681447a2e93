package broadcast

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/talgya/almanac/internal/greeting"
	"github.com/talgya/almanac/internal/metrics"
)

// Publisher is the part of a NATS connection the sink uses.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Message is the JSON body published for each greeting.
type Message struct {
	Text  string    `json:"text"`
	Plain string    `json:"plain"`
	At    time.Time `json:"at"`
}

// NATSSink publishes greetings to a subject. Publishing is buffered by the
// client library, so Broadcast does not wait on the server.
type NATSSink struct {
	pub     Publisher
	subject string
	metrics *metrics.Metrics
}

// NewNATSSink creates a sink publishing to subject.
func NewNATSSink(pub Publisher, subject string, m *metrics.Metrics) *NATSSink {
	return &NATSSink{pub: pub, subject: subject, metrics: m}
}

// Broadcast publishes msg.
func (s *NATSSink) Broadcast(msg string) {
	data, err := json.Marshal(Message{Text: msg, Plain: greeting.StripFormatting(msg), At: time.Now().UTC()})
	if err != nil {
		slog.Error("encode nats message", "error", err)
		return
	}
	if err := s.pub.Publish(s.subject, data); err != nil {
		s.metrics.Dropped("nats")
		slog.Warn("nats publish failed", "subject", s.subject, "error", err)
	}
}

// ConnectNATS dials url with reconnects enabled.
func ConnectNATS(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("almanac"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.Timeout(5*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			slog.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			slog.Error("nats error", "error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return nc, nil
}
