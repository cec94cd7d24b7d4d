package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
	"golang.org/x/net/websocket"

	"mentorlive/observability"
	"mentorlive/runtime"
	"mentorlive/transport"
)

// Frame is the wire envelope, redeclared here so the suite speaks the
// protocol exactly like a web client would: nothing but JSON over the
// socket.
type Frame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type BaseSignalingSuite struct {
	suite.Suite
	Config Config

	server  *httptest.Server
	cancel  context.CancelFunc
	clients []*Client
}

// SetupSuite loads the environment configuration and, absent an external
// target, boots the full stack in-process.
func (s *BaseSignalingSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)

	if s.Config.ServerURL == "" {
		s.startInProcess()
	}
}

func (s *BaseSignalingSuite) TearDownSuite() {
	if s.server != nil {
		s.server.Close()
	}
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *BaseSignalingSuite) startInProcess() {
	log := slog.Default()
	monitor := observability.NewMonitoringManager(log)
	registry := transport.NewRegistry(log, monitor)
	coordinator := runtime.NewCoordinator(log, registry)
	dispatcher := runtime.NewDispatcher(log, coordinator, 256, monitor)
	server := transport.NewServer(log, registry, dispatcher, 32)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go func() { _ = dispatcher.Run(ctx) }()

	s.server = httptest.NewServer(server.Handler())
	s.Config.ServerURL = s.server.URL
}

// Dial opens a named signaling connection with a colorized header in the
// logs, so multi-client scenarios stay readable.
func (s *BaseSignalingSuite) Dial(name string) *Client {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)

	wsURL := "ws" + strings.TrimPrefix(s.Config.ServerURL, "http") + "/ws"
	conn, err := websocket.Dial(wsURL, "", "http://localhost/")
	s.Require().NoError(err, "Failed to connect to signaling server at "+wsURL)

	client := &Client{
		suite: s,
		name:  name,
		conn:  conn,
		enc:   json.NewEncoder(conn),
		dec:   json.NewDecoder(conn),
	}
	// Cleanup must outlive the s.Run subtest that dialed the client, so
	// connections are tracked on the suite and closed in TearDownTest.
	s.clients = append(s.clients, client)
	return client
}

func (s *BaseSignalingSuite) TearDownTest() {
	for _, c := range s.clients {
		c.Close()
	}
	s.clients = nil
}

// Client is one live signaling connection within a scenario.
type Client struct {
	suite *BaseSignalingSuite
	name  string
	conn  *websocket.Conn
	enc   *json.Encoder
	dec   *json.Decoder

	// SessionID is filled by Hello.
	SessionID string
}

func (c *Client) Close() {
	_ = c.conn.Close()
}

func (c *Client) Send(event string, payload any) {
	raw, err := json.Marshal(payload)
	c.suite.Require().NoError(err)
	if c.suite.Config.DebugJSON {
		c.suite.T().Logf("%s >> %s %s", c.name, event, raw)
	}
	c.suite.Require().NoError(c.enc.Encode(Frame{Event: event, Payload: raw}))
}

// WaitFor reads frames until the wanted event arrives, skipping the
// unrelated traffic the server pushes in between.
func (c *Client) WaitFor(event string) json.RawMessage {
	c.suite.Require().NoError(c.conn.SetReadDeadline(time.Now().Add(3 * time.Second)))
	for {
		var f Frame
		c.suite.Require().NoError(c.dec.Decode(&f),
			"%s: connection died while waiting for %q", c.name, event)
		if c.suite.Config.DebugJSON {
			c.suite.T().Logf("%s << %s %s", c.name, f.Event, f.Payload)
		}
		if f.Event == event {
			return f.Payload
		}
	}
}

// Hello consumes the yourID greeting and remembers the session id.
func (c *Client) Hello() string {
	payload := c.WaitFor("yourID")
	var body struct {
		ID string `json:"id"`
	}
	c.suite.Require().NoError(json.Unmarshal(payload, &body))
	c.suite.Require().NotEmpty(body.ID)
	c.SessionID = body.ID
	return body.ID
}

// WaitForMembers reads consultationUsers frames until the membership has
// the expected size.
func (c *Client) WaitForMembers(count int) map[string]string {
	for {
		payload := c.WaitFor("consultationUsers")
		var body struct {
			Users map[string]string `json:"users"`
		}
		c.suite.Require().NoError(json.Unmarshal(payload, &body))
		if len(body.Users) == count {
			return body.Users
		}
	}
}

// WaitForNotes reads allNotes frames until the list has the expected size.
func (c *Client) WaitForNotes(count int) []json.RawMessage {
	for {
		payload := c.WaitFor("allNotes")
		var body struct {
			Notes []json.RawMessage `json:"notes"`
		}
		c.suite.Require().NoError(json.Unmarshal(payload, &body))
		if len(body.Notes) == count {
			return body.Notes
		}
	}
}
