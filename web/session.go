package web

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"chathub/auth"
	"chathub/domain"
	"chathub/domain/event"
	"chathub/services"
	"chathub/sink"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// SessionState tracks the connection lifecycle.
type SessionState int32

const (
	StateConnecting SessionState = iota
	StateAuthenticated
	StateActive
	StateClosed
)

// Session binds one websocket connection to a verified identity and to
// the engine. Lifecycle: Connecting until the credential token is
// verified, Authenticated while presence is registered, Active for the
// whole read loop, Closed exactly once on the way out.
//
// The session owns its connection handle; the presence tracker and the
// room registry only ever see its id.
type Session struct {
	id        string
	identity  domain.Identity
	conn      *websocket.Conn
	sink      *sink.SessionSink
	chat      services.IChatService
	log       *slog.Logger
	state     SessionState
	stateMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
	createdAt time.Time
}

func NewSession(log *slog.Logger, chat services.IChatService,
	conn *websocket.Conn, bufferSize int) *Session {
	return &Session{
		id:        uuid.NewString(),
		conn:      conn,
		sink:      sink.NewSessionSink(bufferSize),
		chat:      chat,
		log:       log,
		state:     StateConnecting,
		done:      make(chan struct{}),
		createdAt: time.Now().UTC(),
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) State() SessionState {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}

func (s *Session) setState(state SessionState) {
	s.stateMu.Lock()
	s.state = state
	s.stateMu.Unlock()
}

// Run drives the session to completion and blocks until the transport
// closes. A rejected token is terminal: the connection is closed before
// any presence or room state exists.
func (s *Session) Run(token string) {
	identity, err := auth.Verify(token)
	if err != nil {
		s.log.Warn("Authentication rejected, closing connection", "session_id", s.id, "error", err)
		deadline := time.Now().Add(writeWait)
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "authentication rejected"),
			deadline)
		_ = s.conn.Close()
		s.setState(StateClosed)
		return
	}

	s.identity = identity
	s.setState(StateAuthenticated)
	s.chat.ConnectSession(s.id, identity, s.sink)
	s.setState(StateActive)
	s.log.Info("Session active", "session_id", s.id, "user_id", identity.ID)

	go s.writePump()
	s.readLoop()
	s.Close()
}

// readLoop processes inbound frames until the peer goes away.
func (s *Session) readLoop() {
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warn("Session read error", "session_id", s.id, "error", err)
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			s.log.Debug("Ignoring malformed frame", "session_id", s.id, "error", err)
			continue
		}
		s.handle(frame)
	}
}

func (s *Session) handle(frame Frame) {
	switch frame.Type {
	case frameJoinChannel:
		if frame.ChannelID == "" {
			return
		}
		s.chat.JoinChannel(frame.ChannelID, s.id)
		s.log.Debug(fmt.Sprintf("Session %s joined channel %s", s.id, frame.ChannelID))
	case frameLeaveChannel:
		s.chat.LeaveChannel(frame.ChannelID, s.id)
	case frameSendMessage:
		// Sender identity comes from the session binding, never the frame.
		s.chat.PostMessage(domain.PostMessageCommand{
			ChannelID:  frame.ChannelID,
			SenderID:   s.identity.ID,
			SenderName: s.identity.Username,
			Text:       frame.Text,
		})
	default:
		s.log.Debug("Ignoring unknown frame type", "session_id", s.id, "type", frame.Type)
	}
}

// writePump is the sole writer of the connection. It drains the
// session's sink, translates events to wire frames, and keeps the
// connection alive with pings.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case evt := <-s.sink.Events:
			if err := s.write(evt); err != nil {
				s.log.Debug("Session write failed", "session_id", s.id, "error", err)
				s.Close()
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.Close()
				return
			}
		}
	}
}

func (s *Session) write(evt event.DomainEvent) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	switch e := evt.(type) {
	case event.MessageStored:
		return s.conn.WriteJSON(toNewMessageFrame(e))
	case event.PresenceChanged:
		return s.conn.WriteJSON(toPresenceUpdateFrame(e))
	default:
		return nil
	}
}

// Close enters the terminal state exactly once: room subscriptions are
// dropped first, then presence is deregistered (possibly broadcasting
// an offline roster update), then the transport is closed.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.setState(StateClosed)
		if s.identity.ID != "" {
			s.chat.DisconnectSession(s.id, s.identity.ID)
		}
		close(s.done)
		_ = s.conn.Close()
		s.log.Info("Session closed", "session_id", s.id, "user_id", s.identity.ID)
	})
}
