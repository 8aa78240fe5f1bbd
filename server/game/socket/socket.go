// Package socket handles communication with a player using a websocket connection.
package socket

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/polyfall-game/polyfall/game/message"
	"github.com/polyfall-game/polyfall/game/player"
	"github.com/polyfall-game/polyfall/server/log"
)

type (
	// Socket reads and writes messages to the browsers.
	Socket struct {
		Conn
		PlayerName player.Name
		net.Addr
		active bool
		Config
	}

	// Config contains commonly shared Socket properties.
	Config struct {
		// Debug is a flag that causes the socket to log the types of non-ping/pong messages that are read/written.
		Debug bool
		// Log is used to log errors and other information.
		Log log.Logger
		// ReadWait is the amount of time that can pass between receiving client messages before timing out.
		ReadWait time.Duration
		// WriteWait is the amount of time that the socket can take to write a message.
		WriteWait time.Duration
		// PingPeriod is how often ping messages should be sent.  Should be less than ReadWait.
		PingPeriod time.Duration
		// IdlePeriod is the amount of time that can pass between handling messages that are not pings before the connection is idle and will be disconnected.
		IdlePeriod time.Duration
		// HTTPPingPeriod is the amount of time between sending requests for the connection to send a http ping on a different socket.
		// Some environments shut down after a period of HTTP inactivity has passed.
		HTTPPingPeriod time.Duration
	}

	// Conn is the connection that backs the socket.
	Conn interface {
		// ReadMessage reads the next message from the connection.
		ReadMessage(m *message.Message) error
		// WriteMessage writes the message to the connection.
		WriteMessage(m message.Message) error
		// SetReadDeadline sets how long a read can take before it errors out.
		SetReadDeadline(t time.Time) error
		// SetWriteDeadline sets how long a write can take before it errors out.
		SetWriteDeadline(t time.Time) error
		// SetPongHandler is triggered when the server receives a pong response from a previous ping.
		SetPongHandler(h func(appData string) error)
		// Close closes the connection.
		Close() error
		// WritePing writes a ping message on the connection.
		WritePing() error
		// WriteClose writes a close message on the connection.  The connection is NOT closed.
		WriteClose(reason string) error
		// IsNormalClose determines if the error message is a normal close error.
		IsNormalClose(err error) bool
		// RemoteAddr gets the remote network address of the connection.
		RemoteAddr() net.Addr
	}
)

var errSocketClosed = fmt.Errorf("socket closed")

// NewSocket creates a socket for the player on the connection.
func (cfg Config) NewSocket(pn player.Name, conn Conn) (*Socket, error) {
	if err := cfg.validate(pn, conn); err != nil {
		return nil, fmt.Errorf("creating socket: validation: %w", err)
	}
	a := conn.RemoteAddr()
	s := Socket{
		Conn:       conn,
		PlayerName: pn,
		Addr:       a,
		Config:     cfg,
	}
	return &s, nil
}

// validate ensures the configuration has no errors.
func (cfg Config) validate(pn player.Name, conn Conn) error {
	switch {
	case cfg.Log == nil:
		return fmt.Errorf("log required")
	case len(pn) == 0:
		return fmt.Errorf("player name required")
	case conn == nil:
		return fmt.Errorf("websocket connection required")
	case cfg.ReadWait <= 0:
		return fmt.Errorf("positive read wait period required")
	case cfg.WriteWait <= 0:
		return fmt.Errorf("positive write wait period required")
	case cfg.PingPeriod <= 0:
		return fmt.Errorf("positive ping period required")
	case cfg.IdlePeriod <= 0:
		return fmt.Errorf("positive idle period required")
	case cfg.HTTPPingPeriod <= 0:
		return fmt.Errorf("positive http ping period required")
	case cfg.PingPeriod >= cfg.ReadWait:
		return fmt.Errorf("ping period should be less than read wait")
	}
	return nil
}

// Run writes messages from the connection to the "out" channel and writes
// messages received from the "in" channel to the connection on separate goroutines.
// The Socket runs until the connection fails for an unexpected reason or the context is cancelled.
// When the socket stops, a SocketClose message is sent on the out channel so the runner can unregister it.
func (s *Socket) Run(ctx context.Context, in <-chan message.Message, out chan<- message.Message) {
	pingTicker := time.NewTicker(s.PingPeriod)
	httpPingTicker := time.NewTicker(s.HTTPPingPeriod)
	idleTicker := time.NewTicker(s.IdlePeriod)
	var wg sync.WaitGroup
	wg.Add(2)
	go s.readMessages(ctx, out, &wg)
	go s.writeMessages(ctx, in, &wg, pingTicker, httpPingTicker, idleTicker)
	go func() {
		wg.Wait()
		pingTicker.Stop()
		httpPingTicker.Stop()
		idleTicker.Stop()
		s.Conn.Close()
		m := message.Message{
			Type:       message.SocketClose,
			PlayerName: s.PlayerName,
			Addr:       s.addr(),
		}
		select {
		case <-ctx.Done():
		case out <- m:
		}
	}()
}

// addr is the text form of the remote address of the connection.
func (s *Socket) addr() message.Addr {
	return message.Addr(s.Addr.String())
}

// String identifies the socket by player name and remote address.
func (s *Socket) String() string {
	return fmt.Sprintf("socket for %v at %v", s.PlayerName, s.Addr)
}

// readMessages receives messages from the connection and writes them to the out channel.
// Messages are read until the connection fails or the context is cancelled.
func (s *Socket) readMessages(ctx context.Context, out chan<- message.Message, wg *sync.WaitGroup) {
	defer wg.Done()
	s.Conn.SetReadDeadline(time.Now().Add(s.ReadWait))
	s.Conn.SetPongHandler(func(appData string) error {
		s.active = true
		return s.Conn.SetReadDeadline(time.Now().Add(s.ReadWait))
	})
	for { // BLOCKING
		m, err := s.readMessage()
		select {
		case <-ctx.Done():
			return
		default:
			if err != nil {
				if err != errSocketClosed {
					reason := fmt.Sprintf("reading messages stopped for %v: %v", s, err)
					s.Log.Printf(reason)
					s.Conn.WriteClose(reason)
				}
				return
			}
		}
		out <- *m
		s.active = true
		s.Conn.SetReadDeadline(time.Now().Add(s.ReadWait))
	}
}

// writeMessages sends messages from the in channel to the connection.
// The tickers are used to periodically write messages or check for read activity.
func (s *Socket) writeMessages(ctx context.Context, in <-chan message.Message, wg *sync.WaitGroup,
	pingTicker, httpPingTicker, idleTicker *time.Ticker) {
	s.active = false
	var closeReason string
	defer func() {
		s.Conn.WriteClose(closeReason)
		if len(closeReason) != 0 {
			s.Log.Printf(closeReason)
		}
		wg.Done()
	}()
	var err error
	for { // BLOCKING
		select {
		case <-ctx.Done():
			closeReason = "server shutting down"
			return
		case m, ok := <-in:
			if !ok {
				return
			}
			err = s.writeMessage(m)
		case <-pingTicker.C:
			s.Conn.SetWriteDeadline(time.Now().Add(s.WriteWait))
			err = s.Conn.WritePing()
		case <-httpPingTicker.C:
			err = s.writeMessage(message.Message{
				Type: message.SocketHTTPPing,
			})
		case <-idleTicker.C:
			if !s.active {
				closeReason = fmt.Sprintf("closing %v due to inactivity", s)
				return
			}
			s.active = false
		}
		if err != nil {
			if err != errSocketClosed {
				closeReason = fmt.Sprintf("writing messages stopped for %v: %v", s, err)
			}
			return
		}
	}
}

// readMessage reads the next message from the connection, stamping it with the socket's player name and address.
func (s *Socket) readMessage() (*message.Message, error) {
	var m message.Message
	if err := s.Conn.ReadMessage(&m); err != nil { // BLOCKING
		if !s.Conn.IsNormalClose(err) {
			return nil, fmt.Errorf("unexpected socket closure: %v", err)
		}
		return nil, errSocketClosed
	}
	if s.Debug {
		s.Log.Printf("socket reading message with type %v", m.Type)
	}
	m.PlayerName = s.PlayerName
	m.Addr = s.addr()
	if m.Game == nil {
		return nil, fmt.Errorf("received message not relating to game: %v", m)
	}
	return &m, nil
}

// writeMessage writes a message to the connection.
func (s *Socket) writeMessage(m message.Message) error {
	if s.Debug {
		s.Log.Printf("socket writing message with type %v", m.Type)
	}
	s.Conn.SetWriteDeadline(time.Now().Add(s.WriteWait))
	if err := s.Conn.WriteMessage(m); err != nil {
		return fmt.Errorf("writing socket message: %v", err)
	}
	if m.Type == message.PlayerRemove {
		return fmt.Errorf("player deleted")
	}
	return nil
}
