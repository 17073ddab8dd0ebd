package remote

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/nectar/systems"
)

// PolicyServer accepts one external policy runtime over websocket and acts
// as the environment's policy: each Act call pushes the observation and
// blocks until the runtime answers with an action. A second concurrent
// connection is rejected; a dropped connection can be replaced and the next
// Act waits for it.
type PolicyServer struct {
	addr         string
	readTimeout  time.Duration
	writeTimeout time.Duration
	upgrader     websocket.Upgrader
	log          *slog.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	connCh chan *websocket.Conn

	episode int
	step    int
}

// NewPolicyServer creates a server listening on addr once ListenAndServe is
// called.
func NewPolicyServer(addr string, readTimeout, writeTimeout time.Duration, log *slog.Logger) *PolicyServer {
	return &PolicyServer{
		addr:         addr,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log:    log,
		connCh: make(chan *websocket.Conn),
	}
}

// ListenAndServe blocks serving policy connections. Run it in its own
// goroutine before stepping the environment.
func (s *PolicyServer) ListenAndServe() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/policy", s.handle)
	return http.ListenAndServe(s.addr, mux)
}

func (s *PolicyServer) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	if !s.handshake(conn) {
		conn.Close()
		return
	}

	s.mu.Lock()
	busy := s.conn != nil
	s.mu.Unlock()
	if busy {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "policy already connected"),
			time.Now().Add(time.Second))
		conn.Close()
		return
	}

	s.log.Info("policy connected", "remote", conn.RemoteAddr().String())
	// Hand the connection to Act; the handler must not read it afterwards.
	s.connCh <- conn
}

func (s *PolicyServer) handshake(conn *websocket.Conn) bool {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return false
	}

	base, err := DecodeBase(msg)
	if err != nil || base.Type != TypeHello {
		return false
	}
	var hello HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return false
	}
	if hello.ProtocolVersion != Version {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "protocol version mismatch"),
			time.Now().Add(time.Second))
		return false
	}

	welcome := WelcomeMsg{
		Type:            TypeWelcome,
		ProtocolVersion: Version,
		ObsSize:         systems.ObsSize,
		ActSize:         systems.ActionSize,
	}
	_ = conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	return conn.WriteJSON(welcome) == nil
}

// Act implements the environment's policy interface: deliver the observation
// and accumulated reward, wait for the runtime's action. Blocks until a
// policy runtime is connected.
func (s *PolicyServer) Act(obs []float64, reward float64, done bool) (systems.Action, error) {
	conn := s.current()
	if conn == nil {
		s.log.Info("waiting for policy runtime", "addr", s.addr)
		conn = <-s.connCh
		s.setConn(conn)
	}

	msg := ObsMsg{
		Type:    TypeObs,
		Episode: s.episode,
		Step:    s.step,
		Obs:     obs,
		Reward:  reward,
		Done:    done,
	}
	_ = conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		s.drop(conn)
		return systems.Action{}, fmt.Errorf("delivering observation: %w", err)
	}

	if done {
		s.episode++
		s.step = 0
		// The action for a terminal observation is discarded; do not wait
		// for one.
		return systems.Action{}, nil
	}

	var act ActMsg
	_ = conn.SetReadDeadline(time.Now().Add(s.readTimeout))
	if err := conn.ReadJSON(&act); err != nil {
		s.drop(conn)
		return systems.Action{}, fmt.Errorf("reading action: %w", err)
	}
	if act.Type != TypeAct {
		return systems.Action{}, fmt.Errorf("unexpected message type %q, want %q", act.Type, TypeAct)
	}
	if len(act.Action) != systems.ActionSize {
		return systems.Action{}, fmt.Errorf("action length %d, want %d", len(act.Action), systems.ActionSize)
	}

	var out systems.Action
	copy(out[:], act.Action)
	s.step++
	return out, nil
}

func (s *PolicyServer) current() *websocket.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

func (s *PolicyServer) setConn(conn *websocket.Conn) {
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
}

func (s *PolicyServer) drop(conn *websocket.Conn) {
	conn.Close()
	s.mu.Lock()
	if s.conn == conn {
		s.conn = nil
	}
	s.mu.Unlock()
	s.log.Warn("policy disconnected")
}
