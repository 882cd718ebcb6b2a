package main

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/nickyhof/CommitQuery"
	"github.com/nickyhof/CommitQuery/core"
	"github.com/nickyhof/CommitQuery/db"
)

// Server is a TCP SQL server that exposes a CommitQuery instance.
type Server struct {
	listener   net.Listener
	instance   *CommitQuery.Instance
	identity   core.Identity
	authConfig *AuthConfig
	tlsEnabled bool
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
	wg         sync.WaitGroup

	// Workers bounds concurrent driver calls per client connection.
	Workers int
}

// NewServer creates a new SQL server journaling under identity.
func NewServer(instance *CommitQuery.Instance, identity core.Identity) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		instance: instance,
		identity: identity,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// NewServerWithAuth creates a server that requires AUTH before any
// statement. Executions are journaled under the authenticated identity.
func NewServerWithAuth(instance *CommitQuery.Instance, authConfig *AuthConfig) *Server {
	var identity core.Identity
	if instance.Journal != nil {
		identity = instance.Journal.Identity()
	}
	server := NewServer(instance, identity)
	server.authConfig = authConfig
	return server
}

// Start begins listening for connections on the specified address.
func (s *Server) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	s.listener = listener

	log.Printf("SQL Server listening on %s", listener.Addr())

	go s.acceptLoop()
	return nil
}

// StartTLS begins listening for TLS connections on the specified address.
func (s *Server) StartTLS(addr, certFile, keyFile string) error {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return fmt.Errorf("failed to load TLS certificate: %w", err)
	}

	listener, err := tls.Listen("tcp", addr, &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	})
	if err != nil {
		return fmt.Errorf("failed to start TLS server: %w", err)
	}
	s.listener = listener
	s.tlsEnabled = true

	log.Printf("SQL Server listening on %s (TLS)", listener.Addr())

	go s.acceptLoop()
	return nil
}

// TLSEnabled returns true if the server was started with StartTLS.
func (s *Server) TLSEnabled() bool {
	return s.tlsEnabled
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	close(s.done)
	s.cancel()
	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	return nil
}

// Addr returns the server's listening address.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) authRequired() bool {
	return s.authConfig != nil && s.authConfig.Enabled
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				log.Printf("Accept error: %v", err)
				continue
			}
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

// session is the per-connection execution state. Each client gets its own
// coordinator so notifications are delivered on its connection goroutine.
type session struct {
	server      *Server
	conn        net.Conn
	coordinator *db.Coordinator
	query       *db.Query
	writeErr    error

	identity      core.Identity
	authenticated bool
	expires       time.Time // zero when the token carries no expiry
}

func (s *Server) newSession(conn net.Conn, identity core.Identity) *session {
	sess := &session{server: s, conn: conn}
	sess.identify(identity)
	return sess
}

// identify journals following executions under identity.
func (sess *session) identify(identity core.Identity) {
	sess.identity = identity
	options := db.CoordinatorOptions{Workers: sess.server.Workers}
	if journal := sess.server.instance.Journal; journal != nil {
		options.Recorders = append(options.Recorders, journal.As(identity))
	}
	sess.coordinator = db.NewCoordinator(options)
	sess.query = db.NewQuery(sess.server.instance.Connection, sess.coordinator)
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	log.Printf("Client connected: %s", conn.RemoteAddr())

	sess := s.newSession(conn, s.identity)
	reader := bufio.NewReader(conn)

	for {
		select {
		case <-s.done:
			return
		default:
		}

		// Read until newline (one request per line)
		line, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				log.Printf("Read error from %s: %v", conn.RemoteAddr(), err)
			}
			return
		}

		query := strings.TrimSpace(line)
		if query == "" {
			continue
		}

		if strings.EqualFold(query, "quit") || strings.EqualFold(query, "exit") {
			log.Printf("Client disconnected: %s", conn.RemoteAddr())
			return
		}

		if strings.HasPrefix(strings.ToUpper(query), "AUTH ") {
			if !sess.respond(sess.handleAuth(query)) {
				return
			}
			continue
		}

		if response, ok := sess.authorize(time.Now()); !ok {
			if !sess.respond(response) {
				return
			}
			continue
		}

		req, err := DecodeRequest(query)
		if err != nil {
			if !sess.respond(Response{Success: false, Error: fmt.Sprintf("invalid request: %v", err)}) {
				return
			}
			continue
		}

		if req.Stream {
			sess.stream(s.ctx, req)
		} else {
			sess.respond(sess.run(s.ctx, req))
		}
		if sess.writeErr != nil {
			log.Printf("Write error to %s: %v", conn.RemoteAddr(), sess.writeErr)
			return
		}
	}
}

func (sess *session) write(data []byte) {
	if sess.writeErr != nil {
		return
	}
	_, sess.writeErr = sess.conn.Write(data)
}

func (sess *session) respond(response Response) bool {
	data, err := EncodeResponse(response)
	if err != nil {
		log.Printf("Failed to encode response: %v", err)
		return true
	}
	sess.write(data)
	return sess.writeErr == nil
}

func (sess *session) emit(event Event) {
	data, err := EncodeEvent(event)
	if err != nil {
		log.Printf("Failed to encode event: %v", err)
		return
	}
	sess.write(data)
}

// run executes req synchronously and answers with one Response.
func (sess *session) run(ctx context.Context, req Request) Response {
	result, err := sess.query.Reset().Run(ctx, req.Query, req.Values)
	if err != nil {
		return Response{Success: false, Error: err.Error()}
	}
	return resultResponse(result)
}

// stream executes req through the session coordinator and writes one Event
// per notification, ending with the finish event.
func (sess *session) stream(ctx context.Context, req Request) {
	query := db.NewQuery(sess.server.instance.Connection, sess.coordinator)
	query.On(db.ListenerFuncs{
		Start: func(sql string) {
			sess.emit(Event{Event: "start", SQL: sql})
		},
		Row: func(row db.Row, index int, last bool) {
			sess.emit(Event{Event: "row", Index: index, Last: last, Row: rowOf(row)})
		},
		Success: func(rows []db.Row, columns []core.Column) {
			sess.emit(Event{Event: "success", Rows: len(rows), Columns: columnsOf(columns)})
		},
		Error: func(err error) {
			sess.emit(Event{Event: "error", Error: err.Error()})
		},
		Finish: func() {
			sess.emit(Event{Event: "finish"})
		},
	})

	if err := query.Execute(ctx, req.Query, req.Values); err != nil {
		sess.respond(Response{Success: false, Error: err.Error()})
		return
	}
	if err := sess.coordinator.Wait(ctx); err != nil {
		sess.respond(Response{Success: false, Error: err.Error()})
	}
}
