// Package server runs the http server that lets users open websockets to play the game.
package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"sync"

	"github.com/polyfall-game/polyfall/db/user"
	"github.com/polyfall-game/polyfall/server/log"
)

type (
	// Server runs the site and the lobby.
	Server struct {
		wg          sync.WaitGroup
		log         log.Logger
		lobby       Lobby
		HTTPServer  *http.Server
		HTTPSServer *http.Server
		Config
	}

	// Tokenizer creates and reads tokens from http traffic.
	Tokenizer interface {
		Create(username string, points int) (string, error)
		ReadUsername(tokenString string) (string, error)
	}

	// UserDao contains the user storage operations the server needs.
	UserDao interface {
		Create(ctx context.Context, u user.User) error
		Read(ctx context.Context, u user.User) (*user.User, error)
		UpdatePassword(ctx context.Context, u user.User, newPassword string) error
		Delete(ctx context.Context, u user.User) error
	}

	// Lobby is the place users connect to to play games.
	Lobby interface {
		Run(ctx context.Context, wg *sync.WaitGroup)
		AddUser(username string, w http.ResponseWriter, r *http.Request) error
		RemoveUser(username string)
	}
)

// Run starts the HTTP and HTTPS servers.
// When the servers stop, their errors are sent on the returned channel.
func (s *Server) Run(ctx context.Context) <-chan error {
	errC := make(chan error, 2)
	s.runHTTPServer(ctx, errC)
	s.runHTTPSServer(ctx, errC)
	return errC
}

// runHTTPServer runs the http server asynchronously, adding the return error to the channel when done.
// The server is only run if the HTTP address is valid.
func (s *Server) runHTTPServer(ctx context.Context, errC chan<- error) {
	if !s.validHTTPAddr() {
		return
	}
	go func() {
		errC <- s.HTTPServer.ListenAndServe()
	}()
}

// runHTTPSServer runs the https server and the lobby asynchronously, adding the return error to the channel when done.
// The TLS certificate is only loaded when the server also redirects plain http traffic.
func (s *Server) runHTTPSServer(ctx context.Context, errC chan<- error) {
	ctx, cancelFunc := context.WithCancel(ctx)
	s.lobby.Run(ctx, &s.wg)
	s.HTTPSServer.RegisterOnShutdown(cancelFunc)
	s.log.Printf("starting server at https://127.0.0.1%v", s.HTTPSServer.Addr)
	go func() {
		switch {
		case s.validHTTPAddr():
			cert, err := tls.X509KeyPair([]byte(s.TLSCertPEM), []byte(s.TLSKeyPEM))
			if err != nil {
				errC <- fmt.Errorf("loading tls certificate: %v", err)
				return
			}
			s.HTTPSServer.TLSConfig = &tls.Config{
				Certificates: []tls.Certificate{cert},
			}
			errC <- s.HTTPSServer.ListenAndServeTLS("", "")
		default:
			if len(s.TLSCertPEM) != 0 || len(s.TLSKeyPEM) != 0 {
				s.log.Printf("ignoring TLS certificate since no http port was specified, assuming TLS is terminated upstream")
			}
			errC <- s.HTTPSServer.ListenAndServe()
		}
	}()
}

// Stop asks the servers to shut down and waits for the lobby to finish.
// An error is returned if the shutdown does not complete before the stop duration elapses.
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancelFunc := context.WithTimeout(ctx, s.StopDur)
	defer cancelFunc()
	httpsShutdownErr := s.HTTPSServer.Shutdown(ctx)
	httpShutdownErr := s.HTTPServer.Shutdown(ctx)
	switch {
	case httpsShutdownErr != nil:
		return httpsShutdownErr
	case httpShutdownErr != nil:
		return httpShutdownErr
	}
	s.wg.Wait()
	return nil
}
