// Package main starts the server after configuring it from supplied or standard arguments
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/polyfall-game/polyfall/server"
	"github.com/polyfall-game/polyfall/server/log"

	stdlog "log"

	_ "github.com/lib/pq" // register "postgres" database driver from package init() function
)

// main configures and runs the server.
func main() {
	ctx := context.Background()
	logFlags := stdlog.Ldate | stdlog.Ltime | stdlog.LUTC | stdlog.Lshortfile | stdlog.Lmsgprefix
	log := stdlog.New(os.Stdout, "", logFlags)
	e, err := newEmbedParameters(embedVersion, embeddedTilePoolJSON, embeddedStaticFS, embeddedSQLFS)
	if err != nil {
		log.Fatalf("reading embedded files: %v", err)
	}
	m := newMainFlags(os.Args, os.LookupEnv)
	ud, err := m.createUserDao(ctx, log, *e)
	if err != nil {
		log.Fatalf("setting up user database: %v", err)
	}
	server, err := m.createServer(ctx, log, ud, *e)
	if err != nil {
		log.Fatalf("creating server: %v", err)
	}
	if err := runServer(ctx, server, log); err != nil {
		log.Fatalf("running server: %v", err)
	}
	log.Printf("server run stopped successfully")
}

// runServer runs the server until it is interrupted or terminated.
func runServer(ctx context.Context, server *server.Server, log log.Logger) error {
	done := make(chan os.Signal, 2)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)
	errC := server.Run(ctx)
	select { // BLOCKING
	case err := <-errC:
		switch {
		case err == http.ErrServerClosed:
			log.Printf("server shutdown triggered")
		default:
			log.Printf("server stopped unexpectedly: %v", err)
		}
	case signal := <-done:
		log.Printf("handled signal: %v", signal)
	}
	if err := server.Stop(ctx); err != nil {
		return fmt.Errorf("stopping server: %v", err)
	}
	return nil
}
