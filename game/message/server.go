package message

import (
	"math/rand"
	"net/http"

	"github.com/polyfall-game/polyfall/game/player"
	"github.com/polyfall-game/polyfall/server/log"
)

// Socket is used by the server lobby to ask the socket runner to change sockets.
// The Result channel receives a SocketError message if the request fails,
// otherwise a message identifying the address of the new socket.
type Socket struct {
	Type       Type
	PlayerName player.Name
	Result     chan<- Message
	http.ResponseWriter
	*http.Request
}

// sendDebugID labels the log lines around a send so deadlocks can be identified.
var sendDebugID = rand.Int

// Send is a utility function for sending messages on out.
// When debugging, it prints a message before and after the message is sent to help identify deadlocks.
func Send(m Message, out chan<- Message, debug bool, log log.Logger) {
	if debug {
		id := sendDebugID()
		log.Printf("[id: %v] sending message: %v", id, m)
		defer log.Printf("[id: %v] message sent", id)
	}
	out <- m
}
