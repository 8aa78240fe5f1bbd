// Package message contains structures to pass between the ui and server.
package message

import (
	"github.com/polyfall-game/polyfall/game"
	"github.com/polyfall-game/polyfall/game/board"
	"github.com/polyfall-game/polyfall/game/player"
	"github.com/polyfall-game/polyfall/game/tile"
)

type (
	// Type represents what the purpose of a message is.
	Type int

	// Message contains information to or from a socket for a game/lobby.
	Message struct {
		// Type is the purpose of the message.
		Type Type `json:"type"`
		// Info is a message to show to the player.
		Info string `json:"info,omitempty"`
		// Game is the info for the current game the player is in.
		Game *game.Info `json:"game,omitempty"`
		// Games contains the information about all the available games.
		Games []game.Info `json:"games,omitempty"`
		// Board is the state of the player's board when the game refreshes it.
		Board *board.Board `json:"board,omitempty"`
		// Tiles are the loose tiles the player can still place, keyed by id.
		Tiles map[int]*tile.Tile `json:"tiles,omitempty"`
		// TileID identifies the tile a placement or transform request targets.
		TileID int `json:"tileId,omitempty"`
		// Hook is the board position a tile placement request targets.
		Hook *tile.Position `json:"hook,omitempty"`
		// PlayerName is the name of the player the message is to/from.
		PlayerName player.Name `json:"-"`
		// Addr is the socket remote address text the message is from.
		Addr Addr `json:"-"`
	}

	// Addr identifies the source of a message.
	Addr string
)

const (
	_ Type = iota
	// CreateGame is a MessageType that users send to open a new game.
	CreateGame
	// JoinGame is a MessageType that users send to join a game or the server sends to have the user load a game.
	JoinGame
	// LeaveGame is a MessageType that users and servers send to indicate that a user can no longer be in the current game.
	LeaveGame
	// DeleteGame is a MessageType that users send to remove a game from the server.
	DeleteGame
	// GameChat is a MessageType that users send to communicate with other players through the server.
	GameChat
	// RefreshGameBoard is a MessageType that the server sends with the state of a player's board and loose tiles.
	RefreshGameBoard
	// ChangeGameStatus is a MessageType that users and servers send to request or inform of a game status change.
	ChangeGameStatus
	// PlaceTile is a MessageType that users send to position a loose tile at a hook on their board.
	PlaceTile
	// MoveTileUp is a MessageType that users send to shift a placed tile one row up.
	MoveTileUp
	// MoveTileDown is a MessageType that users send to shift a placed tile one row down.
	MoveTileDown
	// MoveTileLeft is a MessageType that users send to shift a placed tile one column left.
	MoveTileLeft
	// MoveTileRight is a MessageType that users send to shift a placed tile one column right.
	MoveTileRight
	// RotateTileRight is a MessageType that users send to rotate a tile a quarter turn clockwise.
	RotateTileRight
	// RotateTileLeft is a MessageType that users send to rotate a tile a quarter turn counterclockwise.
	RotateTileLeft
	// MirrorTileVertically is a MessageType that users send to flip a tile about its horizontal midline.
	MirrorTileVertically
	// MirrorTileHorizontally is a MessageType that users send to flip a tile about its vertical midline.
	MirrorTileHorizontally
	// AttachTile is a MessageType that users send to lock a tile onto their board at its current hook.
	AttachTile
	// GameInfos is a MessageType that the server sends to report changes in the games in a lobby.
	GameInfos
	// SocketWarning is a MessageType that servers send to inform users that a request is invalid.
	SocketWarning
	// SocketError is a MessageType that servers send to users to report an unexpected state.
	SocketError
	// SocketHTTPPing is a MessageType the server sends to the user to request a http request to the site to keep it active.  Some environments shut down after a period of HTTP inactivity has passed.
	SocketHTTPPing
	// SocketAdd is used to add a socket for a player.
	SocketAdd
	// SocketClose is sent when the socket is closed
	SocketClose
	// PlayerRemove is a MessageType that gets sent from the lobby to inform that all sockets should be removed.
	PlayerRemove // keep last for tests
)
