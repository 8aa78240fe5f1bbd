package game

// Status is the state of the game.
type Status int

const (
	_ Status = iota
	// NotStarted is the status of a game that is waiting for players to join before tiles are dealt.
	NotStarted
	// InProgress is the status of a game that has been started but is not finished.
	InProgress
	// Finished is the status of a game that has a winner.
	Finished
	// Deleted is the status of a game that is being removed from the server.
	Deleted
)

// String returns the display value for the status.
func (s Status) String() string {
	switch s {
	case NotStarted:
		return "Not Started"
	case InProgress:
		return "In Progress"
	case Finished:
		return "Finished"
	case Deleted:
		return "Deleted"
	}
	return "?"
}
