package model

// BoardActionKind classifies a board mutation event
type BoardActionKind string

const (
	BoardPlayerAdded   BoardActionKind = "player_added"
	BoardScoreChanged  BoardActionKind = "score_changed"
	BoardPlayerRemoved BoardActionKind = "player_removed"
	BoardScoresReset   BoardActionKind = "scores_reset"
	BoardCleared       BoardActionKind = "board_cleared"
)

// BoardAction describes one successful board mutation. Actions fan out
// through the room's watch hub so every connected viewer pairs the
// mutation with its history entry and sound cue.
type BoardAction struct {
	Kind       BoardActionKind
	PlayerID   PlayerID
	PlayerName string
	// Amount is the signed delta of a score change; zero otherwise
	Amount int
}
