package model

import "time"

// HistoryAction classifies a history log entry
type HistoryAction string

const (
	ActionScoreUp       HistoryAction = "score_up"
	ActionScoreDown     HistoryAction = "score_down"
	ActionPlayerAdded   HistoryAction = "player_added"
	ActionPlayerRemoved HistoryAction = "player_removed"
	ActionLeaderChange  HistoryAction = "leader_change"
	ActionScoresReset   HistoryAction = "scores_reset"
	ActionBoardCleared  HistoryAction = "board_cleared"
)

// HistoryEntry is one notable event in a room's history log.
// Entries are ephemeral: they live in the session store, not in the
// primary database.
type HistoryEntry struct {
	ID         string        `json:"id"`
	PlayerID   PlayerID      `json:"player_id"`
	PlayerName string        `json:"player_name"`
	Action     HistoryAction `json:"action"`
	Amount     int           `json:"amount,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
}
