package domain

import (
	"errors"
	"time"
)

// ErrNoContent is returned by upstream lookups answered with 204.
var ErrNoContent = errors.New("no content")

type PlayerStats struct {
	JoinCount            int
	LeaveCount           int
	DeathCount           int
	KillCount            int
	ChatCount            int
	PlaytimeSeconds      int64
	PlaytimeSecondsMonth int64
	FirstSeen            time.Time
	LastSeen             time.Time
	Prio                 bool
}

type ChatRecord struct {
	PlayerName string
	UUID       string
	Time       time.Time
	Message    string
}

type ConnectionKind string

const (
	ConnectionJoin  ConnectionKind = "JOIN"
	ConnectionLeave ConnectionKind = "LEAVE"
)

type ConnectionRecord struct {
	Time time.Time
	Kind ConnectionKind
}

// Presence is a status flag that may not have been resolved from any source.
type Presence int

const (
	PresenceUnknown Presence = iota
	PresenceYes
	PresenceNo
)

func (p Presence) String() string {
	switch p {
	case PresenceYes:
		return "Yes"
	case PresenceNo:
		return "No"
	default:
		return "Unknown"
	}
}

// PlayerSnapshot is built fresh per analysis request and never persisted.
// Stats is nil when the stats source has no record for the player.
type PlayerSnapshot struct {
	PlayerName  string
	Stats       *PlayerStats
	Chats       []ChatRecord
	Connections []ConnectionRecord

	// No upstream signal feeds these yet; they stay PresenceUnknown.
	Online       Presence
	PriorityNow  Presence
	SuspectedBot Presence
}

type AnalysisOutcome string

const (
	OutcomeReport  AnalysisOutcome = "report"
	OutcomeFailure AnalysisOutcome = "failure"
)

// Analysis is the audit entry kept for each analyze request. It holds lookup
// metadata only, never fetched player data.
type Analysis struct {
	ID              string
	PlayerName      string
	Outcome         AnalysisOutcome
	HasStats        bool
	ChatCount       int
	ConnectionCount int
	CreatedAt       time.Time
}
