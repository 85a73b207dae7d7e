package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twobai/playerreport/internal/domain"
)

var base = time.Date(2024, 6, 2, 22, 15, 0, 0, time.UTC)

func newComposer() *Composer {
	return NewComposerWithOptions(Options{ChatLimit: 50, ConnectionLimit: 10, GroupReference: true})
}

func chats(n int) []domain.ChatRecord {
	out := make([]domain.ChatRecord, n)
	for i := range out {
		out[i] = domain.ChatRecord{
			PlayerName: "Steve",
			UUID:       "u-1",
			Time:       base.Add(-time.Duration(i) * time.Hour),
			Message:    "msg",
		}
	}
	return out
}

func connections(n int) []domain.ConnectionRecord {
	out := make([]domain.ConnectionRecord, n)
	for i := range out {
		kind := domain.ConnectionLeave
		if i%2 == 1 {
			kind = domain.ConnectionJoin
		}
		out[i] = domain.ConnectionRecord{Time: base.Add(-time.Duration(i) * time.Minute), Kind: kind}
	}
	return out
}

func sectionByPrefix(t *testing.T, sections []Section, prefix string) Section {
	t.Helper()
	for _, s := range sections {
		if strings.HasPrefix(s.Heading, prefix) {
			return s
		}
	}
	require.Failf(t, "section not found", "prefix %q", prefix)
	return Section{}
}

func TestStatsSection_Absent(t *testing.T) {
	s := statsSection(nil)
	assert.Equal(t, []string{FallbackStats}, s.Lines)
}

func TestStatsSection_Formats(t *testing.T) {
	s := statsSection(&domain.PlayerStats{
		JoinCount:            12345,
		LeaveCount:           12340,
		DeathCount:           7,
		KillCount:            1002,
		ChatCount:            99999,
		PlaytimeSeconds:      3600*1500 + 3599,
		PlaytimeSecondsMonth: 3599,
		FirstSeen:            time.Date(2019, 1, 2, 23, 30, 0, 0, time.FixedZone("X", -5*3600)),
		LastSeen:             base,
		Prio:                 true,
	})

	assert.Equal(t, []string{
		"- First Seen: 2019-01-03",
		"- Last Seen: 2024-06-02",
		"- Total Joins: 12,345",
		"- Total Leaves: 12,340",
		"- Deaths: 7",
		"- Kills: 1,002",
		"- Total Playtime: 1,500 hours",
		"- Monthly Playtime: 0 hours",
		"- Chat Messages: 99,999",
		"- Priority Queue: Yes",
	}, s.Lines)
}

func TestStatusSection_UnknownDefaults(t *testing.T) {
	s := statusSection(&domain.PlayerSnapshot{})

	require.Len(t, s.Lines, 4)
	assert.Equal(t, "- Online Now: Unknown", s.Lines[0])
	assert.Equal(t, "- Priority Status: Unknown", s.Lines[1])
	assert.Equal(t, "- Suspected Bot: Unknown", s.Lines[2])
	assert.Contains(t, s.Lines[3], "no live data source")
}

func TestStatusSection_Resolved(t *testing.T) {
	s := statusSection(&domain.PlayerSnapshot{
		Online:       domain.PresenceYes,
		PriorityNow:  domain.PresenceNo,
		SuspectedBot: domain.PresenceNo,
	})

	assert.Equal(t, []string{
		"- Online Now: Yes",
		"- Priority Status: No",
		"- Suspected Bot: No",
	}, s.Lines)
}

func TestChatSection_Empty(t *testing.T) {
	s := chatSection(nil, 50)
	assert.Equal(t, "RECENT CHAT MESSAGES", s.Heading)
	assert.Equal(t, []string{FallbackChats}, s.Lines)
}

func TestChatSection_Truncates(t *testing.T) {
	s := chatSection(chats(240), 50)

	assert.Equal(t, "RECENT CHAT MESSAGES (showing 50 of 240)", s.Heading)
	require.Len(t, s.Lines, 50)
	assert.Equal(t, "[2024-06-02] msg", s.Lines[0])
}

func TestChatSection_FlattensNewlines(t *testing.T) {
	s := chatSection([]domain.ChatRecord{{Time: base, Message: "line one\nline two\r\nthree"}}, 5)
	assert.Equal(t, []string{"[2024-06-02] line one line two three"}, s.Lines)
}

func TestConnectionSection_Empty(t *testing.T) {
	s := connectionSection(nil, 10)
	assert.Equal(t, []string{FallbackConnections}, s.Lines)
}

func TestConnectionSection_CapsAtLimit(t *testing.T) {
	s := connectionSection(connections(200), 10)

	assert.Equal(t, "RECENT CONNECTIONS (showing 10 of 200)", s.Heading)
	require.Len(t, s.Lines, 10)
	assert.Equal(t, "[2024-06-02 22:15:00 UTC] LEAVE", s.Lines[0])
	assert.Equal(t, "[2024-06-02 22:14:00 UTC] JOIN", s.Lines[1])
}

func TestConnectionSection_ExactlyTen(t *testing.T) {
	s := connectionSection(connections(10), 10)
	assert.Len(t, s.Lines, 10)
	assert.Equal(t, "RECENT CONNECTIONS (showing 10 of 10)", s.Heading)
}

func TestSections_GroupReferenceToggle(t *testing.T) {
	snap := &domain.PlayerSnapshot{}

	with := NewComposerWithOptions(Options{ChatLimit: 10, ConnectionLimit: 10, GroupReference: true}).Sections(snap)
	without := NewComposerWithOptions(Options{ChatLimit: 10, ConnectionLimit: 10}).Sections(snap)

	assert.Len(t, with, 5)
	assert.Len(t, without, 4)
	groups := sectionByPrefix(t, with, "KNOWN 2B2T GROUPS")
	assert.Equal(t, "SpawnMasons, Team Veteran, The Imperials", groups.Lines[0])
}

func TestCompose_NoDataPlayer(t *testing.T) {
	doc := newComposer().Compose(&domain.PlayerSnapshot{PlayerName: "Notch"})

	assert.False(t, doc.Failed)
	assert.Contains(t, doc.Text, `player "Notch"`)
	assert.Contains(t, doc.Text, "**PLAYER STATISTICS:**\nNo statistics available\n")
	assert.Contains(t, doc.Text, "**RECENT CHAT MESSAGES:**\nNo recent chat messages found\n")
	assert.Contains(t, doc.Text, "**RECENT CONNECTIONS:**\nNo recent connection data found\n")
	assert.Contains(t, doc.Text, "- Online Now: Unknown")
}

func TestCompose_NameFromSnapshot(t *testing.T) {
	doc := newComposer().Compose(&domain.PlayerSnapshot{PlayerName: "popbob"})
	assert.True(t, strings.HasPrefix(doc.Text, `Please analyze and provide a comprehensive summary report for the 2b2t Minecraft server player "popbob"`))
}

func TestCompose_InstructionFooter(t *testing.T) {
	doc := newComposer().Compose(&domain.PlayerSnapshot{PlayerName: "Steve"})

	for _, dim := range []string{
		"Estimated Timezone",
		"Associated Groups/Factions",
		"Playtime Analysis",
		"Behavior Patterns",
		"Player Reputation",
		"Notable Info",
		"Overall Summary",
	} {
		assert.Contains(t, doc.Text, dim)
	}
	assert.True(t, strings.HasSuffix(doc.Text, instructions))
}

func TestCompose_Deterministic(t *testing.T) {
	snap := &domain.PlayerSnapshot{
		PlayerName:  "Steve",
		Stats:       &domain.PlayerStats{JoinCount: 3, FirstSeen: base, LastSeen: base},
		Chats:       chats(75),
		Connections: connections(30),
	}
	c := newComposer()

	first := c.Compose(snap)
	second := c.Compose(snap)

	assert.Equal(t, first.Text, second.Text)
}

func TestCompose_SectionOrder(t *testing.T) {
	doc := newComposer().Compose(&domain.PlayerSnapshot{PlayerName: "Steve", Chats: chats(1), Connections: connections(1)})

	order := []string{"**PLAYER STATISTICS:**", "**CURRENT STATUS:**", "**RECENT CHAT MESSAGES", "**RECENT CONNECTIONS", "**KNOWN 2B2T GROUPS", "Please provide:"}
	last := -1
	for _, marker := range order {
		idx := strings.Index(doc.Text, marker)
		require.Greater(t, idx, last, marker)
		last = idx
	}
}

func TestApology(t *testing.T) {
	doc := newComposer().Apology("Steve")

	assert.True(t, doc.Failed)
	assert.Equal(t, `I apologize, but I couldn't fetch data for player "Steve". The player might not exist or the API might be temporarily unavailable.`, doc.Text)
}

func TestTruncate_NonPositiveLimitKeepsAll(t *testing.T) {
	assert.Len(t, truncate(chats(12), 0), 12)
	assert.Len(t, truncate(chats(12), 5), 5)
	assert.Len(t, truncate(chats(3), 5), 3)
}
