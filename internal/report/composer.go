// Package report renders a player snapshot into the prompt document handed to
// the text-generation model.
//
// Rendering is a pure function of its input: no clock reads, no locale, all
// timestamps in UTC. The same snapshot always yields the same text.
package report

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/twobai/playerreport/internal/config"
	"github.com/twobai/playerreport/internal/domain"
)

const (
	FallbackStats       = "No statistics available"
	FallbackChats       = "No recent chat messages found"
	FallbackConnections = "No recent connection data found"

	chatDateLayout       = "2006-01-02"
	connectionTimeLayout = "2006-01-02 15:04:05 UTC"
)

// Document is the text consumed by the text-generation call. Failed marks the
// apology variant produced when aggregation did not complete.
type Document struct {
	Text   string
	Failed bool
}

type Section struct {
	Heading string
	Lines   []string
}

type Options struct {
	ChatLimit       int
	ConnectionLimit int
	GroupReference  bool
}

type Composer struct {
	opts Options
}

func NewComposer(cfg *config.Config) *Composer {
	return NewComposerWithOptions(Options{
		ChatLimit:       cfg.ReportChatLimit,
		ConnectionLimit: cfg.ReportConnectionLimit,
		GroupReference:  cfg.ReportGroupReference,
	})
}

func NewComposerWithOptions(opts Options) *Composer {
	return &Composer{opts: opts}
}

// Compose renders the full analysis prompt for a joined snapshot.
func (c *Composer) Compose(snap *domain.PlayerSnapshot) Document {
	var b strings.Builder

	fmt.Fprintf(&b, "Please analyze and provide a comprehensive summary report for the 2b2t Minecraft server player %q based on the following data:\n", snap.PlayerName)
	for _, s := range c.Sections(snap) {
		b.WriteString("\n")
		s.render(&b)
	}
	b.WriteString("\n")
	b.WriteString(instructions)

	return Document{Text: b.String()}
}

// Apology is the document substituted for the whole report when the player
// data could not be gathered.
func (c *Composer) Apology(playerName string) Document {
	return Document{
		Text: fmt.Sprintf("I apologize, but I couldn't fetch data for player %q. "+
			"The player might not exist or the API might be temporarily unavailable.", playerName),
		Failed: true,
	}
}

func (c *Composer) Sections(snap *domain.PlayerSnapshot) []Section {
	sections := []Section{
		statsSection(snap.Stats),
		statusSection(snap),
		chatSection(snap.Chats, c.opts.ChatLimit),
		connectionSection(snap.Connections, c.opts.ConnectionLimit),
	}
	if c.opts.GroupReference {
		sections = append(sections, groupSection())
	}
	return sections
}

func (s Section) render(b *strings.Builder) {
	b.WriteString("**")
	b.WriteString(s.Heading)
	b.WriteString(":**\n")
	for _, line := range s.Lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
}

func statsSection(stats *domain.PlayerStats) Section {
	s := Section{Heading: "PLAYER STATISTICS"}
	if stats == nil {
		s.Lines = []string{FallbackStats}
		return s
	}

	s.Lines = []string{
		"- First Seen: " + stats.FirstSeen.UTC().Format(chatDateLayout),
		"- Last Seen: " + stats.LastSeen.UTC().Format(chatDateLayout),
		"- Total Joins: " + humanize.Comma(int64(stats.JoinCount)),
		"- Total Leaves: " + humanize.Comma(int64(stats.LeaveCount)),
		"- Deaths: " + humanize.Comma(int64(stats.DeathCount)),
		"- Kills: " + humanize.Comma(int64(stats.KillCount)),
		"- Total Playtime: " + hours(stats.PlaytimeSeconds),
		"- Monthly Playtime: " + hours(stats.PlaytimeSecondsMonth),
		"- Chat Messages: " + humanize.Comma(int64(stats.ChatCount)),
		"- Priority Queue: " + yesNo(stats.Prio),
	}
	return s
}

func statusSection(snap *domain.PlayerSnapshot) Section {
	s := Section{
		Heading: "CURRENT STATUS",
		Lines: []string{
			"- Online Now: " + snap.Online.String(),
			"- Priority Status: " + snap.PriorityNow.String(),
			"- Suspected Bot: " + snap.SuspectedBot.String(),
		},
	}
	for _, p := range []domain.Presence{snap.Online, snap.PriorityNow, snap.SuspectedBot} {
		if p == domain.PresenceUnknown {
			s.Lines = append(s.Lines, "(Unknown means no live data source exists for this flag; do not read it as Yes or No.)")
			break
		}
	}
	return s
}

func chatSection(chats []domain.ChatRecord, limit int) Section {
	shown := truncate(chats, limit)
	s := Section{Heading: fmt.Sprintf("RECENT CHAT MESSAGES (showing %d of %d)", len(shown), len(chats))}
	if len(shown) == 0 {
		s.Heading = "RECENT CHAT MESSAGES"
		s.Lines = []string{FallbackChats}
		return s
	}

	s.Lines = make([]string, 0, len(shown))
	for _, ch := range shown {
		s.Lines = append(s.Lines, fmt.Sprintf("[%s] %s", ch.Time.UTC().Format(chatDateLayout), singleLine(ch.Message)))
	}
	return s
}

func connectionSection(conns []domain.ConnectionRecord, limit int) Section {
	shown := truncate(conns, limit)
	s := Section{Heading: fmt.Sprintf("RECENT CONNECTIONS (showing %d of %d)", len(shown), len(conns))}
	if len(shown) == 0 {
		s.Heading = "RECENT CONNECTIONS"
		s.Lines = []string{FallbackConnections}
		return s
	}

	s.Lines = make([]string, 0, len(shown))
	for _, conn := range shown {
		s.Lines = append(s.Lines, fmt.Sprintf("[%s] %s", conn.Time.UTC().Format(connectionTimeLayout), conn.Kind))
	}
	return s
}

func groupSection() Section {
	s := Section{Heading: "KNOWN 2B2T GROUPS (reference vocabulary only, not verified membership)"}
	s.Lines = []string{strings.Join(knownGroups, ", ")}
	return s
}

// truncate keeps the first limit records; inputs are already newest first.
// A non-positive limit keeps everything.
func truncate[T any](records []T, limit int) []T {
	if limit > 0 && len(records) > limit {
		return records[:limit]
	}
	return records
}

func hours(seconds int64) string {
	return humanize.Comma(seconds/3600) + " hours"
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func singleLine(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}
