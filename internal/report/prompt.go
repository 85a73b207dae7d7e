package report

const instructions = `Please provide:
1. **Estimated Timezone** (based on connection patterns)
2. **Associated Groups/Factions** (based on chat analysis)
3. **Playtime Analysis** (activity level, dedication)
4. **Behavior Patterns** (PvP focus, social activity, etc.)
5. **Player Reputation** (based on chat tone and activity)
6. **Notable Info** (notable events, achievements, chats, messages)
7. **Overall Summary** (comprehensive player profile)

Format the response as a clear, structured report. Keep it concise without dropping key findings.
`

// Context for faction inference only; membership is never checked against it.
var knownGroups = []string{
	"SpawnMasons",
	"Team Veteran",
	"The Imperials",
}
