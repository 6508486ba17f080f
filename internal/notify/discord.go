package notify

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/avogt/scribe/internal/logging"
	"github.com/avogt/scribe/internal/router"
)

// DiscordNotifier posts a short summary of each processed memo to a
// Discord channel. It implements the pipeline hook interface.
type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
}

// NewDiscordNotifier opens a Discord session. Returns an error rather
// than a degraded notifier; callers decide whether to run without one.
func NewDiscordNotifier(token, channelID string) (*DiscordNotifier, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("failed to open discord session: %w", err)
	}
	return &DiscordNotifier{session: session, channelID: channelID}, nil
}

func (n *DiscordNotifier) Name() string { return "discord" }

func (n *DiscordNotifier) Close() error {
	return n.session.Close()
}

// Fire posts the manifest summary. Errors are logged and swallowed;
// notification failure must not affect processing.
func (n *DiscordNotifier) Fire(m *router.Manifest) {
	if _, err := n.session.ChannelMessageSend(n.channelID, FormatManifest(m)); err != nil {
		logging.Warn("notify", "discord send failed: %v", err)
	}
}

// FormatManifest renders a manifest as a compact Discord message.
func FormatManifest(m *router.Manifest) string {
	var b strings.Builder

	if m.Status == router.StatusAlreadyProcessed {
		fmt.Fprintf(&b, "**Memo skipped** — transcript `%s` was already processed.\n", m.TranscriptID)
		return b.String()
	}

	fmt.Fprintf(&b, "**Memo processed** (%s)\n", m.PrimaryCategory)
	if m.Summary != "" {
		b.WriteString(m.Summary + "\n")
	}

	var parts []string
	if n := len(m.JournalIDs); n > 0 {
		parts = append(parts, fmt.Sprintf("%d journal", n))
	}
	if n := len(m.MeetingIDs); n > 0 {
		parts = append(parts, fmt.Sprintf("%d meetings", n))
	}
	if n := len(m.ReflectionIDs); n > 0 {
		parts = append(parts, fmt.Sprintf("%d new reflections", n))
	}
	if n := len(m.AppendedIDs); n > 0 {
		parts = append(parts, fmt.Sprintf("%d reflections extended", n))
	}
	if n := len(m.TaskIDs); n > 0 {
		parts = append(parts, fmt.Sprintf("%d tasks", n))
	}
	if len(parts) > 0 {
		b.WriteString("Created: " + strings.Join(parts, ", ") + "\n")
	}

	for name, info := range m.ContactMatches {
		if len(info.Suggestions) > 0 {
			fmt.Fprintf(&b, "Unmatched name **%s** — did you mean %s?\n",
				name, strings.Join(info.Suggestions, ", "))
		}
	}
	if len(m.CRM.Updated) > 0 {
		fmt.Fprintf(&b, "Contacts updated: %s\n", strings.Join(m.CRM.Updated, ", "))
	}
	if len(m.CRM.NotFound) > 0 {
		fmt.Fprintf(&b, "Contact facts with no matching record: %s\n", strings.Join(m.CRM.NotFound, ", "))
	}
	for _, w := range m.Warnings {
		b.WriteString("warning: " + w + "\n")
	}
	return strings.TrimSpace(b.String())
}
