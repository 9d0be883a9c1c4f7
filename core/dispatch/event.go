package dispatch

import (
	"strings"

	"github.com/m3rciful/motivebot/core/reply"
)

// Kind tags the variant held by an Event.
type Kind int

const (
	// KindCommand is a slash command such as /start.
	KindCommand Kind = iota + 1
	// KindFreeText is any non-command text message.
	KindFreeText
	// KindButton is an inline button press.
	KindButton
)

func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindFreeText:
		return "text"
	case KindButton:
		return "button"
	}
	return "unknown"
}

// Event is one inbound interaction. Only the field matching Kind is meaningful.
type Event struct {
	Kind Kind
	// ID identifies the interaction for acknowledgement (callback query id for buttons).
	ID     string
	ChatID int64

	Command string
	Text    string
	Token   reply.Token
}

// CommandEvent builds a command event. Leading slash, @botname suffix and arguments are stripped.
func CommandEvent(chatID int64, raw string) Event {
	return Event{Kind: KindCommand, ChatID: chatID, Command: CommandName(raw)}
}

// TextEvent builds a free-text event.
func TextEvent(chatID int64, body string) Event {
	return Event{Kind: KindFreeText, ChatID: chatID, Text: body}
}

// ButtonEvent builds a button press event.
func ButtonEvent(id string, chatID int64, token reply.Token) Event {
	return Event{Kind: KindButton, ID: id, ChatID: chatID, Token: token}
}

// CommandName normalizes "/Start@MyBot arg" to "start".
func CommandName(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	name := strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	return strings.ToLower(name)
}
