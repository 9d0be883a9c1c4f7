// Package reply composes outbound messages and their inline keyboards.
//
// Conversation state lives entirely in button tokens: the "another quote"
// button carries the category that produced the current quote, so the next
// press repeats it without any server-side session.
package reply

import (
	"github.com/m3rciful/motivebot/core/quotes"
)

// Token is the opaque payload of an inline button: a category key, TokenRandom or TokenExit.
type Token string

const (
	// TokenRandom requests an uncategorised quote.
	TokenRandom Token = "random"
	// TokenExit ends the conversation.
	TokenExit Token = "exit"
)

const (
	welcomeText  = "👋 Welcome to the Motivational Bot!\n\nUse /category to choose your motivation type."
	menuText     = "Choose a category:"
	anotherText  = "Would you like another one?"
	farewellText = "Thanks for using the bot! 🌟"

	randomLabel  = "🌟 Random Quote"
	anotherLabel = "✨ Another Quote"
	exitLabel    = "❌ Exit"

	categoriesPerRow = 2
)

// Button is a single inline button.
type Button struct {
	Label string
	Token Token
}

// Reply is an outbound message. Edit marks replies that replace the message
// holding the pressed button instead of sending a new one.
type Reply struct {
	Text     string
	Keyboard [][]Button
	Edit     bool
}

// HasKeyboard reports whether the reply carries any buttons.
func (r Reply) HasKeyboard() bool {
	for _, row := range r.Keyboard {
		if len(row) > 0 {
			return true
		}
	}
	return false
}

// Composer builds replies. It holds only the read-only catalog and is safe for concurrent use.
type Composer struct {
	catalog *quotes.Catalog
}

// NewComposer returns a Composer over cat. A nil catalog selects quotes.DefaultCatalog.
func NewComposer(cat *quotes.Catalog) *Composer {
	if cat == nil {
		cat = quotes.DefaultCatalog()
	}
	return &Composer{catalog: cat}
}

// Welcome is the /start greeting.
func (c *Composer) Welcome() Reply {
	return Reply{Text: welcomeText}
}

// CategoryMenu offers a random quote on the first row and the categories two per row below it.
func (c *Composer) CategoryMenu() Reply {
	keys := c.catalog.Keys()
	rows := make([][]Button, 0, 1+(len(keys)+categoriesPerRow-1)/categoriesPerRow)
	rows = append(rows, []Button{{Label: randomLabel, Token: TokenRandom}})
	for i := 0; i < len(keys); i += categoriesPerRow {
		end := min(i+categoriesPerRow, len(keys))
		row := make([]Button, 0, end-i)
		for _, key := range keys[i:end] {
			row = append(row, Button{Label: c.catalog.Label(key), Token: Token(key)})
		}
		rows = append(rows, row)
	}
	return Reply{Text: menuText, Keyboard: rows}
}

// QuoteReply renders q followed by the "another one" prompt and buttons.
// The caller passes the token that produced q; Continuation decides what
// the "another quote" button carries forward.
func (c *Composer) QuoteReply(q quotes.Quote, from Token, edit bool) Reply {
	return Reply{
		Text: q.String() + "\n\n" + anotherText,
		Keyboard: [][]Button{
			{{Label: anotherLabel, Token: c.Continuation(from)}},
			{{Label: exitLabel, Token: TokenExit}},
		},
		Edit: edit,
	}
}

// Farewell replaces the quote message after the exit button and drops the keyboard.
func (c *Composer) Farewell() Reply {
	return Reply{Text: farewellText, Edit: true}
}

// Continuation returns the category token unchanged and TokenRandom for anything else.
func (c *Composer) Continuation(from Token) Token {
	if c.catalog.IsCategory(string(from)) {
		return from
	}
	return TokenRandom
}
