package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Messages returned instead of a model answer.
const (
	NoDataMessage   = "Start recording trades to get advice!"
	EmptyMessage    = "No analysis available yet."
	FallbackMessage = "Could not get advice right now. Check your connection and try again."
)

// Temperature used for all requests.
const Temperature = 0.7

const systemInstruction = `You are a master of the Verra economy in the Ashes of Creation world.
You help caravan merchants make more gold out of their trade packs.
Amounts are written in gold (з), silver (с) and copper (м): 1з = 100с = 10000м.`

const advicePrompt = `Act as a trading consultant. Here is the merchant's recent activity, oldest first:

%s
Current balance: %s.

Analyze this history and suggest:
1. Which routes are the most profitable.
2. When to trade, based on the timing of the records.
3. A short strategy to increase profits.

Answer in %s, concisely, using markdown.`

const conversationPrompt = `The merchant will ask you questions about their trading.
Here is their recent activity, oldest first:

%s
Current balance: %s.

Use the tools to get statistics about their routes when you need more than this summary.
Answer in %s, concisely, using markdown.`

// Advisor turns ledger snapshots into advice from a Model.
//
// The advice is informational only, nothing it returns is ever written to
// the ledger.
type Advisor struct {
	Model    Model
	Language string // Language of the answers, English if empty.
}

// New creates an Advisor.
func New(m Model, language string) *Advisor {
	return &Advisor{Model: m, Language: language}
}

func (a *Advisor) language() string {
	if a.Language == "" {
		return "English"
	}
	return a.Language
}

// RequestAdvice asks the model for a one-shot analysis of the snapshot.
//
// It never fails: failures are logged and replaced by a fixed message.
func (a *Advisor) RequestAdvice(ctx context.Context, snap Snapshot) string {
	if snap.Empty() {
		return NoDataMessage
	}
	prompt := fmt.Sprintf(advicePrompt, snap.Summary(Window), snap.Balance, a.language())
	text, err := a.Model.Generate(ctx, Request{
		System:      systemInstruction,
		Prompt:      prompt,
		Temperature: Temperature,
	})
	if err != nil {
		logrus.WithError(err).Warn("advice request failed")
		return FallbackMessage
	}
	if strings.TrimSpace(text) == "" {
		return EmptyMessage
	}
	return text
}

// Conversation is a multi-turn exchange about a snapshot.
type Conversation struct {
	chat Chat
	err  error
}

// StartConversation opens a conversation primed with the snapshot.
//
// If the model cannot open a chat the error is logged and every Send answers
// FallbackMessage.
func (a *Advisor) StartConversation(ctx context.Context, snap Snapshot) *Conversation {
	system := systemInstruction + "\n\n" + fmt.Sprintf(conversationPrompt, snap.Summary(Window), snap.Balance, a.language())
	chat, err := a.Model.StartChat(ctx, system, Temperature, Tools(snap))
	if err != nil {
		logrus.WithError(err).Warn("cannot start conversation")
	}
	return &Conversation{chat: chat, err: err}
}

// Send sends a message and returns the answer, or a fixed message on failure.
func (c *Conversation) Send(ctx context.Context, msg string) string {
	if c.err != nil {
		return FallbackMessage
	}
	text, err := c.chat.Send(ctx, msg)
	if err != nil {
		logrus.WithError(err).Warn("conversation message failed")
		return FallbackMessage
	}
	if strings.TrimSpace(text) == "" {
		return EmptyMessage
	}
	return text
}
