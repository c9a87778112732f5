package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/voxline/voxline/internal/call"
	"github.com/voxline/voxline/internal/llm"
	"github.com/voxline/voxline/internal/logging"
	"github.com/voxline/voxline/internal/tools"
)

// chunkSize is the slice length fed into the sentence segmenter, so speech
// can start before the whole reply has been processed.
const chunkSize = 50

// Deps are the collaborators the driver calls into.
type Deps struct {
	Control  CallControl
	Notifier Notifier
	Contacts ContactSource
	Emit     EmitFunc
	Log      *logging.Logger
}

// Driver is the concrete completion driver.
type Driver struct {
	cfg      Config
	client   llm.Client
	control  CallControl
	notifier Notifier
	contacts ContactSource
	emit     EmitFunc
	log      *logging.Logger

	cc           *call.Context
	partialIndex int
	seg          sentenceSegmenter
}

// NewDriver wires a driver around the given model client.
func NewDriver(cfg Config, client llm.Client, deps Deps) *Driver {
	return &Driver{
		cfg:      cfg,
		client:   client,
		control:  deps.Control,
		notifier: deps.Notifier,
		contacts: deps.Contacts,
		emit:     deps.Emit,
		log:      deps.Log.Sub("agent." + client.Name()),
	}
}

// SetCallContext attaches a call context and seeds the opening exchange.
func (d *Driver) SetCallContext(cc *call.Context) {
	d.cc = cc
	cc.SeedConversation()
	d.log = d.log.WithCall(cc.CallSID)
}

// Reset clears streaming state so the driver can serve a fresh call.
func (d *Driver) Reset() {
	d.partialIndex = 0
	d.seg.Reset()
}

// Respond processes one conversational turn. Model failures are logged and
// swallowed: the turn ends without speech rather than tearing down the call.
func (d *Driver) Respond(ctx context.Context, text string, interactionCount int, role, name string) error {
	if d.cc == nil {
		return fmt.Errorf("no call context attached")
	}

	d.cc.AppendTurn(role, text, name)

	resp, err := d.client.Complete(ctx, llm.CompletionRequest{
		System:      BuildSystemPrompt(d.cc.SystemMessage, tools.Definitions()),
		Messages:    historyMessages(d.cc.Turns),
		MaxTokens:   d.cfg.MaxTokens,
		Temperature: d.cfg.Temperature,
	})
	if err != nil {
		d.log.Error().Err(err).Int("interaction", interactionCount).Msg("model completion failed")
		return nil
	}

	replyText := resp.Content
	d.log.Debug().Int("interaction", interactionCount).Int("len", len(replyText)).Msg("model reply received")

	if d.handleToolCalls(ctx, replyText, interactionCount) {
		return nil
	}

	for i := 0; i < len(replyText); i += chunkSize {
		end := i + chunkSize
		if end > len(replyText) {
			end = len(replyText)
		}
		d.emitCompleteSentences(replyText[i:end], interactionCount)
	}
	if tail := d.seg.Flush(); tail != "" {
		d.emitIndexed(tail, interactionCount)
	}

	d.cc.AppendTurn(call.RoleAssistant, replyText, "")
	return nil
}

// emitCompleteSentences feeds one chunk through the segmenter and emits each
// completed sentence with the next partial-response index.
func (d *Driver) emitCompleteSentences(text string, interactionCount int) {
	for _, sentence := range d.seg.Feed(text) {
		d.emitIndexed(sentence, interactionCount)
	}
}

func (d *Driver) emitIndexed(text string, interactionCount int) {
	idx := d.partialIndex
	d.partialIndex++
	d.emit(Reply{Index: &idx, Text: text}, interactionCount)
}

// say emits an out-of-band line with no partial-response index.
func (d *Driver) say(text string, interactionCount int) {
	d.emit(Reply{Text: text}, interactionCount)
}

func (d *Driver) closingLine() string {
	if d.cfg.ClosingLine != "" {
		return d.cfg.ClosingLine
	}
	return defaultClosing
}

// pause sleeps for the given duration unless the context is canceled first.
func (d *Driver) pause(ctx context.Context, dur time.Duration) {
	if dur <= 0 {
		return
	}
	t := time.NewTimer(dur)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// historyMessages renders conversation turns as model messages.
func historyMessages(turns []call.Turn) []llm.Message {
	msgs := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		msgs = append(msgs, llm.Message{Role: t.Role, Content: t.Content, Name: t.Name})
	}
	return msgs
}
