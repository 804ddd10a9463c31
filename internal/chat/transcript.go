package chat

import "github.com/soyeahso/valet/internal/openai"

// Transcript is the append-only ordered log of conversation turns for a
// single session. Insertion order is conversation order.
type Transcript struct {
	msgs []openai.Message
}

// NewTranscript creates a transcript seeded with the given messages.
func NewTranscript(msgs []openai.Message) *Transcript {
	t := &Transcript{}
	t.msgs = append(t.msgs, msgs...)
	return t
}

// Append adds messages to the end of the transcript.
func (t *Transcript) Append(msgs ...openai.Message) {
	t.msgs = append(t.msgs, msgs...)
}

// Messages returns a copy of the transcript in conversation order.
func (t *Transcript) Messages() []openai.Message {
	out := make([]openai.Message, len(t.msgs))
	copy(out, t.msgs)
	return out
}

// Len returns the number of messages in the transcript.
func (t *Transcript) Len() int {
	return len(t.msgs)
}
