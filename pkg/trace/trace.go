// Package trace records the ordered decision log of one pipeline run.
// Each request gets its own Recorder; nothing is shared across requests.
package trace

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Message is one progress entry, ordered by Seq.
type Message struct {
	Seq  int       `json:"seq"`
	At   time.Time `json:"at"`
	Text string    `json:"text"`
}

// Recorder appends human-readable progress messages describing each pipeline
// decision. Messages are mirrored to the structured logger at debug level.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
	logger   *zap.Logger
}

// NewRecorder creates a Recorder mirroring to logger. A nil logger disables
// mirroring.
func NewRecorder(logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{logger: logger.Named("trace")}
}

// Recordf appends a formatted progress message.
func (r *Recorder) Recordf(format string, args ...any) {
	r.record(fmt.Sprintf(format, args...))
}

// Record appends a progress message.
func (r *Recorder) Record(text string) {
	r.record(text)
}

func (r *Recorder) record(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg := Message{Seq: len(r.messages), At: time.Now(), Text: text}
	r.messages = append(r.messages, msg)
	r.logger.Debug(text, zap.Int("seq", msg.Seq))
}

// Messages returns a copy of all recorded messages in order.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Texts returns just the message texts in order, for the response payload.
func (r *Recorder) Texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.messages))
	for i, m := range r.messages {
		out[i] = m.Text
	}
	return out
}
