// README: Notifiers deliver cues without blocking the caller.
package notify

import (
	"context"
	"log/slog"
	"sync"
)

// Notifier announces a cue. Implementations must return promptly; delivery
// failures are logged, never returned.
type Notifier interface {
	Say(ctx context.Context, text string)
}

type LogNotifier struct {
	logger *slog.Logger
	role   string
}

// NewLogNotifier tags every cue with role (passenger, driver).
func NewLogNotifier(logger *slog.Logger, role string) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger, role: role}
}

func (n *LogNotifier) Say(ctx context.Context, text string) {
	if text == "" {
		return
	}
	n.logger.InfoContext(ctx, "cue", "role", n.role, "text", text)
}

// DefaultRecorderLimit is how many cues a Recorder retains.
const DefaultRecorderLimit = 256

// Recorder keeps the most recent cues in a ring; it backs tests and the HTTP
// cue feed. Cues are numbered from zero for the life of the recorder, so a
// reader resuming from an evicted index skips to the oldest retained cue.
type Recorder struct {
	mu    sync.Mutex
	ring  []string
	total int
}

func NewRecorder() *Recorder {
	return NewRecorderWithLimit(DefaultRecorderLimit)
}

// NewRecorderWithLimit retains at most limit cues; limit below one means one.
func NewRecorderWithLimit(limit int) *Recorder {
	if limit < 1 {
		limit = 1
	}
	return &Recorder{ring: make([]string, limit)}
}

func (r *Recorder) Say(_ context.Context, text string) {
	if text == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ring[r.total%len(r.ring)] = text
	r.total++
}

// Said returns the retained cues, oldest first.
func (r *Recorder) Said() []string {
	cues, _ := r.Since(0)
	return cues
}

// Since returns the retained cues numbered from since on, and the number the
// next cue will get.
func (r *Recorder) Since(since int) ([]string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if oldest := r.total - len(r.ring); since < oldest {
		since = oldest
	}
	if since < 0 {
		since = 0
	}
	if since > r.total {
		since = r.total
	}
	out := make([]string, 0, r.total-since)
	for i := since; i < r.total; i++ {
		out = append(out, r.ring[i%len(r.ring)])
	}
	return out, r.total
}

// Last returns the most recent cue, or "".
func (r *Recorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.total == 0 {
		return ""
	}
	return r.ring[(r.total-1)%len(r.ring)]
}

// Multi fans a cue out to every notifier in order.
type Multi []Notifier

func (m Multi) Say(ctx context.Context, text string) {
	for _, n := range m {
		if n != nil {
			n.Say(ctx, text)
		}
	}
}

// Nop discards cues.
type Nop struct{}

func (Nop) Say(context.Context, string) {}
