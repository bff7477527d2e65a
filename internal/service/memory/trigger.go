package memory

import (
	"time"

	"github.com/sandevgo/recall/internal/config"
	"github.com/sandevgo/recall/internal/core"
)

// Trigger decides when accumulated raw history warrants compression into a
// summary.
type Trigger struct {
	cfg *config.SummaryConfig
}

func NewTrigger(cfg *config.SummaryConfig) *Trigger {
	return &Trigger{cfg: cfg}
}

// ShouldSummarize reports whether the unsummarized span should be
// compressed now: enough messages, enough characters, or a stale last
// summary. It never fires on an empty span, no matter how old the last
// summary is.
func (t *Trigger) ShouldSummarize(unsummarized []core.Message, last *core.Summary, now time.Time) bool {
	if len(unsummarized) == 0 {
		return false
	}

	if len(unsummarized) >= t.cfg.MaxMessages {
		return true
	}

	chars := 0
	for _, m := range unsummarized {
		chars += len(m.Content)
	}
	if chars >= t.cfg.MaxChars {
		return true
	}

	if last != nil && now.Sub(last.CreatedAt) >= t.cfg.MaxAge {
		return true
	}
	return false
}
