// Package transcript accumulates incrementally-arriving speech recognition
// results into an ordered, timestamped transcript while a session is live.
// Everything here is in-memory; the session-end transition persists the
// accumulated entries.
package transcript

import (
	"fmt"
	"strings"
	"time"

	"github.com/coachforge/coachforge-backend/internal/models"
)

// ResultEvent is one recognition result from a capture source. Non-final
// results render in-progress speech and are never persisted.
type ResultEvent struct {
	IsFinal bool
	Text    string
	Speaker string // "coach" or "client"; defaults to coach
}

// Buffer builds the ordered transcript for one live session.
type Buffer struct {
	startedAt time.Time
	now       func() time.Time

	entries        []models.TranscriptEntry
	interim        string
	wordCount      int
	flaggedMoments []string
}

// NewBuffer creates a buffer anchored at the session start time.
func NewBuffer(startedAt time.Time) *Buffer {
	return &Buffer{
		startedAt: startedAt,
		now:       time.Now,
	}
}

// HandleResult applies one recognition result. A final result with non-empty
// trimmed text commits a new entry labeled with the current elapsed time and
// clears the interim display; a non-final result only replaces the interim
// display value.
func (b *Buffer) HandleResult(ev ResultEvent) {
	if !ev.IsFinal {
		b.interim = ev.Text
		return
	}

	b.interim = ""
	text := strings.TrimSpace(ev.Text)
	if text == "" {
		return
	}

	speaker := ev.Speaker
	if speaker == "" {
		speaker = "coach"
	}

	b.entries = append(b.entries, models.TranscriptEntry{
		Timestamp: b.elapsedLabel(),
		Speaker:   speaker,
		Text:      text,
	})
	b.wordCount += len(strings.Fields(text))
}

// FlagLastEntry marks the most recently committed entry and records a
// flagged-moment marker at the current elapsed time. No-op on an empty
// transcript.
func (b *Buffer) FlagLastEntry() {
	if len(b.entries) == 0 {
		return
	}
	b.entries[len(b.entries)-1].Flagged = true
	b.flaggedMoments = append(b.flaggedMoments, b.elapsedLabel())
}

// Interim returns the current in-progress display text.
func (b *Buffer) Interim() string {
	return b.interim
}

// WordCount returns the running count of committed words.
func (b *Buffer) WordCount() int {
	return b.wordCount
}

// Entries returns a copy of the committed transcript.
func (b *Buffer) Entries() models.TranscriptEntries {
	out := make(models.TranscriptEntries, len(b.entries))
	copy(out, b.entries)
	return out
}

// FlaggedMoments returns the elapsed-time labels of flagged moments.
func (b *Buffer) FlaggedMoments() []string {
	out := make([]string, len(b.flaggedMoments))
	copy(out, b.flaggedMoments)
	return out
}

// Text returns the newline-joined flattened transcript.
func (b *Buffer) Text() string {
	return b.Entries().Text()
}

func (b *Buffer) elapsedLabel() string {
	elapsed := int(b.now().Sub(b.startedAt).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}
	h := elapsed / 3600
	m := (elapsed % 3600) / 60
	s := elapsed % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
