package reconcile

import (
	"log"
	"sync"
	"time"

	"github.com/minjae-ko/chatmarks/internal/annotations"
	"github.com/minjae-ko/chatmarks/internal/config"
	"github.com/minjae-ko/chatmarks/internal/highlight"
)

// Trigger names the chat event that made rendered indicators stale.
type Trigger string

const (
	TriggerChatChanged  Trigger = "chat_changed"
	TriggerMessageAdded Trigger = "message_added"
	TriggerChatLoaded   Trigger = "chat_loaded"
	// TriggerManual fires right away, used after direct edits through
	// the API.
	TriggerManual Trigger = "manual"
)

// IndicatorUpdate carries everything a client needs to redraw one
// message: whether to show the bookmark ribbon, its color, and the
// message HTML with highlight wrappers applied.
type IndicatorUpdate struct {
	MessageID   int    `json:"messageId"`
	ShowRibbon  bool   `json:"showRibbon"`
	RibbonColor string `json:"ribbonColor,omitempty"`
	HasNote     bool   `json:"hasNote"`
	HTML        string `json:"html"`
}

// Driver debounces chat events and recomputes indicator state for the
// active chat. Rapid events coalesce into a single resync; a later
// trigger resets the pending timer with its own delay.
type Driver struct {
	store     *annotations.Store
	session   annotations.ChatContext
	projector *highlight.Projector
	delays    config.ReconcileConfig

	onSync func([]IndicatorUpdate)

	mu    sync.Mutex
	timer *time.Timer
}

// NewDriver creates a Driver. onSync, if non-nil, receives the result
// of every resync, including empty ones so clients can clear stale
// indicators.
func NewDriver(store *annotations.Store, session annotations.ChatContext, delays config.ReconcileConfig, onSync func([]IndicatorUpdate)) *Driver {
	return &Driver{
		store:     store,
		session:   session,
		projector: highlight.NewProjector(),
		delays:    delays,
		onSync:    onSync,
	}
}

func (d *Driver) delayFor(trigger Trigger) time.Duration {
	var ms int
	switch trigger {
	case TriggerChatChanged:
		ms = d.delays.ChatChangedDelayMS
	case TriggerMessageAdded:
		ms = d.delays.MessageAddedDelayMS
	case TriggerChatLoaded:
		ms = d.delays.ChatLoadedDelayMS
	}
	return time.Duration(ms) * time.Millisecond
}

// Schedule queues a resync after the trigger's delay. A pending resync
// is replaced, not stacked.
func (d *Driver) Schedule(trigger Trigger) {
	delay := d.delayFor(trigger)
	if delay <= 0 {
		d.Resync()
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(delay, func() { d.Resync() })
}

// Resync recomputes indicator state for every annotated message in the
// active chat and hands the result to onSync.
func (d *Driver) Resync() []IndicatorUpdate {
	updates := []IndicatorUpdate{}
	for _, b := range d.store.ListChat(d.session.ChatID()) {
		_, text, ok := d.session.Message(b.MessageID)
		if !ok {
			// Annotated message no longer rendered, nothing to update.
			continue
		}
		rendered, err := d.projector.Project(text, b.Highlights)
		if err != nil {
			log.Printf("reconcile: projecting message %d: %v", b.MessageID, err)
			continue
		}
		update := IndicatorUpdate{
			MessageID:  b.MessageID,
			ShowRibbon: !b.IsHighlightOnly,
			HasNote:    b.Note != "",
			HTML:       rendered,
		}
		if b.Color != nil {
			update.RibbonColor = *b.Color
		}
		updates = append(updates, update)
	}

	if d.onSync != nil {
		d.onSync(updates)
	}
	return updates
}

// Close cancels any pending resync.
func (d *Driver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
