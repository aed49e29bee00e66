package helpers

import (
	"sync/atomic"

	tele "gopkg.in/telebot.v4"
)

const countersKey = "citybot.replies"

// ReplyCounters tracks what a handler sent for a single update. Sends are
// counted when queued, so asynchronous replies show up in the handler summary.
type ReplyCounters struct {
	messages atomic.Int64
	keyboard atomic.Bool
}

// Messages returns the number of replies queued for the update.
func (r *ReplyCounters) Messages() int { return int(r.messages.Load()) }

// Keyboard reports whether any reply carried a reply keyboard.
func (r *ReplyCounters) Keyboard() bool { return r.keyboard.Load() }

// AttachCounters installs fresh counters on c and returns them.
func AttachCounters(c tele.Context) *ReplyCounters {
	rc := &ReplyCounters{}
	c.Set(countersKey, rc)
	return rc
}

// Counters returns the counters installed on c, or nil.
func Counters(c tele.Context) *ReplyCounters {
	if c == nil {
		return nil
	}
	rc, _ := c.Get(countersKey).(*ReplyCounters)
	return rc
}

func countReply(c tele.Context, opts *tele.SendOptions) {
	rc := Counters(c)
	if rc == nil {
		return
	}
	rc.messages.Add(1)
	if opts != nil && opts.ReplyMarkup != nil {
		rc.keyboard.Store(true)
	}
}
