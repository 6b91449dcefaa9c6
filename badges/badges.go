package badges

import (
	"sync"
	"time"

	"contest-platform/events"
	"contest-platform/logging"

	"cosmossdk.io/math"
)

// EventSink receives emitted records.
type EventSink interface {
	Emit(events.Event)
}

// Badge is one achievement a creator can earn. Badges are awarded once and
// never revoked, even if later contests are cancelled.
type Badge struct {
	Code      string    `json:"code"`
	Title     string    `json:"title"`
	Threshold int       `json:"threshold"`
	AwardedAt time.Time `json:"awarded_at"`
}

// CreatorStats are the lifetime counters behind badge awards. PrizeVolume
// accumulates the total prize committed per asset across all created
// contests; cancellations do not subtract from it.
type CreatorStats struct {
	Creator           string              `json:"creator"`
	ContestsCreated   int                 `json:"contests_created"`
	ContestsCancelled int                 `json:"contests_cancelled"`
	PrizeVolume       map[string]math.Int `json:"prize_volume"`
}

type tier struct {
	code      string
	title     string
	threshold int
}

// Award tiers by lifetime contests created.
var tiers = []tier{
	{code: "first_contest", title: "First Contest", threshold: 1},
	{code: "contest_regular", title: "Contest Regular", threshold: 5},
	{code: "contest_veteran", title: "Contest Veteran", threshold: 25},
}

// Tracker keeps per-creator stats and hands out badges as thresholds are
// crossed.
type Tracker struct {
	mu    sync.Mutex
	sink  EventSink
	now   func() time.Time
	stats map[string]*CreatorStats
	held  map[string][]Badge
}

func NewTracker(sink EventSink, now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		sink:  sink,
		now:   now,
		stats: make(map[string]*CreatorStats),
		held:  make(map[string][]Badge),
	}
}

// RecordContestCreated bumps the creation counter, books the prize volume
// under its asset and awards any tier the creator just reached.
func (t *Tracker) RecordContestCreated(creator, asset string, prize math.Int) {
	t.mu.Lock()
	stats := t.statsLocked(creator)
	stats.ContestsCreated++
	if !prize.IsNil() && prize.IsPositive() {
		current, ok := stats.PrizeVolume[asset]
		if !ok {
			current = math.ZeroInt()
		}
		stats.PrizeVolume[asset] = current.Add(prize)
	}
	count := stats.ContestsCreated

	var awarded []Badge
	for _, tr := range tiers {
		if count != tr.threshold {
			continue
		}
		if t.hasLocked(creator, tr.code) {
			continue
		}
		badge := Badge{Code: tr.code, Title: tr.title, Threshold: tr.threshold, AwardedAt: t.now()}
		t.held[creator] = append(t.held[creator], badge)
		awarded = append(awarded, badge)
	}
	t.mu.Unlock()

	for _, badge := range awarded {
		logging.Info("Badge awarded", logging.Badges, "creator", creator, "code", badge.Code)
		t.sink.Emit(events.BadgeAwarded{Creator: creator, Code: badge.Code})
	}
}

// RecordContestCancelled bumps the cancellation counter. Earned badges stay.
func (t *Tracker) RecordContestCancelled(creator string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.statsLocked(creator).ContestsCancelled++
}

func (t *Tracker) statsLocked(creator string) *CreatorStats {
	stats, ok := t.stats[creator]
	if !ok {
		stats = &CreatorStats{Creator: creator, PrizeVolume: make(map[string]math.Int)}
		t.stats[creator] = stats
	}
	return stats
}

func (t *Tracker) hasLocked(creator, code string) bool {
	for _, badge := range t.held[creator] {
		if badge.Code == code {
			return true
		}
	}
	return false
}

// Stats returns a copy of the creator's counters.
func (t *Tracker) Stats(creator string) CreatorStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	stats, ok := t.stats[creator]
	if !ok {
		return CreatorStats{Creator: creator, PrizeVolume: make(map[string]math.Int)}
	}
	out := *stats
	out.PrizeVolume = make(map[string]math.Int, len(stats.PrizeVolume))
	for asset, amount := range stats.PrizeVolume {
		out.PrizeVolume[asset] = amount
	}
	return out
}

// Badges returns the badges a creator holds, in award order.
func (t *Tracker) Badges(creator string) []Badge {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Badge, len(t.held[creator]))
	copy(out, t.held[creator])
	return out
}
