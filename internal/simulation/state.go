package simulation

import (
	"time"

	"options-wheel-lab/internal/domain"
)

// scheduledTrade is one journal entry in the run's private schedule.
// The sequence id guarantees each entry is applied exactly once even when
// synthetic assignment trades share a date with journal trades.
type scheduledTrade struct {
	seq   int
	trade *domain.Trade
}

// state is the scratch portfolio state threaded through the day loop.
// It exists only for the duration of one Engine.Run and is never shared
// across runs.
type state struct {
	cash        float64
	positions   map[string]*domain.Position
	openOptions []*scheduledTrade
	processed   map[int]struct{}
	schedule    []*scheduledTrade
	nextSeq     int
	cumulative  float64 // running sum of applied cash flows, in date order
}

func newState(trades []*domain.Trade) *state {
	s := &state{
		positions: make(map[string]*domain.Position),
		processed: make(map[int]struct{}),
		schedule:  make([]*scheduledTrade, 0, len(trades)),
	}
	for _, t := range trades {
		s.push(t)
	}
	return s
}

// push appends a trade to the schedule under a fresh sequence id.
func (s *state) push(t *domain.Trade) {
	s.schedule = append(s.schedule, &scheduledTrade{seq: s.nextSeq, trade: t})
	s.nextSeq++
}

// position returns the symbol's position, creating it on first use.
func (s *state) position(symbol string) *domain.Position {
	p, ok := s.positions[symbol]
	if !ok {
		p = &domain.Position{}
		s.positions[symbol] = p
	}
	return p
}

// due returns the not-yet-processed schedule entries dated exactly day.
func (s *state) due(day time.Time) []*scheduledTrade {
	var out []*scheduledTrade
	for _, st := range s.schedule {
		if _, done := s.processed[st.seq]; done {
			continue
		}
		if st.trade.Date.Equal(day) {
			out = append(out, st)
		}
	}
	return out
}
