package feedback

import (
	"math"
	"sort"
)

// Engine derives statistics from feedback events. It holds no mutable state
// and never modifies its input, so one value can be shared by all callers.
type Engine struct {
	cfg RatingConfig
}

func NewEngine(cfg RatingConfig) Engine {
	if cfg.Labels == nil {
		cfg.Labels = DefaultRatingLabels()
	}
	return Engine{cfg: cfg}
}

func DefaultEngine() Engine {
	return NewEngine(DefaultRatingConfig())
}

func (e Engine) RatingConfig() RatingConfig {
	return e.cfg
}

type tally struct {
	redManager int
	redPeer    int
	black      int
}

// add classifies one event. BLACK is always official, whatever the manager
// flag says. Events with an unknown point type are ignored.
func (t *tally) add(ev *Event) bool {
	switch ev.PointType {
	case PointRed:
		if ev.IsManagerFeedback {
			t.redManager++
		} else {
			t.redPeer++
		}
	case PointBlack:
		t.black++
	default:
		return false
	}
	return true
}

func (e Engine) Compute(events []Event) Stats {
	var t tally
	for i := range events {
		t.add(&events[i])
	}
	return e.fromTally(t)
}

func (e Engine) fromTally(t tally) Stats {
	official := t.redManager + t.black
	stats := Stats{
		Red:           t.redManager + t.redPeer,
		RedManager:    t.redManager,
		RedPeer:       t.redPeer,
		Black:         t.black,
		Total:         t.redManager + t.redPeer + t.black,
		TotalOfficial: official,
		Rating:        RatingNoData,
	}
	if official > 0 {
		stats.PercentageRed = math.Round(float64(t.redManager)/float64(official)*1000) / 10
		stats.Rating = e.cfg.Rate(stats.PercentageRed)
	}
	stats.RatingLabel = e.cfg.Label(stats.Rating)
	return stats
}

// Categories groups events by their exact category string, in the order the
// categories are first seen.
func (e Engine) Categories(events []Event) []CategoryStat {
	out := make([]CategoryStat, 0)
	index := map[string]int{}
	for i := range events {
		ev := &events[i]
		var t tally
		if !t.add(ev) {
			continue
		}
		pos, ok := index[ev.Category]
		if !ok {
			pos = len(out)
			index[ev.Category] = pos
			out = append(out, CategoryStat{Category: ev.Category})
		}
		row := &out[pos]
		row.RedManager += t.redManager
		row.RedPeer += t.redPeer
		row.Black += t.black
		row.Total++
	}
	return out
}

// OrderCategories returns a copy of stats with the listed categories first, in
// list order. Categories missing from order keep their relative order.
func OrderCategories(stats []CategoryStat, order []string) []CategoryStat {
	rank := make(map[string]int, len(order))
	for i, name := range order {
		if _, seen := rank[name]; !seen {
			rank[name] = i
		}
	}
	out := make([]CategoryStat, len(stats))
	copy(out, stats)
	sort.SliceStable(out, func(i, j int) bool {
		ri, iok := rank[out[i].Category]
		rj, jok := rank[out[j].Category]
		switch {
		case iok && jok:
			return ri < rj
		case iok:
			return true
		default:
			return false
		}
	})
	return out
}

// Rank computes per-member stats and orders members by official red
// percentage, highest first. Ties keep the order of members.
func (e Engine) Rank(members []Member, events []Event) []MemberStats {
	tallies := make(map[string]*tally, len(members))
	for _, m := range members {
		tallies[m.ID] = &tally{}
	}
	for i := range events {
		if t, ok := tallies[events[i].EmployeeID]; ok {
			t.add(&events[i])
		}
	}

	out := make([]MemberStats, 0, len(members))
	for _, m := range members {
		out = append(out, MemberStats{Member: m, Stats: e.fromTally(*tallies[m.ID])})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PercentageRed > out[j].PercentageRed
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// Team bundles the aggregate stats of all events with the member ranking.
func (e Engine) Team(members []Member, events []Event) TeamStats {
	return TeamStats{Team: e.Compute(events), Ranking: e.Rank(members, events)}
}
