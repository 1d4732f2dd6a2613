package interval

import "sort"

type eventKind int

const (
	eventStart eventKind = iota
	eventEnd
)

type event struct {
	at   int64
	kind eventKind
	// tie-break: at equal time, START before END so zero-width boundaries
	// where one block's interval ends exactly where another starts are
	// still counted as overlapping for that instant.
}

// Union computes the sweep-line union of several sorted-or-not interval
// lists. Overlapping and touching runs are combined whether or not merge
// is set, because a start event sorts before an end event at the same
// instant; merge only adds a final Coalesce pass, otherwise the output is
// sorted.
func Union(lists [][]Interval, merge bool) []Interval {
	events := make([]event, 0)
	for _, list := range lists {
		for _, iv := range list {
			events = append(events, event{at: iv.Start, kind: eventStart})
			events = append(events, event{at: iv.End + 1, kind: eventEnd})
		}
	}
	if len(events) == 0 {
		return nil
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].at != events[j].at {
			return events[i].at < events[j].at
		}
		return events[i].kind < events[j].kind // start before end
	})

	var out []Interval
	active := 0
	var runStart int64
	for _, ev := range events {
		switch ev.kind {
		case eventStart:
			if active == 0 {
				runStart = ev.at
			}
			active++
		case eventEnd:
			active--
			if active == 0 {
				out = append(out, Interval{Start: runStart, End: ev.at - 1})
			}
		}
	}
	if merge {
		out = Coalesce(out)
	} else {
		SortIntervals(out)
	}
	return out
}

// Intersect computes the sweep-line intersection of several interval
// lists: an output interval covers every instant where all blocks are
// simultaneously active.
func Intersect(lists [][]Interval, merge bool) []Interval {
	n := len(lists)
	if n == 0 {
		return nil
	}
	for _, list := range lists {
		if len(list) == 0 {
			return nil
		}
	}

	type indexedEvent struct {
		at   int64
		kind eventKind
	}
	var events []indexedEvent
	for _, list := range lists {
		for _, iv := range list {
			events = append(events, indexedEvent{at: iv.Start, kind: eventStart})
			events = append(events, indexedEvent{at: iv.End + 1, kind: eventEnd})
		}
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].at != events[j].at {
			return events[i].at < events[j].at
		}
		return events[i].kind < events[j].kind
	})

	var out []Interval
	active := 0
	var runStart int64
	inRun := false
	for _, ev := range events {
		switch ev.kind {
		case eventStart:
			active++
			if active == n && !inRun {
				runStart = ev.at
				inRun = true
			}
		case eventEnd:
			if active == n && inRun {
				if ev.at-1 >= runStart {
					out = append(out, Interval{Start: runStart, End: ev.at - 1})
				}
				inRun = false
			}
			active--
		}
	}
	if merge {
		out = Coalesce(out)
	} else {
		SortIntervals(out)
	}
	return out
}

// Complement returns the gaps in the sorted input intervals against
// [domainStart, domainEnd]. Because intervals are inclusive, gap
// boundaries are adjusted by +1/-1.
func Complement(sorted []Interval, domainStart, domainEnd int64, merge bool) []Interval {
	var out []Interval
	cursor := domainStart
	for _, iv := range sorted {
		s, e := iv.Start, iv.End
		if e < domainStart || s > domainEnd {
			continue
		}
		if s > cursor {
			gapEnd := s - 1
			if gapEnd > domainEnd {
				gapEnd = domainEnd
			}
			if cursor <= gapEnd {
				out = append(out, Interval{Start: cursor, End: gapEnd})
			}
		}
		if e+1 > cursor {
			cursor = e + 1
		}
	}
	if cursor <= domainEnd {
		out = append(out, Interval{Start: cursor, End: domainEnd})
	}
	if merge {
		out = Coalesce(out)
	}
	return out
}
