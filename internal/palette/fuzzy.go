package palette

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Entry is a window as the task switcher sees it.
type Entry struct {
	ID      uint64 `json:"id"`
	Title   string `json:"title"`
	State   string `json:"state"`
	Focused bool   `json:"focused,omitempty"`
}

// Match is a ranked entry.
type Match struct {
	Entry          Entry `json:"entry"`
	Score          int   `json:"score"`
	MatchedIndexes []int `json:"matched_indexes,omitempty"`
}

type entrySource []Entry

func (s entrySource) Len() int            { return len(s) }
func (s entrySource) String(i int) string { return s[i].Title }

// Rank fuzzy-matches query against entry titles, best first. An empty query
// keeps every entry in its original order. limit <= 0 means no limit.
func Rank(query string, entries []Entry, limit int) []Match {
	query = strings.TrimSpace(query)
	var out []Match
	if query == "" {
		out = make([]Match, 0, len(entries))
		for _, e := range entries {
			out = append(out, Match{Entry: e})
		}
	} else {
		for _, m := range fuzzy.FindFrom(query, entrySource(entries)) {
			out = append(out, Match{
				Entry:          entries[m.Index],
				Score:          m.Score,
				MatchedIndexes: m.MatchedIndexes,
			})
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Choose ranks entries by query and lets the user pick one with b.
func Choose(b Backend, entries []Entry, query string) (Entry, error) {
	matches := Rank(query, entries, 0)
	if len(matches) == 0 {
		return Entry{}, fmt.Errorf("no window matches %q", query)
	}

	items := make([]Item, 0, len(matches))
	for _, m := range matches {
		items = append(items, Item{
			Label:  entryLabel(m.Entry),
			Value:  strconv.FormatUint(m.Entry.ID, 10),
			Active: m.Entry.Focused,
		})
	}

	item, err := b.Show("windows", items)
	if err != nil {
		return Entry{}, err
	}
	for _, m := range matches {
		if strconv.FormatUint(m.Entry.ID, 10) == item.Value {
			return m.Entry, nil
		}
	}
	return Entry{}, fmt.Errorf("palette: selection %q matches no window", item.Value)
}

func entryLabel(e Entry) string {
	title := e.Title
	if strings.TrimSpace(title) == "" {
		title = "(untitled)"
	}
	label := fmt.Sprintf("%s  #%d", title, e.ID)
	if e.State != "" && e.State != "normal" {
		label += "  [" + e.State + "]"
	}
	return label
}
