package availability

import (
	"encoding/json"
	"sort"
	"strings"
)

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	clone := make(Record, len(r))
	for date, users := range r {
		set := make(map[string]bool, len(users))
		for name, present := range users {
			set[name] = present
		}
		clone[date] = set
	}
	return clone
}

// DatesFor returns every date on which user is present, in ascending order.
func (r Record) DatesFor(user string) []string {
	dates := make([]string, 0)
	for date, users := range r {
		if users[user] {
			dates = append(dates, date)
		}
	}
	sort.Strings(dates)
	return dates
}

// Replace returns a new record in which user is present on exactly dates.
// The user is first removed everywhere, dates left empty are deleted, then
// the user is added to each of dates. r itself is not modified.
func (r Record) Replace(user string, dates []string) Record {
	next := r.Clone()
	for date, users := range next {
		delete(users, user)
		if len(users) == 0 {
			delete(next, date)
		}
	}
	for _, date := range dates {
		if next[date] == nil {
			next[date] = make(map[string]bool)
		}
		next[date][user] = true
	}
	return next
}

// Users returns the distinct user names in the record sorted without regard
// to case. Names that fold to the same string are ordered bytewise.
func (r Record) Users() []string {
	set := make(map[string]struct{})
	for _, users := range r {
		for name, present := range users {
			if present && name != "" {
				set[name] = struct{}{}
			}
		}
	}

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sortFold(names)
	return names
}

func sortFold(names []string) {
	sort.Slice(names, func(i, j int) bool {
		li, lj := strings.ToLower(names[i]), strings.ToLower(names[j])
		if li != lj {
			return li < lj
		}
		return names[i] < names[j]
	})
}

// Summarize builds one entry per non-empty date, sorted by count descending
// and then by date ascending.
func Summarize(r Record) []SummaryEntry {
	entries := make([]SummaryEntry, 0, len(r))
	for date, users := range r {
		names := make([]string, 0, len(users))
		for name, present := range users {
			if present {
				names = append(names, name)
			}
		}
		if len(names) == 0 {
			continue
		}
		sort.Strings(names)
		entries = append(entries, SummaryEntry{
			Date:  date,
			Count: len(names),
			Users: names,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Date < entries[j].Date
	})
	return entries
}

// BestDates returns the entries tied for the highest count. The input does
// not need to be sorted. Returns an empty slice when no entry has a count.
func BestDates(entries []SummaryEntry) []SummaryEntry {
	best := 0
	for _, e := range entries {
		if e.Count > best {
			best = e.Count
		}
	}

	out := make([]SummaryEntry, 0)
	if best == 0 {
		return out
	}
	for _, e := range entries {
		if e.Count == best {
			out = append(out, e)
		}
	}
	return out
}

// FilterRange keeps entries whose date lies within [from, to]. An empty
// bound is open. ISO dates compare correctly as strings.
func FilterRange(entries []SummaryEntry, from, to string) []SummaryEntry {
	out := make([]SummaryEntry, 0, len(entries))
	for _, e := range entries {
		if from != "" && e.Date < from {
			continue
		}
		if to != "" && e.Date > to {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Decode parses a persisted document. It never fails: malformed JSON yields
// an empty record, and entries that are not truthy presence flags are dropped
// together with any date left empty.
func Decode(data []byte) Record {
	record := make(Record)
	if len(data) == 0 {
		return record
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return record
	}

	for date, body := range raw {
		var users map[string]interface{}
		if err := json.Unmarshal(body, &users); err != nil || users == nil {
			continue
		}
		set := make(map[string]bool, len(users))
		for name, v := range users {
			if name != "" && truthy(v) {
				set[name] = true
			}
		}
		if len(set) > 0 {
			record[date] = set
		}
	}
	return record
}

// IsValidDocument reports whether data decodes as a JSON object. Empty input
// counts as valid (an empty document).
func IsValidDocument(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	var raw map[string]json.RawMessage
	return json.Unmarshal(data, &raw) == nil
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}

// Encode renders the record with two-space indentation.
func Encode(r Record) ([]byte, error) {
	if r == nil {
		r = Record{}
	}
	return json.MarshalIndent(r, "", "  ")
}
