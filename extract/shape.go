// Package extract recognizes a fixed, enumerated set of declaration shapes in
// legacy Backstage frontend plugin sources and yields one typed record per
// occurrence.
//
// It does not parse TypeScript. Each shape is data: an anchor expression that
// locates candidates, an optional full-declaration expression, and a builder
// that turns named captures into a record. A candidate the anchor finds but
// the rest of the shape rejects is kept as a skipped match with a reason, so
// callers can log it instead of losing it silently.
package extract

import (
	"regexp"
	"strings"

	"github.com/teranos/plugmig/errors"
)

// Kind is one of the three declaration categories the migrator handles.
type Kind string

const (
	KindApi     Kind = "api"
	KindCard    Kind = "card"
	KindContent Kind = "content"
)

// Kinds lists every Kind in document order.
var Kinds = []Kind{KindApi, KindCard, KindContent}

// Captures holds the named submatches of one candidate.
// A Call shape additionally provides "call" and "args".
type Captures map[string]string

// Shape describes one declaration shape and how to build its record.
type Shape[R any] struct {
	Name string
	Kind Kind

	// Anchor locates candidates. Named groups in it are captured too.
	Anchor *regexp.Regexp

	// Pattern, when set, must match the whole declaration starting exactly
	// where the anchor matched. Build it with anchored().
	Pattern *regexp.Regexp

	// Call captures the balanced argument list of the call whose opening
	// parenthesis ends the anchor.
	Call bool

	// Build turns captures into a record; an error skips the candidate.
	Build func(Captures) (R, error)
}

// Match is the outcome for one candidate: either a record or a skip reason.
type Match[R any] struct {
	Record  R
	Offset  int // byte offset of the candidate in the source
	End     int // byte offset just past the consumed text
	Skipped bool
	Reason  string
}

// Scan finds every candidate for shape in src, left to right and
// non-overlapping. The result is empty, not nil-with-error, when nothing
// matches.
func Scan[R any](src string, shape Shape[R]) []Match[R] {
	var matches []Match[R]

	pos := 0
	for pos < len(src) {
		loc := shape.Anchor.FindStringSubmatchIndex(src[pos:])
		if loc == nil {
			break
		}
		start, anchorEnd := pos+loc[0], pos+loc[1]

		caps := Captures{}
		addNamed(caps, shape.Anchor, src[pos:], loc)

		m := shape.complete(src, start, anchorEnd, caps)
		matches = append(matches, m)

		next := m.End
		if m.Skipped || next <= start {
			next = anchorEnd
		}
		if next <= pos {
			next = pos + 1
		}
		pos = next
	}

	return matches
}

func (s Shape[R]) complete(src string, start, anchorEnd int, caps Captures) Match[R] {
	m := Match[R]{Offset: start, End: anchorEnd}

	if s.Pattern != nil {
		ploc := s.Pattern.FindStringSubmatchIndex(src[start:])
		if ploc == nil {
			return m.skip("does not match the " + s.Name + " shape")
		}
		addNamed(caps, s.Pattern, src[start:], ploc)
		m.End = start + ploc[1]
	}

	if s.Call {
		open := anchorEnd - 1
		if open < start || src[open] != '(' {
			return m.skip("anchor does not end at a call")
		}
		closing, ok := balancedClose(src, open)
		if !ok {
			return m.skip("unterminated call")
		}
		caps["args"] = src[open+1 : closing]
		caps["call"] = src[start : closing+1]
		m.End = closing + 1
	}

	record, err := s.Build(caps)
	if err != nil {
		return m.skip(err.Error())
	}
	m.Record = record
	return m
}

func (m Match[R]) skip(reason string) Match[R] {
	m.Skipped = true
	m.Reason = reason
	return m
}

// Records returns the records of matched candidates, in source order.
func Records[R any](matches []Match[R]) []R {
	records := make([]R, 0, len(matches))
	for _, m := range matches {
		if !m.Skipped {
			records = append(records, m.Record)
		}
	}
	return records
}

// Skips returns the skipped candidates, in source order.
func Skips[R any](matches []Match[R]) []Match[R] {
	var skipped []Match[R]
	for _, m := range matches {
		if m.Skipped {
			skipped = append(skipped, m)
		}
	}
	return skipped
}

// require reports the first named capture that is missing or empty.
func (c Captures) require(names ...string) error {
	for _, name := range names {
		if strings.TrimSpace(c[name]) == "" {
			return errors.Newf("missing %s", name)
		}
	}
	return nil
}

func addNamed(caps Captures, re *regexp.Regexp, s string, loc []int) {
	for i, name := range re.SubexpNames() {
		if name == "" || 2*i+1 >= len(loc) || loc[2*i] < 0 {
			continue
		}
		caps[name] = s[loc[2*i]:loc[2*i+1]]
	}
}

// anchored compiles a shape pattern that only matches at the start of its input.
func anchored(expr string) *regexp.Regexp {
	return regexp.MustCompile(`\A(?:` + expr + `)`)
}
