// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PageSize is the default number of rows in forum, inbox and
// leaderboard lists.
const PageSize = 25

// Page is an offset window parsed from the "start" query parameter
// (1-based, as shown to the user).
type Page struct {
	Start int
	Size  int
}

// Parse reads ?start= from r. Missing or invalid values mean the first page.
func Parse(r *http.Request) Page {
	return Page{Start: ParseStart(r), Size: PageSize}
}

// ParseStart extracts the 1-based "start" parameter, defaulting to 1.
func ParseStart(r *http.Request) int {
	s := query.Get(r, "start")
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Skip is the number of rows before the page.
func (p Page) Skip() int64 { return int64(max(p.Start, 1) - 1) }

// LimitPlusOne fetches one extra row to detect a next page.
func (p Page) LimitPlusOne() int64 { return int64(p.size() + 1) }

func (p Page) size() int {
	if p.Size <= 0 {
		return PageSize
	}
	return p.Size
}

// ApplyToFind sets skip and look-ahead limit on a Find.
func (p Page) ApplyToFind(find *options.FindOptions) *options.FindOptions {
	return find.SetSkip(p.Skip()).SetLimit(p.LimitPlusOne())
}

// Result reports what lies around the page.
type Result struct {
	HasPrev bool
	HasNext bool
}

// Trim drops the look-ahead row, if fetched, and reports neighbours.
func Trim[T any](rows *[]T, p Page) Result {
	res := Result{HasPrev: p.Start > 1}
	if len(*rows) > p.size() {
		*rows = (*rows)[:p.size()]
		res.HasNext = true
	}
	return res
}

// Range holds the 1-based display range and neighbour page starts.
type Range struct {
	Start     int // 0 if no results
	End       int // 0 if no results
	PrevStart int
	NextStart int
}

// ComputeRange calculates the display range for shown rows.
func ComputeRange(p Page, shown int) Range {
	if shown == 0 {
		return Range{PrevStart: 1, NextStart: 1}
	}
	return Range{
		Start:     p.Start,
		End:       p.Start + shown - 1,
		PrevStart: max(p.Start-p.size(), 1),
		NextStart: p.Start + shown,
	}
}
