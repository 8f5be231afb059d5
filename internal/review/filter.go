// Package review projects a completed result set through the review-screen
// filters. Pure and stateless: recomputed from the result details and the
// bookmark set, preserving original order.
package review

import (
	"fmt"

	"github.com/Anikesh0001/test-practice/internal/model"
)

// Filter selects which result details the review screen shows.
type Filter string

const (
	FilterAll        Filter = "all"
	FilterIncorrect  Filter = "incorrect"
	FilterBookmarked Filter = "bookmarked"
)

// ParseFilter validates a raw filter string. An empty string means "all".
func ParseFilter(raw string) (Filter, error) {
	switch Filter(raw) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterIncorrect:
		return FilterIncorrect, nil
	case FilterBookmarked:
		return FilterBookmarked, nil
	default:
		return "", fmt.Errorf("unknown review filter %q", raw)
	}
}

// Apply returns the subset of details matching the filter, in original
// order. bookmarks holds the question ids flagged during the session.
func Apply(details []model.ResultDetail, bookmarks map[string]struct{}, f Filter) []model.ResultDetail {
	if f == FilterAll {
		out := make([]model.ResultDetail, len(details))
		copy(out, details)
		return out
	}

	out := make([]model.ResultDetail, 0, len(details))
	for _, d := range details {
		switch f {
		case FilterIncorrect:
			if !d.IsCorrect {
				out = append(out, d)
			}
		case FilterBookmarked:
			if _, ok := bookmarks[d.QuestionID.String()]; ok {
				out = append(out, d)
			}
		}
	}
	return out
}

// BookmarkSet converts the persisted bookmark list into a membership set.
func BookmarkSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
