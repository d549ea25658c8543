package services

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/staffrota/shiftplanner/internal/config"
)

// ClosureMatcher decides whether a date falls on an org closure.
type ClosureMatcher struct {
	Name      string
	AppliesTo func(date time.Time) bool
}

// convertClosures converts config closures to date matchers. RRule strings
// are parsed and evaluated over the given window, with a small buffer for
// edge cases.
func convertClosures(closures []config.Closure, windowStart, windowEnd time.Time, logger *zap.Logger) ([]ClosureMatcher, error) {
	result := make([]ClosureMatcher, 0, len(closures))

	for i, closure := range closures {
		rule, err := rrule.StrToRRule(closure.RRule)
		if err != nil {
			return nil, fmt.Errorf("failed to parse rrule for closure %q: %w", closure.Name, err)
		}

		ruleForClosure := rule
		searchStart := windowStart.AddDate(0, 0, -7)
		searchEnd := windowEnd.AddDate(0, 0, 7)
		ruleForClosure.DTStart(searchStart)

		appliesTo := func(date time.Time) bool {
			day := date.Format("2006-01-02")
			for _, occurrence := range ruleForClosure.Between(searchStart, searchEnd, true) {
				if occurrence.Format("2006-01-02") == day {
					return true
				}
			}
			return false
		}

		result = append(result, ClosureMatcher{Name: closure.Name, AppliesTo: appliesTo})

		logger.Debug("Converted closure",
			zap.Int("index", i),
			zap.String("name", closure.Name),
			zap.String("rrule", closure.RRule))
	}

	return result, nil
}
