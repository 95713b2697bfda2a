package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	slugWhitespace = regexp.MustCompile(`\s+`)
	slugInvalid    = regexp.MustCompile(`[^a-z0-9_]`)
)

// fallbackSlug is used when a stage name contains no slug-safe characters
const fallbackSlug = "stage"

// Slugify derives a stage slug from a display name: lowercase, whitespace
// runs become underscores and anything outside [a-z0-9_] is dropped.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugWhitespace.ReplaceAllString(s, "_")
	s = slugInvalid.ReplaceAllString(s, "")
	if s == "" {
		return fallbackSlug
	}
	return s
}

// Title returns the human-readable title for an activity type
func (t ActivityType) Title() string {
	switch t {
	case ActivityTypeLeadCreated:
		return "Lead created"
	case ActivityTypeStageChanged:
		return "Stage changed"
	case ActivityTypeLeadClosed:
		return "Lead closed"
	case ActivityTypeLeadReopened:
		return "Lead reopened"
	default:
		return string(t)
	}
}

// IsValid reports whether t is a known activity type
func (t ActivityType) IsValid() bool {
	switch t {
	case ActivityTypeLeadCreated, ActivityTypeStageChanged, ActivityTypeLeadClosed, ActivityTypeLeadReopened:
		return true
	}
	return false
}

// TransitionActivityType classifies a stage move by the finality of the
// source and destination stages.
func TransitionActivityType(fromFinal, toFinal bool) ActivityType {
	switch {
	case toFinal:
		return ActivityTypeLeadClosed
	case fromFinal:
		return ActivityTypeLeadReopened
	default:
		return ActivityTypeStageChanged
	}
}

// TransitionBody describes a stage move for the activity log
func TransitionBody(from, to *Stage) string {
	if from == nil {
		return fmt.Sprintf("Moved to stage '%s'", to.Name)
	}
	return fmt.Sprintf("Moved from stage '%s' to '%s'", from.Name, to.Name)
}
