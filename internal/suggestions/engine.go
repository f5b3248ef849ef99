package suggestions

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/chronicle/internal/activities"
	"github.com/JaimeStill/chronicle/internal/analysis"
)

// Policy holds the confidence thresholds governing suggestion creation and
// auto-approval.
type Policy struct {
	// DiscardFloor is the hard minimum confidence; results below it produce
	// no suggestion.
	DiscardFloor float64
	// AutoApprove is the threshold at or above which a new suggestion is
	// immediately approved on behalf of the system.
	AutoApprove float64
}

// Known holds the validated project and client name sets.
type Known struct {
	Projects []string
	Clients  []string
}

// Default proposed durations in hours, keyed by title/description keywords.
// Applied only when the activity carries no explicit duration and no
// start/end delta.
var defaultHours = []struct {
	keywords []string
	hours    float64
}{
	{[]string{"standup", "stand-up"}, 0.25},
	{[]string{"check-in", "checkin", "quick"}, 0.5},
	{[]string{"kickoff", "kick-off", "discovery"}, 2},
	{[]string{"training", "workshop"}, 4},
}

const fallbackDefaultHours = 1

// Build constructs a pending Suggestion from an activity and its analysis
// result. Returns false when the result's confidence is below the discard
// floor; the caller logs the discard but treats it as a non-error.
func Build(a activities.Activity, res analysis.Result, known Known, policy Policy) (*Suggestion, bool) {
	if res.Confidence < policy.DiscardFloor {
		return nil, false
	}

	description := a.Title
	if res.Enhanced != nil {
		description = *res.Enhanced
	}

	var meetingType *string
	if res.MeetingType != nil {
		mt := string(*res.MeetingType)
		meetingType = &mt
	}

	start := a.Start
	s := &Suggestion{
		ID:          uuid.New(),
		ActivityID:  a.ID,
		Source:      a.Source,
		SourceID:    a.SourceID,
		Sources:     []string{string(a.Source)},
		Date:        a.Start.UTC().Truncate(24 * time.Hour),
		Start:       &start,
		Hours:       ProposedHours(a),
		Project:     ValidateName(res.Project, known.Projects),
		Client:      ValidateName(res.Client, known.Clients),
		Description: description,
		Tags:        res.Tags,
		Category:    res.Category,
		Billable:    res.Billable,
		MeetingType: meetingType,
		Confidence:  res.Confidence,
		RuleBased:   res.RuleBased,
		Reasoning:   res.Reasoning,
		GeneratedAt: time.Now().UTC(),
		Status:      StatusPending,
	}

	return s, true
}

// ProposedHours derives the proposed duration: the activity's explicit or
// start/end-derived duration when available, otherwise a keyword default.
func ProposedHours(a activities.Activity) float64 {
	if hours, ok := a.DurationHours(); ok {
		return hours
	}

	text := strings.ToLower(a.Title + " " + a.Description)
	for _, entry := range defaultHours {
		for _, kw := range entry.keywords {
			if strings.Contains(text, kw) {
				return entry.hours
			}
		}
	}
	return fallbackDefaultHours
}

// ValidateName resolves a suggested name against the known set: exact match
// first, then case-insensitive substring match in both directions. Returns
// the canonical known name, or nil when the candidate cannot be resolved.
func ValidateName(candidate *string, known []string) *string {
	if candidate == nil {
		return nil
	}

	c := strings.TrimSpace(*candidate)
	if c == "" {
		return nil
	}

	for _, name := range known {
		if name == c {
			canonical := name
			return &canonical
		}
	}

	lower := strings.ToLower(c)
	for _, name := range known {
		ln := strings.ToLower(name)
		if strings.Contains(ln, lower) || strings.Contains(lower, ln) {
			canonical := name
			return &canonical
		}
	}

	return nil
}
