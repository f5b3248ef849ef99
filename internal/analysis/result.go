// Package analysis implements the inference boundary for Chronicle.
// It defines the AnalysisResult model with defensive normalization, the
// structured request contract sent to the inference capability, a
// go-agents backed client with a bounded timeout and availability probe,
// a deterministic rule-based fallback, and a fingerprint-keyed TTL cache.
package analysis

import (
	"slices"
	"strings"
)

// Category classifies the kind of work an activity represents.
type Category string

// Valid work categories.
const (
	CategoryClient   Category = "client"
	CategoryInternal Category = "internal"
	CategoryAdmin    Category = "admin"
	CategoryMeeting  Category = "meeting"
)

var categories = []Category{
	CategoryClient,
	CategoryInternal,
	CategoryAdmin,
	CategoryMeeting,
}

// MeetingType refines meetings into recognized subtypes.
type MeetingType string

// Valid meeting subtypes.
const (
	MeetingKickoff        MeetingType = "kickoff"
	MeetingDiscovery      MeetingType = "discovery"
	MeetingImplementation MeetingType = "implementation"
	MeetingSupport        MeetingType = "support"
	MeetingTraining       MeetingType = "training"
	MeetingCheckIn        MeetingType = "check-in"
	MeetingEscalation     MeetingType = "escalation"
)

var meetingTypes = []MeetingType{
	MeetingKickoff,
	MeetingDiscovery,
	MeetingImplementation,
	MeetingSupport,
	MeetingTraining,
	MeetingCheckIn,
	MeetingEscalation,
}

// MaxTags bounds the number of tags carried on a result.
const MaxTags = 5

// Result is the structured inference output for one activity. Instances
// coming off the wire must pass through Normalize before use; the inference
// boundary is never trusted structurally.
type Result struct {
	Confidence  float64      `json:"confidence"`
	Project     *string      `json:"suggested_project,omitempty"`
	Client      *string      `json:"suggested_client,omitempty"`
	Enhanced    *string      `json:"enhanced_description,omitempty"`
	Category    Category     `json:"category"`
	Billable    bool         `json:"billable"`
	MeetingType *MeetingType `json:"meeting_type,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	Reasoning   string       `json:"reasoning"`

	// RuleBased marks results produced by the deterministic fallback
	// analyzer rather than a live inference call.
	RuleBased bool `json:"rule_based,omitempty"`
}

// Normalize coerces a result into its valid domain: confidence clamped to
// [0,1], unknown category replaced with the client-safe default, unknown
// meeting subtype dropped, tags trimmed and capped at MaxTags. Invalid enum
// values are repaired rather than rejected so a structurally sound response
// is never discarded over a single bad field.
func (r *Result) Normalize() {
	if r.Confidence < 0 {
		r.Confidence = 0
	}
	if r.Confidence > 1 {
		r.Confidence = 1
	}

	r.Category = Category(strings.ToLower(strings.TrimSpace(string(r.Category))))
	if !slices.Contains(categories, r.Category) {
		r.Category = CategoryClient
	}

	if r.MeetingType != nil {
		mt := MeetingType(strings.ToLower(strings.TrimSpace(string(*r.MeetingType))))
		if slices.Contains(meetingTypes, mt) {
			r.MeetingType = &mt
		} else {
			r.MeetingType = nil
		}
	}

	tags := make([]string, 0, len(r.Tags))
	for _, t := range r.Tags {
		t = strings.TrimSpace(t)
		if t != "" && !slices.Contains(tags, t) {
			tags = append(tags, t)
		}
		if len(tags) == MaxTags {
			break
		}
	}
	r.Tags = tags

	if r.Project != nil && strings.TrimSpace(*r.Project) == "" {
		r.Project = nil
	}
	if r.Client != nil && strings.TrimSpace(*r.Client) == "" {
		r.Client = nil
	}
	if r.Enhanced != nil && strings.TrimSpace(*r.Enhanced) == "" {
		r.Enhanced = nil
	}
}

// ParseMeetingType validates a string as a known meeting subtype.
func ParseMeetingType(s string) (MeetingType, bool) {
	mt := MeetingType(strings.ToLower(strings.TrimSpace(s)))
	return mt, slices.Contains(meetingTypes, mt)
}
