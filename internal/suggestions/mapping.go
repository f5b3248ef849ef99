package suggestions

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/JaimeStill/chronicle/internal/activities"
	"github.com/JaimeStill/chronicle/pkg/query"
	"github.com/JaimeStill/chronicle/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "suggestions", "s").
	Project("id", "ID").
	Project("activity_id", "ActivityID").
	Project("source", "Source").
	Project("source_id", "SourceID").
	Project("sources", "Sources").
	Project("date", "Date").
	Project("start_time", "Start").
	Project("hours", "Hours").
	Project("project", "Project").
	Project("client", "Client").
	Project("description", "Description").
	Project("tags", "Tags").
	Project("category", "Category").
	Project("billable", "Billable").
	Project("meeting_type", "MeetingType").
	Project("confidence", "Confidence").
	Project("rule_based", "RuleBased").
	Project("reasoning", "Reasoning").
	Project("generated_at", "GeneratedAt").
	Project("status", "Status").
	Project("approved_by", "ApprovedBy").
	Project("disposed_at", "DisposedAt").
	Project("disposition_note", "DispositionNote")

var defaultSort = query.SortField{
	Field:      "GeneratedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for suggestion queries.
// Nil fields are ignored. All fields use exact matching.
type Filters struct {
	Status    *Status                `json:"status,omitempty"`
	Source    *activities.SourceKind `json:"source,omitempty"`
	Billable  *bool                  `json:"billable,omitempty"`
	RuleBased *bool                  `json:"rule_based,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereEquals("Source", f.Source).
		WhereEquals("Billable", f.Billable).
		WhereEquals("RuleBased", f.RuleBased)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		if status, err := ParseStatus(s); err == nil {
			f.Status = &status
		}
	}

	if s := values.Get("source"); s != "" {
		if source, err := activities.ParseSourceKind(s); err == nil {
			f.Source = &source
		}
	}

	if b := values.Get("billable"); b != "" {
		if v, err := strconv.ParseBool(b); err == nil {
			f.Billable = &v
		}
	}

	if b := values.Get("rule_based"); b != "" {
		if v, err := strconv.ParseBool(b); err == nil {
			f.RuleBased = &v
		}
	}

	return f
}

func scanSuggestion(s repository.Scanner) (Suggestion, error) {
	var (
		sug     Suggestion
		sources []byte
		tags    []byte
	)

	err := s.Scan(
		&sug.ID,
		&sug.ActivityID,
		&sug.Source,
		&sug.SourceID,
		&sources,
		&sug.Date,
		&sug.Start,
		&sug.Hours,
		&sug.Project,
		&sug.Client,
		&sug.Description,
		&tags,
		&sug.Category,
		&sug.Billable,
		&sug.MeetingType,
		&sug.Confidence,
		&sug.RuleBased,
		&sug.Reasoning,
		&sug.GeneratedAt,
		&sug.Status,
		&sug.ApprovedBy,
		&sug.DisposedAt,
		&sug.DispositionNote,
	)
	if err != nil {
		return sug, err
	}

	if len(sources) > 0 {
		if err := json.Unmarshal(sources, &sug.Sources); err != nil {
			return sug, fmt.Errorf("unmarshal sources: %w", err)
		}
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &sug.Tags); err != nil {
			return sug, fmt.Errorf("unmarshal tags: %w", err)
		}
	}

	return sug, nil
}
