package analysis

import (
	"time"

	"github.com/JaimeStill/chronicle/internal/activities"
)

// RecentRecord is a compact view of a recently approved work-record,
// included in the inference context to anchor project and client naming.
type RecentRecord struct {
	Date        time.Time `json:"date"`
	Project     string    `json:"project,omitempty"`
	Client      string    `json:"client,omitempty"`
	Description string    `json:"description,omitempty"`
	Hours       float64   `json:"hours"`
}

// Context carries the known-world slice sent alongside every analysis
// request: valid project and client names plus a bounded recent-history
// window.
type Context struct {
	Projects []string       `json:"projects,omitempty"`
	Clients  []string       `json:"clients,omitempty"`
	Recent   []RecentRecord `json:"recent_records,omitempty"`
}

// Request bundles one activity's analyzable fields with the shared context.
type Request struct {
	Title        string                `json:"title"`
	Description  string                `json:"description,omitempty"`
	Participants []string              `json:"participants,omitempty"`
	Location     string                `json:"location,omitempty"`
	Source       activities.SourceKind `json:"source"`
	Start        time.Time             `json:"start"`
	Context      Context               `json:"context"`
}

// NewRequest builds a Request from an activity and the shared context.
func NewRequest(a activities.Activity, ctx Context) Request {
	return Request{
		Title:        a.Title,
		Description:  a.Description,
		Participants: a.Participants,
		Location:     a.Location,
		Source:       a.Source,
		Start:        a.Start,
		Context:      ctx,
	}
}
