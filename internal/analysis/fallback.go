package analysis

import (
	"fmt"
	"strings"
)

// Fallback confidence band. Rule-based results are deliberately capped well
// below the auto-approval threshold so a degraded inference capability can
// only ever produce suggestions that wait for a human.
const (
	fallbackBaseConfidence = 0.55
	fallbackSignalBonus    = 0.05
	fallbackMaxConfidence  = 0.70
)

var internalKeywords = []string{
	"standup", "stand-up", "retro", "retrospective", "internal",
	"team sync", "all hands", "1:1", "one-on-one", "sprint planning",
}

var adminKeywords = []string{
	"admin", "invoice", "invoicing", "timesheet", "expense", "payroll", "bookkeeping",
}

// Ordered so multi-keyword titles always resolve to the same subtype.
var meetingKeywords = []struct {
	keyword string
	subtype MeetingType
}{
	{"kickoff", MeetingKickoff},
	{"kick-off", MeetingKickoff},
	{"discovery", MeetingDiscovery},
	{"implementation", MeetingImplementation},
	{"support", MeetingSupport},
	{"training", MeetingTraining},
	{"workshop", MeetingTraining},
	{"check-in", MeetingCheckIn},
	{"checkin", MeetingCheckIn},
	{"escalation", MeetingEscalation},
}

// RuleAnalyzer is the deterministic fallback used whenever the inference
// capability is unavailable, errors, times out, or returns an unparseable
// response. It matches keywords against title and description and known
// client/project names against the request context.
type RuleAnalyzer struct{}

// NewRuleAnalyzer creates a RuleAnalyzer.
func NewRuleAnalyzer() *RuleAnalyzer {
	return &RuleAnalyzer{}
}

// Analyze produces a normalized rule-based result. It never fails.
func (ra *RuleAnalyzer) Analyze(req Request) *Result {
	text := strings.ToLower(req.Title + " " + req.Description)

	var (
		signals []string
		tags    []string
	)

	r := &Result{
		Category:  CategoryClient,
		Billable:  true,
		RuleBased: true,
	}

	if kw := matchKeyword(text, internalKeywords); kw != "" {
		r.Category = CategoryInternal
		r.Billable = false
		signals = append(signals, fmt.Sprintf("internal keyword %q", kw))
		tags = append(tags, "internal")
	} else if kw := matchKeyword(text, adminKeywords); kw != "" {
		r.Category = CategoryAdmin
		r.Billable = false
		signals = append(signals, fmt.Sprintf("admin keyword %q", kw))
		tags = append(tags, "admin")
	}

	for _, mk := range meetingKeywords {
		if strings.Contains(text, mk.keyword) {
			subtype := mk.subtype
			r.MeetingType = &subtype
			if r.Category == CategoryClient {
				r.Category = CategoryMeeting
			}
			signals = append(signals, fmt.Sprintf("meeting keyword %q", mk.keyword))
			tags = append(tags, string(mk.subtype))
			break
		}
	}

	if client := MatchName(text, req.Context.Clients); client != nil {
		r.Client = client
		r.Billable = r.Category != CategoryInternal && r.Category != CategoryAdmin
		signals = append(signals, fmt.Sprintf("known client %q", *client))
	}

	if project := MatchName(text, req.Context.Projects); project != nil {
		r.Project = project
		signals = append(signals, fmt.Sprintf("known project %q", *project))
	}

	// No client and no explicit signal means we cannot justify billable work.
	if r.Client == nil && r.Category == CategoryClient && len(signals) == 0 {
		r.Billable = false
	}

	r.Confidence = fallbackBaseConfidence + float64(len(signals))*fallbackSignalBonus
	if r.Confidence > fallbackMaxConfidence {
		r.Confidence = fallbackMaxConfidence
	}

	if len(signals) > 0 {
		r.Reasoning = "rule-based analysis: matched " + strings.Join(signals, ", ")
	} else {
		r.Reasoning = "rule-based analysis: no keyword or context matches"
	}

	r.Tags = tags
	r.Normalize()
	return r
}

// MatchName finds the first known name contained in the text, or the first
// known name that contains the text, both case-insensitive. Returns the
// canonical known name so downstream validation is a guaranteed hit.
func MatchName(text string, known []string) *string {
	lower := strings.ToLower(text)
	for _, name := range known {
		ln := strings.ToLower(name)
		if ln == "" {
			continue
		}
		if strings.Contains(lower, ln) || strings.Contains(ln, strings.TrimSpace(lower)) {
			canonical := name
			return &canonical
		}
	}
	return nil
}

func matchKeyword(text string, keywords []string) string {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return kw
		}
	}
	return ""
}
