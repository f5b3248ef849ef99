package activities_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/JaimeStill/chronicle/internal/activities"
	"github.com/google/uuid"
)

func ptr[T any](v T) *T { return &v }

func sampleActivity() activities.Activity {
	return activities.Activity{
		ID:       uuid.New(),
		Title:    "Sprint planning",
		Start:    time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		Source:   activities.SourceCalendar,
		SourceID: "evt-1001",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*activities.Activity)
		wantErr error
	}{
		{
			name:   "valid minimal activity",
			mutate: func(a *activities.Activity) {},
		},
		{
			name:    "missing title",
			mutate:  func(a *activities.Activity) { a.Title = "  " },
			wantErr: activities.ErrInvalidActivity,
		},
		{
			name:    "unknown source kind",
			mutate:  func(a *activities.Activity) { a.Source = "carrier-pigeon" },
			wantErr: activities.ErrInvalidActivity,
		},
		{
			name:    "missing source_id",
			mutate:  func(a *activities.Activity) { a.SourceID = "" },
			wantErr: activities.ErrInvalidActivity,
		},
		{
			name:    "zero start",
			mutate:  func(a *activities.Activity) { a.Start = time.Time{} },
			wantErr: activities.ErrInvalidActivity,
		},
		{
			name:    "negative hours",
			mutate:  func(a *activities.Activity) { a.Hours = ptr(-1.5) },
			wantErr: activities.ErrInvalidActivity,
		},
		{
			name: "end precedes start",
			mutate: func(a *activities.Activity) {
				a.End = ptr(a.Start.Add(-time.Hour))
			},
			wantErr: activities.ErrInvalidActivity,
		},
		{
			name: "end equals start",
			mutate: func(a *activities.Activity) {
				a.End = ptr(a.Start)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := sampleActivity()
			tt.mutate(&a)
			err := a.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDurationHours(t *testing.T) {
	t.Run("explicit hours win", func(t *testing.T) {
		a := sampleActivity()
		a.Hours = ptr(2.5)
		a.End = ptr(a.Start.Add(time.Hour))

		got, ok := a.DurationHours()
		if !ok || got != 2.5 {
			t.Errorf("DurationHours() = %v, %v; want 2.5, true", got, ok)
		}
	})

	t.Run("derived from start and end", func(t *testing.T) {
		a := sampleActivity()
		a.End = ptr(a.Start.Add(90 * time.Minute))

		got, ok := a.DurationHours()
		if !ok || got != 1.5 {
			t.Errorf("DurationHours() = %v, %v; want 1.5, true", got, ok)
		}
	})

	t.Run("no duration available", func(t *testing.T) {
		a := sampleActivity()
		if _, ok := a.DurationHours(); ok {
			t.Error("DurationHours() ok = true, want false")
		}
	})
}

func TestFingerprint(t *testing.T) {
	a := sampleActivity()
	b := a
	b.ID = uuid.New()
	b.Description = "different commentary"
	b.SourceID = "evt-other"

	if a.Fingerprint() != b.Fingerprint() {
		t.Error("fingerprint should depend only on source, title, and start")
	}

	c := a
	c.Title = "Sprint planning (moved)"
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("changed title should produce a new fingerprint")
	}

	d := a
	d.Start = a.Start.Add(time.Hour)
	if a.Fingerprint() == d.Fingerprint() {
		t.Error("changed start should produce a new fingerprint")
	}

	t.Run("timezone normalized", func(t *testing.T) {
		e := a
		e.Start = a.Start.In(time.FixedZone("plus2", 2*3600))
		if a.Fingerprint() != e.Fingerprint() {
			t.Error("equivalent instants should fingerprint identically")
		}
	})
}

func TestHighPriority(t *testing.T) {
	keywords := []string{"urgent", "escalation"}

	tests := []struct {
		name        string
		title       string
		description string
		want        bool
	}{
		{"keyword in title", "URGENT: build broken", "", true},
		{"keyword in description", "Standup", "escalation from client", true},
		{"case insensitive", "Escalation review", "", true},
		{"no match", "Weekly sync", "notes", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := sampleActivity()
			a.Title = tt.title
			a.Description = tt.description
			if got := a.HighPriority(keywords); got != tt.want {
				t.Errorf("HighPriority() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("empty keywords never match", func(t *testing.T) {
		a := sampleActivity()
		a.Title = "urgent everything"
		if a.HighPriority(nil) || a.HighPriority([]string{""}) {
			t.Error("empty keyword list should not match")
		}
	})
}

func TestParseSourceKind(t *testing.T) {
	for _, kind := range activities.SourceKinds() {
		t.Run(string(kind), func(t *testing.T) {
			got, err := activities.ParseSourceKind(string(kind))
			if err != nil || got != kind {
				t.Errorf("ParseSourceKind(%q) = %q, %v", kind, got, err)
			}
		})
	}

	t.Run("unknown kind", func(t *testing.T) {
		_, err := activities.ParseSourceKind("fax")
		if !errors.Is(err, activities.ErrInvalidSource) {
			t.Errorf("error = %v, want ErrInvalidSource", err)
		}
	})
}

func TestSourceKindUnmarshalJSON(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		var k activities.SourceKind
		if err := json.Unmarshal([]byte(`"ticket"`), &k); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if k != activities.SourceTicket {
			t.Errorf("kind = %q, want ticket", k)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		var k activities.SourceKind
		err := json.Unmarshal([]byte(`"fax"`), &k)
		if !errors.Is(err, activities.ErrInvalidSource) {
			t.Errorf("error = %v, want ErrInvalidSource", err)
		}
	})
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid activity", activities.ErrInvalidActivity, http.StatusBadRequest},
		{"invalid source", activities.ErrInvalidSource, http.StatusBadRequest},
		{"queue closed", activities.ErrQueueClosed, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := activities.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}
