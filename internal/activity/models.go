package activity

import "time"

// Record is an immutable, append-only log entry for one observed HTTP request.
//
// Invariants:
// - Records are never updated. Deletion only happens through retention pruning.
// - ActorID is best-effort; an empty value means no valid credential was presented.
// - Metadata.BodyKeys never contains a sensitive field name.
//
// Storage recommendation (Postgres):
// - Table activities with an INSERT-only policy for the API role.
// - Index (actor_id, created_at DESC) for the admin per-user view.
type Record struct {
	ID      string `json:"_id" db:"id"`
	ActorID string `json:"user,omitempty" db:"actor_id"`

	// Action is "<METHOD> <PATH>".
	Action string `json:"action" db:"action" validate:"required"`
	Method string `json:"method" db:"method" validate:"required"`
	// Path is the URL path without the query string; the query lives in Metadata.Query.
	Path   string `json:"path" db:"path"`

	// SourceAddress is the resolved client address, see ClientAddress.
	SourceAddress string `json:"ip,omitempty" db:"ip"`
	UserAgent     string `json:"userAgent,omitempty" db:"user_agent"`
	StatusCode    int    `json:"statusCode" db:"status_code" validate:"gte=0,lte=999"`

	Metadata Metadata `json:"meta" db:"meta"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Metadata is the open attribute bag stored next to a record.
type Metadata struct {
	DurationMs int64          `json:"durationMs"`
	Query      map[string]any `json:"query"`
	BodyKeys   []string       `json:"bodyKeys"`

	RequestID string   `json:"requestId,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

// View is the admin-facing projection of a record.
type View struct {
	ID         string    `json:"_id"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	StatusCode int       `json:"statusCode"`
	DurationMs int64     `json:"durationMs"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (r Record) View() View {
	return View{
		ID:         r.ID,
		Method:     r.Method,
		Path:       r.Path,
		StatusCode: r.StatusCode,
		DurationMs: r.Metadata.DurationMs,
		CreatedAt:  r.CreatedAt,
	}
}

// Views projects records in order.
func Views(records []Record) []View {
	out := make([]View, 0, len(records))
	for _, r := range records {
		out = append(out, r.View())
	}
	return out
}
