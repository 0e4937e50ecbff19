package plan

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// Status of an Einsatz. The zero value is StatusPlanned.
type Status string

const (
	StatusPlanned Status = "planned"
	StatusDone    Status = "done"
)

// ParseStatus maps a wire string onto a Status, defaulting to planned.
func ParseStatus(s string) Status {
	if Status(strings.TrimSpace(strings.ToLower(s))) == StatusDone {
		return StatusDone
	}
	return StatusPlanned
}

// Toggle flips planned <-> done.
func (s Status) Toggle() Status {
	if s == StatusDone {
		return StatusPlanned
	}
	return StatusDone
}

// Einsatz is one scheduled job: customer, place, time range, crew.
// Start/End are canonical "HH:MM" strings inside the allowed window with
// End strictly after Start; DurationHours is derived from them. PeopleList
// always has exactly PeopleCount entries.
type Einsatz struct {
	ID            string    `json:"id"`
	OrgID         string    `json:"orgId"`
	Customer      string    `json:"customer"`
	Location      string    `json:"location"`
	Note          string    `json:"note"`
	Date          string    `json:"date"` // "YYYY-MM-DD"
	Start         string    `json:"start"`
	End           string    `json:"end"`
	DurationHours float64   `json:"durationHours"`
	PeopleCount   int       `json:"peopleCount"`
	PeopleList    []string  `json:"peopleList"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Validation failures surfaced to interactive callers.
var (
	ErrCustomerRequired = errors.New("customer is required")
	ErrDateRequired     = errors.New("a valid date is required")
	ErrTimeOutOfWindow  = errors.New("time invalid or outside 05:00-23:00")
	ErrEndNotAfterStart = errors.New("end must be after start")
)

// Draft is the raw, unvalidated input for an Einsatz as entered by a user
// or read from a foreign row.
type Draft struct {
	ID          string
	OrgID       string
	Customer    string
	Location    string
	Note        string
	Date        string
	Start       string
	End         string
	PeopleCount int
	PeopleList  []string
	Status      Status
	CreatedAt   time.Time
}

// NewEinsatz normalizes a draft into a valid Einsatz: times are
// canonicalized, the duration derived, the crew list reconciled to the
// crew count. Drafts with an empty customer, a bad date, out-of-window
// times, or a non-positive time span are rejected.
func NewEinsatz(d Draft) (Einsatz, error) {
	customer := strings.TrimSpace(d.Customer)
	if customer == "" {
		return Einsatz{}, ErrCustomerRequired
	}
	date, err := ParseISODate(strings.TrimSpace(d.Date))
	if err != nil {
		return Einsatz{}, ErrDateRequired
	}

	start, okS := Normalize(d.Start)
	end, okE := Normalize(d.End)
	if !okS || !okE {
		return Einsatz{}, ErrTimeOutOfWindow
	}
	dur, ok := DurationHours(start, end)
	if !ok {
		return Einsatz{}, ErrEndNotAfterStart
	}

	pc := ClampPeopleCount(d.PeopleCount)
	return Einsatz{
		ID:            d.ID,
		OrgID:         d.OrgID,
		Customer:      customer,
		Location:      strings.TrimSpace(d.Location),
		Note:          strings.TrimSpace(d.Note),
		Date:          ToISODate(date),
		Start:         start,
		End:           end,
		DurationHours: dur,
		PeopleCount:   pc,
		PeopleList:    ReconcilePeople(d.PeopleList, pc),
		Status:        ParseStatus(string(d.Status)),
		CreatedAt:     d.CreatedAt,
	}, nil
}

// ClampPeopleCount forces a crew size into [1,99]. Out-of-range values are
// clamped, not rejected; nonsense defaults to 1.
func ClampPeopleCount(n int) int {
	return clampI(n, 1, 99)
}

// ParsePeopleCount parses free-form crew-size input, rounding fractions
// and clamping into [1,99]. Unparseable input yields 1.
func ParsePeopleCount(raw string) int {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 1
	}
	return ClampPeopleCount(int(math.Round(f)))
}

// ReconcilePeople pads or truncates a name list to exactly n entries.
// Names are trimmed; blank padding keeps index positions stable. This is
// the single place the peopleList/peopleCount invariant is enforced.
func ReconcilePeople(names []string, n int) []string {
	out := make([]string, 0, n)
	for _, name := range names {
		if len(out) == n {
			break
		}
		out = append(out, strings.TrimSpace(name))
	}
	for len(out) < n {
		out = append(out, "")
	}
	return out
}

// CrewNames returns the non-blank entries of the crew list.
func (e Einsatz) CrewNames() []string {
	out := make([]string, 0, len(e.PeopleList))
	for _, name := range e.PeopleList {
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}

// Filter narrows a list for display: an optional status and an optional
// case-insensitive substring match over customer, location, note and crew
// names. A nil status means all statuses.
type Filter struct {
	Status *Status
	Query  string
}

// Apply returns the entries matching the filter, preserving order.
func (f Filter) Apply(list []Einsatz) []Einsatz {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]Einsatz, 0, len(list))
	for _, e := range list {
		if f.Status != nil && e.Status != *f.Status {
			continue
		}
		if query != "" {
			hay := strings.ToLower(e.Customer + " " + e.Location + " " + e.Note + " " + strings.Join(e.PeopleList, " "))
			if !strings.Contains(hay, query) {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}
