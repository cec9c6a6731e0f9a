package domain

type LookupStatus string

const (
	LookupOK           LookupStatus = "ok"
	LookupTimeout      LookupStatus = "timeout"
	LookupParseError   LookupStatus = "parse_error"
	LookupBrowserError LookupStatus = "browser_error"
)

// LookupResult is the outcome of one eligibility search. Positions is only
// meaningful when Status is LookupOK; an OK result with an empty set means the
// player is genuinely ineligible everywhere.
type LookupResult struct {
	Name      string         `json:"name"`
	Status    LookupStatus   `json:"status"`
	Positions EligibilitySet `json:"positions"`
	Detail    string         `json:"detail,omitempty"`
}

func (r LookupResult) OK() bool { return r.Status == LookupOK }
