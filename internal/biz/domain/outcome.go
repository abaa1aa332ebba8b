package domain

// DispatchOutcome is the result of trying every candidate payload shape
type DispatchOutcome struct {
	Success   bool
	Candidate string // Name of the shape that succeeded, or the last one tried
	Body      []byte // Raw adapter response of the successful candidate
	Err       error  // Last error seen when every candidate failed
	Attempts  int
}

// DispatchExtra carries optional per-invocation dispatch data
type DispatchExtra struct {
	ReplyID string
	Reason  string
}

// ResultStatus classifies what happened to one invocation
type ResultStatus string

const (
	StatusSucceeded  ResultStatus = "succeeded"
	StatusSuppressed ResultStatus = "suppressed"
	StatusFailed     ResultStatus = "failed"
)

// Result is what crosses back to the invoking framework
type Result struct {
	Status  ResultStatus
	Message string
	Target  *ResolvedTarget // nil when resolution failed
	Err     error
}

// OK returns the (success, message) pair the host framework expects
func (r *Result) OK() (bool, string) {
	return r.Status == StatusSucceeded, r.Message
}
