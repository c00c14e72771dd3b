package grants

import "fmt"

// SheetState is the terminal state of one sheet in an import.
type SheetState string

const (
	StateSkippedTooFewRows    SheetState = "skipped_too_few_rows"
	StateSkippedHeaderInvalid SheetState = "skipped_header_invalid"
	StateSkippedGrantExists   SheetState = "skipped_grant_exists"
	StateProcessed            SheetState = "processed"
)

// ResultKind tags a SheetResult.
type ResultKind int

const (
	// KindProcessed means the sheet ran to completion; it may still carry
	// row-level warnings and may have inserted zero items.
	KindProcessed ResultKind = iota
	// KindSkip means the sheet was rejected by validation. Never rolls back.
	KindSkip
	// KindFault means a systemic failure. Rolls back the whole import.
	KindFault
)

func (k ResultKind) String() string {
	switch k {
	case KindProcessed:
		return "processed"
	case KindSkip:
		return "skip"
	case KindFault:
		return "fault"
	default:
		return fmt.Sprintf("ResultKind(%d)", int(k))
	}
}

// Skip is a validation rejection of a whole sheet. Reason is the warning
// text reported to the caller.
type Skip struct {
	State  SheetState
	Reason string
}

func skipf(state SheetState, format string, args ...any) *Skip {
	return &Skip{State: state, Reason: fmt.Sprintf(format, args...)}
}

// SheetResult is the tagged outcome of processing one sheet.
type SheetResult struct {
	Kind      ResultKind
	State     SheetState
	GrantCode string
	Inserted  int
	Created   bool

	// Warnings holds the skip reason and any row-level warnings, in order.
	Warnings []string

	// Cause is set only for KindFault.
	Cause error
}

func skipped(s *Skip, code string) SheetResult {
	return SheetResult{
		Kind:      KindSkip,
		State:     s.State,
		GrantCode: code,
		Warnings:  []string{s.Reason},
	}
}

func faulted(err error) SheetResult {
	return SheetResult{Kind: KindFault, Cause: err}
}

// CountsAsProcessed reports whether the sheet created a new grant and
// inserted at least one item.
func (r SheetResult) CountsAsProcessed() bool {
	return r.Kind == KindProcessed && r.Created && r.Inserted > 0
}
