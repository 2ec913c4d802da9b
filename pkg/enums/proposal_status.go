package enums

import "fmt"

// ProposalStatus tracks the lifecycle of a commercial proposal.
type ProposalStatus string

const (
	ProposalStatusDraft            ProposalStatus = "draft"
	ProposalStatusSent             ProposalStatus = "sent"
	ProposalStatusViewed           ProposalStatus = "viewed"
	ProposalStatusApproved         ProposalStatus = "approved"
	ProposalStatusChangesRequested ProposalStatus = "changes_requested"
	ProposalStatusSigned           ProposalStatus = "signed"
	ProposalStatusPaid             ProposalStatus = "paid"
	ProposalStatusCancelled        ProposalStatus = "cancelled"
)

var validProposalStatuses = []ProposalStatus{
	ProposalStatusDraft,
	ProposalStatusSent,
	ProposalStatusViewed,
	ProposalStatusApproved,
	ProposalStatusChangesRequested,
	ProposalStatusSigned,
	ProposalStatusPaid,
	ProposalStatusCancelled,
}

// String implements fmt.Stringer.
func (p ProposalStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProposalStatus.
func (p ProposalStatus) IsValid() bool {
	for _, candidate := range validProposalStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// OpenProposalStatuses returns the statuses a validity date can still lapse
// on: everything before signing.
func OpenProposalStatuses() []ProposalStatus {
	return []ProposalStatus{
		ProposalStatusDraft,
		ProposalStatusSent,
		ProposalStatusViewed,
		ProposalStatusApproved,
		ProposalStatusChangesRequested,
	}
}

// IsTerminal reports whether no further transition may leave this status.
func (p ProposalStatus) IsTerminal() bool {
	return p == ProposalStatusPaid || p == ProposalStatusCancelled
}

// ParseProposalStatus converts raw input into a ProposalStatus.
func ParseProposalStatus(value string) (ProposalStatus, error) {
	for _, candidate := range validProposalStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid proposal status %q", value)
}
