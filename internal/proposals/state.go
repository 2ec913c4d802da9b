package proposals

import (
	"github.com/luminastudio/lumina-backend/pkg/enums"
)

// allowedTransitions is the authoritative proposal lifecycle. Anything not
// listed here is rejected with a state conflict.
var allowedTransitions = map[enums.ProposalStatus][]enums.ProposalStatus{
	enums.ProposalStatusDraft: {
		enums.ProposalStatusSent,
		enums.ProposalStatusCancelled,
	},
	enums.ProposalStatusSent: {
		enums.ProposalStatusViewed,
		enums.ProposalStatusApproved,
		enums.ProposalStatusChangesRequested,
		enums.ProposalStatusCancelled,
	},
	enums.ProposalStatusViewed: {
		enums.ProposalStatusApproved,
		enums.ProposalStatusChangesRequested,
		enums.ProposalStatusCancelled,
	},
	enums.ProposalStatusChangesRequested: {
		enums.ProposalStatusSent,
		enums.ProposalStatusApproved,
		enums.ProposalStatusCancelled,
	},
	enums.ProposalStatusApproved: {
		enums.ProposalStatusSigned,
		enums.ProposalStatusCancelled,
	},
	enums.ProposalStatusSigned: {
		enums.ProposalStatusPaid,
		enums.ProposalStatusCancelled,
	},
}

// CanTransition reports whether moving a proposal from one status to another
// is part of the lifecycle. Terminal statuses have no outgoing edges.
func CanTransition(from, to enums.ProposalStatus) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// editableStatuses lists the statuses in which the photographer may still
// change a proposal's content. After approval the client is acting on a fixed
// document, so edits are blocked.
var editableStatuses = map[enums.ProposalStatus]bool{
	enums.ProposalStatusDraft:            true,
	enums.ProposalStatusSent:             true,
	enums.ProposalStatusViewed:           true,
	enums.ProposalStatusChangesRequested: true,
}

// IsEditable reports whether proposal content may still be modified.
func IsEditable(status enums.ProposalStatus) bool {
	return editableStatuses[status]
}
