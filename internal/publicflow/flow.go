package publicflow

import (
	"github.com/luminastudio/lumina-backend/pkg/enums"
	pkgerrors "github.com/luminastudio/lumina-backend/pkg/errors"
)

// Step is one position in the client-facing wizard. Only the proposal status
// is durable; the step is always derivable from it on reload.
type Step string

const (
	StepProposal  Step = "proposal"
	StepApproved  Step = "approved"
	StepForm      Step = "form"
	StepContract  Step = "contract"
	StepSignature Step = "signature"
	StepSuccess   Step = "success"
)

// Event is a client action that advances the wizard.
type Event string

const (
	EventApprove        Event = "approve"
	EventContinue       Event = "continue"
	EventSubmitForm     Event = "submit_form"
	EventAcceptContract Event = "accept_contract"
	EventSign           Event = "sign"
)

var transitions = map[Step]map[Event]Step{
	StepProposal: {
		EventApprove: StepApproved,
	},
	StepApproved: {
		EventContinue: StepForm,
	},
	StepForm: {
		EventSubmitForm: StepContract,
	},
	StepContract: {
		EventAcceptContract: StepSignature,
	},
	StepSignature: {
		EventSign: StepSuccess,
	},
}

// Next returns the step reached by applying the event, or a state conflict
// when the event is not valid at the current step. The wizard is strictly
// ordered; there are no backward edges.
//
// Next models the in-page wizard the client walks through between requests.
// The HTTP handlers themselves enforce legality through the proposal status
// machine and resume via StepForStatus; Next keeps the event ordering defined
// in one place for the clients that render the wizard.
func Next(current Step, event Event) (Step, error) {
	if targets, ok := transitions[current]; ok {
		if next, ok := targets[event]; ok {
			return next, nil
		}
	}
	return current, pkgerrors.New(pkgerrors.CodeStateConflict, "action not available at this step")
}

// StepForStatus derives the wizard position from the persisted status, so a
// returning client resumes where the record says, not where the browser left
// off.
func StepForStatus(status enums.ProposalStatus) Step {
	switch status {
	case enums.ProposalStatusApproved:
		return StepForm
	case enums.ProposalStatusSigned, enums.ProposalStatusPaid:
		return StepSuccess
	default:
		return StepProposal
	}
}
