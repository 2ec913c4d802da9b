package proposals

import (
	"testing"

	"github.com/luminastudio/lumina-backend/pkg/enums"
)

func TestCanTransitionLifecyclePath(t *testing.T) {
	path := []enums.ProposalStatus{
		enums.ProposalStatusDraft,
		enums.ProposalStatusSent,
		enums.ProposalStatusViewed,
		enums.ProposalStatusApproved,
		enums.ProposalStatusSigned,
		enums.ProposalStatusPaid,
	}
	for i := 0; i < len(path)-1; i++ {
		if !CanTransition(path[i], path[i+1]) {
			t.Fatalf("expected %s -> %s to be allowed", path[i], path[i+1])
		}
	}
}

func TestCanTransitionRejectsShortcuts(t *testing.T) {
	cases := []struct {
		from enums.ProposalStatus
		to   enums.ProposalStatus
	}{
		{enums.ProposalStatusDraft, enums.ProposalStatusSigned},
		{enums.ProposalStatusDraft, enums.ProposalStatusApproved},
		{enums.ProposalStatusDraft, enums.ProposalStatusViewed},
		{enums.ProposalStatusSent, enums.ProposalStatusSigned},
		{enums.ProposalStatusViewed, enums.ProposalStatusPaid},
		{enums.ProposalStatusApproved, enums.ProposalStatusPaid},
		{enums.ProposalStatusSigned, enums.ProposalStatusApproved},
	}
	for _, tc := range cases {
		if CanTransition(tc.from, tc.to) {
			t.Fatalf("expected %s -> %s to be rejected", tc.from, tc.to)
		}
	}
}

func TestTerminalStatusesHaveNoExits(t *testing.T) {
	terminals := []enums.ProposalStatus{enums.ProposalStatusPaid, enums.ProposalStatusCancelled}
	all := []enums.ProposalStatus{
		enums.ProposalStatusDraft,
		enums.ProposalStatusSent,
		enums.ProposalStatusViewed,
		enums.ProposalStatusApproved,
		enums.ProposalStatusChangesRequested,
		enums.ProposalStatusSigned,
		enums.ProposalStatusPaid,
		enums.ProposalStatusCancelled,
	}
	for _, terminal := range terminals {
		for _, target := range all {
			if CanTransition(terminal, target) {
				t.Fatalf("terminal %s must not transition to %s", terminal, target)
			}
		}
	}
}

func TestChangesRequestedCanBeResentOrApproved(t *testing.T) {
	if !CanTransition(enums.ProposalStatusChangesRequested, enums.ProposalStatusSent) {
		t.Fatal("expected changes_requested -> sent")
	}
	if !CanTransition(enums.ProposalStatusChangesRequested, enums.ProposalStatusApproved) {
		t.Fatal("expected changes_requested -> approved")
	}
}

func TestIsEditable(t *testing.T) {
	editable := []enums.ProposalStatus{
		enums.ProposalStatusDraft,
		enums.ProposalStatusSent,
		enums.ProposalStatusViewed,
		enums.ProposalStatusChangesRequested,
	}
	for _, status := range editable {
		if !IsEditable(status) {
			t.Fatalf("expected %s to be editable", status)
		}
	}
	locked := []enums.ProposalStatus{
		enums.ProposalStatusApproved,
		enums.ProposalStatusSigned,
		enums.ProposalStatusPaid,
		enums.ProposalStatusCancelled,
	}
	for _, status := range locked {
		if IsEditable(status) {
			t.Fatalf("expected %s to be locked", status)
		}
	}
}
