package enums

import "fmt"

// ProposalType distinguishes photo and video service proposals.
type ProposalType string

const (
	ProposalTypePhoto ProposalType = "photo"
	ProposalTypeVideo ProposalType = "video"
)

var validProposalTypes = []ProposalType{
	ProposalTypePhoto,
	ProposalTypeVideo,
}

// String implements fmt.Stringer.
func (p ProposalType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProposalType.
func (p ProposalType) IsValid() bool {
	for _, candidate := range validProposalTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProposalType converts raw input into a ProposalType.
func ParseProposalType(value string) (ProposalType, error) {
	for _, candidate := range validProposalTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid proposal type %q", value)
}
