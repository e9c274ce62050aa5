package entities

import "strings"

type Choice string

const (
	ChoiceA Choice = "a"
	ChoiceB Choice = "b"
)

func ParseChoice(raw string) (Choice, bool) {
	switch Choice(strings.ToLower(strings.TrimSpace(raw))) {
	case ChoiceA:
		return ChoiceA, true
	case ChoiceB:
		return ChoiceB, true
	default:
		return "", false
	}
}

// Ballot is a vote accepted for queueing.
type Ballot struct {
	VoterID string
	Choice  Choice
}

// Options are the two labels shown to voters and the host serving them.
type Options struct {
	OptionA  string
	OptionB  string
	Hostname string
}
