package entities

import "strings"

type Choice string

const (
	ChoiceA Choice = "a"
	ChoiceB Choice = "b"
)

// ParseChoice accepts the two ballot labels in any case.
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

// QueueItem is a decoded vote popped from the queue.
type QueueItem struct {
	VoterID string
	Choice  Choice
}

func (i QueueItem) Record() VoteRecord {
	return VoteRecord{VoterID: i.VoterID, Choice: i.Choice}
}

// VoteRecord is the persisted row: one per voter, latest choice wins.
type VoteRecord struct {
	VoterID string
	Choice  Choice
}

type UpsertOutcome string

const (
	UpsertInserted UpsertOutcome = "inserted"
	UpsertUpdated  UpsertOutcome = "updated"
)
