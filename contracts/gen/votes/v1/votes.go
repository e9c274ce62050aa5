package v1

// QueueItem is the payload pushed onto the vote queue by the intake API and
// popped by the worker. Field names are part of the wire contract.
type QueueItem struct {
	Vote    string `json:"vote"`
	VoterID string `json:"voter_id"`
}

// Scores is the body of every frame published on the scores topic.
type Scores struct {
	A int64 `json:"a"`
	B int64 `json:"b"`
}

const (
	ChoiceA = "a"
	ChoiceB = "b"

	// DefaultQueueKey names the redis list shared by producer and consumer.
	DefaultQueueKey = "votes"
	// ScoresTopic is the broadcast topic and event name for live tallies.
	ScoresTopic = "scores"
)
