package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CastVoteRequest struct {
	Vote string `json:"vote"`
}

type CastVoteResponse struct {
	VoterID string `json:"voter_id"`
	Vote    string `json:"vote"`
	Queued  bool   `json:"queued"`
}

type OptionsResponse struct {
	OptionA  string `json:"option_a"`
	OptionB  string `json:"option_b"`
	Hostname string `json:"hostname"`
	VoterID  string `json:"voter_id"`
}
