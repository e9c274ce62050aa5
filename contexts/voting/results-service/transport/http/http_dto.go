package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type VotesDTO struct {
	A int64 `json:"a"`
	B int64 `json:"b"`
}

type PercentagesDTO struct {
	A int `json:"a"`
	B int `json:"b"`
}

type RefreshResponse struct {
	Success   bool     `json:"success"`
	Votes     VotesDTO `json:"votes"`
	Timestamp string   `json:"timestamp"`
}

type StatsResponse struct {
	Votes       VotesDTO       `json:"votes"`
	Total       int64          `json:"total"`
	Percentages PercentagesDTO `json:"percentages"`
	Timestamp   string         `json:"timestamp"`
}

type ExportResultsDTO struct {
	Cats int64 `json:"cats"`
	Dogs int64 `json:"dogs"`
}

type ExportResponse struct {
	ExportDate string           `json:"export_date"`
	TotalVotes int64            `json:"total_votes"`
	Results    ExportResultsDTO `json:"results"`
	Winner     string           `json:"winner"`
}
