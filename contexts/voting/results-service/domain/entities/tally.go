package entities

import (
	"math"
	"strings"
	"time"
)

type Choice string

const (
	ChoiceA Choice = "a"
	ChoiceB Choice = "b"
)

const (
	WinnerA   = "cats"
	WinnerB   = "dogs"
	WinnerTie = "tie"
)

// ChoiceCount is one row of the grouped count over the votes table.
type ChoiceCount struct {
	Choice string
	Count  int64
}

// Tally is the number of voters currently holding each choice.
type Tally struct {
	A int64
	B int64
}

// CollectTally folds grouped rows into a tally. Choices without a row stay at
// zero and rows for unknown choices are ignored.
func CollectTally(rows []ChoiceCount) Tally {
	var tally Tally
	for _, row := range rows {
		switch Choice(strings.ToLower(strings.TrimSpace(row.Choice))) {
		case ChoiceA:
			tally.A += row.Count
		case ChoiceB:
			tally.B += row.Count
		}
	}
	return tally
}

func (t Tally) Total() int64 {
	return t.A + t.B
}

// Percentages rounds each share independently; an empty tally splits 50/50.
func (t Tally) Percentages() (int, int) {
	total := t.Total()
	if total <= 0 {
		return 50, 50
	}
	a := math.Round(float64(t.A) / float64(total) * 100)
	b := math.Round(float64(t.B) / float64(total) * 100)
	return int(a), int(b)
}

func (t Tally) Winner() string {
	switch {
	case t.A > t.B:
		return WinnerA
	case t.B > t.A:
		return WinnerB
	default:
		return WinnerTie
	}
}

type Stats struct {
	Votes    Tally
	Total    int64
	PercentA int
	PercentB int
	At       time.Time
}

func NewStats(tally Tally, at time.Time) Stats {
	a, b := tally.Percentages()
	return Stats{
		Votes:    tally,
		Total:    tally.Total(),
		PercentA: a,
		PercentB: b,
		At:       at,
	}
}

type Export struct {
	ExportedAt time.Time
	TotalVotes int64
	Results    Tally
	Winner     string
}

func NewExport(tally Tally, at time.Time) Export {
	return Export{
		ExportedAt: at,
		TotalVotes: tally.Total(),
		Results:    tally,
		Winner:     tally.Winner(),
	}
}
