// Package resultsservice implements the tally side of the voting context.
//
// The module counts the votes table by choice, publishes the tally to the
// scores topic on a fixed cadence, and answers the refresh, stats and export
// reads of the results API. Read failures never stop the aggregation loop;
// the next tick simply queries again.
package resultsservice
