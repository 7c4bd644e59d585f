// Package schedule expands a goal's recurring weekly rules and point-in-time
// overrides into concrete occurrences, and owns the calendar rules the rest
// of the engine shares: day keys for one-pass-per-day, and the 7-day
// complete-week windows used by both the builder and the frequency
// aggregator.
//
// All calendar math runs in the goal's IANA timezone; instants leave the
// package in UTC.
package schedule
