/*
Package resilience provides the circuit breakers used by the fetch client.

# Overview

Repairing a cross-origin style sheet means fetching it again out of band. A
page commonly pulls several sheets from the same CDN, so when that origin is
down every repair would otherwise wait out the full retry budget. A Group
keeps one Breaker per origin and fails those calls fast once the origin has
tripped.

# Usage

	group := resilience.NewGroup(resilience.Settings{
		MaxRequests: 2,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	err := group.Get(origin).Do(func() error {
		resp, err = req.Get(href)
		return err
	})

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           |
	                                           v
	                                         Open
*/
package resilience
