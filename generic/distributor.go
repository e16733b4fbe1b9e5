/*
distributor.go - Priority-ordered consumption across several balance pools

PURPOSE:
  A person may pay for one day of leave from several funds. This file
  splits a requested amount across pools that are already in priority
  order:
  - First from the highest-priority pool that has a positive balance
  - Then from the next one, and so on
  - Whatever no pool can cover is reported as a shortfall

KEY CONCEPTS:
  Pool:
    A named balance at the moment of the request (key + available amount).

  ConsumptionDistributor:
    The greedy walk. It never goes back to a pool it already passed, never
    borrows from a later request, and never lets a pool go negative.

EXAMPLE:
  pools := []Pool{{Key: "GV", Available: Hours(4)}, {Key: "AGV", Available: Hours(40)}}
  d := (&ConsumptionDistributor{}).Distribute(pools, Hours(8))
  // d.Allocations = [{GV 4h} {AGV 4h}], d.IsSatisfiable = true

SEE ALSO:
  - balance.go: BalanceSheet builds pools and applies distributions
  - leave/calculator.go: Runs one distribution per leave day
*/
package generic

// =============================================================================
// POOLS
// =============================================================================

// Pool is one source of balance offered to the distributor.
type Pool struct {
	Key       string
	Available Amount
}

// =============================================================================
// CONSUMPTION DISTRIBUTOR - Splits consumption across pools
// =============================================================================

// ConsumptionDistribution describes how a request is split across pools
type ConsumptionDistribution struct {
	TotalRequested Amount
	Allocations    []PoolAllocation

	// Is the request fully satisfiable?
	IsSatisfiable bool
	Shortfall     Amount // How much is missing if not satisfiable
}

// PoolAllocation is the amount consumed from a specific pool
type PoolAllocation struct {
	Key    string
	Amount Amount
}

// ConsumptionDistributor determines how to split consumption across pools
type ConsumptionDistributor struct{}

// Distribute splits a request across pools in the order given.
func (cd *ConsumptionDistributor) Distribute(pools []Pool, requestedAmount Amount) *ConsumptionDistribution {
	var allocations []PoolAllocation
	remaining := requestedAmount

	for _, pool := range pools {
		if !remaining.IsPositive() {
			break
		}

		if !pool.Available.IsPositive() {
			continue
		}

		// Take min(remaining, available)
		toConsume := remaining.Min(pool.Available)

		allocations = append(allocations, PoolAllocation{
			Key:    pool.Key,
			Amount: toConsume,
		})

		remaining = remaining.Sub(toConsume)
	}

	shortfall := remaining.Max(remaining.Zero())
	return &ConsumptionDistribution{
		TotalRequested: requestedAmount,
		Allocations:    allocations,
		IsSatisfiable:  !shortfall.IsPositive(),
		Shortfall:      shortfall,
	}
}
