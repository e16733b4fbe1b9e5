package generic

// =============================================================================
// BALANCE SHEET - Running balances owned by a single computation
// =============================================================================

// BalanceSheet tracks the starting and remaining amount per pool key.
// It copies its input on construction, so the caller's map is never
// touched, and it is not safe for concurrent use: one computation owns one
// sheet.
type BalanceSheet struct {
	unit      Unit
	initial   map[string]Amount
	remaining map[string]Amount
}

// NewBalanceSheet copies the starting balances.
func NewBalanceSheet(unit Unit, initial map[string]Amount) *BalanceSheet {
	bs := &BalanceSheet{
		unit:      unit,
		initial:   make(map[string]Amount, len(initial)),
		remaining: make(map[string]Amount, len(initial)),
	}
	for k, v := range initial {
		bs.initial[k] = v
		bs.remaining[k] = v
	}
	return bs
}

func (bs *BalanceSheet) zero() Amount { return NewAmountFromInt(0, bs.unit) }

// Initial returns the starting balance, zero for unknown keys.
func (bs *BalanceSheet) Initial(key string) Amount {
	if v, ok := bs.initial[key]; ok {
		return v
	}
	return bs.zero()
}

// Remaining returns the balance left, zero for unknown keys.
func (bs *BalanceSheet) Remaining(key string) Amount {
	if v, ok := bs.remaining[key]; ok {
		return v
	}
	return bs.zero()
}

// Used returns Initial - Remaining.
func (bs *BalanceSheet) Used(key string) Amount {
	return bs.Initial(key).Sub(bs.Remaining(key))
}

// Pools snapshots the remaining balances of keys, preserving their order.
func (bs *BalanceSheet) Pools(keys []string) []Pool {
	pools := make([]Pool, 0, len(keys))
	for _, k := range keys {
		pools = append(pools, Pool{Key: k, Available: bs.Remaining(k)})
	}
	return pools
}

// Apply debits every allocation of a distribution.
func (bs *BalanceSheet) Apply(d *ConsumptionDistribution) {
	for _, a := range d.Allocations {
		bs.remaining[a.Key] = bs.Remaining(a.Key).Sub(a.Amount)
	}
}
