package domain

// ResolveAvailable computes a category's available balance for one month.
//
// With rollover on, the prior balance carries forward whatever its sign, so an
// overspent month deepens the next one. With rollover off the prior balance is
// dropped.
func ResolveAvailable(rolloverEnabled bool, prevAvailable, budgeted, activity Money) Money {
	var appliedPrev Money
	if rolloverEnabled {
		appliedPrev = prevAvailable
	}
	return appliedPrev.Add(budgeted).Sub(activity)
}

// Recompute refreshes PrevAvailable and Available for every loaded month from
// `from` onwards. A month's PrevAvailable comes from the month before it when
// that month is loaded; otherwise the stored seed is kept. Categories missing
// from the previous month start at zero.
func (b *Budget) Recompute(from Month) {
	months := b.Months()
	for _, m := range months {
		if m.Before(from) {
			continue
		}

		ledger := b.months[m]
		prev, hasPrev := b.months[m.Prev()]

		for i := range ledger.Figures {
			f := &ledger.Figures[i]
			if hasPrev {
				if pf, ok := prev.figure(f.CategoryID); ok {
					f.PrevAvailable = pf.Available
				} else {
					f.PrevAvailable = 0
				}
			}
			f.Available = ResolveAvailable(f.RolloverEnabled, f.PrevAvailable, f.Budgeted, f.Activity)
		}
	}
}
