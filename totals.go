package macrolog

// RecomputeTotals derives the four daily aggregates from a meal list.
// Each meal contributes its per-serving values weighted by quantity.
// Pure and O(n); no rounding is applied at this layer.
func RecomputeTotals(meals []MealEntry) Totals {
	var t Totals
	for _, m := range meals {
		t.Calories += m.Item.Calories * m.Quantity
		t.Protein += m.Item.Protein * m.Quantity
		t.Carbs += m.Item.Carbs * m.Quantity
		t.Fat += m.Item.Fat * m.Quantity
	}
	return t
}

// recalc refreshes a day's stored totals from its full meal list. Totals are
// always re-derived from scratch rather than adjusted incrementally so that
// repeated edits cannot drift.
func (d *DailyLog) recalc() {
	d.Totals = RecomputeTotals(d.Meals)
}
