package macrolog

// MergeSnapshots reconciles a local and a remote snapshot entity by entity
// using last-write-wins on per-entity timestamps. Append-only sub-collections
// (meals, templates, weight history) are unioned rather than overwritten
// wholesale. Neither input is mutated. The merge is idempotent: merging the
// result with the same remote again yields the same state.
func MergeSnapshots(local, remote *Snapshot) *Snapshot {
	if remote == nil {
		return local
	}
	if local == nil {
		return remote
	}

	merged := NewSnapshot()

	// Goals: singleton, newer side wins.
	if remote.Goals.UpdatedAt.After(local.Goals.UpdatedAt) {
		merged.Goals = remote.Goals
	} else {
		merged.Goals = local.Goals
	}

	merged.Templates = mergeTemplates(local.Templates, remote.Templates)
	merged.WeightHistory = mergeWeights(local.WeightHistory, remote.WeightHistory)

	for date, log := range local.Days {
		merged.Days[date] = mergeDay(log, remote.Days[date])
	}
	for date, log := range remote.Days {
		if _, ok := local.Days[date]; !ok {
			merged.Days[date] = cloneDay(log)
		}
	}

	// Session fields are UI state, not sync data: always local.
	merged.CurrentDate = local.CurrentDate
	merged.LastSync = local.LastSync

	return merged
}

// mergeDay reconciles one date. The newer side becomes the base, then meals
// present only on the other side are appended, and the totals are recomputed
// over the union instead of trusting either side's stored aggregates.
func mergeDay(local, remote *DailyLog) *DailyLog {
	if remote == nil {
		return cloneDay(local)
	}
	if local == nil {
		return cloneDay(remote)
	}

	// Zero LastModified sorts as the epoch, so an unstamped side always
	// loses to a stamped one.
	base, other := local, remote
	if remote.LastModified.After(local.LastModified) {
		base, other = remote, local
	}

	day := cloneDay(base)
	seen := make(map[string]bool, len(day.Meals))
	for _, m := range day.Meals {
		seen[m.ID] = true
	}
	for _, m := range other.Meals {
		if !seen[m.ID] {
			day.Meals = append(day.Meals, m)
			seen[m.ID] = true
		}
	}

	day.recalc()
	return day
}

func mergeTemplates(local, remote []FoodTemplate) []FoodTemplate {
	out := make([]FoodTemplate, 0, len(local)+len(remote))
	index := make(map[string]int, len(local))
	for _, t := range local {
		index[t.ID] = len(out)
		out = append(out, t)
	}
	for _, t := range remote {
		i, ok := index[t.ID]
		if !ok {
			index[t.ID] = len(out)
			out = append(out, t)
			continue
		}
		if t.LastModified.After(out[i].LastModified) {
			out[i] = t
		}
	}
	return out
}

func mergeWeights(local, remote []WeightEntry) []WeightEntry {
	out := make([]WeightEntry, 0, len(local)+len(remote))
	index := make(map[string]int, len(local))
	for _, w := range local {
		index[w.Date] = len(out)
		out = append(out, w)
	}
	for _, w := range remote {
		i, ok := index[w.Date]
		if !ok {
			index[w.Date] = len(out)
			out = append(out, w)
			continue
		}
		if w.LastModified.After(out[i].LastModified) {
			out[i] = w
		}
	}
	return out
}

func cloneDay(d *DailyLog) *DailyLog {
	if d == nil {
		return nil
	}
	day := *d
	day.Meals = append([]MealEntry(nil), d.Meals...)
	if d.Weight != nil {
		w := *d.Weight
		day.Weight = &w
	}
	return &day
}
