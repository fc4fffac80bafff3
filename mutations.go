package macrolog

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Every mutation follows one shape: validate, locate or create the day,
// apply the change, recompute aggregates, stamp LastModified, persist
// write-through, notify, and arm the debounced background sync. Validation
// failures surface an "invalid" notification and return the sentinel error
// with no state change.

// AddMeal records a meal on a date. Items with an empty Kind are treated as
// written from scratch.
func (c *Client) AddMeal(date string, item FoodItem, quantity float64, mealType MealType) (*MealEntry, error) {
	if err := validateDate(date); err != nil {
		return nil, c.invalid(NotifyMeal, err)
	}
	if item.Name == "" {
		return nil, c.invalid(NotifyMeal, ErrEmptyName)
	}
	if quantity <= 0 {
		return nil, c.invalid(NotifyMeal, ErrInvalidQuantity)
	}
	if !mealType.IsValid() {
		return nil, c.invalid(NotifyMeal, ErrInvalidMealType)
	}

	now := c.now()
	if item.Kind == "" {
		item.Kind = ItemRecorded
	}
	if item.RecordedAt.IsZero() {
		item.RecordedAt = now
	}

	entry := MealEntry{
		ID:       ulid.Make().String(),
		Item:     item,
		Quantity: quantity,
		Type:     mealType,
		Date:     date,
	}

	c.mu.Lock()
	day := c.snap.Day(date)
	day.Meals = append(day.Meals, entry)
	day.recalc()
	day.LastModified = now
	err := c.store.SaveSnapshot(c.snap, now)
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}

	c.notifier.Notify(NotifyMeal, OutcomeAdded, map[string]any{"date": date, "name": item.Name})
	c.scheduleSync()
	return &entry, nil
}

// AddMealFromTemplate records a meal by snapshotting a stored template.
// The entry keeps its values even if the template changes later.
func (c *Client) AddMealFromTemplate(date, templateID string, quantity float64, mealType MealType) (*MealEntry, error) {
	c.mu.Lock()
	tpl := c.snap.Template(templateID)
	if tpl == nil {
		c.mu.Unlock()
		return nil, c.invalid(NotifyMeal, ErrTemplateNotFound)
	}
	item := ItemFromTemplate(*tpl, c.now())
	c.mu.Unlock()

	return c.AddMeal(date, item, quantity, mealType)
}

// RemoveMeal deletes a meal from a date. Removing a meal that does not exist
// is a no-op, not an error.
func (c *Client) RemoveMeal(date, mealID string) error {
	c.mu.Lock()
	day, ok := c.snap.Days[date]
	if !ok {
		c.mu.Unlock()
		return nil
	}

	idx := -1
	for i, m := range day.Meals {
		if m.ID == mealID {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return nil
	}

	now := c.now()
	day.Meals = append(day.Meals[:idx], day.Meals[idx+1:]...)
	day.recalc()
	day.LastModified = now
	err := c.store.SaveSnapshot(c.snap, now)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	c.notifier.Notify(NotifyMeal, OutcomeRemoved, map[string]any{"date": date})
	c.scheduleSync()
	return nil
}

// UpdateMeal edits the quantity and type of an existing meal. The day's
// totals are re-derived from the full meal list, not adjusted incrementally.
func (c *Client) UpdateMeal(date, mealID string, quantity float64, mealType MealType) error {
	if quantity <= 0 {
		return c.invalid(NotifyMeal, ErrInvalidQuantity)
	}
	if !mealType.IsValid() {
		return c.invalid(NotifyMeal, ErrInvalidMealType)
	}

	c.mu.Lock()
	day, ok := c.snap.Days[date]
	if !ok {
		c.mu.Unlock()
		return nil
	}

	updated := false
	for i := range day.Meals {
		if day.Meals[i].ID == mealID {
			day.Meals[i].Quantity = quantity
			day.Meals[i].Type = mealType
			updated = true
			break
		}
	}
	if !updated {
		c.mu.Unlock()
		return nil
	}

	now := c.now()
	day.recalc()
	day.LastModified = now
	err := c.store.SaveSnapshot(c.snap, now)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	c.notifier.Notify(NotifyMeal, OutcomeUpdated, map[string]any{"date": date})
	c.scheduleSync()
	return nil
}

// AddWater accumulates water intake on a date, creating the day on first
// write.
func (c *Client) AddWater(date string, ml float64) error {
	if err := validateDate(date); err != nil {
		return c.invalid(NotifyWater, err)
	}
	if ml <= 0 {
		return c.invalid(NotifyWater, ErrInvalidQuantity)
	}

	now := c.now()
	c.mu.Lock()
	day := c.snap.Day(date)
	day.WaterML += ml
	day.LastModified = now
	err := c.store.SaveSnapshot(c.snap, now)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	c.notifier.Notify(NotifyWater, OutcomeAdded, map[string]any{"date": date, "ml": ml})
	c.scheduleSync()
	return nil
}

// ResetWater clears a date's water accumulator.
func (c *Client) ResetWater(date string) error {
	c.mu.Lock()
	day, ok := c.snap.Days[date]
	if !ok || day.WaterML == 0 {
		c.mu.Unlock()
		return nil
	}

	now := c.now()
	day.WaterML = 0
	day.LastModified = now
	err := c.store.SaveSnapshot(c.snap, now)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	c.notifier.Notify(NotifyWater, OutcomeUpdated, map[string]any{"date": date})
	c.scheduleSync()
	return nil
}

// UpsertWeight records a weight measurement for a date: one entry per date
// in the history, plus the weight-for-day on the log itself.
func (c *Client) UpsertWeight(date string, weight float64, note string) error {
	if err := validateDate(date); err != nil {
		return c.invalid(NotifyWeight, err)
	}
	if weight <= 0 {
		return c.invalid(NotifyWeight, ErrInvalidQuantity)
	}

	now := c.now()
	entry := WeightEntry{Date: date, Weight: weight, Note: note, LastModified: now}

	c.mu.Lock()
	replaced := false
	for i := range c.snap.WeightHistory {
		if c.snap.WeightHistory[i].Date == date {
			c.snap.WeightHistory[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		c.snap.WeightHistory = append(c.snap.WeightHistory, entry)
	}

	day := c.snap.Day(date)
	day.Weight = &entry
	day.LastModified = now
	err := c.store.SaveSnapshot(c.snap, now)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	outcome := OutcomeAdded
	if replaced {
		outcome = OutcomeUpdated
	}
	c.notifier.Notify(NotifyWeight, outcome, map[string]any{"date": date, "weight": weight})
	c.scheduleSync()
	return nil
}

// UpdateGoals replaces the singleton nutrition targets.
func (c *Client) UpdateGoals(goals Goals) error {
	now := c.now()
	goals.UpdatedAt = now

	c.mu.Lock()
	c.snap.Goals = goals
	err := c.store.SaveSnapshot(c.snap, now)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	c.notifier.Notify(NotifyGoals, OutcomeUpdated, nil)
	c.scheduleSync()
	return nil
}

// SetMood records a mood rating (1-5) and optional note for a date, creating
// the day with zero aggregates if needed. A zero rating with an empty note
// carries no content and is rejected.
func (c *Client) SetMood(date string, rating int, note string) error {
	if err := validateDate(date); err != nil {
		return c.invalid(NotifyMood, err)
	}
	if rating == 0 && note == "" {
		return c.invalid(NotifyMood, ErrInvalidMood)
	}
	if rating != 0 && (rating < MoodMin || rating > MoodMax) {
		return c.invalid(NotifyMood, ErrInvalidMood)
	}

	now := c.now()
	c.mu.Lock()
	day := c.snap.Day(date)
	if rating != 0 {
		day.Mood = rating
	}
	day.Note = note
	day.LastModified = now
	err := c.store.SaveSnapshot(c.snap, now)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	c.notifier.Notify(NotifyMood, OutcomeUpdated, map[string]any{"date": date, "rating": rating})
	c.scheduleSync()
	return nil
}

// AddTemplate stores a reusable food definition.
func (c *Client) AddTemplate(tpl FoodTemplate) (*FoodTemplate, error) {
	if tpl.Name == "" {
		return nil, c.invalid(NotifyTemplate, ErrEmptyName)
	}

	now := c.now()
	if tpl.ID == "" {
		tpl.ID = ulid.Make().String()
	}
	tpl.CreatedAt = now
	tpl.LastModified = now

	c.mu.Lock()
	c.snap.Templates = append(c.snap.Templates, tpl)
	err := c.store.SaveSnapshot(c.snap, now)
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}

	c.notifier.Notify(NotifyTemplate, OutcomeAdded, map[string]any{"name": tpl.Name})
	c.scheduleSync()
	return &tpl, nil
}

// UpdateTemplate edits a stored template in place. Meals already recorded
// from it are unaffected.
func (c *Client) UpdateTemplate(tpl FoodTemplate) error {
	if tpl.Name == "" {
		return c.invalid(NotifyTemplate, ErrEmptyName)
	}

	c.mu.Lock()
	existing := c.snap.Template(tpl.ID)
	if existing == nil {
		c.mu.Unlock()
		return c.invalid(NotifyTemplate, ErrTemplateNotFound)
	}

	now := c.now()
	tpl.CreatedAt = existing.CreatedAt
	tpl.LastModified = now
	*existing = tpl
	err := c.store.SaveSnapshot(c.snap, now)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	c.notifier.Notify(NotifyTemplate, OutcomeUpdated, map[string]any{"name": tpl.Name})
	c.scheduleSync()
	return nil
}

// DeleteTemplate removes a template. Deleting an unknown id is a no-op.
// Meals recorded from the template keep their snapshotted values.
func (c *Client) DeleteTemplate(id string) error {
	c.mu.Lock()
	idx := -1
	for i := range c.snap.Templates {
		if c.snap.Templates[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return nil
	}

	now := c.now()
	c.snap.Templates = append(c.snap.Templates[:idx], c.snap.Templates[idx+1:]...)
	err := c.store.SaveSnapshot(c.snap, now)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	c.notifier.Notify(NotifyTemplate, OutcomeRemoved, nil)
	c.scheduleSync()
	return nil
}

// ToggleFavorite flips a template's favorite flag.
func (c *Client) ToggleFavorite(id string) error {
	c.mu.Lock()
	tpl := c.snap.Template(id)
	if tpl == nil {
		c.mu.Unlock()
		return c.invalid(NotifyTemplate, ErrTemplateNotFound)
	}

	now := c.now()
	tpl.Favorite = !tpl.Favorite
	tpl.LastModified = now
	err := c.store.SaveSnapshot(c.snap, now)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	c.notifier.Notify(NotifyTemplate, OutcomeUpdated, map[string]any{"favorite": tpl.Favorite})
	c.scheduleSync()
	return nil
}

// SetCurrentDate stores the UI's selected date. Session state: persisted so
// it survives restarts, but the local-update stamp is left untouched and no
// sync is scheduled.
func (c *Client) SetCurrentDate(date string) error {
	if err := validateDate(date); err != nil {
		return err
	}

	lastLocal, err := c.store.LastLocalUpdate()
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.snap.CurrentDate = date
	err = c.store.SaveSnapshot(c.snap, lastLocal)
	c.mu.Unlock()
	return err
}

// invalid reports a validation failure on the notification channel and
// returns the sentinel unchanged. No state was modified.
func (c *Client) invalid(category NotifyCategory, err error) error {
	c.notifier.Notify(category, OutcomeInvalid, map[string]any{"error": err.Error()})
	return err
}

func validateDate(date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return ErrInvalidDate
	}
	return nil
}
