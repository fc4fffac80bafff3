package macrolog

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
)

type notifyEvent struct {
	Category NotifyCategory
	Outcome  NotifyOutcome
	Params   map[string]any
}

// captureNotifier records notifications for assertions.
type captureNotifier struct {
	mu     sync.Mutex
	events []notifyEvent
}

func (n *captureNotifier) Notify(category NotifyCategory, outcome NotifyOutcome, params map[string]any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notifyEvent{category, outcome, params})
}

func (n *captureNotifier) last() (notifyEvent, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.events) == 0 {
		return notifyEvent{}, false
	}
	return n.events[len(n.events)-1], true
}

func newTestClient(t *testing.T) (*Client, *captureNotifier) {
	t.Helper()
	cfg := Config{
		LocalPath: filepath.Join(t.TempDir(), "test.db"),
		AutoSync:  false,
	}
	client, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	notifier := &captureNotifier{}
	return client.WithNotifier(notifier), notifier
}

func testItem(name string, calories, protein, carbs, fat float64) FoodItem {
	return FoodItem{Name: name, Calories: calories, Protein: protein, Carbs: carbs, Fat: fat}
}

// assertInvariant checks that a day's stored totals equal the recomputed
// quantity-weighted sum over its meals.
func assertInvariant(t *testing.T, c *Client, date string) {
	t.Helper()
	day, ok := c.Day(date)
	if !ok {
		t.Fatalf("day %s missing", date)
	}
	want := RecomputeTotals(day.Meals)
	if day.Totals != want {
		t.Errorf("totals invariant violated: stored %+v, recomputed %+v", day.Totals, want)
	}
}

func TestAddMeal_RecomputesTotals(t *testing.T) {
	client, _ := newTestClient(t)

	entry, err := client.AddMeal("2024-01-10", testItem("Oatmeal", 150, 5, 27, 3), 2, MealBreakfast)
	if err != nil {
		t.Fatalf("AddMeal failed: %v", err)
	}
	if entry.ID == "" {
		t.Error("expected generated meal id")
	}

	day, _ := client.Day("2024-01-10")
	if day.Totals.Calories != 300 {
		t.Errorf("expected 300 kcal, got %v", day.Totals.Calories)
	}
	if day.LastModified.IsZero() {
		t.Error("expected LastModified stamped")
	}
	assertInvariant(t, client, "2024-01-10")
}

func TestAddMeal_Validation(t *testing.T) {
	client, notifier := newTestClient(t)

	tests := []struct {
		name     string
		date     string
		item     FoodItem
		qty      float64
		mealType MealType
		wantErr  error
	}{
		{"bad date", "10-01-2024", testItem("x", 1, 0, 0, 0), 1, MealLunch, ErrInvalidDate},
		{"empty name", "2024-01-10", testItem("", 1, 0, 0, 0), 1, MealLunch, ErrEmptyName},
		{"zero quantity", "2024-01-10", testItem("x", 1, 0, 0, 0), 0, MealLunch, ErrInvalidQuantity},
		{"negative quantity", "2024-01-10", testItem("x", 1, 0, 0, 0), -1, MealLunch, ErrInvalidQuantity},
		{"bad meal type", "2024-01-10", testItem("x", 1, 0, 0, 0), 1, MealType("brunch"), ErrInvalidMealType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.AddMeal(tt.date, tt.item, tt.qty, tt.mealType)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			event, ok := notifier.last()
			if !ok || event.Outcome != OutcomeInvalid {
				t.Errorf("expected invalid notification, got %+v", event)
			}
		})
	}

	// No state change from rejected mutations.
	if _, ok := client.Day("2024-01-10"); ok {
		t.Error("rejected mutations must not create state")
	}
}

func TestRemoveMeal_MissingIsNoop(t *testing.T) {
	client, _ := newTestClient(t)

	if err := client.RemoveMeal("2024-01-10", "nope"); err != nil {
		t.Errorf("removing from absent day should be a no-op: %v", err)
	}

	if _, err := client.AddMeal("2024-01-10", testItem("Rice", 200, 4, 44, 0), 1, MealDinner); err != nil {
		t.Fatalf("AddMeal failed: %v", err)
	}
	if err := client.RemoveMeal("2024-01-10", "nope"); err != nil {
		t.Errorf("removing unknown meal id should be a no-op: %v", err)
	}

	day, _ := client.Day("2024-01-10")
	if len(day.Meals) != 1 {
		t.Errorf("no-op removal changed the meal list: %d meals", len(day.Meals))
	}
}

func TestMealLifecycle_InvariantHolds(t *testing.T) {
	client, _ := newTestClient(t)
	date := "2024-01-10"

	first, err := client.AddMeal(date, testItem("Eggs", 70, 6, 0, 5), 3, MealBreakfast)
	if err != nil {
		t.Fatalf("AddMeal failed: %v", err)
	}
	second, err := client.AddMeal(date, testItem("Toast", 80, 3, 15, 1), 2, MealBreakfast)
	if err != nil {
		t.Fatalf("AddMeal failed: %v", err)
	}
	assertInvariant(t, client, date)

	// Remove then re-add.
	if err := client.RemoveMeal(date, first.ID); err != nil {
		t.Fatalf("RemoveMeal failed: %v", err)
	}
	assertInvariant(t, client, date)
	if _, err := client.AddMeal(date, first.Item, first.Quantity, first.Type); err != nil {
		t.Fatalf("re-add failed: %v", err)
	}
	assertInvariant(t, client, date)

	// Quantity-only edit re-derives from the full list.
	if err := client.UpdateMeal(date, second.ID, 0.5, MealSnack); err != nil {
		t.Fatalf("UpdateMeal failed: %v", err)
	}
	assertInvariant(t, client, date)

	day, _ := client.Day(date)
	want := 70*3 + 80*0.5
	if day.Totals.Calories != want {
		t.Errorf("expected %v kcal after edits, got %v", want, day.Totals.Calories)
	}
}

// TestAddWater_Accumulates: adding 500ml twice yields 1000ml, not 500.
func TestAddWater_Accumulates(t *testing.T) {
	client, _ := newTestClient(t)

	if err := client.AddWater("2024-01-10", 500); err != nil {
		t.Fatalf("AddWater failed: %v", err)
	}
	if err := client.AddWater("2024-01-10", 500); err != nil {
		t.Fatalf("AddWater failed: %v", err)
	}

	day, _ := client.Day("2024-01-10")
	if day.WaterML != 1000 {
		t.Errorf("expected 1000ml accumulated, got %v", day.WaterML)
	}
	if day.Totals != (Totals{}) {
		t.Errorf("water-only day should have zero aggregates, got %+v", day.Totals)
	}

	if err := client.ResetWater("2024-01-10"); err != nil {
		t.Fatalf("ResetWater failed: %v", err)
	}
	day, _ = client.Day("2024-01-10")
	if day.WaterML != 0 {
		t.Errorf("expected water reset, got %v", day.WaterML)
	}
}

func TestUpsertWeight_OneEntryPerDate(t *testing.T) {
	client, _ := newTestClient(t)

	if err := client.UpsertWeight("2024-01-10", 81.0, ""); err != nil {
		t.Fatalf("UpsertWeight failed: %v", err)
	}
	if err := client.UpsertWeight("2024-01-10", 80.4, "evening"); err != nil {
		t.Fatalf("UpsertWeight failed: %v", err)
	}
	if err := client.UpsertWeight("2024-01-11", 80.1, ""); err != nil {
		t.Fatalf("UpsertWeight failed: %v", err)
	}

	history := client.WeightHistory()
	if len(history) != 2 {
		t.Fatalf("expected 2 entries (upsert by date), got %d", len(history))
	}
	for _, w := range history {
		if w.Date == "2024-01-10" && w.Weight != 80.4 {
			t.Errorf("expected second measurement to replace first, got %v", w.Weight)
		}
	}

	day, _ := client.Day("2024-01-10")
	if day.Weight == nil || day.Weight.Weight != 80.4 {
		t.Errorf("weight-for-day not updated: %+v", day.Weight)
	}
}

func TestSetMood_CreatesDayAndValidates(t *testing.T) {
	client, _ := newTestClient(t)

	if err := client.SetMood("2024-01-10", 6, ""); !errors.Is(err, ErrInvalidMood) {
		t.Errorf("rating 6: expected ErrInvalidMood, got %v", err)
	}
	if err := client.SetMood("2024-01-10", 0, ""); !errors.Is(err, ErrInvalidMood) {
		t.Errorf("empty mood: expected ErrInvalidMood, got %v", err)
	}
	if _, ok := client.Day("2024-01-10"); ok {
		t.Fatal("rejected mood must not create the day")
	}

	if err := client.SetMood("2024-01-10", 4, "good run"); err != nil {
		t.Fatalf("SetMood failed: %v", err)
	}
	day, _ := client.Day("2024-01-10")
	if day.Mood != 4 || day.Note != "good run" {
		t.Errorf("mood not recorded: mood=%d note=%q", day.Mood, day.Note)
	}
	if day.Totals != (Totals{}) {
		t.Errorf("mood-only day should have zero aggregates, got %+v", day.Totals)
	}
}

func TestUpdateGoals_StampsTimestamp(t *testing.T) {
	client, _ := newTestClient(t)

	if err := client.UpdateGoals(Goals{Calories: 2200, Protein: 140, WaterML: 2500}); err != nil {
		t.Fatalf("UpdateGoals failed: %v", err)
	}

	goals := client.Goals()
	if goals.Calories != 2200 {
		t.Errorf("goals not stored: %+v", goals)
	}
	if goals.UpdatedAt.IsZero() {
		t.Error("expected UpdatedAt stamped")
	}
}

func TestTemplates_SnapshotCopySemantics(t *testing.T) {
	client, _ := newTestClient(t)

	tpl, err := client.AddTemplate(FoodTemplate{Name: "Protein Shake", Calories: 120, Protein: 24})
	if err != nil {
		t.Fatalf("AddTemplate failed: %v", err)
	}

	entry, err := client.AddMealFromTemplate("2024-01-10", tpl.ID, 1, MealSnack)
	if err != nil {
		t.Fatalf("AddMealFromTemplate failed: %v", err)
	}
	if entry.Item.Kind != ItemTemplate || entry.Item.TemplateID != tpl.ID {
		t.Errorf("expected template-tagged item, got %+v", entry.Item)
	}

	// Editing the template must not change the recorded meal.
	edited := *tpl
	edited.Calories = 200
	if err := client.UpdateTemplate(edited); err != nil {
		t.Fatalf("UpdateTemplate failed: %v", err)
	}

	day, _ := client.Day("2024-01-10")
	if day.Meals[0].Item.Calories != 120 {
		t.Errorf("recorded meal changed after template edit: %v", day.Meals[0].Item.Calories)
	}

	if err := client.ToggleFavorite(tpl.ID); err != nil {
		t.Fatalf("ToggleFavorite failed: %v", err)
	}
	templates := client.Templates()
	if len(templates) != 1 || !templates[0].Favorite {
		t.Errorf("favorite flag not toggled: %+v", templates)
	}

	if err := client.DeleteTemplate(tpl.ID); err != nil {
		t.Fatalf("DeleteTemplate failed: %v", err)
	}
	if err := client.DeleteTemplate(tpl.ID); err != nil {
		t.Errorf("deleting absent template should be a no-op: %v", err)
	}
	if len(client.Templates()) != 0 {
		t.Error("template not deleted")
	}

	// The recorded meal still carries its snapshotted values.
	day, _ = client.Day("2024-01-10")
	if day.Meals[0].Item.Calories != 120 {
		t.Error("recorded meal lost values after template deletion")
	}
}

func TestClient_PersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	cfg := Config{LocalPath: dbPath, AutoSync: false}

	client, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := client.AddMeal("2024-01-10", testItem("Curry", 550, 20, 60, 22), 1, MealDinner); err != nil {
		t.Fatalf("AddMeal failed: %v", err)
	}
	if err := client.AddWater("2024-01-10", 300); err != nil {
		t.Fatalf("AddWater failed: %v", err)
	}
	client.Close()

	client, err = New(cfg)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer client.Close()

	day, ok := client.Day("2024-01-10")
	if !ok {
		t.Fatal("day lost across reopen")
	}
	if len(day.Meals) != 1 || day.Totals.Calories != 550 || day.WaterML != 300 {
		t.Errorf("state lost across reopen: %+v", day)
	}
}

func TestClient_SnapshotIsACopy(t *testing.T) {
	client, _ := newTestClient(t)

	if _, err := client.AddMeal("2024-01-10", testItem("Soup", 90, 3, 10, 2), 1, MealLunch); err != nil {
		t.Fatalf("AddMeal failed: %v", err)
	}

	snap := client.Snapshot()
	snap.Days["2024-01-10"].Meals = nil
	snap.Days["2024-01-10"].Totals = Totals{}

	day, _ := client.Day("2024-01-10")
	if len(day.Meals) != 1 {
		t.Error("mutating a returned snapshot leaked into client state")
	}
}
