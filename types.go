package macrolog

import "time"

// MealType classifies when during the day a meal was eaten.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// ValidMealTypes returns all valid meal types.
func ValidMealTypes() []MealType {
	return []MealType{MealBreakfast, MealLunch, MealDinner, MealSnack}
}

// IsValid checks if the meal type is one of the known values.
func (m MealType) IsValid() bool {
	for _, valid := range ValidMealTypes() {
		if m == valid {
			return true
		}
	}
	return false
}

// ItemKind discriminates the origin of a FoodItem.
type ItemKind string

const (
	// ItemTemplate marks an item derived from a stored FoodTemplate.
	ItemTemplate ItemKind = "template"
	// ItemRecorded marks an item written from scratch for a single meal.
	ItemRecorded ItemKind = "recorded"
)

// FoodTemplate is a reusable food definition. Templates are owned by the
// snapshot's template collection; meals reference them by TemplateID but
// never share storage with them.
type FoodTemplate struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Calories     float64   `json:"calories"`
	Protein      float64   `json:"protein"`
	Carbs        float64   `json:"carbs"`
	Fat          float64   `json:"fat"`
	ServingSize  string    `json:"serving_size,omitempty"`
	Category     string    `json:"category,omitempty"`
	Favorite     bool      `json:"favorite"`
	CatalogID    string    `json:"catalog_id,omitempty"`
	Brand        string    `json:"brand,omitempty"`
	Ingredients  string    `json:"ingredients,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	LastModified time.Time `json:"last_modified"`
}

// FoodItem is an immutable-at-creation snapshot of nutrition values embedded
// in exactly one MealEntry. Editing the originating template later does not
// change items already recorded from it.
type FoodItem struct {
	Kind        ItemKind  `json:"kind"`
	TemplateID  string    `json:"template_id,omitempty"`
	Name        string    `json:"name"`
	Calories    float64   `json:"calories"`
	Protein     float64   `json:"protein"`
	Carbs       float64   `json:"carbs"`
	Fat         float64   `json:"fat"`
	ServingSize string    `json:"serving_size,omitempty"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// ItemFromTemplate snapshots a template into a FoodItem.
func ItemFromTemplate(t FoodTemplate, now time.Time) FoodItem {
	return FoodItem{
		Kind:        ItemTemplate,
		TemplateID:  t.ID,
		Name:        t.Name,
		Calories:    t.Calories,
		Protein:     t.Protein,
		Carbs:       t.Carbs,
		Fat:         t.Fat,
		ServingSize: t.ServingSize,
		RecordedAt:  now,
	}
}

// MealEntry is one recorded meal on one calendar date.
type MealEntry struct {
	ID       string   `json:"id"`
	Item     FoodItem `json:"item"`
	Quantity float64  `json:"quantity"`
	Type     MealType `json:"type"`
	Date     string   `json:"date"`
}

// Totals holds the four derived daily aggregates. Values are unrounded;
// rounding is a presentation concern.
type Totals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// DailyLog is the per-date record of meals, derived totals, mood, water and
// weight. Totals must always equal the quantity-weighted sum over Meals.
type DailyLog struct {
	Date         string       `json:"date"`
	Meals        []MealEntry  `json:"meals"`
	Totals       Totals       `json:"totals"`
	Mood         int          `json:"mood,omitempty"` // 1-5, 0 = unset
	Note         string       `json:"note,omitempty"`
	WaterML      float64      `json:"water_ml"`
	Weight       *WeightEntry `json:"weight,omitempty"`
	LastModified time.Time    `json:"last_modified"`
}

// WeightEntry is one weight measurement. One entry per date, upsert semantics.
type WeightEntry struct {
	Date         string    `json:"date"`
	Weight       float64   `json:"weight"`
	Note         string    `json:"note,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// Goals holds the singleton nutrition targets.
type Goals struct {
	Calories     float64   `json:"calories"`
	Protein      float64   `json:"protein"`
	Carbs        float64   `json:"carbs"`
	Fat          float64   `json:"fat"`
	WaterML      float64   `json:"water_ml"`
	TargetWeight float64   `json:"target_weight,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Snapshot is the complete persisted state of goals, templates, daily logs
// and weight history at a point in time. CurrentDate is UI-session state and
// never participates in reconciliation.
type Snapshot struct {
	Goals         Goals                `json:"goals"`
	Templates     []FoodTemplate       `json:"templates"`
	Days          map[string]*DailyLog `json:"days"`
	WeightHistory []WeightEntry        `json:"weight_history"`
	CurrentDate   string               `json:"current_date,omitempty"`
	LastSync      time.Time            `json:"last_sync,omitempty"`
}

// NewSnapshot returns an empty snapshot with initialized containers.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Days: make(map[string]*DailyLog),
	}
}

// Day returns the log for a date, creating it with zeroed aggregates on
// first write.
func (s *Snapshot) Day(date string) *DailyLog {
	if s.Days == nil {
		s.Days = make(map[string]*DailyLog)
	}
	if log, ok := s.Days[date]; ok {
		return log
	}
	log := &DailyLog{Date: date, Meals: []MealEntry{}}
	s.Days[date] = log
	return log
}

// Template returns the template with the given id, or nil.
func (s *Snapshot) Template(id string) *FoodTemplate {
	for i := range s.Templates {
		if s.Templates[i].ID == id {
			return &s.Templates[i]
		}
	}
	return nil
}

// StoreStats contains statistics about the local store.
type StoreStats struct {
	DayCount        int       `json:"day_count"`
	MealCount       int       `json:"meal_count"`
	TemplateCount   int       `json:"template_count"`
	LastLocalUpdate time.Time `json:"last_local_update"`
	LastServerSync  time.Time `json:"last_server_sync"`
	SchemaVersion   string    `json:"schema_version"`
}

// Mood bounds.
const (
	MoodMin = 1
	MoodMax = 5
)

// DateLayout is the calendar-date key format used throughout the snapshot.
const DateLayout = "2006-01-02"
