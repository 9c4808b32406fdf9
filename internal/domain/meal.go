package domain

import "time"

// ─── Catalog Types ──────────────────────────────────────────────────────────

// Meal is a catalog item created by an admin. Identity is immutable,
// content is mutable. Orders snapshot the fields they need.
type Meal struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	ImageURL    string     `json:"image_url,omitempty"`
	Description string     `json:"description,omitempty"`
	Nutrition   *Nutrition `json:"nutrition,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	FixedDay    Weekday    `json:"fixed_day,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Nutrition holds optional per-meal macro metadata.
type Nutrition struct {
	Calories int `json:"calories,omitempty"`
	Protein  int `json:"protein,omitempty"`
	Carbs    int `json:"carbs,omitempty"`
	Fat      int `json:"fat,omitempty"`
}

// Weekday is a lowercase day name used as the selection key throughout
// the menu and order models.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Weekdays lists all days in menu order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ValidWeekday reports whether d is one of the seven day names.
func ValidWeekday(d Weekday) bool {
	for _, w := range Weekdays {
		if d == w {
			return true
		}
	}
	return false
}

// WeeklyAssignment maps a meal to a weekday of a specific ISO week.
// At most one assignment exists per (day, week, year) tuple; the active
// flag gates customer visibility without deleting the row.
type WeeklyAssignment struct {
	Day       Weekday   `json:"day"`
	Week      int       `json:"week"`
	Year      int       `json:"year"`
	MealID    string    `json:"meal_id"`
	Active    bool      `json:"active"`
	UpdatedAt time.Time `json:"updated_at"`
}
