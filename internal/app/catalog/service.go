// Package catalog implements meal management and the weekly menu:
// admin CRUD over meals, weekday assignments per ISO week, and the
// customer-facing menu view.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/platewise/platewise/internal/domain"
	"github.com/platewise/platewise/internal/infra/sqlite"
)

// Service orchestrates catalog operations against the store.
type Service struct {
	store *sqlite.DB
	log   *slog.Logger
}

// NewService creates a catalog service.
func NewService(store *sqlite.DB, log *slog.Logger) *Service {
	return &Service{store: store, log: log.With("component", "catalog_service")}
}

// ─── Meals ──────────────────────────────────────────────────────────────────

// MealParams carries a meal create or update request.
type MealParams struct {
	Name        string            `json:"name"`
	ImageURL    string            `json:"image_url,omitempty"`
	Description string            `json:"description,omitempty"`
	Nutrition   *domain.Nutrition `json:"nutrition,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	FixedDay    domain.Weekday    `json:"fixed_day,omitempty"`
}

// CreateMeal adds a meal to the catalog.
func (s *Service) CreateMeal(ctx context.Context, p MealParams) (*domain.Meal, error) {
	if err := validateMeal(p); err != nil {
		return nil, err
	}
	now := time.Now()
	m := &domain.Meal{
		Name:        strings.TrimSpace(p.Name),
		ImageURL:    p.ImageURL,
		Description: p.Description,
		Nutrition:   p.Nutrition,
		Tags:        p.Tags,
		FixedDay:    p.FixedDay,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.InsertMeal(ctx, m); err != nil {
		return nil, err
	}
	s.log.Info("meal created", "meal_id", m.ID, "name", m.Name)
	return m, nil
}

// UpdateMeal replaces the mutable fields of a meal. The id never changes.
func (s *Service) UpdateMeal(ctx context.Context, id string, p MealParams) (*domain.Meal, error) {
	if err := validateMeal(p); err != nil {
		return nil, err
	}
	m, err := s.store.GetMeal(ctx, id)
	if err != nil {
		return nil, err
	}
	m.Name = strings.TrimSpace(p.Name)
	m.ImageURL = p.ImageURL
	m.Description = p.Description
	m.Nutrition = p.Nutrition
	m.Tags = p.Tags
	m.FixedDay = p.FixedDay
	m.UpdatedAt = time.Now()
	if err := s.store.UpdateMeal(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// GetMeal fetches one meal.
func (s *Service) GetMeal(ctx context.Context, id string) (*domain.Meal, error) {
	return s.store.GetMeal(ctx, id)
}

// ListMeals returns the whole catalog ordered by name.
func (s *Service) ListMeals(ctx context.Context) ([]domain.Meal, error) {
	return s.store.ListMeals(ctx)
}

// DeleteMeal removes a meal from the catalog. Existing orders keep
// their selections; they reference days, not meal rows.
func (s *Service) DeleteMeal(ctx context.Context, id string) error {
	if err := s.store.DeleteMeal(ctx, id); err != nil {
		return err
	}
	s.log.Info("meal deleted", "meal_id", id)
	return nil
}

// ─── Weekly Menu ────────────────────────────────────────────────────────────

// AssignDay puts a meal on a weekday of the given ISO week, replacing
// any previous assignment for that slot.
func (s *Service) AssignDay(ctx context.Context, day domain.Weekday, week, year int, mealID string) error {
	if !domain.ValidWeekday(day) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidDay, day)
	}
	if err := validWeek(week, year); err != nil {
		return err
	}
	if _, err := s.store.GetMeal(ctx, mealID); err != nil {
		return err
	}
	a := domain.WeeklyAssignment{
		Day: day, Week: week, Year: year,
		MealID: mealID, Active: true, UpdatedAt: time.Now(),
	}
	if err := s.store.UpsertAssignment(ctx, a); err != nil {
		return err
	}
	s.log.Info("menu day assigned", "day", day, "week", week, "year", year, "meal_id", mealID)
	return nil
}

// SetDayActive toggles customer visibility of a menu slot without
// touching the assignment itself.
func (s *Service) SetDayActive(ctx context.Context, day domain.Weekday, week, year int, active bool) error {
	if !domain.ValidWeekday(day) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidDay, day)
	}
	return s.store.SetAssignmentActive(ctx, day, week, year, active)
}

// MenuDay is one weekday slot of the menu, with the meal resolved when
// one is assigned.
type MenuDay struct {
	Day  domain.Weekday `json:"day"`
	Meal *domain.Meal   `json:"meal,omitempty"`
}

// Menu is the weekly menu for one ISO week, all seven days in order.
type Menu struct {
	Week int       `json:"week"`
	Year int       `json:"year"`
	Days []MenuDay `json:"days"`
}

// WeekMenu builds the menu for a week. Customers see only active
// assignments; admins pass includeInactive to see everything. Days
// without an assignment appear with a nil meal.
func (s *Service) WeekMenu(ctx context.Context, week, year int, includeInactive bool) (*Menu, error) {
	if err := validWeek(week, year); err != nil {
		return nil, err
	}
	assignments, err := s.store.ListAssignments(ctx, week, year, !includeInactive)
	if err != nil {
		return nil, err
	}

	byDay := make(map[domain.Weekday]string, len(assignments))
	for _, a := range assignments {
		byDay[a.Day] = a.MealID
	}

	menu := &Menu{Week: week, Year: year, Days: make([]MenuDay, 0, len(domain.Weekdays))}
	for _, day := range domain.Weekdays {
		slot := MenuDay{Day: day}
		if mealID, ok := byDay[day]; ok {
			meal, err := s.store.GetMeal(ctx, mealID)
			if err != nil {
				return nil, err
			}
			slot.Meal = meal
		}
		menu.Days = append(menu.Days, slot)
	}
	return menu, nil
}

// CurrentMenu returns the menu for the current ISO week.
func (s *Service) CurrentMenu(ctx context.Context, includeInactive bool) (*Menu, error) {
	year, week := time.Now().ISOWeek()
	return s.WeekMenu(ctx, week, year, includeInactive)
}

// ─── Validation ─────────────────────────────────────────────────────────────

func validateMeal(p MealParams) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: meal name is required", domain.ErrInvalidInput)
	}
	if p.FixedDay != "" && !domain.ValidWeekday(p.FixedDay) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidDay, p.FixedDay)
	}
	return nil
}

func validWeek(week, year int) error {
	if week < 1 || week > 53 {
		return fmt.Errorf("%w: week %d out of range", domain.ErrInvalidInput, week)
	}
	if year < 2000 || year > 2200 {
		return fmt.Errorf("%w: year %d out of range", domain.ErrInvalidInput, year)
	}
	return nil
}
