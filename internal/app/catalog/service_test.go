package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/platewise/platewise/internal/domain"
	"github.com/platewise/platewise/internal/infra/sqlite"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(db, log)
}

func createMeal(t *testing.T, svc *Service, name string) *domain.Meal {
	t.Helper()
	m, err := svc.CreateMeal(context.Background(), MealParams{
		Name:      name,
		Tags:      []string{"comfort"},
		Nutrition: &domain.Nutrition{Calories: 650, Protein: 35},
	})
	if err != nil {
		t.Fatalf("CreateMeal() error: %v", err)
	}
	return m
}

// ─── Meals ──────────────────────────────────────────────────────────────────

func TestCreateMeal(t *testing.T) {
	svc := newTestService(t)
	m := createMeal(t, svc, "Lemon Chicken")

	if m.ID == "" {
		t.Fatal("CreateMeal() should allocate an id")
	}
	got, err := svc.GetMeal(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("GetMeal() error: %v", err)
	}
	if got.Name != "Lemon Chicken" {
		t.Errorf("name = %q, want %q", got.Name, "Lemon Chicken")
	}
}

func TestCreateMeal_Validation(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.CreateMeal(context.Background(), MealParams{Name: "  "}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("CreateMeal(blank name) error = %v, want ErrInvalidInput", err)
	}
	if _, err := svc.CreateMeal(context.Background(), MealParams{Name: "Soup", FixedDay: "noday"}); !errors.Is(err, domain.ErrInvalidDay) {
		t.Errorf("CreateMeal(bad day) error = %v, want ErrInvalidDay", err)
	}
}

func TestUpdateMeal_KeepsID(t *testing.T) {
	svc := newTestService(t)
	m := createMeal(t, svc, "Old Name")

	got, err := svc.UpdateMeal(context.Background(), m.ID, MealParams{Name: "New Name", FixedDay: domain.Friday})
	if err != nil {
		t.Fatalf("UpdateMeal() error: %v", err)
	}
	if got.ID != m.ID {
		t.Errorf("id = %q, want unchanged %q", got.ID, m.ID)
	}
	if got.Name != "New Name" || got.FixedDay != domain.Friday {
		t.Errorf("meal = %+v, want renamed with friday fixed day", got)
	}
}

func TestUpdateMeal_NotFound(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.UpdateMeal(context.Background(), "MEAL-404", MealParams{Name: "X"}); !errors.Is(err, domain.ErrMealNotFound) {
		t.Errorf("UpdateMeal(missing) error = %v, want ErrMealNotFound", err)
	}
}

func TestDeleteMeal(t *testing.T) {
	svc := newTestService(t)
	m := createMeal(t, svc, "Short Lived")

	if err := svc.DeleteMeal(context.Background(), m.ID); err != nil {
		t.Fatalf("DeleteMeal() error: %v", err)
	}
	if _, err := svc.GetMeal(context.Background(), m.ID); !errors.Is(err, domain.ErrMealNotFound) {
		t.Errorf("GetMeal(deleted) error = %v, want ErrMealNotFound", err)
	}
}

// ─── Weekly Menu ────────────────────────────────────────────────────────────

func TestAssignDay_AndWeekMenu(t *testing.T) {
	svc := newTestService(t)
	m := createMeal(t, svc, "Beef Stew")

	if err := svc.AssignDay(context.Background(), domain.Monday, 16, 2025, m.ID); err != nil {
		t.Fatalf("AssignDay() error: %v", err)
	}

	menu, err := svc.WeekMenu(context.Background(), 16, 2025, false)
	if err != nil {
		t.Fatalf("WeekMenu() error: %v", err)
	}
	if len(menu.Days) != 7 {
		t.Fatalf("menu days = %d, want all 7", len(menu.Days))
	}
	if menu.Days[0].Day != domain.Monday || menu.Days[0].Meal == nil || menu.Days[0].Meal.ID != m.ID {
		t.Errorf("monday slot = %+v, want %s assigned", menu.Days[0], m.ID)
	}
	if menu.Days[1].Meal != nil {
		t.Errorf("tuesday slot = %+v, want empty", menu.Days[1])
	}
}

func TestAssignDay_Validation(t *testing.T) {
	svc := newTestService(t)
	m := createMeal(t, svc, "Valid Meal")

	if err := svc.AssignDay(context.Background(), "noday", 16, 2025, m.ID); !errors.Is(err, domain.ErrInvalidDay) {
		t.Errorf("AssignDay(bad day) error = %v, want ErrInvalidDay", err)
	}
	if err := svc.AssignDay(context.Background(), domain.Monday, 0, 2025, m.ID); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("AssignDay(week 0) error = %v, want ErrInvalidInput", err)
	}
	if err := svc.AssignDay(context.Background(), domain.Monday, 16, 2025, "MEAL-404"); !errors.Is(err, domain.ErrMealNotFound) {
		t.Errorf("AssignDay(missing meal) error = %v, want ErrMealNotFound", err)
	}
}

func TestAssignDay_ReplacesSlot(t *testing.T) {
	svc := newTestService(t)
	m1 := createMeal(t, svc, "First")
	m2 := createMeal(t, svc, "Second")

	svc.AssignDay(context.Background(), domain.Tuesday, 20, 2025, m1.ID)
	if err := svc.AssignDay(context.Background(), domain.Tuesday, 20, 2025, m2.ID); err != nil {
		t.Fatalf("AssignDay(replace) error: %v", err)
	}

	menu, _ := svc.WeekMenu(context.Background(), 20, 2025, false)
	if menu.Days[1].Meal == nil || menu.Days[1].Meal.ID != m2.ID {
		t.Errorf("tuesday slot = %+v, want replaced with %s", menu.Days[1], m2.ID)
	}
}

func TestSetDayActive_MissingAssignment(t *testing.T) {
	svc := newTestService(t)
	err := svc.SetDayActive(context.Background(), domain.Friday, 21, 2025, false)
	if !errors.Is(err, domain.ErrAssignmentNotFound) {
		t.Errorf("SetDayActive(missing slot) error = %v, want ErrAssignmentNotFound", err)
	}
}

func TestSetDayActive_HidesFromCustomers(t *testing.T) {
	svc := newTestService(t)
	m := createMeal(t, svc, "Togglable")
	svc.AssignDay(context.Background(), domain.Wednesday, 21, 2025, m.ID)

	if err := svc.SetDayActive(context.Background(), domain.Wednesday, 21, 2025, false); err != nil {
		t.Fatalf("SetDayActive() error: %v", err)
	}

	customer, _ := svc.WeekMenu(context.Background(), 21, 2025, false)
	if customer.Days[2].Meal != nil {
		t.Errorf("customer wednesday = %+v, want hidden", customer.Days[2])
	}
	admin, _ := svc.WeekMenu(context.Background(), 21, 2025, true)
	if admin.Days[2].Meal == nil {
		t.Error("admin view should still show the deactivated slot")
	}
}
