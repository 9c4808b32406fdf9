package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/platewise/platewise/internal/domain"
)

// ─── Meal Operations ────────────────────────────────────────────────────────

const mealColumns = `id, name, image_url, description, calories, protein, carbs, fat,
	tags_json, fixed_day, created_at, updated_at`

// InsertMeal persists a new catalog meal, allocating its id.
func (db *DB) InsertMeal(ctx context.Context, m *domain.Meal) error {
	tags, err := json.Marshal(m.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	return db.withTx(ctx, func(tx *sql.Tx) error {
		n, err := nextID(tx, "meal", 100)
		if err != nil {
			return err
		}
		m.ID = fmt.Sprintf("MEAL-%d", n)

		var cal, prot, carbs, fat any
		if m.Nutrition != nil {
			cal, prot, carbs, fat = m.Nutrition.Calories, m.Nutrition.Protein, m.Nutrition.Carbs, m.Nutrition.Fat
		}
		var fixedDay any
		if m.FixedDay != "" {
			fixedDay = string(m.FixedDay)
		}

		_, err = tx.Exec(`
			INSERT INTO meals (id, name, image_url, description, calories, protein, carbs, fat,
				tags_json, fixed_day, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, m.ID, m.Name, m.ImageURL, m.Description, cal, prot, carbs, fat,
			string(tags), fixedDay, formatTime(m.CreatedAt), formatTime(m.UpdatedAt))
		if err != nil {
			return fmt.Errorf("insert meal: %w", err)
		}
		return nil
	})
}

// UpdateMeal rewrites a meal's mutable content. Identity is immutable.
func (db *DB) UpdateMeal(ctx context.Context, m *domain.Meal) error {
	tags, err := json.Marshal(m.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	var cal, prot, carbs, fat any
	if m.Nutrition != nil {
		cal, prot, carbs, fat = m.Nutrition.Calories, m.Nutrition.Protein, m.Nutrition.Carbs, m.Nutrition.Fat
	}
	var fixedDay any
	if m.FixedDay != "" {
		fixedDay = string(m.FixedDay)
	}

	res, err := db.db.ExecContext(ctx, `
		UPDATE meals SET name = ?, image_url = ?, description = ?,
			calories = ?, protein = ?, carbs = ?, fat = ?,
			tags_json = ?, fixed_day = ?, updated_at = ?
		WHERE id = ?
	`, m.Name, m.ImageURL, m.Description, cal, prot, carbs, fat,
		string(tags), fixedDay, formatTime(time.Now()), m.ID)
	if err != nil {
		return fmt.Errorf("update meal: %w", err)
	}
	return requireRow(res, domain.ErrMealNotFound)
}

// GetMeal retrieves a meal by id.
func (db *DB) GetMeal(ctx context.Context, id string) (*domain.Meal, error) {
	return db.scanMeal(db.db.QueryRowContext(ctx,
		`SELECT `+mealColumns+` FROM meals WHERE id = ?`, id))
}

// ListMeals returns all meals ordered by name.
func (db *DB) ListMeals(ctx context.Context) ([]domain.Meal, error) {
	rows, err := db.db.QueryContext(ctx,
		`SELECT `+mealColumns+` FROM meals ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list meals: %w", err)
	}
	defer rows.Close()

	var out []domain.Meal
	for rows.Next() {
		m, err := db.scanMeal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// DeleteMeal removes a meal from the catalog. Orders keep their own
// snapshots, so history is unaffected.
func (db *DB) DeleteMeal(ctx context.Context, id string) error {
	res, err := db.db.ExecContext(ctx, `DELETE FROM meals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete meal: %w", err)
	}
	return requireRow(res, domain.ErrMealNotFound)
}

// ─── Weekly Assignment Operations ───────────────────────────────────────────

// UpsertAssignment inserts or overwrites the assignment for the
// (day, week, year) tuple. The uniqueness constraint guarantees at most
// one row per tuple.
func (db *DB) UpsertAssignment(ctx context.Context, a domain.WeeklyAssignment) error {
	_, err := db.db.ExecContext(ctx, `
		INSERT INTO weekly_assignments (day, week, year, meal_id, active, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(day, week, year) DO UPDATE SET
			meal_id    = excluded.meal_id,
			active     = excluded.active,
			updated_at = excluded.updated_at
	`, string(a.Day), a.Week, a.Year, a.MealID, boolToInt(a.Active), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("upsert assignment: %w", err)
	}
	return nil
}

// SetAssignmentActive toggles customer visibility without deleting the
// assignment.
func (db *DB) SetAssignmentActive(ctx context.Context, day domain.Weekday, week, year int, active bool) error {
	res, err := db.db.ExecContext(ctx, `
		UPDATE weekly_assignments SET active = ?, updated_at = ?
		WHERE day = ? AND week = ? AND year = ?
	`, boolToInt(active), formatTime(time.Now()), string(day), week, year)
	if err != nil {
		return fmt.Errorf("set assignment active: %w", err)
	}
	return requireRow(res, domain.ErrAssignmentNotFound)
}

// ListAssignments returns a week's assignments, optionally only active
// ones (the customer view).
func (db *DB) ListAssignments(ctx context.Context, week, year int, activeOnly bool) ([]domain.WeeklyAssignment, error) {
	q := `SELECT day, week, year, meal_id, active, updated_at
		  FROM weekly_assignments WHERE week = ? AND year = ?`
	if activeOnly {
		q += ` AND active = 1`
	}

	rows, err := db.db.QueryContext(ctx, q, week, year)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var out []domain.WeeklyAssignment
	for rows.Next() {
		var a domain.WeeklyAssignment
		var day, updated string
		var active int
		if err := rows.Scan(&day, &a.Week, &a.Year, &a.MealID, &active, &updated); err != nil {
			return nil, err
		}
		a.Day = domain.Weekday(day)
		a.Active = active == 1
		a.UpdatedAt = parseTime(updated)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (db *DB) scanMeal(row rowScanner) (*domain.Meal, error) {
	var m domain.Meal
	var imageURL, description sql.NullString
	var cal, prot, carbs, fat sql.NullInt64
	var tags string
	var fixedDay sql.NullString
	var created, updated string

	err := row.Scan(&m.ID, &m.Name, &imageURL, &description, &cal, &prot, &carbs, &fat,
		&tags, &fixedDay, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrMealNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan meal: %w", err)
	}

	m.ImageURL = imageURL.String
	m.Description = description.String
	if cal.Valid || prot.Valid || carbs.Valid || fat.Valid {
		m.Nutrition = &domain.Nutrition{
			Calories: int(cal.Int64),
			Protein:  int(prot.Int64),
			Carbs:    int(carbs.Int64),
			Fat:      int(fat.Int64),
		}
	}
	if err := json.Unmarshal([]byte(tags), &m.Tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	m.FixedDay = domain.Weekday(fixedDay.String)
	m.CreatedAt = parseTime(created)
	m.UpdatedAt = parseTime(updated)
	return &m, nil
}
