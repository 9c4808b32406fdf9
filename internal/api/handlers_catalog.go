package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/platewise/platewise/internal/app/catalog"
	"github.com/platewise/platewise/internal/domain"
)

// ─── Menu & Meals (public) ──────────────────────────────────────────────────

func (s *Server) handleCurrentMenu(w http.ResponseWriter, r *http.Request) {
	menu, err := s.catalog.CurrentMenu(r.Context(), false)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, menu)
}

func (s *Server) handleWeekMenu(w http.ResponseWriter, r *http.Request) {
	year, err1 := strconv.Atoi(chi.URLParam(r, "year"))
	week, err2 := strconv.Atoi(chi.URLParam(r, "week"))
	if err1 != nil || err2 != nil {
		writeBadRequest(w, "year and week must be numbers")
		return
	}
	menu, err := s.catalog.WeekMenu(r.Context(), week, year, false)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, menu)
}

func (s *Server) handleListMeals(w http.ResponseWriter, r *http.Request) {
	meals, err := s.catalog.ListMeals(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, meals)
}

func (s *Server) handleGetMeal(w http.ResponseWriter, r *http.Request) {
	meal, err := s.catalog.GetMeal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, meal)
}

// ─── Admin: Meals & Menu ────────────────────────────────────────────────────

func (s *Server) handleCreateMeal(w http.ResponseWriter, r *http.Request) {
	var p catalog.MealParams
	if err := decode(r, &p); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	meal, err := s.catalog.CreateMeal(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, meal)
}

func (s *Server) handleUpdateMeal(w http.ResponseWriter, r *http.Request) {
	var p catalog.MealParams
	if err := decode(r, &p); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	meal, err := s.catalog.UpdateMeal(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, meal)
}

func (s *Server) handleDeleteMeal(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.DeleteMeal(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type assignRequest struct {
	Day    domain.Weekday `json:"day"`
	Week   int            `json:"week"`
	Year   int            `json:"year"`
	MealID string         `json:"meal_id"`
	Active bool           `json:"active"`
}

func (s *Server) handleAssignDay(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if err := s.catalog.AssignDay(r.Context(), req.Day, req.Week, req.Year, req.MealID); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"status": "assigned"})
}

func (s *Server) handleSetDayActive(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if err := s.catalog.SetDayActive(r.Context(), req.Day, req.Week, req.Year, req.Active); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"status": "updated"})
}
