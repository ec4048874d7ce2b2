package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/uydev/asset-tracker/internal/db"
	"github.com/uydev/asset-tracker/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EmployeeHandler exposes employee directory CRUD.
type EmployeeHandler struct {
	employees   db.EmployeeCollection
	assignments db.AssignmentCollection
}

// NewEmployeeHandler creates an employee handler.
func NewEmployeeHandler(employees db.EmployeeCollection, assignments db.AssignmentCollection) *EmployeeHandler {
	return &EmployeeHandler{employees: employees, assignments: assignments}
}

type createEmployeeBody struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Department string `json:"department"`
	Position   string `json:"position,omitempty"`
}

// Create handles POST /employees.
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body createEmployeeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Name == "" || body.Department == "" {
		respondError(w, http.StatusBadRequest, "name and department are required")
		return
	}

	employee := models.Employee{
		ID:         models.NewEmployeeID(),
		Name:       body.Name,
		Email:      body.Email,
		Phone:      body.Phone,
		Department: body.Department,
		Position:   body.Position,
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout*time.Second)
	defer cancel()

	if err := h.employees.InsertEmployee(ctx, employee); err != nil {
		respondServiceError(w, err)
		return
	}
	created, err := h.employees.FindEmployeeByID(ctx, employee.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// List handles GET /employees.
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout*time.Second)
	defer cancel()

	filter := bson.M{}
	if department := r.URL.Query().Get("department"); department != "" {
		filter["department"] = department
	}

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	employees, err := h.employees.FindEmployees(ctx, filter, opts)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if employees == nil {
		employees = []models.Employee{}
	}
	respondJSON(w, http.StatusOK, employees)
}

// Get handles GET /employees/{id}.
func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout*time.Second)
	defer cancel()

	employee, err := h.employees.FindEmployeeByID(ctx, mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "employee not found")
			return
		}
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, employee)
}

type updateEmployeeBody struct {
	Name       *string `json:"name,omitempty"`
	Email      *string `json:"email,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Department *string `json:"department,omitempty"`
	Position   *string `json:"position,omitempty"`
}

// Update handles PUT /employees/{id}.
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var body updateEmployeeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	set := bson.M{}
	if body.Name != nil {
		set["name"] = *body.Name
	}
	if body.Email != nil {
		set["email"] = *body.Email
	}
	if body.Phone != nil {
		set["phone"] = *body.Phone
	}
	if body.Department != nil {
		set["department"] = *body.Department
	}
	if body.Position != nil {
		set["position"] = *body.Position
	}
	if len(set) == 0 {
		respondError(w, http.StatusBadRequest, "no updatable fields in body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout*time.Second)
	defer cancel()

	id := mux.Vars(r)["id"]
	if err := h.employees.UpdateEmployee(ctx, id, set); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "employee not found")
			return
		}
		respondServiceError(w, err)
		return
	}

	employee, err := h.employees.FindEmployeeByID(ctx, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, employee)
}

// Delete handles DELETE /employees/{id}. An employee with open assignments
// cannot be deleted.
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout*time.Second)
	defer cancel()

	id := mux.Vars(r)["id"]
	openCount, err := h.assignments.CountOpenForEmployee(ctx, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if openCount > 0 {
		respondError(w, http.StatusConflict, "employee has active assignments")
		return
	}

	if err := h.employees.DeleteEmployee(ctx, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "employee not found")
			return
		}
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}
