package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/uydev/asset-tracker/internal/middleware"
)

// Routes bundles the handlers the router serves.
type Routes struct {
	Assets      *AssetHandler
	Employees   *EmployeeHandler
	Categories  *CategoryHandler
	Assignments *AssignmentHandler
	Maintenance *MaintenanceHandler
	Requests    *RequestHandler
	Analytics   *AnalyticsHandler
}

// NewRouter wires all endpoints and the middleware chain.
func NewRouter(routes Routes) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Recovery, middleware.CORS, middleware.Logging)

	r.HandleFunc("/health", Health).Methods(http.MethodGet)

	r.HandleFunc("/assets", routes.Assets.Create).Methods(http.MethodPost)
	r.HandleFunc("/assets", routes.Assets.List).Methods(http.MethodGet)
	r.HandleFunc("/assets/{id}", routes.Assets.Get).Methods(http.MethodGet)
	r.HandleFunc("/assets/{id}", routes.Assets.Update).Methods(http.MethodPut)
	r.HandleFunc("/assets/{id}", routes.Assets.Delete).Methods(http.MethodDelete)

	r.HandleFunc("/employees", routes.Employees.Create).Methods(http.MethodPost)
	r.HandleFunc("/employees", routes.Employees.List).Methods(http.MethodGet)
	r.HandleFunc("/employees/{id}", routes.Employees.Get).Methods(http.MethodGet)
	r.HandleFunc("/employees/{id}", routes.Employees.Update).Methods(http.MethodPut)
	r.HandleFunc("/employees/{id}", routes.Employees.Delete).Methods(http.MethodDelete)

	r.HandleFunc("/categories", routes.Categories.Create).Methods(http.MethodPost)
	r.HandleFunc("/categories", routes.Categories.List).Methods(http.MethodGet)
	r.HandleFunc("/categories/{id}", routes.Categories.Get).Methods(http.MethodGet)
	r.HandleFunc("/categories/{id}", routes.Categories.Update).Methods(http.MethodPut)
	r.HandleFunc("/categories/{id}", routes.Categories.Delete).Methods(http.MethodDelete)

	r.HandleFunc("/assignment-history/assign", routes.Assignments.Assign).Methods(http.MethodPost)
	r.HandleFunc("/assignment-history/unassign", routes.Assignments.Unassign).Methods(http.MethodPost)
	r.HandleFunc("/assignment-history", routes.Assignments.List).Methods(http.MethodGet)
	r.HandleFunc("/assignment-history/{id}", routes.Assignments.Get).Methods(http.MethodGet)

	r.HandleFunc("/maintenance-history/request", routes.Maintenance.Request).Methods(http.MethodPost)
	r.HandleFunc("/maintenance-history/update", routes.Maintenance.Update).Methods(http.MethodPost)
	r.HandleFunc("/maintenance-history", routes.Maintenance.List).Methods(http.MethodGet)

	r.HandleFunc("/requests", routes.Requests.Create).Methods(http.MethodPost)
	r.HandleFunc("/requests", routes.Requests.List).Methods(http.MethodGet)
	r.HandleFunc("/requests/{id}", routes.Requests.Get).Methods(http.MethodGet)
	r.HandleFunc("/requests/{id}", routes.Requests.UpdateStatus).Methods(http.MethodPut)

	r.HandleFunc("/analytics/assets", routes.Analytics.Assets).Methods(http.MethodGet)
	r.HandleFunc("/analytics/departments", routes.Analytics.Departments).Methods(http.MethodGet)
	r.HandleFunc("/analytics/maintenance", routes.Analytics.Maintenance).Methods(http.MethodGet)
	r.HandleFunc("/analytics/employees", routes.Analytics.Employees).Methods(http.MethodGet)

	return r
}

// Health reports service liveness.
func Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
