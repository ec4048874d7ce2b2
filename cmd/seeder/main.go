package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

// Category mirrors the API payload for creating an asset category.
type Category struct {
	Name                     string `json:"name"`
	Description              string `json:"description,omitempty"`
	AllowMultipleAssignments bool   `json:"allow_multiple_assignments"`
	RequiresMaintenance      bool   `json:"requires_maintenance"`
	MaintenanceFrequency     string `json:"maintenance_frequency,omitempty"`
}

// Employee mirrors the API payload for creating an employee.
type Employee struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Position   string `json:"position,omitempty"`
}

// Asset mirrors the API payload for creating an asset.
type Asset struct {
	Name         string    `json:"name"`
	CategoryID   string    `json:"category_id"`
	SerialNumber string    `json:"serial_number,omitempty"`
	Status       string    `json:"status,omitempty"`
	Department   string    `json:"department,omitempty"`
	PurchaseCost float64   `json:"purchase_cost,omitempty"`
	PurchaseDate time.Time `json:"purchase_date,omitempty"`
}

var departments = []string{"Engineering", "Finance", "Operations", "Marketing", "HR", "Sales"}

var categoryPool = []Category{
	{Name: "Laptops", AllowMultipleAssignments: false, RequiresMaintenance: true, MaintenanceFrequency: "6 months"},
	{Name: "Monitors", AllowMultipleAssignments: false, RequiresMaintenance: false},
	{Name: "Vehicles", AllowMultipleAssignments: false, RequiresMaintenance: true, MaintenanceFrequency: "90 days"},
	{Name: "Software Licenses", AllowMultipleAssignments: true, RequiresMaintenance: false},
	{Name: "Power Tools", AllowMultipleAssignments: false, RequiresMaintenance: true, MaintenanceFrequency: "1 years"},
}

var assetNames = map[string][]string{
	"Laptops":           {"MacBook Pro 14", "ThinkPad X1 Carbon", "Dell XPS 15", "HP EliteBook 840"},
	"Monitors":          {"Dell U2723QE", "LG UltraFine 27", "BenQ PD2705U", "Samsung S80A"},
	"Vehicles":          {"Ford Transit", "Toyota Hilux", "VW Caddy", "Renault Kangoo"},
	"Software Licenses": {"JetBrains All Products", "Adobe Creative Cloud", "Microsoft 365 E3", "Figma Professional"},
	"Power Tools":       {"Makita Drill Set", "Bosch Angle Grinder", "DeWalt Circular Saw", "Hilti Rotary Hammer"},
}

var firstNames = []string{"Alice", "Bruno", "Carmen", "Deniz", "Elena", "Farid", "Grace", "Hiro", "Ines", "Jonas", "Katya", "Luis"}
var lastNames = []string{"Walker", "Demir", "Okafor", "Svensson", "Moreau", "Tanaka", "Costa", "Novak", "Ferrari", "Haddad"}

func postJSON(apiURL, path string, payload interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(apiURL+path, "application/json", bytes.NewBuffer(data))
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", path, resp.StatusCode)
	}
	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return result, nil
}

func createCategories(apiURL string) (map[string]string, error) {
	ids := make(map[string]string, len(categoryPool))
	for _, c := range categoryPool {
		result, err := postJSON(apiURL, "/categories", c)
		if err != nil {
			return nil, err
		}
		id, ok := result["id"].(string)
		if !ok {
			return nil, fmt.Errorf("invalid category ID in response")
		}
		ids[c.Name] = id
		log.WithFields(log.Fields{"category_id": id, "name": c.Name}).Info("Created category")
	}
	return ids, nil
}

func createEmployees(apiURL string, count int) ([]string, error) {
	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		first := firstNames[rand.Intn(len(firstNames))]
		last := lastNames[rand.Intn(len(lastNames))]
		emp := Employee{
			Name:       first + " " + last,
			Email:      fmt.Sprintf("%s.%s%d@example.com", first, last, i),
			Department: departments[rand.Intn(len(departments))],
			Position:   "Staff",
		}
		result, err := postJSON(apiURL, "/employees", emp)
		if err != nil {
			return nil, err
		}
		id, ok := result["id"].(string)
		if !ok {
			return nil, fmt.Errorf("invalid employee ID in response")
		}
		ids = append(ids, id)
		log.WithFields(log.Fields{"employee_id": id, "name": emp.Name}).Info("Created employee")
	}
	return ids, nil
}

func createAssets(apiURL string, categoryIDs map[string]string, count int) ([]string, error) {
	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		cat := categoryPool[rand.Intn(len(categoryPool))]
		names := assetNames[cat.Name]
		ageDays := rand.Intn(5 * 365)
		asset := Asset{
			Name:         names[rand.Intn(len(names))],
			CategoryID:   categoryIDs[cat.Name],
			SerialNumber: fmt.Sprintf("SN-%06d", rand.Intn(1000000)),
			Department:   departments[rand.Intn(len(departments))],
			PurchaseCost: 100 + rand.Float64()*4900,
			PurchaseDate: time.Now().AddDate(0, 0, -ageDays),
		}
		result, err := postJSON(apiURL, "/assets", asset)
		if err != nil {
			return nil, err
		}
		id, ok := result["id"].(string)
		if !ok {
			return nil, fmt.Errorf("invalid asset ID in response")
		}
		ids = append(ids, id)
		log.WithFields(log.Fields{"asset_id": id, "name": asset.Name, "category": cat.Name}).Info("Created asset")
	}
	return ids, nil
}

func assignAssets(apiURL string, assetIDs, employeeIDs []string) []string {
	assignmentIDs := make([]string, 0)
	for _, assetID := range assetIDs {
		if rand.Float64() > 0.6 {
			continue
		}
		employeeID := employeeIDs[rand.Intn(len(employeeIDs))]
		payload := map[string]interface{}{
			"asset_id":       assetID,
			"employee_id":    employeeID,
			"duration_value": 1 + rand.Intn(12),
			"duration_unit":  "month",
		}
		result, err := postJSON(apiURL, "/assignment-history/assign", payload)
		if err != nil {
			log.WithError(err).WithField("asset_id", assetID).Warn("Assignment failed")
			continue
		}
		id, _ := result["assignment_id"].(string)
		assignmentIDs = append(assignmentIDs, id)
		log.WithFields(log.Fields{
			"assignment_id": id,
			"asset_id":      assetID,
			"employee_id":   employeeID,
		}).Info("Assigned asset")
	}
	return assignmentIDs
}

func returnSome(apiURL string, assignmentIDs []string) {
	for _, id := range assignmentIDs {
		if rand.Float64() > 0.3 {
			continue
		}
		payload := map[string]interface{}{
			"assignment_id":   id,
			"condition_after": "good",
			"notes":           "seeded return",
		}
		if _, err := postJSON(apiURL, "/assignment-history/unassign", payload); err != nil {
			log.WithError(err).WithField("assignment_id", id).Warn("Return failed")
			continue
		}
		log.WithField("assignment_id", id).Info("Returned asset")
	}
}

func main() {
	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080"
	}
	assetCount := 40
	if v := os.Getenv("SEED_ASSETS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			assetCount = n
		}
	}
	employeeCount := 12
	if v := os.Getenv("SEED_EMPLOYEES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			employeeCount = n
		}
	}

	log.WithFields(log.Fields{
		"api_url":   apiURL,
		"assets":    assetCount,
		"employees": employeeCount,
	}).Info("Seeding asset tracker")

	categoryIDs, err := createCategories(apiURL)
	if err != nil {
		log.WithError(err).Fatal("Failed to create categories")
	}
	employeeIDs, err := createEmployees(apiURL, employeeCount)
	if err != nil {
		log.WithError(err).Fatal("Failed to create employees")
	}
	assetIDs, err := createAssets(apiURL, categoryIDs, assetCount)
	if err != nil {
		log.WithError(err).Fatal("Failed to create assets")
	}

	assignmentIDs := assignAssets(apiURL, assetIDs, employeeIDs)
	returnSome(apiURL, assignmentIDs)

	log.WithFields(log.Fields{
		"categories":  len(categoryIDs),
		"employees":   len(employeeIDs),
		"assets":      len(assetIDs),
		"assignments": len(assignmentIDs),
	}).Info("Seeding complete")
}
