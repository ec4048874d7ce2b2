package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/uydev/asset-tracker/internal/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MaxPageLimit bounds the page size of every analytics response.
const MaxPageLimit = 100

// Window sizes in days per time frame.
var timeFrameDays = map[string]int{
	"month":   30,
	"quarter": 90,
	"year":    365,
	"all":     3650,
}

// Analytics computes read-only rollups over the catalog, the directory and
// the ledgers. All monetary sums treat a missing purchase cost as 0 and
// every division guards against a zero denominator.
type Analytics struct {
	assets      db.AssetCollection
	assignments db.AssignmentCollection
	maintenance db.MaintenanceCollection
	categories  db.CategoryCollection

	now func() time.Time
}

// NewAnalytics creates an analytics aggregator.
func NewAnalytics(assets db.AssetCollection, assignments db.AssignmentCollection, maintenance db.MaintenanceCollection, categories db.CategoryCollection) *Analytics {
	return &Analytics{
		assets:      assets,
		assignments: assignments,
		maintenance: maintenance,
		categories:  categories,
		now:         time.Now,
	}
}

// Pagination describes one page of a rollup.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"total_count"`
	TotalPages int64 `json:"total_pages"`
}

// CategoryStat is the per-category rollup row.
type CategoryStat struct {
	CategoryID   string  `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Count        int64   `json:"count"`
	TotalValue   float64 `json:"total_value"`
}

// StatusStat is the per-status rollup row.
type StatusStat struct {
	Status     string  `json:"status"`
	Count      int64   `json:"count"`
	TotalValue float64 `json:"total_value"`
}

// MonthStat is one month bucket of a time-series rollup.
type MonthStat struct {
	Month      string  `json:"month"` // "2006-01"
	Count      int64   `json:"count"`
	TotalValue float64 `json:"total_value"`
}

// AgeBucket is one fixed age range of the age distribution.
type AgeBucket struct {
	Range      string  `json:"range"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// AssetStats is the response of the asset rollup endpoint.
type AssetStats struct {
	TimeFrame         string         `json:"time_frame"`
	TotalAssets       int64          `json:"total_assets"`
	TotalValue        float64        `json:"total_value"`
	Categories        []CategoryStat `json:"categories"`
	Statuses          []StatusStat   `json:"statuses"`
	AcquisitionMonths []MonthStat    `json:"acquisition_months"`
	AgeDistribution   []AgeBucket    `json:"age_distribution"`
	Pagination        Pagination     `json:"pagination"`
}

// DepartmentStat is the per-department rollup row.
type DepartmentStat struct {
	Department string  `json:"department"`
	Count      int64   `json:"count"`
	TotalValue float64 `json:"total_value"`
}

// DepartmentStats is the response of the department rollup endpoint.
type DepartmentStats struct {
	TimeFrame   string           `json:"time_frame"`
	Departments []DepartmentStat `json:"departments"`
	Pagination  Pagination       `json:"pagination"`
}

// MaintenanceStats is the response of the maintenance rollup endpoint.
type MaintenanceStats struct {
	TimeFrame  string      `json:"time_frame"`
	TotalCount int64       `json:"total_count"`
	TotalCost  float64     `json:"total_cost"`
	Months     []MonthStat `json:"months"`
	Pagination Pagination  `json:"pagination"`
}

// EmployeeStat is the per-employee rollup row.
type EmployeeStat struct {
	EmployeeID    string  `json:"employee_id"`
	Name          string  `json:"name"`
	Department    string  `json:"department"`
	AssignedCount int64   `json:"assigned_count"`
	TotalValue    float64 `json:"total_value"`
}

// EmployeeStats is the response of the employee rollup endpoint.
type EmployeeStats struct {
	Employees  []EmployeeStat `json:"employees"`
	Pagination Pagination     `json:"pagination"`
}

// AssetStats aggregates the catalog by category, status, acquisition month
// and age. The acquisition-month series is windowed and paginated by month
// bucket; the other breakdowns cover the whole catalog.
func (a *Analytics) AssetStats(ctx context.Context, timeFrame string, page, limit int) (*AssetStats, error) {
	now := a.now()
	timeFrame = normalizeTimeFrame(timeFrame)
	start := windowStart(timeFrame, now)

	stats := &AssetStats{
		TimeFrame:         timeFrame,
		Categories:        []CategoryStat{},
		Statuses:          []StatusStat{},
		AcquisitionMonths: []MonthStat{},
	}

	totals, err := a.assets.Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.M{
			"_id":         nil,
			"count":       bson.M{"$sum": 1},
			"total_value": bson.M{"$sum": bson.M{"$ifNull": bson.A{"$purchase_cost", 0}}},
		}}},
	})
	if err != nil {
		return nil, fmt.Errorf("asset totals: %w", err)
	}
	if len(totals) > 0 {
		stats.TotalAssets = toInt64(totals[0]["count"])
		stats.TotalValue = toFloat64(totals[0]["total_value"])
	}

	byCategory, err := a.assets.Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.M{
			"_id":         "$category_id",
			"count":       bson.M{"$sum": 1},
			"total_value": bson.M{"$sum": bson.M{"$ifNull": bson.A{"$purchase_cost", 0}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("category rollup: %w", err)
	}
	names, err := a.categoryNames(ctx)
	if err != nil {
		return nil, err
	}
	for _, row := range byCategory {
		id := toString(row["_id"])
		stats.Categories = append(stats.Categories, CategoryStat{
			CategoryID:   id,
			CategoryName: names[id],
			Count:        toInt64(row["count"]),
			TotalValue:   toFloat64(row["total_value"]),
		})
	}

	byStatus, err := a.assets.Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.M{
			"_id":         "$status",
			"count":       bson.M{"$sum": 1},
			"total_value": bson.M{"$sum": bson.M{"$ifNull": bson.A{"$purchase_cost", 0}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("status rollup: %w", err)
	}
	for _, row := range byStatus {
		stats.Statuses = append(stats.Statuses, StatusStat{
			Status:     toString(row["_id"]),
			Count:      toInt64(row["count"]),
			TotalValue: toFloat64(row["total_value"]),
		})
	}

	months, err := a.monthBuckets(ctx, a.assets, "$purchase_date", "$purchase_cost", start)
	if err != nil {
		return nil, fmt.Errorf("acquisition rollup: %w", err)
	}
	stats.Pagination = paginate(int64(len(months)), page, limit)
	stats.AcquisitionMonths = pageSliceMonths(months, stats.Pagination)

	buckets, err := a.ageDistribution(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("age distribution: %w", err)
	}
	stats.AgeDistribution = buckets

	return stats, nil
}

// DepartmentStats joins the open ledger entries to employees and assets and
// groups the assigned value per department, restricted to assets purchased
// within the window.
func (a *Analytics) DepartmentStats(ctx context.Context, timeFrame string, page, limit int) (*DepartmentStats, error) {
	timeFrame = normalizeTimeFrame(timeFrame)
	start := windowStart(timeFrame, a.now())

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"return_date": nil}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         db.EmployeesCollection,
			"localField":   "employee_id",
			"foreignField": "_id",
			"as":           "employee",
		}}},
		bson.D{{Key: "$unwind", Value: "$employee"}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         db.AssetsCollection,
			"localField":   "asset_id",
			"foreignField": "_id",
			"as":           "asset",
		}}},
		bson.D{{Key: "$unwind", Value: "$asset"}},
		bson.D{{Key: "$match", Value: bson.M{"asset.purchase_date": bson.M{"$gte": start}}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":         "$employee.department",
			"count":       bson.M{"$sum": 1},
			"total_value": bson.M{"$sum": bson.M{"$ifNull": bson.A{"$asset.purchase_cost", 0}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "total_value", Value: -1}}}},
	}
	rows, err := a.assignments.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("department rollup: %w", err)
	}

	departments := make([]DepartmentStat, 0, len(rows))
	for _, row := range rows {
		departments = append(departments, DepartmentStat{
			Department: toString(row["_id"]),
			Count:      toInt64(row["count"]),
			TotalValue: toFloat64(row["total_value"]),
		})
	}

	pg := paginate(int64(len(departments)), page, limit)
	lo, hi := pageBounds(len(departments), pg)
	return &DepartmentStats{
		TimeFrame:   timeFrame,
		Departments: departments[lo:hi],
		Pagination:  pg,
	}, nil
}

// MaintenanceStats groups maintenance episodes by month within the window.
func (a *Analytics) MaintenanceStats(ctx context.Context, timeFrame string, page, limit int) (*MaintenanceStats, error) {
	timeFrame = normalizeTimeFrame(timeFrame)
	start := windowStart(timeFrame, a.now())

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"maintenance_date": bson.M{"$gte": start}}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":         bson.M{"$dateToString": bson.M{"format": "%Y-%m", "date": "$maintenance_date"}},
			"count":       bson.M{"$sum": 1},
			"total_value": bson.M{"$sum": bson.M{"$ifNull": bson.A{"$cost", 0}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
	rows, err := a.maintenance.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("maintenance rollup: %w", err)
	}

	stats := &MaintenanceStats{TimeFrame: timeFrame, Months: []MonthStat{}}
	months := make([]MonthStat, 0, len(rows))
	for _, row := range rows {
		m := MonthStat{
			Month:      toString(row["_id"]),
			Count:      toInt64(row["count"]),
			TotalValue: toFloat64(row["total_value"]),
		}
		stats.TotalCount += m.Count
		stats.TotalCost += m.TotalValue
		months = append(months, m)
	}
	stats.Pagination = paginate(int64(len(months)), page, limit)
	stats.Months = pageSliceMonths(months, stats.Pagination)
	return stats, nil
}

// EmployeeStats lists the count and value of each employee's currently
// assigned assets, joined through the open ledger entries.
func (a *Analytics) EmployeeStats(ctx context.Context, page, limit int, sortBy, sortOrder string) (*EmployeeStats, error) {
	base := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"return_date": nil}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         db.AssetsCollection,
			"localField":   "asset_id",
			"foreignField": "_id",
			"as":           "asset",
		}}},
		bson.D{{Key: "$unwind", Value: bson.M{"path": "$asset", "preserveNullAndEmptyArrays": true}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":            "$employee_id",
			"name":           bson.M{"$first": "$employee_name"},
			"assigned_count": bson.M{"$sum": 1},
			"total_value":    bson.M{"$sum": bson.M{"$ifNull": bson.A{"$asset.purchase_cost", 0}}},
		}}},
	}

	countRows, err := a.assignments.Aggregate(ctx, append(append(mongo.Pipeline{}, base...),
		bson.D{{Key: "$count", Value: "total"}}))
	if err != nil {
		return nil, fmt.Errorf("employee rollup count: %w", err)
	}
	var total int64
	if len(countRows) > 0 {
		total = toInt64(countRows[0]["total"])
	}
	pg := paginate(total, page, limit)

	order := 1
	if sortOrder == "desc" {
		order = -1
	}
	pipeline := append(append(mongo.Pipeline{}, base...),
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         db.EmployeesCollection,
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "employee",
		}}},
		bson.D{{Key: "$addFields", Value: bson.M{
			"department": bson.M{"$arrayElemAt": bson.A{"$employee.department", 0}},
		}}},
		bson.D{{Key: "$project", Value: bson.M{"employee": 0}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: employeeSortField(sortBy), Value: order}, {Key: "_id", Value: 1}}}},
		bson.D{{Key: "$skip", Value: int64(pg.Page-1) * int64(pg.Limit)}},
		bson.D{{Key: "$limit", Value: int64(pg.Limit)}},
	)
	rows, err := a.assignments.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("employee rollup: %w", err)
	}

	employees := make([]EmployeeStat, 0, len(rows))
	for _, row := range rows {
		employees = append(employees, EmployeeStat{
			EmployeeID:    toString(row["_id"]),
			Name:          toString(row["name"]),
			Department:    toString(row["department"]),
			AssignedCount: toInt64(row["assigned_count"]),
			TotalValue:    toFloat64(row["total_value"]),
		})
	}
	return &EmployeeStats{Employees: employees, Pagination: pg}, nil
}

func (a *Analytics) categoryNames(ctx context.Context) (map[string]string, error) {
	categories, err := a.categories.FindCategories(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names, nil
}

func (a *Analytics) monthBuckets(ctx context.Context, coll db.AssetCollection, dateField, valueField string, start time.Time) ([]MonthStat, error) {
	fieldName := dateField[1:]
	rows, err := coll.Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{fieldName: bson.M{"$gte": start}}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":         bson.M{"$dateToString": bson.M{"format": "%Y-%m", "date": dateField}},
			"count":       bson.M{"$sum": 1},
			"total_value": bson.M{"$sum": bson.M{"$ifNull": bson.A{valueField, 0}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	})
	if err != nil {
		return nil, err
	}
	months := make([]MonthStat, 0, len(rows))
	for _, row := range rows {
		months = append(months, MonthStat{
			Month:      toString(row["_id"]),
			Count:      toInt64(row["count"]),
			TotalValue: toFloat64(row["total_value"]),
		})
	}
	return months, nil
}

func (a *Analytics) ageDistribution(ctx context.Context, now time.Time) ([]AgeBucket, error) {
	assets, err := a.assets.FindAssets(ctx, bson.M{"purchase_date": bson.M{"$ne": nil}})
	if err != nil {
		return nil, err
	}
	dates := make([]time.Time, 0, len(assets))
	for _, asset := range assets {
		if asset.PurchaseDate != nil {
			dates = append(dates, *asset.PurchaseDate)
		}
	}
	return ageBuckets(dates, now), nil
}

// ageBuckets distributes purchase dates over fixed one-year ranges.
// Percentages are computed over dated assets only; assets without a
// purchase_date are excluded from the distribution entirely. Rounded to one
// decimal, all 0 when there are no dated assets.
func ageBuckets(purchaseDates []time.Time, now time.Time) []AgeBucket {
	ranges := []string{"0-1 years", "1-2 years", "2-3 years", "3-4 years", "4+ years"}
	counts := make([]int64, len(ranges))
	for _, d := range purchaseDates {
		days := int(now.Sub(d).Hours() / 24)
		if days < 0 {
			days = 0
		}
		idx := days / 365
		if idx >= len(ranges) {
			idx = len(ranges) - 1
		}
		counts[idx]++
	}

	total := int64(len(purchaseDates))
	buckets := make([]AgeBucket, len(ranges))
	for i, r := range ranges {
		pct := 0.0
		if total > 0 {
			pct = round1(float64(counts[i]) / float64(total) * 100)
		}
		buckets[i] = AgeBucket{Range: r, Count: counts[i], Percentage: pct}
	}
	return buckets
}

// employeeSortField maps a sort_by query value to the pipeline field,
// defaulting to name.
func employeeSortField(sortBy string) string {
	switch sortBy {
	case "department":
		return "department"
	case "count":
		return "assigned_count"
	case "value":
		return "total_value"
	default:
		return "name"
	}
}

func normalizeTimeFrame(tf string) string {
	if _, ok := timeFrameDays[tf]; !ok {
		return "year"
	}
	return tf
}

// windowStart returns now minus the window of the time frame.
func windowStart(timeFrame string, now time.Time) time.Time {
	days, ok := timeFrameDays[timeFrame]
	if !ok {
		days = timeFrameDays["year"]
	}
	return now.AddDate(0, 0, -days)
}

// paginate clamps page and limit and computes total_pages as
// ceil(total_count/limit). Pages are 1-indexed.
func paginate(totalCount int64, page, limit int) Pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	totalPages := (totalCount + int64(limit) - 1) / int64(limit)
	return Pagination{Page: page, Limit: limit, TotalCount: totalCount, TotalPages: totalPages}
}

// pageBounds converts a pagination to slice bounds over n in-memory rows.
func pageBounds(n int, pg Pagination) (int, int) {
	lo := (pg.Page - 1) * pg.Limit
	if lo > n {
		lo = n
	}
	hi := lo + pg.Limit
	if hi > n {
		hi = n
	}
	return lo, hi
}

func pageSliceMonths(months []MonthStat, pg Pagination) []MonthStat {
	lo, hi := pageBounds(len(months), pg)
	out := make([]MonthStat, hi-lo)
	copy(out, months[lo:hi])
	return out
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int32:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func toFloat64(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}

func toString(v interface{}) string {
	s, _ := v.(string)
	return s
}
