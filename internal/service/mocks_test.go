package service

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/uydev/asset-tracker/internal/events"
	"github.com/uydev/asset-tracker/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MockAssetCollection is a mock implementation of db.AssetCollection.
type MockAssetCollection struct {
	mock.Mock
}

func (m *MockAssetCollection) InsertAsset(ctx context.Context, asset models.Asset) error {
	args := m.Called(ctx, asset)
	return args.Error(0)
}

func (m *MockAssetCollection) FindAssetByID(ctx context.Context, id string) (*models.Asset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Asset), args.Error(1)
}

func (m *MockAssetCollection) FindAssets(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Asset, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Asset), args.Error(1)
}

func (m *MockAssetCollection) UpdateAsset(ctx context.Context, id string, set bson.M) error {
	args := m.Called(ctx, id, set)
	return args.Error(0)
}

func (m *MockAssetCollection) DeleteAsset(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAssetCollection) CountAssets(ctx context.Context, filter bson.M) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAssetCollection) MarkAssigned(ctx context.Context, assetID string, requireUnassigned bool, rec models.AssignmentRecord) (bool, error) {
	args := m.Called(ctx, assetID, requireUnassigned, rec)
	return args.Bool(0), args.Error(1)
}

func (m *MockAssetCollection) MarkReturned(ctx context.Context, assetID string, rec models.AssignmentRecord, openCount int64) (bool, error) {
	args := m.Called(ctx, assetID, rec, openCount)
	return args.Bool(0), args.Error(1)
}

func (m *MockAssetCollection) ReleaseAssignment(ctx context.Context, assetID, assignmentID string) error {
	args := m.Called(ctx, assetID, assignmentID)
	return args.Error(0)
}

func (m *MockAssetCollection) AppendMaintenance(ctx context.Context, assetID string, status models.AssetStatus, rec models.MaintenanceRecord) error {
	args := m.Called(ctx, assetID, status, rec)
	return args.Error(0)
}

func (m *MockAssetCollection) CompleteMaintenance(ctx context.Context, assetID string, rec models.MaintenanceRecord) (bool, error) {
	args := m.Called(ctx, assetID, rec)
	return args.Bool(0), args.Error(1)
}

func (m *MockAssetCollection) Aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]bson.M, error) {
	args := m.Called(ctx, pipeline)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]bson.M), args.Error(1)
}

// MockEmployeeCollection is a mock implementation of db.EmployeeCollection.
type MockEmployeeCollection struct {
	mock.Mock
}

func (m *MockEmployeeCollection) InsertEmployee(ctx context.Context, employee models.Employee) error {
	args := m.Called(ctx, employee)
	return args.Error(0)
}

func (m *MockEmployeeCollection) FindEmployeeByID(ctx context.Context, id string) (*models.Employee, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Employee), args.Error(1)
}

func (m *MockEmployeeCollection) FindEmployees(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Employee, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Employee), args.Error(1)
}

func (m *MockEmployeeCollection) UpdateEmployee(ctx context.Context, id string, set bson.M) error {
	args := m.Called(ctx, id, set)
	return args.Error(0)
}

func (m *MockEmployeeCollection) DeleteEmployee(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEmployeeCollection) AddAssignment(ctx context.Context, employeeID string, snap models.AssetSnapshot, rec models.AssignmentRecord) error {
	args := m.Called(ctx, employeeID, snap, rec)
	return args.Error(0)
}

func (m *MockEmployeeCollection) RemoveAssignment(ctx context.Context, employeeID string, rec models.AssignmentRecord, openCount int64) error {
	args := m.Called(ctx, employeeID, rec, openCount)
	return args.Error(0)
}

// MockAssignmentCollection is a mock implementation of db.AssignmentCollection.
type MockAssignmentCollection struct {
	mock.Mock
}

func (m *MockAssignmentCollection) InsertAssignment(ctx context.Context, rec models.AssignmentRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockAssignmentCollection) FindAssignmentByID(ctx context.Context, id string) (*models.AssignmentRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AssignmentRecord), args.Error(1)
}

func (m *MockAssignmentCollection) FindAssignments(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.AssignmentRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AssignmentRecord), args.Error(1)
}

func (m *MockAssignmentCollection) CountOpenForAsset(ctx context.Context, assetID string) (int64, error) {
	args := m.Called(ctx, assetID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAssignmentCollection) CountOpenForEmployee(ctx context.Context, employeeID string) (int64, error) {
	args := m.Called(ctx, employeeID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAssignmentCollection) CloseAssignment(ctx context.Context, id string, returnDate time.Time, conditionAfter, notes string) (bool, error) {
	args := m.Called(ctx, id, returnDate, conditionAfter, notes)
	return args.Bool(0), args.Error(1)
}

func (m *MockAssignmentCollection) DeleteAssignment(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAssignmentCollection) Aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]bson.M, error) {
	args := m.Called(ctx, pipeline)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]bson.M), args.Error(1)
}

// MockMaintenanceCollection is a mock implementation of db.MaintenanceCollection.
type MockMaintenanceCollection struct {
	mock.Mock
}

func (m *MockMaintenanceCollection) InsertMaintenance(ctx context.Context, rec models.MaintenanceRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockMaintenanceCollection) FindMaintenanceByID(ctx context.Context, id string) (*models.MaintenanceRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MaintenanceRecord), args.Error(1)
}

func (m *MockMaintenanceCollection) FindMaintenanceRecords(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.MaintenanceRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MaintenanceRecord), args.Error(1)
}

func (m *MockMaintenanceCollection) CompleteMaintenance(ctx context.Context, rec models.MaintenanceRecord) (bool, error) {
	args := m.Called(ctx, rec)
	return args.Bool(0), args.Error(1)
}

func (m *MockMaintenanceCollection) DeleteMaintenance(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMaintenanceCollection) Aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]bson.M, error) {
	args := m.Called(ctx, pipeline)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]bson.M), args.Error(1)
}

// MockCategoryCollection is a mock implementation of db.CategoryCollection.
type MockCategoryCollection struct {
	mock.Mock
}

func (m *MockCategoryCollection) InsertCategory(ctx context.Context, category models.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryCollection) FindCategoryByID(ctx context.Context, id string) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryCollection) FindCategories(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Category, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockCategoryCollection) UpdateCategory(ctx context.Context, id string, set bson.M) error {
	args := m.Called(ctx, id, set)
	return args.Error(0)
}

func (m *MockCategoryCollection) DeleteCategory(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockRequestCollection is a mock implementation of db.RequestCollection.
type MockRequestCollection struct {
	mock.Mock
}

func (m *MockRequestCollection) InsertRequest(ctx context.Context, request models.Request) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockRequestCollection) FindRequestByID(ctx context.Context, id string) (*models.Request, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Request), args.Error(1)
}

func (m *MockRequestCollection) FindRequests(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Request, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Request), args.Error(1)
}

func (m *MockRequestCollection) UpdateRequest(ctx context.Context, id string, set bson.M) error {
	args := m.Called(ctx, id, set)
	return args.Error(0)
}

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) published() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Event, len(p.events))
	copy(out, p.events)
	return out
}
