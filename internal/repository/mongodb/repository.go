package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/plantops/capaplan/internal/domain/models"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("document not found")

// Repository defines the interface for planning result storage.
type Repository interface {
	SaveSchedule(ctx context.Context, schedule models.CapacitySchedule) error
	GetSchedule(ctx context.Context, id string) (*models.CapacitySchedule, error)
	ReplaceSchedule(ctx context.Context, schedule models.CapacitySchedule) error
	ListSchedulesByClient(ctx context.Context, clientID string) ([]models.CapacitySchedule, error)
	ListAtRiskSchedules(ctx context.Context) ([]models.CapacitySchedule, error)
	SaveScenarioRun(ctx context.Context, run models.ScenarioRun) error
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client        *mongo.Client
	dbName        string
	schedulesColl string
	scenariosColl string
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client:        client,
		dbName:        dbName,
		schedulesColl: "capacity_schedules",
		scenariosColl: "scenario_runs",
	}, nil
}

// SaveSchedule inserts a freshly generated schedule.
func (r *MongoDBRepository) SaveSchedule(ctx context.Context, schedule models.CapacitySchedule) error {
	collection := r.client.Database(r.dbName).Collection(r.schedulesColl)
	_, err := collection.InsertOne(ctx, schedule)
	if err != nil {
		return fmt.Errorf("failed to insert schedule: %w", err)
	}
	return nil
}

// GetSchedule fetches a schedule by its ID.
func (r *MongoDBRepository) GetSchedule(ctx context.Context, id string) (*models.CapacitySchedule, error) {
	collection := r.client.Database(r.dbName).Collection(r.schedulesColl)

	var schedule models.CapacitySchedule
	err := collection.FindOne(ctx, bson.M{"id": id}).Decode(&schedule)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule %s: %w", id, err)
	}
	return &schedule, nil
}

// ReplaceSchedule overwrites an existing schedule, e.g. after commit.
func (r *MongoDBRepository) ReplaceSchedule(ctx context.Context, schedule models.CapacitySchedule) error {
	collection := r.client.Database(r.dbName).Collection(r.schedulesColl)

	result, err := collection.ReplaceOne(ctx, bson.M{"id": schedule.ID}, schedule)
	if err != nil {
		return fmt.Errorf("failed to replace schedule %s: %w", schedule.ID, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListSchedulesByClient returns a client's schedules, newest first.
func (r *MongoDBRepository) ListSchedulesByClient(ctx context.Context, clientID string) ([]models.CapacitySchedule, error) {
	collection := r.client.Database(r.dbName).Collection(r.schedulesColl)

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := collection.Find(ctx, bson.M{"client_id": clientID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules for client %s: %w", clientID, err)
	}
	defer cursor.Close(ctx)

	var schedules []models.CapacitySchedule
	if err := cursor.All(ctx, &schedules); err != nil {
		return nil, fmt.Errorf("failed to decode schedules: %w", err)
	}
	return schedules, nil
}

// ListAtRiskSchedules returns committed schedules carrying at least one
// at-risk assignment, across all clients.
func (r *MongoDBRepository) ListAtRiskSchedules(ctx context.Context) ([]models.CapacitySchedule, error) {
	collection := r.client.Database(r.dbName).Collection(r.schedulesColl)

	filter := bson.M{"committed": true, "assignments.at_risk": true}
	cursor, err := collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list at-risk schedules: %w", err)
	}
	defer cursor.Close(ctx)

	var schedules []models.CapacitySchedule
	if err := cursor.All(ctx, &schedules); err != nil {
		return nil, fmt.Errorf("failed to decode schedules: %w", err)
	}
	return schedules, nil
}

// SaveScenarioRun persists the outcome of a scenario comparison.
func (r *MongoDBRepository) SaveScenarioRun(ctx context.Context, run models.ScenarioRun) error {
	collection := r.client.Database(r.dbName).Collection(r.scenariosColl)
	_, err := collection.InsertOne(ctx, run)
	if err != nil {
		return fmt.Errorf("failed to insert scenario run: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
