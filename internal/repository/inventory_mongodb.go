package repository

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"petcare-inventory-api/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoDBInventoryRepository implements InventoryRepository using MongoDB.
type MongoDBInventoryRepository struct {
	client     *mongo.Client
	db         *mongo.Database
	collection *mongo.Collection
}

// NewMongoDBInventoryRepository creates a new MongoDB inventory repository.
func NewMongoDBInventoryRepository(uri, database, collection string, logger *zap.Logger) (*MongoDBInventoryRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(50).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(5 * time.Minute).
		SetRetryWrites(true)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(database)
	coll := db.Collection(collection)

	// Ordering index only. Names are deliberately not unique here.
	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: 1}},
	}
	if _, err := coll.Indexes().CreateOne(ctx, indexModel); err != nil && logger != nil {
		logger.Warn("failed to create MongoDB index", zap.Error(err))
	}

	if logger != nil {
		logger.Info("MongoDB inventory repository initialized",
			zap.String("database", database), zap.String("collection", collection))
	}
	return &MongoDBInventoryRepository{
		client:     client,
		db:         db,
		collection: coll,
	}, nil
}

// itemDocument represents a document in MongoDB.
type itemDocument struct {
	ID          string     `bson:"_id"`
	Name        string     `bson:"name"`
	Quantity    int        `bson:"quantity"`
	Category    string     `bson:"category"`
	Supplier    string     `bson:"supplier"`
	ExpiryDate  *time.Time `bson:"expiry_date"`
	Description *string    `bson:"description"`
	PhotoURL    *string    `bson:"photo_url"`
	CreatedAt   time.Time  `bson:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at"`
}

func toDocument(item *model.InventoryItem) itemDocument {
	return itemDocument{
		ID:          item.ID,
		Name:        item.Name,
		Quantity:    item.Quantity,
		Category:    item.Category,
		Supplier:    item.Supplier,
		ExpiryDate:  item.ExpiryDate,
		Description: item.Description,
		PhotoURL:    item.PhotoURL,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

func (d itemDocument) toModel() model.InventoryItem {
	return model.InventoryItem{
		ID:          d.ID,
		Name:        d.Name,
		Quantity:    d.Quantity,
		Category:    d.Category,
		Supplier:    d.Supplier,
		ExpiryDate:  d.ExpiryDate,
		Description: d.Description,
		PhotoURL:    d.PhotoURL,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (r *MongoDBInventoryRepository) find(ctx context.Context, filter bson.M) ([]model.InventoryItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]model.InventoryItem, 0)
	for cursor.Next(ctx) {
		var doc itemDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		items = append(items, doc.toModel())
	}
	return items, cursor.Err()
}

// GetAll returns every item ordered by creation time.
func (r *MongoDBInventoryRepository) GetAll(ctx context.Context) ([]model.InventoryItem, error) {
	items, err := r.find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// GetByID returns the item with the given id, or nil.
func (r *MongoDBInventoryRepository) GetByID(ctx context.Context, id string) (*model.InventoryItem, error) {
	var doc itemDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	item := doc.toModel()
	return &item, nil
}

// Search matches query against name, category and supplier with a
// case-insensitive literal regex.
func (r *MongoDBInventoryRepository) Search(ctx context.Context, query string) ([]model.InventoryItem, error) {
	pattern := bson.M{"$regex": regexp.QuoteMeta(query), "$options": "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"name": pattern},
		bson.M{"category": pattern},
		bson.M{"supplier": pattern},
	}}

	items, err := r.find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}
	return items, nil
}

// Exists reports whether id is stored.
func (r *MongoDBInventoryRepository) Exists(ctx context.Context, id string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check item: %w", err)
	}
	return count > 0, nil
}

// Add inserts a new item.
func (r *MongoDBInventoryRepository) Add(ctx context.Context, item *model.InventoryItem) error {
	if _, err := r.collection.InsertOne(ctx, toDocument(item)); err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	return nil
}

// Update replaces the stored document.
func (r *MongoDBInventoryRepository) Update(ctx context.Context, item *model.InventoryItem) error {
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": item.ID}, toDocument(item)); err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	return nil
}

// Delete removes the item with the given id.
func (r *MongoDBInventoryRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

// GetStats returns statistics about the inventory collection.
func (r *MongoDBInventoryRepository) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return stats, err
	}
	stats["total_items"] = count

	opts := options.FindOne().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	var doc itemDocument
	if err := r.collection.FindOne(ctx, bson.M{}, opts).Decode(&doc); err == nil {
		stats["last_update"] = doc.UpdatedAt
	}

	result := r.db.RunCommand(ctx, bson.D{{Key: "collStats", Value: r.collection.Name()}})
	var collStats bson.M
	if err := result.Decode(&collStats); err == nil {
		switch size := collStats["size"].(type) {
		case int64:
			stats["db_size_bytes"] = size
		case int32:
			stats["db_size_bytes"] = int64(size)
		}
	}

	return stats, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBInventoryRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}

var _ InventoryRepository = (*MongoDBInventoryRepository)(nil)
