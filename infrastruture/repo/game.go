package repo

import (
	"context"
	"errors"
	"time"

	"github.com/beka-birhanu/vinom-mines/game"
	"github.com/beka-birhanu/vinom-mines/service/i"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ i.GameRepo = &GameRepo{}

// GameRepo handles the persistence of game records. Each game is one document holding
// its full cell grid.
type GameRepo struct {
	collection *mongo.Collection
}

// NewGameRepo creates a new GameRepo with the given MongoDB client, database name, and collection name.
func NewGameRepo(client *mongo.Client, dbName, collectionName string) *GameRepo {
	return &GameRepo{
		collection: client.Database(dbName).Collection(collectionName),
	}
}

// Save replaces the stored game, inserting it when missing.
func (g *GameRepo) Save(record *game.Record) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	if _, err := g.collection.ReplaceOne(ctx, bson.M{"_id": record.ID}, record, opts); err != nil {
		return errors.New("unexpected error: " + err.Error())
	}
	return nil
}

// ByID retrieves a game by its ID.
func (g *GameRepo) ByID(id uuid.UUID) (*game.Record, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var record game.Record
	if err := g.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&record); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, i.ErrGameNotFound
		}
		return nil, errors.New("unexpected error: " + err.Error())
	}
	return &record, nil
}

// ByUser lists the most recent games of a user, newest first.
func (g *GameRepo) ByUser(userID uuid.UUID, limit int) ([]*game.Record, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := g.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, errors.New("unexpected error: " + err.Error())
	}
	defer cursor.Close(ctx)

	var records []*game.Record
	if err := cursor.All(ctx, &records); err != nil {
		return nil, errors.New("unexpected error: " + err.Error())
	}
	return records, nil
}
