package dao

import (
	"context"
	"errors"
	"time"

	"github.com/gmkornilov/chess-chronicle-backend/internal/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const queryTimeout = time.Second

var ErrNotFound = errors.New("chronicle not found")

// Chronicle is the archived record of one finished or abandoned game.
type Chronicle struct {
	GameID     string             `bson:"game_id" json:"game_id"`
	PGN        string             `bson:"pgn" json:"pgn"`
	FinalFEN   string             `bson:"final_fen" json:"final_fen"`
	Outcome    string             `bson:"outcome" json:"outcome"`
	Method     string             `bson:"method,omitempty" json:"method,omitempty"`
	Moves      []string           `bson:"moves" json:"moves"`
	Passages   []string           `bson:"passages" json:"passages"`
	StartedAt  primitive.DateTime `bson:"started_at" json:"started_at"`
	ArchivedAt primitive.DateTime `bson:"archived_at" json:"archived_at"`
}

type ChronicleRepository interface {
	InsertChronicle(ctx context.Context, c Chronicle) error

	GetChronicle(ctx context.Context, gameID string) (Chronicle, error)

	GetChroniclesBetweenDates(ctx context.Context, start, end primitive.DateTime) ([]Chronicle, error)
}

type chronicleRepository struct {
	dbClient *db.ChronicleDbClient
}

func NewChronicleRepository(dbClient *db.ChronicleDbClient) ChronicleRepository {
	return &chronicleRepository{dbClient}
}

func (r *chronicleRepository) InsertChronicle(ctx context.Context, c Chronicle) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.dbClient.ChronicleCollection.InsertOne(ctx, c)
	return err
}

func (r *chronicleRepository) GetChronicle(ctx context.Context, gameID string) (Chronicle, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var c Chronicle
	err := r.dbClient.ChronicleCollection.FindOne(ctx, bson.D{{Key: "game_id", Value: gameID}}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Chronicle{}, ErrNotFound
	}
	if err != nil {
		return Chronicle{}, err
	}
	return c, nil
}

func (r *chronicleRepository) GetChroniclesBetweenDates(ctx context.Context, start, end primitive.DateTime) ([]Chronicle, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.D{{
		Key: "archived_at", Value: bson.D{
			{Key: "$gte", Value: start},
			{Key: "$lte", Value: end},
		},
	}}

	cur, err := r.dbClient.ChronicleCollection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	var res []Chronicle
	if err = cur.All(ctx, &res); err != nil {
		return nil, err
	}
	return res, nil
}
