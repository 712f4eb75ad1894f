package db

import (
	"context"
	"fmt"
	"time"

	"github.com/gmkornilov/chess-chronicle-backend/internal/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 10 * time.Second

type ChronicleDbClient struct {
	client              *mongo.Client
	ChronicleCollection *mongo.Collection
}

func (r *ChronicleDbClient) Close() error {
	return r.client.Disconnect(context.TODO())
}

func NewDbClient(cfg *config.Configuration) (*ChronicleDbClient, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	clientOpts := options.Client().ApplyURI(cfg.Database.Address)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, err
	}

	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.TODO())
		return nil, fmt.Errorf("ping %s: %w", cfg.Database.Address, err)
	}

	return &ChronicleDbClient{
		client:              client,
		ChronicleCollection: client.Database(cfg.Database.DatabaseName).Collection(cfg.Database.Collection),
	}, nil
}
