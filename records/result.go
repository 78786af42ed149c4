package records

import (
	"context"
	"fmt"

	"dynotune/mongodb"
	"dynotune/types"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SaveResult inserts the record as a new document and returns its id.
// Records are never updated in place; every run inserts.
func SaveResult(m mongodb.MongoDb, record types.ResultRecord, l *zerolog.Logger) (string, error) {
	collection := m.GetCollection(types.ResultsCollection)

	ctxM, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()

	res, err := collection.InsertOne(ctxM, record)
	if err != nil {
		l.Error().Err(err).Msg("Could not insert result record into MongoDB.")
		return "", err
	}

	id := ""
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		id = oid.Hex()
	} else {
		id = fmt.Sprintf("%v", res.InsertedID)
	}

	l.Info().Str("record_id", id).Time("timestamp", record.Metadata.Timestamp).Msg("Result record saved.")
	return id, nil
}

// FindResultByTimestamp retrieves one record by its creation timestamp,
// the record's identity.
func FindResultByTimestamp(m mongodb.MongoDb, ts interface{}, l *zerolog.Logger) (*types.ResultRecord, error) {
	collection := m.GetCollection(types.ResultsCollection)

	ctxM, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()

	filter := bson.D{{Key: "metadata.timestamp", Value: ts}}
	var record types.ResultRecord
	if err := collection.FindOne(ctxM, filter).Decode(&record); err != nil {
		return nil, err
	}
	return &record, nil
}
