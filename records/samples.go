// Package records persists accumulated dyno samples and run result
// records. Samples are pushed by upstream log-upload collaborators; this
// package only reads them. Result records are write-once documents.
package records

import (
	"context"
	"time"

	"dynotune/mongodb"
	"dynotune/types"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
)

const mongoTimeout = 20 * time.Second

// FetchSamples loads accumulated measurement rows, optionally restricted
// to one log source.
func FetchSamples(m mongodb.MongoDb, source string, l *zerolog.Logger) ([]types.RawRow, error) {
	collection := m.GetCollection(types.SamplesCollection)

	filter := bson.D{}
	if source != "" {
		filter = bson.D{{Key: "source", Value: source}}
	}

	ctxM, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()

	cursor, err := collection.Find(ctxM, filter)
	if err != nil {
		l.Error().Err(err).Msg("Could not retrieve samples from MongoDB.")
		return nil, err
	}
	defer cursor.Close(ctxM)

	var rows []types.RawRow
	if err := cursor.All(ctxM, &rows); err != nil {
		l.Error().Err(err).Msg("Could not decode sample documents.")
		return nil, err
	}

	l.Debug().Int("rows", len(rows)).Str("source", source).Msg("Fetched samples.")
	return rows, nil
}
