package mongodb

import (
	"context"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const UnexpectedType = "unexpected type on mock response"

type MockClient struct {
	mock.Mock
	Client
	Uri         string
	Collections *xsync.MapOf[string, CollectionAPI]
	Logger      *zerolog.Logger
}

func (mc *MockClient) GetDatabaseName(uri string, defaultName string) string {
	args := mc.Called(uri, defaultName)
	return args.String(0)
}

func (mc *MockClient) GetCollection(name string) (response CollectionAPI) {
	// this is the best point to mock and return a MockCollection
	args := mc.Called(name)
	firstResponseArg := args.Get(0)

	if firstResponseArg != nil {
		if v, ok := firstResponseArg.(CollectionAPI); !ok {
			panic(UnexpectedType)
		} else {
			response = v
		}
	}

	return
}

func (mc *MockClient) CloseConnection() {
	mc.Called()
}

type MockCollection struct {
	mock.Mock
}

func (c *MockCollection) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult {
	args := c.Called(ctx, filter)
	if v := args.Get(0); v != nil {
		return v.(*mongo.SingleResult)
	}
	return nil
}

func (c *MockCollection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	args := c.Called(ctx, filter)
	var cursor *mongo.Cursor
	if v := args.Get(0); v != nil {
		cursor = v.(*mongo.Cursor)
	}
	return cursor, args.Error(1)
}

func (c *MockCollection) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	args := c.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (c *MockCollection) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	args := c.Called(ctx, document)
	var res *mongo.InsertOneResult
	if v := args.Get(0); v != nil {
		res = v.(*mongo.InsertOneResult)
	}
	return res, args.Error(1)
}

func (c *MockCollection) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	args := c.Called(ctx, filter, update)
	var res *mongo.UpdateResult
	if v := args.Get(0); v != nil {
		res = v.(*mongo.UpdateResult)
	}
	return res, args.Error(1)
}

func (c *MockCollection) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	args := c.Called(ctx, filter)
	var res *mongo.DeleteResult
	if v := args.Get(0); v != nil {
		res = v.(*mongo.DeleteResult)
	}
	return res, args.Error(1)
}
