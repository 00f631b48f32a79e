package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"efi-app/internal/model"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collectionTables = "tables"
	collectionScores = "scores"
	collectionLatest = "latest"
)

// MongoStore reads the documents written by the ratings model. One client is
// shared for the lifetime of the store.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ Store = (*MongoStore)(nil)

type MongoOptions struct {
	Database string
	// ConnectTimeout bounds the initial connect and ping.
	ConnectTimeout time.Duration
}

// scoreDoc is the shape of a scores document: the match sits under "scores"
// with its round copied to the top level for lookups.
type scoreDoc struct {
	ID            int64            `bson:"_id"`
	CompetitionID int              `bson:"competition_id"`
	Season        int              `bson:"season"`
	Matchweek     int              `bson:"matchweek"`
	Scores        model.MatchEvent `bson:"scores"`
}

func NewMongoStore(ctx context.Context, uri string, opts MongoOptions) (*MongoStore, error) {
	if strings.TrimSpace(uri) == "" {
		return nil, errors.New("mongodb uri is required")
	}
	if opts.Database == "" {
		opts.Database = "efi"
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetRegistry(newRegistry()))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &MongoStore{client: client, db: client.Database(opts.Database)}, nil
}

func (s *MongoStore) GetLatest(ctx context.Context, competitionID int) (model.Latest, bool, error) {
	var l model.Latest
	err := s.db.Collection(collectionLatest).
		FindOne(ctx, bson.D{{Key: "competition_id", Value: competitionID}}).
		Decode(&l)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Latest{}, false, nil
	}
	if err != nil {
		return model.Latest{}, false, fmt.Errorf("get latest: %w", err)
	}
	return l, true, nil
}

func (s *MongoStore) GetTable(ctx context.Context, competitionID, season, matchweek int) (model.Table, bool, error) {
	var t model.Table
	err := s.db.Collection(collectionTables).
		FindOne(ctx, bson.D{
			{Key: "competition_id", Value: competitionID},
			{Key: "season", Value: season},
			{Key: "matchweek", Value: matchweek},
		}).
		Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Table{}, false, nil
	}
	if err != nil {
		return model.Table{}, false, fmt.Errorf("get table: %w", err)
	}
	return t, true, nil
}

func (s *MongoStore) ListScores(ctx context.Context, competitionID, season, matchweek int) ([]model.MatchEvent, error) {
	filter := bson.D{
		{Key: "competition_id", Value: competitionID},
		{Key: "season", Value: season},
		{Key: "$or", Value: bson.A{
			bson.D{{Key: "matchweek", Value: matchweek}},
			bson.D{{Key: "scores.display_with_matchweek", Value: matchweek}},
		}},
	}
	findOpts := options.Find().SetSort(bson.D{{Key: "scores.time", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.db.Collection(collectionScores).Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer cur.Close(ctx)

	out := []model.MatchEvent{}
	for cur.Next(ctx) {
		var doc scoreDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode score: %w", err)
		}
		out = append(out, doc.Scores)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	return out, nil
}

func (s *MongoStore) PutLatest(ctx context.Context, latest model.Latest) error {
	_, err := s.db.Collection(collectionLatest).ReplaceOne(ctx,
		bson.D{{Key: "competition_id", Value: latest.CompetitionID}},
		latest,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("put latest: %w", err)
	}
	return nil
}

func (s *MongoStore) PutTable(ctx context.Context, table model.Table) error {
	_, err := s.db.Collection(collectionTables).ReplaceOne(ctx,
		bson.D{
			{Key: "competition_id", Value: table.CompetitionID},
			{Key: "season", Value: table.Season},
			{Key: "matchweek", Value: table.Matchweek},
		},
		table,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("put table: %w", err)
	}
	return nil
}

func (s *MongoStore) PutScores(ctx context.Context, matches []model.MatchEvent) error {
	if len(matches) == 0 {
		return nil
	}
	if err := validateScores(matches); err != nil {
		return err
	}
	models := make([]mongo.WriteModel, 0, len(matches))
	for _, m := range matches {
		doc := scoreDoc{
			ID:            m.ID,
			CompetitionID: m.CompetitionID,
			Season:        m.Season,
			Matchweek:     m.Matchweek,
			Scores:        m,
		}
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.D{{Key: "_id", Value: m.ID}}).
			SetReplacement(doc).
			SetUpsert(true))
	}
	if _, err := s.db.Collection(collectionScores).BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("put scores: %w", err)
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

// newRegistry returns the default registry with decimals stored as fixed
// four-place strings, the format position probabilities are written in.
func newRegistry() *bsoncodec.Registry {
	reg := bson.NewRegistry()
	reg.RegisterTypeEncoder(decimalType, bsoncodec.ValueEncoderFunc(encodeDecimal))
	reg.RegisterTypeDecoder(decimalType, bsoncodec.ValueDecoderFunc(decodeDecimal))
	return reg
}

func encodeDecimal(_ bsoncodec.EncodeContext, vw bsonrw.ValueWriter, val reflect.Value) error {
	if !val.IsValid() || val.Type() != decimalType {
		return bsoncodec.ValueEncoderError{Name: "encodeDecimal", Types: []reflect.Type{decimalType}, Received: val}
	}
	d := val.Interface().(decimal.Decimal)
	return vw.WriteString(d.StringFixed(4))
}

func decodeDecimal(_ bsoncodec.DecodeContext, vr bsonrw.ValueReader, val reflect.Value) error {
	if !val.CanSet() || val.Type() != decimalType {
		return bsoncodec.ValueDecoderError{Name: "decodeDecimal", Types: []reflect.Type{decimalType}, Received: val}
	}
	var (
		d   decimal.Decimal
		err error
	)
	switch t := vr.Type(); t {
	case bsontype.String:
		var s string
		if s, err = vr.ReadString(); err == nil {
			d, err = decimal.NewFromString(s)
		}
	case bsontype.Double:
		var f float64
		if f, err = vr.ReadDouble(); err == nil {
			d = decimal.NewFromFloat(f)
		}
	case bsontype.Int32:
		var i int32
		if i, err = vr.ReadInt32(); err == nil {
			d = decimal.NewFromInt32(i)
		}
	case bsontype.Int64:
		var i int64
		if i, err = vr.ReadInt64(); err == nil {
			d = decimal.NewFromInt(i)
		}
	case bsontype.Decimal128:
		var p primitive.Decimal128
		if p, err = vr.ReadDecimal128(); err == nil {
			d, err = decimal.NewFromString(p.String())
		}
	case bsontype.Null:
		err = vr.ReadNull()
	default:
		return fmt.Errorf("cannot decode %v into a decimal", t)
	}
	if err != nil {
		return err
	}
	val.Set(reflect.ValueOf(d))
	return nil
}
