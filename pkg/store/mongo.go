package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	errs "github.com/juruladenbam/bam-sub000/pkg/errors"
	"github.com/juruladenbam/bam-sub000/pkg/family"
)

// DefaultMongoDatabase is used when no database name is configured.
const DefaultMongoDatabase = "silsilah"

const mongoConnectTimeout = 10 * time.Second

type personDoc struct {
	ID         int64      `bson:"_id"`
	FullName   string     `bson:"full_name"`
	Nickname   string     `bson:"nickname,omitempty"`
	Gender     string     `bson:"gender"`
	BirthDate  *time.Time `bson:"birth_date,omitempty"`
	DeathDate  *time.Time `bson:"death_date,omitempty"`
	IsAlive    bool       `bson:"is_alive"`
	BranchID   int64      `bson:"branch_id,omitempty"`
	Generation int        `bson:"generation"`
	BirthOrder *int       `bson:"birth_order,omitempty"`
}

type marriageDoc struct {
	ID         int64 `bson:"_id"`
	HusbandID  int64 `bson:"husband_id"`
	WifeID     int64 `bson:"wife_id"`
	IsActive   *bool `bson:"is_active,omitempty"`
	IsInternal bool  `bson:"is_internal,omitempty"`
}

type linkDoc struct {
	ID         any    `bson:"_id,omitempty"`
	ChildID    int64  `bson:"child_id"`
	MarriageID *int64 `bson:"marriage_id,omitempty"`
	FatherID   *int64 `bson:"father_id,omitempty"`
	MotherID   *int64 `bson:"mother_id,omitempty"`
	BirthOrder *int   `bson:"birth_order,omitempty"`
}

type branchDoc struct {
	ID    int64  `bson:"_id"`
	Name  string `bson:"name"`
	Order int    `bson:"order"`
}

// MongoStore reads records from the persons, marriages, parent_child_links
// and branches collections of a MongoDB database.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// OpenMongo connects to uri and pings the server.
func OpenMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	if uri == "" {
		return nil, errs.New(errs.ErrCodeInvalidInput, "no mongo uri configured")
	}
	if database == "" {
		database = DefaultMongoDatabase
	}
	ctx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStoreUnavailable, err, "connect mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errs.Wrap(errs.ErrCodeStoreUnavailable, err, "ping mongo")
	}
	return &MongoStore{client: client, db: client.Database(database)}, nil
}

// Snapshot reads every collection sorted by _id.
func (s *MongoStore) Snapshot(ctx context.Context) (*family.Dataset, error) {
	persons, err := findAll[personDoc](ctx, s.db.Collection("persons"))
	if err != nil {
		return nil, err
	}
	marriages, err := findAll[marriageDoc](ctx, s.db.Collection("marriages"))
	if err != nil {
		return nil, err
	}
	links, err := findAll[linkDoc](ctx, s.db.Collection("parent_child_links"))
	if err != nil {
		return nil, err
	}
	branches, err := findAll[branchDoc](ctx, s.db.Collection("branches"))
	if err != nil {
		return nil, err
	}
	return datasetFromDocs(persons, marriages, links, branches), nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)

func findAll[T any](ctx context.Context, coll *mongo.Collection) ([]T, error) {
	cur, err := coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStoreUnavailable, err, "query %s", coll.Name())
	}
	var out []T
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.Wrap(errs.ErrCodeStoreUnavailable, err, "decode %s", coll.Name())
	}
	return out, nil
}

// datasetFromDocs converts decoded documents. A marriage without is_active
// counts as active, matching the JSON dataset format.
func datasetFromDocs(persons []personDoc, marriages []marriageDoc, links []linkDoc, branches []branchDoc) *family.Dataset {
	ds := &family.Dataset{}
	for _, d := range persons {
		ds.Persons = append(ds.Persons, family.Person{
			ID:         family.ID(d.ID),
			FullName:   d.FullName,
			Nickname:   d.Nickname,
			Gender:     family.Gender(d.Gender),
			BirthDate:  toDate(d.BirthDate),
			DeathDate:  toDate(d.DeathDate),
			IsAlive:    d.IsAlive,
			BranchID:   family.ID(d.BranchID),
			Generation: d.Generation,
			BirthOrder: d.BirthOrder,
		})
	}
	for _, d := range marriages {
		ds.Marriages = append(ds.Marriages, family.Marriage{
			ID:         family.ID(d.ID),
			HusbandID:  family.ID(d.HusbandID),
			WifeID:     family.ID(d.WifeID),
			IsActive:   d.IsActive == nil || *d.IsActive,
			IsInternal: d.IsInternal,
		})
	}
	for _, d := range links {
		ds.Links = append(ds.Links, family.ParentChildLink{
			ChildID:    family.ID(d.ChildID),
			MarriageID: toID(d.MarriageID),
			FatherID:   toID(d.FatherID),
			MotherID:   toID(d.MotherID),
			BirthOrder: d.BirthOrder,
		})
	}
	for _, d := range branches {
		ds.Branches = append(ds.Branches, family.Branch{ID: family.ID(d.ID), Name: d.Name, Order: d.Order})
	}
	return ds
}
