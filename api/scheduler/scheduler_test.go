package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/civicgrid/civic-complaints-api/models"
)

type stubComplaintDB struct {
	counts map[string]int64
}

func (s *stubComplaintDB) FindOne(ctx context.Context, filter interface{}) (*models.Complaint, error) {
	return nil, mongo.ErrNoDocuments
}

func (s *stubComplaintDB) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Complaint, error) {
	return nil, nil
}

func (s *stubComplaintDB) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) (*models.Complaint, error) {
	return nil, mongo.ErrNoDocuments
}

func (s *stubComplaintDB) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	f := filter.(bson.M)
	name := f["municipalityName"].(string)
	if _, solvedQuery := f["status"].(string); solvedQuery {
		return s.counts[name+"/solved"], nil
	}
	return s.counts[name+"/pending"], nil
}

type counterUpdate struct {
	filter bson.M
	update bson.M
}

type stubMunicipalityDB struct {
	municipalities []models.Municipality
	updates        []counterUpdate
}

func (s *stubMunicipalityDB) FindOne(ctx context.Context, filter interface{}) (*models.Municipality, error) {
	return nil, mongo.ErrNoDocuments
}

func (s *stubMunicipalityDB) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Municipality, error) {
	return s.municipalities, nil
}

func (s *stubMunicipalityDB) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	s.updates = append(s.updates, counterUpdate{filter: filter.(bson.M), update: update.(bson.M)})
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func TestReconcileCountersHealsDrift(t *testing.T) {
	cdb := &stubComplaintDB{counts: map[string]int64{
		"Riverton/solved":  4,
		"Riverton/pending": 2,
		"Lakeside/solved":  1,
		"Lakeside/pending": 7,
	}}
	mdb := &stubMunicipalityDB{municipalities: []models.Municipality{
		{DistrictID: 12, DistrictName: "Riverton", Solved: 3, Pending: 3}, // drifted
		{DistrictID: 13, DistrictName: "Lakeside", Solved: 1, Pending: 7}, // accurate
	}}

	s := New(cdb, mdb)

	err := s.ReconcileCounters(context.Background())
	assert.NoError(t, err)

	// only the drifted municipality gets rewritten
	assert.Len(t, mdb.updates, 1)
	assert.Equal(t, bson.M{"district_id": 12}, mdb.updates[0].filter)
	assert.Equal(t, bson.M{"$set": bson.M{"solved": 4, "pending": 2}}, mdb.updates[0].update)
}

func TestReconcileCountersNoDrift(t *testing.T) {
	cdb := &stubComplaintDB{counts: map[string]int64{
		"Riverton/solved":  4,
		"Riverton/pending": 2,
	}}
	mdb := &stubMunicipalityDB{municipalities: []models.Municipality{
		{DistrictID: 12, DistrictName: "Riverton", Solved: 4, Pending: 2},
	}}

	s := New(cdb, mdb)

	err := s.ReconcileCounters(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, mdb.updates)
}
