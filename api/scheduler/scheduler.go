package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/civicgrid/civic-complaints-api/databases"
	"github.com/civicgrid/civic-complaints-api/models"
)

// Scheduler runs periodic background jobs. The complaint write path
// updates a complaint and then increments the owning municipality's
// counters as two separate writes, so a crash between them leaves the
// counters out of sync; the reconciliation job recomputes them from the
// complaints collection.
type Scheduler struct {
	cron *cron.Cron
	CDB  databases.ComplaintDatabase
	MDB  databases.MunicipalityDatabase
}

// New creates a new scheduler instance
func New(cdb databases.ComplaintDatabase, mdb databases.MunicipalityDatabase) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithLocation(time.UTC)),
		CDB:  cdb,
		MDB:  mdb,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Reconcile municipality counters daily at 2:30 AM UTC
	_, err := s.cron.AddFunc("30 2 * * *", s.runReconciliation)
	if err != nil {
		zap.S().Errorw("failed to register reconciliation job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("counter reconciliation scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("counter reconciliation scheduler stopped")
}

func (s *Scheduler) runReconciliation() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := s.ReconcileCounters(ctx); err != nil {
		zap.S().Errorw("counter reconciliation failed", "error", err)
	}
}

// ReconcileCounters recomputes every municipality's solved/pending
// counters from the true complaint counts and rewrites any that drifted
func (s *Scheduler) ReconcileCounters(ctx context.Context) error {
	municipalities, err := s.MDB.Find(ctx, bson.M{})
	if err != nil {
		return err
	}

	for _, m := range municipalities {
		solved, err := s.CDB.CountDocuments(ctx, bson.M{
			"municipalityName": m.DistrictName,
			"status":           models.StatusSolved,
		})
		if err != nil {
			return err
		}
		pending, err := s.CDB.CountDocuments(ctx, bson.M{
			"municipalityName": m.DistrictName,
			"status":           bson.M{"$in": []string{models.StatusPending, models.StatusInProgress}},
		})
		if err != nil {
			return err
		}

		if int(solved) == m.Solved && int(pending) == m.Pending {
			continue
		}

		zap.S().Infow("reconciling municipality counters",
			"district", m.DistrictName,
			"solved", solved, "storedSolved", m.Solved,
			"pending", pending, "storedPending", m.Pending,
		)
		_, err = s.MDB.UpdateOne(ctx,
			bson.M{"district_id": m.DistrictID},
			bson.M{"$set": bson.M{"solved": int(solved), "pending": int(pending)}},
		)
		if err != nil {
			return err
		}
	}
	return nil
}
