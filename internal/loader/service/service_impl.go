package service

import (
	"context"
	"errors"

	"github.com/smallbiznis/posbridge/internal/loader/domain"
	normdomain "github.com/smallbiznis/posbridge/internal/normalizer/domain"
	"github.com/smallbiznis/posbridge/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// createBatchSize bounds the rows per INSERT so large batches stay under
// driver parameter limits.
const createBatchSize = 500

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(p Params) domain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("loader.service"),
	}
}

// Load appends every non-empty table of the batch inside one transaction,
// parents before children. Any failure rolls the whole batch back; no
// table is ever partially committed.
func (s *Service) Load(ctx context.Context, batch *normdomain.Batch) error {
	if batch == nil {
		return errors.New("nil batch")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range batch.Tables() {
			if table.Count == 0 {
				s.log.Info("no rows for table, skipping", zap.String("table", table.Name))
				continue
			}
			if err := tx.Table(table.Name).CreateInBatches(table.Rows, createBatchSize).Error; err != nil {
				return &domain.TableError{Table: table.Name, Err: err}
			}
			s.log.Info("rows appended",
				zap.String("table", table.Name),
				zap.Int("rows", table.Count),
			)
		}
		return nil
	})
	if err != nil {
		s.log.Error("batch load failed, transaction rolled back",
			zap.String("reason", failureReason(err)),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// failureReason classifies a rolled-back load for triage. Duplicate keys
// are the common replay hazard and get their own label.
func failureReason(err error) string {
	if db.IsDuplicateKeyErr(err) {
		return "duplicate_key"
	}
	return "unknown"
}
