package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	loaderdomain "github.com/smallbiznis/posbridge/internal/loader/domain"
	normdomain "github.com/smallbiznis/posbridge/internal/normalizer/domain"
	pkgdb "github.com/smallbiznis/posbridge/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "loader.db")), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&normdomain.ErpMetadataRow{},
		&normdomain.EmployeeRow{},
		&normdomain.GuestCheckRow{},
		&normdomain.TaxRow{},
		&normdomain.DetailLineRow{},
		&normdomain.MenuItemRow{},
		&normdomain.DiscountRow{},
		&normdomain.ServiceChargeRow{},
		&normdomain.TenderMediaRow{},
		&normdomain.ErrorCodeRow{},
	)
	require.NoError(t, err)
	return db
}

func fixtureBatch() *normdomain.Batch {
	discountType := "PERCENT"
	return &normdomain.Batch{
		Metadata:    []normdomain.ErpMetadataRow{{CurUTC: "2024-03-07T10:00:00Z", LocRef: "101"}},
		Employees:   []normdomain.EmployeeRow{{EmpNum: 5}, {EmpNum: 7}},
		GuestChecks: []normdomain.GuestCheckRow{{GuestCheckID: 1001, CurUTC: "2024-03-07T10:00:00Z"}},
		Taxes:       []normdomain.TaxRow{{GuestCheckID: 1001}},
		DetailLines: []normdomain.DetailLineRow{{GuestCheckLineItemID: 9001, GuestCheckID: 1001}},
		Discounts: []normdomain.DiscountRow{{
			GuestCheckLineItemID: 9001,
			DiscountType:         &discountType,
		}},
	}
}

func TestLoadAppendsNonEmptyTables(t *testing.T) {
	db := setupDB(t)
	svc := New(Params{DB: db, Log: zap.NewNop()})

	err := svc.Load(context.Background(), fixtureBatch())
	require.NoError(t, err)

	var checks int64
	require.NoError(t, db.Table(normdomain.TableGuestChecks).Count(&checks).Error)
	assert.Equal(t, int64(1), checks)

	var employees int64
	require.NoError(t, db.Table(normdomain.TableEmployee).Count(&employees).Error)
	assert.Equal(t, int64(2), employees)

	var discounts int64
	require.NoError(t, db.Table(normdomain.TableDiscount).Count(&discounts).Error)
	assert.Equal(t, int64(1), discounts)

	// Tables with zero rows are skipped, not written as empty inserts.
	var menuItems int64
	require.NoError(t, db.Table(normdomain.TableMenuItem).Count(&menuItems).Error)
	assert.Equal(t, int64(0), menuItems)
}

func TestLoadColumnNamesMatchSource(t *testing.T) {
	db := setupDB(t)
	svc := New(Params{DB: db, Log: zap.NewNop()})

	require.NoError(t, svc.Load(context.Background(), fixtureBatch()))

	var guestCheckID int64
	err := db.Table(normdomain.TableGuestChecks).
		Select(`"guestCheckId"`).
		Where(`"curUTC" = ?`, "2024-03-07T10:00:00Z").
		Scan(&guestCheckID).Error
	require.NoError(t, err)
	assert.Equal(t, int64(1001), guestCheckID)
}

func TestLoadRollsBackWholeBatchOnFailure(t *testing.T) {
	db := setupDB(t)
	svc := New(Params{DB: db, Log: zap.NewNop()})

	batch := fixtureBatch()
	// Duplicate primary key in a child table forces the failure after
	// parents were already written inside the transaction.
	batch.DetailLines = append(batch.DetailLines, normdomain.DetailLineRow{
		GuestCheckLineItemID: 9001,
		GuestCheckID:         1001,
	})

	err := svc.Load(context.Background(), batch)
	require.Error(t, err)

	// Nothing partially committed: the parents rolled back too.
	var checks int64
	require.NoError(t, db.Table(normdomain.TableGuestChecks).Count(&checks).Error)
	assert.Equal(t, int64(0), checks)

	var metadata int64
	require.NoError(t, db.Table(normdomain.TableErpMetadata).Count(&metadata).Error)
	assert.Equal(t, int64(0), metadata)
}

func TestLoadClassifiesDuplicateKeyFailure(t *testing.T) {
	db := setupDB(t)
	svc := New(Params{DB: db, Log: zap.NewNop()})

	batch := fixtureBatch()
	batch.DetailLines = append(batch.DetailLines, normdomain.DetailLineRow{
		GuestCheckLineItemID: 9001,
		GuestCheckID:         1001,
	})

	err := svc.Load(context.Background(), batch)
	require.Error(t, err)

	// The rolled-back error stays attributable: the table it died on and
	// the duplicate-key class both survive the wrapping.
	var tableErr *loaderdomain.TableError
	require.ErrorAs(t, err, &tableErr)
	assert.Equal(t, normdomain.TableDetailLine, tableErr.Table)
	assert.True(t, pkgdb.IsDuplicateKeyErr(err))
	assert.Equal(t, "duplicate_key", failureReason(err))
}

func TestFailureReasonUnknownForOtherErrors(t *testing.T) {
	assert.Equal(t, "unknown", failureReason(context.DeadlineExceeded))
}

func TestLoadRejectsNilBatch(t *testing.T) {
	db := setupDB(t)
	svc := New(Params{DB: db, Log: zap.NewNop()})

	assert.Error(t, svc.Load(context.Background(), nil))
}
