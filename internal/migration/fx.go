package migration

import (
	normdomain "github.com/smallbiznis/posbridge/internal/normalizer/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB) error {
		// The versioned SQL migrations target postgres. Other dialects
		// fall back to schema sync from the row models.
		if conn.Dialector.Name() != "postgres" {
			return conn.AutoMigrate(
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
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
