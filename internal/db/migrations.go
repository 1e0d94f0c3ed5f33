package db

import (
	"fmt"

	"gorm.io/gorm"
)

// The snapshot tables are owned by the nightly snapshot writers; this
// service only reads them. Migrations are limited to read-path indexes,
// and each one is conditional on its table already existing so a fresh
// environment comes up before the first snapshot lands.
var migrationStatements = []string{
	`DO $$
	BEGIN
		IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'geographic_metrics') THEN
			CREATE INDEX IF NOT EXISTS idx_geographic_metrics_snapshot ON geographic_metrics (snapshot_date DESC, metric_type);
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'customer_snapshot') THEN
			CREATE INDEX IF NOT EXISTS idx_customer_snapshot_snapshot ON customer_snapshot (snapshot_date DESC, metric_type);
			CREATE INDEX IF NOT EXISTS idx_customer_snapshot_rank ON customer_snapshot (metric_type, rank);
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'requisition_snapshots') THEN
			CREATE INDEX IF NOT EXISTS idx_requisition_snapshots_snapshot ON requisition_snapshots (snapshot_date DESC, metric_type);
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'plan_addon_adoption') THEN
			CREATE INDEX IF NOT EXISTS idx_plan_addon_adoption_snapshot ON plan_addon_adoption (snapshot_date DESC, metric_type);
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'health_insurance_metrics') THEN
			CREATE INDEX IF NOT EXISTS idx_health_insurance_metrics_snapshot ON health_insurance_metrics (snapshot_date DESC, metric_type);
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'monthly_subscription_snapshot') THEN
			CREATE INDEX IF NOT EXISTS idx_monthly_subscription_snapshot_date ON monthly_subscription_snapshot (snapshot_date DESC);
		END IF;
	END
	$$;`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
