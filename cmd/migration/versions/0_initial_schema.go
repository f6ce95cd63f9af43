package versions

import (
	"log"

	"dynamic_forms/forms/schema"

	"gorm.io/gorm"
)

func Migration_0_initial_schema(txn *gorm.DB) error {
	log.Println("creating form platform tables")

	err := txn.Migrator().AutoMigrate(schema.Tables()...)
	if err != nil {
		return err
	}

	if err := schema.SeedFieldTypes(txn, schema.DefaultFieldTypes); err != nil {
		return err
	}

	log.Println("initial schema migration complete")

	return nil
}

func Rollback_0_initial_schema(txn *gorm.DB) error {
	tables := schema.Tables()
	for i := len(tables) - 1; i >= 0; i-- {
		if err := txn.Migrator().DropTable(tables[i]); err != nil {
			return err
		}
	}
	return nil
}
