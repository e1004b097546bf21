package dbhelper

import (
	"log"

	"lookbookapi/models"

	"gorm.io/gorm"
)

// SetupCleaner wipes all rows between tests, children before parents.
func SetupCleaner(db *gorm.DB) func() {
	return func() {
		for _, model := range []interface{}{
			&models.OutfitSuggestion{},
			&models.WardrobeItem{},
			&models.StyleProfile{},
			&models.UserPushToken{},
			&models.UserAccount{},
		} {
			db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model)
		}
	}
}

func Migrate(db *gorm.DB, model interface{}) {
	err := db.AutoMigrate(model)
	if err != nil {
		log.Printf("Error while migrating %s", model)
		log.Fatal(err)
	}
}
