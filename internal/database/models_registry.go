package database

import "sangrachna/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Parents come before children so AutoMigrate can create foreign keys.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.Book{},
		&models.BookRequest{},
		&models.Poem{},
		&models.PoemLike{},
		&models.PendownPost{},
		&models.Event{},
		&models.TeamMember{},
		&models.Operator{},
	}
}
