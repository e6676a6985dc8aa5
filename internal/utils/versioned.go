package utils

import (
	"AgriWaste-Marketplace/domain"

	"gorm.io/gorm"
)

// UpdateVersioned writes fields to the single row identified by id, but only
// while its version still equals expected. The version is bumped in the same
// statement.
func UpdateVersioned(db *gorm.DB, model any, id any, expected int, fields map[string]any) error {
	fields["version"] = gorm.Expr("version + 1")

	res := db.Model(model).
		Where("id = ? AND version = ?", id, expected).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrVersionConflict
	}
	return nil
}
