package dal

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"docqa/internal/models"
)

// DocumentDAL provides data access methods for the document registry.
type DocumentDAL struct {
	db *gorm.DB
}

// NewDocumentDAL creates a new DocumentDAL.
func NewDocumentDAL(db *gorm.DB) *DocumentDAL {
	return &DocumentDAL{db: db}
}

// Migrate creates or updates the registry table.
func (dal *DocumentDAL) Migrate() error {
	return dal.db.AutoMigrate(&models.DocumentRecord{})
}

// Upsert inserts the record or, when (collection, filename) already exists,
// updates the existing row in place.
func (dal *DocumentDAL) Upsert(ctx context.Context, rec *models.DocumentRecord) error {
	return dal.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "collection"}, {Name: "filename"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"pages", "chunks", "digest", "model_version", "updated_at",
		}),
	}).Create(rec).Error
}

// ListByCollection returns the registry rows for one collection, ordered by
// filename.
func (dal *DocumentDAL) ListByCollection(ctx context.Context, collection string) ([]*models.DocumentRecord, error) {
	var records []*models.DocumentRecord
	result := dal.db.WithContext(ctx).
		Where("collection = ?", collection).
		Order("filename").
		Find(&records)
	if result.Error != nil {
		return nil, result.Error
	}
	return records, nil
}

// ListAll returns every registry row, ordered by collection then filename.
func (dal *DocumentDAL) ListAll(ctx context.Context) ([]*models.DocumentRecord, error) {
	var records []*models.DocumentRecord
	result := dal.db.WithContext(ctx).
		Order("collection, filename").
		Find(&records)
	if result.Error != nil {
		return nil, result.Error
	}
	return records, nil
}

// Get returns the registry row for one document, or nil when it is not
// registered.
func (dal *DocumentDAL) Get(ctx context.Context, collection, filename string) (*models.DocumentRecord, error) {
	var rec models.DocumentRecord
	result := dal.db.WithContext(ctx).
		Where("collection = ? AND filename = ?", collection, filename).
		First(&rec)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &rec, nil
}

// DeleteByCollection removes all registry rows of a collection.
func (dal *DocumentDAL) DeleteByCollection(ctx context.Context, collection string) error {
	return dal.db.WithContext(ctx).
		Where("collection = ?", collection).
		Delete(&models.DocumentRecord{}).Error
}
