package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/obra/backend/internal/domain/receipt"
	"github.com/obra/backend/internal/domain/shared"
	"github.com/obra/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormReceiptRepository implements ReceiptRepository using GORM
type GormReceiptRepository struct {
	db *gorm.DB
}

var _ receipt.ReceiptRepository = (*GormReceiptRepository)(nil)

// NewGormReceiptRepository creates a new GormReceiptRepository
func NewGormReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{db: db}
}

// FindByID finds a receipt by its ID
func (r *GormReceiptRepository) FindByID(ctx context.Context, id uuid.UUID) (*receipt.Receipt, error) {
	var model models.ReceiptModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, receipt.ErrReceiptNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a receipt by its human-readable number
func (r *GormReceiptRepository) FindByNumber(ctx context.Context, number string) (*receipt.Receipt, error) {
	var model models.ReceiptModel
	if err := r.db.WithContext(ctx).
		Where("number = ?", strings.TrimSpace(number)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, receipt.ErrReceiptNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all receipts matching the filter
func (r *GormReceiptRepository) FindAll(ctx context.Context, filter shared.Filter) ([]receipt.Receipt, error) {
	var rows []models.ReceiptModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ReceiptModel{}), filter)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	receipts := make([]receipt.Receipt, len(rows))
	for i := range rows {
		receipts[i] = *rows[i].ToDomain()
	}
	return receipts, nil
}

// Count counts receipts matching the filter, ignoring pagination
func (r *GormReceiptRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.ReceiptModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByNumber checks if a receipt number is already taken
func (r *GormReceiptRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ReceiptModel{}).
		Where("number = ?", number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save inserts a new receipt or updates an existing one with a version check.
// The aggregate's Version has already been incremented by the domain, so the
// stored row must still carry Version-1.
func (r *GormReceiptRepository) Save(ctx context.Context, rec *receipt.Receipt) error {
	model := models.ReceiptModelFromDomain(rec)

	if model.Version <= 1 {
		if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.ErrAlreadyExists.WithDetails("receipt number " + rec.Number)
			}
			return err
		}
		return nil
	}

	result := r.db.WithContext(ctx).
		Model(&models.ReceiptModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version-1).
		Select("*").
		Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict.WithDetails(
			fmt.Sprintf("receipt %s expected version %d", rec.Number, model.Version-1))
	}
	return nil
}

// applyFilter applies filter conditions, ordering and pagination
func (r *GormReceiptRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, ReceiptSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir).Order("number " + orderDir)
}

// applyFilterWithoutPagination applies search and key filters only
func (r *GormReceiptRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(payer_name) LIKE ? OR LOWER(payee_name) LIKE ? OR LOWER(number) LIKE ?)",
			pattern, pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case receipt.FilterStatus:
			query = query.Where("status = ?", fmt.Sprint(value))
		case receipt.FilterProjectID:
			query = query.Where("project_id = ?", fmt.Sprint(value))
		}
	}
	return query
}
