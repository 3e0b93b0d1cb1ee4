package repository

import (
	"context"

	"clubhub/internal/cache"
	"clubhub/internal/models"

	"gorm.io/gorm"
)

// ClubRepository defines persistence operations for clubs.
type ClubRepository interface {
	Create(ctx context.Context, club *models.Club) error
	GetByID(ctx context.Context, id uint) (*models.Club, error)
	GetByName(ctx context.Context, name string) (*models.Club, error)
	GetByOwner(ctx context.Context, ownerID uint) (*models.Club, error)
	List(ctx context.Context) ([]models.Club, error)
	ListByIDs(ctx context.Context, ids []uint) ([]models.Club, error)
	ListPending(ctx context.Context) ([]models.Club, error)
	Count(ctx context.Context) (int64, error)
	Claim(ctx context.Context, clubID, ownerID uint, description string) (bool, error)
	Verify(ctx context.Context, clubID uint) error
	UpdateSettings(ctx context.Context, club *models.Club) error
}

type clubRepository struct {
	db *gorm.DB
}

// NewClubRepository returns a new ClubRepository implementation.
func NewClubRepository(db *gorm.DB) ClubRepository {
	return &clubRepository{db: db}
}

// Create returns the raw driver error so callers can tell a duplicate name
// apart from other failures with IsUniqueViolation.
func (r *clubRepository) Create(ctx context.Context, club *models.Club) error {
	if err := r.db.WithContext(ctx).Create(club).Error; err != nil {
		return err
	}
	cache.InvalidateClub(ctx, club.Slug())
	return nil
}

func (r *clubRepository) GetByID(ctx context.Context, id uint) (*models.Club, error) {
	var club models.Club
	if err := r.db.WithContext(ctx).First(&club, id).Error; err != nil {
		return nil, notFoundOr(err, "Club", id)
	}
	return &club, nil
}

func (r *clubRepository) GetByName(ctx context.Context, name string) (*models.Club, error) {
	var club models.Club
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&club).Error; err != nil {
		return nil, notFoundOr(err, "Club", name)
	}
	return &club, nil
}

func (r *clubRepository) GetByOwner(ctx context.Context, ownerID uint) (*models.Club, error) {
	var club models.Club
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&club).Error; err != nil {
		return nil, notFoundOr(err, "Club for owner", ownerID)
	}
	return &club, nil
}

func (r *clubRepository) List(ctx context.Context) ([]models.Club, error) {
	var clubs []models.Club
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&clubs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return clubs, nil
}

func (r *clubRepository) ListByIDs(ctx context.Context, ids []uint) ([]models.Club, error) {
	if len(ids) == 0 {
		return []models.Club{}, nil
	}
	var clubs []models.Club
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("name ASC").Find(&clubs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return clubs, nil
}

// ListPending returns clubs awaiting admin action: not yet verified, or
// claimed by an owner whose officer status is unconfirmed.
func (r *clubRepository) ListPending(ctx context.Context) ([]models.Club, error) {
	var clubs []models.Club
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("verified = ? OR (officer_verified = ? AND owner_id IS NOT NULL)", false, false).
		Order("id ASC").
		Find(&clubs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return clubs, nil
}

func (r *clubRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Club{}).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

// Claim assigns an unowned club to ownerID. It reports false when the club
// already had an owner; the conditional update makes concurrent claims safe.
func (r *clubRepository) Claim(ctx context.Context, clubID, ownerID uint, description string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Club{}).
		Where("id = ? AND owner_id IS NULL", clubID).
		Updates(map[string]interface{}{
			"owner_id":         ownerID,
			"verified":         true,
			"officer_verified": false,
			"description":      description,
		})
	if res.Error != nil {
		if IsUniqueViolation(res.Error) {
			return false, models.NewConflictError("You already manage a club.")
		}
		return false, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	r.invalidate(ctx, clubID)
	return true, nil
}

func (r *clubRepository) Verify(ctx context.Context, clubID uint) error {
	res := r.db.WithContext(ctx).Model(&models.Club{}).
		Where("id = ?", clubID).
		Updates(map[string]interface{}{"verified": true, "officer_verified": true})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Club", clubID)
	}
	r.invalidate(ctx, clubID)
	return nil
}

func (r *clubRepository) UpdateSettings(ctx context.Context, club *models.Club) error {
	err := r.db.WithContext(ctx).Model(club).
		Select("description", "meeting_time", "location", "image_file").
		Updates(club).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateClub(ctx, club.Slug())
	return nil
}

func (r *clubRepository) invalidate(ctx context.Context, clubID uint) {
	var names []string
	if err := r.db.WithContext(ctx).Model(&models.Club{}).Where("id = ?", clubID).Pluck("name", &names).Error; err == nil && len(names) > 0 {
		cache.InvalidateClub(ctx, models.ClubSlug(names[0]))
	}
}
