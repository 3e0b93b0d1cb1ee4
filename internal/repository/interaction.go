package repository

import (
	"context"
	"fmt"

	"clubhub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InteractionRepository toggles and queries the three user join tables
// (follows, RSVPs and likes) through one code path.
type InteractionRepository interface {
	Toggle(ctx context.Context, rel models.Relation, userID, targetID uint) (bool, error)
	Exists(ctx context.Context, rel models.Relation, userID, targetID uint) (bool, error)
	Remove(ctx context.Context, rel models.Relation, userID, targetID uint) (bool, error)
	TargetIDs(ctx context.Context, rel models.Relation, userID uint) ([]uint, error)
	Count(ctx context.Context, rel models.Relation, targetID uint) (int64, error)
	CountByTargets(ctx context.Context, rel models.Relation, targetIDs []uint) (map[uint]int64, error)
}

type relationTable struct {
	targetColumn string
	empty        func() interface{}
	row          func(userID, targetID uint) interface{}
}

var relationTables = map[models.Relation]relationTable{
	models.RelationFollow: {
		targetColumn: "club_id",
		empty:        func() interface{} { return &models.ClubFollower{} },
		row: func(userID, targetID uint) interface{} {
			return &models.ClubFollower{UserID: userID, ClubID: targetID}
		},
	},
	models.RelationRSVP: {
		targetColumn: "post_id",
		empty:        func() interface{} { return &models.RSVP{} },
		row: func(userID, targetID uint) interface{} {
			return &models.RSVP{UserID: userID, PostID: targetID}
		},
	},
	models.RelationLike: {
		targetColumn: "post_id",
		empty:        func() interface{} { return &models.PostLike{} },
		row: func(userID, targetID uint) interface{} {
			return &models.PostLike{UserID: userID, PostID: targetID}
		},
	},
}

type interactionRepository struct {
	db *gorm.DB
}

// NewInteractionRepository returns a new InteractionRepository implementation.
func NewInteractionRepository(db *gorm.DB) InteractionRepository {
	return &interactionRepository{db: db}
}

func tableFor(rel models.Relation) (relationTable, error) {
	tbl, ok := relationTables[rel]
	if !ok {
		return relationTable{}, fmt.Errorf("unknown relation %q", rel)
	}
	return tbl, nil
}

func (s relationTable) pair(db *gorm.DB, userID, targetID uint) *gorm.DB {
	return db.Where("user_id = ? AND "+s.targetColumn+" = ?", userID, targetID)
}

// Toggle flips the (user, target) row and reports whether it is now present.
// The delete and the conflict-ignoring insert run in one transaction; the
// unique index decides races, and a rejected insert means the row is present.
func (r *interactionRepository) Toggle(ctx context.Context, rel models.Relation, userID, targetID uint) (bool, error) {
	tbl, err := tableFor(rel)
	if err != nil {
		return false, models.NewInternalError(err)
	}

	var active bool
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tbl.pair(tx, userID, targetID).Delete(tbl.empty())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			active = false
			return nil
		}

		if err := insertIgnoringConflict(tx, tbl, userID, targetID); err != nil {
			return err
		}
		active = true
		return nil
	})
	if err != nil {
		if IsUniqueViolation(err) {
			return true, nil
		}
		return false, models.NewInternalError(err)
	}
	return active, nil
}

func insertIgnoringConflict(tx *gorm.DB, tbl relationTable, userID, targetID uint) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: tbl.targetColumn}},
		DoNothing: true,
	}).Create(tbl.row(userID, targetID)).Error
}

func (r *interactionRepository) Exists(ctx context.Context, rel models.Relation, userID, targetID uint) (bool, error) {
	tbl, err := tableFor(rel)
	if err != nil {
		return false, models.NewInternalError(err)
	}
	var n int64
	if err := tbl.pair(r.db.WithContext(ctx).Model(tbl.empty()), userID, targetID).Count(&n).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}

// Remove deletes the row if present and reports whether one was deleted.
func (r *interactionRepository) Remove(ctx context.Context, rel models.Relation, userID, targetID uint) (bool, error) {
	tbl, err := tableFor(rel)
	if err != nil {
		return false, models.NewInternalError(err)
	}
	res := tbl.pair(r.db.WithContext(ctx), userID, targetID).Delete(tbl.empty())
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *interactionRepository) TargetIDs(ctx context.Context, rel models.Relation, userID uint) ([]uint, error) {
	tbl, err := tableFor(rel)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	var ids []uint
	err = r.db.WithContext(ctx).Model(tbl.empty()).
		Where("user_id = ?", userID).
		Pluck(tbl.targetColumn, &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *interactionRepository) Count(ctx context.Context, rel models.Relation, targetID uint) (int64, error) {
	tbl, err := tableFor(rel)
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	var n int64
	err = r.db.WithContext(ctx).Model(tbl.empty()).
		Where(tbl.targetColumn+" = ?", targetID).
		Count(&n).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (r *interactionRepository) CountByTargets(ctx context.Context, rel models.Relation, targetIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(targetIDs))
	if len(targetIDs) == 0 {
		return counts, nil
	}
	tbl, err := tableFor(rel)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	var rows []struct {
		TargetID uint
		Total    int64
	}
	err = r.db.WithContext(ctx).Model(tbl.empty()).
		Select(tbl.targetColumn+" AS target_id, COUNT(*) AS total").
		Where(tbl.targetColumn+" IN ?", targetIDs).
		Group(tbl.targetColumn).
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, row := range rows {
		counts[row.TargetID] = row.Total
	}
	return counts, nil
}
