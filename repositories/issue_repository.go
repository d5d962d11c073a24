package repositories

import (
	"context"
	"errors"

	"journal-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IssueRepository interface {
	Create(ctx context.Context, issue *models.Issue) error
	GetByVolumeAndNumber(ctx context.Context, volume, number int) (*models.Issue, error)
	GetLatestByVolume(ctx context.Context, volume int) (*models.Issue, error)
	GetList(ctx context.Context, params models.IssueListParams) ([]models.Issue, error)
	AllocateArticleNumber(ctx context.Context, label string) (int, error)
	ReserveArticleNumber(ctx context.Context, label string, number int) error
	PeekArticleNumber(ctx context.Context, label string) (int, error)
}

type issueRepository struct {
	db *gorm.DB
}

func NewIssueRepository(db *gorm.DB) IssueRepository {
	return &issueRepository{db: db}
}

// Create inserts a new issue. A (volume, issue) pair that already exists
// comes back as models.ErrUniquenessConflict.
func (r *issueRepository) Create(ctx context.Context, issue *models.Issue) error {
	err := r.db.WithContext(ctx).Create(issue).Error
	if isDuplicateKey(err) {
		return models.ErrUniquenessConflict
	}
	return err
}

func (r *issueRepository) GetByVolumeAndNumber(ctx context.Context, volume, number int) (*models.Issue, error) {
	var issue models.Issue
	err := r.db.WithContext(ctx).
		Where("volume = ? AND issue_number = ?", volume, number).
		First(&issue).Error
	return &issue, err
}

func (r *issueRepository) GetLatestByVolume(ctx context.Context, volume int) (*models.Issue, error) {
	var issue models.Issue
	err := r.db.WithContext(ctx).
		Where("volume = ?", volume).
		Order("issue_number desc").
		First(&issue).Error
	return &issue, err
}

func (r *issueRepository) GetList(ctx context.Context, params models.IssueListParams) ([]models.Issue, error) {
	var issues []models.Issue
	query := r.db.WithContext(ctx).Where("is_published = ?", true)
	if params.Type != "" {
		query = query.Where("type = ?", params.Type)
	}
	err := query.Order("volume desc").Order("issue_number desc").Find(&issues).Error
	return issues, err
}

// AllocateArticleNumber hands out the next article number under label.
// The counter row is seeded from the articles already carrying the label and
// then incremented in place, so concurrent publishers never share a number.
func (r *issueRepository) AllocateArticleNumber(ctx context.Context, label string) (int, error) {
	var next int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := seedArticleCounter(tx, label); err != nil {
			return err
		}

		if err := tx.Model(&models.IssueCounter{}).
			Where("label = ?", label).
			UpdateColumn("last_number", gorm.Expr("last_number + ?", 1)).Error; err != nil {
			return err
		}

		var counter models.IssueCounter
		if err := tx.Where("label = ?", label).First(&counter).Error; err != nil {
			return err
		}
		next = counter.LastNumber
		return nil
	})
	return next, err
}

// ReserveArticleNumber records a number chosen by the caller so later
// allocations under label start above it. The counter never moves backwards.
func (r *issueRepository) ReserveArticleNumber(ctx context.Context, label string, number int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := seedArticleCounter(tx, label); err != nil {
			return err
		}
		return tx.Model(&models.IssueCounter{}).
			Where("label = ?", label).
			UpdateColumn("last_number", gorm.Expr("CASE WHEN last_number < ? THEN ? ELSE last_number END", number, number)).Error
	})
}

func seedArticleCounter(tx *gorm.DB, label string) error {
	var existing int64
	if err := tx.Model(&models.Article{}).Where("issue = ?", label).Count(&existing).Error; err != nil {
		return err
	}
	seed := models.IssueCounter{Label: label, LastNumber: int(existing)}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error
}

// PeekArticleNumber reports the number the next allocation would return
// without consuming it.
func (r *issueRepository) PeekArticleNumber(ctx context.Context, label string) (int, error) {
	db := r.db.WithContext(ctx)

	var existing int64
	if err := db.Model(&models.Article{}).Where("issue = ?", label).Count(&existing).Error; err != nil {
		return 0, err
	}

	last := int(existing)
	var counter models.IssueCounter
	err := db.Where("label = ?", label).First(&counter).Error
	switch {
	case err == nil:
		if counter.LastNumber > last {
			last = counter.LastNumber
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return 0, err
	}
	return last + 1, nil
}
