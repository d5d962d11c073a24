package repositories

import (
	"context"
	"fmt"

	"journal-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	GetByID(ctx context.Context, id uint) (*models.Article, error)
	GetList(ctx context.Context, params models.ArticleListParams) ([]models.Article, int64, error)
	GetAll(ctx context.Context) ([]models.Article, error)
	GetBySubmitter(ctx context.Context, userID uint) ([]models.Article, error)
	GetAssignedTo(ctx context.Context, reviewerID uint) ([]models.Article, error)
	GetWithIssueAssignment(ctx context.Context) ([]models.Article, error)
	Update(ctx context.Context, article *models.Article) error
	CountByIssueLabel(ctx context.Context, label string) (int64, error)
	CountByStatus(ctx context.Context, statuses ...models.ArticleStatus) (int64, error)
}

type articleRepository struct {
	db *gorm.DB
}

func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

var articleSortColumns = map[string]bool{
	"created_at":     true,
	"updated_at":     true,
	"title":          true,
	"status":         true,
	"article_number": true,
}

func preloadArticle(db *gorm.DB) *gorm.DB {
	return db.Preload("Submitter").
		Preload("Reviewers", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc")
		}).
		Preload("Reviewers.Reviewer")
}

func (r *articleRepository) Create(ctx context.Context, article *models.Article) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(article).Error
}

func (r *articleRepository) GetByID(ctx context.Context, id uint) (*models.Article, error) {
	var article models.Article
	err := preloadArticle(r.db.WithContext(ctx)).First(&article, id).Error
	return &article, err
}

func (r *articleRepository) GetList(ctx context.Context, params models.ArticleListParams) ([]models.Article, int64, error) {
	var articles []models.Article
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Article{})

	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Issue != "" {
		query = query.Where("issue = ?", params.Issue)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := params.SortBy
	if !articleSortColumns[sortBy] {
		sortBy = "created_at"
	}
	sortOrder := "desc"
	if params.SortOrder == "asc" {
		sortOrder = "asc"
	}

	page, limit := params.Paging()

	err := preloadArticle(query).
		Order(fmt.Sprintf("%s %s", sortBy, sortOrder)).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&articles).Error

	return articles, total, err
}

func (r *articleRepository) GetAll(ctx context.Context) ([]models.Article, error) {
	var articles []models.Article
	err := r.db.WithContext(ctx).Order("id asc").Find(&articles).Error
	return articles, err
}

func (r *articleRepository) GetBySubmitter(ctx context.Context, userID uint) ([]models.Article, error) {
	var articles []models.Article
	err := preloadArticle(r.db.WithContext(ctx)).
		Where("submitted_by = ?", userID).
		Order("created_at desc").
		Find(&articles).Error
	return articles, err
}

func (r *articleRepository) GetAssignedTo(ctx context.Context, reviewerID uint) ([]models.Article, error) {
	var articles []models.Article
	assigned := r.db.Model(&models.ReviewerAssignment{}).Select("article_id").Where("reviewer_id = ?", reviewerID)
	err := preloadArticle(r.db.WithContext(ctx)).
		Where("id IN (?)", assigned).
		Order("created_at desc").
		Find(&articles).Error
	return articles, err
}

func (r *articleRepository) GetWithIssueAssignment(ctx context.Context) ([]models.Article, error) {
	var articles []models.Article
	err := r.db.WithContext(ctx).
		Where("status = ? OR issue IS NOT NULL", models.StatusPublished).
		Order("id asc").
		Find(&articles).Error
	return articles, err
}

// Update writes the article and its reviewer sub-records in one transaction.
// The row is only written when its revision still matches what was loaded;
// otherwise models.ErrConflict is returned and nothing changes.
func (r *articleRepository) Update(ctx context.Context, article *models.Article) error {
	prev := article.Revision
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		article.Revision = prev + 1
		res := tx.Model(article).
			Where("revision = ?", prev).
			Select("*").
			Omit(clause.Associations, "created_at").
			Updates(article)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrConflict
		}

		for i := range article.Reviewers {
			assignment := &article.Reviewers[i]
			assignment.ArticleID = article.ID
			if err := tx.Omit(clause.Associations).Save(assignment).Error; err != nil {
				if isDuplicateKey(err) {
					return models.ErrDuplicateAssignment
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		article.Revision = prev
	}
	return err
}

func (r *articleRepository) CountByIssueLabel(ctx context.Context, label string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Article{}).Where("issue = ?", label).Count(&count).Error
	return count, err
}

func (r *articleRepository) CountByStatus(ctx context.Context, statuses ...models.ArticleStatus) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Article{})
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	err := query.Count(&count).Error
	return count, err
}
