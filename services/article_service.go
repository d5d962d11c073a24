package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"journal-api/models"
	"journal-api/repositories"
)

type ArticleService interface {
	SubmitArticle(ctx context.Context, actor models.CurrentUser, req models.SubmitArticleRequest) (*models.Article, error)
	GetArticle(ctx context.Context, id uint) (*models.Article, error)
	GetArticles(ctx context.Context, params models.ArticleListParams) ([]models.Article, int64, error)
	GetMyArticles(ctx context.Context, actor models.CurrentUser) ([]models.Article, error)
	GetAssignedArticles(ctx context.Context, actor models.CurrentUser) ([]models.Article, error)
	GetStats(ctx context.Context, actor models.CurrentUser) (*models.ArticleStats, error)
	SetGlobalStatus(ctx context.Context, actor models.CurrentUser, id uint, status models.ArticleStatus) (*models.Article, error)
	AssignDOI(ctx context.Context, actor models.CurrentUser, id uint) (*models.Article, error)
	UpdatePDF(ctx context.Context, actor models.CurrentUser, id uint, url string) (*models.Article, error)
	MigrateAuthorRoles(ctx context.Context) (int, error)
}

type articleService struct {
	articleRepo repositories.ArticleRepository
	userRepo    repositories.UserRepository
	doiPrefix   string
	now         func() time.Time
}

func NewArticleService(articleRepo repositories.ArticleRepository, userRepo repositories.UserRepository, doiPrefix string) ArticleService {
	return &articleService{
		articleRepo: articleRepo,
		userRepo:    userRepo,
		doiPrefix:   strings.TrimSuffix(doiPrefix, "/"),
		now:         time.Now,
	}
}

func (s *articleService) SubmitArticle(ctx context.Context, actor models.CurrentUser, req models.SubmitArticleRequest) (*models.Article, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Abstract) == "" {
		return nil, models.ValidationError("title and abstract are required")
	}

	authors := req.Authors
	models.NormalizeAuthors(authors)

	paperType := req.PaperType
	if paperType == "" {
		paperType = "regular"
	}

	article := &models.Article{
		ManuscriptID:          models.NewManuscriptID(s.now()),
		Title:                 strings.TrimSpace(req.Title),
		Abstract:              req.Abstract,
		Content:               req.Content,
		PaperType:             paperType,
		Authors:               authors,
		Keywords:              req.Keywords,
		HasFunding:            req.HasFunding,
		Funders:               req.Funders,
		WasConferenceAccepted: req.WasConferenceAccepted,
		ConferenceName:        req.ConferenceName,
		SuggestedReviewers:    req.SuggestedReviewers,
		OpposedReviewers:      req.OpposedReviewers,
		ManuscriptURL:         req.ManuscriptURL,
		CoverLetterURL:        req.CoverLetterURL,
		CoverLetterText:       req.CoverLetterText,
		Status:                models.StatusSubmitted,
		SubmittedBy:           actor.ID,
	}

	if err := s.articleRepo.Create(ctx, article); err != nil {
		return nil, err
	}
	log.Printf("article %d: submitted as %s by user %d", article.ID, article.ManuscriptID, actor.ID)

	if req.WantsReviewerRole && actor.Role == models.RoleAuthor {
		s.promoteToReviewer(ctx, actor.ID)
	}

	return s.articleRepo.GetByID(ctx, article.ID)
}

// promoteToReviewer is a side effect of submission and never fails it.
func (s *articleService) promoteToReviewer(ctx context.Context, userID uint) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		log.Printf("user %d: reviewer upgrade skipped: %v", userID, err)
		return
	}
	if user.Role != models.RoleAuthor {
		return
	}
	user.Role = models.RoleReviewer
	if err := s.userRepo.Update(ctx, user); err != nil {
		log.Printf("user %d: reviewer upgrade failed: %v", userID, err)
		return
	}
	log.Printf("user %d: upgraded to reviewer", userID)
}

func (s *articleService) GetArticle(ctx context.Context, id uint) (*models.Article, error) {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "article")
	}
	return article, nil
}

func (s *articleService) GetArticles(ctx context.Context, params models.ArticleListParams) ([]models.Article, int64, error) {
	if params.Status != "" && !models.ArticleStatus(params.Status).Valid() {
		return nil, 0, models.ValidationError("invalid status %q", params.Status)
	}
	return s.articleRepo.GetList(ctx, params)
}

func (s *articleService) GetMyArticles(ctx context.Context, actor models.CurrentUser) ([]models.Article, error) {
	return s.articleRepo.GetBySubmitter(ctx, actor.ID)
}

func (s *articleService) GetAssignedArticles(ctx context.Context, actor models.CurrentUser) ([]models.Article, error) {
	return s.articleRepo.GetAssignedTo(ctx, actor.ID)
}

func (s *articleService) GetStats(ctx context.Context, actor models.CurrentUser) (*models.ArticleStats, error) {
	if err := requireAdmin(actor, "view statistics"); err != nil {
		return nil, err
	}

	var stats models.ArticleStats
	var err error
	if stats.Total, err = s.articleRepo.CountByStatus(ctx); err != nil {
		return nil, err
	}
	if stats.Pending, err = s.articleRepo.CountByStatus(ctx, models.StatusSubmitted, models.StatusUnderReview); err != nil {
		return nil, err
	}
	if stats.Published, err = s.articleRepo.CountByStatus(ctx, models.StatusPublished); err != nil {
		return nil, err
	}
	if stats.Rejected, err = s.articleRepo.CountByStatus(ctx, models.StatusRejected); err != nil {
		return nil, err
	}
	return &stats, nil
}

// SetGlobalStatus overwrites the status with any known value. Editors may
// jump between states freely, so no predecessor is checked.
func (s *articleService) SetGlobalStatus(ctx context.Context, actor models.CurrentUser, id uint, status models.ArticleStatus) (*models.Article, error) {
	if err := requireAdmin(actor, "set article status"); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, models.ValidationError("invalid status %q", status)
	}

	article, err := s.GetArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	article.Status = status
	if err := s.articleRepo.Update(ctx, article); err != nil {
		return nil, err
	}
	log.Printf("article %d: status set to %s by admin %d", id, status, actor.ID)
	return article, nil
}

func (s *articleService) doiFor(id uint) string {
	return fmt.Sprintf("%s/%d", s.doiPrefix, id)
}

// AssignDOI derives the DOI from the article id, so repeated calls store the
// same value.
func (s *articleService) AssignDOI(ctx context.Context, actor models.CurrentUser, id uint) (*models.Article, error) {
	if err := requireAdmin(actor, "assign a DOI"); err != nil {
		return nil, err
	}

	article, err := s.GetArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	doi := s.doiFor(article.ID)
	if article.DOI != nil && *article.DOI == doi {
		return article, nil
	}
	article.DOI = &doi
	if err := s.articleRepo.Update(ctx, article); err != nil {
		return nil, err
	}
	log.Printf("article %d: DOI %s assigned", id, doi)
	return article, nil
}

func (s *articleService) UpdatePDF(ctx context.Context, actor models.CurrentUser, id uint, url string) (*models.Article, error) {
	if err := requireAdmin(actor, "update the final PDF"); err != nil {
		return nil, err
	}
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, models.ValidationError("pdf_url is required")
	}

	article, err := s.GetArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	article.PDFURL = url
	if err := s.articleRepo.Update(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

// MigrateAuthorRoles backfills order and role labels on stored author lists
// and reports how many articles changed.
func (s *articleService) MigrateAuthorRoles(ctx context.Context) (int, error) {
	articles, err := s.articleRepo.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	for i := range articles {
		article := &articles[i]
		if !models.NormalizeAuthors(article.Authors) {
			continue
		}
		if err := s.articleRepo.Update(ctx, article); err != nil {
			return updated, fmt.Errorf("article %d: %w", article.ID, err)
		}
		updated++
	}
	return updated, nil
}
