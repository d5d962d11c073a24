package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"journal-api/models"
	"journal-api/repositories"

	"gorm.io/gorm"
)

type PublicationService interface {
	EnsureIssue(ctx context.Context, req models.EnsureIssueRequest) (*models.Issue, bool, error)
	NextIssueNumber(ctx context.Context, volume int) (int, error)
	PublishToIssue(ctx context.Context, actor models.CurrentUser, articleID uint, req models.PublishToIssueRequest) (*models.PublishResult, error)
	NextArticleNumber(ctx context.Context, query models.ArticleNumberQuery) (int, error)
	ResetIssueAssignment(ctx context.Context, actor models.CurrentUser, articleID uint) (*models.Article, error)
	ResetAllIssues(ctx context.Context) (int, error)
	ListIssues(ctx context.Context, params models.IssueListParams) ([]models.Issue, error)
}

type publicationService struct {
	articleRepo repositories.ArticleRepository
	issueRepo   repositories.IssueRepository
	now         func() time.Time
}

func NewPublicationService(articleRepo repositories.ArticleRepository, issueRepo repositories.IssueRepository) PublicationService {
	return &publicationService{
		articleRepo: articleRepo,
		issueRepo:   issueRepo,
		now:         time.Now,
	}
}

// EnsureIssue returns the issue for (volume, issue), creating it when absent.
// Without an issue number the next free number in the volume is taken. A
// concurrent creation of the same pair is recovered by returning the row that
// won. The bool reports whether this call created the issue.
func (s *publicationService) EnsureIssue(ctx context.Context, req models.EnsureIssueRequest) (*models.Issue, bool, error) {
	if req.Volume < 1 {
		return nil, false, models.ValidationError("volume number is required")
	}
	issueType := req.Type
	if issueType == "" {
		issueType = models.IssueRegular
	}
	if !issueType.Valid() {
		return nil, false, models.ValidationError("invalid issue type %q", req.Type)
	}

	var number int
	if req.Issue != nil {
		if *req.Issue < 1 {
			return nil, false, models.ValidationError("issue number must be positive")
		}
		number = *req.Issue
		existing, err := s.issueRepo.GetByVolumeAndNumber(ctx, req.Volume, number)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, err
		}
	} else {
		next, err := s.NextIssueNumber(ctx, req.Volume)
		if err != nil {
			return nil, false, err
		}
		number = next
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = models.DefaultIssueTitle(req.Volume, number)
	}
	issue := &models.Issue{
		Volume:          req.Volume,
		IssueNumber:     number,
		Type:            issueType,
		Title:           title,
		Description:     req.Description,
		IsPublished:     true,
		PublicationDate: s.now(),
	}

	err := s.issueRepo.Create(ctx, issue)
	if errors.Is(err, models.ErrUniquenessConflict) {
		existing, lookupErr := s.issueRepo.GetByVolumeAndNumber(ctx, req.Volume, number)
		if lookupErr != nil {
			return nil, false, lookupErr
		}
		log.Printf("issue vol %d no %d: created concurrently, using existing record %d", req.Volume, number, existing.ID)
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	log.Printf("issue vol %d no %d: created (%s)", issue.Volume, issue.IssueNumber, issue.Type)
	return issue, true, nil
}

func (s *publicationService) NextIssueNumber(ctx context.Context, volume int) (int, error) {
	if volume < 1 {
		return 0, models.ValidationError("invalid volume %d", volume)
	}
	last, err := s.issueRepo.GetLatestByVolume(ctx, volume)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return last.IssueNumber + 1, nil
}

// PublishToIssue places the article in an issue and marks it published
// whatever its previous status. An explicit article number wins and lifts the
// label's counter past it; an article already numbered under the same label
// keeps its number; otherwise the label's counter hands out the next one.
func (s *publicationService) PublishToIssue(ctx context.Context, actor models.CurrentUser, articleID uint, req models.PublishToIssueRequest) (*models.PublishResult, error) {
	if err := requireAdmin(actor, "publish articles"); err != nil {
		return nil, err
	}

	article, err := s.articleRepo.GetByID(ctx, articleID)
	if err != nil {
		return nil, notFound(err, "article")
	}

	issue, _, err := s.EnsureIssue(ctx, models.EnsureIssueRequest{
		Volume:      req.Volume,
		Issue:       req.Issue,
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
	})
	if err != nil {
		return nil, err
	}

	label := models.IssueLabel(issue.Volume, issue.IssueNumber, req.Title)

	var number int
	switch {
	case req.ArticleNumber != nil:
		if *req.ArticleNumber < 1 {
			return nil, models.ValidationError("article number must be positive")
		}
		number = *req.ArticleNumber
		if err := s.issueRepo.ReserveArticleNumber(ctx, label, number); err != nil {
			return nil, err
		}
	case article.IssueLabel() == label && article.ArticleNumber != nil:
		number = *article.ArticleNumber
	default:
		number, err = s.issueRepo.AllocateArticleNumber(ctx, label)
		if err != nil {
			return nil, err
		}
	}

	article.Issue = &label
	article.ArticleNumber = &number
	article.Status = models.StatusPublished
	if err := s.articleRepo.Update(ctx, article); err != nil {
		return nil, err
	}
	log.Printf("article %d: published in %q as number %d", article.ID, label, number)

	return &models.PublishResult{Article: article, Issue: issue}, nil
}

func labelForQuery(volume int, issue *int, title string) (string, error) {
	if volume < 1 {
		return "", models.ValidationError("volume number is required")
	}
	if issue == nil {
		if strings.TrimSpace(title) == "" {
			return "", models.ValidationError("issue number or title is required")
		}
		return strings.TrimSpace(title), nil
	}
	return models.IssueLabel(volume, *issue, title), nil
}

// NextArticleNumber previews the number the next publication under the
// label would receive. Nothing is reserved.
func (s *publicationService) NextArticleNumber(ctx context.Context, query models.ArticleNumberQuery) (int, error) {
	label, err := labelForQuery(query.Volume, query.Issue, query.Title)
	if err != nil {
		return 0, err
	}
	return s.issueRepo.PeekArticleNumber(ctx, label)
}

// ResetIssueAssignment clears issue label, article number and DOI together.
func (s *publicationService) ResetIssueAssignment(ctx context.Context, actor models.CurrentUser, articleID uint) (*models.Article, error) {
	if err := requireAdmin(actor, "reset issue assignments"); err != nil {
		return nil, err
	}

	article, err := s.articleRepo.GetByID(ctx, articleID)
	if err != nil {
		return nil, notFound(err, "article")
	}
	article.ClearIssueAssignment()
	if err := s.articleRepo.Update(ctx, article); err != nil {
		return nil, err
	}
	log.Printf("article %d: issue assignment reset by admin %d", article.ID, actor.ID)
	return article, nil
}

// ResetAllIssues applies the reset to every published or labelled article.
func (s *publicationService) ResetAllIssues(ctx context.Context) (int, error) {
	articles, err := s.articleRepo.GetWithIssueAssignment(ctx)
	if err != nil {
		return 0, err
	}
	for i := range articles {
		articles[i].ClearIssueAssignment()
		if err := s.articleRepo.Update(ctx, &articles[i]); err != nil {
			return i, fmt.Errorf("article %d: %w", articles[i].ID, err)
		}
	}
	return len(articles), nil
}

func (s *publicationService) ListIssues(ctx context.Context, params models.IssueListParams) ([]models.Issue, error) {
	if params.Type != "" && !params.Type.Valid() {
		return nil, models.ValidationError("invalid issue type %q", params.Type)
	}
	return s.issueRepo.GetList(ctx, params)
}
