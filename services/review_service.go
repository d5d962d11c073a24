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

type ReviewService interface {
	InviteReviewer(ctx context.Context, actor models.CurrentUser, articleID, reviewerID uint) (*models.Article, error)
	RespondToInvitation(ctx context.Context, actor models.CurrentUser, articleID uint, response models.ReviewerStatus) (*models.Article, error)
	SubmitReviewDecision(ctx context.Context, actor models.CurrentUser, articleID uint, decision models.ArticleStatus, comments string) (*models.Article, error)
}

type reviewService struct {
	articleRepo repositories.ArticleRepository
	userRepo    repositories.UserRepository
	notifier    Notifier
	now         func() time.Time
}

func NewReviewService(articleRepo repositories.ArticleRepository, userRepo repositories.UserRepository, notifier Notifier) ReviewService {
	return &reviewService{
		articleRepo: articleRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		now:         time.Now,
	}
}

func (s *reviewService) loadArticle(ctx context.Context, id uint) (*models.Article, error) {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "article")
	}
	return article, nil
}

// InviteReviewer appends an invited sub-record. The article status is left
// untouched.
func (s *reviewService) InviteReviewer(ctx context.Context, actor models.CurrentUser, articleID, reviewerID uint) (*models.Article, error) {
	if err := requireAdmin(actor, "invite reviewers"); err != nil {
		return nil, err
	}

	article, err := s.loadArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	reviewer, err := s.userRepo.GetByID(ctx, reviewerID)
	if err != nil {
		return nil, notFound(err, "reviewer")
	}

	if article.FindReviewer(reviewerID) != nil {
		return nil, models.ErrDuplicateAssignment
	}
	if len(article.Reviewers) >= models.MaxReviewers {
		return nil, models.ErrCapacityExceeded
	}

	article.Reviewers = append(article.Reviewers, models.ReviewerAssignment{
		ArticleID:  article.ID,
		ReviewerID: reviewerID,
		Position:   len(article.Reviewers),
		Status:     models.ReviewerInvited,
		Date:       s.now(),
	})
	if err := s.articleRepo.Update(ctx, article); err != nil {
		return nil, err
	}
	article.Reviewers[len(article.Reviewers)-1].Reviewer = reviewer
	log.Printf("article %d: reviewer %d invited", article.ID, reviewerID)

	s.notifier.Notify(ctx, models.NotificationRequest{
		Title:       "New Review Invitation",
		Message:     fmt.Sprintf("You have been invited to review the manuscript: %q", article.Title),
		Type:        models.NotificationImportant,
		RecipientID: &reviewerID,
		Link:        "/reviewer",
		CreatedBy:   actor.ID,
	})

	return article, nil
}

// RespondToInvitation records the caller's answer. Answers may change until
// the review is completed. Accepting moves the article under review in the
// same save.
func (s *reviewService) RespondToInvitation(ctx context.Context, actor models.CurrentUser, articleID uint, response models.ReviewerStatus) (*models.Article, error) {
	if response != models.ReviewerAccepted && response != models.ReviewerDeclined {
		return nil, models.ValidationError("invalid response %q", response)
	}

	article, err := s.loadArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	entry := article.FindReviewer(actor.ID)
	if entry == nil {
		return nil, models.ErrInvitationNotFound
	}
	if entry.Status == models.ReviewerCompleted {
		return nil, models.ValidationError("review already completed")
	}

	entry.Status = response
	entry.Date = s.now()
	if response == models.ReviewerAccepted {
		article.Status = models.StatusUnderReview
	}
	if err := s.articleRepo.Update(ctx, article); err != nil {
		return nil, err
	}
	log.Printf("article %d: reviewer %d %s invitation", article.ID, actor.ID, response)

	kind := models.NotificationUpdate
	if response == models.ReviewerDeclined {
		kind = models.NotificationWarning
	}
	word := string(response)
	s.notifier.Notify(ctx, models.NotificationRequest{
		Title:       "Reviewer " + strings.ToUpper(word[:1]) + word[1:],
		Message:     fmt.Sprintf("Reviewer response for manuscript: %q. Decision: %s", article.Title, response),
		Type:        kind,
		TargetRoles: []string{string(models.RoleAdmin)},
		Link:        "/admin",
		CreatedBy:   actor.ID,
	})

	return article, nil
}

// SubmitReviewDecision completes the caller's review. The article status is
// not changed; an admin sets it separately.
func (s *reviewService) SubmitReviewDecision(ctx context.Context, actor models.CurrentUser, articleID uint, decision models.ArticleStatus, comments string) (*models.Article, error) {
	article, err := s.loadArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	entry := article.FindReviewer(actor.ID)
	if entry == nil {
		return nil, models.NotAuthorizedError("not an assigned reviewer for this article")
	}
	if !decision.Valid() {
		return nil, models.ValidationError("invalid decision %q", decision)
	}

	entry.Status = models.ReviewerCompleted
	entry.Decision = &decision
	entry.Comments = comments
	entry.Date = s.now()
	if err := s.articleRepo.Update(ctx, article); err != nil {
		return nil, err
	}
	log.Printf("article %d: reviewer %d completed review (%s)", article.ID, actor.ID, decision)
	return article, nil
}
