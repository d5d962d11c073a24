package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ArticleStatus string

const (
	StatusSubmitted        ArticleStatus = "submitted"
	StatusUnderReview      ArticleStatus = "under_review"
	StatusAccepted         ArticleStatus = "accepted"
	StatusPublished        ArticleStatus = "published"
	StatusRejected         ArticleStatus = "rejected"
	StatusRevisionRequired ArticleStatus = "revision_required"
)

func (s ArticleStatus) Valid() bool {
	switch s {
	case StatusSubmitted, StatusUnderReview, StatusAccepted, StatusPublished, StatusRejected, StatusRevisionRequired:
		return true
	}
	return false
}

type ReviewerStatus string

const (
	ReviewerInvited   ReviewerStatus = "invited"
	ReviewerAccepted  ReviewerStatus = "accepted"
	ReviewerDeclined  ReviewerStatus = "declined"
	ReviewerCompleted ReviewerStatus = "completed"
)

// MaxReviewers caps the reviewer sub-records of a single article.
const MaxReviewers = 5

type Author struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email" validate:"omitempty,email"`
	ORCID           string `json:"orcid,omitempty"`
	Affiliation     string `json:"affiliation"`
	City            string `json:"city,omitempty"`
	Country         string `json:"country,omitempty"`
	IsCorresponding bool   `json:"is_corresponding"`
	Order           int    `json:"order"`
	AuthorRole      string `json:"author_role,omitempty"`
}

type Funder struct {
	Name        string `json:"name"`
	GrantNumber string `json:"grant_number"`
}

type ReviewerHint struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Institution string `json:"institution"`
}

type Article struct {
	ID                    uint                              `json:"id" gorm:"primarykey"`
	ManuscriptID          string                            `json:"manuscript_id" gorm:"uniqueIndex;size:32"`
	Title                 string                            `json:"title" gorm:"not null"`
	Abstract              string                            `json:"abstract" gorm:"type:text;not null"`
	Content               string                            `json:"content" gorm:"type:text"`
	PaperType             string                            `json:"paper_type" gorm:"default:'regular'"`
	Authors               datatypes.JSONSlice[Author]       `json:"authors"`
	Keywords              datatypes.JSONSlice[string]       `json:"keywords"`
	HasFunding            bool                              `json:"has_funding"`
	Funders               datatypes.JSONSlice[Funder]       `json:"funders"`
	WasConferenceAccepted bool                              `json:"was_conference_accepted"`
	ConferenceName        string                            `json:"conference_name,omitempty"`
	SuggestedReviewers    datatypes.JSONSlice[ReviewerHint] `json:"suggested_reviewers"`
	OpposedReviewers      datatypes.JSONSlice[ReviewerHint] `json:"opposed_reviewers"`
	ManuscriptURL         string                            `json:"manuscript_url,omitempty"`
	CoverLetterURL        string                            `json:"cover_letter_url,omitempty"`
	CoverLetterText       string                            `json:"cover_letter_text,omitempty" gorm:"type:text"`
	PDFURL                string                            `json:"pdf_url,omitempty" gorm:"column:pdf_url"`
	DOI                   *string                           `json:"doi,omitempty" gorm:"column:doi"`
	Issue                 *string                           `json:"issue,omitempty" gorm:"index"`
	ArticleNumber         *int                              `json:"article_number,omitempty"`
	Status                ArticleStatus                     `json:"status" gorm:"index;default:'submitted'"`
	SubmittedBy           uint                              `json:"submitted_by" gorm:"index"`
	Submitter             *User                             `json:"submitter,omitempty" gorm:"foreignKey:SubmittedBy"`
	Reviewers             []ReviewerAssignment              `json:"reviewers" gorm:"foreignKey:ArticleID"`
	Revision              int                               `json:"revision" gorm:"not null;default:0"`
	CreatedAt             time.Time                         `json:"created_at"`
	UpdatedAt             time.Time                         `json:"updated_at"`
}

// ReviewerAssignment is the per-reviewer sub-record of an article. It has no
// lifecycle of its own: rows are written only together with their article.
type ReviewerAssignment struct {
	ID         uint           `json:"id" gorm:"primarykey"`
	ArticleID  uint           `json:"article_id" gorm:"not null;uniqueIndex:idx_reviewer_assignment"`
	ReviewerID uint           `json:"reviewer_id" gorm:"not null;uniqueIndex:idx_reviewer_assignment;index"`
	Reviewer   *User          `json:"reviewer,omitempty" gorm:"foreignKey:ReviewerID"`
	Position   int            `json:"position"`
	Status     ReviewerStatus `json:"status" gorm:"default:'invited'"`
	Decision   *ArticleStatus `json:"decision,omitempty"`
	Comments   string         `json:"comments" gorm:"type:text"`
	Date       time.Time      `json:"date"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// FindReviewer returns the caller's sub-record, or nil.
func (a *Article) FindReviewer(reviewerID uint) *ReviewerAssignment {
	for i := range a.Reviewers {
		if a.Reviewers[i].ReviewerID == reviewerID {
			return &a.Reviewers[i]
		}
	}
	return nil
}

// ClearIssueAssignment drops issue label, article number and DOI together.
// A published article falls back to accepted.
func (a *Article) ClearIssueAssignment() {
	a.Issue = nil
	a.ArticleNumber = nil
	a.DOI = nil
	if a.Status == StatusPublished {
		a.Status = StatusAccepted
	}
}

func (a *Article) IssueLabel() string {
	if a.Issue == nil {
		return ""
	}
	return *a.Issue
}

var ordinalNames = []string{
	"First", "Second", "Third", "Fourth", "Fifth",
	"Sixth", "Seventh", "Eighth", "Ninth", "Tenth",
}

// AuthorRoleLabel maps a 1-based author position to its display role.
func AuthorRoleLabel(position int) string {
	if position >= 1 && position <= len(ordinalNames) {
		return ordinalNames[position-1] + " Author"
	}
	return fmt.Sprintf("Author %d", position)
}

// NormalizeAuthors fills missing order and role labels from list position.
// It reports whether anything changed.
func NormalizeAuthors(authors []Author) bool {
	changed := false
	for i := range authors {
		position := i + 1
		if authors[i].Order == 0 {
			authors[i].Order = position
			changed = true
		}
		if authors[i].AuthorRole == "" {
			authors[i].AuthorRole = AuthorRoleLabel(position)
			changed = true
		}
	}
	return changed
}

func NewManuscriptID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("MS-%d-%s", now.Year(), suffix)
}
