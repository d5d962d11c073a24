package models

import (
	"encoding/json"
	"strings"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest changes the caller's own profile. Empty fields keep
// the stored value.
type UpdateProfileRequest struct {
	Name        string `json:"name" validate:"omitempty,min=2,max=100"`
	FirstName   string `json:"first_name" validate:"max=100"`
	LastName    string `json:"last_name" validate:"max=100"`
	Affiliation string `json:"affiliation" validate:"max=255"`
	ORCID       string `json:"orcid" validate:"max=50"`
	Password    string `json:"password" validate:"omitempty,min=8"`
}

type UserListParams struct {
	Role UserRole `form:"role"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token           string `json:"token" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type SubmitArticleRequest struct {
	Title                 string         `json:"title" validate:"required,max=500"`
	Abstract              string         `json:"abstract" validate:"required"`
	Content               string         `json:"content"`
	PaperType             string         `json:"paper_type"`
	Authors               []Author       `json:"authors" validate:"dive"`
	Keywords              []string       `json:"keywords"`
	HasFunding            bool           `json:"has_funding"`
	Funders               []Funder       `json:"funders"`
	WasConferenceAccepted bool           `json:"was_conference_accepted"`
	ConferenceName        string         `json:"conference_name"`
	SuggestedReviewers    []ReviewerHint `json:"suggested_reviewers"`
	OpposedReviewers      []ReviewerHint `json:"opposed_reviewers"`
	ManuscriptURL         string         `json:"manuscript_url"`
	CoverLetterURL        string         `json:"cover_letter_url"`
	CoverLetterText       string         `json:"cover_letter_text"`
	WantsReviewerRole     bool           `json:"wants_reviewer_role"`
}

// SubmitArticleForm is the multipart variant of a submission: list fields
// arrive as JSON-encoded strings.
type SubmitArticleForm struct {
	Title                 string `form:"title"`
	Abstract              string `form:"abstract"`
	Content               string `form:"content"`
	PaperType             string `form:"paper_type"`
	Authors               string `form:"authors"`
	Keywords              string `form:"keywords"`
	HasFunding            string `form:"has_funding"`
	Funders               string `form:"funders"`
	WasConferenceAccepted string `form:"was_conference_accepted"`
	ConferenceName        string `form:"conference_name"`
	SuggestedReviewers    string `form:"suggested_reviewers"`
	OpposedReviewers      string `form:"opposed_reviewers"`
	ManuscriptURL         string `form:"manuscript_url"`
	CoverLetterURL        string `form:"cover_letter_url"`
	CoverLetterText       string `form:"cover_letter_text"`
	WantsReviewerRole     string `form:"wants_reviewer_role"`
}

func (f SubmitArticleForm) ToRequest() (SubmitArticleRequest, error) {
	req := SubmitArticleRequest{
		Title:                 f.Title,
		Abstract:              f.Abstract,
		Content:               f.Content,
		PaperType:             f.PaperType,
		HasFunding:            f.HasFunding == "true",
		WasConferenceAccepted: f.WasConferenceAccepted == "true",
		ConferenceName:        f.ConferenceName,
		ManuscriptURL:         f.ManuscriptURL,
		CoverLetterURL:        f.CoverLetterURL,
		CoverLetterText:       f.CoverLetterText,
		WantsReviewerRole:     f.WantsReviewerRole == "true",
	}

	if err := decodeFormList("authors", f.Authors, &req.Authors); err != nil {
		return req, err
	}
	if err := decodeFormList("keywords", f.Keywords, &req.Keywords); err != nil {
		return req, err
	}
	if err := decodeFormList("funders", f.Funders, &req.Funders); err != nil {
		return req, err
	}
	if err := decodeFormList("suggested_reviewers", f.SuggestedReviewers, &req.SuggestedReviewers); err != nil {
		return req, err
	}
	if err := decodeFormList("opposed_reviewers", f.OpposedReviewers, &req.OpposedReviewers); err != nil {
		return req, err
	}
	return req, nil
}

func decodeFormList(field, raw string, dst interface{}) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return ValidationError("%s: malformed list: %v", field, err)
	}
	return nil
}

type InviteReviewerRequest struct {
	ReviewerID uint `json:"reviewer_id" validate:"required"`
}

type RespondInvitationRequest struct {
	Response ReviewerStatus `json:"response" validate:"required"`
}

// UpdateArticleRequest drives PUT /articles/:id. Admins set the global
// status; assigned reviewers record their decision with it.
type UpdateArticleRequest struct {
	Status           ArticleStatus `json:"status"`
	ReviewerComments string        `json:"reviewer_comments"`
}

type EnsureIssueRequest struct {
	Volume      int       `json:"volume" validate:"required,min=1"`
	Issue       *int      `json:"issue" validate:"omitempty,min=1"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        IssueType `json:"type"`
}

type PublishToIssueRequest struct {
	Volume        int       `json:"volume" validate:"required,min=1"`
	Issue         *int      `json:"issue" validate:"omitempty,min=1"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Type          IssueType `json:"type"`
	ArticleNumber *int      `json:"article_number" validate:"omitempty,min=1"`
}

type ArticleNumberQuery struct {
	Volume int    `form:"volume" validate:"required,min=1"`
	Issue  *int   `form:"issue" validate:"omitempty,min=1"`
	Title  string `form:"title"`
}

type UpdatePDFRequest struct {
	PDFURL string `json:"pdf_url" validate:"required"`
}

type CreateNotificationRequest struct {
	Title       string           `json:"title" validate:"required"`
	Message     string           `json:"message" validate:"required"`
	Type        NotificationType `json:"type"`
	TargetRoles []string         `json:"target_roles"`
	RecipientID *uint            `json:"recipient_id"`
	Link        string           `json:"link"`
}

type ArticleListParams struct {
	Status    string `form:"status"`
	Issue     string `form:"issue"`
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=10"`
	SortBy    string `form:"sort_by,default=created_at"`
	SortOrder string `form:"sort_order,default=desc"`
}

// MaxPageLimit bounds the page size of every list query.
const MaxPageLimit = 100

// Paging clamps page and limit into range.
func (p ArticleListParams) Paging() (page, limit int) {
	page, limit = p.Page, p.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit
}

type IssueListParams struct {
	Type IssueType `form:"type"`
}

type ArticleStats struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Published int64 `json:"published"`
	Rejected  int64 `json:"rejected"`
}

type PublishResult struct {
	Article *Article `json:"article"`
	Issue   *Issue   `json:"issue"`
}
