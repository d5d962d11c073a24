package handlers

import (
	"strings"

	"journal-api/helper"
	"journal-api/middleware"
	"journal-api/models"
	"journal-api/services"

	"github.com/gin-gonic/gin"
)

type ArticleHandler struct {
	articleService     services.ArticleService
	reviewService      services.ReviewService
	publicationService services.PublicationService
	Helper             *helper.HTTPHelper
}

func NewArticleHandler(articleService services.ArticleService, reviewService services.ReviewService, publicationService services.PublicationService, h *helper.HTTPHelper) *ArticleHandler {
	return &ArticleHandler{
		articleService:     articleService,
		reviewService:      reviewService,
		publicationService: publicationService,
		Helper:             h,
	}
}

// bindSubmission accepts either a JSON body or a multipart form whose list
// fields are JSON strings.
func (h *ArticleHandler) bindSubmission(c *gin.Context) (models.SubmitArticleRequest, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") || c.ContentType() == "application/x-www-form-urlencoded" {
		var form models.SubmitArticleForm
		if err := c.ShouldBind(&form); err != nil {
			return models.SubmitArticleRequest{}, err
		}
		return form.ToRequest()
	}

	var req models.SubmitArticleRequest
	err := c.ShouldBindJSON(&req)
	return req, err
}

func (h *ArticleHandler) SubmitArticle(c *gin.Context) {
	req, err := h.bindSubmission(c)
	if err != nil {
		if models.KindOf(err) == models.KindValidation {
			h.Helper.SendWorkflowError(c, err)
			return
		}
		h.Helper.SendBadRequest(c, "Invalid request body", err.Error())
		return
	}
	if err := h.Helper.ValidateStruct(req); err != nil {
		h.Helper.SendInvalidInput(c, err)
		return
	}

	article, err := h.articleService.SubmitArticle(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		h.Helper.SendWorkflowError(c, err)
		return
	}

	h.Helper.SendCreated(c, "Article submitted", article)
}

func (h *ArticleHandler) GetArticles(c *gin.Context) {
	var params models.ArticleListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.Helper.SendBadRequest(c, "Invalid query", err.Error())
		return
	}
	params.Page, params.Limit = params.Paging()

	articles, total, err := h.articleService.GetArticles(c.Request.Context(), params)
	if err != nil {
		h.Helper.SendWorkflowError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Articles loaded", gin.H{
		"articles":   articles,
		"pagination": h.Helper.GeneratePaging(c, params.Limit, params.Page, int(total)),
	})
}

func (h *ArticleHandler) GetMyArticles(c *gin.Context) {
	articles, err := h.articleService.GetMyArticles(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		h.Helper.SendWorkflowError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Articles loaded", articles)
}

func (h *ArticleHandler) GetAssignedArticles(c *gin.Context) {
	articles, err := h.articleService.GetAssignedArticles(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		h.Helper.SendWorkflowError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Articles loaded", articles)
}

func (h *ArticleHandler) GetStats(c *gin.Context) {
	stats, err := h.articleService.GetStats(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		h.Helper.SendWorkflowError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Stats loaded", stats)
}

func (h *ArticleHandler) GetArticle(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid article ID", h.Helper.EmptyJsonMap())
		return
	}

	article, err := h.articleService.GetArticle(c.Request.Context(), id)
	if err != nil {
		h.Helper.SendWorkflowError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Article loaded", article)
}

// UpdateArticle lets an admin overwrite the global status and an assigned
// reviewer record their decision.
func (h *ArticleHandler) UpdateArticle(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid article ID", h.Helper.EmptyJsonMap())
		return
	}
	var req models.UpdateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Invalid request body", err.Error())
		return
	}

	ctx := c.Request.Context()
	actor := middleware.CurrentUser(c)

	var (
		article *models.Article
		err     error
	)
	switch {
	case actor.IsAdmin() && req.Status == "":
		article, err = h.articleService.GetArticle(ctx, id)
	case actor.IsAdmin():
		article, err = h.articleService.SetGlobalStatus(ctx, actor, id, req.Status)
	default:
		article, err = h.reviewService.SubmitReviewDecision(ctx, actor, id, req.Status, req.ReviewerComments)
	}
	if err != nil {
		h.Helper.SendWorkflowError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Article updated", article)
}

func (h *ArticleHandler) InviteReviewer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid article ID", h.Helper.EmptyJsonMap())
		return
	}
	var req models.InviteReviewerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Invalid request body", err.Error())
		return
	}
	if err := h.Helper.ValidateStruct(req); err != nil {
		h.Helper.SendInvalidInput(c, err)
		return
	}

	article, err := h.reviewService.InviteReviewer(c.Request.Context(), middleware.CurrentUser(c), id, req.ReviewerID)
	if err != nil {
		h.Helper.SendWorkflowError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Reviewer invited", article)
}

func (h *ArticleHandler) RespondInvitation(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid article ID", h.Helper.EmptyJsonMap())
		return
	}
	var req models.RespondInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Invalid request body", err.Error())
		return
	}

	article, err := h.reviewService.RespondToInvitation(c.Request.Context(), middleware.CurrentUser(c), id, req.Response)
	if err != nil {
		h.Helper.SendWorkflowError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Invitation "+string(req.Response), article)
}

func (h *ArticleHandler) AssignDOI(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid article ID", h.Helper.EmptyJsonMap())
		return
	}

	article, err := h.articleService.AssignDOI(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		h.Helper.SendWorkflowError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "DOI assigned", article)
}

func (h *ArticleHandler) PublishToIssue(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid article ID", h.Helper.EmptyJsonMap())
		return
	}
	var req models.PublishToIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Invalid request body", err.Error())
		return
	}
	if err := h.Helper.ValidateStruct(req); err != nil {
		h.Helper.SendInvalidInput(c, err)
		return
	}

	result, err := h.publicationService.PublishToIssue(c.Request.Context(), middleware.CurrentUser(c), id, req)
	if err != nil {
		h.Helper.SendWorkflowError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Article published", result)
}

func (h *ArticleHandler) ResetIssueAssignment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid article ID", h.Helper.EmptyJsonMap())
		return
	}

	article, err := h.publicationService.ResetIssueAssignment(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		h.Helper.SendWorkflowError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Issue assignment cleared", article)
}

func (h *ArticleHandler) UpdatePDF(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid article ID", h.Helper.EmptyJsonMap())
		return
	}
	var req models.UpdatePDFRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Invalid request body", err.Error())
		return
	}
	if err := h.Helper.ValidateStruct(req); err != nil {
		h.Helper.SendInvalidInput(c, err)
		return
	}

	article, err := h.articleService.UpdatePDF(c.Request.Context(), middleware.CurrentUser(c), id, req.PDFURL)
	if err != nil {
		h.Helper.SendWorkflowError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "PDF updated", article)
}

func (h *ArticleHandler) NextArticleNumber(c *gin.Context) {
	var query models.ArticleNumberQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.Helper.SendBadRequest(c, "Invalid query", err.Error())
		return
	}
	if err := h.Helper.ValidateStruct(query); err != nil {
		h.Helper.SendInvalidInput(c, err)
		return
	}

	next, err := h.publicationService.NextArticleNumber(c.Request.Context(), query)
	if err != nil {
		h.Helper.SendWorkflowError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Next article number", gin.H{"next_article_number": next})
}
