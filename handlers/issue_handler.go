package handlers

import (
	"strconv"

	"journal-api/helper"
	"journal-api/models"
	"journal-api/services"

	"github.com/gin-gonic/gin"
)

type IssueHandler struct {
	publicationService services.PublicationService
	Helper             *helper.HTTPHelper
}

func NewIssueHandler(publicationService services.PublicationService, h *helper.HTTPHelper) *IssueHandler {
	return &IssueHandler{publicationService: publicationService, Helper: h}
}

func (h *IssueHandler) ListIssues(c *gin.Context) {
	var params models.IssueListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.Helper.SendBadRequest(c, "Invalid query", err.Error())
		return
	}

	issues, err := h.publicationService.ListIssues(c.Request.Context(), params)
	if err != nil {
		h.Helper.SendWorkflowError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Issues loaded", issues)
}

func (h *IssueHandler) NextIssueNumber(c *gin.Context) {
	volume, err := strconv.Atoi(c.Param("volume"))
	if err != nil {
		h.Helper.SendBadRequest(c, "Invalid volume", h.Helper.EmptyJsonMap())
		return
	}

	next, err := h.publicationService.NextIssueNumber(c.Request.Context(), volume)
	if err != nil {
		h.Helper.SendWorkflowError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Next issue number", gin.H{"next_issue_number": next})
}

// PublishIssue creates the issue or returns the existing one for the same
// volume and number.
func (h *IssueHandler) PublishIssue(c *gin.Context) {
	var req models.EnsureIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Invalid request body", err.Error())
		return
	}
	if err := h.Helper.ValidateStruct(req); err != nil {
		h.Helper.SendInvalidInput(c, err)
		return
	}

	issue, created, err := h.publicationService.EnsureIssue(c.Request.Context(), req)
	if err != nil {
		h.Helper.SendWorkflowError(c, err)
		return
	}

	if created {
		h.Helper.SendCreated(c, "Issue published", issue)
		return
	}
	h.Helper.SendSuccess(c, "Issue already exists", issue)
}
