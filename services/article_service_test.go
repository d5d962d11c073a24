package services

import (
	"testing"

	"journal-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newArticleFixture() (*fakeArticleRepo, *fakeUserRepo, ArticleService) {
	articles := newFakeArticleRepo()
	users := newFakeUserRepo()
	return articles, users, NewArticleService(articles, users, "10.1000/")
}

func TestSubmitArticle(t *testing.T) {
	_, users, svc := newArticleFixture()
	author := models.CurrentUser{ID: users.add("ada", models.RoleAuthor), Role: models.RoleAuthor}

	article, err := svc.SubmitArticle(testCtx, author, models.SubmitArticleRequest{
		Title:    "  Graph cuts  ",
		Abstract: "We cut graphs.",
		Authors: []models.Author{
			{FirstName: "Ada", LastName: "Lovelace", IsCorresponding: true},
			{FirstName: "Alan", LastName: "Turing"},
		},
		Keywords: []string{"graphs"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Graph cuts", article.Title)
	assert.Equal(t, models.StatusSubmitted, article.Status)
	assert.Equal(t, author.ID, article.SubmittedBy)
	assert.Equal(t, "regular", article.PaperType)
	assert.Regexp(t, `^MS-\d{4}-[0-9A-F]{8}$`, article.ManuscriptID)
	require.Len(t, article.Authors, 2)
	assert.Equal(t, "First Author", article.Authors[0].AuthorRole)
	assert.Equal(t, 2, article.Authors[1].Order)
	assert.Empty(t, article.Reviewers)

	user, _ := users.GetByID(testCtx, author.ID)
	assert.Equal(t, models.RoleAuthor, user.Role)
}

func TestSubmitArticleRequiresTitleAndAbstract(t *testing.T) {
	_, _, svc := newArticleFixture()

	_, err := svc.SubmitArticle(testCtx, models.CurrentUser{ID: 1, Role: models.RoleAuthor}, models.SubmitArticleRequest{Title: " "})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestSubmitArticleCanRequestReviewerRole(t *testing.T) {
	_, users, svc := newArticleFixture()
	author := models.CurrentUser{ID: users.add("grace", models.RoleAuthor), Role: models.RoleAuthor}

	_, err := svc.SubmitArticle(testCtx, author, models.SubmitArticleRequest{
		Title: "Compilers", Abstract: "a", WantsReviewerRole: true,
	})
	require.NoError(t, err)

	user, _ := users.GetByID(testCtx, author.ID)
	assert.Equal(t, models.RoleReviewer, user.Role)
}

// Admins may jump the status anywhere; no predecessor is enforced.
func TestSetGlobalStatusAllowsAnyJump(t *testing.T) {
	articles, _, svc := newArticleFixture()
	a := &models.Article{Title: "t", Abstract: "a", Status: models.StatusSubmitted}
	require.NoError(t, articles.Create(testCtx, a))

	for _, status := range []models.ArticleStatus{
		models.StatusPublished, models.StatusSubmitted, models.StatusRejected, models.StatusUnderReview,
	} {
		updated, err := svc.SetGlobalStatus(testCtx, adminActor, a.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
	}

	_, err := svc.SetGlobalStatus(testCtx, adminActor, a.ID, "lost")
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.SetGlobalStatus(testCtx, models.CurrentUser{ID: 3, Role: models.RoleReviewer}, a.ID, models.StatusAccepted)
	assert.ErrorIs(t, err, models.ErrNotAuthorized)

	_, err = svc.SetGlobalStatus(testCtx, adminActor, 77, models.StatusAccepted)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAssignDOIIsStable(t *testing.T) {
	articles, _, svc := newArticleFixture()
	a := &models.Article{Title: "t", Abstract: "a"}
	require.NoError(t, articles.Create(testCtx, a))

	first, err := svc.AssignDOI(testCtx, adminActor, a.ID)
	require.NoError(t, err)
	second, err := svc.AssignDOI(testCtx, adminActor, a.ID)
	require.NoError(t, err)

	require.NotNil(t, first.DOI)
	require.NotNil(t, second.DOI)
	assert.Equal(t, "10.1000/1", *first.DOI)
	assert.Equal(t, *first.DOI, *second.DOI)
}

func TestUpdatePDF(t *testing.T) {
	articles, _, svc := newArticleFixture()
	a := &models.Article{Title: "t", Abstract: "a"}
	require.NoError(t, articles.Create(testCtx, a))

	updated, err := svc.UpdatePDF(testCtx, adminActor, a.ID, "https://files.example.com/final.pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://files.example.com/final.pdf", updated.PDFURL)

	_, err = svc.UpdatePDF(testCtx, adminActor, a.ID, "")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestGetStats(t *testing.T) {
	articles, _, svc := newArticleFixture()
	for _, status := range []models.ArticleStatus{
		models.StatusSubmitted, models.StatusUnderReview, models.StatusPublished,
		models.StatusPublished, models.StatusRejected, models.StatusAccepted,
	} {
		require.NoError(t, articles.Create(testCtx, &models.Article{Title: "t", Abstract: "a", Status: status}))
	}

	stats, err := svc.GetStats(testCtx, adminActor)
	require.NoError(t, err)
	assert.Equal(t, models.ArticleStats{Total: 6, Pending: 2, Published: 2, Rejected: 1}, *stats)

	_, err = svc.GetStats(testCtx, models.CurrentUser{ID: 2, Role: models.RoleAuthor})
	assert.ErrorIs(t, err, models.ErrNotAuthorized)
}

func TestMyAndAssignedArticles(t *testing.T) {
	articles, _, svc := newArticleFixture()
	mine := &models.Article{Title: "mine", Abstract: "a", SubmittedBy: 10}
	other := &models.Article{Title: "other", Abstract: "a", SubmittedBy: 11,
		Reviewers: []models.ReviewerAssignment{{ReviewerID: 10, Status: models.ReviewerInvited}}}
	require.NoError(t, articles.Create(testCtx, mine))
	require.NoError(t, articles.Create(testCtx, other))

	actor := models.CurrentUser{ID: 10, Role: models.RoleReviewer}

	got, err := svc.GetMyArticles(testCtx, actor)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "mine", got[0].Title)

	got, err = svc.GetAssignedArticles(testCtx, actor)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "other", got[0].Title)

	_, _, err = svc.GetArticles(testCtx, models.ArticleListParams{Status: "bogus"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestMigrateAuthorRoles(t *testing.T) {
	articles, _, svc := newArticleFixture()
	legacy := &models.Article{Title: "legacy", Abstract: "a", Authors: []models.Author{{FirstName: "A"}, {FirstName: "B"}}}
	current := &models.Article{Title: "current", Abstract: "a", Authors: []models.Author{{FirstName: "C", Order: 1, AuthorRole: "First Author"}}}
	require.NoError(t, articles.Create(testCtx, legacy))
	require.NoError(t, articles.Create(testCtx, current))

	updated, err := svc.MigrateAuthorRoles(testCtx)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	stored, _ := articles.GetByID(testCtx, legacy.ID)
	assert.Equal(t, "Second Author", stored.Authors[1].AuthorRole)
}
