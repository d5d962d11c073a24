package repositories

import (
	"context"
	"testing"
	"time"

	"journal-api/config"
	"journal-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.OpenDatabase(config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: name + "@example.com", Password: "x", Role: role}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	return user
}

func newArticle(title string) *models.Article {
	return &models.Article{ManuscriptID: models.NewManuscriptID(time.Now()), Title: title, Abstract: "a"}
}

func TestIssueCreateRejectsDuplicatePair(t *testing.T) {
	db := openTestDB(t)
	repo := NewIssueRepository(db)
	ctx := context.Background()

	first := &models.Issue{Volume: 1, IssueNumber: 1, Type: models.IssueRegular, IsPublished: true, PublicationDate: time.Now()}
	require.NoError(t, repo.Create(ctx, first))

	dup := &models.Issue{Volume: 1, IssueNumber: 1, Type: models.IssueSpecial, IsPublished: true}
	err := repo.Create(ctx, dup)
	assert.ErrorIs(t, err, models.ErrUniquenessConflict)

	stored, err := repo.GetByVolumeAndNumber(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, models.IssueRegular, stored.Type)

	_, err = repo.GetByVolumeAndNumber(ctx, 1, 9)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestIssueLatestAndList(t *testing.T) {
	db := openTestDB(t)
	repo := NewIssueRepository(db)
	ctx := context.Background()

	for _, issue := range []models.Issue{
		{Volume: 1, IssueNumber: 1, Type: models.IssueRegular, IsPublished: true},
		{Volume: 1, IssueNumber: 3, Type: models.IssueSpecial, IsPublished: true},
		{Volume: 2, IssueNumber: 1, Type: models.IssueRegular, IsPublished: false},
	} {
		issue := issue
		require.NoError(t, repo.Create(ctx, &issue))
	}

	latest, err := repo.GetLatestByVolume(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, latest.IssueNumber)

	_, err = repo.GetLatestByVolume(ctx, 7)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	listed, err := repo.GetList(ctx, models.IssueListParams{})
	require.NoError(t, err)
	require.Len(t, listed, 2, "unpublished issues are hidden")
	assert.Equal(t, 3, listed[0].IssueNumber)

	special, err := repo.GetList(ctx, models.IssueListParams{Type: models.IssueSpecial})
	require.NoError(t, err)
	require.Len(t, special, 1)
}

func TestArticleNumberCounterSeedsFromExistingArticles(t *testing.T) {
	db := openTestDB(t)
	issues := NewIssueRepository(db)
	articles := NewArticleRepository(db)
	ctx := context.Background()

	label := "Vol 1, Issue 1"
	for i := 0; i < 2; i++ {
		a := newArticle("t")
		a.Issue = &label
		require.NoError(t, articles.Create(ctx, a))
	}

	peek, err := issues.PeekArticleNumber(ctx, label)
	require.NoError(t, err)
	assert.Equal(t, 3, peek)

	for want := 3; want <= 5; want++ {
		got, err := issues.AllocateArticleNumber(ctx, label)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	peek, err = issues.PeekArticleNumber(ctx, label)
	require.NoError(t, err)
	assert.Equal(t, 6, peek, "the counter wins once it is ahead of the article count")

	other, err := issues.AllocateArticleNumber(ctx, "Special on AI")
	require.NoError(t, err)
	assert.Equal(t, 1, other)
}

func TestReservedArticleNumberRaisesCounter(t *testing.T) {
	db := openTestDB(t)
	issues := NewIssueRepository(db)
	ctx := context.Background()
	label := "Vol 1, Issue 1"

	require.NoError(t, issues.ReserveArticleNumber(ctx, label, 2))
	peek, err := issues.PeekArticleNumber(ctx, label)
	require.NoError(t, err)
	assert.Equal(t, 3, peek)

	got, err := issues.AllocateArticleNumber(ctx, label)
	require.NoError(t, err)
	assert.Equal(t, 3, got)

	require.NoError(t, issues.ReserveArticleNumber(ctx, label, 1))
	got, err = issues.AllocateArticleNumber(ctx, label)
	require.NoError(t, err)
	assert.Equal(t, 4, got, "reserving a lower number leaves the counter alone")

	require.NoError(t, issues.ReserveArticleNumber(ctx, label, 10))
	got, err = issues.AllocateArticleNumber(ctx, label)
	require.NoError(t, err)
	assert.Equal(t, 11, got)
}

func TestArticleUpdateChecksRevision(t *testing.T) {
	db := openTestDB(t)
	repo := NewArticleRepository(db)
	ctx := context.Background()
	author := createUser(t, db, "ada", models.RoleAuthor)

	article := newArticle("t")
	article.Status = models.StatusSubmitted
	article.SubmittedBy = author.ID
	require.NoError(t, repo.Create(ctx, article))

	first, err := repo.GetByID(ctx, article.ID)
	require.NoError(t, err)
	stale, err := repo.GetByID(ctx, article.ID)
	require.NoError(t, err)

	first.Status = models.StatusUnderReview
	require.NoError(t, repo.Update(ctx, first))
	assert.Equal(t, 1, first.Revision)

	stale.Status = models.StatusRejected
	err = repo.Update(ctx, stale)
	assert.ErrorIs(t, err, models.ErrConflict)
	assert.Equal(t, 0, stale.Revision, "a failed update leaves the caller's revision untouched")

	stored, err := repo.GetByID(ctx, article.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderReview, stored.Status)
	assert.Equal(t, 1, stored.Revision)
	require.NotNil(t, stored.Submitter)
	assert.Equal(t, "ada", stored.Submitter.Name)
}

func TestArticleReviewersPersistInOrder(t *testing.T) {
	db := openTestDB(t)
	repo := NewArticleRepository(db)
	ctx := context.Background()
	author := createUser(t, db, "ada", models.RoleAuthor)
	r1 := createUser(t, db, "rita", models.RoleReviewer)
	r2 := createUser(t, db, "ravi", models.RoleReviewer)

	article := newArticle("t")
	article.SubmittedBy = author.ID
	require.NoError(t, repo.Create(ctx, article))

	loaded, err := repo.GetByID(ctx, article.ID)
	require.NoError(t, err)
	loaded.Reviewers = append(loaded.Reviewers,
		models.ReviewerAssignment{ReviewerID: r2.ID, Position: 0, Status: models.ReviewerInvited, Date: time.Now()},
		models.ReviewerAssignment{ReviewerID: r1.ID, Position: 1, Status: models.ReviewerInvited, Date: time.Now()},
	)
	require.NoError(t, repo.Update(ctx, loaded))

	stored, err := repo.GetByID(ctx, article.ID)
	require.NoError(t, err)
	require.Len(t, stored.Reviewers, 2)
	assert.Equal(t, r2.ID, stored.Reviewers[0].ReviewerID)
	assert.Equal(t, r1.ID, stored.Reviewers[1].ReviewerID)
	require.NotNil(t, stored.Reviewers[0].Reviewer)
	assert.Equal(t, "ravi", stored.Reviewers[0].Reviewer.Name)

	stored.Reviewers[1].Status = models.ReviewerAccepted
	require.NoError(t, repo.Update(ctx, stored))
	again, err := repo.GetByID(ctx, article.ID)
	require.NoError(t, err)
	require.Len(t, again.Reviewers, 2, "updating an assignment does not duplicate it")
	assert.Equal(t, models.ReviewerAccepted, again.Reviewers[1].Status)

	assigned, err := repo.GetAssignedTo(ctx, r1.ID)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, article.ID, assigned[0].ID)

	none, err := repo.GetAssignedTo(ctx, author.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestArticleListFiltersAndCounts(t *testing.T) {
	db := openTestDB(t)
	repo := NewArticleRepository(db)
	ctx := context.Background()

	label := "Vol 1, Issue 1"
	for _, seed := range []struct {
		title  string
		status models.ArticleStatus
	}{
		{"a", models.StatusPublished},
		{"b", models.StatusSubmitted},
		{"c", models.StatusUnderReview},
	} {
		a := newArticle(seed.title)
		a.Status = seed.status
		if seed.status == models.StatusPublished {
			a.Issue = &label
		}
		require.NoError(t, repo.Create(ctx, a))
	}

	list, total, err := repo.GetList(ctx, models.ArticleListParams{Status: string(models.StatusSubmitted)})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].Title)

	list, total, err = repo.GetList(ctx, models.ArticleListParams{Page: 2, Limit: 2, SortBy: "title", SortOrder: "asc"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, list, 1)
	assert.Equal(t, "c", list[0].Title)

	list, _, err = repo.GetList(ctx, models.ArticleListParams{Limit: 1000, SortBy: "title; DROP TABLE articles"})
	require.NoError(t, err)
	assert.Len(t, list, 3)

	pending, err := repo.CountByStatus(ctx, models.StatusSubmitted, models.StatusUnderReview)
	require.NoError(t, err)
	assert.EqualValues(t, 2, pending)

	withIssue, err := repo.GetWithIssueAssignment(ctx)
	require.NoError(t, err)
	require.Len(t, withIssue, 1)
	assert.Equal(t, "a", withIssue[0].Title)
}

func TestNotificationReads(t *testing.T) {
	db := openTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	recipient := uint(7)
	broadcast := &models.Notification{Title: "all", Message: "m", Type: models.NotificationInfo, TargetRoles: []string{models.TargetAll}, CreatedBy: 1}
	direct := &models.Notification{Title: "direct", Message: "m", Type: models.NotificationImportant, RecipientID: &recipient, CreatedBy: 1}
	elsewhere := &models.Notification{Title: "other", Message: "m", Type: models.NotificationInfo, RecipientID: new(uint), CreatedBy: 1}
	for _, n := range []*models.Notification{broadcast, direct, elsewhere} {
		require.NoError(t, repo.Create(ctx, n))
	}

	candidates, err := repo.GetCandidatesFor(ctx, recipient)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, []string{models.TargetAll}, []string(candidates[1].TargetRoles))

	require.NoError(t, repo.MarkRead(ctx, recipient, direct.ID))
	require.NoError(t, repo.MarkRead(ctx, recipient, direct.ID, broadcast.ID))
	require.NoError(t, repo.MarkRead(ctx, recipient))

	read, err := repo.GetReadIDs(ctx, recipient, []uint{broadcast.ID, direct.ID, elsewhere.ID})
	require.NoError(t, err)
	assert.Equal(t, map[uint]bool{broadcast.ID: true, direct.ID: true}, read)

	require.NoError(t, repo.Delete(ctx, direct.ID))
	_, err = repo.GetByID(ctx, direct.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var remaining int64
	require.NoError(t, db.Model(&models.NotificationRead{}).Where("notification_id = ?", direct.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUserListAndPasswordResets(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	resets := NewPasswordResetRepository(db)
	ctx := context.Background()

	ada := createUser(t, db, "ada", models.RoleAuthor)
	createUser(t, db, "rita", models.RoleReviewer)

	reviewers, err := users.List(ctx, models.RoleReviewer)
	require.NoError(t, err)
	require.Len(t, reviewers, 1)
	assert.Equal(t, "rita", reviewers[0].Name)

	everyone, err := users.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, everyone, 2)

	now := time.Now()
	expired := &models.PasswordReset{UserID: ada.ID, TokenHash: "old", ExpiresAt: now.Add(-time.Minute)}
	live := &models.PasswordReset{UserID: ada.ID, TokenHash: "new", ExpiresAt: now.Add(models.PasswordResetTTL)}
	require.NoError(t, resets.Create(ctx, expired))
	require.NoError(t, resets.Create(ctx, live))

	active, err := resets.GetActive(ctx, now)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, live.ID, active[0].ID)

	require.NoError(t, resets.RevokeForUser(ctx, ada.ID))
	active, err = resets.GetActive(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, active)
}
