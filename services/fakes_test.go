package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"journal-api/models"

	"gorm.io/gorm"
)

// fakeArticleRepo keeps copies of articles and enforces the revision check
// the gorm repository performs.
type fakeArticleRepo struct {
	mu       sync.Mutex
	articles map[uint]models.Article
	nextID   uint

	// beforeUpdate runs before the revision check, outside the lock.
	beforeUpdate func()
}

func newFakeArticleRepo() *fakeArticleRepo {
	return &fakeArticleRepo{articles: map[uint]models.Article{}}
}

func cloneArticle(a models.Article) models.Article {
	a.Reviewers = append([]models.ReviewerAssignment(nil), a.Reviewers...)
	a.Authors = append(a.Authors[:0:0], a.Authors...)
	return a
}

func (r *fakeArticleRepo) Create(_ context.Context, article *models.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	article.ID = r.nextID
	article.Revision = 0
	r.articles[article.ID] = cloneArticle(*article)
	return nil
}

func (r *fakeArticleRepo) GetByID(_ context.Context, id uint) (*models.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.articles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := cloneArticle(a)
	return &c, nil
}

func (r *fakeArticleRepo) filter(keep func(models.Article) bool) []models.Article {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Article
	for _, a := range r.articles {
		if keep(a) {
			out = append(out, cloneArticle(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeArticleRepo) GetList(_ context.Context, params models.ArticleListParams) ([]models.Article, int64, error) {
	out := r.filter(func(a models.Article) bool {
		return (params.Status == "" || string(a.Status) == params.Status) &&
			(params.Issue == "" || a.IssueLabel() == params.Issue)
	})
	return out, int64(len(out)), nil
}

func (r *fakeArticleRepo) GetAll(_ context.Context) ([]models.Article, error) {
	return r.filter(func(models.Article) bool { return true }), nil
}

func (r *fakeArticleRepo) GetBySubmitter(_ context.Context, userID uint) ([]models.Article, error) {
	return r.filter(func(a models.Article) bool { return a.SubmittedBy == userID }), nil
}

func (r *fakeArticleRepo) GetAssignedTo(_ context.Context, reviewerID uint) ([]models.Article, error) {
	return r.filter(func(a models.Article) bool { return a.FindReviewer(reviewerID) != nil }), nil
}

func (r *fakeArticleRepo) GetWithIssueAssignment(_ context.Context) ([]models.Article, error) {
	return r.filter(func(a models.Article) bool {
		return a.Status == models.StatusPublished || a.Issue != nil
	}), nil
}

func (r *fakeArticleRepo) Update(_ context.Context, article *models.Article) error {
	if r.beforeUpdate != nil {
		hook := r.beforeUpdate
		r.beforeUpdate = nil
		hook()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.articles[article.ID]
	if !ok || stored.Revision != article.Revision {
		return models.ErrConflict
	}
	seen := map[uint]bool{}
	for _, rv := range article.Reviewers {
		if seen[rv.ReviewerID] {
			return models.ErrDuplicateAssignment
		}
		seen[rv.ReviewerID] = true
	}
	article.Revision++
	r.articles[article.ID] = cloneArticle(*article)
	return nil
}

func (r *fakeArticleRepo) CountByIssueLabel(_ context.Context, label string) (int64, error) {
	return int64(len(r.filter(func(a models.Article) bool { return a.IssueLabel() == label }))), nil
}

func (r *fakeArticleRepo) CountByStatus(_ context.Context, statuses ...models.ArticleStatus) (int64, error) {
	out := r.filter(func(a models.Article) bool {
		if len(statuses) == 0 {
			return true
		}
		for _, s := range statuses {
			if a.Status == s {
				return true
			}
		}
		return false
	})
	return int64(len(out)), nil
}

// bump simulates a concurrent writer saving the article.
func (r *fakeArticleRepo) bump(id uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.articles[id]
	a.Revision++
	r.articles[id] = a
}

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[uint]models.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]models.User{}}
}

func (r *fakeUserRepo) add(name string, role models.UserRole) uint {
	u := &models.User{Name: name, Email: name + "@example.com", Role: role}
	_ = r.Create(context.Background(), u)
	return u.ID
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			c := u
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, role models.UserRole) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.User
	for _, u := range r.users {
		if role == "" || u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakePasswordResetRepo struct {
	mu     sync.Mutex
	resets []models.PasswordReset
}

func (r *fakePasswordResetRepo) Create(_ context.Context, reset *models.PasswordReset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reset.ID = uint(len(r.resets) + 1)
	r.resets = append(r.resets, *reset)
	return nil
}

func (r *fakePasswordResetRepo) GetActive(_ context.Context, now time.Time) ([]models.PasswordReset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.PasswordReset
	for _, reset := range r.resets {
		if !reset.Revoked && reset.ExpiresAt.After(now) {
			out = append(out, reset)
		}
	}
	return out, nil
}

func (r *fakePasswordResetRepo) RevokeForUser(_ context.Context, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.resets {
		if r.resets[i].UserID == userID {
			r.resets[i].Revoked = true
		}
	}
	return nil
}

// fakeIssueRepo enforces the (volume, issue) uniqueness and keeps per-label
// counters seeded from the article store.
type fakeIssueRepo struct {
	mu       sync.Mutex
	issues   []models.Issue
	counters map[string]int
	articles *fakeArticleRepo

	// beforeCreate runs once before the next Create, outside the lock.
	beforeCreate func()
}

func newFakeIssueRepo(articles *fakeArticleRepo) *fakeIssueRepo {
	return &fakeIssueRepo{counters: map[string]int{}, articles: articles}
}

func (r *fakeIssueRepo) Create(_ context.Context, issue *models.Issue) error {
	if r.beforeCreate != nil {
		hook := r.beforeCreate
		r.beforeCreate = nil
		hook()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.issues {
		if existing.Volume == issue.Volume && existing.IssueNumber == issue.IssueNumber {
			return models.ErrUniquenessConflict
		}
	}
	issue.ID = uint(len(r.issues) + 1)
	r.issues = append(r.issues, *issue)
	return nil
}

func (r *fakeIssueRepo) GetByVolumeAndNumber(_ context.Context, volume, number int) (*models.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, issue := range r.issues {
		if issue.Volume == volume && issue.IssueNumber == number {
			c := issue
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeIssueRepo) GetLatestByVolume(_ context.Context, volume int) (*models.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *models.Issue
	for i := range r.issues {
		if r.issues[i].Volume != volume {
			continue
		}
		if latest == nil || r.issues[i].IssueNumber > latest.IssueNumber {
			c := r.issues[i]
			latest = &c
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (r *fakeIssueRepo) GetList(_ context.Context, params models.IssueListParams) ([]models.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Issue
	for _, issue := range r.issues {
		if issue.IsPublished && (params.Type == "" || issue.Type == params.Type) {
			out = append(out, issue)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Volume != out[j].Volume {
			return out[i].Volume > out[j].Volume
		}
		return out[i].IssueNumber > out[j].IssueNumber
	})
	return out, nil
}

func (r *fakeIssueRepo) AllocateArticleNumber(ctx context.Context, label string) (int, error) {
	count, _ := r.articles.CountByIssueLabel(ctx, label)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.counters[label]; !ok {
		r.counters[label] = int(count)
	}
	r.counters[label]++
	return r.counters[label], nil
}

func (r *fakeIssueRepo) ReserveArticleNumber(ctx context.Context, label string, number int) error {
	count, _ := r.articles.CountByIssueLabel(ctx, label)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.counters[label]; !ok {
		r.counters[label] = int(count)
	}
	if r.counters[label] < number {
		r.counters[label] = number
	}
	return nil
}

func (r *fakeIssueRepo) PeekArticleNumber(ctx context.Context, label string) (int, error) {
	count, _ := r.articles.CountByIssueLabel(ctx, label)
	r.mu.Lock()
	defer r.mu.Unlock()
	last := int(count)
	if c, ok := r.counters[label]; ok && c > last {
		last = c
	}
	return last + 1, nil
}

func (r *fakeIssueRepo) count(volume, number int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, issue := range r.issues {
		if issue.Volume == volume && issue.IssueNumber == number {
			n++
		}
	}
	return n
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []models.Notification
	reads         map[uint]map[uint]bool
	createErr     error
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{reads: map[uint]map[uint]bool{}}
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	n.ID = uint(len(r.notifications) + 1)
	r.notifications = append(r.notifications, *n)
	return nil
}

func (r *fakeNotificationRepo) GetByID(_ context.Context, id uint) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id {
			c := n
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// newest first, matching the gorm ordering
func (r *fakeNotificationRepo) GetCandidatesFor(_ context.Context, userID uint) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for i := len(r.notifications) - 1; i >= 0; i-- {
		n := r.notifications[i]
		if n.RecipientID == nil || *n.RecipientID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) GetAll(_ context.Context) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Notification, 0, len(r.notifications))
	for i := len(r.notifications) - 1; i >= 0; i-- {
		out = append(out, r.notifications[i])
	}
	return out, nil
}

func (r *fakeNotificationRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.notifications {
		if n.ID == id {
			r.notifications = append(r.notifications[:i], r.notifications[i+1:]...)
			break
		}
	}
	for _, read := range r.reads {
		delete(read, id)
	}
	return nil
}

func (r *fakeNotificationRepo) GetReadIDs(_ context.Context, userID uint, ids []uint) (map[uint]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[uint]bool{}
	for _, id := range ids {
		if r.reads[userID][id] {
			out[id] = true
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, userID uint, ids ...uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reads[userID] == nil {
		r.reads[userID] = map[uint]bool{}
	}
	for _, id := range ids {
		r.reads[userID][id] = true
	}
	return nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	requests []models.NotificationRequest
}

func (n *recordingNotifier) Notify(_ context.Context, req models.NotificationRequest) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.requests = append(n.requests, req)
}

func (n *recordingNotifier) all() []models.NotificationRequest {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]models.NotificationRequest(nil), n.requests...)
}

type sentMail struct {
	to      []string
	subject string
	body    string
}

type fakeMailer struct {
	sent chan sentMail
	err  error
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{sent: make(chan sentMail, 8)}
}

func (m *fakeMailer) SendMail(to []string, subject, html string) error {
	m.sent <- sentMail{to: to, subject: subject, body: html}
	return m.err
}

var errStoreDown = errors.New("store unavailable")

var (
	adminActor = models.CurrentUser{ID: 1, Role: models.RoleAdmin}
	testCtx    = context.Background()
)
