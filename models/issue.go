package models

import (
	"fmt"
	"strings"
	"time"
)

type IssueType string

const (
	IssueRegular IssueType = "regular"
	IssueSpecial IssueType = "special"
)

func (t IssueType) Valid() bool {
	return t == IssueRegular || t == IssueSpecial
}

type Issue struct {
	ID              uint      `json:"id" gorm:"primarykey"`
	Volume          int       `json:"volume" gorm:"not null;uniqueIndex:idx_issue_volume_number"`
	IssueNumber     int       `json:"issue" gorm:"column:issue_number;not null;uniqueIndex:idx_issue_volume_number"`
	Type            IssueType `json:"type" gorm:"default:'regular'"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty" gorm:"type:text"`
	IsPublished     bool      `json:"is_published" gorm:"not null"`
	PublicationDate time.Time `json:"publication_date"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IssueCounter holds the last article number handed out under a label.
type IssueCounter struct {
	Label      string    `gorm:"primaryKey;size:255"`
	LastNumber int       `gorm:"not null"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (IssueCounter) TableName() string {
	return "issue_article_counters"
}

func DefaultIssueTitle(volume, number int) string {
	return fmt.Sprintf("Volume %d, Issue %d", volume, number)
}

// IssueLabel is the string stored on articles and used to scope numbering.
// An explicit title wins over the volume/issue form.
func IssueLabel(volume, number int, title string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	return fmt.Sprintf("Vol %d, Issue %d", volume, number)
}
