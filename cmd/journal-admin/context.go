package main

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"journal-api/config"
	"journal-api/repositories"
	"journal-api/services"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

type commandContext struct {
	envFlag *string

	dbOnce sync.Once
	db     *gorm.DB
	dbErr  error
}

func newCommandContext(envFlag *string) *commandContext {
	return &commandContext{envFlag: envFlag}
}

// ensureDB loads the env file once and opens the configured database.
func (c *commandContext) ensureDB() (*gorm.DB, error) {
	c.dbOnce.Do(func() {
		if c.db != nil {
			return
		}
		path := ".env"
		if c.envFlag != nil && strings.TrimSpace(*c.envFlag) != "" {
			path = strings.TrimSpace(*c.envFlag)
		}
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			c.dbErr = fmt.Errorf("load %s: %w", path, err)
			return
		}
		c.db, c.dbErr = config.OpenDatabase(config.LoadDatabaseConfig())
	})
	return c.db, c.dbErr
}

func (c *commandContext) publicationService() (services.PublicationService, error) {
	db, err := c.ensureDB()
	if err != nil {
		return nil, err
	}
	return services.NewPublicationService(repositories.NewArticleRepository(db), repositories.NewIssueRepository(db)), nil
}

func (c *commandContext) articleService() (services.ArticleService, error) {
	db, err := c.ensureDB()
	if err != nil {
		return nil, err
	}
	return services.NewArticleService(repositories.NewArticleRepository(db), repositories.NewUserRepository(db), config.DOIPrefix()), nil
}
