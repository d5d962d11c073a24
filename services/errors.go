package services

import (
	"errors"

	"journal-api/models"

	"gorm.io/gorm"
)

// notFound turns a missing-row error into a NotFound workflow error and
// passes everything else through.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NotFoundError("%s not found", what)
	}
	return err
}

func requireAdmin(actor models.CurrentUser, action string) error {
	if !actor.IsAdmin() {
		return models.NotAuthorizedError("only admins can %s", action)
	}
	return nil
}
