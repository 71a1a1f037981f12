// Package service implements the club's workflows on top of the record store:
// moderation and loan transitions, like toggles, public submissions and the
// catalog.
package service

import (
	"sangrachna/internal/auth"
	"sangrachna/internal/models"
	"sangrachna/internal/repository"
)

// storeError classifies a repository error for the API.
func storeError(resource string, id any, op string, err error) error {
	switch {
	case err == nil:
		return nil
	case repository.IsNotFound(err):
		return models.NewNotFoundError(resource, id)
	case repository.IsUniqueViolation(err):
		return models.NewValidationError(resource + " already exists")
	case repository.IsForeignKeyViolation(err):
		return models.NewValidationError("Referenced record does not exist")
	default:
		return models.NewStoreError(op, err)
	}
}

func requireOperator(op auth.Operator) error {
	if err := auth.Require(op); err != nil {
		return &models.AppError{
			Code:    models.CodeUnauthorized,
			Message: "Operator access required",
			Err:     err,
		}
	}
	return nil
}
