package services

import (
	"errors"

	"civicfix-be/repository"
	"civicfix-be/utils"
)

// storeError maps repository sentinels onto client-facing errors.
func storeError(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return utils.NewNotFound(resource)
	case errors.Is(err, repository.ErrConflict):
		return utils.NewConflict(resource+" already exists", nil)
	}
	return utils.NewInternalError(err)
}
