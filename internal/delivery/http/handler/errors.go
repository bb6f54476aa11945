package handler

import (
	"errors"

	"skilltrack/internal/delivery/http/middleware"
	"skilltrack/internal/pkg/response"
	"skilltrack/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// Order matters: the specific not-found sentinels wrap usecase.ErrNotFound.
var errorMappings = []errorMapping{
	{usecase.ErrInvalidInput, fiber.StatusBadRequest, "invalid_input", "Bad request"},
	{usecase.ErrForbidden, fiber.StatusForbidden, "forbidden", "Forbidden"},
	{usecase.ErrSkillNotFound, fiber.StatusNotFound, "skill_not_found", "Skill not found"},
	{usecase.ErrUserSkillNotFound, fiber.StatusNotFound, "user_skill_not_found", "User skill not found"},
	{usecase.ErrUserNotFound, fiber.StatusNotFound, "user_not_found", "User not found"},
	{usecase.ErrDuplicateName, fiber.StatusConflict, "duplicate_name", "Skill name already exists"},
	{usecase.ErrCycle, fiber.StatusUnprocessableEntity, "cycle", "Skill cannot be moved under its own subtree"},
	{usecase.ErrConflict, fiber.StatusConflict, "conflict", "Concurrent modification, retry the request"},
	{usecase.ErrStoreUnavailable, fiber.StatusServiceUnavailable, "store_unavailable", response.MessageServiceUnavailable},
}

func mapUsecaseError(err error) error {
	if err == nil {
		return nil
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return middleware.NewAppError(m.status, m.message, nil, err).WithCode(m.code)
		}
	}
	return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
}
