package handler

import (
	"skilltrack/internal/delivery/http/dto"
	"skilltrack/internal/delivery/http/middleware"
	"skilltrack/internal/domain/skill"
	"skilltrack/internal/pkg/response"
	"skilltrack/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type UserSkillHandler struct {
	uc usecase.UserSkillUsecase
}

func NewUserSkillHandler(uc usecase.UserSkillUsecase) *UserSkillHandler {
	return &UserSkillHandler{uc: uc}
}

func (h *UserSkillHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/users/:userId/skills")
	grp.Get("/", h.List)
	grp.Put("/", h.Replace)
	grp.Get("/distribution", h.Distribution)
	grp.Delete("/:skillId", h.Remove)
}

func (h *UserSkillHandler) List(c fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	entries, err := h.uc.ListUserSkills(c.Context(), userID)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewUserSkillListResponse(entries))
}

func (h *UserSkillHandler) Replace(c fiber.Ctx) error {
	actor, ok := middleware.ActorFromCtx(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	var req dto.AssignSkillsRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	desired := make([]usecase.DesiredAssignment, 0, len(req.Skills))
	for _, it := range req.Skills {
		level, err := skill.ParseLevel(it.Level)
		if err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid level", nil, err)
		}
		desired = append(desired, usecase.DesiredAssignment{SkillID: it.SkillID, Level: level})
	}

	entries, err := h.uc.AssignOrUpdateSkills(c.Context(), userID, actor, desired)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewUserSkillListResponse(entries))
}

func (h *UserSkillHandler) Remove(c fiber.Ctx) error {
	actor, ok := middleware.ActorFromCtx(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	skillID, err := uuid.Parse(c.Params("skillId"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	if err := h.uc.RemoveSkill(c.Context(), userID, actor, skillID); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *UserSkillHandler) Distribution(c fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	counts, err := h.uc.DistributionByRootSkill(c.Context(), userID)
	if err != nil {
		return mapUsecaseError(err)
	}

	res := make([]dto.RootSkillCountResponse, 0, len(counts))
	for _, rc := range counts {
		res = append(res, dto.RootSkillCountResponse{RootID: rc.RootID, Name: rc.Name, Count: rc.Count})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}
