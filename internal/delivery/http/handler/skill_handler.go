package handler

import (
	"skilltrack/internal/delivery/http/dto"
	"skilltrack/internal/delivery/http/middleware"
	"skilltrack/internal/pkg/response"
	"skilltrack/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type SkillHandler struct {
	uc usecase.SkillUsecase
}

func NewSkillHandler(uc usecase.SkillUsecase) *SkillHandler {
	return &SkillHandler{uc: uc}
}

// RegisterRoutes mounts catalog reads for every caller and writes behind
// the elevated guard.
func (h *SkillHandler) RegisterRoutes(r fiber.Router, elevated fiber.Handler) {
	if r == nil {
		return
	}

	grp := r.Group("/skills")
	grp.Get("/", h.List)
	grp.Get("/roots", h.Roots)
	grp.Get("/:id", h.Get)
	grp.Get("/:id/root", h.Root)

	grp.Post("/", elevated, h.Create)
	grp.Patch("/:id", elevated, h.Rename)
	grp.Put("/:id/parent", elevated, h.Reparent)
	grp.Delete("/:id", elevated, h.Delete)
}

func (h *SkillHandler) List(c fiber.Ctx) error {
	nodes, err := h.uc.ListAllSkills(c.Context())
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewSkillListResponse(nodes))
}

func (h *SkillHandler) Roots(c fiber.Ctx) error {
	nodes, err := h.uc.GetRootSkills(c.Context())
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewSkillListResponse(nodes))
}

func (h *SkillHandler) Get(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	n, err := h.uc.GetSkill(c.Context(), id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewSkillResponse(n))
}

func (h *SkillHandler) Root(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	root, err := h.uc.GetAncestorRoot(c.Context(), id)
	if err != nil {
		return mapUsecaseError(err)
	}
	if root == nil {
		return response.Success(c, fiber.StatusOK, "Root not resolvable", nil)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewSkillResponse(*root))
}

func (h *SkillHandler) Create(c fiber.Ctx) error {
	var req dto.CreateSkillRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	created, err := h.uc.CreateSkill(c.Context(), req.Name, req.ParentID)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, "Skill created successfully", dto.NewSkillResponse(created))
}

func (h *SkillHandler) Rename(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	var req dto.RenameSkillRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	n, err := h.uc.RenameSkill(c.Context(), id, req.Name)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewSkillResponse(n))
}

func (h *SkillHandler) Reparent(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	var req dto.ReparentSkillRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	parentID, err := req.Parent()
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", map[string]string{"parent_id": err.Error()}, err)
	}

	n, err := h.uc.ReparentSkill(c.Context(), id, parentID)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewSkillResponse(n))
}

func (h *SkillHandler) Delete(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	if err := h.uc.DeleteSkill(c.Context(), id); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, "Skill deleted successfully", nil)
}
