package controller

import (
	"errors"

	"loan-intake-be/internal/dto"
	"loan-intake-be/internal/pkg/serverutils"
	"loan-intake-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IIntakeController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
}

type intakeController struct {
	intakeService service.IIntakeService
}

func NewIntakeController(intakeService service.IIntakeService) IIntakeController {
	return &intakeController{
		intakeService: intakeService,
	}
}

func (c *intakeController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/intake/v1")
	h.Post("chat", c.Chat)
}

func (c *intakeController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewApiError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.intakeService.Chat(ctx.Context(), &req)
	if err != nil {
		return mapServiceError(err)
	}

	return ctx.JSON(res)
}

func mapServiceError(err error) error {
	var collabErr *service.CollaboratorError
	if errors.As(err, &collabErr) {
		return serverutils.NewApiError(fiber.StatusBadGateway,
			"We could not complete this step right now. Please try again.")
	}

	if errors.Is(err, service.ErrInternalInconsistency) {
		return serverutils.NewApiError(fiber.StatusInternalServerError, "internal server error")
	}

	return err
}
