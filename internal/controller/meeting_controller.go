package controller

import (
	"github.com/gofiber/fiber/v2"

	"ai-copilot-be/internal/dto"
	"ai-copilot-be/internal/pkg/serverutils"
	"ai-copilot-be/internal/service"
)

type IMeetingController interface {
	RegisterRoutes(r fiber.Router)
	FindClientByVat(ctx *fiber.Ctx) error
	CreateClient(ctx *fiber.Ctx) error
	StoreMeeting(ctx *fiber.Ctx) error
}

type meetingController struct {
	service service.IMeetingService
}

func NewMeetingController(service service.IMeetingService) IMeetingController {
	return &meetingController{service: service}
}

func (c *meetingController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/copilot/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("clients/find-by-vat", c.FindClientByVat)
	h.Post("clients", c.CreateClient)
	h.Post("meetings", c.StoreMeeting)
}

func (c *meetingController) FindClientByVat(ctx *fiber.Ctx) error {
	var req dto.FindClientRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.FindClientByVat(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Cliente trovato", res))
}

func (c *meetingController) CreateClient(ctx *fiber.Ctx) error {
	var req dto.CreateClientRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CreateClient(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Cliente registrato", res))
}

func (c *meetingController) StoreMeeting(ctx *fiber.Ctx) error {
	var req dto.StoreMeetingRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.StoreMeeting(ctx.Context(), consultantId(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Meeting registrato", res))
}
