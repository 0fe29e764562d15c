package controller

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ai-copilot-be/internal/dto"
	"ai-copilot-be/internal/pkg/serverutils"
	"ai-copilot-be/internal/service"
)

type ICopilotController interface {
	RegisterRoutes(r fiber.Router)
	StartSession(ctx *fiber.Ctx) error
	Transcribe(ctx *fiber.Ctx) error
	GetInsights(ctx *fiber.Ctx) error
	GetSummary(ctx *fiber.Ctx) error
	GenerateTasks(ctx *fiber.Ctx) error
	AskQuestion(ctx *fiber.Ctx) error
	PauseSession(ctx *fiber.Ctx) error
	ResumeSession(ctx *fiber.Ctx) error
	RateSuggestion(ctx *fiber.Ctx) error
	EndSession(ctx *fiber.Ctx) error
	GetReport(ctx *fiber.Ctx) error
}

type copilotController struct {
	service service.ICopilotService
}

func NewCopilotController(service service.ICopilotService) ICopilotController {
	return &copilotController{service: service}
}

func (c *copilotController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/copilot/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("start-session", c.StartSession)
	h.Post("transcribe", c.Transcribe)
	h.Post("get-insights", c.GetInsights)
	h.Post("get-summary", c.GetSummary)
	h.Post("generate-tasks", c.GenerateTasks)
	h.Post("ask-question", c.AskQuestion)
	h.Post("pause-session", c.PauseSession)
	h.Post("resume-session", c.ResumeSession)
	h.Post("rate-suggestion", c.RateSuggestion)
	h.Post("end-session", c.EndSession)
	h.Get("report/:meetingId", c.GetReport)
}

func consultantId(ctx *fiber.Ctx) uuid.UUID {
	idStr, _ := ctx.Locals("consultant_id").(string)
	id, _ := uuid.Parse(idStr)
	return id
}

func (c *copilotController) StartSession(ctx *fiber.Ctx) error {
	var req dto.StartSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.StartSession(ctx.Context(), consultantId(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Sessione avviata", res))
}

func (c *copilotController) Transcribe(ctx *fiber.Ctx) error {
	sessionId := ctx.Query("sessionId")
	if sessionId == "" {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "sessionId mancante")
	}

	audio := ctx.Body()
	if file, err := ctx.FormFile("audio"); err == nil {
		f, err := file.Open()
		if err != nil {
			return err
		}
		defer f.Close()
		audio, err = io.ReadAll(f)
		if err != nil {
			return err
		}
	}

	res, err := c.service.Transcribe(ctx.Context(), sessionId, audio)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Trascrizione completata", res))
}

func (c *copilotController) GetInsights(ctx *fiber.Ctx) error {
	var req dto.GetInsightsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.GetInsights(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Analisi completata", res))
}

func (c *copilotController) GetSummary(ctx *fiber.Ctx) error {
	var req dto.GetSummaryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.GetSummary(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Riepilogo generato", res))
}

func (c *copilotController) GenerateTasks(ctx *fiber.Ctx) error {
	var req dto.GenerateTasksRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.GenerateTasks(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Attività generate", res))
}

func (c *copilotController) AskQuestion(ctx *fiber.Ctx) error {
	sessionId := ctx.Query("sessionId")
	if sessionId == "" {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "sessionId mancante")
	}

	var req dto.AskQuestionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.AskQuestion(ctx.Context(), sessionId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Risposta generata", res))
}

func (c *copilotController) PauseSession(ctx *fiber.Ctx) error {
	var req dto.PauseSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.PauseSession(ctx.Context(), &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Sessione in pausa", nil))
}

func (c *copilotController) ResumeSession(ctx *fiber.Ctx) error {
	var req dto.ResumeSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.ResumeSession(ctx.Context(), &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Sessione ripresa", nil))
}

func (c *copilotController) RateSuggestion(ctx *fiber.Ctx) error {
	var req dto.RateSuggestionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.RateSuggestion(ctx.Context(), &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Valutazione registrata", nil))
}

func (c *copilotController) EndSession(ctx *fiber.Ctx) error {
	var req dto.EndSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.EndSession(ctx.Context(), consultantId(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Sessione terminata", res))
}

func (c *copilotController) GetReport(ctx *fiber.Ctx) error {
	meetingId, err := uuid.Parse(ctx.Params("meetingId"))
	if err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "meetingId non valido")
	}

	res, err := c.service.GetReport(ctx.Context(), meetingId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Report recuperato", res))
}
