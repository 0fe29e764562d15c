package serverutils

import (
	"errors"
	"log"

	"ai-copilot-be/internal/dto"
	"ai-copilot-be/pkg/session"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts errors escaping controllers into the
// uniform envelope. Expected conditions keep their own status codes,
// everything else collapses to a generic 500 without internals.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var sessionErr *dto.SessionNotFoundError
		if errors.As(err, &sessionErr) {
			return ctx.Status(fiber.StatusNotFound).
				JSON(ErrorResponse(fiber.StatusNotFound, "Sessione non valida o scaduta"))
		}

		if errors.Is(err, dto.ErrNoPendingMeeting) {
			return ctx.Status(fiber.StatusNotFound).
				JSON(ErrorResponse(fiber.StatusNotFound, "Nessun meeting corrispondente da aggiornare"))
		}

		if errors.Is(err, dto.ErrClientNotFound) {
			return ctx.Status(fiber.StatusNotFound).
				JSON(ErrorResponse(fiber.StatusNotFound, "Cliente non trovato"))
		}

		if errors.Is(err, dto.ErrReportNotFound) {
			return ctx.Status(fiber.StatusNotFound).
				JSON(ErrorResponse(fiber.StatusNotFound, "Report non trovato"))
		}

		var typeErr *session.ErrUnknownConsultantType
		if errors.As(err, &typeErr) {
			return ctx.Status(fiber.StatusUnprocessableEntity).
				JSON(ErrorResponse(fiber.StatusUnprocessableEntity, "Tipo di consulente non riconosciuto"))
		}

		var valErr *ValidationError
		if errors.As(err, &valErr) {
			return ctx.Status(fiber.StatusUnprocessableEntity).
				JSON(ErrorResponse(fiber.StatusUnprocessableEntity, valErr.Error()))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).
				JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		log.Printf("[ERROR] %s %s: %v", ctx.Method(), ctx.Path(), err)
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse(fiber.StatusInternalServerError, "Errore nell'elaborazione della richiesta"))
	}
}
