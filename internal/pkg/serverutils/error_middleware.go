package serverutils

import (
	"errors"

	"ai-chat-be/internal/apperror"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps typed domain errors onto HTTP statuses so
// controllers can return service errors directly.
func ErrorHandlerMiddleware(ctx *fiber.Ctx, err error) error {
	var (
		notFound    *apperror.NotFoundError
		invalidOp   *apperror.InvalidOperationError
		noAdjacent  *apperror.NoAdjacentVersionError
		rateLimited *apperror.RateLimitedError
		genFailed   *apperror.GenerationFailedError
		fiberErr    *fiber.Error
	)

	switch {
	case errors.As(err, &notFound):
		return ctx.Status(fiber.StatusNotFound).JSON(ErrorResponse(fiber.StatusNotFound, notFound.Error()))
	case errors.As(err, &noAdjacent):
		return ctx.Status(fiber.StatusNotFound).JSON(ErrorResponse(fiber.StatusNotFound, noAdjacent.Error()))
	case errors.As(err, &invalidOp):
		return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(fiber.StatusBadRequest, invalidOp.Error()))
	case errors.As(err, &rateLimited):
		ctx.Set("Retry-After", rateLimited.RetryAfter.String())
		return ctx.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse(fiber.StatusTooManyRequests, rateLimited.Error()))
	case errors.As(err, &genFailed):
		return ctx.Status(fiber.StatusBadGateway).JSON(ErrorResponse(fiber.StatusBadGateway, genFailed.Error()))
	case errors.As(err, &fiberErr):
		return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
	default:
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
	}
}
