package relay

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RegisterRoutes mounts the relay endpoints onto the fiber app.
func (r *Relay) RegisterRoutes(app *fiber.App) {
	app.Post("/relay", r.handleSubmit)
	app.Get("/relay/nonce/:address", r.handleNonce)
	app.Get("/relay/delegated/:address", r.handleDelegated)
	app.Get("/relay/health", r.handleHealth)
}

func (r *Relay) handleSubmit(c *fiber.Ctx) error {
	var req SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}
	if req.UserAddress == "" || req.Signature == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing fields"})
	}

	resp, err := r.Submit(c.Context(), req)
	if err != nil {
		status := statusFor(err)
		if status >= fiber.StatusInternalServerError {
			r.logger.Error("relay submission failed", zap.Error(err))
		}
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(resp)
}

func (r *Relay) handleNonce(c *fiber.Ctx) error {
	raw := c.Params("address")
	if !common.IsHexAddress(raw) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid address"})
	}
	user := common.HexToAddress(raw)

	nonce, err := r.ExecuteNonce(c.Context(), user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(NonceResponse{Address: user.Hex(), Nonce: nonce})
}

func (r *Relay) handleDelegated(c *fiber.Ctx) error {
	raw := c.Params("address")
	if !common.IsHexAddress(raw) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid address"})
	}
	user := common.HexToAddress(raw)

	delegated, err := r.IsDelegated(c.Context(), user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(DelegatedResponse{Address: user.Hex(), Delegated: delegated})
}

func (r *Relay) handleHealth(c *fiber.Ctx) error {
	health, err := r.Health(c.Context())
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(health)
}

// statusFor maps relay errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrNonceConflict):
		return fiber.StatusTooManyRequests
	case errors.Is(err, ErrUnderfunded):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
