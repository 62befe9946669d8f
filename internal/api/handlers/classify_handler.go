package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/festivaldir/curator/internal/models"
	"github.com/festivaldir/curator/internal/rules"
	"github.com/festivaldir/curator/internal/signals"
	"github.com/festivaldir/curator/pkg/logger"
)

// ClassifyHandler runs the deterministic stages on a single submitted
// profile. No LLM call is made; the response says whether the record would
// be rejected, escalated, or (v1) approved by rules alone.
type ClassifyHandler struct {
	extractor *signals.Extractor
	engine    *rules.Engine
}

func NewClassifyHandler(extractor *signals.Extractor, engine *rules.Engine) *ClassifyHandler {
	return &ClassifyHandler{
		extractor: extractor,
		engine:    engine,
	}
}

func (h *ClassifyHandler) HandleClassify(c *fiber.Ctx) error {
	var req models.ProfileRecord
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse classify request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Username == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "username is required",
		})
	}

	req.RecomputeCombinedText()
	sig := h.extractor.Extract(&req)
	res := h.engine.Score(&req, sig)

	return c.JSON(fiber.Map{
		"username":       req.Username,
		"mode":           h.engine.Mode(),
		"signals":        sig,
		"score":          res.Score,
		"classification": res.Classification,
		"reasons":        res.Reasons,
		"rejected_by":    res.RejectedBy,
	})
}
