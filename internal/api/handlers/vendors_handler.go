package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/festivaldir/curator/internal/storage/sqlite"
	"github.com/festivaldir/curator/pkg/logger"
)

// VendorsHandler serves the curated vendor listing from the results store.
type VendorsHandler struct {
	db *sqlite.Client
}

func NewVendorsHandler(db *sqlite.Client) *VendorsHandler {
	return &VendorsHandler{db: db}
}

func (h *VendorsHandler) HandleList(c *fiber.Ctx) error {
	category := c.Query("category")
	limit := c.QueryInt("limit", 100)

	vendors, err := h.db.ListCurated(category, limit)
	if err != nil {
		logger.Error("Failed to list curated vendors", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list vendors",
		})
	}

	return c.JSON(fiber.Map{
		"vendors": vendors,
		"count":   len(vendors),
	})
}
