package server

import (
	"skillswap/internal/cache"
	"skillswap/internal/models"
	"skillswap/internal/seed"

	"github.com/gofiber/fiber/v2"
)

// GetSkillCatalog handles GET /api/skills
// The catalog is embedded at build time and never changes while the
// process runs, so it is served cache-aside with a long TTL mostly to
// keep the JSON encoding off the hot path.
// @Summary Get the skill catalog
// @Description Returns the built-in catalog of skills grouped by category.
// @Tags skills
// @Produce json
// @Success 200 {array} seed.SkillCategory
// @Failure 500 {object} models.ErrorResponse
// @Router /skills [get]
func (s *Server) GetSkillCatalog(c *fiber.Ctx) error {
	var catalog []seed.SkillCategory
	err := cache.Aside(c.Context(), cache.SkillCatalogKey(), &catalog, cache.SkillCatalogTTL, func() error {
		var err error
		catalog, err = seed.Catalog()
		return err
	})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(catalog)
}
