package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"

	"github.com/ticketron/ticketron/internal/service"
)

const visitsKey = "num_visits"

// CatalogHandler serves the home page.
type CatalogHandler struct {
	catalog  *service.CatalogService
	sessions *session.Store
	logger   *zap.Logger
}

func NewCatalogHandler(catalog *service.CatalogService, sessions *session.Store, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, sessions: sessions, logger: logger}
}

// Index GET /. Shows record counts and how often this session has been here.
func (h *CatalogHandler) Index(c *fiber.Ctx) error {
	stats, err := h.catalog.Stats(c.UserContext())
	if err != nil {
		return err
	}

	visits := 0
	sess, err := h.sessions.Get(c)
	if err != nil {
		h.logger.Warn("session unavailable", zap.Error(err))
	} else {
		if n, ok := sess.Get(visitsKey).(int); ok {
			visits = n
		}
		sess.Set(visitsKey, visits+1)
		if err := sess.Save(); err != nil {
			h.logger.Warn("failed to save session", zap.Error(err))
		}
	}

	return render(c, "catalog/index", fiber.Map{
		"Title":     "Home",
		"Stats":     stats,
		"NumVisits": visits,
	})
}
