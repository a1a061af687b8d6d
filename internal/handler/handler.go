package handler

import (
	"net/http"
	"strconv"

	"inventory-service/internal/order"
	"inventory-service/internal/stock"
	"inventory-service/pkg/jwtutil"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Handler carries the dependencies shared by all route handlers
type Handler struct {
	db       *gorm.DB
	ledger   *stock.Ledger
	workflow *order.Workflow
	jwt      *jwtutil.JWTUtil
}

// New creates a handler over the given database, ledger, workflow and JWT utility
func New(db *gorm.DB, ledger *stock.Ledger, workflow *order.Workflow, jwt *jwtutil.JWTUtil) *Handler {
	return &Handler{
		db:       db,
		ledger:   ledger,
		workflow: workflow,
		jwt:      jwt,
	}
}

// parseID parses a numeric path or query parameter
func parseID(value string) (uint, error) {
	id, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// serverError is the generic 500 response; details stay in the logs
func serverError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
}
