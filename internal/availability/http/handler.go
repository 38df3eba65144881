package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/stay-booking-backend/internal/availability"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/response"
)

type Handler struct {
	calculator *availability.Calculator
	now        func() time.Time
}

func NewHandler(calculator *availability.Calculator) *Handler {
	return &Handler{calculator: calculator, now: time.Now}
}

// Get returns every approved stay and block of a property.
func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, err)
		return
	}

	snap, err := h.calculator.Calendar(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewAvailabilityResponse(snap))
}

// Check reports whether a date range is free.
func (h *Handler) Check(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, err)
		return
	}

	var query CheckQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, err)
		return
	}

	candidate, err := availability.ParseInterval(query.CheckIn, query.CheckOut)
	if err != nil {
		response.Error(c, err)
		return
	}

	conflicts, err := h.calculator.ConflictingBookings(c.Request.Context(), uri.ID, candidate.Start, candidate.End)
	if err != nil {
		response.Error(c, err)
		return
	}
	if conflicts == nil {
		conflicts = []availability.Conflict{}
	}

	c.JSON(http.StatusOK, CheckResponse{
		Available: len(conflicts) == 0,
		CheckIn:   query.CheckIn,
		CheckOut:  query.CheckOut,
		Nights:    candidate.Nights(),
		Conflicts: conflicts,
	})
}

// Calendar serves the occupancy as an iCalendar feed.
func (h *Handler) Calendar(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, err)
		return
	}

	snap, err := h.calculator.Calendar(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	body := availability.ExportICS(snap, "Stay "+uri.ID, h.now().UTC())
	c.Header("Content-Disposition", `inline; filename="calendar.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}
