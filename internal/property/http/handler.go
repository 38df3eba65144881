package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/stay-booking-backend/internal/property"
)

type PropertyHandler struct {
	service property.Service
}

func NewHandler(service property.Service) *PropertyHandler {
	return &PropertyHandler{service: service}
}

// List returns active properties, or every property of one host.
func (h *PropertyHandler) List(c *gin.Context) {
	var query ListPropertiesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, err)
		return
	}
	params := request.ListParams{Page: query.Page, PageSize: query.PageSize}
	params.Normalize()

	props, total, err := h.service.List(c.Request.Context(), property.Filter{
		HostID:   query.HostID,
		Page:     params.Page,
		PageSize: params.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]PropertyResponse, len(props))
	for i, p := range props {
		items[i] = NewPropertyResponse(p)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, params.Page, params.PageSize, total))
}

// Create lists a new property hosted by the caller.
func (h *PropertyHandler) Create(c *gin.Context) {
	var body CreatePropertyBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err)
		return
	}

	req := property.CreateRequest{
		HostID:        auth.GetUserID(c),
		Title:         body.Title,
		MaxGuests:     body.MaxGuests,
		PricePerNight: body.PricePerNight,
	}

	if body.Policy != nil {
		policy, err := body.Policy.ToPolicy()
		if err != nil {
			response.Error(c, err)
			return
		}
		req.Policy = policy
	}

	blocks, err := toBlocks(body.BlockedIntervals)
	if err != nil {
		response.Error(c, err)
		return
	}
	req.BlockedIntervals = blocks

	p, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewPropertyResponse(p))
}

// Get returns one property.
func (h *PropertyHandler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, err)
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewPropertyResponse(p))
}

// UpdatePolicy changes who may book. Host only.
func (h *PropertyHandler) UpdatePolicy(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, err)
		return
	}

	var body PolicyBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err)
		return
	}

	policy, err := body.ToPolicy()
	if err != nil {
		response.Error(c, err)
		return
	}

	p, err := h.service.UpdatePolicy(c.Request.Context(), uri.ID, auth.GetUserID(c), policy)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewPropertyResponse(p))
}

// ReplaceBlockedIntervals overwrites the host's blocked dates. Host only.
func (h *PropertyHandler) ReplaceBlockedIntervals(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, err)
		return
	}

	var body UpdateBlockedIntervalsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err)
		return
	}

	blocks, err := toBlocks(body.BlockedIntervals)
	if err != nil {
		response.Error(c, err)
		return
	}

	p, err := h.service.ReplaceBlockedIntervals(c.Request.Context(), uri.ID, auth.GetUserID(c), blocks)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewPropertyResponse(p))
}
