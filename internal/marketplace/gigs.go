package marketplace

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Umary15/student-skill-share/internal/cache"
	"github.com/Umary15/student-skill-share/internal/lifecycle"
	"github.com/Umary15/student-skill-share/internal/model"
)

// CreateGig - seller lists a new gig.
func (h *Handler) CreateGig(c echo.Context) error {
	uid := userID(c)
	if uid == "" {
		return h.fail(c, lifecycle.ErrUnauthenticated)
	}

	var req CreateGigRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Title == "" || req.Description == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and description are required"})
	}
	if req.PriceCents <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must be positive"})
	}
	if req.DeliveryDays <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "delivery days must be positive"})
	}
	if !req.Category.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown category"})
	}

	gig, err := h.store.CreateGig(c.Request().Context(), &model.Gig{
		ID:           uuid.New().String(),
		UserID:       uid,
		Title:        req.Title,
		Description:  req.Description,
		PriceCents:   req.PriceCents,
		DeliveryDays: req.DeliveryDays,
		Category:     req.Category,
		ImageURL:     req.ImageURL,
	})
	if err != nil {
		return h.fail(c, err)
	}

	h.cache.Invalidate(cache.KeyGigLists(), cache.KeyGigsByOwner(uid))
	return c.JSON(http.StatusCreated, gig)
}

// ListGigs - public discovery with optional category and search filters.
func (h *Handler) ListGigs(c echo.Context) error {
	category := c.QueryParam("category")
	search := c.QueryParam("search")
	if category == "all" {
		category = ""
	}

	key := cache.KeyGigList(category, search)
	if v, ok := h.cache.Get(key); ok {
		return c.JSON(http.StatusOK, echo.Map{"gigs": v})
	}

	gigs, err := h.store.ListGigs(c.Request().Context(), category, search)
	if err != nil {
		return h.fail(c, err)
	}

	h.cache.Set(key, gigs)
	return c.JSON(http.StatusOK, echo.Map{"gigs": gigs})
}

// GetGig - public gig detail.
func (h *Handler) GetGig(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing gig id"})
	}

	key := cache.KeyGig(id)
	if v, ok := h.cache.Get(key); ok {
		return c.JSON(http.StatusOK, v)
	}

	gig, err := h.store.GetGig(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err)
	}

	h.cache.Set(key, gig)
	return c.JSON(http.StatusOK, gig)
}

// MyGigs - every gig of the authenticated seller, active or not.
func (h *Handler) MyGigs(c echo.Context) error {
	uid := userID(c)
	if uid == "" {
		return h.fail(c, lifecycle.ErrUnauthenticated)
	}

	key := cache.KeyGigsByOwner(uid)
	if v, ok := h.cache.Get(key); ok {
		return c.JSON(http.StatusOK, echo.Map{"gigs": v})
	}

	gigs, err := h.store.ListGigsByOwner(c.Request().Context(), uid)
	if err != nil {
		return h.fail(c, err)
	}

	h.cache.Set(key, gigs)
	return c.JSON(http.StatusOK, echo.Map{"gigs": gigs})
}

// UpdateGig - owner edits a gig. Aggregate rating fields are not
// editable through this path.
func (h *Handler) UpdateGig(c echo.Context) error {
	uid := userID(c)
	if uid == "" {
		return h.fail(c, lifecycle.ErrUnauthenticated)
	}

	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing gig id"})
	}

	var req UpdateGigRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.PriceCents != nil && *req.PriceCents <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must be positive"})
	}
	if req.DeliveryDays != nil && *req.DeliveryDays <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "delivery days must be positive"})
	}
	if req.Category != nil && !req.Category.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown category"})
	}

	gig, err := h.store.UpdateGig(c.Request().Context(), id, uid, GigPatch{
		Title:        req.Title,
		Description:  req.Description,
		PriceCents:   req.PriceCents,
		DeliveryDays: req.DeliveryDays,
		Category:     req.Category,
		ImageURL:     req.ImageURL,
		IsActive:     req.IsActive,
	})
	if err != nil {
		return h.fail(c, err)
	}

	h.cache.Invalidate(cache.KeyGigLists(), cache.KeyGig(id), cache.KeyGigsByOwner(uid))
	return c.JSON(http.StatusOK, gig)
}

// DeleteGig - owner retires a listing. Orders keep referencing the row,
// so this is a soft deactivate rather than a DELETE.
func (h *Handler) DeleteGig(c echo.Context) error {
	uid := userID(c)
	if uid == "" {
		return h.fail(c, lifecycle.ErrUnauthenticated)
	}

	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing gig id"})
	}

	if err := h.store.DeactivateGig(c.Request().Context(), id, uid); err != nil {
		return h.fail(c, err)
	}

	h.cache.Invalidate(cache.KeyGigLists(), cache.KeyGig(id), cache.KeyGigsByOwner(uid))
	return c.JSON(http.StatusOK, echo.Map{"message": "gig deactivated"})
}
