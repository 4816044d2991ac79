package catalog

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/tenants/:id/services", h.Create)
	api.GET("/tenants/:id/services", h.List)
	api.GET("/tenants/:id/services/:svcID", h.Get)
	api.PUT("/tenants/:id/services/:svcID", h.Update)
	api.DELETE("/tenants/:id/services/:svcID", h.Delete)
}

func (h *Handler) Create(c echo.Context) error {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid tenant id")
	}
	var o Offering
	if err := c.Bind(&o); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	o.TenantID = tenantID
	created, err := h.svc.Create(c.Request().Context(), &o)
	if err != nil {
		if errors.Is(err, ErrInvalidOffering) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) List(c echo.Context) error {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid tenant id")
	}
	offerings, err := h.svc.List(c.Request().Context(), tenantID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, offerings)
}

func (h *Handler) Get(c echo.Context) error {
	tenantID, svcID, err := ids(c)
	if err != nil {
		return err
	}
	o, err := h.svc.Get(c.Request().Context(), tenantID, svcID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "offering not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) Update(c echo.Context) error {
	tenantID, svcID, err := ids(c)
	if err != nil {
		return err
	}
	var o Offering
	if err := c.Bind(&o); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	o.TenantID = tenantID
	o.ID = svcID
	updated, err := h.svc.Update(c.Request().Context(), &o)
	if err != nil {
		if errors.Is(err, ErrInvalidOffering) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "offering not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) Delete(c echo.Context) error {
	tenantID, svcID, err := ids(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), tenantID, svcID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "offering not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func ids(c echo.Context) (uuid.UUID, uuid.UUID, error) {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid tenant id")
	}
	svcID, err := uuid.Parse(c.Param("svcID"))
	if err != nil {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid service id")
	}
	return tenantID, svcID, nil
}
