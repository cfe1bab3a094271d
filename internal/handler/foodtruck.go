package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/campusfest/festival/internal/model"
	"github.com/campusfest/festival/internal/repository"
)

// FoodTruckHandler exposes vendor-facing truck and menu management.
type FoodTruckHandler struct {
	Trucks *repository.FoodTruckRepo
}

// NewFoodTruckHandler constructs a FoodTruckHandler.
func NewFoodTruckHandler(trucks *repository.FoodTruckRepo) *FoodTruckHandler {
	if trucks == nil {
		panic("nil repository passed to NewFoodTruckHandler")
	}
	return &FoodTruckHandler{Trucks: trucks}
}

type truckReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Location    string `json:"location"`
	IsOpen      bool   `json:"is_open"`
}

// Create handles POST /v1/foodtrucks.
func (h *FoodTruckHandler) Create(c echo.Context) error {
	vendorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req truckReq
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	t := model.FoodTruck{
		VendorID:    vendorID,
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		IsOpen:      req.IsOpen,
	}
	if err := h.Trucks.Create(c.Request().Context(), &t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create food truck"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": truckResp{
		ID: t.ID, Name: t.Name, Description: t.Description,
		Location: t.Location, IsOpen: t.IsOpen,
	}})
}

// ListMine handles GET /v1/my-foodtrucks.
func (h *FoodTruckHandler) ListMine(c echo.Context) error {
	vendorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	trucks, err := h.Trucks.ListByVendor(c.Request().Context(), vendorID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load food trucks"})
	}
	items := make([]truckResp, 0, len(trucks))
	for _, t := range trucks {
		items = append(items, truckResp{
			ID: t.ID, Name: t.Name, Description: t.Description,
			Location: t.Location, IsOpen: t.IsOpen,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// loadOwnedTruck fetches a truck and verifies vendor ownership (admins pass).
func (h *FoodTruckHandler) loadOwnedTruck(c echo.Context) (model.FoodTruck, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return model.FoodTruck{}, echo.NewHTTPError(http.StatusBadRequest, "invalid food truck id")
	}
	t, err := h.Trucks.GetByID(c.Request().Context(), id)
	if err != nil {
		return model.FoodTruck{}, err
	}
	if getRole(c) == model.RoleAdmin {
		return t, nil
	}
	callerID, err := getUserID(c)
	if err != nil || t.VendorID != callerID {
		return model.FoodTruck{}, repository.ErrForbidden
	}
	return t, nil
}

// Update handles PUT /v1/foodtrucks/:id.  Flipping is_open here is how a
// vendor opens and closes for orders.
func (h *FoodTruckHandler) Update(c echo.Context) error {
	t, err := h.loadOwnedTruck(c)
	if err != nil {
		if he, ok := err.(*echo.HTTPError); ok {
			return he
		}
		return respondDomainError(c, err)
	}
	var req truckReq
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	t.Name = req.Name
	t.Description = req.Description
	t.Location = req.Location
	t.IsOpen = req.IsOpen
	if err := h.Trucks.Update(c.Request().Context(), &t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update food truck"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": truckResp{
		ID: t.ID, Name: t.Name, Description: t.Description,
		Location: t.Location, IsOpen: t.IsOpen,
	}})
}

type menuItemReq struct {
	Name        string `json:"name"`
	PriceCents  uint32 `json:"price_cents"`
	IsAvailable bool   `json:"is_available"`
}

// CreateMenuItem handles POST /v1/foodtrucks/:id/menu.
func (h *FoodTruckHandler) CreateMenuItem(c echo.Context) error {
	t, err := h.loadOwnedTruck(c)
	if err != nil {
		if he, ok := err.(*echo.HTTPError); ok {
			return he
		}
		return respondDomainError(c, err)
	}
	var req menuItemReq
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	m := model.MenuItem{
		FoodTruckID: t.ID,
		Name:        req.Name,
		PriceCents:  req.PriceCents,
		IsAvailable: req.IsAvailable,
	}
	if err := h.Trucks.CreateMenuItem(c.Request().Context(), &m); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create menu item"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": menuItemResp{
		ID: m.ID, Name: m.Name, PriceCents: m.PriceCents, IsAvailable: m.IsAvailable,
	}})
}

// UpdateMenuItem handles PUT /v1/foodtrucks/:id/menu/:itemID.
func (h *FoodTruckHandler) UpdateMenuItem(c echo.Context) error {
	t, err := h.loadOwnedTruck(c)
	if err != nil {
		if he, ok := err.(*echo.HTTPError); ok {
			return he
		}
		return respondDomainError(c, err)
	}
	itemID, err := strconv.ParseUint(c.Param("itemID"), 10, 64)
	if err != nil || itemID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid menu item id"})
	}
	ctx := c.Request().Context()
	m, err := h.Trucks.GetMenuItem(ctx, itemID)
	if err != nil {
		return respondDomainError(c, err)
	}
	if m.FoodTruckID != t.ID {
		return respondDomainError(c, repository.ErrMenuItemNotFound)
	}
	var req menuItemReq
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	m.Name = req.Name
	m.PriceCents = req.PriceCents
	m.IsAvailable = req.IsAvailable
	if err := h.Trucks.UpdateMenuItem(ctx, &m); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update menu item"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": menuItemResp{
		ID: m.ID, Name: m.Name, PriceCents: m.PriceCents, IsAvailable: m.IsAvailable,
	}})
}
