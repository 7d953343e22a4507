package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/farmconnect/internal/logging"
	"github.com/Skotchmaster/farmconnect/internal/transport"
)

func (h *FarmHTTP) GetProducts(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "product.get_products")

	var q transport.CatalogQuery
	if err := bind(c, l, "get_products_error", &q); err != nil {
		return err
	}

	items, err := h.Svc.ListProducts(q)
	if err != nil {
		return fail(l, "get_products_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{
			"total":    len(items),
			"category": q.Category,
			"sort":     q.Sort,
		},
	})
}

func (h *FarmHTTP) GetProduct(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "product.get_product")

	product, err := h.Svc.GetProduct(c.Param("id"))
	if err != nil {
		return fail(l, "get_product_error", err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *FarmHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	var req transport.ProductRequest
	if err := bind(c, l, "create_product_error", &req); err != nil {
		return err
	}

	product, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		return fail(l, "create_product_error", err)
	}
	l.Info("create_product_success", "product_id", product.ID)
	return c.JSON(http.StatusCreated, product)
}

func (h *FarmHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update_product")

	var req transport.ProductRequest
	if err := bind(c, l, "update_product_error", &req); err != nil {
		return err
	}

	product, err := h.Svc.UpdateProduct(ctx, c.Param("id"), req)
	if err != nil {
		return fail(l, "update_product_error", err)
	}
	l.Info("update_product_success", "product_id", product.ID)
	return c.JSON(http.StatusOK, product)
}

func (h *FarmHTTP) DeleteProduct(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "product.delete_product")

	id := c.Param("id")
	if err := h.Svc.DeleteProduct(id); err != nil {
		return fail(l, "delete_product_error", err)
	}
	l.Info("delete_product_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *FarmHTTP) GetFarmerProducts(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "product.get_farmer_products")

	items, err := h.Svc.FarmerProducts()
	if err != nil {
		return fail(l, "get_farmer_products_error", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *FarmHTTP) GetRecipe(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_recipe")

	resp, err := h.Svc.Recipe(ctx, c.Param("id"))
	if err != nil {
		return fail(l, "get_recipe_error", err)
	}
	return c.JSON(http.StatusOK, resp)
}
