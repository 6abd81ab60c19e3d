package controllers

import (
	"context"
	"net/http"

	"github.com/HSouheill/marketplace_backend/models"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderManager interface {
	CreateOrder(ctx context.Context, userID primitive.ObjectID, req models.CreateOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, actor models.Actor, id primitive.ObjectID) (*models.Order, error)
	ListMyOrders(ctx context.Context, userID primitive.ObjectID, filter models.OrderFilter) (models.PagedResult, error)
	ListOrders(ctx context.Context, filter models.OrderFilter) (models.PagedResult, error)
	UpdateOrderStatus(ctx context.Context, id primitive.ObjectID, status, trackingNumber string) (*models.Order, error)
	BulkUpdateOrderStatus(ctx context.Context, ids []string, status string) models.BatchResult
}

type OrderController struct {
	orders OrderManager
}

func NewOrderController(orders OrderManager) *OrderController {
	return &OrderController{orders: orders}
}

func (oc *OrderController) CreateOrder(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	var req models.CreateOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	order, err := oc.orders.CreateOrder(c.Request().Context(), actor.ID, req)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusCreated, "Order created successfully", order)
}

func (oc *OrderController) GetMyOrders(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	filter := models.OrderFilter{
		Status: c.QueryParam("status"),
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
	}
	page, err := oc.orders.ListMyOrders(c.Request().Context(), actor.ID, filter)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Orders retrieved successfully", page)
}

func (oc *OrderController) GetOrder(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id", "Invalid order id")
	if err != nil {
		return respondError(c, err)
	}
	order, err := oc.orders.GetOrder(c.Request().Context(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Order retrieved successfully", order)
}

// GetOrders is the admin listing across all buyers.
func (oc *OrderController) GetOrders(c echo.Context) error {
	filter := models.OrderFilter{
		Status: c.QueryParam("status"),
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
	}
	page, err := oc.orders.ListOrders(c.Request().Context(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Orders retrieved successfully", page)
}

func (oc *OrderController) UpdateOrderStatus(c echo.Context) error {
	id, err := paramID(c, "id", "Invalid order id")
	if err != nil {
		return respondError(c, err)
	}
	var req models.UpdateOrderStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	order, err := oc.orders.UpdateOrderStatus(c.Request().Context(), id, req.Status, req.TrackingNumber)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Order status updated successfully", order)
}

func (oc *OrderController) BulkUpdateOrderStatus(c echo.Context) error {
	var req models.BulkOrderStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	result := oc.orders.BulkUpdateOrderStatus(c.Request().Context(), req.OrderIDs, req.Status)
	return respond(c, http.StatusOK, "Order statuses updated", result)
}
