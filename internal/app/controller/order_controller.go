package controller

import (
	"context"

	"github.com/homemeal/homemeal-backend/internal/app/model"
	"github.com/homemeal/homemeal-backend/internal/app/service"
	apperrors "github.com/homemeal/homemeal-backend/internal/errors"
	"github.com/homemeal/homemeal-backend/internal/metrics"
	"github.com/homemeal/homemeal-backend/internal/middleware"
	"github.com/homemeal/homemeal-backend/internal/session"
)

type OrderController struct {
	guard
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService, authMiddleware *middleware.AuthMiddleware, m *metrics.Metrics) *OrderController {
	return &OrderController{
		guard:        guard{auth: authMiddleware, metrics: m},
		orderService: orderService,
	}
}

type CreateOrderRequest struct {
	DeliveryAddress     *string `json:"delivery_address"`
	SpecialInstructions *string `json:"special_instructions"`
}

type ListOrdersRequest struct {
	Status string `json:"status"`
	Limit  int    `json:"limit"`
}

// parseStatusFilter treats an empty value as "any status".
func parseStatusFilter(raw string) (*model.OrderStatus, error) {
	if raw == "" {
		return nil, nil
	}
	status, err := model.ParseOrderStatus(raw)
	if err != nil {
		return nil, apperrors.Validation("Invalid order status")
	}
	return &status, nil
}

// CreateOrder checks out the caller's cart.
func (ctrl *OrderController) CreateOrder(ctx context.Context, token string, req CreateOrderRequest) apperrors.Result {
	return ctrl.authenticated(ctx, "order.create", token, nil, func(sess *session.Session) apperrors.Result {
		order, err := ctrl.orderService.CreateOrder(sess.UserID, service.CreateOrderInput{
			DeliveryAddress:     req.DeliveryAddress,
			SpecialInstructions: req.SpecialInstructions,
		})
		if err != nil {
			return apperrors.FromError(err)
		}
		return apperrors.Result{
			Success: true,
			ID:      order.ID,
			Message: "Order created",
			Data:    order,
		}
	})
}

func (ctrl *OrderController) CancelOrder(ctx context.Context, token string, orderID uint) apperrors.Result {
	return ctrl.authenticated(ctx, "order.cancel", token, map[string]interface{}{"order_id": orderID}, func(sess *session.Session) apperrors.Result {
		if err := ctrl.orderService.CancelOrder(sess.UserID, orderID); err != nil {
			return apperrors.FromError(err)
		}
		return apperrors.OK("Order cancelled successfully", nil)
	})
}

func (ctrl *OrderController) UpdateOrderStatus(ctx context.Context, token string, orderID uint, status string) apperrors.Result {
	fields := map[string]interface{}{"order_id": orderID, "status": status}
	return ctrl.authenticated(ctx, "order.update_status", token, fields, func(_ *session.Session) apperrors.Result {
		if err := ctrl.orderService.UpdateStatus(orderID, model.OrderStatus(status)); err != nil {
			return apperrors.FromError(err)
		}
		return apperrors.OK("Order status updated successfully", nil)
	})
}

func (ctrl *OrderController) GetOrders(ctx context.Context, token, status string) apperrors.Result {
	return ctrl.authenticated(ctx, "order.list_mine", token, map[string]interface{}{"status": status}, func(sess *session.Session) apperrors.Result {
		filter, err := parseStatusFilter(status)
		if err != nil {
			return apperrors.FromError(err)
		}
		orders, err := ctrl.orderService.GetUserOrders(sess.UserID, filter)
		if err != nil {
			return apperrors.FromError(err)
		}
		return apperrors.OK("Orders retrieved", orders)
	})
}

func (ctrl *OrderController) GetOrderDetails(ctx context.Context, token string, orderID uint) apperrors.Result {
	return ctrl.authenticated(ctx, "order.details", token, map[string]interface{}{"order_id": orderID}, func(sess *session.Session) apperrors.Result {
		order, err := ctrl.orderService.GetOrderDetails(sess.UserID, orderID)
		if err != nil {
			return apperrors.FromError(err)
		}
		return apperrors.OK("Order retrieved", order)
	})
}

// GetStatistics reports the caller's own figures, or every user's when allUsers is set.
func (ctrl *OrderController) GetStatistics(ctx context.Context, token string, allUsers bool) apperrors.Result {
	return ctrl.authenticated(ctx, "order.statistics", token, map[string]interface{}{"all_users": allUsers}, func(sess *session.Session) apperrors.Result {
		var scope *uint
		if !allUsers {
			scope = &sess.UserID
		}
		stats, err := ctrl.orderService.GetStatistics(scope)
		if err != nil {
			return apperrors.FromError(err)
		}
		return apperrors.OK("Statistics retrieved", stats)
	})
}

func (ctrl *OrderController) ListOrders(ctx context.Context, token string, req ListOrdersRequest) apperrors.Result {
	fields := map[string]interface{}{"status": req.Status, "limit": req.Limit}
	return ctrl.authenticated(ctx, "order.list_all", token, fields, func(_ *session.Session) apperrors.Result {
		filter, err := parseStatusFilter(req.Status)
		if err != nil {
			return apperrors.FromError(err)
		}
		orders, err := ctrl.orderService.ListOrders(filter, req.Limit)
		if err != nil {
			return apperrors.FromError(err)
		}
		return apperrors.OK("Orders retrieved", orders)
	})
}

func (ctrl *OrderController) RecentOrders(ctx context.Context, token string, days int) apperrors.Result {
	return ctrl.authenticated(ctx, "order.recent", token, map[string]interface{}{"days": days}, func(_ *session.Session) apperrors.Result {
		orders, err := ctrl.orderService.RecentOrders(days)
		if err != nil {
			return apperrors.FromError(err)
		}
		return apperrors.OK("Orders retrieved", orders)
	})
}
