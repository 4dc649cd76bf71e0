package controller

import (
	"context"

	"github.com/homemeal/homemeal-backend/internal/app/model"
	"github.com/homemeal/homemeal-backend/internal/app/service"
	"github.com/homemeal/homemeal-backend/internal/app/validation"
	apperrors "github.com/homemeal/homemeal-backend/internal/errors"
	"github.com/homemeal/homemeal-backend/internal/metrics"
	"github.com/homemeal/homemeal-backend/internal/middleware"
	"github.com/homemeal/homemeal-backend/internal/session"
	"github.com/shopspring/decimal"
)

type CartController struct {
	guard
	cartService service.CartService
	validator   *validation.Validator
}

func NewCartController(
	cartService service.CartService,
	validator *validation.Validator,
	authMiddleware *middleware.AuthMiddleware,
	m *metrics.Metrics,
) *CartController {
	return &CartController{
		guard:       guard{auth: authMiddleware, metrics: m},
		cartService: cartService,
		validator:   validator,
	}
}

type AddToCartRequest struct {
	ItemID   uint   `json:"item_id"`
	Quantity string `json:"quantity"`
}

type UpdateCartRequest struct {
	Quantity string `json:"quantity"`
}

type CartView struct {
	Entries   []model.CartEntry `json:"entries"`
	Total     decimal.Decimal   `json:"total"`
	ItemCount int64             `json:"item_count"`
}

// GetCart returns the entries newest first with the running total.
func (ctrl *CartController) GetCart(ctx context.Context, token string) apperrors.Result {
	return ctrl.authenticated(ctx, "cart.get", token, nil, func(sess *session.Session) apperrors.Result {
		entries, err := ctrl.cartService.GetCart(sess.UserID)
		if err != nil {
			return apperrors.FromError(err)
		}
		total, err := ctrl.cartService.Total(sess.UserID)
		if err != nil {
			return apperrors.FromError(err)
		}
		count, err := ctrl.cartService.ItemCount(sess.UserID)
		if err != nil {
			return apperrors.FromError(err)
		}
		return apperrors.OK("Cart retrieved", CartView{Entries: entries, Total: total, ItemCount: count})
	})
}

func (ctrl *CartController) AddToCart(ctx context.Context, token string, req AddToCartRequest) apperrors.Result {
	fields := map[string]interface{}{"item_id": req.ItemID, "quantity": req.Quantity}
	return ctrl.authenticated(ctx, "cart.add", token, fields, func(sess *session.Session) apperrors.Result {
		quantity, err := ctrl.validator.ParseQuantity(req.Quantity)
		if err != nil {
			return apperrors.FromError(err)
		}
		entry, err := ctrl.cartService.AddItem(sess.UserID, req.ItemID, quantity)
		if err != nil {
			return apperrors.FromError(err)
		}
		return apperrors.Created(entry.ID, "Item added to cart successfully")
	})
}

func (ctrl *CartController) UpdateCartItem(ctx context.Context, token string, entryID uint, req UpdateCartRequest) apperrors.Result {
	fields := map[string]interface{}{"cart_entry_id": entryID, "quantity": req.Quantity}
	return ctrl.authenticated(ctx, "cart.update", token, fields, func(sess *session.Session) apperrors.Result {
		quantity, err := ctrl.validator.ParseQuantity(req.Quantity)
		if err != nil {
			return apperrors.FromError(err)
		}
		if err := ctrl.cartService.UpdateQuantity(sess.UserID, entryID, quantity); err != nil {
			return apperrors.FromError(err)
		}
		return apperrors.OK("Quantity updated successfully", nil)
	})
}

func (ctrl *CartController) RemoveFromCart(ctx context.Context, token string, entryID uint) apperrors.Result {
	return ctrl.authenticated(ctx, "cart.remove", token, map[string]interface{}{"cart_entry_id": entryID}, func(sess *session.Session) apperrors.Result {
		if err := ctrl.cartService.Remove(sess.UserID, entryID); err != nil {
			return apperrors.FromError(err)
		}
		return apperrors.OK("Item removed from cart successfully", nil)
	})
}

func (ctrl *CartController) ClearCart(ctx context.Context, token string) apperrors.Result {
	return ctrl.authenticated(ctx, "cart.clear", token, nil, func(sess *session.Session) apperrors.Result {
		if _, err := ctrl.cartService.Clear(sess.UserID); err != nil {
			return apperrors.FromError(err)
		}
		return apperrors.OK("Cart cleared successfully", nil)
	})
}

// CheckAvailability lists entries that now exceed stock; an empty list means checkout can proceed.
func (ctrl *CartController) CheckAvailability(ctx context.Context, token string) apperrors.Result {
	return ctrl.authenticated(ctx, "cart.availability", token, nil, func(sess *session.Session) apperrors.Result {
		shortages, err := ctrl.cartService.CheckAvailability(sess.UserID)
		if err != nil {
			return apperrors.FromError(err)
		}
		if len(shortages) == 0 {
			return apperrors.OK("All items are available", []model.Shortage{})
		}
		return apperrors.OK("Some items are no longer available", shortages)
	})
}
