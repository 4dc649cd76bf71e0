package controller

import (
	"context"
	"errors"

	"github.com/homemeal/homemeal-backend/internal/app/service"
	"github.com/homemeal/homemeal-backend/internal/app/validation"
	apperrors "github.com/homemeal/homemeal-backend/internal/errors"
	"github.com/homemeal/homemeal-backend/internal/metrics"
	"github.com/homemeal/homemeal-backend/internal/middleware"
	"github.com/homemeal/homemeal-backend/internal/session"
)

type CatalogController struct {
	guard
	catalogService service.CatalogService
	validator      *validation.Validator
}

func NewCatalogController(
	catalogService service.CatalogService,
	validator *validation.Validator,
	authMiddleware *middleware.AuthMiddleware,
	m *metrics.Metrics,
) *CatalogController {
	return &CatalogController{
		guard:          guard{auth: authMiddleware, metrics: m},
		catalogService: catalogService,
		validator:      validator,
	}
}

type ListItemsRequest struct {
	Category  string `json:"category"`
	Search    string `json:"search"`
	SortBy    string `json:"sort_by"`
	SortOrder string `json:"sort_order"`
}

// ItemRequest carries the form values as entered; price and stock are parsed here.
type ItemRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	Price         string `json:"price"`
	StockQuantity string `json:"stock_quantity"`
}

func (ctrl *CatalogController) ListItems(ctx context.Context, token string, req ListItemsRequest) apperrors.Result {
	fields := map[string]interface{}{
		"category": req.Category,
		"search":   req.Search,
		"sort_by":  req.SortBy,
	}
	return ctrl.authenticated(ctx, "catalog.list", token, fields, func(_ *session.Session) apperrors.Result {
		items, err := ctrl.catalogService.List(service.ListItemsInput{
			Category:  req.Category,
			Search:    req.Search,
			SortBy:    req.SortBy,
			SortOrder: req.SortOrder,
		})
		if err != nil {
			return apperrors.FromError(err)
		}
		return apperrors.OK("Items retrieved", items)
	})
}

func (ctrl *CatalogController) GetItem(ctx context.Context, token string, itemID uint) apperrors.Result {
	return ctrl.authenticated(ctx, "catalog.get", token, map[string]interface{}{"item_id": itemID}, func(_ *session.Session) apperrors.Result {
		item, err := ctrl.catalogService.GetItem(itemID)
		if err != nil {
			return apperrors.FromError(err)
		}
		return apperrors.OK("Item retrieved", item)
	})
}

func (ctrl *CatalogController) Categories(ctx context.Context, token string) apperrors.Result {
	return ctrl.authenticated(ctx, "catalog.categories", token, nil, func(_ *session.Session) apperrors.Result {
		return apperrors.OK("Categories retrieved", ctrl.catalogService.Categories())
	})
}

func (ctrl *CatalogController) CreateItem(ctx context.Context, token string, req ItemRequest) apperrors.Result {
	return ctrl.authenticated(ctx, "catalog.create", token, map[string]interface{}{"name": req.Name}, func(_ *session.Session) apperrors.Result {
		input, err := ctrl.parseItem(req)
		if err != nil {
			return apperrors.FromError(err)
		}
		item, err := ctrl.catalogService.CreateItem(input)
		if err != nil {
			return apperrors.FromError(err)
		}
		return apperrors.Created(item.ID, "Item created successfully")
	})
}

func (ctrl *CatalogController) UpdateItem(ctx context.Context, token string, itemID uint, req ItemRequest) apperrors.Result {
	return ctrl.authenticated(ctx, "catalog.update", token, map[string]interface{}{"item_id": itemID}, func(_ *session.Session) apperrors.Result {
		input, err := ctrl.parseItem(req)
		if err != nil {
			return apperrors.FromError(err)
		}
		item, err := ctrl.catalogService.UpdateItem(itemID, input)
		if err != nil {
			return apperrors.FromError(err)
		}
		return apperrors.Created(item.ID, "Item updated successfully")
	})
}

func (ctrl *CatalogController) AdjustStock(ctx context.Context, token string, itemID uint, delta int) apperrors.Result {
	fields := map[string]interface{}{"item_id": itemID, "delta": delta}
	return ctrl.authenticated(ctx, "catalog.adjust_stock", token, fields, func(_ *session.Session) apperrors.Result {
		stock, err := ctrl.catalogService.AdjustStock(itemID, delta)
		if err != nil {
			return apperrors.FromError(err)
		}
		return apperrors.OK("Stock updated successfully", map[string]int{"stock_quantity": stock})
	})
}

// parseItem reports price and stock problems together.
func (ctrl *CatalogController) parseItem(req ItemRequest) (service.ItemInput, error) {
	var msgs []string

	price, err := ctrl.validator.ParsePrice(req.Price)
	msgs = appendMessages(msgs, err)
	stock, err := ctrl.validator.ParseStock(req.StockQuantity)
	msgs = appendMessages(msgs, err)

	if len(msgs) > 0 {
		return service.ItemInput{}, apperrors.Validation(msgs...)
	}
	return service.ItemInput{
		Name:          req.Name,
		Description:   req.Description,
		Category:      req.Category,
		Price:         price,
		StockQuantity: stock,
	}, nil
}

func appendMessages(msgs []string, err error) []string {
	if err == nil {
		return msgs
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return append(msgs, appErr.Messages...)
	}
	return append(msgs, err.Error())
}
