package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/HSouheill/marketplace_backend/models"
	"github.com/HSouheill/marketplace_backend/repositories"
	"github.com/HSouheill/marketplace_backend/utils"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	FindByReference(ctx context.Context, reference string) (*models.Order, error)
	List(ctx context.Context, filter models.OrderFilter) ([]models.Order, int64, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status, trackingNumber string) (*models.Order, error)
	MarkPaid(ctx context.Context, id primitive.ObjectID, result models.PaymentResult) (bool, error)
	SetPaymentReference(ctx context.Context, id primitive.ObjectID, provider, reference string) error
}

type StockStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) (bool, error)
	RestoreStock(ctx context.Context, id primitive.ObjectID, quantity int) error
}

// CouponRedeemer is the part of the promotion service orders depend on.
type CouponRedeemer interface {
	ValidateCoupon(ctx context.Context, code string, items []models.CartItem) (models.CouponResult, error)
	RedeemPromotion(ctx context.Context, id primitive.ObjectID) error
	ReleasePromotion(ctx context.Context, id primitive.ObjectID) error
}

type OrderService struct {
	orders   OrderStore
	products StockStore
	coupons  CouponRedeemer
	notifier Notifier
	events   EventPublisher
}

func NewOrderService(orders OrderStore, products StockStore, coupons CouponRedeemer, notifier Notifier, events EventPublisher) *OrderService {
	if events == nil {
		events = LogPublisher{}
	}
	return &OrderService{orders: orders, products: products, coupons: coupons, notifier: notifier, events: events}
}

// CreateOrder prices the order from the catalog, applies an optional coupon
// and reserves stock. Stock taken for earlier lines is given back if a later
// step fails.
func (s *OrderService) CreateOrder(ctx context.Context, userID primitive.ObjectID, req models.CreateOrderRequest) (*models.Order, error) {
	if len(req.OrderItems) == 0 {
		return nil, utils.BadRequest("No order items")
	}

	items := make([]models.OrderItem, 0, len(req.OrderItems))
	cart := make([]models.CartItem, 0, len(req.OrderItems))
	subtotal := decimal.Zero

	for _, line := range req.OrderItems {
		productID, err := primitive.ObjectIDFromHex(line.Product)
		if err != nil {
			return nil, utils.BadRequest("Invalid product id")
		}
		if line.Quantity < 1 {
			return nil, utils.BadRequest("Quantity must be at least 1")
		}

		product, err := s.products.FindByID(ctx, productID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, utils.NotFound("Product not found: " + line.Product)
			}
			return nil, fmt.Errorf("find product: %w", err)
		}
		if !product.IsActive {
			return nil, utils.BadRequest(fmt.Sprintf("Product %s is not available", product.Name))
		}
		if product.Quantity < line.Quantity {
			return nil, insufficientStock(product)
		}

		category := product.Category
		items = append(items, models.OrderItem{
			Product:  product.ID,
			Name:     product.Name,
			Quantity: line.Quantity,
			Price:    product.Price,
			Category: &category,
		})
		cart = append(cart, models.CartItem{
			Product:  product.ID.Hex(),
			Price:    product.Price,
			Quantity: line.Quantity,
			Category: product.Category.Hex(),
		})
		subtotal = subtotal.Add(decimal.NewFromFloat(product.Price).Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	var coupon *models.CouponResult
	code := strings.TrimSpace(req.CouponCode)
	if code != "" {
		result, err := s.coupons.ValidateCoupon(ctx, code, cart)
		if err != nil {
			return nil, err
		}
		coupon = &result
	}

	reserved, err := s.reserveStock(ctx, items)
	if err != nil {
		return nil, err
	}

	discount := decimal.Zero
	if coupon != nil {
		if err := s.coupons.RedeemPromotion(ctx, coupon.PromotionID); err != nil {
			s.releaseStock(ctx, reserved)
			return nil, err
		}
		discount = decimal.NewFromFloat(coupon.Discount)
	}

	total := subtotal.Sub(discount).
		Add(decimal.NewFromFloat(req.TaxPrice)).
		Add(decimal.NewFromFloat(req.ShippingPrice)).
		Round(2)
	totalPrice, _ := total.Float64()
	discountAmount, _ := discount.Float64()

	order := &models.Order{
		User:            userID,
		OrderItems:      items,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		PaymentMethod:   req.PaymentMethod,
		DiscountAmount:  discountAmount,
		TaxPrice:        req.TaxPrice,
		ShippingPrice:   req.ShippingPrice,
		TotalPrice:      totalPrice,
		Status:          models.OrderStatusPending,
	}
	if coupon != nil {
		order.CouponCode = code
	}

	if err := s.orders.Create(ctx, order); err != nil {
		s.releaseStock(ctx, reserved)
		if coupon != nil {
			if rerr := s.coupons.ReleasePromotion(ctx, coupon.PromotionID); rerr != nil {
				log.Printf("Error releasing coupon %s after failed order: %v", code, rerr)
			}
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.events.Publish(ctx, newOrderEvent(EventOrderCreated, order))
	return order, nil
}

func insufficientStock(product *models.Product) error {
	return utils.BadRequest(fmt.Sprintf("Not enough stock for product: %s. Only %d available", product.Name, product.Quantity))
}

func (s *OrderService) reserveStock(ctx context.Context, items []models.OrderItem) ([]models.OrderItem, error) {
	reserved := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		ok, err := s.products.DecrementStock(ctx, item.Product, item.Quantity)
		if err != nil {
			s.releaseStock(ctx, reserved)
			return nil, fmt.Errorf("reserve stock: %w", err)
		}
		if !ok {
			s.releaseStock(ctx, reserved)
			product, ferr := s.products.FindByID(ctx, item.Product)
			if ferr != nil {
				return nil, utils.BadRequest("Not enough stock for product: " + item.Name)
			}
			return nil, insufficientStock(product)
		}
		reserved = append(reserved, item)
	}
	return reserved, nil
}

func (s *OrderService) releaseStock(ctx context.Context, items []models.OrderItem) {
	for _, item := range items {
		if err := s.products.RestoreStock(ctx, item.Product, item.Quantity); err != nil {
			log.Printf("Error restoring stock for product %s: %v", item.Product.Hex(), err)
		}
	}
}

// GetOrder returns the order to its owner or an admin.
func (s *OrderService) GetOrder(ctx context.Context, actor models.Actor, id primitive.ObjectID) (*models.Order, error) {
	order, err := s.findOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.User != actor.ID && !actor.IsAdmin() {
		return nil, utils.Forbidden("Not authorized to view this order")
	}
	return order, nil
}

func (s *OrderService) findOrder(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.NotFound("No order found with that ID")
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	return order, nil
}

func (s *OrderService) ListMyOrders(ctx context.Context, userID primitive.ObjectID, filter models.OrderFilter) (models.PagedResult, error) {
	filter.User = &userID
	return s.ListOrders(ctx, filter)
}

func (s *OrderService) ListOrders(ctx context.Context, filter models.OrderFilter) (models.PagedResult, error) {
	filter.Page, filter.Limit = utils.NormalizePage(filter.Page, filter.Limit)
	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return models.PagedResult{}, fmt.Errorf("list orders: %w", err)
	}
	return models.PagedResult{Items: orders, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

var errOrderCancelled = utils.BadRequest("Cannot update a cancelled order")

var allowedStatusTargets = map[string]bool{
	models.OrderStatusProcessing: true,
	models.OrderStatusShipped:    true,
	models.OrderStatusDelivered:  true,
	models.OrderStatusCancelled:  true,
}

// UpdateOrderStatus moves an order to status and tells the buyer. Cancelling
// returns the reserved stock; a cancelled order cannot change again.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id primitive.ObjectID, status, trackingNumber string) (*models.Order, error) {
	if !allowedStatusTargets[status] {
		return nil, utils.BadRequest("Invalid order status")
	}

	current, err := s.findOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == models.OrderStatusCancelled {
		return nil, errOrderCancelled
	}
	if current.Status == status && trackingNumber == "" {
		return current, nil
	}

	order, err := s.orders.UpdateStatus(ctx, id, status, trackingNumber)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// cancelled since it was read above, or deleted
			if _, ferr := s.findOrder(ctx, id); ferr != nil {
				return nil, ferr
			}
			return nil, errOrderCancelled
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}

	if status == models.OrderStatusCancelled {
		s.releaseStock(ctx, order.OrderItems)
	}

	s.notifyBuyer(ctx, order, models.NotificationOrderStatus, "Order update",
		fmt.Sprintf("Your order %s is now %s", shortOrderID(order.ID), status))
	s.events.Publish(ctx, newOrderEvent(EventOrderStatusChanged, order))
	return order, nil
}

// BulkUpdateOrderStatus applies UpdateOrderStatus to each id independently.
func (s *OrderService) BulkUpdateOrderStatus(ctx context.Context, ids []string, status string) models.BatchResult {
	result := models.BatchResult{Failed: []models.ItemError{}}
	for _, hex := range ids {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			result.Failed = append(result.Failed, models.ItemError{ID: hex, Error: "invalid id"})
			continue
		}
		if _, err := s.UpdateOrderStatus(ctx, id, status, ""); err != nil {
			msg := "update failed"
			if appErr, ok := utils.AsAppError(err); ok {
				msg = appErr.Message
			} else {
				log.Printf("Error updating order %s: %v", hex, err)
			}
			result.Failed = append(result.Failed, models.ItemError{ID: hex, Error: msg})
			continue
		}
		result.Updated++
	}
	return result
}

// MarkOrderPaid records a confirmed payment. Repeated confirmations are no-ops.
// A payment that lands on a cancelled order leaves the order cancelled and is
// flagged for refund.
func (s *OrderService) MarkOrderPaid(ctx context.Context, id primitive.ObjectID, payment models.PaymentResult) (*models.Order, error) {
	changed, err := s.orders.MarkPaid(ctx, id, payment)
	if err != nil {
		return nil, fmt.Errorf("mark order paid: %w", err)
	}

	order, err := s.findOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !changed {
		if order.Status == models.OrderStatusCancelled && !order.IsPaid {
			log.Printf("Payment %s received for cancelled order %s, refund required", payment.ID, order.ID.Hex())
			s.events.Publish(ctx, newOrderEvent(EventOrderRefundRequired, order))
		}
		return order, nil
	}

	s.notifyBuyer(ctx, order, models.NotificationOrderPaid, "Payment received",
		fmt.Sprintf("Payment for order %s has been confirmed", shortOrderID(order.ID)))
	s.events.Publish(ctx, newOrderEvent(EventOrderPaid, order))
	return order, nil
}

func (s *OrderService) notifyBuyer(ctx context.Context, order *models.Order, kind, title, message string) {
	if s.notifier == nil {
		return
	}
	data := map[string]string{"orderId": order.ID.Hex(), "status": order.Status}
	if err := s.notifier.Notify(ctx, order.User, kind, title, message, data); err != nil {
		log.Printf("Error notifying user %s about order %s: %v", order.User.Hex(), order.ID.Hex(), err)
	}
}

func shortOrderID(id primitive.ObjectID) string {
	hex := id.Hex()
	return "#" + strings.ToUpper(hex[len(hex)-8:])
}
