// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"telemart/internal/models"
)

// OrderLine is one requested item in a new order.
type OrderLine struct {
	ProductID uuid.UUID
	Quantity  int
}

// ProductNotFoundError reports an order line whose product id resolves
// to nothing.
type ProductNotFoundError struct {
	ProductID uuid.UUID
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InsufficientStockError reports an order line that asked for more
// units than the product has left.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Name      string
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: %d available", e.Name, e.Available)
}

// OrderStore manages orders and their item snapshots in the database.
type OrderStore struct {
	db *sql.DB
}

// NewOrderStore returns a new OrderStore.
func NewOrderStore(db *sql.DB) *OrderStore {
	return &OrderStore{db: db}
}

const orderColumns = `id, user_id, status, total_amount, payment_screenshot, review_submitted, created_at, updated_at`

const orderItemColumns = `id, order_id, product_id, name, price, quantity, image`

// scanOrder scans a row into an Order struct.
func scanOrder(scanner interface{ Scan(...any) error }) (*models.Order, error) {
	var o models.Order
	err := scanner.Scan(
		&o.ID, &o.UserID, &o.Status, &o.TotalAmount,
		&o.PaymentScreenshot, &o.ReviewSubmitted, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// scanOrderItem scans a row into an OrderItem struct.
func scanOrderItem(scanner interface{ Scan(...any) error }) (*models.OrderItem, error) {
	var it models.OrderItem
	err := scanner.Scan(
		&it.ID, &it.OrderID, &it.ProductID, &it.Name,
		&it.Price, &it.Quantity, &it.Image,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// Create places an order for the given user in a single transaction.
// Each line decrements the product's stock only when enough units
// remain; the first line that fails aborts the whole order, so stock is
// never partially consumed. Item snapshots capture the product's name,
// price and image at this instant and stay frozen afterwards.
func (s *OrderStore) Create(userID uuid.UUID, lines []OrderLine, paymentScreenshot string) (*models.Order, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	total := decimal.Zero
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		var name, image string
		var price decimal.Decimal
		err := tx.QueryRow(`
			UPDATE products
			SET stock = stock - $2, updated_at = NOW()
			WHERE id = $1 AND stock >= $2
			RETURNING name, price, image
		`, line.ProductID, line.Quantity).Scan(&name, &price, &image)
		if err == sql.ErrNoRows {
			return nil, s.diagnoseLine(tx, line)
		}
		if err != nil {
			return nil, fmt.Errorf("decrement stock: %w", err)
		}

		item := models.OrderItem{
			ProductID: line.ProductID,
			Name:      name,
			Price:     price,
			Quantity:  line.Quantity,
			Image:     image,
		}
		total = total.Add(item.Subtotal())
		items = append(items, item)
	}

	row := tx.QueryRow(`
		INSERT INTO orders (user_id, status, total_amount, payment_screenshot)
		VALUES ($1, $2, $3, $4)
		RETURNING `+orderColumns,
		userID, models.OrderPaidPending, total, paymentScreenshot,
	)
	order, err := scanOrder(row)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	for i := range items {
		row := tx.QueryRow(`
			INSERT INTO order_items (order_id, product_id, name, price, quantity, image)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+orderItemColumns,
			order.ID, items[i].ProductID, items[i].Name, items[i].Price, items[i].Quantity, items[i].Image,
		)
		item, err := scanOrderItem(row)
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		order.Items = append(order.Items, *item)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit order: %w", err)
	}
	return order, nil
}

// diagnoseLine decides why a conditional stock decrement matched no
// row: either the product is gone or it is short on stock.
func (s *OrderStore) diagnoseLine(tx *sql.Tx, line OrderLine) error {
	var name string
	var stock int
	err := tx.QueryRow(`SELECT name, stock FROM products WHERE id = $1`, line.ProductID).Scan(&name, &stock)
	if err == sql.ErrNoRows {
		return &ProductNotFoundError{ProductID: line.ProductID}
	}
	if err != nil {
		return fmt.Errorf("inspect product %s: %w", line.ProductID, err)
	}
	return &InsufficientStockError{ProductID: line.ProductID, Name: name, Available: stock}
}

// FindByID retrieves an order with its items. Returns nil if not found.
func (s *OrderStore) FindByID(id uuid.UUID) (*models.Order, error) {
	row := s.db.QueryRow(`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find order by id: %w", err)
	}

	orders := []models.Order{*o}
	if err := s.attachItems(orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// ListByUser returns a user's orders with items, newest first.
func (s *OrderStore) ListByUser(userID uuid.UUID) ([]models.Order, error) {
	rows, err := s.db.Query(`
		SELECT `+orderColumns+`
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders by user: %w", err)
	}
	defer rows.Close()

	orders, err := collectOrders(rows)
	if err != nil {
		return nil, err
	}
	if err := s.attachItems(orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// List returns all orders with items, newest first, optionally filtered
// by status. An empty status matches everything.
func (s *OrderStore) List(status string) ([]models.Order, error) {
	rows, err := s.db.Query(`
		SELECT `+orderColumns+`
		FROM orders
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
	`, status)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders, err := collectOrders(rows)
	if err != nil {
		return nil, err
	}
	if err := s.attachItems(orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// collectOrders drains a result set of order rows.
func collectOrders(rows *sql.Rows) ([]models.Order, error) {
	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

// attachItems loads the item snapshots for a batch of orders in one query.
func (s *OrderStore) attachItems(orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(orders))
	index := make(map[uuid.UUID]*models.Order, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = &orders[i]
	}

	rows, err := s.db.Query(`
		SELECT `+orderItemColumns+`
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
	`, uuidStrings(ids))
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		it, err := scanOrderItem(rows)
		if err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		if o, ok := index[it.OrderID]; ok {
			o.Items = append(o.Items, *it)
		}
	}
	return rows.Err()
}

// UpdateStatus sets an order's status inside a transaction and returns
// the updated order with items. Entering refunded from any other status
// puts every item's quantity back on its product's stock; an already
// refunded order never restocks twice. A restock that matches no
// product row (the product was deleted since) is logged and skipped.
// Returns nil if the order does not exist.
func (s *OrderStore) UpdateStatus(orderID uuid.UUID, newStatus models.OrderStatus) (*models.Order, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var previous models.OrderStatus
	err = tx.QueryRow(`SELECT status FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&previous)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lock order: %w", err)
	}

	if newStatus == models.OrderRefunded && previous != models.OrderRefunded {
		if err := restockItems(tx, orderID); err != nil {
			return nil, err
		}
	}

	row := tx.QueryRow(`
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+orderColumns,
		newStatus, orderID,
	)
	order, err := scanOrder(row)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit status update: %w", err)
	}

	orders := []models.Order{*order}
	if err := s.attachItems(orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// restockItems returns each item's quantity to its product inside the
// status update transaction.
func restockItems(tx *sql.Tx, orderID uuid.UUID) error {
	rows, err := tx.Query(`SELECT product_id, quantity FROM order_items WHERE order_id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("load items for restock: %w", err)
	}
	defer rows.Close()

	type restock struct {
		productID uuid.UUID
		quantity  int
	}
	var lines []restock
	for rows.Next() {
		var r restock
		if err := rows.Scan(&r.productID, &r.quantity); err != nil {
			return fmt.Errorf("scan restock line: %w", err)
		}
		lines = append(lines, r)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load items for restock: %w", err)
	}

	for _, line := range lines {
		res, err := tx.Exec(`
			UPDATE products SET stock = stock + $2, updated_at = NOW()
			WHERE id = $1
		`, line.productID, line.quantity)
		if err != nil {
			return fmt.Errorf("restock product %s: %w", line.productID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("restock product %s: %w", line.productID, err)
		}
		if affected == 0 {
			slog.Warn("restock skipped, product no longer exists",
				"order_id", orderID, "product_id", line.productID)
		}
	}
	return nil
}
