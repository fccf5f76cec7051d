package models

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a rejected input: bad amount, quantity, unknown code,
	// illegal transition.
	ErrValidation = errors.New("validation error")
	// ErrState marks an operation attempted in the wrong lifecycle phase.
	ErrState = errors.New("state error")
)

// Role is the staff role carried in the session token.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleCashier Role = "CASHIER"
	RoleWaiter  Role = "WAITER"
	RoleKitchen Role = "KITCHEN"
)

var Roles = []Role{RoleAdmin, RoleManager, RoleCashier, RoleWaiter, RoleKitchen}

var roleLabels = map[Role]string{
	RoleAdmin:   "Administrator",
	RoleManager: "Manager",
	RoleCashier: "Cashier",
	RoleWaiter:  "Waiter",
	RoleKitchen: "Kitchen Staff",
}

func (r Role) Valid() bool    { _, ok := roleLabels[r]; return ok }
func (r Role) Label() string  { return roleLabels[r] }
func (r Role) String() string { return string(r) }

// CanEditCatalog reports whether the role may change menu prices and items.
func (r Role) CanEditCatalog() bool {
	return r == RoleAdmin || r == RoleManager
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrValidation, s)
	}
	return r, nil
}

// ItemType tags a menu item for the kitchen and the menu card.
type ItemType string

const (
	ItemTypeVeg      ItemType = "VEG"
	ItemTypeNonVeg   ItemType = "NON_VEG"
	ItemTypeBeverage ItemType = "BEVERAGE"
	ItemTypeDessert  ItemType = "DESSERT"
)

var ItemTypes = []ItemType{ItemTypeVeg, ItemTypeNonVeg, ItemTypeBeverage, ItemTypeDessert}

var itemTypeLabels = map[ItemType]string{
	ItemTypeVeg:      "Vegetarian",
	ItemTypeNonVeg:   "Non-Vegetarian",
	ItemTypeBeverage: "Beverage",
	ItemTypeDessert:  "Dessert",
}

func (t ItemType) Valid() bool    { _, ok := itemTypeLabels[t]; return ok }
func (t ItemType) Label() string  { return itemTypeLabels[t] }
func (t ItemType) String() string { return string(t) }

func ParseItemType(s string) (ItemType, error) {
	t := ItemType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown item type %q", ErrValidation, s)
	}
	return t, nil
}

type TableStatus string

const (
	TableAvailable   TableStatus = "AVAILABLE"
	TableOccupied    TableStatus = "OCCUPIED"
	TableReserved    TableStatus = "RESERVED"
	TableMaintenance TableStatus = "MAINTENANCE"
	TableCleaning    TableStatus = "CLEANING"
)

var TableStatuses = []TableStatus{TableAvailable, TableOccupied, TableReserved, TableMaintenance, TableCleaning}

var tableStatusLabels = map[TableStatus]string{
	TableAvailable:   "Available",
	TableOccupied:    "Occupied",
	TableReserved:    "Reserved",
	TableMaintenance: "Under Maintenance",
	TableCleaning:    "Cleaning",
}

func (s TableStatus) Valid() bool    { _, ok := tableStatusLabels[s]; return ok }
func (s TableStatus) Label() string  { return tableStatusLabels[s] }
func (s TableStatus) String() string { return string(s) }

func ParseTableStatus(s string) (TableStatus, error) {
	st := TableStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: unknown table status %q", ErrValidation, s)
	}
	return st, nil
}

type OrderType string

const (
	OrderDineIn   OrderType = "DINE_IN"
	OrderTakeaway OrderType = "TAKEAWAY"
	OrderDelivery OrderType = "DELIVERY"
)

var OrderTypes = []OrderType{OrderDineIn, OrderTakeaway, OrderDelivery}

var orderTypeLabels = map[OrderType]string{
	OrderDineIn:   "Dine In",
	OrderTakeaway: "Takeaway",
	OrderDelivery: "Delivery",
}

func (t OrderType) Valid() bool    { _, ok := orderTypeLabels[t]; return ok }
func (t OrderType) Label() string  { return orderTypeLabels[t] }
func (t OrderType) String() string { return string(t) }

func ParseOrderType(s string) (OrderType, error) {
	t := OrderType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown order type %q", ErrValidation, s)
	}
	return t, nil
}

// OrderStatus follows NEW -> CONFIRMED -> PREPARING -> READY -> SERVED, with
// CANCELLED reachable from every non-terminal status.
type OrderStatus string

const (
	OrderNew       OrderStatus = "NEW"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderPreparing OrderStatus = "PREPARING"
	OrderReady     OrderStatus = "READY"
	OrderServed    OrderStatus = "SERVED"
	OrderCancelled OrderStatus = "CANCELLED"
)

var OrderStatuses = []OrderStatus{OrderNew, OrderConfirmed, OrderPreparing, OrderReady, OrderServed, OrderCancelled}

var orderStatusLabels = map[OrderStatus]string{
	OrderNew:       "New Order",
	OrderConfirmed: "Confirmed",
	OrderPreparing: "Preparing",
	OrderReady:     "Ready",
	OrderServed:    "Served",
	OrderCancelled: "Cancelled",
}

func (s OrderStatus) Valid() bool    { _, ok := orderStatusLabels[s]; return ok }
func (s OrderStatus) Label() string  { return orderStatusLabels[s] }
func (s OrderStatus) String() string { return string(s) }

func (s OrderStatus) Terminal() bool {
	return s == OrderServed || s == OrderCancelled
}

// KitchenStage reports whether s is a status the kitchen may set itself.
func (s OrderStatus) KitchenStage() bool {
	return s == OrderPreparing || s == OrderReady
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if next == OrderCancelled {
		return s.Valid() && !s.Terminal()
	}
	switch s {
	case OrderNew:
		return next == OrderConfirmed
	case OrderConfirmed:
		return next == OrderPreparing
	case OrderPreparing:
		return next == OrderReady
	case OrderReady:
		return next == OrderServed
	case OrderServed, OrderCancelled:
		return false
	default:
		return false
	}
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: unknown order status %q", ErrValidation, s)
	}
	return st, nil
}

// ItemStatus is the per-line kitchen progress: ORDERED -> PREPARING -> READY -> SERVED.
type ItemStatus string

const (
	ItemOrdered   ItemStatus = "ORDERED"
	ItemPreparing ItemStatus = "PREPARING"
	ItemReady     ItemStatus = "READY"
	ItemServed    ItemStatus = "SERVED"
)

var ItemStatuses = []ItemStatus{ItemOrdered, ItemPreparing, ItemReady, ItemServed}

var itemStatusLabels = map[ItemStatus]string{
	ItemOrdered:   "Ordered",
	ItemPreparing: "Preparing",
	ItemReady:     "Ready",
	ItemServed:    "Served",
}

func (s ItemStatus) Valid() bool    { _, ok := itemStatusLabels[s]; return ok }
func (s ItemStatus) Label() string  { return itemStatusLabels[s] }
func (s ItemStatus) String() string { return string(s) }

func (s ItemStatus) rank() int {
	switch s {
	case ItemOrdered:
		return 0
	case ItemPreparing:
		return 1
	case ItemReady:
		return 2
	case ItemServed:
		return 3
	default:
		return -1
	}
}

// CanAdvanceTo allows staying put or moving forward, never backward.
func (s ItemStatus) CanAdvanceTo(next ItemStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	return next.rank() >= s.rank()
}

func ParseItemStatus(s string) (ItemStatus, error) {
	st := ItemStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: unknown item status %q", ErrValidation, s)
	}
	return st, nil
}

type InvoiceStatus string

const (
	InvoiceUnpaid    InvoiceStatus = "UNPAID"
	InvoicePartial   InvoiceStatus = "PARTIAL"
	InvoicePaid      InvoiceStatus = "PAID"
	InvoiceCancelled InvoiceStatus = "CANCELLED"
)

var InvoiceStatuses = []InvoiceStatus{InvoiceUnpaid, InvoicePartial, InvoicePaid, InvoiceCancelled}

var invoiceStatusLabels = map[InvoiceStatus]string{
	InvoiceUnpaid:    "Unpaid",
	InvoicePartial:   "Partially Paid",
	InvoicePaid:      "Paid",
	InvoiceCancelled: "Cancelled",
}

func (s InvoiceStatus) Valid() bool    { _, ok := invoiceStatusLabels[s]; return ok }
func (s InvoiceStatus) Label() string  { return invoiceStatusLabels[s] }
func (s InvoiceStatus) String() string { return string(s) }

func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	st := InvoiceStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: unknown invoice status %q", ErrValidation, s)
	}
	return st, nil
}

type PaymentMode string

const (
	PaymentCash   PaymentMode = "CASH"
	PaymentCard   PaymentMode = "CARD"
	PaymentUPI    PaymentMode = "UPI"
	PaymentWallet PaymentMode = "WALLET"
	PaymentCredit PaymentMode = "CREDIT"
)

var PaymentModes = []PaymentMode{PaymentCash, PaymentCard, PaymentUPI, PaymentWallet, PaymentCredit}

var paymentModeLabels = map[PaymentMode]string{
	PaymentCash:   "Cash",
	PaymentCard:   "Card",
	PaymentUPI:    "UPI",
	PaymentWallet: "Digital Wallet",
	PaymentCredit: "Credit",
}

func (m PaymentMode) Valid() bool    { _, ok := paymentModeLabels[m]; return ok }
func (m PaymentMode) Label() string  { return paymentModeLabels[m] }
func (m PaymentMode) String() string { return string(m) }

func ParsePaymentMode(s string) (PaymentMode, error) {
	m := PaymentMode(s)
	if !m.Valid() {
		return "", fmt.Errorf("%w: unknown payment mode %q", ErrValidation, s)
	}
	return m, nil
}
