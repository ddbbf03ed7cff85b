package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/storefront/internal/api"
	"github.com/roach88/storefront/internal/state"
)

// Order placement errors.
var (
	ErrEmptyBag     = errors.New("bag is empty")
	ErrNoAddress    = errors.New("no delivery address selected")
	ErrUnknownPrice = errors.New("price unknown for bag item")
)

// Payment methods accepted at checkout.
const (
	PaymentCreditCard = "credit_card"
	PaymentDebitCard  = "debit_card"
	PaymentUPI        = "upi"
	PaymentNetBanking = "net_banking"
)

// Checkout selects delivery and payment for PlaceOrder.
type Checkout struct {
	// AddressID picks a saved address; zero uses the default one.
	AddressID int64
	// PaymentMethod defaults to PaymentCreditCard.
	PaymentMethod string
}

// PlaceOrder orders every bag entry at quantity one and, on success,
// empties the bag and opens the confirmation view. Entries hidden from the
// current listing are ordered too, priced as last listed; the total covers
// exactly the ordered lines.
func (a *App) PlaceOrder(ctx context.Context, co Checkout) (api.Order, error) {
	st := a.Store.GetState()
	if len(st.Bag) == 0 {
		return api.Order{}, ErrEmptyBag
	}
	lines, total, err := a.orderLines(st.Bag)
	if err != nil {
		return api.Order{}, err
	}

	addresses, err := a.Client.Addresses(ctx)
	if err != nil {
		return api.Order{}, err
	}
	addr, ok := pickAddress(addresses, co.AddressID)
	if !ok {
		return api.Order{}, ErrNoAddress
	}

	payment := co.PaymentMethod
	if payment == "" {
		payment = PaymentCreditCard
	}

	req := api.OrderRequest{
		Items:           lines,
		DeliveryAddress: addr.Format(),
		PaymentMethod:   payment,
		TotalAmount:     total,
	}

	order, err := a.Client.PlaceOrder(ctx, req)
	if err != nil {
		return api.Order{}, err
	}
	slog.Info("order placed", "order", order.OrderNumber, "items", len(req.Items))

	if err := a.Store.Dispatch(state.ClearBag{}); err != nil {
		return order, fmt.Errorf("clear bag: %w", err)
	}
	if _, err := a.Open("/order-confirmation/" + order.ID); err != nil {
		return order, err
	}
	return order, nil
}

// orderLines builds one line per bag entry and their total.
func (a *App) orderLines(bag []int64) ([]api.OrderLine, float64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	lines := make([]api.OrderLine, 0, len(bag))
	var total float64
	for _, id := range bag {
		p, ok := a.prices[id]
		if !ok {
			return nil, 0, fmt.Errorf("item %d: %w", id, ErrUnknownPrice)
		}
		lines = append(lines, api.OrderLine{ItemID: id, Quantity: 1})
		total += p
	}
	return lines, total, nil
}

func pickAddress(addresses []api.Address, id int64) (api.Address, bool) {
	for _, a := range addresses {
		if id == 0 && a.IsDefault || id != 0 && a.ID == id {
			return a, true
		}
	}
	return api.Address{}, false
}
