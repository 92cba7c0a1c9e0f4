package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/marketdash/market-dashboard/domain"
	"github.com/shopspring/decimal"
)

// FetchMode selects how a refresh scopes its fetch: both sides eagerly, or
// only the currently selected side.
type FetchMode string

const (
	FetchAllSides     = FetchMode("all")
	FetchSelectedSide = FetchMode("selected")
)

type orderRemote interface {
	ListOrders(ctx context.Context, side domain.Side) ([]domain.Order, error)
	PlaceOrder(ctx context.Context, order domain.Order) error
	CancelOrder(ctx context.Context, orderID string) error
}

type orderNotifier interface {
	OrderPlaced(order domain.Order)
}

type orderViewLogger interface {
	Debugf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// OrderView owns the resting-orders slice of the dashboard: the side
// selection, the last fetched snapshot and the place/cancel flows. The
// displayed orders are always the last successful fetch, never a local
// projection; a mutation only becomes visible through the refresh it
// triggers.
type OrderView struct {
	state     viewState
	remote    orderRemote
	confirmer Confirmer
	notifier  orderNotifier
	logger    orderViewLogger

	mode    FetchMode
	side    domain.Side
	buckets map[domain.Side][]domain.Order
}

func NewOrderView(remote orderRemote, confirmer Confirmer, mode FetchMode, noticeTTL time.Duration, orderViewLogger orderViewLogger) *OrderView {
	orderView := OrderView{
		remote:    remote,
		confirmer: confirmer,
		logger:    orderViewLogger,
		mode:      mode,
		side:      domain.SideBuy,
		buckets:   map[domain.Side][]domain.Order{},
	}
	orderView.state.noticeTTL = noticeTTL

	return &orderView
}

// SetNotifier attaches an optional listener told about successfully placed
// orders. Call before the view starts serving requests.
func (orderView *OrderView) SetNotifier(notifier orderNotifier) {
	orderView.notifier = notifier
}

// OnChange registers a hook fired after every state change. Call before
// the view starts serving requests.
func (orderView *OrderView) OnChange(hook func()) {
	orderView.state.onChange = hook
}

type OrderViewState struct {
	Side    domain.Side
	Buy     []domain.Order
	Sell    []domain.Order
	Pending bool
	Error   string
	Notice  string
}

func (orderView *OrderView) State() OrderViewState {
	orderView.state.mu.Lock()
	defer orderView.state.mu.Unlock()

	return OrderViewState{
		Side:    orderView.side,
		Buy:     append([]domain.Order(nil), orderView.buckets[domain.SideBuy]...),
		Sell:    append([]domain.Order(nil), orderView.buckets[domain.SideSell]...),
		Pending: orderView.state.pending > 0,
		Error:   orderView.state.lastError,
		Notice:  orderView.state.notice,
	}
}

// SelectSide switches the buyer/seller role and re-fetches.
func (orderView *OrderView) SelectSide(ctx context.Context, side domain.Side) error {
	if side != domain.SideBuy && side != domain.SideSell {
		return fmt.Errorf("unknown side %q", side)
	}

	orderView.state.mu.Lock()
	orderView.side = side
	orderView.state.mu.Unlock()
	orderView.state.changed()

	orderView.Refresh(ctx)
	return nil
}

// Refresh fetches the relevant side(s) and replaces the snapshot
// wholesale. A response that lost the race to a newer refresh is
// discarded, a failed fetch keeps the previous snapshot and sets the
// persistent error.
func (orderView *OrderView) Refresh(ctx context.Context) {
	seq := orderView.state.nextRefreshSeq()

	orderView.state.mu.Lock()
	sides := []domain.Side{domain.SideBuy, domain.SideSell}
	if orderView.mode == FetchSelectedSide {
		sides = []domain.Side{orderView.side}
	}
	orderView.state.mu.Unlock()

	orderView.state.beginRequest()
	defer orderView.state.endRequest()

	fetched := map[domain.Side][]domain.Order{}
	for _, side := range sides {
		orders, err := orderView.remote.ListOrders(ctx, side)
		if err != nil {
			orderView.logger.Errorf("fetch %s orders: %v", side, err)
			orderView.state.fail("Failed to fetch orders.")
			return
		}
		fetched[side] = orders
	}

	orderView.state.mu.Lock()
	if !orderView.state.tryApply(seq) {
		orderView.state.mu.Unlock()
		orderView.logger.Debugf("discarding stale order snapshot seq=%d", seq)
		return
	}
	orderView.buckets = fetched
	orderView.state.lastError = ""
	orderView.state.mu.Unlock()
	orderView.state.changed()

	orderView.state.setNotice("Orders refreshed successfully.")
}

// PlaceOrder parses the raw form inputs and submits a new order for the
// selected side. A validation failure is returned synchronously without
// touching the network or the persistent error channel; a remote failure
// is absorbed into the view state and leaves the inputs for a retry.
func (orderView *OrderView) PlaceOrder(ctx context.Context, quantityInput string, priceInput string) error {
	quantityInput = strings.TrimSpace(quantityInput)
	priceInput = strings.TrimSpace(priceInput)
	if quantityInput == "" || priceInput == "" {
		return errors.New("please enter both quantity and price")
	}

	quantity, err := strconv.ParseInt(quantityInput, 10, 64)
	if err != nil || quantity <= 0 {
		return errors.New("quantity must be a positive whole number")
	}

	price, err := decimalFromInput(priceInput)
	if err != nil {
		return errors.New("price must be a non-negative number")
	}

	orderView.state.mu.Lock()
	side := orderView.side
	orderView.state.mu.Unlock()

	order := domain.Order{
		// Correlation token only, uniqueness is the service's problem.
		OrderID:  strings.ToLower(string(side)) + strconv.FormatInt(time.Now().UnixMilli(), 10),
		Type:     side,
		Quantity: quantity,
		Price:    price,
	}

	orderView.state.beginRequest()
	err = orderView.remote.PlaceOrder(ctx, order)
	orderView.state.endRequest()
	if err != nil {
		orderView.logger.Errorf("place order %s: %v", order.OrderID, err)
		orderView.state.fail("Failed to place order.")
		return nil
	}

	orderView.state.setNotice(fmt.Sprintf("%s order placed successfully.", side))
	if orderView.notifier != nil {
		orderView.notifier.OrderPlaced(order)
	}

	orderView.Refresh(ctx)
	return nil
}

// CancelOrder asks for confirmation, then requests the cancel. The stale
// row stays visible until a refresh confirms it is gone; a declined
// confirmation is a silent no-op.
func (orderView *OrderView) CancelOrder(ctx context.Context, orderID string) {
	if !orderView.confirmer.Confirm("Are you sure you want to cancel this order?") {
		return
	}

	orderView.state.beginRequest()
	err := orderView.remote.CancelOrder(ctx, orderID)
	orderView.state.endRequest()
	if err != nil {
		orderView.logger.Errorf("cancel order %s: %v", orderID, err)
		orderView.state.fail("Failed to cancel order.")
		return
	}

	orderView.Refresh(ctx)
}

// Close cancels the notice timer.
func (orderView *OrderView) Close() {
	orderView.state.stop()
}

func decimalFromInput(input string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(input)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if price.IsNegative() {
		return decimal.Decimal{}, errors.New("negative price")
	}

	return price, nil
}
