package services

import (
	"context"
	"time"

	"github.com/marketdash/market-dashboard/domain"
)

type tradeRemote interface {
	ListTrades(ctx context.Context) ([]domain.Trade, error)
	DeleteTrade(ctx context.Context, tradeID string) error
}

type tradeNotifier interface {
	TradeDeleted(tradeID string)
}

type tradeViewLogger interface {
	Debugf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// TradeView owns the trade-log slice of the dashboard: the full unfiltered
// log and the delete flow. Same snapshot-replace contract as the order
// view.
type TradeView struct {
	state     viewState
	remote    tradeRemote
	confirmer Confirmer
	notifier  tradeNotifier
	logger    tradeViewLogger

	trades []domain.Trade
}

func NewTradeView(remote tradeRemote, confirmer Confirmer, noticeTTL time.Duration, tradeViewLogger tradeViewLogger) *TradeView {
	tradeView := TradeView{
		remote:    remote,
		confirmer: confirmer,
		logger:    tradeViewLogger,
	}
	tradeView.state.noticeTTL = noticeTTL

	return &tradeView
}

// SetNotifier attaches an optional listener told about deleted trade
// records. Call before the view starts serving requests.
func (tradeView *TradeView) SetNotifier(notifier tradeNotifier) {
	tradeView.notifier = notifier
}

// OnChange registers a hook fired after every state change. Call before
// the view starts serving requests.
func (tradeView *TradeView) OnChange(hook func()) {
	tradeView.state.onChange = hook
}

type TradeViewState struct {
	Trades  []domain.Trade
	Pending bool
	Error   string
	Notice  string
}

func (tradeView *TradeView) State() TradeViewState {
	tradeView.state.mu.Lock()
	defer tradeView.state.mu.Unlock()

	return TradeViewState{
		Trades:  append([]domain.Trade(nil), tradeView.trades...),
		Pending: tradeView.state.pending > 0,
		Error:   tradeView.state.lastError,
		Notice:  tradeView.state.notice,
	}
}

// Refresh fetches the complete trade log and replaces the snapshot
// wholesale, with the same stale-response and failure handling as the
// order view.
func (tradeView *TradeView) Refresh(ctx context.Context) {
	seq := tradeView.state.nextRefreshSeq()

	tradeView.state.beginRequest()
	defer tradeView.state.endRequest()

	trades, err := tradeView.remote.ListTrades(ctx)
	if err != nil {
		tradeView.logger.Errorf("fetch trades: %v", err)
		tradeView.state.fail("Could not fetch trades. Please ensure the order service is reachable.")
		return
	}

	tradeView.state.mu.Lock()
	if !tradeView.state.tryApply(seq) {
		tradeView.state.mu.Unlock()
		tradeView.logger.Debugf("discarding stale trade snapshot seq=%d", seq)
		return
	}
	tradeView.trades = trades
	tradeView.state.lastError = ""
	tradeView.state.mu.Unlock()
	tradeView.state.changed()

	tradeView.state.setNotice("Trades refreshed successfully.")
}

// DeleteTrade asks for confirmation, then requests the delete. The record
// stays visible on failure; deleting it never touches the two orders it
// references.
func (tradeView *TradeView) DeleteTrade(ctx context.Context, tradeID string) {
	if !tradeView.confirmer.Confirm("Are you sure you want to delete this trade?") {
		return
	}

	tradeView.state.beginRequest()
	err := tradeView.remote.DeleteTrade(ctx, tradeID)
	tradeView.state.endRequest()
	if err != nil {
		tradeView.logger.Errorf("delete trade %s: %v", tradeID, err)
		tradeView.state.fail("Failed to delete trade.")
		return
	}

	if tradeView.notifier != nil {
		tradeView.notifier.TradeDeleted(tradeID)
	}

	tradeView.Refresh(ctx)
}

// Close cancels the notice timer.
func (tradeView *TradeView) Close() {
	tradeView.state.stop()
}
