package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/marketdash/market-dashboard/domain"
	"github.com/marketdash/market-dashboard/services"
)

type orderViewService interface {
	State() services.OrderViewState
	SelectSide(ctx context.Context, side domain.Side) error
	Refresh(ctx context.Context)
	PlaceOrder(ctx context.Context, quantityInput string, priceInput string) error
	CancelOrder(ctx context.Context, orderID string)
}

type tradeViewService interface {
	State() services.TradeViewState
	Refresh(ctx context.Context)
	DeleteTrade(ctx context.Context, tradeID string)
}

type serverCredentials interface {
	GetDashboardAddr() string
}

type serverLogger interface {
	Panic(args ...interface{})
	Errorf(format string, args ...interface{})
}

// Server is the browser-facing side of the dashboard: a small JSON API
// over the two views plus a websocket feed pushing the combined state on
// every change. Mutation endpoints answer with the resulting view state so
// the page can re-render without a second round trip.
type Server struct {
	orderView   orderViewService
	tradeView   tradeViewService
	credentials serverCredentials
	hub         *Hub
	logger      serverLogger
}

func NewServer(orderView orderViewService, tradeView tradeViewService, serverCredentials serverCredentials, serverLogger serverLogger) *Server {
	return &Server{
		orderView:   orderView,
		tradeView:   tradeView,
		credentials: serverCredentials,
		hub:         NewHub(),
		logger:      serverLogger,
	}
}

func (server *Server) Start() {
	go func() {
		server.logger.Panic(http.ListenAndServe(server.credentials.GetDashboardAddr(), server.Routes()))
	}()
}

func (server *Server) Routes() chi.Router {
	root := chi.NewRouter()

	root.Use(middleware.Logger)

	root.Route("/api", func(api chi.Router) {
		api.Get("/orders", server.orderState)
		api.Post("/orders", server.placeOrder)
		api.Put("/orders/side", server.selectSide)
		api.Post("/orders/refresh", server.refreshOrders)
		api.Delete("/orders/{orderID}", server.cancelOrder)

		api.Get("/trades", server.tradeState)
		api.Post("/trades/refresh", server.refreshTrades)
		api.Delete("/trades/{tradeID}", server.deleteTrade)

		api.Get("/ws", server.stateFeed)
	})

	return root
}

// BroadcastState pushes the combined state document to every websocket
// subscriber. Wired as the views' change hook.
func (server *Server) BroadcastState() {
	message, err := json.Marshal(server.stateDocument())
	if err != nil {
		server.logger.Errorf("marshal state document: %v", err)
		return
	}

	server.hub.Broadcast(message)
}

type orderRow struct {
	OrderID  string `json:"orderId"`
	Price    string `json:"price"`
	Quantity int64  `json:"quantity"`
}

type orderStateResponse struct {
	Side    string     `json:"side"`
	Buy     []orderRow `json:"buyOrders"`
	Sell    []orderRow `json:"sellOrders"`
	Pending bool       `json:"pending"`
	Error   string     `json:"error,omitempty"`
	Notice  string     `json:"notice,omitempty"`
}

type tradeRow struct {
	TradeID     string `json:"tradeId"`
	BuyOrderID  string `json:"buyOrderId"`
	SellOrderID string `json:"sellOrderId"`
	Price       string `json:"price"`
	Quantity    int64  `json:"quantity"`
	Timestamp   string `json:"timestamp"`
}

type tradeStateResponse struct {
	Trades  []tradeRow `json:"trades"`
	Pending bool       `json:"pending"`
	Error   string     `json:"error,omitempty"`
	Notice  string     `json:"notice,omitempty"`
}

type stateDocument struct {
	Orders orderStateResponse `json:"orders"`
	Trades tradeStateResponse `json:"trades"`
}

func orderRows(orders []domain.Order) []orderRow {
	rows := make([]orderRow, 0, len(orders))
	for _, order := range orders {
		rows = append(rows, orderRow{
			OrderID:  order.OrderID,
			Price:    domain.MoneyLabel(order.Price),
			Quantity: order.Quantity,
		})
	}

	return rows
}

func tradeRows(trades []domain.Trade) []tradeRow {
	rows := make([]tradeRow, 0, len(trades))
	for _, trade := range trades {
		rows = append(rows, tradeRow{
			TradeID:     trade.TradeID,
			BuyOrderID:  trade.BuyOrderID,
			SellOrderID: trade.SellOrderID,
			Price:       domain.MoneyLabel(trade.Price),
			Quantity:    trade.Quantity,
			Timestamp:   time.UnixMilli(trade.Timestamp).Format(time.RFC1123),
		})
	}

	return rows
}

func (server *Server) orderStateResponse() orderStateResponse {
	state := server.orderView.State()

	return orderStateResponse{
		Side:    string(state.Side),
		Buy:     orderRows(state.Buy),
		Sell:    orderRows(state.Sell),
		Pending: state.Pending,
		Error:   state.Error,
		Notice:  state.Notice,
	}
}

func (server *Server) tradeStateResponse() tradeStateResponse {
	state := server.tradeView.State()

	return tradeStateResponse{
		Trades:  tradeRows(state.Trades),
		Pending: state.Pending,
		Error:   state.Error,
		Notice:  state.Notice,
	}
}

func (server *Server) stateDocument() stateDocument {
	return stateDocument{
		Orders: server.orderStateResponse(),
		Trades: server.tradeStateResponse(),
	}
}

func (server *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		server.logger.Errorf("write response: %v", err)
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

func (server *Server) orderState(w http.ResponseWriter, r *http.Request) {
	server.writeJSON(w, http.StatusOK, server.orderStateResponse())
}

func (server *Server) refreshOrders(w http.ResponseWriter, r *http.Request) {
	server.orderView.Refresh(r.Context())
	server.writeJSON(w, http.StatusOK, server.orderStateResponse())
}

type selectSideRequest struct {
	Side string `json:"side"`
}

func (server *Server) selectSide(w http.ResponseWriter, r *http.Request) {
	var request selectSideRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		server.writeJSON(w, http.StatusBadRequest, messageResponse{Message: "invalid request body"})
		return
	}

	side, ok := domain.ParseSide(request.Side)
	if !ok {
		server.writeJSON(w, http.StatusBadRequest, messageResponse{Message: "side must be BUY or SELL"})
		return
	}

	if err := server.orderView.SelectSide(r.Context(), side); err != nil {
		server.writeJSON(w, http.StatusBadRequest, messageResponse{Message: err.Error()})
		return
	}

	server.writeJSON(w, http.StatusOK, server.orderStateResponse())
}

type placeOrderRequest struct {
	Quantity string `json:"quantity"`
	Price    string `json:"price"`
}

func (server *Server) placeOrder(w http.ResponseWriter, r *http.Request) {
	var request placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		server.writeJSON(w, http.StatusBadRequest, messageResponse{Message: "invalid request body"})
		return
	}

	// Validation failures come back synchronously as 400; a remote failure
	// lands in the view state instead.
	if err := server.orderView.PlaceOrder(r.Context(), request.Quantity, request.Price); err != nil {
		server.writeJSON(w, http.StatusBadRequest, messageResponse{Message: err.Error()})
		return
	}

	server.writeJSON(w, http.StatusOK, server.orderStateResponse())
}

func (server *Server) cancelOrder(w http.ResponseWriter, r *http.Request) {
	server.orderView.CancelOrder(r.Context(), chi.URLParam(r, "orderID"))
	server.writeJSON(w, http.StatusOK, server.orderStateResponse())
}

func (server *Server) tradeState(w http.ResponseWriter, r *http.Request) {
	server.writeJSON(w, http.StatusOK, server.tradeStateResponse())
}

func (server *Server) refreshTrades(w http.ResponseWriter, r *http.Request) {
	server.tradeView.Refresh(r.Context())
	server.writeJSON(w, http.StatusOK, server.tradeStateResponse())
}

func (server *Server) deleteTrade(w http.ResponseWriter, r *http.Request) {
	server.tradeView.DeleteTrade(r.Context(), chi.URLParam(r, "tradeID"))
	server.writeJSON(w, http.StatusOK, server.tradeStateResponse())
}
