package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/marketdash/market-dashboard/domain"
)

type remoteCredentials interface {
	GetOrderServiceURL() string
}

// RemoteClient talks to the remote order service. Every call is a single
// attempt: transport failures and non-2xx replies come back as the same
// kind of error, retrying is up to the user.
type RemoteClient struct {
	remoteCredentials remoteCredentials
}

func NewRemoteClient(remoteCredentials remoteCredentials) *RemoteClient {
	return &RemoteClient{remoteCredentials: remoteCredentials}
}

func (remoteClient *RemoteClient) sendRequest(ctx context.Context, method string, endPoint string, body io.Reader) ([]byte, error) {
	newRequest, err := http.NewRequestWithContext(ctx, method, remoteClient.remoteCredentials.GetOrderServiceURL()+endPoint, body)
	if err != nil {
		return nil, err
	}

	newRequest.Header.Add("Content-Type", "application/json")
	// Correlation only, the durable order key is assigned server-side.
	newRequest.Header.Add("X-Request-Id", uuid.NewString())

	resp, err := http.DefaultClient.Do(newRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bytesAnswer, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode > 299 {
		return nil, fmt.Errorf("order service replied %d to %s %s", resp.StatusCode, method, endPoint)
	}

	return bytesAnswer, nil
}

func (remoteClient *RemoteClient) ListOrders(ctx context.Context, side domain.Side) ([]domain.Order, error) {
	answer, err := remoteClient.sendRequest(ctx, http.MethodGet, "/orders?type="+string(side), nil)
	if err != nil {
		return nil, err
	}

	var orders []domain.Order
	if err := json.Unmarshal(answer, &orders); err != nil {
		return nil, err
	}

	return orders, nil
}

// The service expects price as a plain JSON number, so the submission body
// carries a float instead of the decimal used everywhere else.
type placeOrderBody struct {
	OrderID  string      `json:"orderId"`
	Type     domain.Side `json:"type"`
	Quantity int64       `json:"quantity"`
	Price    float64     `json:"price"`
}

func (remoteClient *RemoteClient) PlaceOrder(ctx context.Context, order domain.Order) error {
	body, err := json.Marshal(placeOrderBody{
		OrderID:  order.OrderID,
		Type:     order.Type,
		Quantity: order.Quantity,
		Price:    order.Price.InexactFloat64(),
	})
	if err != nil {
		return err
	}

	_, err = remoteClient.sendRequest(ctx, http.MethodPost, "/placeOrder", bytes.NewReader(body))
	return err
}

func (remoteClient *RemoteClient) CancelOrder(ctx context.Context, orderID string) error {
	_, err := remoteClient.sendRequest(ctx, http.MethodDelete, "/orders/"+orderID, nil)
	return err
}

func (remoteClient *RemoteClient) ListTrades(ctx context.Context) ([]domain.Trade, error) {
	answer, err := remoteClient.sendRequest(ctx, http.MethodGet, "/trades/allTrades", nil)
	if err != nil {
		return nil, err
	}

	var trades []domain.Trade
	if err := json.Unmarshal(answer, &trades); err != nil {
		return nil, err
	}

	return trades, nil
}

func (remoteClient *RemoteClient) DeleteTrade(ctx context.Context, tradeID string) error {
	_, err := remoteClient.sendRequest(ctx, http.MethodDelete, "/trades/"+tradeID, nil)
	return err
}
