package services_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketdash/market-dashboard/domain"
	"github.com/marketdash/market-dashboard/services"
)

type testRemoteCredentials struct {
	url string
}

func (remoteCredentials *testRemoteCredentials) GetOrderServiceURL() string {
	return remoteCredentials.url
}

func TestListOrders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
		assert.Equal(t, http.MethodGet, req.Method)
		assert.Equal(t, "/orders", req.URL.Path)
		assert.Equal(t, "BUY", req.URL.Query().Get("type"))
		assert.NotEmpty(t, req.Header.Get("X-Request-Id"))

		_, _ = resp.Write([]byte(`[{"orderId":"buy100","type":"BUY","quantity":5,"price":10.50,"timestamp":1000}]`))
	}))
	defer server.Close()

	remoteClient := services.NewRemoteClient(&testRemoteCredentials{url: server.URL})

	orders, err := remoteClient.ListOrders(context.Background(), domain.SideBuy)
	require.Nil(t, err)
	require.Len(t, orders, 1)

	assert.Equal(t, "buy100", orders[0].OrderID)
	assert.Equal(t, domain.SideBuy, orders[0].Type)
	assert.Equal(t, int64(5), orders[0].Quantity)
	assert.True(t, orders[0].Price.Equal(decimal.NewFromFloat(10.5)))
	assert.Equal(t, int64(1000), orders[0].Timestamp)
}

func TestPlaceOrderBody(t *testing.T) {
	var body struct {
		OrderID  string  `json:"orderId"`
		Type     string  `json:"type"`
		Quantity int64   `json:"quantity"`
		Price    float64 `json:"price"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "/placeOrder", req.URL.Path)
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

		assert.Nil(t, json.NewDecoder(req.Body).Decode(&body))
		_, _ = resp.Write([]byte(`{"orderId":"sell123"}`))
	}))
	defer server.Close()

	remoteClient := services.NewRemoteClient(&testRemoteCredentials{url: server.URL})

	err := remoteClient.PlaceOrder(context.Background(), domain.Order{
		OrderID:  "sell123",
		Type:     domain.SideSell,
		Quantity: 3,
		Price:    decimal.RequireFromString("20.00"),
	})
	require.Nil(t, err)

	assert.Equal(t, "sell123", body.OrderID)
	assert.Equal(t, "SELL", body.Type)
	assert.Equal(t, int64(3), body.Quantity)
	assert.Equal(t, 20.0, body.Price)
}

func TestCancelOrderPath(t *testing.T) {
	var method, path string

	server := httptest.NewServer(http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
		method = req.Method
		path = req.URL.Path
	}))
	defer server.Close()

	remoteClient := services.NewRemoteClient(&testRemoteCredentials{url: server.URL})

	err := remoteClient.CancelOrder(context.Background(), "buy100")
	require.Nil(t, err)

	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/orders/buy100", path)
}

func TestListTrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/trades/allTrades", req.URL.Path)
		_, _ = resp.Write([]byte(`[{"tradeId":"tradeX","buyOrderId":"buy100","sellOrderId":"sell200","price":12,"quantity":4,"timestamp":2000}]`))
	}))
	defer server.Close()

	remoteClient := services.NewRemoteClient(&testRemoteCredentials{url: server.URL})

	trades, err := remoteClient.ListTrades(context.Background())
	require.Nil(t, err)
	require.Len(t, trades, 1)

	assert.Equal(t, "tradeX", trades[0].TradeID)
	assert.Equal(t, "buy100", trades[0].BuyOrderID)
	assert.Equal(t, "sell200", trades[0].SellOrderID)
	assert.True(t, trades[0].Price.Equal(decimal.NewFromInt(12)))
}

func TestDeleteTradePath(t *testing.T) {
	var method, path string

	server := httptest.NewServer(http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
		method = req.Method
		path = req.URL.Path
	}))
	defer server.Close()

	remoteClient := services.NewRemoteClient(&testRemoteCredentials{url: server.URL})

	err := remoteClient.DeleteTrade(context.Background(), "tradeX")
	require.Nil(t, err)

	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/trades/tradeX", path)
}

func TestNonSuccessStatusIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
		resp.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	remoteClient := services.NewRemoteClient(&testRemoteCredentials{url: server.URL})

	_, err := remoteClient.ListOrders(context.Background(), domain.SideSell)
	assert.NotNil(t, err)

	err = remoteClient.DeleteTrade(context.Background(), "tradeX")
	assert.NotNil(t, err)
}
