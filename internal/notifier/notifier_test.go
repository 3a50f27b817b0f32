package notifier

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront-service/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = in
	return &ses.SendEmailOutput{MessageId: aws.String("m-1")}, f.err
}

func TestSendOrderConfirmation(t *testing.T) {
	client := &fakeSES{}
	n := newSESNotifier(client, "shop@example.com")

	event := &models.OrderPlacedEvent{
		OrderID:       "o-42",
		PaymentMethod: models.PaymentMethodCOD,
		OrderStatus:   models.OrderStatusConfirmed,
		TotalAmount:   decimal.RequireFromString("40"),
		Items: []models.OrderItemData{
			{Title: "Shirt", Quantity: 2, Price: decimal.RequireFromString("20")},
		},
	}
	require.NoError(t, n.SendOrderConfirmation(context.Background(), "alice@example.com", "Alice", event))

	require.NotNil(t, client.input)
	assert.Equal(t, "shop@example.com", aws.ToString(client.input.Source))
	assert.Equal(t, []string{"alice@example.com"}, client.input.Destination.ToAddresses)
	assert.Contains(t, aws.ToString(client.input.Message.Subject.Data), "o-42")
	assert.Contains(t, aws.ToString(client.input.Message.Body.Text.Data), "Total Amount: 40.00")
	assert.Contains(t, aws.ToString(client.input.Message.Body.Html.Data), "Shirt x 2")

	assert.Error(t, n.SendOrderConfirmation(context.Background(), "", "Alice", event))
}

func TestOrderFeedBroadcast(t *testing.T) {
	feed := NewOrderFeed([]string{"http://localhost:5173"})
	srv := httptest.NewServer(feed)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return feed.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, feed.Broadcast("order_placed", map[string]string{"orderId": "o-1"}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(payload, &msg))
	assert.Equal(t, "order_placed", msg.Type)
	assert.Equal(t, "o-1", msg.Data["orderId"])
}

func TestOrderFeedRejectsForeignOrigin(t *testing.T) {
	feed := NewOrderFeed([]string{"http://localhost:5173"})
	srv := httptest.NewServer(feed)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := map[string][]string{"Origin": {"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 403, resp.StatusCode)
}
