package client

import (
	"context"
	"fmt"
	"net/http"

	apperrors "stayd/pkg/errors"
	"stayd/pkg/model"
)

// PaymentClient creates payment intents on the external gateway. The
// gateway reports the outcome asynchronously through the payment-result
// webhook; this client only starts the flow.
type PaymentClient struct {
	httpClient *HttpClient
}

func NewPaymentClient(baseURL string) *PaymentClient {
	return &PaymentClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *PaymentClient) CreateIntent(ctx context.Context, req *model.PaymentIntentRequest) (*model.PaymentIntent, error) {
	resp, err := c.httpClient.POST(ctx, "/api/v1/payment-intents", req)
	if err != nil {
		return nil, apperrors.PaymentFailed("Payment gateway is unreachable", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, apperrors.PaymentFailed(
			fmt.Sprintf("Payment gateway returned status %d: %s", resp.StatusCode, GetErrorMessage(resp)),
			nil,
		)
	}

	var intent model.PaymentIntent
	if err := resp.DecodeJSON(&intent); err != nil {
		return nil, apperrors.Internal("Failed to decode payment intent response", err)
	}

	return &intent, nil
}
