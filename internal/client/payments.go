package client

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

type Gift struct {
	StreamID   string  `json:"stream_id"`
	Amount     float64 `json:"amount"`
	CurrencyID string  `json:"currency_id"`
	Remarks    string  `json:"remarks"`
}

type Donation struct {
	Amount     float64 `json:"amount"`
	CurrencyID string  `json:"currency_id"`
	Remarks    string  `json:"remarks"`
}

type PaymentResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type PaymentsClient struct {
	base
}

func NewPaymentsClient(baseURL string, timeout time.Duration) *PaymentsClient {
	return &PaymentsClient{base: newBase(baseURL, timeout)}
}

func (c *PaymentsClient) RecordGift(ctx context.Context, gift *Gift) (PaymentResult, error) {
	var res PaymentResult
	if err := c.doJSON(ctx, http.MethodPost, "/gifts", gift, &res); err != nil {
		return PaymentResult{}, fmt.Errorf("failed to record gift: %w", err)
	}

	return res, nil
}

func (c *PaymentsClient) RecordDonation(ctx context.Context, donation *Donation) (PaymentResult, error) {
	var res PaymentResult
	if err := c.doJSON(ctx, http.MethodPost, "/donations", donation, &res); err != nil {
		return PaymentResult{}, fmt.Errorf("failed to record donation: %w", err)
	}

	return res, nil
}
