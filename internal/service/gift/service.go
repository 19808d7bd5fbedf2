package gift

import (
	"context"
	"log/slog"

	"github.com/sharetube/multiview/internal/client"
	"github.com/sharetube/multiview/pkg/validator"
)

type iPaymentsClient interface {
	RecordGift(context.Context, *client.Gift) (client.PaymentResult, error)
	RecordDonation(context.Context, *client.Donation) (client.PaymentResult, error)
}

type service struct {
	payments iPaymentsClient
	validate *validator.Validator
	logger   *slog.Logger
}

func NewService(payments iPaymentsClient, logger *slog.Logger) *service {
	return &service{
		payments: payments,
		validate: validator.NewValidator(),
		logger:   logger,
	}
}

// Result is what the gift or donation flow shows to the user. A failing
// payment API lands in Error and never affects playback.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type SendGiftParams struct {
	StreamID   string  `json:"stream_id" validate:"required"`
	Amount     float64 `json:"amount" validate:"gt=0"`
	CurrencyID string  `json:"currency_id" validate:"required,len=3"`
	Remarks    string  `json:"remarks" validate:"max=200"`
}

func (s service) SendGift(ctx context.Context, params *SendGiftParams) (Result, error) {
	if err := s.validate.Check(params); err != nil {
		return Result{}, err
	}

	res, err := s.payments.RecordGift(ctx, &client.Gift{
		StreamID:   params.StreamID,
		Amount:     params.Amount,
		CurrencyID: params.CurrencyID,
		Remarks:    params.Remarks,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to record gift", "stream_id", params.StreamID, "error", err)
		return Result{Success: false, Error: "gift could not be sent, please try again"}, nil
	}

	return Result{Success: res.Success, Error: res.Error}, nil
}

type SendDonationParams struct {
	Amount     float64 `json:"amount" validate:"gt=0"`
	CurrencyID string  `json:"currency_id" validate:"required,len=3"`
	Remarks    string  `json:"remarks" validate:"max=200"`
}

func (s service) SendDonation(ctx context.Context, params *SendDonationParams) (Result, error) {
	if err := s.validate.Check(params); err != nil {
		return Result{}, err
	}

	res, err := s.payments.RecordDonation(ctx, &client.Donation{
		Amount:     params.Amount,
		CurrencyID: params.CurrencyID,
		Remarks:    params.Remarks,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to record donation", "error", err)
		return Result{Success: false, Error: "donation could not be sent, please try again"}, nil
	}

	return Result{Success: res.Success, Error: res.Error}, nil
}
