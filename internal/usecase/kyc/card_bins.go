package kyc

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/ucardlabs/ucard-admin/internal/infrastructure/gateway"
	"github.com/ucardlabs/ucard-admin/internal/pkg/apperror"
)

type CardBinSource interface {
	CardBins(ctx context.Context) (*gateway.Response, error)
}

// CardBinsUseCase отдаёт справочник BIN карт из API эмитента как есть.
type CardBinsUseCase struct {
	source CardBinSource
}

func NewCardBinsUseCase(source CardBinSource) *CardBinsUseCase {
	return &CardBinsUseCase{source: source}
}

func (uc *CardBinsUseCase) Execute(ctx context.Context) (json.RawMessage, error) {
	resp, err := uc.source.CardBins(ctx)
	if err != nil {
		details := map[string]interface{}{}
		var failure *gateway.Failure
		if errors.As(err, &failure) {
			if failure.IsTransport() {
				details["error"] = failure.Message
			} else {
				details["statusCode"] = failure.StatusCode
				details["error"] = failure.Diagnostic
			}
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeGateway, "не удалось получить BIN карт, повторите попытку позже").WithDetails(details)
	}
	return resp.Body, nil
}
