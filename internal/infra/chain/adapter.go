package chain

import (
	"context"

	"github.com/vietddude/nodewatch/internal/core/domain"
)

// ValidatorFetcher is the boundary between the monitor and the platform API.
type ValidatorFetcher interface {
	// FetchValidatorStatus returns the current validator records for nodeIDs,
	// in the order the backend returned them. It never retries.
	FetchValidatorStatus(ctx context.Context, nodeIDs []domain.NodeID) ([]domain.ValidatorRecord, error)
}
