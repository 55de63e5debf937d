package avalanche

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vietddude/nodewatch/internal/core/domain"
	"github.com/vietddude/nodewatch/internal/infra/chain"
	"github.com/vietddude/nodewatch/internal/infra/rpc/provider"
)

// MethodGetCurrentValidators is the P-Chain API method queried every cycle.
const MethodGetCurrentValidators = "platform.getCurrentValidators"

type getCurrentValidatorsParams struct {
	NodeIDs []string `json:"nodeIDs"`
}

type getCurrentValidatorsResult struct {
	Validators *[]wireValidator `json:"validators"`
}

// wireValidator uses pointers so missing fields can be told apart from zero values.
type wireValidator struct {
	NodeID    *string          `json:"nodeID"`
	Connected *bool            `json:"connected"`
	Uptime    domain.Uptime    `json:"uptime"`
	StartTime *domain.UnixTime `json:"startTime"`
	EndTime   *domain.UnixTime `json:"endTime"`
}

// Adapter fetches validator status from the Avalanche P-Chain API.
type Adapter struct {
	client provider.RPCProvider
	log    *slog.Logger
}

var _ chain.ValidatorFetcher = (*Adapter)(nil)

func NewAdapter(client provider.RPCProvider) *Adapter {
	return &Adapter{
		client: client,
		log:    slog.Default().With("component", "avalanche", "provider", client.GetName()),
	}
}

// FetchValidatorStatus issues one platform.getCurrentValidators call.
func (a *Adapter) FetchValidatorStatus(
	ctx context.Context,
	nodeIDs []domain.NodeID,
) ([]domain.ValidatorRecord, error) {
	params := getCurrentValidatorsParams{NodeIDs: nodeIDs}
	if params.NodeIDs == nil {
		params.NodeIDs = []string{}
	}

	raw, err := a.client.Call(ctx, MethodGetCurrentValidators, params)
	if err != nil {
		return nil, classify(err)
	}

	records, err := decodeValidators(raw)
	if err != nil {
		return nil, err
	}

	a.log.Debug("Fetched validator status", "requested", len(nodeIDs), "returned", len(records))
	return records, nil
}

func decodeValidators(raw json.RawMessage) ([]domain.ValidatorRecord, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, &chain.ProtocolError{Reason: "missing result"}
	}

	var result getCurrentValidatorsResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, &chain.ProtocolError{Reason: "malformed result", Err: err}
	}
	if result.Validators == nil {
		return nil, &chain.ProtocolError{Reason: "missing result.validators"}
	}

	records := make([]domain.ValidatorRecord, 0, len(*result.Validators))
	for i, v := range *result.Validators {
		if v.NodeID == nil || v.Connected == nil || v.StartTime == nil || v.EndTime == nil {
			return nil, &chain.ProtocolError{
				Reason: fmt.Sprintf("validator %d missing nodeID, connected, startTime or endTime", i),
			}
		}
		records = append(records, domain.ValidatorRecord{
			NodeID:    *v.NodeID,
			Connected: *v.Connected,
			Uptime:    v.Uptime,
			StartTime: *v.StartTime,
			EndTime:   *v.EndTime,
		})
	}
	return records, nil
}

// classify maps provider failures onto the fetcher's error taxonomy.
func classify(err error) error {
	var httpErr *provider.HTTPError
	var rpcErr *provider.RPCError
	var decodeErr *provider.DecodeError

	switch {
	case errors.As(err, &httpErr):
		return &chain.TransportError{StatusCode: httpErr.StatusCode, Err: err}
	case errors.As(err, &rpcErr):
		return &chain.ProtocolError{Reason: "rpc error response", Err: err}
	case errors.As(err, &decodeErr):
		return &chain.ProtocolError{Reason: "invalid json-rpc envelope", Err: err}
	default:
		return &chain.TransportError{Err: err}
	}
}
