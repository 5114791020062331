package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"chainpass/internal/domain"
	id "chainpass/pkg/domain"
	"chainpass/pkg/platform/sentinel"
)

//go:generate mockgen -source=source.go -destination=mocks/source.go -package=mocks ChainSource

// ChainSource reports one network's view of an address's activity. A source
// that cannot answer returns an error; it never guesses.
type ChainSource interface {
	// Name identifies the network in results and metrics ("base", "optimism").
	Name() string
	// Mainnet reports whether this source is the designated mainnet network.
	Mainnet() bool
	QueryActivity(ctx context.Context, addr id.Address) (domain.ActivitySignals, error)
}

// ExplorerSource queries a block-explorer activity endpoint over HTTP.
type ExplorerSource struct {
	name    string
	mainnet bool
	baseURL string
	client  *http.Client
}

// NewExplorerSource builds a source for one explorer. The client's own
// timeout stays zero; per-query deadlines come from the caller's context.
func NewExplorerSource(name, baseURL string, mainnet bool) *ExplorerSource {
	return &ExplorerSource{
		name:    name,
		mainnet: mainnet,
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

func (s *ExplorerSource) Name() string  { return s.name }
func (s *ExplorerSource) Mainnet() bool { return s.mainnet }

type explorerActivityResponse struct {
	HasDeployedContract   bool `json:"has_deployed_contract"`
	HasRollupInteraction  bool `json:"has_rollup_interaction"`
	TransactionCount      int  `json:"transaction_count"`
	HasMainnetInteraction bool `json:"has_mainnet_interaction"`
}

func (s *ExplorerSource) QueryActivity(ctx context.Context, addr id.Address) (domain.ActivitySignals, error) {
	endpoint := fmt.Sprintf("%s/api/v1/address/%s/activity", s.baseURL, url.PathEscape(string(addr)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.ActivitySignals{}, fmt.Errorf("building explorer request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return domain.ActivitySignals{}, fmt.Errorf("querying %s explorer: %w: %v", s.name, sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.ActivitySignals{}, fmt.Errorf("%s explorer returned status %d: %w", s.name, resp.StatusCode, sentinel.ErrUnavailable)
	}

	var body explorerActivityResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.ActivitySignals{}, fmt.Errorf("decoding %s explorer response: %w", s.name, err)
	}

	return domain.ActivitySignals{
		HasDeployedContract:   body.HasDeployedContract,
		HasRollupInteraction:  body.HasRollupInteraction,
		TransactionCount:      body.TransactionCount,
		HasMainnetInteraction: body.HasMainnetInteraction,
	}, nil
}

// StaticSource returns fixed signals. Used in tests and local development.
type StaticSource struct {
	SourceName string
	IsMainnet  bool
	Signals    domain.ActivitySignals
	Err        error
	// Delay is applied before answering; a canceled context wins.
	Delay time.Duration
}

func (s *StaticSource) Name() string  { return s.SourceName }
func (s *StaticSource) Mainnet() bool { return s.IsMainnet }

func (s *StaticSource) QueryActivity(ctx context.Context, _ id.Address) (domain.ActivitySignals, error) {
	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return domain.ActivitySignals{}, ctx.Err()
		}
	}
	if s.Err != nil {
		return domain.ActivitySignals{}, s.Err
	}
	return s.Signals, nil
}
