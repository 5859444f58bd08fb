package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/solsentry/solsentry/internal/config"
)

const defaultEtherscanEndpoint = "https://api.etherscan.io/api"

// EtherscanClient fetches verified contract source for on-chain targets.
type EtherscanClient struct {
	apiKey   string
	endpoint string
	http     *http.Client
}

// NewEtherscanClient builds a client from config. The endpoint override
// selects chain-specific hosts (polygonscan, bscscan, ...).
func NewEtherscanClient(cfg config.EtherscanConfig) *EtherscanClient {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEtherscanEndpoint
	}
	return &EtherscanClient{
		apiKey:   cfg.APIKey,
		endpoint: endpoint,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

type etherscanResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  []struct {
		SourceCode   string `json:"SourceCode"`
		ContractName string `json:"ContractName"`
	} `json:"result"`
}

// Fetch retrieves the verified source for address. Multi-file verified
// contracts come back as one document per file; flat verifications come
// back as a single document named after the contract.
func (c *EtherscanClient) Fetch(ctx context.Context, address string) ([]Document, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("%q is not a valid contract address", address)
	}
	checksummed := common.HexToAddress(address).Hex()

	params := url.Values{}
	params.Set("module", "contract")
	params.Set("action", "getsourcecode")
	params.Set("address", checksummed)
	if c.apiKey != "" {
		params.Set("apikey", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("etherscan: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("etherscan: fetch source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("etherscan: HTTP %d: %s", resp.StatusCode, string(b))
	}

	var parsed etherscanResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("etherscan: decode response: %w", err)
	}
	if parsed.Status != "1" || len(parsed.Result) == 0 {
		return nil, fmt.Errorf("etherscan: no result for %s: %s", checksummed, parsed.Message)
	}

	entry := parsed.Result[0]
	if strings.TrimSpace(entry.SourceCode) == "" {
		return nil, fmt.Errorf("contract %s has no verified source", checksummed)
	}

	name := entry.ContractName
	if name == "" {
		name = checksummed
	}
	return splitVerifiedSource(name, entry.SourceCode), nil
}

// splitVerifiedSource unpacks the three shapes Etherscan returns: plain
// source, a JSON object of file→content, and the standard-json-input form
// wrapped in doubled braces.
func splitVerifiedSource(contractName, raw string) []Document {
	trimmed := strings.TrimSpace(raw)

	// Standard JSON input arrives wrapped as {{ ... }}.
	if strings.HasPrefix(trimmed, "{{") && strings.HasSuffix(trimmed, "}}") {
		trimmed = trimmed[1 : len(trimmed)-1]
	}

	if strings.HasPrefix(trimmed, "{") {
		var std struct {
			Sources map[string]struct {
				Content string `json:"content"`
			} `json:"sources"`
		}
		if err := json.Unmarshal([]byte(trimmed), &std); err == nil && len(std.Sources) > 0 {
			docs := make([]Document, 0, len(std.Sources))
			for path, f := range std.Sources {
				docs = append(docs, Document{Name: path, Content: f.Content})
			}
			sortDocs(docs)
			return docs
		}

		// Older multi-file form: a flat map of path to content.
		var flat map[string]struct {
			Content string `json:"content"`
		}
		if err := json.Unmarshal([]byte(trimmed), &flat); err == nil && len(flat) > 0 {
			docs := make([]Document, 0, len(flat))
			for path, f := range flat {
				docs = append(docs, Document{Name: path, Content: f.Content})
			}
			sortDocs(docs)
			return docs
		}
	}

	return []Document{{Name: contractName + ".sol", Content: raw}}
}

func sortDocs(docs []Document) {
	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
}
