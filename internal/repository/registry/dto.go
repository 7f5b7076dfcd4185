package registry

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bizvet/bizvet/internal/domain"
)

// searchPayload is the registry search request body. Field names and constant
// values follow the registry's own web interface.
type searchPayload struct {
	CancellationMode bool    `json:"cancellationMode"`
	ComparisonType   int     `json:"comparisonType"`
	IsWorkFlowSearch bool    `json:"isWorkFlowSearch"`
	Limit            int     `json:"limit"`
	MatchType        int     `json:"matchType"`
	Method           *string `json:"method"`
	OnlyActive       bool    `json:"onlyActive"`
	RegistryNumber   *string `json:"registryNumber"`
	AdvanceSearch    *string `json:"advanceSearch"`
	CorpName         string  `json:"corpName"`
}

func buildSearchPayload(name string, limit int) ([]byte, error) {
	data, err := json.Marshal(searchPayload{
		ComparisonType: 1,
		Limit:          limit,
		MatchType:      4,
		OnlyActive:     true,
		CorpName:       name,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search payload: %w", err)
	}
	return data, nil
}

// flexID decodes a registry identifier that arrives as either a JSON string
// or a JSON number. Anything else decodes to the empty string.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexID(n.String())
		return nil
	}
	*f = ""
	return nil
}

// searchEnvelope is the registry search response.
type searchEnvelope struct {
	Response struct {
		Records []searchRecord `json:"records"`
	} `json:"response"`
}

// searchRecord is a single registry search hit.
type searchRecord struct {
	RegistrationIndex flexID `json:"registrationIndex"`
	CorpName          string `json:"corpName"`
}

func parseSearchResponse(data []byte) ([]domain.RegistryHit, error) {
	var envelope searchEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	hits := make([]domain.RegistryHit, 0, len(envelope.Response.Records))
	for _, rec := range envelope.Response.Records {
		hits = append(hits, domain.RegistryHit{
			RegistrationIndex: string(rec.RegistrationIndex),
			Name:              rec.CorpName,
		})
	}
	return hits, nil
}

// detailEnvelope is the registry corporation info response.
type detailEnvelope struct {
	Response struct {
		CorpStreetAddress struct {
			Address1 string `json:"address1"`
		} `json:"corpStreetAddress"`
	} `json:"response"`
}

func parseDetailResponse(data []byte) (string, error) {
	var envelope detailEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return "", fmt.Errorf("decode detail response: %w", err)
	}
	return strings.TrimSpace(envelope.Response.CorpStreetAddress.Address1), nil
}
