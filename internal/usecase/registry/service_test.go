package registry

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/bizvet/bizvet/internal/domain"
)

type mockRegistry struct {
	mu         sync.Mutex
	hits       map[string][]domain.RegistryHit
	searchErr  map[string]error
	addresses  map[string]string
	addressErr map[string]error

	searchCalls  int
	addressCalls int
}

func (m *mockRegistry) Search(_ context.Context, name string) ([]domain.RegistryHit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchCalls++
	if err := m.searchErr[name]; err != nil {
		return nil, err
	}
	return m.hits[name], nil
}

func (m *mockRegistry) Address(_ context.Context, registrationIndex string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addressCalls++
	if err := m.addressErr[registrationIndex]; err != nil {
		return "", err
	}
	return m.addresses[registrationIndex], nil
}

func TestFetchBatch_MergesBothQueries(t *testing.T) {
	reg := &mockRegistry{
		hits: map[string][]domain.RegistryHit{
			"Condal": {
				{RegistrationIndex: "101", Name: "Condal Inc"},
				{RegistrationIndex: "102", Name: "Condal Group LLC"},
			},
			"Cafeteria Condal": {
				{RegistrationIndex: "103", Name: "Cafeteria Condal Corp"},
			},
		},
		addresses: map[string]string{
			"101": "123 Main St",
			"102": "456 Oak Ave",
			"103": "789 Pine Rd",
		},
	}
	svc := NewService(reg, zap.NewNop())

	out := svc.FetchBatch(context.Background(), []domain.QueryExpansion{
		{Original: "Condal", Alternative: "Cafeteria Condal"},
	})

	if len(out) != 1 {
		t.Fatalf("expected 1 result slot, got %d", len(out))
	}
	want := []domain.Candidate{
		{Name: "Condal Inc", Address: "123 Main St"},
		{Name: "Condal Group LLC", Address: "456 Oak Ave"},
		{Name: "Cafeteria Condal Corp", Address: "789 Pine Rd"},
	}
	if len(out[0]) != len(want) {
		t.Fatalf("expected %d candidates, got %d: %+v", len(want), len(out[0]), out[0])
	}
	for i, c := range want {
		if out[0][i] != c {
			t.Errorf("candidate %d: expected %+v, got %+v", i, c, out[0][i])
		}
	}
	if reg.searchCalls != 2 {
		t.Errorf("expected 2 search calls, got %d", reg.searchCalls)
	}
	if reg.addressCalls != 3 {
		t.Errorf("expected 3 address calls, got %d", reg.addressCalls)
	}
}

func TestFetchBatch_KeepsDuplicateHits(t *testing.T) {
	// A blank expansion falls back to the original name, so both queries can
	// return the same hit. Both copies survive.
	reg := &mockRegistry{
		hits: map[string][]domain.RegistryHit{
			"Condal": {{RegistrationIndex: "101", Name: "Condal Inc"}},
		},
		addresses: map[string]string{"101": "123 Main St"},
	}
	svc := NewService(reg, zap.NewNop())

	out := svc.FetchBatch(context.Background(), []domain.QueryExpansion{
		domain.NewQueryExpansion("Condal", ""),
	})

	if len(out[0]) != 2 {
		t.Fatalf("expected duplicate hit to be kept, got %+v", out[0])
	}
	for i, c := range out[0] {
		if c.Name != "Condal Inc" || c.Address != "123 Main St" {
			t.Errorf("candidate %d: unexpected %+v", i, c)
		}
	}
}

func TestFetchBatch_DropsHitsWithoutIndex(t *testing.T) {
	reg := &mockRegistry{
		hits: map[string][]domain.RegistryHit{
			"Condal": {
				{RegistrationIndex: "", Name: "Ghost Entry"},
				{RegistrationIndex: "101", Name: "Condal Inc"},
			},
			"Cafeteria Condal": nil,
		},
		addresses: map[string]string{"101": "123 Main St"},
	}
	svc := NewService(reg, zap.NewNop())

	out := svc.FetchBatch(context.Background(), []domain.QueryExpansion{
		{Original: "Condal", Alternative: "Cafeteria Condal"},
	})

	if len(out[0]) != 1 {
		t.Fatalf("expected only the indexed hit, got %+v", out[0])
	}
	if out[0][0].Name != "Ghost Entry" && out[0][0].Name != "Condal Inc" {
		t.Fatalf("unexpected candidate %+v", out[0][0])
	}
	if out[0][0].Name == "Ghost Entry" {
		t.Fatalf("hit without registration index should have been dropped")
	}
	if reg.addressCalls != 1 {
		t.Errorf("expected 1 address call, got %d", reg.addressCalls)
	}
}

func TestFetchBatch_SearchFailureDegradesRecord(t *testing.T) {
	reg := &mockRegistry{
		hits: map[string][]domain.RegistryHit{
			"Cafeteria Condal": {{RegistrationIndex: "103", Name: "Cafeteria Condal Corp"}},
		},
		searchErr: map[string]error{"Condal": errors.New("boom")},
		addresses: map[string]string{"103": "789 Pine Rd"},
	}
	svc := NewService(reg, zap.NewNop())

	out := svc.FetchBatch(context.Background(), []domain.QueryExpansion{
		{Original: "Condal", Alternative: "Cafeteria Condal"},
	})

	if len(out[0]) != 1 || out[0][0].Name != "Cafeteria Condal Corp" {
		t.Fatalf("expected surviving query's hit only, got %+v", out[0])
	}
}

func TestFetchBatch_AllSearchesFail(t *testing.T) {
	reg := &mockRegistry{
		searchErr: map[string]error{
			"Condal":           errors.New("boom"),
			"Cafeteria Condal": errors.New("boom"),
		},
	}
	svc := NewService(reg, zap.NewNop())

	out := svc.FetchBatch(context.Background(), []domain.QueryExpansion{
		{Original: "Condal", Alternative: "Cafeteria Condal"},
	})

	if len(out) != 1 {
		t.Fatalf("expected 1 result slot, got %d", len(out))
	}
	if out[0] != nil {
		t.Fatalf("expected no candidates, got %+v", out[0])
	}
	if reg.addressCalls != 0 {
		t.Errorf("expected no address calls, got %d", reg.addressCalls)
	}
}

func TestFetchBatch_AddressFailureKeepsCandidate(t *testing.T) {
	reg := &mockRegistry{
		hits: map[string][]domain.RegistryHit{
			"Condal":           {{RegistrationIndex: "101", Name: "Condal Inc"}},
			"Cafeteria Condal": nil,
		},
		addressErr: map[string]error{"101": errors.New("boom")},
	}
	svc := NewService(reg, zap.NewNop())

	out := svc.FetchBatch(context.Background(), []domain.QueryExpansion{
		{Original: "Condal", Alternative: "Cafeteria Condal"},
	})

	if len(out[0]) != 1 {
		t.Fatalf("expected 1 candidate, got %+v", out[0])
	}
	if out[0][0].Name != "Condal Inc" || out[0][0].Address != "" {
		t.Fatalf("expected name-only candidate, got %+v", out[0][0])
	}
}

func TestFetchBatch_AlignsResultsToRecords(t *testing.T) {
	reg := &mockRegistry{
		hits: map[string][]domain.RegistryHit{
			"Alpha":    {{RegistrationIndex: "1", Name: "Alpha Corp"}},
			"Alpha Co": nil,
			"Beta":     nil,
			"Beta Co":  {{RegistrationIndex: "2", Name: "Beta LLC"}},
		},
		addresses: map[string]string{
			"1": "1 First St",
			"2": "2 Second St",
		},
	}
	svc := NewService(reg, zap.NewNop())

	out := svc.FetchBatch(context.Background(), []domain.QueryExpansion{
		{Original: "Alpha", Alternative: "Alpha Co"},
		{Original: "Beta", Alternative: "Beta Co"},
	})

	if len(out) != 2 {
		t.Fatalf("expected 2 result slots, got %d", len(out))
	}
	if len(out[0]) != 1 || out[0][0].Name != "Alpha Corp" || out[0][0].Address != "1 First St" {
		t.Errorf("record 0: unexpected candidates %+v", out[0])
	}
	if len(out[1]) != 1 || out[1][0].Name != "Beta LLC" || out[1][0].Address != "2 Second St" {
		t.Errorf("record 1: unexpected candidates %+v", out[1])
	}
}

func TestFetchBatch_Empty(t *testing.T) {
	reg := &mockRegistry{}
	svc := NewService(reg, zap.NewNop())

	out := svc.FetchBatch(context.Background(), nil)
	if len(out) != 0 {
		t.Fatalf("expected empty result, got %+v", out)
	}
	if reg.searchCalls != 0 {
		t.Errorf("expected no search calls, got %d", reg.searchCalls)
	}
}
