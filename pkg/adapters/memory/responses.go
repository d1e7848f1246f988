package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/formflow/pkg/domain"
)

// ResponseStore implements ports.ResponseStore in memory.
type ResponseStore struct {
	byForm map[string][]domain.Response
	mu     sync.RWMutex
}

func NewResponseStore() *ResponseStore {
	return &ResponseStore{byForm: make(map[string][]domain.Response)}
}

func (s *ResponseStore) SaveResponse(ctx context.Context, resp domain.Response) error {
	resp.Answers = resp.Answers.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byForm[resp.FormID] = append(s.byForm[resp.FormID], resp)
	return nil
}

func (s *ResponseStore) ListResponses(ctx context.Context, formID string) ([]domain.Response, error) {
	s.mu.RLock()
	out := make([]domain.Response, len(s.byForm[formID]))
	copy(out, s.byForm[formID])
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletedAt.Before(out[j].CompletedAt)
	})
	return out, nil
}
