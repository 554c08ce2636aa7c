package vector

import "context"

// MockStore is a configurable in-memory Store for tests.
// Set the function fields to override behavior; otherwise records added via
// Add are served back by Get.
type MockStore struct {
	QueryFunc       func(ctx context.Context, collection string, text string, k int) ([]Candidate, error)
	GetFunc         func(ctx context.Context, collection string, id string) (*Record, error)
	AddFunc         func(ctx context.Context, collection string, rec Record) error
	DeleteWhereFunc func(ctx context.Context, collection string, where map[string]any) error

	QueryCalls       int
	GetCalls         int
	AddCalls         int
	DeleteWhereCalls int

	// Added records per collection, in insertion order.
	Added map[string][]Record
}

// NewMockStore creates an empty mock store.
func NewMockStore() *MockStore {
	return &MockStore{Added: make(map[string][]Record)}
}

var _ Store = (*MockStore)(nil)

// Query implements Store.
func (m *MockStore) Query(ctx context.Context, collection string, text string, k int) ([]Candidate, error) {
	m.QueryCalls++
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, collection, text, k)
	}
	return nil, nil
}

// Get implements Store.
func (m *MockStore) Get(ctx context.Context, collection string, id string) (*Record, error) {
	m.GetCalls++
	if m.GetFunc != nil {
		return m.GetFunc(ctx, collection, id)
	}
	for _, rec := range m.Added[collection] {
		if rec.ID == id {
			r := rec
			return &r, nil
		}
	}
	return nil, nil
}

// Add implements Store.
func (m *MockStore) Add(ctx context.Context, collection string, rec Record) error {
	m.AddCalls++
	if m.AddFunc != nil {
		return m.AddFunc(ctx, collection, rec)
	}
	m.Added[collection] = append(m.Added[collection], rec)
	return nil
}

// DeleteWhere implements Store.
func (m *MockStore) DeleteWhere(ctx context.Context, collection string, where map[string]any) error {
	m.DeleteWhereCalls++
	if m.DeleteWhereFunc != nil {
		return m.DeleteWhereFunc(ctx, collection, where)
	}
	kept := m.Added[collection][:0]
	for _, rec := range m.Added[collection] {
		match := true
		for k, v := range where {
			if rec.Metadata[k] != v {
				match = false
				break
			}
		}
		if !match {
			kept = append(kept, rec)
		}
	}
	m.Added[collection] = kept
	return nil
}
