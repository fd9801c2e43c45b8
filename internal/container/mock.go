package container

import (
	"context"

	"github.com/puffbuddy/backend/internal/auth"
	"github.com/puffbuddy/backend/internal/cache"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MockContainer is a container preloaded with test-friendly defaults: a nop
// logger, an in-memory cache and the mock auth service
type MockContainer struct {
	*Container
}

// NewMock creates a mock container for testing
func NewMock() *MockContainer {
	m := &MockContainer{Container: New()}
	m.SetLogger(zap.NewNop())
	m.SetCache(cache.NewMemoryStore())
	m.SetAuthService(&auth.MockAuthService{})
	return m
}

// WithMockDB sets the database
func (m *MockContainer) WithMockDB(db *gorm.DB) *MockContainer {
	m.SetDB(db)
	return m
}

// Clean runs cleanup after tests complete
func (m *MockContainer) Clean(ctx context.Context) error {
	return m.Cleanup(ctx)
}
