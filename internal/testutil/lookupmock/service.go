// Package lookupmock provides a testify mock of lookup.Service for the HTTP
// and CLI tests.
package lookupmock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/turtacn/chemsafe/internal/application/lookup"
	"github.com/turtacn/chemsafe/internal/domain/chemical"
	"github.com/turtacn/chemsafe/internal/intelligence/matcher"
)

// MockService is a mock.Mock backed lookup.Service.
type MockService struct {
	mock.Mock
}

func (m *MockService) Init(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockService) ResolveChemical(ctx context.Context, name, id string) *chemical.Entity {
	args := m.Called(ctx, name, id)
	if e := args.Get(0); e != nil {
		return e.(*chemical.Entity)
	}
	return nil
}

func (m *MockService) Match(ctx context.Context, name, id string) matcher.Result {
	return m.Called(ctx, name, id).Get(0).(matcher.Result)
}

func (m *MockService) GetSections(entity *chemical.Entity) []chemical.Section {
	args := m.Called(entity)
	if s := args.Get(0); s != nil {
		return s.([]chemical.Section)
	}
	return nil
}

func (m *MockService) GetProcedures(entity *chemical.Entity, emergencyType string) []chemical.StepGroup {
	args := m.Called(entity, emergencyType)
	if s := args.Get(0); s != nil {
		return s.([]chemical.StepGroup)
	}
	return nil
}

func (m *MockService) GetMainName(name string) string {
	return m.Called(name).String(0)
}

func (m *MockService) GetAllPossibleNames(name string) []string {
	args := m.Called(name)
	if s := args.Get(0); s != nil {
		return s.([]string)
	}
	return nil
}

func (m *MockService) Reload(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockService) Lookup(ctx context.Context, q lookup.Query) (*lookup.ChemicalReport, error) {
	args := m.Called(ctx, q)
	if r := args.Get(0); r != nil {
		return r.(*lookup.ChemicalReport), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) HandleReloadEvent(ctx context.Context, ev chemical.ReloadEvent) error {
	return m.Called(ctx, ev).Error(0)
}

func (m *MockService) Status() lookup.Status {
	return m.Called().Get(0).(lookup.Status)
}

var _ lookup.Service = (*MockService)(nil)
