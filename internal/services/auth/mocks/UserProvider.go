package mocks

import (
	"context"

	"breate/internal/domain/models"

	"github.com/stretchr/testify/mock"
)

type UserProvider struct {
	mock.Mock
}

func (_m *UserProvider) UserByEmail(ctx context.Context, email string) (models.User, error) {
	ret := _m.Called(ctx, email)

	return ret.Get(0).(models.User), ret.Error(1)
}

func NewUserProvider(t interface {
	mock.TestingT
	Cleanup(func())
}) *UserProvider {
	m := &UserProvider{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
