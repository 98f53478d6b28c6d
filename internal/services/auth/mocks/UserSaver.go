package mocks

import (
	"context"

	"breate/internal/domain/models"

	"github.com/stretchr/testify/mock"
)

type UserSaver struct {
	mock.Mock
}

func (_m *UserSaver) SaveUser(ctx context.Context, user models.User) (models.User, error) {
	ret := _m.Called(ctx, user)

	return ret.Get(0).(models.User), ret.Error(1)
}

func (_m *UserSaver) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	ret := _m.Called(ctx, userID, passwordHash)

	return ret.Error(0)
}

// NewUserSaver registers a cleanup that asserts the mock's expectations.
func NewUserSaver(t interface {
	mock.TestingT
	Cleanup(func())
}) *UserSaver {
	m := &UserSaver{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
