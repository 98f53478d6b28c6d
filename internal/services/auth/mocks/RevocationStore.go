package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type RevocationStore struct {
	mock.Mock
}

func (_m *RevocationStore) RevokeRefreshToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	ret := _m.Called(ctx, tokenID, ttl)

	return ret.Error(0)
}

func (_m *RevocationStore) IsRefreshTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	ret := _m.Called(ctx, tokenID)

	return ret.Bool(0), ret.Error(1)
}

func NewRevocationStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *RevocationStore {
	m := &RevocationStore{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
