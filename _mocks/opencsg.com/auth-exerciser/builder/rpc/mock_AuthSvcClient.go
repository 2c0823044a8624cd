// Code generated manually to mirror mockery patterns. DO NOT EDIT.

package rpc

import (
	context "context"

	mock "github.com/stretchr/testify/mock"
	types "opencsg.com/auth-exerciser/common/types"
)

// MockAuthSvcClient is a mock for AuthSvcClient.
type MockAuthSvcClient struct {
	mock.Mock
}

func (m *MockAuthSvcClient) SendEmailCode(ctx context.Context, email string) (*types.MsgResp, error) {
	ret := m.Called(ctx, email)
	var r0 *types.MsgResp
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*types.MsgResp)
	}
	return r0, ret.Error(1)
}

func (m *MockAuthSvcClient) Register(ctx context.Context, req *types.RegisterReq) (*types.AuthResp, error) {
	ret := m.Called(ctx, req)
	var r0 *types.AuthResp
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*types.AuthResp)
	}
	return r0, ret.Error(1)
}

func (m *MockAuthSvcClient) Login(ctx context.Context, req *types.LoginReq) (*types.AuthResp, error) {
	ret := m.Called(ctx, req)
	var r0 *types.AuthResp
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*types.AuthResp)
	}
	return r0, ret.Error(1)
}

func (m *MockAuthSvcClient) ChangeUsername(ctx context.Context, sessionID string, username string) (*types.MsgResp, error) {
	ret := m.Called(ctx, sessionID, username)
	var r0 *types.MsgResp
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*types.MsgResp)
	}
	return r0, ret.Error(1)
}

func (m *MockAuthSvcClient) ChangeEmail(ctx context.Context, sessionID string, email string) (*types.MsgResp, error) {
	ret := m.Called(ctx, sessionID, email)
	var r0 *types.MsgResp
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*types.MsgResp)
	}
	return r0, ret.Error(1)
}

func (m *MockAuthSvcClient) DeleteAccount(ctx context.Context, sessionID string) (*types.MsgResp, error) {
	ret := m.Called(ctx, sessionID)
	var r0 *types.MsgResp
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*types.MsgResp)
	}
	return r0, ret.Error(1)
}

func (m *MockAuthSvcClient) UserInfo(ctx context.Context, sessionID string) (*types.UserInfoResp, error) {
	ret := m.Called(ctx, sessionID)
	var r0 *types.UserInfoResp
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*types.UserInfoResp)
	}
	return r0, ret.Error(1)
}

func (m *MockAuthSvcClient) VerifyEmailCode(ctx context.Context, email string, code string) (*types.ResetTokenResp, error) {
	ret := m.Called(ctx, email, code)
	var r0 *types.ResetTokenResp
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*types.ResetTokenResp)
	}
	return r0, ret.Error(1)
}

func (m *MockAuthSvcClient) ResetPassword(ctx context.Context, token string, newPassword string) (*types.MsgResp, error) {
	ret := m.Called(ctx, token, newPassword)
	var r0 *types.MsgResp
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*types.MsgResp)
	}
	return r0, ret.Error(1)
}

// NewMockAuthSvcClient creates a new instance of MockAuthSvcClient.
func NewMockAuthSvcClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockAuthSvcClient {
	mockObj := &MockAuthSvcClient{}
	mockObj.Mock.Test(t)

	t.Cleanup(func() { mockObj.AssertExpectations(t) })

	return mockObj
}
