package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "noxus.identity.IdentityService"

const (
	MethodPing                  = "Ping"
	MethodSignUp                = "SignUp"
	MethodSignInWithPassword    = "SignInWithPassword"
	MethodRefreshSession        = "RefreshSession"
	MethodGetUser               = "GetUser"
	MethodSignOut               = "SignOut"
	MethodResetPasswordForEmail = "ResetPasswordForEmail"
	MethodUpdateUser            = "UpdateUser"
	MethodSignInWithOAuth       = "SignInWithOAuth"
	MethodGetProfile            = "GetProfile"
	MethodInsertProfile         = "InsertProfile"
	MethodUpsertProfile         = "UpsertProfile"
	MethodPresignAvatarUpload   = "PresignAvatarUpload"
	MethodSetAvatar             = "SetAvatar"
)

// FullMethod returns the "/service/method" path used by interceptors.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// IdentityServiceServer is implemented by the server's gRPC layer.
type IdentityServiceServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	SignUp(context.Context, *Credentials) (*SignUpResponse, error)
	SignInWithPassword(context.Context, *Credentials) (*SessionResponse, error)
	RefreshSession(context.Context, *RefreshSessionRequest) (*SessionResponse, error)
	GetUser(context.Context, *Empty) (*GetUserResponse, error)
	SignOut(context.Context, *SignOutRequest) (*Empty, error)
	ResetPasswordForEmail(context.Context, *ResetPasswordRequest) (*Empty, error)
	UpdateUser(context.Context, *UpdateUserRequest) (*GetUserResponse, error)
	SignInWithOAuth(context.Context, *OAuthRequest) (*OAuthResponse, error)
	GetProfile(context.Context, *GetProfileRequest) (*ProfileResponse, error)
	InsertProfile(context.Context, *ProfileRequest) (*ProfileResponse, error)
	UpsertProfile(context.Context, *ProfileRequest) (*ProfileResponse, error)
	PresignAvatarUpload(context.Context, *PresignAvatarRequest) (*PresignAvatarResponse, error)
	SetAvatar(context.Context, *SetAvatarRequest) (*ProfileResponse, error)
}

// UnimplementedIdentityServiceServer answers every method with
// codes.Unimplemented. Embed it to stay forward compatible.
type UnimplementedIdentityServiceServer struct{}

func unimplemented(m string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", m)
}

func (UnimplementedIdentityServiceServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, unimplemented(MethodPing)
}
func (UnimplementedIdentityServiceServer) SignUp(context.Context, *Credentials) (*SignUpResponse, error) {
	return nil, unimplemented(MethodSignUp)
}
func (UnimplementedIdentityServiceServer) SignInWithPassword(context.Context, *Credentials) (*SessionResponse, error) {
	return nil, unimplemented(MethodSignInWithPassword)
}
func (UnimplementedIdentityServiceServer) RefreshSession(context.Context, *RefreshSessionRequest) (*SessionResponse, error) {
	return nil, unimplemented(MethodRefreshSession)
}
func (UnimplementedIdentityServiceServer) GetUser(context.Context, *Empty) (*GetUserResponse, error) {
	return nil, unimplemented(MethodGetUser)
}
func (UnimplementedIdentityServiceServer) SignOut(context.Context, *SignOutRequest) (*Empty, error) {
	return nil, unimplemented(MethodSignOut)
}
func (UnimplementedIdentityServiceServer) ResetPasswordForEmail(context.Context, *ResetPasswordRequest) (*Empty, error) {
	return nil, unimplemented(MethodResetPasswordForEmail)
}
func (UnimplementedIdentityServiceServer) UpdateUser(context.Context, *UpdateUserRequest) (*GetUserResponse, error) {
	return nil, unimplemented(MethodUpdateUser)
}
func (UnimplementedIdentityServiceServer) SignInWithOAuth(context.Context, *OAuthRequest) (*OAuthResponse, error) {
	return nil, unimplemented(MethodSignInWithOAuth)
}
func (UnimplementedIdentityServiceServer) GetProfile(context.Context, *GetProfileRequest) (*ProfileResponse, error) {
	return nil, unimplemented(MethodGetProfile)
}
func (UnimplementedIdentityServiceServer) InsertProfile(context.Context, *ProfileRequest) (*ProfileResponse, error) {
	return nil, unimplemented(MethodInsertProfile)
}
func (UnimplementedIdentityServiceServer) UpsertProfile(context.Context, *ProfileRequest) (*ProfileResponse, error) {
	return nil, unimplemented(MethodUpsertProfile)
}
func (UnimplementedIdentityServiceServer) PresignAvatarUpload(context.Context, *PresignAvatarRequest) (*PresignAvatarResponse, error) {
	return nil, unimplemented(MethodPresignAvatarUpload)
}
func (UnimplementedIdentityServiceServer) SetAvatar(context.Context, *SetAvatarRequest) (*ProfileResponse, error) {
	return nil, unimplemented(MethodSetAvatar)
}

// unary adapts a typed server method to a grpc.MethodDesc.
func unary[Req, Resp any](name string, call func(IdentityServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(IdentityServiceServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes IdentityService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*IdentityServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodPing, IdentityServiceServer.Ping),
		unary(MethodSignUp, IdentityServiceServer.SignUp),
		unary(MethodSignInWithPassword, IdentityServiceServer.SignInWithPassword),
		unary(MethodRefreshSession, IdentityServiceServer.RefreshSession),
		unary(MethodGetUser, IdentityServiceServer.GetUser),
		unary(MethodSignOut, IdentityServiceServer.SignOut),
		unary(MethodResetPasswordForEmail, IdentityServiceServer.ResetPasswordForEmail),
		unary(MethodUpdateUser, IdentityServiceServer.UpdateUser),
		unary(MethodSignInWithOAuth, IdentityServiceServer.SignInWithOAuth),
		unary(MethodGetProfile, IdentityServiceServer.GetProfile),
		unary(MethodInsertProfile, IdentityServiceServer.InsertProfile),
		unary(MethodUpsertProfile, IdentityServiceServer.UpsertProfile),
		unary(MethodPresignAvatarUpload, IdentityServiceServer.PresignAvatarUpload),
		unary(MethodSetAvatar, IdentityServiceServer.SetAvatar),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "noxus/identity.json",
}

func RegisterIdentityServiceServer(s grpc.ServiceRegistrar, srv IdentityServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}
