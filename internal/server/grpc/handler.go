package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/noxus/internal/api"
	"github.com/dmitrijs2005/noxus/internal/server/models"
	"github.com/dmitrijs2005/noxus/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var errMissingToken = status.Error(codes.Unauthenticated, "missing token")

func sessionToAPI(sess *services.Session, now time.Time) api.Session {
	return api.Session{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int64(sess.ExpiresAt.Sub(now).Seconds()),
		ExpiresAt:    api.Timestamp(sess.ExpiresAt),
		User:         api.User{ID: sess.User.ID, Email: sess.User.Email},
		Recovery:     sess.Recovery,
	}
}

func profileToAPI(p *models.Profile) api.Profile {
	return api.Profile{
		ID:           p.ID,
		StartDate:    api.Timestamp(p.StartDate),
		CurrentLevel: p.CurrentLevel,
		HasOnboarded: p.HasOnboarded,
		AvatarURL:    p.AvatarURL,
		Email:        p.Email,
		UpdatedAt:    api.Timestamp(p.UpdatedAt),
	}
}

func profileFromAPI(p api.Profile) *models.Profile {
	return &models.Profile{
		ID:           p.ID,
		StartDate:    api.Time(p.StartDate),
		CurrentLevel: p.CurrentLevel,
		HasOnboarded: p.HasOnboarded,
		AvatarURL:    p.AvatarURL,
		Email:        p.Email,
	}
}

func (s *GRPCServer) Ping(ctx context.Context, req *api.PingRequest) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) SignUp(ctx context.Context, req *api.Credentials) (*api.SignUpResponse, error) {
	user, err := s.users.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Registered", "user_id", user.ID)
	return &api.SignUpResponse{User: api.User{ID: user.ID, Email: user.Email}}, nil
}

func (s *GRPCServer) SignInWithPassword(ctx context.Context, req *api.Credentials) (*api.SessionResponse, error) {
	sess, err := s.users.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.SessionResponse{Session: sessionToAPI(sess, time.Now())}, nil
}

func (s *GRPCServer) RefreshSession(ctx context.Context, req *api.RefreshSessionRequest) (*api.SessionResponse, error) {
	sess, err := s.users.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.SessionResponse{Session: sessionToAPI(sess, time.Now())}, nil
}

func (s *GRPCServer) GetUser(ctx context.Context, req *api.Empty) (*api.GetUserResponse, error) {
	claims := claimsFromContext(ctx)
	if claims == nil {
		return nil, errMissingToken
	}

	user, err := s.users.GetUser(ctx, claims.UserID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	resp := &api.GetUserResponse{
		User:     api.User{ID: user.ID, Email: user.Email},
		Recovery: claims.Recovery,
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = api.Timestamp(claims.ExpiresAt.Time)
	}
	return resp, nil
}

func (s *GRPCServer) SignOut(ctx context.Context, req *api.SignOutRequest) (*api.Empty, error) {
	if err := s.users.SignOut(ctx, req.RefreshToken); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) ResetPasswordForEmail(ctx context.Context, req *api.ResetPasswordRequest) (*api.Empty, error) {
	if err := s.users.ResetPassword(ctx, req.Email, req.RedirectTo); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) UpdateUser(ctx context.Context, req *api.UpdateUserRequest) (*api.GetUserResponse, error) {
	claims := claimsFromContext(ctx)
	if claims == nil {
		return nil, errMissingToken
	}

	if err := s.users.UpdatePassword(ctx, claims.UserID, req.Password); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Password updated", "user_id", claims.UserID, "recovery", claims.Recovery)
	return &api.GetUserResponse{User: api.User{ID: claims.UserID, Email: claims.Email}}, nil
}

func (s *GRPCServer) SignInWithOAuth(ctx context.Context, req *api.OAuthRequest) (*api.OAuthResponse, error) {
	url, err := s.oauth.AuthURL(ctx, req.Provider, req.RedirectTo)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.OAuthResponse{URL: url}, nil
}

func (s *GRPCServer) GetProfile(ctx context.Context, req *api.GetProfileRequest) (*api.ProfileResponse, error) {
	p, err := s.profiles.Get(ctx, userIDFromContext(ctx), req.ID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.ProfileResponse{Profile: profileToAPI(p)}, nil
}

func (s *GRPCServer) InsertProfile(ctx context.Context, req *api.ProfileRequest) (*api.ProfileResponse, error) {
	p, err := s.profiles.Insert(ctx, userIDFromContext(ctx), profileFromAPI(req.Profile))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.ProfileResponse{Profile: profileToAPI(p)}, nil
}

func (s *GRPCServer) UpsertProfile(ctx context.Context, req *api.ProfileRequest) (*api.ProfileResponse, error) {
	p, err := s.profiles.Upsert(ctx, userIDFromContext(ctx), profileFromAPI(req.Profile))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.ProfileResponse{Profile: profileToAPI(p)}, nil
}

func (s *GRPCServer) PresignAvatarUpload(ctx context.Context, req *api.PresignAvatarRequest) (*api.PresignAvatarResponse, error) {
	key, url, err := s.avatars.PresignUpload(ctx, userIDFromContext(ctx), req.Ext)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.PresignAvatarResponse{Key: key, URL: url}, nil
}

func (s *GRPCServer) SetAvatar(ctx context.Context, req *api.SetAvatarRequest) (*api.ProfileResponse, error) {
	p, err := s.avatars.SetAvatar(ctx, userIDFromContext(ctx), req.Key)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.ProfileResponse{Profile: profileToAPI(p)}, nil
}
