package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MHammad33/error-tracker/internal/model"
)

// --- フェイク ---

type fakeOAuthProvider struct {
	loginURL string
	userInfo *OAuthUserInfo
	err      error
}

func (f *fakeOAuthProvider) GetLoginURL(state string) string {
	return f.loginURL + "?state=" + state
}

func (f *fakeOAuthProvider) ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.userInfo, nil
}

type fakeUserRepo struct {
	users          map[string]*model.User
	createdUser    *model.User
	createdID      *model.Identity
	updatedProfile *struct{ id, name, image string }
	updateErr      error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return f.users[id], nil
}

func (f *fakeUserRepo) List(ctx context.Context) ([]*model.User, error) {
	var all []*model.User
	for _, u := range f.users {
		all = append(all, u)
	}
	return all, nil
}

func (f *fakeUserRepo) CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error {
	f.users[user.ID] = user
	f.createdUser = user
	f.createdID = identity
	return nil
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, id, name, image string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updatedProfile = &struct{ id, name, image string }{id, name, image}
	return nil
}

type fakeIdentityRepo struct {
	identity *model.Identity
}

func (f *fakeIdentityRepo) FindByProviderAndProviderUserID(ctx context.Context, provider, providerUserID string) (*model.Identity, error) {
	if f.identity != nil && f.identity.Provider == provider && f.identity.ProviderUserID == providerUserID {
		return f.identity, nil
	}
	return nil, nil
}

type fakeSessionRepo struct {
	sessions map[string]*model.Session
	deleted  []string
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*model.Session)}
}

func (f *fakeSessionRepo) Create(ctx context.Context, session *model.Session) error {
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	return f.sessions[id], nil
}

func (f *fakeSessionRepo) DeleteByID(ctx context.Context, id string) error {
	delete(f.sessions, id)
	f.deleted = append(f.deleted, id)
	return nil
}

// --- テスト ---

func TestHandleCallback_NewUser_CreatesUserWithImage(t *testing.T) {
	userRepo := newFakeUserRepo()
	sessionRepo := newFakeSessionRepo()
	svc := NewService(
		&fakeOAuthProvider{userInfo: &OAuthUserInfo{
			ProviderUserID: "google-123",
			Email:          "taro@example.com",
			Name:           "Taro",
			Picture:        "https://lh3.googleusercontent.com/a/photo.jpg",
			Provider:       "google",
		}},
		userRepo,
		&fakeIdentityRepo{},
		sessionRepo,
		ServiceConfig{SessionMaxAge: 3600},
	)

	session, err := svc.HandleCallback(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("HandleCallback() error = %v", err)
	}

	if userRepo.createdUser == nil {
		t.Fatal("user should have been created")
	}
	if userRepo.createdUser.Email != "taro@example.com" {
		t.Errorf("Email = %q, want taro@example.com", userRepo.createdUser.Email)
	}
	if userRepo.createdUser.Image != "https://lh3.googleusercontent.com/a/photo.jpg" {
		t.Errorf("Image = %q, want Google picture URL", userRepo.createdUser.Image)
	}
	if userRepo.createdID == nil || userRepo.createdID.ProviderUserID != "google-123" {
		t.Errorf("identity = %+v, want provider_user_id google-123", userRepo.createdID)
	}
	if session.UserID != userRepo.createdUser.ID {
		t.Errorf("session.UserID = %q, want %q", session.UserID, userRepo.createdUser.ID)
	}
	if !session.ExpiresAt.After(time.Now()) {
		t.Error("session should expire in the future")
	}
}

func TestHandleCallback_ExistingUser_NoNewRecord(t *testing.T) {
	userRepo := newFakeUserRepo()
	userRepo.users["user-1"] = &model.User{ID: "user-1", Email: "taro@example.com"}
	svc := NewService(
		&fakeOAuthProvider{userInfo: &OAuthUserInfo{
			ProviderUserID: "google-123",
			Provider:       "google",
		}},
		userRepo,
		&fakeIdentityRepo{identity: &model.Identity{
			ID: "ident-1", UserID: "user-1",
			Provider: "google", ProviderUserID: "google-123",
		}},
		newFakeSessionRepo(),
		ServiceConfig{SessionMaxAge: 3600},
	)

	session, err := svc.HandleCallback(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("HandleCallback() error = %v", err)
	}

	if userRepo.createdUser != nil {
		t.Errorf("no user should be created, got %+v", userRepo.createdUser)
	}
	if session.UserID != "user-1" {
		t.Errorf("session.UserID = %q, want user-1", session.UserID)
	}
}

// 既存ユーザーのログイン時はIdPの最新プロフィールを反映する。
func TestHandleCallback_ExistingUser_RefreshesProfile(t *testing.T) {
	userRepo := newFakeUserRepo()
	userRepo.users["user-1"] = &model.User{ID: "user-1", Name: "Taro", Image: "old.jpg"}
	svc := NewService(
		&fakeOAuthProvider{userInfo: &OAuthUserInfo{
			ProviderUserID: "google-123",
			Name:           "Taro Yamada",
			Picture:        "https://lh3.googleusercontent.com/a/new.jpg",
			Provider:       "google",
		}},
		userRepo,
		&fakeIdentityRepo{identity: &model.Identity{
			ID: "ident-1", UserID: "user-1",
			Provider: "google", ProviderUserID: "google-123",
		}},
		newFakeSessionRepo(),
		ServiceConfig{SessionMaxAge: 3600},
	)

	if _, err := svc.HandleCallback(context.Background(), "auth-code"); err != nil {
		t.Fatalf("HandleCallback() error = %v", err)
	}

	if userRepo.updatedProfile == nil {
		t.Fatal("profile should have been refreshed")
	}
	if userRepo.updatedProfile.name != "Taro Yamada" {
		t.Errorf("name = %q, want Taro Yamada", userRepo.updatedProfile.name)
	}
	if userRepo.updatedProfile.image != "https://lh3.googleusercontent.com/a/new.jpg" {
		t.Errorf("image = %q, want new picture URL", userRepo.updatedProfile.image)
	}
}

// プロフィール更新の失敗はログイン自体を妨げない。
func TestHandleCallback_ProfileRefreshFailure_StillLogsIn(t *testing.T) {
	userRepo := newFakeUserRepo()
	userRepo.users["user-1"] = &model.User{ID: "user-1"}
	userRepo.updateErr = errors.New("db down")
	svc := NewService(
		&fakeOAuthProvider{userInfo: &OAuthUserInfo{
			ProviderUserID: "google-123",
			Name:           "Taro",
			Provider:       "google",
		}},
		userRepo,
		&fakeIdentityRepo{identity: &model.Identity{
			ID: "ident-1", UserID: "user-1",
			Provider: "google", ProviderUserID: "google-123",
		}},
		newFakeSessionRepo(),
		ServiceConfig{SessionMaxAge: 3600},
	)

	session, err := svc.HandleCallback(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("HandleCallback() error = %v", err)
	}
	if session.UserID != "user-1" {
		t.Errorf("session.UserID = %q, want user-1", session.UserID)
	}
}

func TestHandleCallback_ExchangeFailure(t *testing.T) {
	svc := NewService(
		&fakeOAuthProvider{err: errors.New("invalid code")},
		newFakeUserRepo(),
		&fakeIdentityRepo{},
		newFakeSessionRepo(),
		ServiceConfig{SessionMaxAge: 3600},
	)

	_, err := svc.HandleCallback(context.Background(), "bad-code")
	if err == nil {
		t.Fatal("HandleCallback() error = nil, want exchange failure")
	}
}

func TestLogout(t *testing.T) {
	sessionRepo := newFakeSessionRepo()
	sessionRepo.sessions["sess-1"] = &model.Session{ID: "sess-1", UserID: "user-1"}
	svc := NewService(&fakeOAuthProvider{}, newFakeUserRepo(), &fakeIdentityRepo{}, sessionRepo, ServiceConfig{})

	if err := svc.Logout(context.Background(), "sess-1"); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if len(sessionRepo.deleted) != 1 || sessionRepo.deleted[0] != "sess-1" {
		t.Errorf("deleted = %v, want [sess-1]", sessionRepo.deleted)
	}
}

func TestLogout_EmptySessionID(t *testing.T) {
	svc := NewService(&fakeOAuthProvider{}, newFakeUserRepo(), &fakeIdentityRepo{}, newFakeSessionRepo(), ServiceConfig{})

	if err := svc.Logout(context.Background(), ""); err == nil {
		t.Error("Logout() error = nil, want error for empty session ID")
	}
}

func TestGetCurrentUser(t *testing.T) {
	userRepo := newFakeUserRepo()
	userRepo.users["user-1"] = &model.User{ID: "user-1", Name: "Taro"}
	sessionRepo := newFakeSessionRepo()
	sessionRepo.sessions["sess-1"] = &model.Session{ID: "sess-1", UserID: "user-1"}
	svc := NewService(&fakeOAuthProvider{}, userRepo, &fakeIdentityRepo{}, sessionRepo, ServiceConfig{})

	user, err := svc.GetCurrentUser(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("GetCurrentUser() error = %v", err)
	}
	if user.Name != "Taro" {
		t.Errorf("Name = %q, want Taro", user.Name)
	}
}

func TestGetCurrentUser_SessionNotFound(t *testing.T) {
	svc := NewService(&fakeOAuthProvider{}, newFakeUserRepo(), &fakeIdentityRepo{}, newFakeSessionRepo(), ServiceConfig{})

	if _, err := svc.GetCurrentUser(context.Background(), "missing"); err == nil {
		t.Error("GetCurrentUser() error = nil, want session not found")
	}
}

func TestGenerateSessionID_UniqueAndLong(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := generateSessionID()
		if err != nil {
			t.Fatalf("generateSessionID() error = %v", err)
		}
		if len(id) != 64 {
			t.Fatalf("len(id) = %d, want 64 hex chars", len(id))
		}
		if seen[id] {
			t.Fatal("generateSessionID() returned a duplicate")
		}
		seen[id] = true
	}
}
