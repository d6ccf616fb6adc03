package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yuimaru-ship/storefront/app/models"
	"github.com/yuimaru-ship/storefront/pkg/auth"
	"github.com/yuimaru-ship/storefront/pkg/logger"
	"github.com/yuimaru-ship/storefront/pkg/session"
)

// Session keys owned by AuthService.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyIDToken      = "id_token"
	KeyEmail        = "email"
	KeyName         = "name"
	KeySubject      = "sub"
	KeyStoreID      = "store_id"
	KeyAuthState    = "auth_state"
	KeyOAuthState   = "oauth_state"
	KeyStorePrompt  = "store_prompt"
)

var (
	ErrStoreIDRequired = errors.New("please enter a store ID")
	ErrNotSignedIn     = errors.New("sign in before linking a store")
)

// AuthService drives the sign-in state machine kept in the server session.
type AuthService struct {
	idp    *IdentityProvider
	linker *StoreLinker
	now    func() time.Time
}

func NewAuthService(idp *IdentityProvider, linker *StoreLinker) *AuthService {
	return &AuthService{idp: idp, linker: linker, now: time.Now}
}

// State reads the auth view of sess.
func (s *AuthService) State(sess *session.Session) models.SessionState {
	st := models.SessionState{State: models.AuthState(sess.GetString(KeyAuthState))}
	if st.State == "" {
		st.State = models.AuthUnauthenticated
	}
	if st.State.Authenticated() {
		st.User = &models.User{
			Email:   sess.GetString(KeyEmail),
			Name:    sess.GetString(KeyName),
			Subject: sess.GetString(KeySubject),
		}
		if st.State == models.AuthLinked {
			st.StoreID = sess.GetString(KeyStoreID)
		}
	}
	return st
}

// LoginURL starts a sign-in: a fresh state value is stored in sess and
// echoed by the provider on the callback.
func (s *AuthService) LoginURL(sess *session.Session) string {
	state := uuid.NewString()
	sess.Set(KeyOAuthState, state)
	return s.idp.LoginURL(state)
}

// VerifyState consumes the stored state value and reports whether it
// matches the one on the callback.
func (s *AuthService) VerifyState(sess *session.Session, state string) bool {
	want := sess.GetString(KeyOAuthState)
	sess.Delete(KeyOAuthState)
	return want != "" && want == state
}

// CheckSession resolves the session on page load. With a code it completes
// the sign-in; without one it revalidates persisted tokens. Failures of the
// token or user-info step sign the user out and are only logged.
func (s *AuthService) CheckSession(ctx context.Context, sess *session.Session, code string) models.SessionState {
	log := logger.WithCtx(ctx)
	sess.Set(KeyAuthState, string(models.AuthLoading))

	if code != "" {
		tokens, err := s.idp.Exchange(ctx, code)
		if err != nil {
			log.Error("token exchange failed", "error", err)
			s.signOut(sess)
			return s.State(sess)
		}
		s.persistTokens(sess, tokens)
	}

	token := sess.GetString(KeyAccessToken)
	if token == "" {
		sess.Set(KeyAuthState, string(models.AuthUnauthenticated))
		return s.State(sess)
	}

	user, err := s.FetchUserInfo(ctx, sess, token)
	if err != nil {
		log.Error("session check failed", "error", err)
		s.signOut(sess)
		return s.State(sess)
	}

	err = s.LinkStoreToUser(ctx, sess, user.Subject)
	switch {
	case err == nil:
	case errors.Is(err, ErrNeedsStoreID):
		if code != "" {
			sess.Set(KeyStorePrompt, true)
		}
	default:
		log.Error("error linking user to store", "error", err)
	}

	return s.State(sess)
}

func (s *AuthService) persistTokens(sess *session.Session, t models.Tokens) {
	sess.Set(KeyAccessToken, t.AccessToken)
	sess.Set(KeyRefreshToken, t.RefreshToken)
	sess.Set(KeyIDToken, t.IDToken)
	if d := auth.Remaining(t.IDToken, s.now()); d > 0 {
		sess.CapTTL(d)
	}
}

// FetchUserInfo loads the profile for accessToken and moves the session to
// authenticated-unlinked. Any previously linked store is dropped until the
// lookup confirms it again.
func (s *AuthService) FetchUserInfo(ctx context.Context, sess *session.Session, accessToken string) (*models.User, error) {
	user, err := s.idp.UserInfo(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	sess.Set(KeyEmail, user.Email)
	sess.Set(KeyName, user.Name)
	sess.Set(KeySubject, user.Subject)
	sess.Delete(KeyStoreID)
	sess.Set(KeyAuthState, string(models.AuthUnlinked))
	return user, nil
}

// LinkStoreToUser looks up the store linked to sub. On success the session
// becomes authenticated-linked; ErrNeedsStoreID and other errors leave it
// authenticated-unlinked.
func (s *AuthService) LinkStoreToUser(ctx context.Context, sess *session.Session, sub string) error {
	if sub == "" {
		return errors.New("sub not found in user profile")
	}

	storeID, err := s.linker.Lookup(ctx, sub)
	if err != nil {
		return err
	}
	if storeID != "" {
		s.markLinked(sess, storeID)
	}
	return nil
}

// SubmitStoreID links the signed-in user to a manually entered store.
// Failures leave the prompt open for another attempt.
func (s *AuthService) SubmitStoreID(ctx context.Context, sess *session.Session, storeID string) error {
	storeID = strings.TrimSpace(storeID)
	if storeID == "" {
		return ErrStoreIDRequired
	}

	st := s.State(sess)
	if !st.State.Authenticated() || st.User.Subject == "" {
		return ErrNotSignedIn
	}

	if err := s.linker.Link(ctx, st.User.Subject, storeID); err != nil {
		return err
	}
	s.markLinked(sess, storeID)
	return nil
}

func (s *AuthService) markLinked(sess *session.Session, storeID string) {
	sess.Set(KeyStoreID, storeID)
	sess.Set(KeyAuthState, string(models.AuthLinked))
	sess.Delete(KeyStorePrompt)
}

// NeedsStorePrompt reports whether the sign-in flow asked for a store ID.
func (s *AuthService) NeedsStorePrompt(sess *session.Session) bool {
	return sess.GetBool(KeyStorePrompt) && s.State(sess).State == models.AuthUnlinked
}

// CancelStorePrompt dismisses the prompt; the session stays unlinked.
func (s *AuthService) CancelStorePrompt(sess *session.Session) {
	sess.Delete(KeyStorePrompt)
}

// Logout clears the session and returns the provider's logout URL.
func (s *AuthService) Logout(sess *session.Session) string {
	s.signOut(sess)
	return s.idp.LogoutURL()
}

func (s *AuthService) signOut(sess *session.Session) {
	sess.Invalidate()
	sess.Set(KeyAuthState, string(models.AuthUnauthenticated))
}
