package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"trashlink/internal/domain/entity"
	"trashlink/internal/domain/repository"
	"trashlink/internal/infrastructure/firebase"
	"trashlink/pkg/cache"
	"trashlink/pkg/errors"
	"trashlink/pkg/logger"
)

const (
	// Budget for a single account-record read on the sign-in path. When the
	// store is slower than this the session degrades to provider claims
	// instead of blocking the user.
	profileReadTimeout = 2 * time.Second

	// A role hint only needs to survive the OAuth redirect round trip.
	roleHintTTL = 10 * time.Minute

	userCacheTTL = 5 * time.Minute
)

type AuthUseCase struct {
	userRepo            repository.UserRepository
	authClient          AuthClient
	cache               *cache.Cache
	stateSecret         []byte
	allowAutoRoleSwitch bool
}

func NewAuthUseCase(
	userRepo repository.UserRepository,
	authClient AuthClient,
	cache *cache.Cache,
	stateSecret string,
	allowAutoRoleSwitch bool,
) *AuthUseCase {
	return &AuthUseCase{
		userRepo:            userRepo,
		authClient:          authClient,
		cache:               cache,
		stateSecret:         []byte(stateSecret),
		allowAutoRoleSwitch: allowAutoRoleSwitch,
	}
}

type stateClaims struct {
	Role  string `json:"role"`
	Nonce string `json:"nonce"`
	jwt.RegisteredClaims
}

// BeginSignIn mints a signed state token carrying the role the user picked
// before being redirected to the identity provider. The role is also cached
// server-side under the token's nonce, so the hint survives even when the
// provider mangles the state parameter.
func (uc *AuthUseCase) BeginSignIn(requestedRole string) (string, error) {
	if requestedRole != "" && !entity.ValidRole(requestedRole) {
		return "", errors.BadRequest("Unknown role: "+requestedRole, nil)
	}

	nonce := uuid.New().String()
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, stateClaims{
		Role:  requestedRole,
		Nonce: nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(roleHintTTL)),
		},
	})

	signed, err := token.SignedString(uc.stateSecret)
	if err != nil {
		return "", errors.Internal("Failed to sign state token", err)
	}

	if requestedRole != "" {
		uc.cache.SetWithTTL("rolehint:"+nonce, requestedRole, roleHintTTL)
	}

	return signed, nil
}

// decodeState validates the state token and returns the role and nonce it
// carries. An invalid or expired token is treated as no hint, not an error:
// sign-in must still work when the state parameter is lost.
func (uc *AuthUseCase) decodeState(state string) (role, nonce string) {
	if state == "" {
		return "", ""
	}

	var claims stateClaims
	_, err := jwt.ParseWithClaims(state, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return uc.stateSecret, nil
	})
	if err != nil {
		logger.Debug("Ignoring invalid state token: %v", err)
		return "", ""
	}

	return claims.Role, claims.Nonce
}

// CompleteSignIn resolves the caller's account after the identity provider
// redirect. It verifies the ID token, resolves the effective role from every
// available source, and ensures an account record exists. When the record
// store is slow or down, a synthesized profile built from provider claims is
// returned so the session can proceed.
func (uc *AuthUseCase) CompleteSignIn(ctx context.Context, idToken, state string) (*entity.User, error) {
	if idToken == "" {
		return nil, errors.Unauthorized("Not authenticated", nil)
	}

	uid, err := uc.authClient.VerifyToken(ctx, idToken)
	if err != nil {
		return nil, errors.Unauthorized("Invalid or expired token", err)
	}

	identity, err := uc.authClient.GetIdentity(ctx, uid)
	if err != nil {
		return nil, errors.Unavailable("Failed to load identity", err)
	}

	stateRole, nonce := uc.decodeState(state)
	hintRole := uc.consumeRoleHint(nonce)

	existing, readErr := uc.readUserBounded(ctx, uid)
	if readErr != nil && !errors.Is(readErr, "NOT_FOUND") {
		// Degraded mode: the store did not answer in time. Serve provider
		// claims and let the next request retry the read.
		logger.Warn("Account read degraded for %s: %v", uid, readErr)
		return uc.synthesizeUser(identity, resolveRole(nil, identity, hintRole, stateRole, uc.allowAutoRoleSwitch)), nil
	}

	resolved := resolveRole(existing, identity, hintRole, stateRole, uc.allowAutoRoleSwitch)

	if existing == nil {
		return uc.EnsureUser(ctx, identity, resolved)
	}

	if existing.Role != resolved {
		if err := uc.userRepo.UpdateRole(ctx, uid, resolved); err != nil {
			return nil, err
		}
		existing.Role = resolved
		uc.cache.InvalidateMatching(uid)

		if err := uc.authClient.SetRoleClaim(ctx, uid, resolved); err != nil {
			logger.Warn("Failed to mirror role claim for %s: %v", uid, err)
		}
	}

	uc.cache.SetWithTTL("user:"+uid, existing, userCacheTTL)
	return existing, nil
}

// resolveRole folds the role sources in priority order. An existing record
// wins unless a fresher hint explicitly asks for a different role and
// automatic switching is enabled. For a brand-new identity the provider's own
// claim is most authoritative, then the cached hint, then the state token,
// and finally the customer default.
func resolveRole(existing *entity.User, identity *firebase.Identity, hintRole, stateRole string, allowSwitch bool) string {
	if existing != nil {
		requested := firstValidRole(hintRole, stateRole)
		if allowSwitch && requested != "" && requested != existing.Role {
			return requested
		}
		return existing.Role
	}

	if role := firstValidRole(identity.Role, hintRole, stateRole); role != "" {
		return role
	}
	return entity.RoleCustomer
}

func firstValidRole(candidates ...string) string {
	for _, role := range candidates {
		if entity.ValidRole(role) {
			return role
		}
	}
	return ""
}

func (uc *AuthUseCase) consumeRoleHint(nonce string) string {
	if nonce == "" {
		return ""
	}
	key := "rolehint:" + nonce
	if value, ok := uc.cache.Get(key); ok {
		uc.cache.Invalidate(key)
		if role, ok := value.(string); ok {
			return role
		}
	}
	return ""
}

// EnsureUser creates the account record for an identity if it does not exist
// yet. The create is idempotent: a concurrent ensure for the same identity is
// not an error.
func (uc *AuthUseCase) EnsureUser(ctx context.Context, identity *firebase.Identity, role string) (*entity.User, error) {
	if !entity.ValidRole(role) {
		role = entity.RoleCustomer
	}

	user := &entity.User{
		ID:            identity.UID,
		Email:         identity.Email,
		DisplayName:   displayNameFrom(identity),
		Role:          role,
		Phone:         identity.Phone,
		EmailVerified: identity.EmailVerified,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if identity.Role != role {
		if err := uc.authClient.SetRoleClaim(ctx, identity.UID, role); err != nil {
			logger.Warn("Failed to mirror role claim for %s: %v", identity.UID, err)
		}
	}

	uc.cache.SetWithTTL("user:"+identity.UID, user, userCacheTTL)
	return user, nil
}

// EnsureUserByID is the repair path for writes that fail because the account
// record is missing: re-fetch the identity and recreate the record.
func (uc *AuthUseCase) EnsureUserByID(ctx context.Context, uid string) (*entity.User, error) {
	identity, err := uc.authClient.GetIdentity(ctx, uid)
	if err != nil {
		return nil, errors.Unavailable("Failed to load identity", err)
	}
	return uc.EnsureUser(ctx, identity, firstValidRole(identity.Role))
}

// GetProfile returns the caller's account record, cache first. A read that
// exceeds its budget degrades to a synthesized profile instead of failing the
// whole page.
func (uc *AuthUseCase) GetProfile(ctx context.Context, uid string) (*entity.User, error) {
	if uid == "" {
		return nil, errors.Unauthorized("Not authenticated", nil)
	}

	if cached, ok := uc.cache.Get("user:" + uid); ok {
		if user, ok := cached.(*entity.User); ok {
			return user, nil
		}
	}

	user, err := uc.readUserBounded(ctx, uid)
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			return nil, errors.ProfileMissing("Your profile does not exist yet. Sign in again to recreate it.", err)
		}

		logger.Warn("Profile read degraded for %s: %v", uid, err)
		identity, idErr := uc.authClient.GetIdentity(ctx, uid)
		if idErr != nil {
			return nil, err
		}
		return uc.synthesizeUser(identity, firstValidRole(identity.Role)), nil
	}

	uc.cache.SetWithTTL("user:"+uid, user, userCacheTTL)
	return user, nil
}

// SwitchRole flips the caller between customer and collector and mirrors the
// change onto provider claims.
func (uc *AuthUseCase) SwitchRole(ctx context.Context, uid, newRole string) (*entity.User, error) {
	if uid == "" {
		return nil, errors.Unauthorized("Not authenticated", nil)
	}
	if !entity.ValidRole(newRole) {
		return nil, errors.BadRequest("Unknown role: "+newRole, nil)
	}

	user, err := uc.userRepo.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}

	if user.Role != newRole {
		if err := uc.userRepo.UpdateRole(ctx, uid, newRole); err != nil {
			return nil, err
		}
		user.Role = newRole

		if err := uc.authClient.SetRoleClaim(ctx, uid, newRole); err != nil {
			logger.Warn("Failed to mirror role claim for %s: %v", uid, err)
		}
	}

	uc.cache.InvalidateMatching(uid)
	uc.cache.SetWithTTL("user:"+uid, user, userCacheTTL)
	return user, nil
}

func (uc *AuthUseCase) readUserBounded(ctx context.Context, uid string) (*entity.User, error) {
	boundedCtx, cancel := context.WithTimeout(ctx, profileReadTimeout)
	defer cancel()

	return uc.userRepo.GetByID(boundedCtx, uid)
}

// synthesizeUser builds a stand-in profile from provider claims. It is never
// written back to the store and never cached.
func (uc *AuthUseCase) synthesizeUser(identity *firebase.Identity, role string) *entity.User {
	if !entity.ValidRole(role) {
		role = entity.RoleCustomer
	}
	return &entity.User{
		ID:            identity.UID,
		Email:         identity.Email,
		DisplayName:   displayNameFrom(identity),
		Role:          role,
		Phone:         identity.Phone,
		EmailVerified: identity.EmailVerified,
		Synthesized:   true,
	}
}

func displayNameFrom(identity *firebase.Identity) string {
	if identity.DisplayName != "" {
		return identity.DisplayName
	}
	if identity.GivenName != "" || identity.FamilyName != "" {
		return strings.TrimSpace(identity.GivenName + " " + identity.FamilyName)
	}
	if at := strings.Index(identity.Email, "@"); at > 0 {
		return identity.Email[:at]
	}
	return identity.Email
}
