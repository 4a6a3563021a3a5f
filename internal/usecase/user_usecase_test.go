package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trashlink/internal/domain/entity"
	"trashlink/pkg/cache"
	"trashlink/pkg/errors"
)

func newTestUserUseCase(t *testing.T, userRepo *mockUserRepo, verifications *mockVerificationRepo, authClient *mockAuthClient, sms *mockSmsSender) *UserUseCase {
	t.Helper()
	c := cache.NewWithOptions(100, 10*time.Minute)
	t.Cleanup(c.Stop)
	return NewUserUseCase(userRepo, verifications, authClient, sms, allowAllLimiter{}, c)
}

func TestUpdateProfileResetsPhoneVerification(t *testing.T) {
	userRepo := newMockUserRepo()
	userRepo.users["u1"] = &entity.User{
		ID:            "u1",
		Phone:         "+15550001111",
		PhoneVerified: true,
	}

	uc := newTestUserUseCase(t, userRepo, newMockVerificationRepo(), newMockAuthClient(), newMockSmsSender())

	user, err := uc.UpdateProfile(context.Background(), "u1", UpdateProfileInput{
		Phone: "+15550002222",
	})
	require.NoError(t, err)
	assert.Equal(t, "+15550002222", user.Phone)
	assert.False(t, user.PhoneVerified)
}

func TestUpdateProfileKeepsVerificationForSameNumber(t *testing.T) {
	userRepo := newMockUserRepo()
	userRepo.users["u2"] = &entity.User{
		ID:            "u2",
		Phone:         "+15550001111",
		PhoneVerified: true,
	}

	uc := newTestUserUseCase(t, userRepo, newMockVerificationRepo(), newMockAuthClient(), newMockSmsSender())

	user, err := uc.UpdateProfile(context.Background(), "u2", UpdateProfileInput{
		DisplayName: "New Name",
		Phone:       "+15550001111",
	})
	require.NoError(t, err)
	assert.True(t, user.PhoneVerified)
	assert.Equal(t, "New Name", user.DisplayName)
}

func TestSendPhoneCodeStoresSixDigitCode(t *testing.T) {
	userRepo := newMockUserRepo()
	userRepo.users["u3"] = &entity.User{ID: "u3"}
	verifications := newMockVerificationRepo()
	sms := newMockSmsSender()

	uc := newTestUserUseCase(t, userRepo, verifications, newMockAuthClient(), sms)

	require.NoError(t, uc.SendPhoneCode(context.Background(), "u3", "+15550003333"))

	stored, err := verifications.GetByUserID(context.Background(), "u3")
	require.NoError(t, err)
	assert.Len(t, stored.Code, 6)
	assert.True(t, stored.ExpiresAt.After(time.Now()))

	require.Len(t, sms.sent, 1)
	assert.True(t, strings.HasPrefix(sms.sent[0], "+15550003333:"))
}

func TestSendPhoneCodeFailsWhenSmsDown(t *testing.T) {
	userRepo := newMockUserRepo()
	userRepo.users["u4"] = &entity.User{ID: "u4"}
	sms := newMockSmsSender()
	sms.fail = true

	uc := newTestUserUseCase(t, userRepo, newMockVerificationRepo(), newMockAuthClient(), sms)

	err := uc.SendPhoneCode(context.Background(), "u4", "+15550004444")
	require.Error(t, err)
	assert.True(t, errors.Is(err, "UPSTREAM_UNAVAILABLE"))
}

func TestVerifyPhoneCodeHappyPath(t *testing.T) {
	userRepo := newMockUserRepo()
	userRepo.users["u5"] = &entity.User{ID: "u5"}
	verifications := newMockVerificationRepo()
	authClient := newMockAuthClient()
	sms := newMockSmsSender()

	uc := newTestUserUseCase(t, userRepo, verifications, authClient, sms)

	require.NoError(t, uc.SendPhoneCode(context.Background(), "u5", "+15550005555"))
	code := sms.codes["+15550005555"]

	user, err := uc.VerifyPhoneCode(context.Background(), "u5", code)
	require.NoError(t, err)
	assert.True(t, user.PhoneVerified)
	assert.Equal(t, "+15550005555", user.Phone)

	// Code is single use.
	_, err = uc.VerifyPhoneCode(context.Background(), "u5", code)
	require.Error(t, err)
	assert.True(t, errors.Is(err, "NOT_FOUND"))

	// The verified number is mirrored onto the identity provider.
	assert.Equal(t, "+15550005555", authClient.phones["u5"])
}

func TestVerifyPhoneCodeRejectsWrongCode(t *testing.T) {
	userRepo := newMockUserRepo()
	userRepo.users["u6"] = &entity.User{ID: "u6"}
	verifications := newMockVerificationRepo()
	verifications.codes["u6"] = &entity.PhoneVerification{
		ID:        "u6",
		UserID:    "u6",
		Phone:     "+15550006666",
		Code:      "123456",
		ExpiresAt: time.Now().Add(time.Minute),
	}

	uc := newTestUserUseCase(t, userRepo, verifications, newMockAuthClient(), newMockSmsSender())

	_, err := uc.VerifyPhoneCode(context.Background(), "u6", "654321")
	require.Error(t, err)
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	user, err := userRepo.GetByID(context.Background(), "u6")
	require.NoError(t, err)
	assert.False(t, user.PhoneVerified)
}

func TestVerifyPhoneCodeRejectsExpired(t *testing.T) {
	userRepo := newMockUserRepo()
	userRepo.users["u7"] = &entity.User{ID: "u7"}
	verifications := newMockVerificationRepo()
	verifications.codes["u7"] = &entity.PhoneVerification{
		ID:        "u7",
		UserID:    "u7",
		Phone:     "+15550007777",
		Code:      "123456",
		ExpiresAt: time.Now().Add(-time.Minute),
	}

	uc := newTestUserUseCase(t, userRepo, verifications, newMockAuthClient(), newMockSmsSender())

	_, err := uc.VerifyPhoneCode(context.Background(), "u7", "123456")
	require.Error(t, err)
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	// The expired code was discarded.
	_, err = verifications.GetByUserID(context.Background(), "u7")
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestSendPhoneCodeRateLimited(t *testing.T) {
	userRepo := newMockUserRepo()
	userRepo.users["u8"] = &entity.User{ID: "u8"}

	uc := newTestUserUseCase(t, userRepo, newMockVerificationRepo(), newMockAuthClient(), newMockSmsSender())
	uc.rateLimiter = denyAllLimiter{}

	err := uc.SendPhoneCode(context.Background(), "u8", "+15550008888")
	require.Error(t, err)
	assert.True(t, errors.Is(err, "TOO_MANY_REQUESTS"))
}
