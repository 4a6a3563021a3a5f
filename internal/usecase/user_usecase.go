package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"trashlink/internal/domain/entity"
	"trashlink/internal/domain/repository"
	"trashlink/pkg/cache"
	"trashlink/pkg/errors"
	"trashlink/pkg/logger"
)

const verificationCodeTTL = 10 * time.Minute

type UserUseCase struct {
	userRepo         repository.UserRepository
	verificationRepo repository.VerificationRepository
	authClient       AuthClient
	smsSender        SmsSender
	rateLimiter      RateLimiter
	cache            *cache.Cache
}

func NewUserUseCase(
	userRepo repository.UserRepository,
	verificationRepo repository.VerificationRepository,
	authClient AuthClient,
	smsSender SmsSender,
	rateLimiter RateLimiter,
	cache *cache.Cache,
) *UserUseCase {
	return &UserUseCase{
		userRepo:         userRepo,
		verificationRepo: verificationRepo,
		authClient:       authClient,
		smsSender:        smsSender,
		rateLimiter:      rateLimiter,
		cache:            cache,
	}
}

type UpdateProfileInput struct {
	DisplayName string          `json:"displayName"`
	Phone       string          `json:"phone" validate:"omitempty,e164"`
	Address     *entity.Address `json:"address,omitempty"`
}

func (uc *UserUseCase) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*entity.User, error) {
	if userID == "" {
		return nil, errors.Unauthorized("Not authenticated", nil)
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.DisplayName != "" {
		user.DisplayName = input.DisplayName
	}
	if input.Phone != "" && input.Phone != user.Phone {
		user.Phone = input.Phone
		// A new number has to be verified again.
		user.PhoneVerified = false
	}
	if input.Address != nil {
		user.Address = input.Address
	}

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	uc.cache.InvalidateMatching(userID)
	return user, nil
}

// SendPhoneCode generates a one-time code, stores it with its expiry, and
// hands delivery to the SMS function. A re-send replaces the previous code.
func (uc *UserUseCase) SendPhoneCode(ctx context.Context, userID, phone string) error {
	if userID == "" {
		return errors.Unauthorized("Not authenticated", nil)
	}
	if phone == "" {
		return errors.BadRequest("Phone number is required", nil)
	}

	if allowed, wait := uc.rateLimiter.Allow(userID, "send_code"); !allowed {
		return errors.TooManyRequests("Too many verification codes requested", wait)
	}

	code, err := generateVerificationCode()
	if err != nil {
		return errors.Internal("Failed to generate verification code", err)
	}

	verification := &entity.PhoneVerification{
		UserID:    userID,
		Phone:     phone,
		Code:      code,
		ExpiresAt: time.Now().Add(verificationCodeTTL),
	}
	if err := uc.verificationRepo.Save(ctx, verification); err != nil {
		return err
	}

	if err := uc.smsSender.SendCode(ctx, phone, code); err != nil {
		return errors.Unavailable("Failed to deliver verification code", err)
	}

	return nil
}

// VerifyPhoneCode checks the submitted code, marks the phone verified, and
// mirrors the number onto the identity provider.
func (uc *UserUseCase) VerifyPhoneCode(ctx context.Context, userID, code string) (*entity.User, error) {
	if userID == "" {
		return nil, errors.Unauthorized("Not authenticated", nil)
	}

	verification, err := uc.verificationRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if verification.Expired(time.Now()) {
		_ = uc.verificationRepo.Delete(ctx, verification.ID)
		return nil, errors.BadRequest("Verification code expired, request a new one", nil)
	}
	if verification.Code != code {
		return nil, errors.BadRequest("Verification code does not match", nil)
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Phone = verification.Phone
	user.PhoneVerified = true
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if err := uc.verificationRepo.Delete(ctx, verification.ID); err != nil {
		logger.Warn("Failed to delete used verification code for %s: %v", userID, err)
	}

	if err := uc.authClient.UpdateUserPhone(ctx, userID, verification.Phone); err != nil {
		logger.Warn("Failed to mirror verified phone for %s: %v", userID, err)
	}

	uc.cache.InvalidateMatching(userID)
	return user, nil
}

func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
