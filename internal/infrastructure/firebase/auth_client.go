package firebase

import (
	"context"

	"firebase.google.com/go/v4/auth"
)

// Identity carries the identity-provider view of a signed-in user. Role comes
// from custom claims and may be empty for providers that never set one.
type Identity struct {
	UID           string
	Email         string
	DisplayName   string
	GivenName     string
	FamilyName    string
	Phone         string
	EmailVerified bool
	Role          string
	Provider      string
}

type FirebaseAuthClient struct {
	client *auth.Client
}

func NewFirebaseAuthClient(client *auth.Client) *FirebaseAuthClient {
	return &FirebaseAuthClient{
		client: client,
	}
}

func (f *FirebaseAuthClient) VerifyToken(ctx context.Context, token string) (string, error) {
	result, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", err
	}

	return result.UID, nil
}

// GetIdentity fetches the provider's user record and flattens the pieces the
// resolver cares about.
func (f *FirebaseAuthClient) GetIdentity(ctx context.Context, uid string) (*Identity, error) {
	record, err := f.client.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}

	identity := &Identity{
		UID:           record.UID,
		Email:         record.Email,
		DisplayName:   record.DisplayName,
		Phone:         record.PhoneNumber,
		EmailVerified: record.EmailVerified,
	}

	if len(record.ProviderUserInfo) > 0 {
		identity.Provider = record.ProviderUserInfo[0].ProviderID
	}

	if record.CustomClaims != nil {
		if role, ok := record.CustomClaims["role"].(string); ok {
			identity.Role = role
		}
		if given, ok := record.CustomClaims["given_name"].(string); ok {
			identity.GivenName = given
		}
		if family, ok := record.CustomClaims["family_name"].(string); ok {
			identity.FamilyName = family
		}
	}

	return identity, nil
}

// SetRoleClaim mirrors the stored role onto the provider's custom claims so a
// token refresh carries it.
func (f *FirebaseAuthClient) SetRoleClaim(ctx context.Context, uid, role string) error {
	return f.client.SetCustomUserClaims(ctx, uid, map[string]interface{}{"role": role})
}

func (f *FirebaseAuthClient) UpdateUserPhone(ctx context.Context, uid, phone string) error {
	params := (&auth.UserToUpdate{}).PhoneNumber(phone)

	_, err := f.client.UpdateUser(ctx, uid, params)
	return err
}
