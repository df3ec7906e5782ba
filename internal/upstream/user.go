package upstream

import (
	"context"
	"net/http"
	"time"

	"github.com/Cheertaboi/shop-microservices/internal/models"
)

// UserClient talks to the user service.
type UserClient struct {
	c client
}

func NewUserClient(baseURL string, timeout time.Duration) *UserClient {
	return &UserClient{c: newClient(baseURL, timeout)}
}

// Profile returns the profile of the credential's owner.
func (u *UserClient) Profile(ctx context.Context, credential string) (*models.User, error) {
	var out models.User
	if _, err := u.c.do(ctx, http.MethodGet, "/api/users/me", credential, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
