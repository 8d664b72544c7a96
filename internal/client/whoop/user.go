package whoop

import (
	"context"
	"net/http"
)

type UserProfile struct {
	UserID    int64  `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type userService struct {
	client *Client
}

func (s *userService) GetProfile(ctx context.Context) (*UserProfile, error) {
	const route = "/v2/user/profile/basic"

	var profile UserProfile
	if err := s.client.do(ctx, http.MethodGet, route, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
