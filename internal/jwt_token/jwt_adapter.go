package jwttoken

import (
	"sftgate/pkg/platform/middleware/auth"
)

// Adapter exposes the token service through the auth middleware's
// validator contract.
type Adapter struct {
	service *Service
}

func NewAdapter(service *Service) *Adapter {
	return &Adapter{service: service}
}

func (a *Adapter) Validate(token string) (auth.Claims, error) {
	claims, err := a.service.ValidateToken(token)
	if err != nil {
		return auth.Claims{}, err
	}
	return auth.Claims{
		Subject: claims.Subject,
		Admin:   claims.HasRole(RoleAdmin),
		OrgUser: claims.HasRole(RoleOrgUser),
	}, nil
}
