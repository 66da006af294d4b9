package service

import (
	"context"

	"github.com/samueljjenkins/servicehomie-sub001/internal/entities"
	"github.com/samueljjenkins/servicehomie-sub001/internal/repository"
	"github.com/samueljjenkins/servicehomie-sub001/internal/tenant"
)

type TenantService struct {
	Repo *repository.TenantRepository
}

func NewTenantService(repo *repository.TenantRepository) *TenantService {
	return &TenantService{Repo: repo}
}

// Resolve picks the tenant for a request and upserts its row so first access
// creates it. Without a repository (demo mode) resolution is purely
// in-memory.
func (s *TenantService) Resolve(ctx context.Context, queryParam, routeParam string) (*entities.TenantResponse, error) {
	res := tenant.Resolve(queryParam, routeParam)
	if s.Repo == nil {
		return &entities.TenantResponse{ID: res.ID, Name: res.ID, Source: res.Source}, nil
	}
	t, err := s.Repo.Upsert(ctx, res.ID, res.ID)
	if err != nil {
		return nil, err
	}
	return &entities.TenantResponse{
		ID:          t.CompanyID,
		Name:        t.Name,
		Description: t.Description,
		LogoURL:     t.LogoURL,
		Source:      res.Source,
	}, nil
}

func (s *TenantService) Update(ctx context.Context, tenantID string, req entities.UpdateTenantRequest) error {
	return s.Repo.Update(ctx, tenantID, req.Name, req.Description, req.LogoURL)
}

func (s *TenantService) ListServices(ctx context.Context, tenantID string) ([]entities.ServiceResponse, error) {
	services, err := s.Repo.ListServices(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]entities.ServiceResponse, 0, len(services))
	for _, svc := range services {
		out = append(out, entities.ServiceResponse{ID: svc.ID, Name: svc.Name, Price: svc.Price})
	}
	return out, nil
}
