package staffing

import (
	"context"

	"github.com/carehome-dev/care-shift/backend/internal/domain"
	"github.com/carehome-dev/care-shift/backend/internal/repository"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type CreateWorkerInput struct {
	FullName string
	Email    string
	Role     domain.Role
}

func validRole(role domain.Role) error {
	if !lo.Contains(domain.Roles, role) {
		return domain.BadRequest("unknown role %s", role)
	}
	return nil
}

func (s *Service) CreateWorker(ctx context.Context, installationID uuid.UUID, in CreateWorkerInput) (*domain.Worker, error) {
	if err := validRole(in.Role); err != nil {
		return nil, err
	}

	worker := &domain.Worker{
		ID:             uuid.New(),
		InstallationID: installationID,
		FullName:       in.FullName,
		Email:          in.Email,
		Role:           in.Role,
		IsActive:       true,
	}
	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		return q.CreateWorker(ctx, worker)
	})
	if err != nil {
		return nil, StoreError(err)
	}
	return worker, nil
}

func (s *Service) GetWorker(ctx context.Context, installationID, workerID uuid.UUID) (*domain.Worker, error) {
	var worker *domain.Worker
	err := s.store.View(ctx, func(q repository.Queries) error {
		var err error
		worker, err = q.GetWorker(ctx, installationID, workerID)
		return notFound(err, "worker %s not found", workerID)
	})
	if err != nil {
		return nil, StoreError(err)
	}
	return worker, nil
}

func (s *Service) ListWorkers(ctx context.Context, installationID uuid.UUID) ([]*domain.Worker, error) {
	var workers []*domain.Worker
	err := s.store.View(ctx, func(q repository.Queries) error {
		var err error
		workers, err = q.ListWorkers(ctx, installationID)
		return err
	})
	if err != nil {
		return nil, StoreError(err)
	}
	return workers, nil
}

type UpdateWorkerInput struct {
	FullName *string
	Email    *string
	Role     *domain.Role
	IsActive *bool
}

// UpdateWorker changes the directory record. Existing shift memberships are
// left as they are.
func (s *Service) UpdateWorker(ctx context.Context, installationID, workerID uuid.UUID, in UpdateWorkerInput) (*domain.Worker, error) {
	if in.Role != nil {
		if err := validRole(*in.Role); err != nil {
			return nil, err
		}
	}

	var worker *domain.Worker
	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		var err error
		worker, err = q.GetWorker(ctx, installationID, workerID)
		if err != nil {
			return notFound(err, "worker %s not found", workerID)
		}

		if in.FullName != nil {
			worker.FullName = *in.FullName
		}
		if in.Email != nil {
			worker.Email = *in.Email
		}
		if in.Role != nil {
			worker.Role = *in.Role
		}
		if in.IsActive != nil {
			worker.IsActive = *in.IsActive
		}
		return q.UpdateWorker(ctx, worker)
	})
	if err != nil {
		return nil, StoreError(err)
	}
	return worker, nil
}
