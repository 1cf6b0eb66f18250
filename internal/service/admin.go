package service

import (
	"context"

	"github.com/sardorbek/referral_bot/internal/models"
)

// SetRole assigns a role from the fixed set. Unlike registration this never
// creates a member: a role can only be granted to someone who already joined.
func (s *Service) SetRole(ctx context.Context, id int64, role models.Role) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	updated, err := s.repo.UpdateMemberRole(ctx, id, role)
	if err != nil {
		return err
	}
	if !updated {
		return ErrMemberNotFound
	}
	s.logger.Infof("Role of member %d set to %s", id, role)
	return nil
}

func (s *Service) SetBlocked(ctx context.Context, id int64, blocked bool) error {
	updated, err := s.repo.UpdateMemberBlocked(ctx, id, blocked)
	if err != nil {
		return err
	}
	if !updated {
		return ErrMemberNotFound
	}
	return nil
}
