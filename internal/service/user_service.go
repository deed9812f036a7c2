package service

import (
	"context"

	"skillswap/internal/models"
	"skillswap/internal/realtime"
	"skillswap/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepository
	bus      realtime.Bus
}

type UpdateProfileInput struct {
	UserID       uint
	Username     string
	DisplayName  string
	Bio          string
	PhotoURL     string
	SkillsOffer  string
	SkillsWanted string
}

func NewUserService(userRepo repository.UserRepository, bus realtime.Bus) *UserService {
	return &UserService{userRepo: userRepo, bus: bus}
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) SearchBySkill(ctx context.Context, skill string, limit int) ([]models.User, error) {
	if skill == "" {
		return nil, models.NewValidationError("Skill to search for is required")
	}
	return s.userRepo.SearchBySkill(ctx, skill, limit)
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	const maxBioLen = 500
	const maxUsernameLen = 30
	const maxSkillsLen = 1000

	if in.Username != "" {
		if len(in.Username) > maxUsernameLen {
			return nil, models.NewValidationError("Username too long (max 30 characters)")
		}
		user.Username = in.Username
	}
	if in.DisplayName != "" {
		user.DisplayName = in.DisplayName
	}
	if in.Bio != "" {
		if len(in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = in.Bio
	}
	if in.PhotoURL != "" {
		user.PhotoURL = in.PhotoURL
	}
	if in.SkillsOffer != "" {
		if len(in.SkillsOffer) > maxSkillsLen {
			return nil, models.NewValidationError("Skills offered list too long")
		}
		user.SkillsOffer = in.SkillsOffer
	}
	if in.SkillsWanted != "" {
		if len(in.SkillsWanted) > maxSkillsLen {
			return nil, models.NewValidationError("Skills wanted list too long")
		}
		user.SkillsWanted = in.SkillsWanted
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	publishChange(ctx, s.bus, realtime.CollectionUsers)

	return user, nil
}

func (s *UserService) SetAdmin(ctx context.Context, targetID uint, isAdmin bool) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	user.IsAdmin = isAdmin
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}
