package services

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/anjerodev/dotenv/internal/domain/entities"
	"github.com/anjerodev/dotenv/internal/domain/repositories"
	apperrors "github.com/anjerodev/dotenv/pkg/errors"
	"github.com/anjerodev/dotenv/pkg/logger"
)

type MemberService struct {
	memberRepo  repositories.MemberRepository
	profileRepo repositories.ProfileRepository
	cache       CacheService
	storage     AvatarStorage
}

func NewMemberService(
	memberRepo repositories.MemberRepository,
	profileRepo repositories.ProfileRepository,
	cache CacheService,
	storage AvatarStorage,
) *MemberService {
	return &MemberService{
		memberRepo:  memberRepo,
		profileRepo: profileRepo,
		cache:       cache,
		storage:     storage,
	}
}

// Search finds candidate members by username or email, excluding the
// searching user.
func (s *MemberService) Search(ctx context.Context, userID, username, email string) ([]entities.Member, error) {
	profiles, err := s.profileRepo.Search(ctx, userID, username, email, entities.TeamPreviewSize)
	if err != nil {
		return nil, apperrors.NewInternalError("Error finding users")
	}

	members := make([]entities.Member, 0, len(profiles))
	for _, profile := range profiles {
		members = append(members, entities.Member{
			ID:        profile.ID,
			Username:  profile.Username,
			AvatarURL: profile.AvatarKey,
		})
	}
	resolveAvatars(s.storage, members)

	return members, nil
}

// Reconcile applies the team dialog's pending edit list on behalf of
// userID, who must hold an owner or editor grant on the document. The
// list is partitioned by action into insert/update/remove buckets, the
// buckets run as independent bulk operations, and the union of their
// errors is a single failure with no rollback of the buckets that
// succeeded.
func (s *MemberService) Reconcile(ctx context.Context, projectID, documentID, userID string, pending []entities.PendingMember) (*entities.ReconcileResult, error) {
	role, err := s.memberRepo.RoleForUser(ctx, documentID, userID)
	if err != nil {
		return nil, apperrors.NewInternalError("Error updating team")
	}
	if !role.CanEdit() {
		return nil, apperrors.NewForbiddenError("access denied")
	}

	var (
		creates []entities.PendingMember
		updates []entities.RoleChange
		removes []string
	)

	for _, member := range pending {
		switch member.Action {
		case entities.ActionCreate:
			if member.Role == entities.RoleOwner || !member.Role.Valid() {
				return nil, apperrors.NewBadRequestError("invalid member role")
			}
			creates = append(creates, member)
		case entities.ActionUpdate:
			if member.Ref == "" {
				return nil, apperrors.NewBadRequestError("member reference is required")
			}
			if member.Role == entities.RoleOwner || !member.Role.Valid() {
				return nil, apperrors.NewBadRequestError("invalid member role")
			}
			updates = append(updates, entities.RoleChange{Ref: member.Ref, Role: member.Role})
		case entities.ActionRemove:
			// A member added and removed in the same editing session was
			// never persisted and needs no round trip.
			if member.Ref == "" {
				continue
			}
			removes = append(removes, member.Ref)
		}
	}

	result := &entities.ReconcileResult{
		Insert: []entities.Member{},
		Update: []entities.RoleChange{},
		Remove: []string{},
	}

	if len(creates) == 0 && len(updates) == 0 && len(removes) == 0 {
		return result, nil
	}

	var (
		wg        sync.WaitGroup
		inserted  []entities.Member
		insertErr error
		updateErr error
		removeErr error
	)

	if len(creates) > 0 {
		grants := make([]entities.Grant, 0, len(creates))
		for _, member := range creates {
			grants = append(grants, entities.Grant{
				DocumentID: documentID,
				ProjectID:  projectID,
				UserID:     member.ID,
				Role:       member.Role,
			})
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			inserted, insertErr = s.memberRepo.InsertBulk(ctx, grants)
		}()
	}

	if len(updates) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			updateErr = s.memberRepo.UpdateRoles(ctx, updates)
		}()
	}

	if len(removes) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			removeErr = s.memberRepo.DeleteByRefs(ctx, removes)
		}()
	}

	wg.Wait()

	if err := errors.Join(insertErr, updateErr, removeErr); err != nil {
		logger.Error("failed to update team",
			zap.String("document_id", documentID), zap.Error(err))
		return nil, apperrors.NewInternalError("Error updating team")
	}

	resolveAvatars(s.storage, inserted)

	result.Insert = append(result.Insert, inserted...)
	result.Update = append(result.Update, updates...)
	result.Remove = append(result.Remove, removes...)

	if err := s.cache.PatchDocumentTeam(ctx, projectID, documentID, *result); err != nil {
		logger.Warn("failed to patch team caches",
			zap.String("document_id", documentID), zap.Error(err))
	}

	return result, nil
}
