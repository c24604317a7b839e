package services

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anjerodev/dotenv/internal/domain/entities"
	"github.com/anjerodev/dotenv/internal/domain/repositories"
	"github.com/anjerodev/dotenv/internal/validations"
	apperrors "github.com/anjerodev/dotenv/pkg/errors"
	"github.com/anjerodev/dotenv/pkg/logger"
)

type ProjectService struct {
	projectRepo repositories.ProjectRepository
	docRepo     repositories.DocumentRepository
	memberRepo  repositories.MemberRepository
	profileRepo repositories.ProfileRepository
	cache       CacheService
	storage     AvatarStorage
}

func NewProjectService(
	projectRepo repositories.ProjectRepository,
	docRepo repositories.DocumentRepository,
	memberRepo repositories.MemberRepository,
	profileRepo repositories.ProfileRepository,
	cache CacheService,
	storage AvatarStorage,
) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		docRepo:     docRepo,
		memberRepo:  memberRepo,
		profileRepo: profileRepo,
		cache:       cache,
		storage:     storage,
	}
}

// List returns the user's own projects followed by the projects they
// were granted into, each with document summaries and a team preview.
func (s *ProjectService) List(ctx context.Context, userID string) ([]entities.ProjectView, error) {
	if views, err := s.cache.GetUserProjects(ctx, userID); err == nil {
		return views, nil
	}

	own, err := s.projectRepo.GetOwnedBy(ctx, userID)
	if err != nil {
		return nil, apperrors.NewInternalError("Error fetching the projects.")
	}

	grantedIDs, err := s.memberRepo.ProjectIDsForUser(ctx, userID)
	if err != nil {
		return nil, apperrors.NewInternalError("Error fetching the projects.")
	}

	ownIDs := make([]string, 0, len(own))
	for _, project := range own {
		ownIDs = append(ownIDs, project.ID)
	}

	var memberIDs []string
	for _, id := range grantedIDs {
		if !slices.Contains(ownIDs, id) {
			memberIDs = append(memberIDs, id)
		}
	}

	shared, err := s.projectRepo.GetByIDs(ctx, memberIDs)
	if err != nil {
		return nil, apperrors.NewInternalError("Error fetching the projects.")
	}

	projects := append(own, shared...)
	views := make([]entities.ProjectView, 0, len(projects))
	for _, project := range projects {
		view, err := s.buildView(ctx, project)
		if err != nil {
			logger.Warn("skipping project in listing",
				zap.String("project_id", project.ID), zap.Error(err))
			continue
		}
		views = append(views, view)
	}

	s.cache.SetUserProjects(ctx, userID, views)

	return views, nil
}

// Count reports how many projects the user can open, with their ids so
// the client can preload.
func (s *ProjectService) Count(ctx context.Context, userID string) (int, []string, error) {
	own, err := s.projectRepo.GetOwnedBy(ctx, userID)
	if err != nil {
		return 0, nil, apperrors.NewInternalError("Error counting the projects.")
	}

	granted, err := s.memberRepo.ProjectIDsForUser(ctx, userID)
	if err != nil {
		return 0, nil, apperrors.NewInternalError("Error counting the projects.")
	}

	ids := make([]string, 0, len(own)+len(granted))
	for _, project := range own {
		ids = append(ids, project.ID)
	}
	for _, id := range granted {
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}

	return len(ids), ids, nil
}

func (s *ProjectService) Get(ctx context.Context, projectID, userID string) (*entities.ProjectView, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, apperrors.NewNotFoundError("project not found")
	}

	if project.Owner != userID {
		granted, err := s.memberRepo.ProjectIDsForUser(ctx, userID)
		if err != nil || !slices.Contains(granted, projectID) {
			return nil, apperrors.NewForbiddenError("access denied")
		}
	}

	view, err := s.buildView(ctx, project)
	if err != nil {
		logger.Error("failed to build project view",
			zap.String("project_id", projectID), zap.Error(err))
		return nil, apperrors.NewInternalError("Error fetching the project.")
	}

	return &view, nil
}

func (s *ProjectService) Create(ctx context.Context, userID, name string) (*entities.Project, error) {
	if err := validations.ProjectName(name); err != nil {
		return nil, err
	}

	project := &entities.Project{
		ID:        uuid.NewString(),
		Name:      name,
		Owner:     userID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, apperrors.NewInternalError("Error creating the project.")
	}

	s.cache.InvalidateUserProjects(ctx)

	return project, nil
}

// Update renames the project and removes the listed documents. Both run
// concurrently; a failure of either is reported as one error and the
// other is not undone.
func (s *ProjectService) Update(ctx context.Context, projectID, userID, name string, removedDocs []string) error {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return apperrors.NewNotFoundError("project not found")
	}
	if project.Owner != userID {
		return apperrors.NewForbiddenError("access denied")
	}

	if err := validations.ProjectName(name); err != nil {
		return err
	}

	var (
		wg        sync.WaitGroup
		renameErr error
		docsErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		renameErr = s.projectRepo.Rename(ctx, projectID, name)
	}()
	go func() {
		defer wg.Done()
		// Scoped to the project: ids pointing at other projects' documents
		// are ignored, not deleted.
		docsErr = s.docRepo.DeleteByIDs(ctx, projectID, removedDocs)
	}()
	wg.Wait()

	if err := errors.Join(renameErr, docsErr); err != nil {
		logger.Error("failed to update project",
			zap.String("project_id", projectID), zap.Error(err))
		return apperrors.NewInternalError("Error updating the project.")
	}

	for _, docID := range removedDocs {
		s.cache.InvalidateDocument(ctx, docID)
	}
	s.cache.InvalidateProjectDocuments(ctx, projectID)
	s.cache.InvalidateUserProjects(ctx)

	return nil
}

// Delete removes the project row; documents, history and grants go
// with it through the store's cascade rules.
func (s *ProjectService) Delete(ctx context.Context, projectID, userID string) error {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return apperrors.NewNotFoundError("project not found")
	}
	if project.Owner != userID {
		return apperrors.NewForbiddenError("access denied")
	}

	if err := s.projectRepo.Delete(ctx, projectID); err != nil {
		return apperrors.NewInternalError("Error removing the project.")
	}

	s.cache.InvalidateProjectDocuments(ctx, projectID)
	s.cache.InvalidateUserProjects(ctx)

	return nil
}

// buildView assembles a ProjectView: the owner leads the team preview,
// a member's grants across documents collapse to one entry, and the
// count is the distinct member count plus the owner.
func (s *ProjectService) buildView(ctx context.Context, project *entities.Project) (entities.ProjectView, error) {
	var (
		summaries []entities.DocumentSummary
		members   []entities.Member
		count     int
		owner     *entities.Profile
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summaries, err = s.docRepo.Summaries(gctx, project.ID)
		return err
	})
	g.Go(func() error {
		var err error
		members, count, err = s.memberRepo.TeamByProject(gctx, project.ID, project.Owner, entities.TeamPreviewSize)
		return err
	})
	g.Go(func() error {
		var err error
		owner, err = s.profileRepo.GetByID(gctx, project.Owner)
		return err
	})

	if err := g.Wait(); err != nil {
		return entities.ProjectView{}, err
	}

	team := []entities.Member{{
		ID:        owner.ID,
		Username:  owner.Username,
		AvatarURL: owner.AvatarKey,
		Role:      entities.RoleOwner,
	}}
	team = append(team, members...)
	resolveAvatars(s.storage, team)

	if summaries == nil {
		summaries = []entities.DocumentSummary{}
	}

	return entities.ProjectView{
		Project:   *project,
		Documents: summaries,
		Team:      entities.Team{Members: team, Count: count + 1},
	}, nil
}
