package services

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anjerodev/dotenv/internal/domain/entities"
	"github.com/anjerodev/dotenv/internal/domain/repositories"
	"github.com/anjerodev/dotenv/internal/validations"
	apperrors "github.com/anjerodev/dotenv/pkg/errors"
	"github.com/anjerodev/dotenv/pkg/logger"
)

type DocumentService struct {
	docRepo     repositories.DocumentRepository
	historyRepo repositories.HistoryRepository
	projectRepo repositories.ProjectRepository
	memberRepo  repositories.MemberRepository
	profileRepo repositories.ProfileRepository
	cache       CacheService
	storage     AvatarStorage
}

func NewDocumentService(
	docRepo repositories.DocumentRepository,
	historyRepo repositories.HistoryRepository,
	projectRepo repositories.ProjectRepository,
	memberRepo repositories.MemberRepository,
	profileRepo repositories.ProfileRepository,
	cache CacheService,
	storage AvatarStorage,
) *DocumentService {
	return &DocumentService{
		docRepo:     docRepo,
		historyRepo: historyRepo,
		projectRepo: projectRepo,
		memberRepo:  memberRepo,
		profileRepo: profileRepo,
		cache:       cache,
		storage:     storage,
	}
}

// canAccessProject reports whether the user owns the project or holds a
// grant on any of its documents.
func (s *DocumentService) canAccessProject(ctx context.Context, projectID, userID string) (bool, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return false, err
	}
	if project.Owner == userID {
		return true, nil
	}

	granted, err := s.memberRepo.ProjectIDsForUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return slices.Contains(granted, projectID), nil
}

// Create inserts the document, its first history entry and the owner
// grant. The name must be unique within the project; a collision is a
// field-level validation error, not a generic failure.
func (s *DocumentService) Create(ctx context.Context, projectID, userID, name, content string) (*entities.Document, error) {
	if err := validations.DocumentName(name); err != nil {
		return nil, err
	}

	allowed, err := s.canAccessProject(ctx, projectID, userID)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NewNotFoundError("project not found")
		}
		return nil, apperrors.NewInternalError("Error creating the new document.")
	}
	if !allowed {
		return nil, apperrors.NewForbiddenError("access denied")
	}

	exists, err := s.docRepo.NameExists(ctx, projectID, name)
	if err != nil {
		return nil, apperrors.NewInternalError("Error creating the new document.")
	}
	if exists {
		return nil, apperrors.NewValidationError(map[string]string{
			"name": "The document already exist, please, use another name.",
		})
	}

	doc := &entities.Document{
		ID:        uuid.NewString(),
		Name:      name,
		ProjectID: projectID,
		CreatedAt: time.Now(),
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, apperrors.NewInternalError("Error creating the new document.")
	}

	var (
		wg         sync.WaitGroup
		historyErr error
		memberErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		historyErr = s.historyRepo.Append(ctx, &entities.HistoryEntry{
			ID:         uuid.NewString(),
			DocumentID: doc.ID,
			Content:    content,
			UpdatedAt:  time.Now(),
			UpdatedBy:  userID,
		})
	}()
	go func() {
		defer wg.Done()
		_, memberErr = s.memberRepo.InsertBulk(ctx, []entities.Grant{{
			DocumentID: doc.ID,
			ProjectID:  projectID,
			UserID:     userID,
			Role:       entities.RoleOwner,
		}})
	}()
	wg.Wait()

	if err := errors.Join(historyErr, memberErr); err != nil {
		logger.Error("failed to create document",
			zap.String("document_id", doc.ID), zap.Error(err))
		return nil, apperrors.NewInternalError("Error creating the new document.")
	}

	s.cache.InvalidateProjectDocuments(ctx, projectID)
	s.cache.InvalidateUserProjects(ctx)

	return doc, nil
}

// Get returns the document's stable fields plus the latest revision's
// decrypted content and the full team. Recency by updated_at is the
// sole selection rule for "current" content.
func (s *DocumentService) Get(ctx context.Context, docID, userID string) (*entities.DocumentView, error) {
	hasAccess, err := s.memberRepo.HasDocumentAccess(ctx, docID, userID)
	if err != nil {
		return nil, apperrors.NewInternalError("Error fetching the document.")
	}
	if !hasAccess {
		return nil, apperrors.NewForbiddenError("access denied")
	}

	if doc, err := s.cache.GetDocument(ctx, docID); err == nil {
		return doc, nil
	}

	var (
		doc     *entities.Document
		latest  *entities.HistoryEntry
		members []entities.Member
		count   int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		doc, err = s.docRepo.GetByID(gctx, docID)
		return err
	})
	g.Go(func() error {
		var err error
		latest, err = s.historyRepo.Latest(gctx, docID)
		return err
	})
	g.Go(func() error {
		var err error
		members, count, err = s.memberRepo.ListByDocument(gctx, docID)
		return err
	})

	if err := g.Wait(); err != nil {
		if isNoRows(err) {
			return nil, apperrors.NewNotFoundError("document not found")
		}
		logger.Error("failed to fetch document",
			zap.String("document_id", docID), zap.Error(err))
		return nil, apperrors.NewInternalError("Error fetching the document.")
	}

	updatedBy := entities.Member{ID: latest.UpdatedBy}
	if profile, err := s.profileRepo.GetByID(ctx, latest.UpdatedBy); err == nil {
		updatedBy.Username = profile.Username
		updatedBy.AvatarURL = profile.AvatarKey
	}

	resolveAvatars(s.storage, members)
	single := []entities.Member{updatedBy}
	resolveAvatars(s.storage, single)

	view := &entities.DocumentView{
		Document:  *doc,
		Content:   latest.Content,
		UpdatedAt: latest.UpdatedAt,
		UpdatedBy: single[0],
		Team:      entities.Team{Members: members, Count: count},
	}

	s.cache.SetDocument(ctx, view)

	return view, nil
}

// ListByProject returns the documents the user holds a grant for, each
// with its latest revision timestamp and a team preview. A document
// whose detail reads fail is skipped rather than failing the listing.
func (s *DocumentService) ListByProject(ctx context.Context, projectID, userID string) ([]entities.DocumentView, error) {
	if docs, err := s.cache.GetProjectDocuments(ctx, projectID, userID); err == nil {
		return docs, nil
	}

	docs, err := s.docRepo.GetForMember(ctx, projectID, userID)
	if err != nil {
		return nil, apperrors.NewInternalError("Error fetching the documents.")
	}

	views := make([]entities.DocumentView, 0, len(docs))
	for _, doc := range docs {
		var (
			updatedAt time.Time
			members   []entities.Member
			count     int
		)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			updatedAt, err = s.historyRepo.LatestUpdatedAt(gctx, doc.ID)
			return err
		})
		g.Go(func() error {
			var err error
			members, count, err = s.memberRepo.TeamByDocument(gctx, doc.ID, entities.TeamPreviewSize)
			return err
		})

		if err := g.Wait(); err != nil {
			logger.Warn("skipping document in listing",
				zap.String("document_id", doc.ID), zap.Error(err))
			continue
		}

		resolveAvatars(s.storage, members)

		views = append(views, entities.DocumentView{
			Document:  *doc,
			UpdatedAt: updatedAt,
			Team:      entities.Team{Members: members, Count: count},
		})
	}

	s.cache.SetProjectDocuments(ctx, projectID, userID, views)

	return views, nil
}

func (s *DocumentService) CountByProject(ctx context.Context, projectID string) (int, error) {
	count, err := s.docRepo.CountByProject(ctx, projectID)
	if err != nil {
		return 0, apperrors.NewInternalError("Error counting the documents.")
	}
	return count, nil
}

// Update appends a history entry and, when a different name is given,
// renames the document. Writes need an owner or editor grant; viewers
// only read. Passing the current name (or none) skips the rename and
// the uniqueness probe, which would otherwise collide with the
// document itself.
func (s *DocumentService) Update(ctx context.Context, projectID, docID, userID string, name *string, content string) error {
	role, err := s.memberRepo.RoleForUser(ctx, docID, userID)
	if err != nil {
		return apperrors.NewInternalError("Error updating the document.")
	}
	if !role.CanEdit() {
		return apperrors.NewForbiddenError("access denied")
	}

	doc, err := s.docRepo.GetByID(ctx, docID)
	if err != nil {
		return apperrors.NewNotFoundError("document not found")
	}
	if doc.ProjectID != projectID {
		return apperrors.NewNotFoundError("document not found")
	}

	renamed := false
	if name != nil && *name != "" && *name != doc.Name {
		if err := validations.DocumentName(*name); err != nil {
			return err
		}

		exists, err := s.docRepo.NameExists(ctx, projectID, *name)
		if err != nil {
			return apperrors.NewInternalError("The document name could not be updated.")
		}
		if exists {
			return apperrors.NewValidationError(map[string]string{
				"name": "The document already exist, please, use another name.",
			})
		}

		if err := s.docRepo.Rename(ctx, docID, *name); err != nil {
			return apperrors.NewInternalError("The document name could not be updated.")
		}
		renamed = true
	}

	if err := s.historyRepo.Append(ctx, &entities.HistoryEntry{
		ID:         uuid.NewString(),
		DocumentID: docID,
		Content:    content,
		UpdatedAt:  time.Now(),
		UpdatedBy:  userID,
	}); err != nil {
		logger.Error("failed to append document history",
			zap.String("document_id", docID), zap.Error(err))
		return apperrors.NewInternalError("Error saving the document.")
	}

	if renamed {
		if err := s.cache.PatchDocumentName(ctx, projectID, docID, *name); err != nil {
			logger.Warn("failed to patch name caches",
				zap.String("document_id", docID), zap.Error(err))
		}
	}
	// Content changed, recompute the detail view on next read.
	s.cache.InvalidateDocument(ctx, docID)

	return nil
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows)
}
