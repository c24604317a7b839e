package services

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/anjerodev/dotenv/internal/domain/entities"
)

// CacheService is the server-side view cache. Document and project
// views are cached per key; mutations either patch the affected keys in
// place (team changes, renames) or invalidate them for recompute.
type CacheService interface {
	GetDocument(ctx context.Context, docID string) (*entities.DocumentView, error)
	SetDocument(ctx context.Context, doc *entities.DocumentView) error
	GetProjectDocuments(ctx context.Context, projectID, userID string) ([]entities.DocumentView, error)
	SetProjectDocuments(ctx context.Context, projectID, userID string, docs []entities.DocumentView) error
	GetUserProjects(ctx context.Context, userID string) ([]entities.ProjectView, error)
	SetUserProjects(ctx context.Context, userID string, projects []entities.ProjectView) error
	InvalidateDocument(ctx context.Context, docID string) error
	InvalidateProjectDocuments(ctx context.Context, projectID string) error
	InvalidateUserProjects(ctx context.Context) error
	// PatchDocumentName keeps every cached view that embeds the
	// document's name in agreement after a rename.
	PatchDocumentName(ctx context.Context, projectID, docID, name string) error
	// PatchDocumentTeam applies a reconcile result to the cached
	// document view and list entries, re-deriving counts instead of
	// refetching.
	PatchDocumentTeam(ctx context.Context, projectID, docID string, result entities.ReconcileResult) error
}

type RedisClient interface {
	Get(ctx context.Context, key string) (string, error)
	GetDel(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, duration time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Keys(ctx context.Context, pattern string) ([]string, error)
}

const userProjectsPrefix = "projects:user:"

type redisCacheService struct {
	client        RedisClient
	cacheDuration time.Duration
}

func NewRedisCacheService(client RedisClient, cacheDuration time.Duration) CacheService {
	return &redisCacheService{
		client:        client,
		cacheDuration: cacheDuration,
	}
}

func documentKey(docID string) string {
	return fmt.Sprintf("doc:%s", docID)
}

func projectDocumentsKey(projectID, userID string) string {
	return fmt.Sprintf("project:%s:documents:%s", projectID, userID)
}

func projectDocumentsPattern(projectID string) string {
	return fmt.Sprintf("project:%s:documents:*", projectID)
}

func userProjectsKey(userID string) string {
	return userProjectsPrefix + userID
}

func (s *redisCacheService) GetDocument(ctx context.Context, docID string) (*entities.DocumentView, error) {
	data, err := s.client.Get(ctx, documentKey(docID))
	if err != nil {
		return nil, err
	}

	var doc entities.DocumentView
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, err
	}

	return &doc, nil
}

func (s *redisCacheService) SetDocument(ctx context.Context, doc *entities.DocumentView) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, documentKey(doc.ID), data, s.cacheDuration)
}

func (s *redisCacheService) GetProjectDocuments(ctx context.Context, projectID, userID string) ([]entities.DocumentView, error) {
	data, err := s.client.Get(ctx, projectDocumentsKey(projectID, userID))
	if err != nil {
		return nil, err
	}

	var docs []entities.DocumentView
	if err := json.Unmarshal([]byte(data), &docs); err != nil {
		return nil, err
	}

	return docs, nil
}

func (s *redisCacheService) SetProjectDocuments(ctx context.Context, projectID, userID string, docs []entities.DocumentView) error {
	data, err := json.Marshal(docs)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, projectDocumentsKey(projectID, userID), data, s.cacheDuration)
}

func (s *redisCacheService) GetUserProjects(ctx context.Context, userID string) ([]entities.ProjectView, error) {
	data, err := s.client.Get(ctx, userProjectsKey(userID))
	if err != nil {
		return nil, err
	}

	var projects []entities.ProjectView
	if err := json.Unmarshal([]byte(data), &projects); err != nil {
		return nil, err
	}

	return projects, nil
}

func (s *redisCacheService) SetUserProjects(ctx context.Context, userID string, projects []entities.ProjectView) error {
	data, err := json.Marshal(projects)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, userProjectsKey(userID), data, s.cacheDuration)
}

func (s *redisCacheService) InvalidateDocument(ctx context.Context, docID string) error {
	return s.client.Del(ctx, documentKey(docID))
}

func (s *redisCacheService) InvalidateProjectDocuments(ctx context.Context, projectID string) error {
	return s.invalidatePattern(ctx, projectDocumentsPattern(projectID))
}

func (s *redisCacheService) InvalidateUserProjects(ctx context.Context) error {
	return s.invalidatePattern(ctx, userProjectsPrefix+"*")
}

func (s *redisCacheService) invalidatePattern(ctx context.Context, pattern string) error {
	keys, err := s.client.Keys(ctx, pattern)
	if err != nil {
		return err
	}

	if len(keys) > 0 {
		return s.client.Del(ctx, keys...)
	}

	return nil
}

func (s *redisCacheService) PatchDocumentName(ctx context.Context, projectID, docID, name string) error {
	// The document's own view.
	if doc, err := s.GetDocument(ctx, docID); err == nil {
		doc.Name = name
		if err := s.SetDocument(ctx, doc); err != nil {
			return err
		}
	}

	// Every cached list of the owning project.
	listKeys, err := s.client.Keys(ctx, projectDocumentsPattern(projectID))
	if err != nil {
		return err
	}
	for _, key := range listKeys {
		if err := s.patchDocumentList(ctx, key, docID, func(doc *entities.DocumentView) {
			doc.Name = name
		}); err != nil {
			return err
		}
	}

	// Document name previews embedded in cached project lists.
	projectKeys, err := s.client.Keys(ctx, userProjectsPrefix+"*")
	if err != nil {
		return err
	}
	for _, key := range projectKeys {
		if err := s.patchProjectList(ctx, key, docID, name); err != nil {
			return err
		}
	}

	return nil
}

func (s *redisCacheService) PatchDocumentTeam(ctx context.Context, projectID, docID string, result entities.ReconcileResult) error {
	if doc, err := s.GetDocument(ctx, docID); err == nil {
		doc.Team = PatchTeam(doc.Team, result)
		if err := s.SetDocument(ctx, doc); err != nil {
			return err
		}
	}

	// Role-only changes do not alter counts or previews embedded in
	// lists, so list caches stay untouched for them.
	if len(result.Insert) == 0 && len(result.Remove) == 0 {
		return nil
	}

	listKeys, err := s.client.Keys(ctx, projectDocumentsPattern(projectID))
	if err != nil {
		return err
	}
	for _, key := range listKeys {
		if err := s.patchDocumentList(ctx, key, docID, func(doc *entities.DocumentView) {
			doc.Team = PatchTeam(doc.Team, result)
		}); err != nil {
			return err
		}
	}

	// Project views embed team previews assembled differently; recompute
	// them on next read.
	return s.InvalidateUserProjects(ctx)
}

func (s *redisCacheService) patchDocumentList(ctx context.Context, key, docID string, patch func(*entities.DocumentView)) error {
	data, err := s.client.Get(ctx, key)
	if err != nil {
		return nil
	}

	var docs []entities.DocumentView
	if err := json.Unmarshal([]byte(data), &docs); err != nil {
		return s.client.Del(ctx, key)
	}

	for i := range docs {
		if docs[i].ID == docID {
			patch(&docs[i])
		}
	}

	updated, err := json.Marshal(docs)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, key, updated, s.cacheDuration)
}

func (s *redisCacheService) patchProjectList(ctx context.Context, key, docID, name string) error {
	data, err := s.client.Get(ctx, key)
	if err != nil {
		return nil
	}

	var projects []entities.ProjectView
	if err := json.Unmarshal([]byte(data), &projects); err != nil {
		return s.client.Del(ctx, key)
	}

	for i := range projects {
		for j := range projects[i].Documents {
			if projects[i].Documents[j].ID == docID {
				projects[i].Documents[j].Name = name
			}
		}
	}

	updated, err := json.Marshal(projects)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, key, updated, s.cacheDuration)
}

// PatchTeam applies a reconcile result to a team view: roles updated in
// place, removed refs dropped, inserted members appended while the
// preview has room, and the count re-derived as
// old + inserted - removed.
func PatchTeam(team entities.Team, result entities.ReconcileResult) entities.Team {
	members := slices.Clone(team.Members)

	for _, change := range result.Update {
		for i := range members {
			if members[i].Ref == change.Ref {
				members[i].Role = change.Role
				break
			}
		}
	}

	for _, ref := range result.Remove {
		for i := range members {
			if members[i].Ref == ref {
				members = slices.Delete(members, i, i+1)
				break
			}
		}
	}

	for _, member := range result.Insert {
		if len(members) < entities.TeamPreviewSize {
			members = append(members, member)
		}
	}

	return entities.Team{
		Members: members,
		Count:   team.Count + len(result.Insert) - len(result.Remove),
	}
}
