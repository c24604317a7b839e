package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anjerodev/dotenv/internal/domain/entities"
	"github.com/anjerodev/dotenv/internal/domain/services"
	"github.com/anjerodev/dotenv/internal/infrastructure/cache"
)

func setupCache(t *testing.T) services.CacheService {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return services.NewRedisCacheService(cache.NewRedisCacheWithClient(client), time.Hour)
}

func docView(id, name string, team entities.Team) *entities.DocumentView {
	return &entities.DocumentView{
		Document: entities.Document{ID: id, Name: name, ProjectID: "proj-1"},
		Team:     team,
	}
}

func TestDocumentViewRoundTrip(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetDocument(ctx, docView("doc-1", ".env", entities.Team{Count: 1})))

	got, err := c.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, ".env", got.Name)

	require.NoError(t, c.InvalidateDocument(ctx, "doc-1"))
	_, err = c.GetDocument(ctx, "doc-1")
	require.Error(t, err)
}

func TestPatchDocumentNamePropagates(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetDocument(ctx, docView("doc-1", ".env", entities.Team{})))
	require.NoError(t, c.SetProjectDocuments(ctx, "proj-1", "u1", []entities.DocumentView{
		*docView("doc-1", ".env", entities.Team{}),
		*docView("doc-2", ".env.prod", entities.Team{}),
	}))
	require.NoError(t, c.SetUserProjects(ctx, "u1", []entities.ProjectView{{
		Project:   entities.Project{ID: "proj-1", Name: "backend"},
		Documents: []entities.DocumentSummary{{ID: "doc-1", Name: ".env"}},
	}}))

	require.NoError(t, c.PatchDocumentName(ctx, "proj-1", "doc-1", ".env.staging"))

	doc, err := c.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, ".env.staging", doc.Name)

	docs, err := c.GetProjectDocuments(ctx, "proj-1", "u1")
	require.NoError(t, err)
	assert.Equal(t, ".env.staging", docs[0].Name)
	assert.Equal(t, ".env.prod", docs[1].Name)

	projects, err := c.GetUserProjects(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, ".env.staging", projects[0].Documents[0].Name)
}

func TestPatchDocumentTeamCountArithmetic(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	team := entities.Team{
		Members: []entities.Member{
			{Ref: "ref-1", ID: "u1", Role: entities.RoleOwner},
			{Ref: "ref-2", ID: "u2", Role: entities.RoleViewer},
		},
		Count: 5,
	}
	require.NoError(t, c.SetDocument(ctx, docView("doc-1", ".env", team)))

	result := entities.ReconcileResult{
		Insert: []entities.Member{{Ref: "ref-9", ID: "u9", Role: entities.RoleEditor}},
		Update: []entities.RoleChange{{Ref: "ref-2", Role: entities.RoleEditor}},
		Remove: []string{"ref-1"},
	}
	require.NoError(t, c.PatchDocumentTeam(ctx, "proj-1", "doc-1", result))

	doc, err := c.GetDocument(ctx, "doc-1")
	require.NoError(t, err)

	// 5 + 1 inserted - 1 removed.
	assert.Equal(t, 5, doc.Team.Count)

	byRef := map[string]entities.Member{}
	for _, member := range doc.Team.Members {
		byRef[member.Ref] = member
	}
	assert.NotContains(t, byRef, "ref-1")
	assert.Equal(t, entities.RoleEditor, byRef["ref-2"].Role)
	assert.Contains(t, byRef, "ref-9")
}

func TestPatchDocumentTeamRoleOnlyKeepsLists(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetProjectDocuments(ctx, "proj-1", "u1", []entities.DocumentView{
		*docView("doc-1", ".env", entities.Team{Count: 2}),
	}))
	require.NoError(t, c.SetUserProjects(ctx, "u1", []entities.ProjectView{{
		Project: entities.Project{ID: "proj-1"},
	}}))

	// Role changes do not touch counts or previews.
	result := entities.ReconcileResult{
		Update: []entities.RoleChange{{Ref: "ref-2", Role: entities.RoleEditor}},
	}
	require.NoError(t, c.PatchDocumentTeam(ctx, "proj-1", "doc-1", result))

	_, err := c.GetUserProjects(ctx, "u1")
	require.NoError(t, err)

	// Inserts and removals change counts; project views recompute.
	result = entities.ReconcileResult{Remove: []string{"ref-2"}}
	require.NoError(t, c.PatchDocumentTeam(ctx, "proj-1", "doc-1", result))

	_, err = c.GetUserProjects(ctx, "u1")
	require.Error(t, err)

	docs, err := c.GetProjectDocuments(ctx, "proj-1", "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, docs[0].Team.Count)
}

func TestPatchTeamPreviewCap(t *testing.T) {
	team := entities.Team{
		Members: []entities.Member{
			{Ref: "ref-1", ID: "u1"},
			{Ref: "ref-2", ID: "u2"},
			{Ref: "ref-3", ID: "u3"},
		},
		Count: 3,
	}

	result := entities.ReconcileResult{
		Insert: []entities.Member{{Ref: "ref-4", ID: "u4"}},
	}
	patched := services.PatchTeam(team, result)

	// The preview stays capped while the count keeps the truth.
	assert.Len(t, patched.Members, entities.TeamPreviewSize)
	assert.Equal(t, 4, patched.Count)
}

func TestInvalidateProjectDocumentsClearsAllUsers(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetProjectDocuments(ctx, "proj-1", "u1", []entities.DocumentView{}))
	require.NoError(t, c.SetProjectDocuments(ctx, "proj-1", "u2", []entities.DocumentView{}))
	require.NoError(t, c.SetProjectDocuments(ctx, "proj-2", "u1", []entities.DocumentView{}))

	require.NoError(t, c.InvalidateProjectDocuments(ctx, "proj-1"))

	_, err := c.GetProjectDocuments(ctx, "proj-1", "u1")
	require.Error(t, err)
	_, err = c.GetProjectDocuments(ctx, "proj-1", "u2")
	require.Error(t, err)
	_, err = c.GetProjectDocuments(ctx, "proj-2", "u1")
	require.NoError(t, err)
}
