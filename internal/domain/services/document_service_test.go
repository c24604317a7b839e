package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anjerodev/dotenv/internal/domain/entities"
	apperrors "github.com/anjerodev/dotenv/pkg/errors"
)

type documentFixture struct {
	svc         *DocumentService
	docRepo     *fakeDocumentRepo
	historyRepo *fakeHistoryRepo
	projectRepo *fakeProjectRepo
	memberRepo  *fakeMemberRepo
	profileRepo *fakeProfileRepo
	cache       *noopCache
}

func newDocumentFixture() *documentFixture {
	f := &documentFixture{
		docRepo:     newFakeDocumentRepo(),
		historyRepo: newFakeHistoryRepo(),
		projectRepo: newFakeProjectRepo(),
		memberRepo:  newFakeMemberRepo(),
		profileRepo: newFakeProfileRepo(),
		cache:       &noopCache{},
	}
	f.svc = NewDocumentService(f.docRepo, f.historyRepo, f.projectRepo, f.memberRepo, f.profileRepo, f.cache, &fakeStorage{})
	f.projectRepo.projects["proj-1"] = &entities.Project{ID: "proj-1", Name: "backend", Owner: "u1"}
	return f
}

func TestCreateSeedsHistoryAndOwnerGrant(t *testing.T) {
	f := newDocumentFixture()

	doc, err := f.svc.Create(context.Background(), "proj-1", "u1", ".env.local", "API_KEY=abc")
	require.NoError(t, err)

	entries := f.historyRepo.entries[doc.ID]
	require.Len(t, entries, 1)
	assert.Equal(t, "API_KEY=abc", entries[0].Content)
	assert.Equal(t, "u1", entries[0].UpdatedBy)

	grant := f.memberRepo.grants["ref-u1"]
	assert.Equal(t, doc.ID, grant.DocumentID)
	assert.Equal(t, entities.RoleOwner, grant.Role)
}

func TestCreateForeignProjectForbidden(t *testing.T) {
	f := newDocumentFixture()

	// Not the owner and no grant anywhere in the project.
	_, err := f.svc.Create(context.Background(), "proj-1", "intruder", ".env", "SECRET=1")

	var forbidden *apperrors.ForbiddenError
	require.ErrorAs(t, err, &forbidden)

	// No document, no history, no owner grant for the intruder.
	assert.Empty(t, f.docRepo.docs)
	assert.Empty(t, f.historyRepo.entries)
	assert.Zero(t, f.memberRepo.insertCalls)
}

func TestCreateAllowedForGrantedMember(t *testing.T) {
	f := newDocumentFixture()
	f.memberRepo.addGrant("ref-u2", entities.Grant{DocumentID: "doc-0", ProjectID: "proj-1", UserID: "u2", Role: entities.RoleEditor})

	doc, err := f.svc.Create(context.Background(), "proj-1", "u2", ".env.local", "")
	require.NoError(t, err)
	assert.Equal(t, "proj-1", doc.ProjectID)
}

func TestCreateDuplicateNameReturnsFieldError(t *testing.T) {
	f := newDocumentFixture()
	f.docRepo.docs["doc-1"] = &entities.Document{ID: "doc-1", Name: ".env", ProjectID: "proj-1"}

	_, err := f.svc.Create(context.Background(), "proj-1", "u1", ".env", "")

	var validation *apperrors.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Form, "name")

	// No document and no history row were written.
	assert.Len(t, f.docRepo.docs, 1)
	assert.Empty(t, f.historyRepo.entries)
}

func TestGetDeniedWithoutGrant(t *testing.T) {
	f := newDocumentFixture()
	f.docRepo.docs["doc-1"] = &entities.Document{ID: "doc-1", Name: ".env", ProjectID: "proj-1"}

	_, err := f.svc.Get(context.Background(), "doc-1", "stranger")

	var forbidden *apperrors.ForbiddenError
	require.ErrorAs(t, err, &forbidden)
}

func TestGetReturnsLatestRevision(t *testing.T) {
	f := newDocumentFixture()
	f.docRepo.docs["doc-1"] = &entities.Document{ID: "doc-1", Name: ".env", ProjectID: "proj-1"}
	f.memberRepo.addGrant("ref-u1", entities.Grant{DocumentID: "doc-1", ProjectID: "proj-1", UserID: "u1", Role: entities.RoleOwner})
	f.profileRepo.profiles["u1"] = &entities.Profile{ID: "u1", Username: "ada"}

	base := time.Now().Add(-time.Hour)
	f.historyRepo.entries["doc-1"] = []entities.HistoryEntry{
		{ID: "h1", DocumentID: "doc-1", Content: "OLD=1", UpdatedAt: base, UpdatedBy: "u1"},
		{ID: "h2", DocumentID: "doc-1", Content: "NEW=1", UpdatedAt: base.Add(time.Minute), UpdatedBy: "u1"},
	}

	view, err := f.svc.Get(context.Background(), "doc-1", "u1")
	require.NoError(t, err)

	assert.Equal(t, "NEW=1", view.Content)
	assert.Equal(t, "ada", view.UpdatedBy.Username)
	assert.Equal(t, 1, view.Team.Count)
}

func TestUpdateViewerForbidden(t *testing.T) {
	f := newDocumentFixture()
	f.docRepo.docs["doc-1"] = &entities.Document{ID: "doc-1", Name: ".env", ProjectID: "proj-1"}
	f.memberRepo.addGrant("ref-u2", entities.Grant{DocumentID: "doc-1", ProjectID: "proj-1", UserID: "u2", Role: entities.RoleViewer})

	name := ".env.renamed"
	err := f.svc.Update(context.Background(), "proj-1", "doc-1", "u2", &name, "KEY=1")

	var forbidden *apperrors.ForbiddenError
	require.ErrorAs(t, err, &forbidden)

	// Viewers neither rename nor append revisions.
	assert.Equal(t, ".env", f.docRepo.docs["doc-1"].Name)
	assert.Empty(t, f.historyRepo.entries["doc-1"])
}

func TestUpdateSameNameSkipsRename(t *testing.T) {
	f := newDocumentFixture()
	f.docRepo.docs["doc-1"] = &entities.Document{ID: "doc-1", Name: ".env", ProjectID: "proj-1"}
	f.memberRepo.addGrant("ref-u1", entities.Grant{DocumentID: "doc-1", ProjectID: "proj-1", UserID: "u1", Role: entities.RoleOwner})

	name := ".env"
	err := f.svc.Update(context.Background(), "proj-1", "doc-1", "u1", &name, "KEY=1")
	require.NoError(t, err)

	// Submitting the current name must not probe uniqueness: the probe
	// would collide with the document itself.
	assert.Zero(t, f.docRepo.nameProbes)
	assert.Zero(t, f.docRepo.renames)
	assert.Zero(t, f.cache.namePatches)

	// The content revision still lands.
	require.Len(t, f.historyRepo.entries["doc-1"], 1)
	assert.Equal(t, "KEY=1", f.historyRepo.entries["doc-1"][0].Content)
}

func TestUpdateRenameDuplicateReturnsFieldError(t *testing.T) {
	f := newDocumentFixture()
	f.docRepo.docs["doc-1"] = &entities.Document{ID: "doc-1", Name: ".env", ProjectID: "proj-1"}
	f.docRepo.docs["doc-2"] = &entities.Document{ID: "doc-2", Name: ".env.prod", ProjectID: "proj-1"}
	f.memberRepo.addGrant("ref-u1", entities.Grant{DocumentID: "doc-1", ProjectID: "proj-1", UserID: "u1", Role: entities.RoleOwner})

	name := ".env.prod"
	err := f.svc.Update(context.Background(), "proj-1", "doc-1", "u1", &name, "KEY=1")

	var validation *apperrors.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Form, "name")

	// Failed rename writes nothing, not even the revision.
	assert.Equal(t, ".env", f.docRepo.docs["doc-1"].Name)
	assert.Empty(t, f.historyRepo.entries["doc-1"])
}

func TestUpdateRenamePatchesCaches(t *testing.T) {
	f := newDocumentFixture()
	f.docRepo.docs["doc-1"] = &entities.Document{ID: "doc-1", Name: ".env", ProjectID: "proj-1"}
	f.memberRepo.addGrant("ref-u1", entities.Grant{DocumentID: "doc-1", ProjectID: "proj-1", UserID: "u1", Role: entities.RoleOwner})

	name := ".env.staging"
	err := f.svc.Update(context.Background(), "proj-1", "doc-1", "u1", &name, "KEY=1")
	require.NoError(t, err)

	assert.Equal(t, ".env.staging", f.docRepo.docs["doc-1"].Name)
	assert.Equal(t, 1, f.cache.namePatches)
	require.Len(t, f.historyRepo.entries["doc-1"], 1)
}

func TestListByProjectSkipsFailingDocument(t *testing.T) {
	f := newDocumentFixture()
	f.docRepo.docs["doc-1"] = &entities.Document{ID: "doc-1", Name: ".env", ProjectID: "proj-1", CreatedAt: time.Now().Add(-time.Minute)}
	f.docRepo.docs["doc-2"] = &entities.Document{ID: "doc-2", Name: ".env.prod", ProjectID: "proj-1", CreatedAt: time.Now()}
	f.memberRepo.addGrant("ref-u1", entities.Grant{DocumentID: "doc-1", ProjectID: "proj-1", UserID: "u1", Role: entities.RoleOwner})

	// doc-1 has a revision, doc-2 has none and fails its detail reads.
	f.historyRepo.entries["doc-1"] = []entities.HistoryEntry{
		{ID: "h1", DocumentID: "doc-1", UpdatedAt: time.Now(), UpdatedBy: "u1"},
	}

	views, err := f.svc.ListByProject(context.Background(), "proj-1", "u1")
	require.NoError(t, err)

	require.Len(t, views, 1)
	assert.Equal(t, "doc-1", views[0].ID)
}
