package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anjerodev/dotenv/internal/domain/entities"
	apperrors "github.com/anjerodev/dotenv/pkg/errors"
)

func newMemberService(memberRepo *fakeMemberRepo, profileRepo *fakeProfileRepo, cache *noopCache) *MemberService {
	return NewMemberService(memberRepo, profileRepo, cache, &fakeStorage{})
}

// grantOwner puts u1 on the document so it can edit the team.
func grantOwner(memberRepo *fakeMemberRepo) {
	memberRepo.addGrant("ref-u1", entities.Grant{DocumentID: "doc-1", ProjectID: "proj-1", UserID: "u1", Role: entities.RoleOwner})
}

func TestReconcilePartitionsActions(t *testing.T) {
	memberRepo := newFakeMemberRepo()
	grantOwner(memberRepo)
	memberRepo.addGrant("ref-u2", entities.Grant{DocumentID: "doc-1", ProjectID: "proj-1", UserID: "u2", Role: entities.RoleViewer})
	memberRepo.addGrant("ref-u3", entities.Grant{DocumentID: "doc-1", ProjectID: "proj-1", UserID: "u3", Role: entities.RoleEditor})
	cache := &noopCache{}
	svc := newMemberService(memberRepo, newFakeProfileRepo(), cache)

	result, err := svc.Reconcile(context.Background(), "proj-1", "doc-1", "u1", []entities.PendingMember{
		{ID: "u4", Role: entities.RoleEditor, Action: entities.ActionCreate},
		{Ref: "ref-u2", ID: "u2", Role: entities.RoleEditor, Action: entities.ActionUpdate},
		{Ref: "ref-u3", ID: "u3", Action: entities.ActionRemove},
	})
	require.NoError(t, err)

	require.Len(t, result.Insert, 1)
	assert.Equal(t, "u4", result.Insert[0].ID)
	require.Len(t, result.Update, 1)
	assert.Equal(t, entities.RoleEditor, result.Update[0].Role)
	assert.Equal(t, []string{"ref-u3"}, result.Remove)

	assert.Equal(t, 1, memberRepo.insertCalls)
	assert.Equal(t, 1, memberRepo.updateCalls)
	assert.Equal(t, 1, memberRepo.deleteCalls)

	// Grants reflect the applied edits.
	assert.Equal(t, entities.RoleEditor, memberRepo.grants["ref-u2"].Role)
	_, removed := memberRepo.grants["ref-u3"]
	assert.False(t, removed)

	require.Len(t, cache.teamPatches, 1)
}

func TestReconcileRequiresEditGrant(t *testing.T) {
	memberRepo := newFakeMemberRepo()
	memberRepo.addGrant("ref-u2", entities.Grant{DocumentID: "doc-1", ProjectID: "proj-1", UserID: "u2", Role: entities.RoleViewer})
	svc := newMemberService(memberRepo, newFakeProfileRepo(), &noopCache{})

	pending := []entities.PendingMember{
		{ID: "intruder", Role: entities.RoleEditor, Action: entities.ActionCreate},
	}

	// No grant at all on the document.
	_, err := svc.Reconcile(context.Background(), "proj-1", "doc-1", "intruder", pending)
	var forbidden *apperrors.ForbiddenError
	require.ErrorAs(t, err, &forbidden)

	// A viewer grant is read-only.
	_, err = svc.Reconcile(context.Background(), "proj-1", "doc-1", "u2", pending)
	require.ErrorAs(t, err, &forbidden)

	// Nothing was written.
	assert.Zero(t, memberRepo.insertCalls)
	has, _ := memberRepo.HasDocumentAccess(context.Background(), "doc-1", "intruder")
	assert.False(t, has)
}

func TestReconcileSkipsUnpersistedRemovals(t *testing.T) {
	memberRepo := newFakeMemberRepo()
	grantOwner(memberRepo)
	svc := newMemberService(memberRepo, newFakeProfileRepo(), &noopCache{})

	// A member added and removed in the same editing session was never
	// persisted and needs no round trip.
	result, err := svc.Reconcile(context.Background(), "proj-1", "doc-1", "u1", []entities.PendingMember{
		{ID: "u9", Role: entities.RoleViewer, Action: entities.ActionRemove},
	})
	require.NoError(t, err)

	assert.True(t, result.Empty())
	assert.Zero(t, memberRepo.insertCalls)
	assert.Zero(t, memberRepo.updateCalls)
	assert.Zero(t, memberRepo.deleteCalls)
}

func TestReconcileRejectsOwnerRole(t *testing.T) {
	memberRepo := newFakeMemberRepo()
	grantOwner(memberRepo)
	svc := newMemberService(memberRepo, newFakeProfileRepo(), &noopCache{})

	_, err := svc.Reconcile(context.Background(), "proj-1", "doc-1", "u1", []entities.PendingMember{
		{ID: "u2", Role: entities.RoleOwner, Action: entities.ActionCreate},
	})

	var badReq *apperrors.BadRequestError
	require.ErrorAs(t, err, &badReq)
}

func TestReconcileJoinsBucketErrors(t *testing.T) {
	memberRepo := newFakeMemberRepo()
	grantOwner(memberRepo)
	memberRepo.addGrant("ref-u3", entities.Grant{DocumentID: "doc-1", ProjectID: "proj-1", UserID: "u3", Role: entities.RoleViewer})
	memberRepo.insertErr = errors.New("insert boom")
	svc := newMemberService(memberRepo, newFakeProfileRepo(), &noopCache{})

	_, err := svc.Reconcile(context.Background(), "proj-1", "doc-1", "u1", []entities.PendingMember{
		{ID: "u4", Role: entities.RoleEditor, Action: entities.ActionCreate},
		{Ref: "ref-u3", ID: "u3", Action: entities.ActionRemove},
	})

	var internal *apperrors.InternalError
	require.ErrorAs(t, err, &internal)

	// The remove bucket still ran; nothing is rolled back.
	assert.Equal(t, 1, memberRepo.deleteCalls)
	_, removed := memberRepo.grants["ref-u3"]
	assert.False(t, removed)
}

func TestSearchResolvesAvatars(t *testing.T) {
	profileRepo := newFakeProfileRepo()
	profileRepo.profiles["u2"] = &entities.Profile{ID: "u2", Username: "ada", AvatarKey: "u2"}
	svc := newMemberService(newFakeMemberRepo(), profileRepo, &noopCache{})

	members, err := svc.Search(context.Background(), "u1", "ada", "")
	require.NoError(t, err)

	require.Len(t, members, 1)
	assert.Equal(t, "https://cdn.test/avatars/u2", members[0].AvatarURL)
}

func TestSearchExcludesSelf(t *testing.T) {
	profileRepo := newFakeProfileRepo()
	profileRepo.profiles["u1"] = &entities.Profile{ID: "u1", Username: "ada"}
	svc := newMemberService(newFakeMemberRepo(), profileRepo, &noopCache{})

	members, err := svc.Search(context.Background(), "u1", "ada", "")
	require.NoError(t, err)
	assert.Empty(t, members)
}
