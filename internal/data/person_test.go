package data

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acpoke/acpoke-bridge/internal/biz/domain"
)

func newTestPersonRepo(t *testing.T) *personRepo {
	t.Helper()
	r, err := NewPersonRepo(filepath.Join(t.TempDir(), "nested", "acpoke.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r.(*personRepo)
}

func TestPersonRepo_SaveAndFind(t *testing.T) {
	r := newTestPersonRepo(t)
	ctx := context.Background()

	alice := &domain.Person{UserID: "20002", PersonName: "Alice", Nickname: "ali"}
	require.NoError(t, r.SavePerson(ctx, alice))
	assert.NotEmpty(t, alice.PersonID)
	assert.Equal(t, DefaultPlatform, alice.Platform)

	id, err := r.FindPersonIDByName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.PersonID, id)

	id, err = r.FindPersonIDByName(ctx, "ALI")
	require.NoError(t, err)
	assert.Equal(t, alice.PersonID, id)

	userID, err := r.GetPersonValue(ctx, id, "user_id")
	require.NoError(t, err)
	assert.Equal(t, "20002", userID)
}

func TestPersonRepo_NotFound(t *testing.T) {
	r := newTestPersonRepo(t)
	ctx := context.Background()

	id, err := r.FindPersonIDByName(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, id)

	id, err = r.FindPersonIDByName(ctx, "  ")
	require.NoError(t, err)
	assert.Empty(t, id)

	value, err := r.GetPersonValue(ctx, "missing", "user_id")
	require.NoError(t, err)
	assert.Empty(t, value)

	_, err = r.GetPersonValue(ctx, "missing", "user_id; DROP TABLE person_info")
	assert.Error(t, err)
}

func TestPersonRepo_NameBeatsNickname(t *testing.T) {
	r := newTestPersonRepo(t)
	ctx := context.Background()

	byNick := &domain.Person{UserID: "1", PersonName: "someone", Nickname: "Bob"}
	byName := &domain.Person{UserID: "2", PersonName: "bob", Nickname: "robert"}
	require.NoError(t, r.SavePerson(ctx, byNick))
	require.NoError(t, r.SavePerson(ctx, byName))

	id, err := r.FindPersonIDByName(ctx, "Bob")
	require.NoError(t, err)
	assert.Equal(t, byName.PersonID, id)
}

func TestPersonRepo_SaveUpdatesSameUser(t *testing.T) {
	r := newTestPersonRepo(t)
	ctx := context.Background()

	first := &domain.Person{UserID: "30003", PersonName: "Carol"}
	require.NoError(t, r.SavePerson(ctx, first))

	second := &domain.Person{UserID: "30003", PersonName: "Caroline"}
	require.NoError(t, r.SavePerson(ctx, second))
	assert.Equal(t, first.PersonID, second.PersonID)

	name, err := r.GetPersonValue(ctx, first.PersonID, "person_name")
	require.NoError(t, err)
	assert.Equal(t, "Caroline", name)

	assert.Error(t, r.SavePerson(ctx, &domain.Person{PersonName: "no id"}))
}

func TestPersonRepo_Search(t *testing.T) {
	r := newTestPersonRepo(t)
	ctx := context.Background()

	require.NoError(t, r.SavePerson(ctx, &domain.Person{UserID: "1", PersonName: "Alice"}))
	require.NoError(t, r.SavePerson(ctx, &domain.Person{UserID: "2", PersonName: "Malice", Nickname: "m"}))
	require.NoError(t, r.SavePerson(ctx, &domain.Person{UserID: "3", PersonName: "Bob"}))

	persons, err := r.SearchPersons(ctx, "lic", 10)
	require.NoError(t, err)
	assert.Len(t, persons, 2)

	persons, err = r.SearchPersons(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, persons, 1)
}
