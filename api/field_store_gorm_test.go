package api

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ericfitz/formfields/api/models"
	"github.com/ericfitz/formfields/internal/dbconn"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGormFieldStore_CreateAndGet(t *testing.T) {
	store := NewGormFieldStore(dbconn.NewTestDB(t))
	ctx := context.Background()

	field := Field{Name: "email", Type: "email", Pattern: strPtr(`.+@.+`)}
	require.NoError(t, store.Create(ctx, &field))
	assert.Positive(t, field.ID)

	got, err := store.Get(ctx, field.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "email", got.Name)
	assert.Equal(t, "email", got.Type)
	require.NotNil(t, got.Pattern)
	assert.Equal(t, `.+@.+`, *got.Pattern)
	assert.Equal(t, []int64{}, got.Fields)

	missing, err := store.Get(ctx, field.ID+100)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGormFieldStore_DuplicateName(t *testing.T) {
	store := NewGormFieldStore(dbconn.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &Field{Name: "firstName", Type: "text"}))
	err := store.Create(ctx, &Field{Name: "firstName", Type: "date"})
	assert.ErrorIs(t, err, ErrDuplicateField)
}

func TestGormFieldStore_List(t *testing.T) {
	store := NewGormFieldStore(dbconn.NewTestDB(t))
	ctx := context.Background()

	for _, name := range []string{"b", "a", "c"} {
		require.NoError(t, store.Create(ctx, &Field{Name: name, Type: "text"}))
	}

	fields, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, fields, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{fields[0].Name, fields[1].Name, fields[2].Name}, "ordered by id")
}

func TestGormFieldStore_Update(t *testing.T) {
	store := NewGormFieldStore(dbconn.NewTestDB(t))
	ctx := context.Background()

	first := Field{Name: "firstName", Type: "text"}
	second := Field{Name: "lastName", Type: "text"}
	require.NoError(t, store.Create(ctx, &first))
	require.NoError(t, store.Create(ctx, &second))

	t.Run("Success", func(t *testing.T) {
		updated := Field{Name: "givenName", Type: "text", Required: true, Fields: []int64{second.ID}}
		require.NoError(t, store.Update(ctx, first.ID, &updated))
		assert.Equal(t, first.ID, updated.ID)

		got, err := store.Get(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "givenName", got.Name)
		assert.True(t, got.Required)
		assert.Equal(t, []int64{second.ID}, got.Fields)
	})

	t.Run("ClearsRequiredAndPattern", func(t *testing.T) {
		withPattern := Field{Name: "givenName", Type: "email", Required: true, Pattern: strPtr("x")}
		require.NoError(t, store.Update(ctx, first.ID, &withPattern))

		cleared := Field{Name: "givenName", Type: "text"}
		require.NoError(t, store.Update(ctx, first.ID, &cleared))

		got, err := store.Get(ctx, first.ID)
		require.NoError(t, err)
		assert.False(t, got.Required)
		assert.Nil(t, got.Pattern)
	})

	t.Run("Unchanged", func(t *testing.T) {
		same := Field{Name: "lastName", Type: "text"}
		assert.NoError(t, store.Update(ctx, second.ID, &same))
	})

	t.Run("Duplicate", func(t *testing.T) {
		clash := Field{Name: "lastName", Type: "text"}
		assert.ErrorIs(t, store.Update(ctx, first.ID, &clash), ErrDuplicateField)
	})

	t.Run("NotFound", func(t *testing.T) {
		ghost := Field{Name: "ghost", Type: "text"}
		assert.ErrorIs(t, store.Update(ctx, 9999, &ghost), ErrFieldNotFound)
	})
}

func TestGormFieldStore_Delete(t *testing.T) {
	store := NewGormFieldStore(dbconn.NewTestDB(t))
	ctx := context.Background()

	field := Field{Name: "dob", Type: "date"}
	require.NoError(t, store.Create(ctx, &field))

	require.NoError(t, store.Delete(ctx, field.ID))
	got, err := store.Get(ctx, field.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.NoError(t, store.Delete(ctx, field.ID), "deleting twice is not an error")
}

func TestGormFieldStore_FindByNames(t *testing.T) {
	db := dbconn.NewTestDB(t)
	require.NoError(t, dbconn.Seed(context.Background(), db))
	store := NewGormFieldStore(db)
	ctx := context.Background()

	fields, err := store.FindByNames(ctx, []string{"email", "dob", "unknown"})
	require.NoError(t, err)
	require.Len(t, fields, 2)
	names := []string{fields[0].Name, fields[1].Name}
	assert.ElementsMatch(t, []string{"email", "dob"}, names)

	empty, err := store.FindByNames(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestIsDuplicateKeyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm translated", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), true},
		{"pg error code", &pgconn.PgError{Code: "23505", Message: "dup"}, true},
		{"pg other code", &pgconn.PgError{Code: "23503", Message: "fk"}, false},
		{"postgres message", errors.New(`ERROR: duplicate key value violates unique constraint "idx_fields_name"`), true},
		{"mysql message", errors.New("Error 1062: Duplicate entry 'email' for key 'idx_fields_name'"), true},
		{"sqlite message", errors.New("UNIQUE constraint failed: fields.name"), true},
		{"sqlserver message", errors.New("Cannot insert duplicate key row in object 'dbo.fields'"), true},
		{"other", errors.New("database is locked"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isDuplicateKeyError(tt.err))
		})
	}
}

func TestFieldConversions(t *testing.T) {
	f := Field{ID: 3, Name: "g", Type: "group", Fields: []int64{1, 2}}
	rec := fieldToRecord(&f)
	assert.Equal(t, models.FieldIDList{1, 2}, rec.Fields)

	back := fieldFromRecord(&models.FieldRecord{ID: 3, Name: "g", Type: "group"})
	assert.Equal(t, []int64{}, back.Fields, "nil lists surface as empty")
}
