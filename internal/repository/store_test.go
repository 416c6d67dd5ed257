package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/wordbook/internal/database"
	"github.com/iliyamo/wordbook/internal/model"
)

func TestTableSpec_Validate(t *testing.T) {
	tests := []struct {
		name    string
		spec    TableSpec
		wantErr bool
	}{
		{name: "defaults", spec: TableSpec{Database: "grand_tour", Table: "words"}},
		{name: "with replicas", spec: TableSpec{Database: "db1", Table: "Words_2", Replicas: 3}},
		{name: "empty database", spec: TableSpec{Table: "words"}, wantErr: true},
		{name: "backtick", spec: TableSpec{Database: "grand_tour", Table: "wo`rds"}, wantErr: true},
		{name: "dot", spec: TableSpec{Database: "grand.tour", Table: "words"}, wantErr: true},
		{name: "too long", spec: TableSpec{Database: "grand_tour", Table: string(make([]byte, 65))}, wantErr: true},
		{name: "negative replicas", spec: TableSpec{Database: "grand_tour", Table: "words", Replicas: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewWordStore(t *testing.T) {
	t.Run("invalid table spec", func(t *testing.T) {
		spec := &database.ConnSpec{Backend: database.BackendMongo, Scheme: "mongodb", Host: "localhost", Port: 27017}
		_, err := NewWordStore(context.Background(), spec, TableSpec{}, zap.NewNop())
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unsupported backend", func(t *testing.T) {
		spec := &database.ConnSpec{Backend: "couchdb", Scheme: "couchdb", Host: "localhost", Port: 5984}
		_, err := NewWordStore(context.Background(), spec, testTable, zap.NewNop())
		assert.ErrorIs(t, err, ErrValidation)
		assert.ErrorIs(t, err, database.ErrUnsupportedScheme)
	})
}

func TestSortEntries(t *testing.T) {
	entries := []model.WordEntry{
		{ID: "1", Word: "banana", Definition: "b"},
		{ID: "2", Word: "apple", Definition: "c"},
		{ID: "3", Word: "Zebra", Definition: "a"},
		{ID: "4", Word: "apple", Definition: "a"},
	}

	sortEntries(entries, model.FieldWord)
	ids := func() []string {
		out := make([]string, 0, len(entries))
		for _, e := range entries {
			out = append(out, e.ID)
		}
		return out
	}
	// byte order puts upper case first; equal words keep insertion order
	require.Equal(t, []string{"3", "2", "4", "1"}, ids())

	sortEntries(entries, model.FieldDefinition)
	assert.Equal(t, []string{"3", "4", "1", "2"}, ids())
}

func TestCheckOrderField(t *testing.T) {
	assert.NoError(t, checkOrderField("list", model.FieldWord))
	assert.NoError(t, checkOrderField("list", model.FieldDefinition))
	assert.ErrorIs(t, checkOrderField("list", "id"), ErrValidation)
}
