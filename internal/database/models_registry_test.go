package database

import (
	"testing"

	modelspkg "skillswap/internal/models"

	"github.com/stretchr/testify/require"
)

func TestPersistentModels_IncludesConnectionEdge(t *testing.T) {
	found := false
	for _, model := range PersistentModels() {
		if _, ok := model.(*modelspkg.ConnectionEdge); ok {
			found = true
			break
		}
	}
	require.True(t, found, "PersistentModels should include ConnectionEdge")
}

func TestPersistentModels_CoversAllCollections(t *testing.T) {
	require.Len(t, PersistentModels(), 4)
}
