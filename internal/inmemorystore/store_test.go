package inmemorystore

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndReadTables(t *testing.T) {
	s := New()

	_, ok := s.Table("ItemData")
	assert.False(t, ok)

	require.NoError(t, s.WriteTable("ItemData", "1@@SingleAlly\n"))
	require.NoError(t, s.WriteLocalized(2, "Items", "Hoja@@Cura.\n"))

	blob, ok := s.Table("ItemData")
	require.True(t, ok)
	assert.Equal(t, "1@@SingleAlly\n", blob)

	blob, ok = s.Localized(2, "Items")
	require.True(t, ok)
	assert.Equal(t, "Hoja@@Cura.\n", blob)

	_, ok = s.Localized(0, "Items")
	assert.False(t, ok)

	assert.Equal(t, []string{"Data/Dialogues2/Items.txt", "Data/ItemData.txt"}, s.Paths())
}

func TestLaterWriteReplacesEarlier(t *testing.T) {
	s := New()
	require.NoError(t, s.WriteTable("CardOrder", "0\n"))
	require.NoError(t, s.WriteTable("CardOrder", "0\n1\n"))

	blob, _ := s.Table("CardOrder")
	assert.Equal(t, "0\n1\n", blob)
	assert.Len(t, s.Paths(), 1)
}

func TestConcurrentWrites(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.WriteLocalized(i, "Music", fmt.Sprintf("track %d", i))
			_ = s.Paths()
		}()
	}
	wg.Wait()

	assert.Len(t, s.Paths(), 50)
	blob, ok := s.Localized(49, "Music")
	require.True(t, ok)
	assert.Equal(t, "track 49", blob)
}
