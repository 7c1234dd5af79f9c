package session_test

import (
	"fmt"
	"sync"
	"testing"

	"ssu-rag/internal/domain"
	"ssu-rag/internal/session"

	"github.com/stretchr/testify/assert"
)

func TestStore_GetOrCreate(t *testing.T) {
	store := session.NewStore()

	h1 := store.GetOrCreate("s1")
	h2 := store.GetOrCreate("s1")
	assert.Same(t, h1, h2)
	assert.Equal(t, 1, store.Len())

	store.GetOrCreate("s2")
	assert.Equal(t, 2, store.Len())
}

func TestStore_Seed_DropsInvalidEntries(t *testing.T) {
	store := session.NewStore()

	stored := store.Seed("s1", []domain.Turn{
		{Role: domain.RoleUser, Content: "hi"},
		{Role: domain.RoleAssistant, Content: ""},
		{Role: domain.RoleAssistant, Content: "   "},
		{Role: "system", Content: "ignored role"},
	})

	assert.Equal(t, 1, stored)
	turns := store.Snapshot("s1")
	assert.Len(t, turns, 1)
	assert.Equal(t, domain.RoleUser, turns[0].Role)
	assert.Equal(t, "hi", turns[0].Content)
}

func TestStore_Seed_AllInvalidCreatesNothing(t *testing.T) {
	store := session.NewStore()

	stored := store.Seed("s1", []domain.Turn{
		{Role: domain.RoleUser, Content: "  "},
	})

	assert.Equal(t, 0, stored)
	assert.Equal(t, 0, store.Len())
}

func TestStore_Append_Order(t *testing.T) {
	store := session.NewStore()

	assert.True(t, store.Append("s1", domain.RoleUser, "first"))
	assert.True(t, store.Append("s1", domain.RoleAssistant, "second"))
	assert.False(t, store.Append("s1", domain.RoleUser, " "))

	turns := store.Snapshot("s1")
	assert.Len(t, turns, 2)
	assert.Equal(t, "first", turns[0].Content)
	assert.Equal(t, "second", turns[1].Content)
}

func TestStore_AppendExchange_Atomic(t *testing.T) {
	store := session.NewStore()

	store.AppendExchange("s1", "question", "answer")

	turns := store.Snapshot("s1")
	assert.Len(t, turns, 2)
	assert.Equal(t, domain.RoleUser, turns[0].Role)
	assert.Equal(t, domain.RoleAssistant, turns[1].Role)
}

func TestStore_AppendExchange_ConcurrentPairsNeverTear(t *testing.T) {
	store := session.NewStore()

	const writers = 8
	const exchanges = 25
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < exchanges; i++ {
				q := fmt.Sprintf("q-%d-%d", w, i)
				store.AppendExchange("shared", q, "a-"+q)
			}
		}(w)
	}
	wg.Wait()

	turns := store.Snapshot("shared")
	assert.Len(t, turns, writers*exchanges*2)
	for i := 0; i < len(turns); i += 2 {
		assert.Equal(t, domain.RoleUser, turns[i].Role)
		assert.Equal(t, domain.RoleAssistant, turns[i+1].Role)
		assert.Equal(t, "a-"+turns[i].Content, turns[i+1].Content)
	}
}

func TestStore_MaxTurns_DropsOldest(t *testing.T) {
	store := session.NewStore(session.WithMaxTurns(4))

	for i := 1; i <= 4; i++ {
		store.AppendExchange("s1", fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}

	turns := store.Snapshot("s1")
	assert.Len(t, turns, 4)
	assert.Equal(t, "q3", turns[0].Content)
	assert.Equal(t, "a4", turns[3].Content)
}

func TestStore_Snapshot_UnknownSession(t *testing.T) {
	store := session.NewStore()
	assert.Empty(t, store.Snapshot("missing"))
	assert.Equal(t, 0, store.Len())
}

func TestStore_Snapshot_IsACopy(t *testing.T) {
	store := session.NewStore()
	store.Append("s1", domain.RoleUser, "hello")

	turns := store.Snapshot("s1")
	turns[0].Content = "mutated"

	assert.Equal(t, "hello", store.Snapshot("s1")[0].Content)
}
