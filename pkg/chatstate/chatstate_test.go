package chatstate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/haivivi/splittyping/pkg/kv"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mem := kv.NewMemory()
	t.Cleanup(func() { mem.Close() })
	s := New(mem)
	s.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	return s
}

func TestChatID_Key(t *testing.T) {
	c := ChatID{Type: TypeGroup, ID: "10001"}
	require.Equal(t, "group_10001", c.Key())
	require.Equal(t, "group_10001", c.String())
}

func TestStore_DefaultsAndToggle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	c := ChatID{Type: TypePerson, ID: "42"}

	on, err := s.Enabled(ctx, c)
	require.NoError(t, err)
	require.False(t, on, "unknown chat should be disabled")

	require.NoError(t, s.EnsureDefault(ctx, c))
	on, err = s.Enabled(ctx, c)
	require.NoError(t, err)
	require.True(t, on)

	require.NoError(t, s.Disable(ctx, c))
	require.NoError(t, s.EnsureDefault(ctx, c))
	on, err = s.Enabled(ctx, c)
	require.NoError(t, err)
	require.False(t, on, "EnsureDefault must not override an explicit disable")

	rec, ok, err := s.Get(ctx, c)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, c, rec.Chat)
	require.True(t, rec.UpdatedAt.Equal(s.now()))
}

func TestStore_PersonAndGroupDoNotCollide(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Enable(ctx, ChatID{Type: TypeGroup, ID: "1"}))
	require.NoError(t, s.Disable(ctx, ChatID{Type: TypePerson, ID: "1"}))

	on, err := s.Enabled(ctx, ChatID{Type: TypeGroup, ID: "1"})
	require.NoError(t, err)
	require.True(t, on)
	on, err = s.Enabled(ctx, ChatID{Type: TypePerson, ID: "1"})
	require.NoError(t, err)
	require.False(t, on)
}

func TestStore_HandleCommand(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	c := ChatID{Type: TypeGroup, ID: "g1"}

	reply, handled, err := s.HandleCommand(ctx, c, "今天天气怎么样")
	require.NoError(t, err)
	require.False(t, handled)
	require.Empty(t, reply)
	on, _ := s.Enabled(ctx, c)
	require.True(t, on, "first contact enables splitting")

	reply, handled, err = s.HandleCommand(ctx, c, CommandDisable)
	require.NoError(t, err)
	require.True(t, handled)
	require.Equal(t, ReplyDisabled, reply)
	on, _ = s.Enabled(ctx, c)
	require.False(t, on)

	reply, handled, err = s.HandleCommand(ctx, c, " "+CommandEnable+"\n")
	require.NoError(t, err)
	require.True(t, handled)
	require.Equal(t, ReplyEnabled, reply)
	on, _ = s.Enabled(ctx, c)
	require.True(t, on)
}

func TestStore_List(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Enable(ctx, ChatID{Type: TypePerson, ID: "b"}))
	require.NoError(t, s.Disable(ctx, ChatID{Type: TypeGroup, ID: "a"}))

	recs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, ChatID{Type: TypeGroup, ID: "a"}, recs[0].Chat)
	require.False(t, recs[0].Enabled)
	require.Equal(t, ChatID{Type: TypePerson, ID: "b"}, recs[1].Chat)
	require.True(t, recs[1].Enabled)
}

func TestStore_CorruptRecord(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	s := New(mem)
	c := ChatID{Type: TypePerson, ID: "x"}
	require.NoError(t, mem.Set(ctx, recordKey(c), []byte{0xc1}))

	_, err := s.Enabled(ctx, c)
	require.Error(t, err)
}
