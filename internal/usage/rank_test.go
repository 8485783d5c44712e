package usage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTool struct {
	id   string
	name string
}

func (f fakeTool) ID() string { return f.id }

func toolIDs(tools []fakeTool) []string {
	ids := make([]string, len(tools))
	for i, t := range tools {
		ids[i] = t.id
	}
	return ids
}

func catalog(ids ...string) []fakeTool {
	tools := make([]fakeTool, len(ids))
	for i, id := range ids {
		tools[i] = fakeTool{id: id, name: "Tool " + id}
	}
	return tools
}

func TestRank_EmptyRankingIsIdentity(t *testing.T) {
	tools := catalog("c", "a", "b")

	got := Rank(tools, NewState())

	require.Equal(t, toolIDs(tools), toolIDs(got))
	// Same backing array: no copy is made without ranking information.
	require.Same(t, &tools[0], &got[0])
}

func TestRank_RankedFirstThenOriginalOrder(t *testing.T) {
	s := useN(t, NewState(), "d", 3, FixedClock(testNow))
	s = useN(t, s, "b", 1, FixedClock(testNow))

	got := Rank(catalog("a", "b", "c", "d", "e"), s)

	assert.Equal(t, []string{"d", "b", "a", "c", "e"}, toolIDs(got))
}

func TestRank_SkipsRankedIDsWithoutTool(t *testing.T) {
	s := useN(t, NewState(), "removed", 5, FixedClock(testNow))
	s = useN(t, s, "b", 1, FixedClock(testNow))

	got := Rank(catalog("a", "b"), s)

	assert.Equal(t, []string{"b", "a"}, toolIDs(got))
}

func TestRank_NeverDropsOrInventsTools(t *testing.T) {
	s := NewState()
	for i, id := range []string{"x", "y", "z", "ghost"} {
		s = useN(t, s, id, i+1, FixedClock(testNow))
	}

	inputs := [][]fakeTool{
		catalog(),
		catalog("a"),
		catalog("z", "a", "x"),
		catalog("a", "b", "c", "x", "y", "z"),
	}

	for _, tools := range inputs {
		got := Rank(tools, s)
		assert.ElementsMatch(t, toolIDs(tools), toolIDs(got))
	}
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	s := useN(t, NewState(), "c", 2, FixedClock(testNow))
	tools := catalog("a", "b", "c")

	_ = Rank(tools, s)

	assert.Equal(t, []string{"a", "b", "c"}, toolIDs(tools))
}

func TestRank_DuplicateInputIDsKept(t *testing.T) {
	s := useN(t, NewState(), "a", 1, FixedClock(testNow))
	tools := []fakeTool{{id: "a", name: "first"}, {id: "b"}, {id: "a", name: "second"}}

	got := Rank(tools, s)

	require.Len(t, got, 3)
	assert.Equal(t, "first", got[0].name)
	assert.Equal(t, []string{"a", "b", "a"}, toolIDs(got))
}

func TestRankFunc_Strings(t *testing.T) {
	s := useN(t, NewState(), "hash-sha256", 2, FixedClock(testNow))

	got := RankFunc([]string{"base64-encode", "hash-sha256"}, s, func(id string) string { return id })

	assert.Equal(t, []string{"hash-sha256", "base64-encode"}, got)
}
