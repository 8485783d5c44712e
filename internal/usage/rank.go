package usage

// Identifiable is implemented by anything with a stable tool id.
type Identifiable interface {
	ID() string
}

// Rank reorders tools by the state's ranking. See RankFunc.
func Rank[T Identifiable](tools []T, s State) []T {
	return RankFunc(tools, s, func(t T) string { return t.ID() })
}

// RankFunc returns tools with ranked ids first, in rank order, followed by
// every untracked tool in its original relative order.
//
// Tools are never dropped, duplicated or invented, and the input slice is not
// modified. With an empty ranking the input slice itself is returned.
func RankFunc[T any](tools []T, s State, idOf func(T) string) []T {
	if len(s.rankedIDs) == 0 {
		return tools
	}

	// First occurrence wins so that a duplicate id still appears exactly once
	// in the ranked section and once in the tail.
	index := make(map[string]int, len(tools))
	for i, t := range tools {
		id := idOf(t)
		if _, ok := index[id]; !ok {
			index[id] = i
		}
	}

	placed := make([]bool, len(tools))
	out := make([]T, 0, len(tools))

	for _, id := range s.rankedIDs {
		i, ok := index[id]
		if !ok || placed[i] {
			continue
		}
		out = append(out, tools[i])
		placed[i] = true
	}

	for i, t := range tools {
		if !placed[i] {
			out = append(out, t)
		}
	}

	return out
}
