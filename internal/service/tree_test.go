package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAncestorChain(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	registerChain(t, s, 1, 2, 3, 4)

	chain, err := s.AncestorChain(ctx, 4, 2)
	require.NoError(t, err)
	require.Len(t, chain, 2)
	require.Equal(t, int64(3), chain[0].ID)
	require.Equal(t, int64(2), chain[1].ID)

	chain, err = s.AncestorChain(ctx, 4, 10)
	require.NoError(t, err)
	require.Len(t, chain, 3)
	require.Equal(t, int64(1), chain[2].ID)

	chain, err = s.AncestorChain(ctx, 1, 10)
	require.NoError(t, err)
	require.Empty(t, chain)

	_, err = s.AncestorChain(ctx, 999, 10)
	require.ErrorIs(t, err, ErrMemberNotFound)
}

func TestGetChildrenCreationOrder(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	registerChain(t, s, 1)

	for _, id := range []int64{5, 3, 9} {
		created, err := s.RegisterMember(ctx, id, "", ref(1))
		require.NoError(t, err)
		require.True(t, created)
	}

	children, err := s.GetChildren(ctx, 1)
	require.NoError(t, err)
	require.Len(t, children, 3)

	// Creation order, not id order.
	ids := []int64{children[0].ID, children[1].ID, children[2].ID}
	require.Equal(t, []int64{5, 3, 9}, ids)

	children, err = s.GetChildren(ctx, 9)
	require.NoError(t, err)
	require.Empty(t, children)
}

func TestCountDescendants(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	//        1
	//       / \
	//      2   3
	//     / \   \
	//    4   5   6
	registerChain(t, s, 1)
	for _, edge := range [][2]int64{{1, 2}, {1, 3}, {2, 4}, {2, 5}, {3, 6}} {
		created, err := s.RegisterMember(ctx, edge[1], "", ref(edge[0]))
		require.NoError(t, err)
		require.True(t, created)
	}

	total, err := s.CountDescendants(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 5, total)

	total, err = s.CountDescendants(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, 2, total)

	total, err = s.CountDescendants(ctx, 6)
	require.NoError(t, err)
	require.Equal(t, 0, total)
}

func TestRenderTreeConnectors(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	registerChain(t, s, 1)
	for _, m := range []struct {
		id       int64
		name     string
		referrer int64
	}{
		{2, "X", 1},
		{3, "Y", 1},
		{4, "XG", 2},
		{5, "YG", 3},
	} {
		created, err := s.RegisterMember(ctx, m.id, m.name, ref(m.referrer))
		require.NoError(t, err)
		require.True(t, created)
	}

	tree, err := s.RenderTree(ctx, 1, 5)
	require.NoError(t, err)

	lines := strings.Split(tree, "\n")
	require.Equal(t, []string{
		"├── X (ID:2)",
		"│   └── XG (ID:4)",
		"└── Y (ID:3)",
		"    └── YG (ID:5)",
	}, lines)
}

func TestRenderTreeDepthCap(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	registerChain(t, s, 1, 2, 3, 4)

	tree, err := s.RenderTree(ctx, 1, 2)
	require.NoError(t, err)
	lines := strings.Split(tree, "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "ID:2")
	require.Contains(t, lines[1], "ID:3")
	require.NotContains(t, tree, "ID:4")
}

func TestRenderTreeEmpty(t *testing.T) {
	s := newTestService(t)
	registerChain(t, s, 1)

	tree, err := s.RenderTree(context.Background(), 1, 5)
	require.NoError(t, err)
	require.Empty(t, tree)
}

func TestRenderTreeUnnamedMemberFallsBackToID(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	registerChain(t, s, 1)
	created, err := s.RegisterMember(ctx, 2, "", ref(1))
	require.NoError(t, err)
	require.True(t, created)

	tree, err := s.RenderTree(ctx, 1, 5)
	require.NoError(t, err)
	require.Equal(t, "└── ID:2 (ID:2)", tree)
}
