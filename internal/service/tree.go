package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sardorbek/referral_bot/internal/models"
)

func (s *Service) GetChildren(ctx context.Context, id int64) ([]*models.Member, error) {
	return s.repo.GetChildren(ctx, id)
}

// AncestorChain walks the referrer links upward starting at the direct
// referrer, stopping after maxDepth hops or at a member with no referrer.
func (s *Service) AncestorChain(ctx context.Context, id int64, maxDepth int) ([]*models.Member, error) {
	member, err := s.repo.GetMember(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}

	chain := make([]*models.Member, 0, maxDepth)
	current := member
	for len(chain) < maxDepth && current.ReferrerID != nil {
		next, err := s.repo.GetMember(ctx, nil, *current.ReferrerID)
		if err != nil {
			return nil, err
		}
		if next == nil {
			break
		}
		chain = append(chain, next)
		current = next
	}
	return chain, nil
}

// CountDescendants counts the whole subtree below a member, breadth-first.
// The visited set guards against a degenerate cycle in the referrer edges,
// which cannot arise through registration but must not hang the walk.
func (s *Service) CountDescendants(ctx context.Context, id int64) (int, error) {
	total := 0
	visited := map[int64]bool{}
	queue := []int64{id}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		children, err := s.repo.ListChildIDs(ctx, current)
		if err != nil {
			return 0, err
		}
		for _, child := range children {
			total++
			queue = append(queue, child)
		}
	}
	return total, nil
}

// RenderTree produces a display-ready indented tree of the member's downline,
// depth-first, capped at maxDepth levels. Siblings keep creation order; the
// last child gets the closing connector and its subtree is padded with
// blanks instead of the vertical bar.
func (s *Service) RenderTree(ctx context.Context, rootID int64, maxDepth int) (string, error) {
	var lines []string

	var walk func(id int64, depth int, prefix string) error
	walk = func(id int64, depth int, prefix string) error {
		children, err := s.repo.GetChildren(ctx, id)
		if err != nil {
			return err
		}
		for i, child := range children {
			branch, childPrefix := "├── ", prefix+"│   "
			if i == len(children)-1 {
				branch, childPrefix = "└── ", prefix+"    "
			}
			lines = append(lines, fmt.Sprintf("%s%s%s (ID:%d)", prefix, branch, memberLabel(child), child.ID))
			if depth+1 < maxDepth {
				if err := walk(child.ID, depth+1, childPrefix); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := walk(rootID, 0, ""); err != nil {
		return "", err
	}
	return strings.Join(lines, "\n"), nil
}

func memberLabel(m *models.Member) string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return fmt.Sprintf("ID:%d", m.ID)
}
