package game

import (
	"fmt"
	"slices"
	"strings"

	"github.com/victornm/tutormate/internal/domain"
)

// Catalog is the ordered, fixed game rotation. The position of a definition
// decides which windows it is served in, so catalogs must only ever grow at
// the end; reordering or removing entries remaps every future window.
type Catalog struct {
	games []domain.GameDefinition
}

// NewCatalog builds a catalog, rejecting empty or malformed definitions.
func NewCatalog(defs ...domain.GameDefinition) (*Catalog, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("catalog: no games")
	}

	seen := make(map[string]int, len(defs))
	for i, d := range defs {
		if d.ID == "" {
			return nil, fmt.Errorf("catalog: game #%d has no id", i)
		}
		if j, ok := seen[d.ID]; ok {
			return nil, fmt.Errorf("catalog: duplicate id %q at #%d and #%d", d.ID, j, i)
		}
		seen[d.ID] = i

		if err := check(d); err != nil {
			return nil, fmt.Errorf("catalog: game %q: %w", d.ID, err)
		}
	}

	return &Catalog{games: slices.Clone(defs)}, nil
}

// MustCatalog is NewCatalog for static data; it panics on error.
func MustCatalog(defs ...domain.GameDefinition) *Catalog {
	c, err := NewCatalog(defs...)
	if err != nil {
		panic(err)
	}
	return c
}

func check(d domain.GameDefinition) error {
	switch d.Kind {
	case domain.GameKindMCQSet:
		if len(d.Items) == 0 {
			return fmt.Errorf("multiple-choice set has no questions")
		}
		for i, q := range d.Items {
			if !slices.Contains(q.Options, q.Correct) {
				return fmt.Errorf("question %d: correct answer %q is not an option", i, q.Correct)
			}
		}

	case domain.GameKindLogicPuzzle:
		if strings.TrimSpace(d.Answer) == "" {
			return fmt.Errorf("missing answer")
		}
		if len(d.Options) > 0 && !slices.Contains(d.Options, d.Answer) {
			return fmt.Errorf("answer %q is not an option", d.Answer)
		}

	case domain.GameKindShapeCount, domain.GameKindWordScramble, domain.GameKindSentenceBuilder:
		if strings.TrimSpace(d.Answer) == "" {
			return fmt.Errorf("missing answer")
		}

	default:
		return fmt.Errorf("unknown kind %q", d.Kind)
	}

	return nil
}

// Len returns the number of games in the rotation.
func (c *Catalog) Len() int {
	return len(c.games)
}

// At returns the game served in window id. Negative ids wrap like positive ones.
func (c *Catalog) At(windowID int64) domain.GameDefinition {
	n := int64(len(c.games))
	i := windowID % n
	if i < 0 {
		i += n
	}
	return c.games[i]
}

// Games returns a copy of the rotation in order.
func (c *Catalog) Games() []domain.GameDefinition {
	return slices.Clone(c.games)
}
