package suite

import (
	"fmt"
	"strconv"
	"strings"

	"morphtest/internal/core"
	"morphtest/internal/i18n"
)

// Block is one (group, direction) pair of one suite, the unit of test
// selection.
type Block struct {
	Suite     int
	Group     string
	Direction core.Direction
}

// Title is "<group> (<direction label>)".
func (b Block) Title(loc *i18n.Localizer) string {
	return fmt.Sprintf("%s (%s)", b.Group, loc.Direction(string(b.Direction)))
}

// FilterDirection keeps only cases of dir and drops suites left empty. An
// empty dir keeps everything.
func FilterDirection(loaded []Loaded, dir core.Direction) []Loaded {
	var out []Loaded
	for _, l := range loaded {
		if dir != "" {
			kept := make([]core.TestCase, 0, len(l.Suite.Cases))
			for _, c := range l.Suite.Cases {
				if c.Direction == dir {
					kept = append(kept, c)
				}
			}
			l.Suite.Cases = kept
		}
		if len(l.Suite.Cases) > 0 {
			out = append(out, l)
		}
	}
	return out
}

// Blocks lists blocks in encounter order across all suites.
func Blocks(loaded []Loaded) []Block {
	var out []Block
	for si, l := range loaded {
		seen := map[Block]bool{}
		for _, c := range l.Suite.Cases {
			b := Block{Suite: si, Group: c.Group(), Direction: c.Direction}
			if !seen[b] {
				seen[b] = true
				out = append(out, b)
			}
		}
	}
	return out
}

// IsListRequest reports whether a selection asks for the block listing.
func IsListRequest(sel string) bool {
	switch strings.ToLower(strings.TrimSpace(sel)) {
	case "0", "null", "list", "liste":
		return true
	default:
		return false
	}
}

// Listing renders the numbered block list, one line per block.
func Listing(blocks []Block, loc *i18n.Localizer) []string {
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = loc.T(i18n.TestListItem, i+1, b.Title(loc))
	}
	return out
}

// SelectionError is returned when a selection matches no block.
type SelectionError struct {
	Message string
}

func (e *SelectionError) Error() string { return e.Message }

// Choose resolves a selection: a 1-based block number, a full block title,
// or a group name matching every direction of that group.
func Choose(blocks []Block, sel string, loc *i18n.Localizer) ([]Block, error) {
	if len(blocks) == 0 {
		return nil, &SelectionError{Message: loc.T(i18n.ErrNoTestsAfterFilter)}
	}
	sel = strings.TrimSpace(sel)
	if n, err := strconv.Atoi(sel); err == nil {
		if n < 1 || n > len(blocks) {
			return nil, &SelectionError{Message: loc.T(i18n.ErrInvalidTestNumber, n, len(blocks))}
		}
		return []Block{blocks[n-1]}, nil
	}
	var out []Block
	for _, b := range blocks {
		if b.Title(loc) == sel {
			out = append(out, b)
		}
	}
	if len(out) == 0 {
		for _, b := range blocks {
			if b.Group == sel {
				out = append(out, b)
			}
		}
	}
	if len(out) == 0 {
		return nil, &SelectionError{Message: loc.T(i18n.ErrTestNotFound, sel)}
	}
	return out, nil
}

// Restrict keeps only the cases of the chosen blocks and drops empty suites.
func Restrict(loaded []Loaded, chosen []Block) []Loaded {
	allowed := map[Block]bool{}
	for _, b := range chosen {
		allowed[b] = true
	}
	var out []Loaded
	for si, l := range loaded {
		kept := make([]core.TestCase, 0, len(l.Suite.Cases))
		for _, c := range l.Suite.Cases {
			if allowed[Block{Suite: si, Group: c.Group(), Direction: c.Direction}] {
				kept = append(kept, c)
			}
		}
		if len(kept) > 0 {
			l.Suite.Cases = kept
			out = append(out, l)
		}
	}
	return out
}
