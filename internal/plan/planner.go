// Package plan turns a rule set and the live conflict state into an ordered
// list of actions.
package plan

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gobwas/glob"
	"github.com/rs/zerolog"

	"github.com/corpeningc/reconcile/internal/actions"
	"github.com/corpeningc/reconcile/internal/git"
	"github.com/corpeningc/reconcile/internal/logging"
)

// Rules are the glob lists a plan is built from. Declaration order matters:
// actions come out in the order their globs are listed.
type Rules struct {
	DeleteFileGlobs []string
	// OurFiles are paths where our side always wins.
	OurFiles []string
	// AcceptTheirDeletions are paths where a deletion by the incoming side is
	// accepted.
	AcceptTheirDeletions []string
}

type Planner struct {
	repo   *git.GitRepo
	fsys   fs.FS
	rules  Rules
	logger zerolog.Logger
}

// New returns a planner that expands delete globs against fsys, which must be
// rooted at the repository work dir.
func New(repo *git.GitRepo, fsys fs.FS, rules Rules) *Planner {
	return &Planner{
		repo:   repo,
		fsys:   fsys,
		rules:  rules,
		logger: logging.GetLogger("planner"),
	}
}

// Plan reads the status and builds the full action list: glob deletions
// first, then conflict resolutions. Any error aborts the whole plan.
func (p *Planner) Plan(ctx context.Context) ([]actions.Action, error) {
	records, err := p.repo.ConflictRecords(ctx)
	if err != nil {
		return nil, err
	}
	p.logger.Debug().Int("records", len(records)).Msg("Parsed status")

	deletions, err := p.GlobDeletions()
	if err != nil {
		return nil, err
	}

	conflicts, err := p.ConflictActions(records)
	if err != nil {
		return nil, err
	}

	return append(deletions, conflicts...), nil
}

// GlobDeletions yields one Delete per existing path matched by each delete
// glob. A matched directory is skipped when deeper matches exist under it.
func (p *Planner) GlobDeletions() ([]actions.Action, error) {
	var result []actions.Action
	for _, pattern := range p.rules.DeleteFileGlobs {
		pattern = strings.TrimPrefix(pattern, "./")

		matches, err := doublestar.Glob(p.fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("expand delete glob %q: %w", pattern, err)
		}
		matches = deepestMatches(matches)

		p.logger.Debug().Str("glob", pattern).Int("matches", len(matches)).Msg("Expanded delete glob")
		for _, m := range matches {
			result = append(result, actions.NewDelete(p.repo, m))
		}
	}
	return result, nil
}

// ConflictActions maps each record through the ourFiles rules and then the
// acceptTheirDeletions rules. Every matching glob contributes its own action.
func (p *Planner) ConflictActions(records []git.ConflictRecord) ([]actions.Action, error) {
	ourFiles, err := CompileRules(p.rules.OurFiles)
	if err != nil {
		return nil, err
	}
	acceptTheirDeletions, err := CompileRules(p.rules.AcceptTheirDeletions)
	if err != nil {
		return nil, err
	}

	var result []actions.Action
	for _, r := range records {
		restored := false
		for _, g := range ourFiles {
			if g.Match(r.Path) && r.TouchedByUs() {
				result = append(result, actions.NewRestoreOurs(p.repo, r.Path, r.DeletedByUs()))
				restored = true
			}
		}

		for _, g := range acceptTheirDeletions {
			if g.Match(r.Path) && r.DeletedByThem() {
				if restored {
					p.logger.Warn().
						Str("path", r.Path).
						Msg("Path matches both ourFiles and acceptTheirDeletions; both actions are planned")
				}
				result = append(result, actions.NewDelete(p.repo, r.Path))
			}
		}
	}
	return result, nil
}

// CompileRules compiles conflict rule globs with shell-style semantics: the
// pattern must match the whole path and "*" also matches "/".
func CompileRules(patterns []string) ([]glob.Glob, error) {
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compile conflict glob %q: %w", pattern, err)
		}
		compiled = append(compiled, g)
	}
	return compiled, nil
}

// deepestMatches drops every match that is a parent directory of another
// match, keeping the original order.
func deepestMatches(matches []string) []string {
	if len(matches) < 2 {
		return matches
	}

	// With "/" ordered below every other byte, a directory's descendants sort
	// directly after it.
	keys := make([]string, len(matches))
	for i, m := range matches {
		keys[i] = strings.ReplaceAll(m, "/", "\x00")
	}
	sort.Strings(keys)

	covered := make(map[string]struct{})
	for i := 0; i+1 < len(keys); i++ {
		if strings.HasPrefix(keys[i+1], keys[i]+"\x00") {
			covered[strings.ReplaceAll(keys[i], "\x00", "/")] = struct{}{}
		}
	}
	if len(covered) == 0 {
		return matches
	}

	kept := make([]string, 0, len(matches)-len(covered))
	for _, m := range matches {
		if _, ok := covered[m]; !ok {
			kept = append(kept, m)
		}
	}
	return kept
}
