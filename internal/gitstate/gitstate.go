// Package gitstate checks the git working tree a migration is about to write
// into.
package gitstate

import (
	"sort"

	"github.com/go-git/go-git/v5"

	"github.com/teranos/plugmig/errors"
)

// State describes the working tree containing a directory.
type State struct {
	Repository bool     // false when the directory is not inside a git repository
	Root       string   // worktree root when Repository is true
	Dirty      []string // modified, staged or untracked paths, sorted
}

// Clean reports whether there is nothing uncommitted.
func (s State) Clean() bool { return len(s.Dirty) == 0 }

// Inspect opens the repository containing dir and collects its status.
func Inspect(dir string) (State, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return State{}, nil
	}
	if err != nil {
		return State{}, errors.Wrapf(err, "failed to open git repository at %s", dir)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return State{}, errors.Wrap(err, "failed to open worktree")
	}

	status, err := wt.Status()
	if err != nil {
		return State{}, errors.Wrap(err, "failed to read worktree status")
	}

	state := State{Repository: true, Root: wt.Filesystem.Root()}
	for path, fs := range status {
		if fs.Staging != git.Unmodified || fs.Worktree != git.Unmodified {
			state.Dirty = append(state.Dirty, path)
		}
	}
	sort.Strings(state.Dirty)
	return state, nil
}

// RequireClean fails when dir is inside a repository with uncommitted changes.
// A directory outside any repository passes; there is nothing to compare with.
func RequireClean(dir string) (State, error) {
	state, err := Inspect(dir)
	if err != nil {
		return state, err
	}
	if !state.Clean() {
		err := errors.Newf("working tree %s has %d uncommitted change(s)", state.Root, len(state.Dirty))
		err = errors.WithDetailf(err, "first: %s", state.Dirty[0])
		return state, errors.WithHint(err, "commit or stash your changes, or pass --allow-dirty")
	}
	return state, nil
}
