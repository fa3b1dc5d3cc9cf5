// Command quickdiff is a terminal diff viewer: `git diff`/a commit
// range/a pull request rendered side-by-side with syntax highlighting,
// hunk navigation, review comments, and a persistent viewed/unviewed
// state, per spec.md's CLI surface (§6).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fwojciec/quickdiff"
	"github.com/fwojciec/quickdiff/bubbletea"
	"github.com/fwojciec/quickdiff/buffer"
	"github.com/fwojciec/quickdiff/chroma"
	"github.com/fwojciec/quickdiff/clipboard"
	"github.com/fwojciec/quickdiff/comments"
	"github.com/fwojciec/quickdiff/config"
	"github.com/fwojciec/quickdiff/diffengine"
	"github.com/fwojciec/quickdiff/editor"
	"github.com/fwojciec/quickdiff/fs"
	"github.com/fwojciec/quickdiff/gh"
	"github.com/fwojciec/quickdiff/git"
	"github.com/fwojciec/quickdiff/gitdiff"
	"github.com/fwojciec/quickdiff/highlight"
	"github.com/fwojciec/quickdiff/lipgloss"
	"github.com/fwojciec/quickdiff/reviewstate"
	"github.com/fwojciec/quickdiff/watch"
)

// ErrNoChanges is returned when the resolved diff source has no changed
// files to show.
var ErrNoChanges = errors.New("no changes to display")

// Options captures the CLI surface spec.md §6 names: a positional
// REV/range, the -c/-b/-f/-t/--stdin/--pr flags, and the nested
// comments subcommand's arguments.
type Options struct {
	Rev          string
	Commit       string
	Base         string
	PatchFile    string
	Theme        string
	Stdin        bool
	PR           int
	PRSet        bool
	CommentsArgs []string
}

// ParseArgs parses args (os.Args[1:]) into Options.
func ParseArgs(args []string) (Options, error) {
	if len(args) > 0 && args[0] == "comments" {
		return Options{CommentsArgs: args[1:]}, nil
	}

	fset := flag.NewFlagSet("quickdiff", flag.ContinueOnError)
	fset.SetOutput(io.Discard)

	var opts Options
	fset.StringVar(&opts.Commit, "c", "", "show a single commit against its parent")
	fset.StringVar(&opts.Base, "b", "", "compare the working tree against the merge-base of this ref and HEAD")
	fset.StringVar(&opts.PatchFile, "f", "", "read a unified diff patch from this file instead of a repo")
	fset.StringVar(&opts.Theme, "t", "", "theme name (dark, light)")
	fset.BoolVar(&opts.Stdin, "stdin", false, "read a unified diff patch from stdin")
	pr := fset.Int("pr", 0, "review a pull request by number, or the one for the current branch if 0")

	// A bare --pr (no number after it) means 0; flag.Int alone would
	// reject it for lacking a value.
	normalized := make([]string, 0, len(args))
	for i, a := range args {
		if a == "--pr" || a == "-pr" {
			if i+1 >= len(args) {
				a += "=0"
			} else if _, err := strconv.Atoi(args[i+1]); err != nil {
				a += "=0"
			}
		}
		normalized = append(normalized, a)
	}
	if err := fset.Parse(normalized); err != nil {
		return Options{}, err
	}
	if prFlagSeen(args) {
		opts.PRSet = true
		opts.PR = *pr
	}
	if rest := fset.Args(); len(rest) > 0 {
		opts.Rev = rest[0]
	}
	return opts, nil
}

// prFlagSeen reports whether --pr was explicitly passed, since flag.Int
// can't distinguish "not passed" from "passed with its default" alone.
func prFlagSeen(args []string) bool {
	for _, a := range args {
		if a == "--pr" || a == "-pr" || strings.HasPrefix(a, "--pr=") || strings.HasPrefix(a, "-pr=") {
			return true
		}
	}
	return false
}

// App wires the resolved collaborators together for one invocation.
type App struct {
	Opts     Options
	RepoRoot string
	Cfg      config.Config
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
}

// Run resolves the diff source from Opts and either runs the comments
// subcommand or hands the changed files off to the interactive Viewer.
func (a *App) Run(ctx context.Context) error {
	if a.Opts.CommentsArgs != nil {
		return a.runComments(ctx)
	}

	changedSource, blobSource, err := a.resolveSource(ctx)
	if err != nil {
		return err
	}

	files, err := changedSource.ChangedFiles(ctx)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return ErrNoChanges
	}

	commentStore, err := comments.Load(a.RepoRoot)
	if err != nil {
		return err
	}
	reviewStore, err := reviewstate.Load(filepath.Join(fs.DefaultStateDir(), "state.json"))
	if err != nil {
		return err
	}

	theme := lipgloss.ThemeByName(a.themeName())
	tokenizer, err := chroma.NewTokenizer(chroma.StyleFromPalette(theme.Palette()))
	if err != nil {
		return err
	}
	builder := highlight.NewBuilder(tokenizer, chroma.NewDetector())

	var watcher quickdiff.Watcher
	if a.RepoRoot != "" {
		if w, werr := watch.New(a.RepoRoot); werr == nil {
			watcher = w
			defer func() { _ = w.Close() }()
		}
	}

	viewer := bubbletea.NewViewer(
		theme,
		builder,
		a.contextLines(),
		a.RepoRoot,
		commentStore,
		reviewStore,
		watcher,
		clipboard.New(),
		&editor.Launcher{Override: a.Cfg.Editor},
	)

	return viewer.View(ctx, files, blobSource)
}

func (a *App) themeName() string {
	if a.Opts.Theme != "" {
		return a.Opts.Theme
	}
	return a.Cfg.Theme
}

func (a *App) contextLines() int {
	if a.Cfg.ContextLines > 0 {
		return a.Cfg.ContextLines
	}
	return 3
}

// resolveSource dispatches on the CLI flags to one of quickdiff's
// PatchSource-backed, git-backed, or gh-backed collaborator pairs.
func (a *App) resolveSource(ctx context.Context) (quickdiff.ChangedFileSource, quickdiff.BlobSource, error) {
	switch {
	case a.Opts.Stdin:
		s := gitdiff.NewSource(stdinPatchSource{r: a.Stdin}, nil)
		return s, s, nil

	case a.Opts.PatchFile != "":
		data, err := os.ReadFile(a.Opts.PatchFile)
		if err != nil {
			return nil, nil, quickdiff.NewError(quickdiff.KindPatchParseFailed, err)
		}
		s := gitdiff.NewSource(bytesPatchSource{b: data}, nil)
		return s, s, nil

	case a.Opts.PRSet:
		client, err := gh.NewClient()
		if err != nil {
			return nil, nil, err
		}
		pr := client.PR(a.Opts.PR)
		return pr, pr, nil

	case a.Opts.Commit != "":
		if !git.IsRepo(ctx, a.RepoRoot) {
			return nil, nil, quickdiff.NewError(quickdiff.KindNotARepo, fmt.Errorf("%s is not a git repository", a.RepoRoot))
		}
		s := git.NewCommit(a.RepoRoot, a.Opts.Commit)
		return s, s, nil

	case a.Opts.Base != "":
		if !git.IsRepo(ctx, a.RepoRoot) {
			return nil, nil, quickdiff.NewError(quickdiff.KindNotARepo, fmt.Errorf("%s is not a git repository", a.RepoRoot))
		}
		s, err := git.NewBase(ctx, a.RepoRoot, a.Opts.Base)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil

	case a.Opts.Rev != "":
		if !git.IsRepo(ctx, a.RepoRoot) {
			return nil, nil, quickdiff.NewError(quickdiff.KindNotARepo, fmt.Errorf("%s is not a git repository", a.RepoRoot))
		}
		if from, to, ok := strings.Cut(a.Opts.Rev, ".."); ok {
			s := git.NewRange(a.RepoRoot, from, to)
			return s, s, nil
		}
		if _, err := git.ResolveRevision(ctx, a.RepoRoot, a.Opts.Rev); err != nil {
			return nil, nil, err
		}
		s := git.NewCommit(a.RepoRoot, a.Opts.Rev)
		return s, s, nil

	default:
		if !git.IsRepo(ctx, a.RepoRoot) {
			return nil, nil, quickdiff.NewError(quickdiff.KindNotARepo, fmt.Errorf("%s is not a git repository", a.RepoRoot))
		}
		s := git.NewWorkingTree(a.RepoRoot)
		return s, s, nil
	}
}

// runComments implements the `comments list|add|resolve` subcommand,
// operating directly on the comments.Store for the current repo.
func (a *App) runComments(ctx context.Context) error {
	store, err := comments.Load(a.RepoRoot)
	if err != nil {
		return err
	}

	args := a.Opts.CommentsArgs
	if len(args) == 0 {
		return fmt.Errorf("usage: quickdiff comments list|add|resolve ...")
	}

	switch args[0] {
	case "list":
		for _, c := range store.All() {
			fmt.Fprintf(a.Stdout, "%d\t%s\t%s\t%s\n", c.ID, c.Status, c.Path, c.Message)
		}
		return nil

	case "add":
		if len(args) < 4 {
			return fmt.Errorf("usage: quickdiff comments add PATH LINE MESSAGE")
		}
		path := args[1]
		line, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid line %q: %w", args[2], err)
		}
		message := strings.Join(args[3:], " ")
		return a.addComment(ctx, store, path, line, message)

	case "resolve":
		if len(args) < 2 {
			return fmt.Errorf("usage: quickdiff comments resolve ID")
		}
		id, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", args[1], err)
		}
		if !store.Resolve(id, time.Now().UnixMilli()) {
			return fmt.Errorf("no open comment with id %d", id)
		}
		return store.Save()

	default:
		return fmt.Errorf("unknown comments subcommand %q", args[0])
	}
}

// addComment recomputes the working-tree diff for path, locates the hunk
// containing line on the new side, and anchors a comment to it.
func (a *App) addComment(ctx context.Context, store *comments.Store, path string, line int, message string) error {
	source := git.NewWorkingTree(a.RepoRoot)
	old, err := source.OldBlob(ctx, path)
	if err != nil {
		return err
	}
	new, err := source.NewBlob(ctx, path)
	if err != nil {
		return err
	}

	oldBuf := buffer.New(old)
	newBuf := buffer.New(new)
	result := diffengine.Compute(oldBuf, newBuf, a.contextLines())

	zeroIndexedLine := line - 1
	hunkIdx := -1
	for i, h := range result.Hunks {
		if !h.NewLineRange.Empty() && zeroIndexedLine >= h.NewLineRange.Start && zeroIndexedLine <= h.NewLineRange.End {
			hunkIdx = i
			break
		}
	}
	if hunkIdx == -1 {
		return fmt.Errorf("no hunk touches line %d in %s", line, path)
	}

	store.Add(path, message, result, hunkIdx, oldBuf, newBuf, time.Now().UnixMilli())
	return store.Save()
}

func main() {
	opts, err := ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	repoRoot, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app := &App{
		Opts:     opts,
		RepoRoot: repoRoot,
		Cfg:      cfg,
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}

	err = app.Run(ctx)
	if err == nil || errors.Is(err, ErrNoChanges) {
		return
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

// stdinPatchSource and bytesPatchSource are the PatchSource collaborators
// for --stdin and -f PATH respectively; both are adapted by gitdiff.Source
// into ChangedFileSource/BlobSource.
type stdinPatchSource struct{ r io.Reader }

func (s stdinPatchSource) Patch(ctx context.Context) (io.Reader, error) { return s.r, nil }

type bytesPatchSource struct{ b []byte }

func (s bytesPatchSource) Patch(ctx context.Context) (io.Reader, error) {
	return strings.NewReader(string(s.b)), nil
}
