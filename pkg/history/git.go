package history

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/deftsilo/pkg/errors"
	"github.com/arthur-debert/deftsilo/pkg/logging"
)

// GitCLI implements VCS with the git command line tool
type GitCLI struct {
	dir    string
	binary string
	logger zerolog.Logger
}

// NewGitCLI creates a git backend running in dir. An empty binary means
// "git" from PATH.
func NewGitCLI(dir, binary string) *GitCLI {
	if binary == "" {
		binary = "git"
	}
	return &GitCLI{
		dir:    dir,
		binary: binary,
		logger: logging.GetLogger("history.git"),
	}
}

// ListRevisions runs git log with raw change records for rel
func (g *GitCLI) ListRevisions(ctx context.Context, rel string) ([]string, error) {
	out, err := g.run(ctx, "log", "--no-color", "--follow", "--no-abbrev", "--raw", "--format=%H", "--", rel)
	if err != nil {
		return nil, err.WithPath(rel)
	}
	if !utf8.Valid(out) {
		return nil, errors.New(errors.ErrSubprocess, "git log produced non-UTF-8 output").WithPath(rel)
	}

	refs, perr := parseRawLog(out)
	if perr != nil {
		return nil, perr.WithPath(rel)
	}

	g.logger.Trace().Str("path", rel).Strs("refs", refs).Msg("Listed revisions")
	return refs, nil
}

// FetchObject runs git cat-file blob for ref
func (g *GitCLI) FetchObject(ctx context.Context, ref string) ([]byte, error) {
	out, err := g.run(ctx, "cat-file", "blob", ref)
	if err != nil {
		return nil, err.WithDetail("ref", ref)
	}
	return out, nil
}

// run executes git and returns its stdout. Any failure to start or a
// nonzero exit is a subprocess error carrying git's stderr. Paths are
// always literal pathspecs, so glob characters in file names match only
// themselves.
func (g *GitCLI) run(ctx context.Context, args ...string) ([]byte, *errors.DeftsiloError) {
	cmd := exec.CommandContext(ctx, g.binary, append([]string{"--literal-pathspecs"}, args...)...)
	cmd.Dir = g.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	g.logger.Debug().
		Str("command", g.binary).
		Strs("args", args).
		Str("workingDir", g.dir).
		Msg("Executing command")

	if err := cmd.Run(); err != nil {
		g.logger.Error().
			Err(err).
			Str("command", g.binary).
			Strs("args", args).
			Str("stderr", stderr.String()).
			Msg("Command execution failed")

		return nil, errors.Wrapf(err, errors.ErrSubprocess, "%s %s failed", g.binary, args[0]).
			WithDetail(errors.DetailReason, strings.TrimSpace(stderr.String()))
	}

	if stderr.Len() > 0 {
		g.logger.Debug().Str("output", stderr.String()).Msg("Command stderr")
	}
	return stdout.Bytes(), nil
}

// parseRawLog extracts the post-change object id from every raw change
// record. A record looks like
//
//	:100644 100644 <old> <new> M	path
//
// and all other lines (commit ids, blank separators) are ignored.
func parseRawLog(out []byte) ([]string, *errors.DeftsiloError) {
	var refs []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, ":") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, errors.Newf(errors.ErrSubprocess, "malformed change record %q", line)
		}
		id := fields[3]
		if !isHex(id) {
			return nil, errors.Newf(errors.ErrSubprocess, "malformed object id %q", id)
		}
		refs = append(refs, id)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrSubprocess, "cannot read git output")
	}
	return refs, nil
}
