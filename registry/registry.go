// Package registry looks up the latest published version of npm packages,
// either from the registry's HTTP API or by running the npm CLI.
package registry

import (
	"context"
	"net/url"
	"os/exec"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/kballard/go-shellquote"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/teranos/plugmig/am"
	"github.com/teranos/plugmig/errors"
	"github.com/teranos/plugmig/internal/httpclient"
	"github.com/teranos/plugmig/logger"
	"github.com/teranos/plugmig/version"
)

// Resolver returns the latest published version of a package.
type Resolver interface {
	Latest(ctx context.Context, pkg string) (string, error)
}

// New builds the resolver selected by cfg.Mode.
func New(cfg am.RegistryConfig) (Resolver, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	switch cfg.Mode {
	case am.RegistryModeHTTP:
		return NewHTTPResolver(cfg.URL, httpclient.New(timeout, httpclient.Options{
			AllowPrivate: cfg.AllowPrivate,
			UserAgent:    version.Get().UserAgent(),
		})), nil
	case am.RegistryModeNPM:
		return NewNPMResolver(cfg.NpmCommand, timeout)
	default:
		return nil, errors.Newf("unknown registry mode %q", cfg.Mode)
	}
}

// HTTPResolver reads the "latest" dist-tag from an npm-compatible registry.
type HTTPResolver struct {
	baseURL string
	client  *httpclient.SaferClient
}

// NewHTTPResolver creates a resolver for the registry at baseURL.
func NewHTTPResolver(baseURL string, client *httpclient.SaferClient) *HTTPResolver {
	return &HTTPResolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// Latest implements Resolver.
func (r *HTTPResolver) Latest(ctx context.Context, pkg string) (string, error) {
	// Scoped names keep their @ and escape the slash: @scope%2Fname
	endpoint := r.baseURL + "/-/package/" + url.PathEscape(pkg) + "/dist-tags"
	logger.Debugw("Querying registry",
		logger.FieldPackage, pkg,
		logger.FieldURL, endpoint)

	body, err := r.client.Fetch(ctx, endpoint, "application/json")
	if err != nil {
		return "", errors.Wrapf(err, "failed to query registry for %s", pkg)
	}

	if !gjson.ValidBytes(body) {
		return "", errors.Newf("registry returned invalid JSON for %s", pkg)
	}
	latest := gjson.GetBytes(body, "latest")
	if !latest.Exists() || latest.Type != gjson.String {
		return "", errors.Newf("registry has no latest dist-tag for %s", pkg)
	}

	return validVersion(pkg, latest.String())
}

// runFunc runs a command and returns its stdout.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// NPMResolver runs `<command> <pkg> version`, by default `npm show <pkg> version`.
type NPMResolver struct {
	argv    []string
	timeout time.Duration
	run     runFunc
}

// NewNPMResolver splits command with shell quoting rules.
func NewNPMResolver(command string, timeout time.Duration) (*NPMResolver, error) {
	argv, err := shellquote.Split(command)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid npm command %q", command)
	}
	if len(argv) == 0 {
		return nil, errors.New("npm command is empty")
	}
	return &NPMResolver{argv: argv, timeout: timeout, run: execOutput}, nil
}

func execOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Latest implements Resolver.
func (r *NPMResolver) Latest(ctx context.Context, pkg string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	args := append(append([]string{}, r.argv[1:]...), pkg, "version")
	out, err := r.run(ctx, r.argv[0], args...)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			err = errors.WithDetail(err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", errors.Wrapf(err, "%s failed for %s", shellquote.Join(r.argv...), pkg)
	}

	return validVersion(pkg, strings.TrimSpace(string(out)))
}

func validVersion(pkg, v string) (string, error) {
	if _, err := semver.StrictNewVersion(v); err != nil {
		return "", errors.Wrapf(err, "registry returned invalid version %q for %s", v, pkg)
	}
	return v, nil
}

// LatestAll resolves every package concurrently. Any failure fails the whole
// lookup and cancels the others.
func LatestAll(ctx context.Context, r Resolver, pkgs ...string) (map[string]string, error) {
	versions := make([]string, len(pkgs))

	g, ctx := errgroup.WithContext(ctx)
	for i, pkg := range pkgs {
		g.Go(func() error {
			start := time.Now()
			v, err := r.Latest(ctx, pkg)
			if err != nil {
				return err
			}
			logger.Debugw("Resolved latest version",
				logger.FieldPackage, pkg,
				logger.FieldVersion, v,
				logger.FieldDurationMS, time.Since(start).Milliseconds())
			versions[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make(map[string]string, len(pkgs))
	for i, pkg := range pkgs {
		result[pkg] = versions[i]
	}
	return result, nil
}
