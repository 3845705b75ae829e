// Package config loads the reconcile rule set.
//
// Sources are layered with koanf in this order: embedded defaults, one config
// file (YAML, TOML, JSON or a Nix expression evaluated to JSON), then
// RECONCILE_* environment variables.
package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/corpeningc/reconcile/internal/git"
	"github.com/corpeningc/reconcile/internal/plan"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

var (
	ErrNoConfig    = errors.New("no config file found")
	ErrMissingKey  = errors.New("missing config key")
	ErrInvalidGlob = errors.New("invalid glob")
)

const envPrefix = "RECONCILE_"

// EnvGitBinary overrides the gitBinary key.
const EnvGitBinary = envPrefix + "GIT_BINARY"

// Candidate file names looked up in the work dir, in order.
var fileNames = []string{
	".reconcile.yaml",
	".reconcile.yml",
	".reconcile.toml",
	".reconcile.json",
	"reconcile.nix",
}

var requiredKeys = []string{
	"deleteFileGlobs",
	"conflicts.ourFiles",
	"conflicts.acceptTheirDeletions",
}

var envKeys = map[string]string{
	EnvGitBinary: "gitBinary",
}

type Config struct {
	GitBinary       string    `koanf:"gitBinary"`
	DeleteFileGlobs []string  `koanf:"deleteFileGlobs"`
	Conflicts       Conflicts `koanf:"conflicts"`

	// Source is the file the config was read from.
	Source string `koanf:"-"`
}

type Conflicts struct {
	OurFiles             []string `koanf:"ourFiles"`
	AcceptTheirDeletions []string `koanf:"acceptTheirDeletions"`
}

func (c *Config) Rules() plan.Rules {
	return plan.Rules{
		DeleteFileGlobs:      c.DeleteFileGlobs,
		OurFiles:             c.Conflicts.OurFiles,
		AcceptTheirDeletions: c.Conflicts.AcceptTheirDeletions,
	}
}

type Loader struct {
	WorkDir string
	// Path overrides the lookup when set.
	Path string
	// Fallbacks are tried after the work dir candidates.
	Fallbacks []string
	// Runner evaluates .nix config files.
	Runner git.Runner
}

func NewLoader(workDir, path string, runner git.Runner) *Loader {
	return &Loader{
		WorkDir:   workDir,
		Path:      path,
		Fallbacks: []string{filepath.Join(xdg.ConfigHome, "reconcile", "config.yaml")},
		Runner:    runner,
	}
}

func (l *Loader) Load(ctx context.Context) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	path, err := l.resolvePath()
	if err != nil {
		return nil, err
	}
	if err := l.loadFile(ctx, k, path); err != nil {
		return nil, err
	}

	err = k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return envKeys[s]
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	for _, key := range requiredKeys {
		if !k.Exists(key) {
			return nil, fmt.Errorf("%w %q in %s", ErrMissingKey, key, path)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	cfg.Source = path

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks that every glob parses. Conflict globs must also compile
// for path matching.
func (c *Config) Validate() error {
	lists := map[string][]string{
		"deleteFileGlobs":                c.DeleteFileGlobs,
		"conflicts.ourFiles":             c.Conflicts.OurFiles,
		"conflicts.acceptTheirDeletions": c.Conflicts.AcceptTheirDeletions,
	}
	for _, key := range requiredKeys {
		for _, g := range lists[key] {
			if g == "" || !doublestar.ValidatePattern(g) {
				return fmt.Errorf("%w %q in %s", ErrInvalidGlob, g, key)
			}
		}
		if key == "deleteFileGlobs" {
			continue
		}
		if _, err := plan.CompileRules(lists[key]); err != nil {
			return fmt.Errorf("%w in %s: %w", ErrInvalidGlob, key, err)
		}
	}
	return nil
}

func (l *Loader) resolvePath() (string, error) {
	if l.Path != "" {
		if _, err := os.Stat(l.Path); err != nil {
			return "", fmt.Errorf("config %s: %w", l.Path, err)
		}
		return l.Path, nil
	}

	candidates := make([]string, 0, len(fileNames)+len(l.Fallbacks))
	for _, name := range fileNames {
		candidates = append(candidates, filepath.Join(l.WorkDir, name))
	}
	candidates = append(candidates, l.Fallbacks...)

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w (looked for %s in %s)", ErrNoConfig, strings.Join(fileNames, ", "), l.WorkDir)
}

func (l *Loader) loadFile(ctx context.Context, k *koanf.Koanf, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return wrapLoad(path, k.Load(file.Provider(path), yaml.Parser()))
	case ".toml":
		return wrapLoad(path, k.Load(file.Provider(path), toml.Parser()))
	case ".json":
		return wrapLoad(path, k.Load(file.Provider(path), json.Parser()))
	case ".nix":
		out, err := l.evalNix(ctx, path)
		if err != nil {
			return err
		}
		return wrapLoad(path, k.Load(&rawBytesProvider{bytes: out}, json.Parser()))
	default:
		return fmt.Errorf("config %s: unsupported file type", path)
	}
}

func (l *Loader) evalNix(ctx context.Context, path string) ([]byte, error) {
	if l.Runner == nil {
		return nil, fmt.Errorf("config %s: no command runner to evaluate nix", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	out, err := l.Runner.Run(ctx, []string{"nix", "eval", "--json", "--file", abs})
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", path, err)
	}
	return out, nil
}

func wrapLoad(path string, err error) error {
	if err != nil {
		return fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	return nil
}

type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}
