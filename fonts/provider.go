// Package fonts resolves the process-wide font and hands out per-call font
// handles that measure text in pixels.
//
// Resolution order is fixed: the first candidate file that exists and parses,
// then a one-time download of RemoteURL, then the bundled Go font. Failures
// along the way are logged and skipped, never returned.
package fonts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/tdewolff/canvas"
)

// DefaultCandidates are probed in order when Options.Candidates is nil.
var DefaultCandidates = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	"/usr/share/fonts/truetype/freefont/FreeSans.ttf",
	"/usr/share/fonts/truetype/noto/NotoSans-Regular.ttf",
	"C:/Windows/Fonts/arial.ttf",
	"/System/Library/Fonts/SFNSDisplay.ttf",
}

// DefaultRemoteURL is a Cyrillic-capable font fetched when no candidate exists.
const DefaultRemoteURL = "https://github.com/googlefonts/noto-fonts/raw/main/hinted/ttf/NotoSans/NotoSans-Regular.ttf"

// Options configures font resolution.
type Options struct {
	// Candidates are local font paths probed in order. Nil means DefaultCandidates;
	// an empty non-nil slice disables local probing.
	Candidates []string
	// RemoteURL is fetched once when no candidate resolves. Empty disables the fetch.
	RemoteURL string
	Client    *http.Client
	Timeout   time.Duration
	Logger    *slog.Logger
}

// Provider owns the resolved font bytes. It is immutable after NewProvider
// returns and may be shared by any number of goroutines.
type Provider struct {
	data   []byte
	source string
}

// ErrFontUnavailable is returned by NewProvider only when even the bundled
// font cannot be parsed.
var ErrFontUnavailable = errors.New("fonts: no usable font")

// NewProvider resolves a font according to opts. ctx bounds the remote fetch.
func NewProvider(ctx context.Context, opts Options) (*Provider, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	candidates := opts.Candidates
	if candidates == nil {
		candidates = DefaultCandidates
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				logger.Warn("font candidate unreadable", "path", path, "err", err)
			}
			continue
		}
		if err := probe(data); err != nil {
			logger.Warn("font candidate unparsable", "path", path, "err", err)
			continue
		}
		logger.Debug("font resolved", "source", path)
		return &Provider{data: data, source: path}, nil
	}

	if opts.RemoteURL != "" {
		data, err := fetch(ctx, opts.Client, opts.RemoteURL, opts.Timeout)
		if err == nil {
			err = probe(data)
		}
		if err == nil {
			logger.Debug("font resolved", "source", opts.RemoteURL)
			return &Provider{data: data, source: opts.RemoteURL}, nil
		}
		logger.Warn("remote font unavailable", "url", opts.RemoteURL, "err", err)
	}

	p, err := FromBytes(Builtin(), BuiltinSource)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFontUnavailable, err)
	}
	logger.Debug("font resolved", "source", BuiltinSource)
	return p, nil
}

// FromBytes wraps already-loaded font data. The data must not be modified afterwards.
func FromBytes(data []byte, source string) (*Provider, error) {
	if err := probe(data); err != nil {
		return nil, err
	}
	return &Provider{data: data, source: source}, nil
}

// Source names where the font came from: a file path, a URL or BuiltinSource.
func (p *Provider) Source() string {
	return p.source
}

// Family parses the font into a fresh family owned by the caller. Each
// conversion takes its own family so no parsed font state is shared.
func (p *Provider) Family() (*Family, error) {
	if p == nil || len(p.data) == 0 {
		return nil, ErrFontUnavailable
	}
	fam := canvas.NewFontFamily("docshot")
	if err := fam.LoadFont(p.data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("loading font %s: %w", p.source, err)
	}
	return &Family{family: fam}, nil
}

func probe(data []byte) (err error) {
	if len(data) == 0 {
		return errors.New("empty font data")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parsing font: %v", r)
		}
	}()
	return canvas.NewFontFamily("probe").LoadFont(data, 0, canvas.FontRegular)
}
