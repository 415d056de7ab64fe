package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sbgntools/sbgnmap/pkg/cache"
	"github.com/sbgntools/sbgnmap/pkg/core/sbgn"
	"github.com/sbgntools/sbgnmap/pkg/errors"
	"github.com/sbgntools/sbgnmap/pkg/observability"
	"github.com/sbgntools/sbgnmap/pkg/render"
	"github.com/sbgntools/sbgnmap/pkg/sbgnml"
	"github.com/sbgntools/sbgnmap/pkg/sbgnml/af"
	"github.com/sbgntools/sbgnmap/pkg/sbgnml/pd"
	"github.com/sbgntools/sbgnmap/pkg/tidy"
)

// Runner encapsulates pipeline execution with artifact caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache.
// If c is nil, a NullCache is used (caching disabled).
// If logger is nil, the default logger is used.
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Logger: logger}
}

// Execute runs the complete read → tidy → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{
		ContentHash: cache.Hash(opts.Input),
		Artifacts:   make(map[string][]byte),
	}

	// Stage 1: Read
	readStart := time.Now()
	m, err := r.Read(ctx, opts.Input, opts.Source)
	if err != nil {
		return nil, err
	}
	result.Map = m
	result.Stats.ReadTime = time.Since(readStart)

	r.Logger.Info("read map",
		"flavor", m.Flavor,
		"elements", len(m.Model.Elements()),
		"duration", result.Stats.ReadTime)

	// Stage 2: Tidy
	if opts.Tidy || opts.ClipArcs {
		tidyStart := time.Now()
		m, err = r.TidyMap(ctx, m, opts)
		if err != nil {
			return nil, err
		}
		result.Map = m
		result.Stats.TidyTime = time.Since(tidyStart)

		r.Logger.Info("tidied layout", "duration", result.Stats.TidyTime)
	}

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, m, result.ContentHash, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Read decodes an SBGN-ML document and builds the map aggregate,
// dispatching on the document's language attribute.
func (r *Runner) Read(ctx context.Context, input []byte, source string) (*sbgn.Map, error) {
	doc, err := sbgnml.Read(bytes.NewReader(input))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSBGNML, err, "decode %s", source)
	}

	lang := doc.Language()
	observability.Pipeline().OnReadStart(ctx, lang, source)
	start := time.Now()

	var m *sbgn.Map
	switch lang {
	case sbgnml.LanguagePD:
		m, err = pd.Read(doc)
	case sbgnml.LanguageAF:
		m, err = af.Read(doc)
	default:
		err = errors.New(errors.ErrCodeInvalidLanguage, "unsupported map language %q", lang)
	}

	count := 0
	if m != nil {
		count = len(m.Model.Elements())
	}
	observability.Pipeline().OnReadComplete(ctx, lang, source, count, time.Since(start), err)
	return m, err
}

// TidyMap runs the requested layout cleanup passes.
func (r *Runner) TidyMap(ctx context.Context, m *sbgn.Map, opts Options) (*sbgn.Map, error) {
	observability.Pipeline().OnTidyStart(ctx, len(m.Model.Elements()))
	start := time.Now()

	mb, err := m.AsBuilder()
	if err != nil {
		observability.Pipeline().OnTidyComplete(ctx, time.Since(start), err)
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "thaw map")
	}
	if opts.Tidy {
		tidy.TidyBuilder(mb)
	}
	if opts.ClipArcs {
		tidy.SetArcsToBordersBuilder(mb)
	}
	out, err := mb.Build()
	observability.Pipeline().OnTidyComplete(ctx, time.Since(start), err)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "freeze map")
	}
	return out, nil
}

// RenderWithCacheInfo renders the requested formats, serving from the
// artifact cache when every requested format is present.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, m *sbgn.Map, contentHash string, opts Options) (map[string][]byte, bool, error) {
	keys := make(map[string]string, len(opts.Formats))
	for _, f := range opts.Formats {
		keys[f] = cache.ArtifactKey(contentHash, f, opts.StylePath, opts.Tidy, opts.ClipArcs, opts.Scale)
	}

	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		allHit := true
		for f, key := range keys {
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				observability.Cache().OnCacheMiss(ctx, "artifact")
				allHit = false
				break
			}
			observability.Cache().OnCacheHit(ctx, "artifact")
			artifacts[f] = data
		}
		if allHit {
			return artifacts, true, nil
		}
	}

	artifacts, err := r.Render(ctx, m, opts)
	if err != nil {
		return nil, false, err
	}

	for f, data := range artifacts {
		if err := r.Cache.Set(ctx, keys[f], data, 0); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return artifacts, false, nil
}

// Render generates output artifacts in the requested formats.
func (r *Runner) Render(ctx context.Context, m *sbgn.Map, opts Options) (map[string][]byte, error) {
	style, err := loadStyle(opts.StylePath)
	if err != nil {
		return nil, err
	}

	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	dot := render.ToDOT(m, style)
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = render.RenderSVG(dot)
		case FormatPNG:
			data, err = render.RenderPNG(dot, opts.Scale)
		case FormatPDF:
			data, err = render.RenderPDF(dot)
		default:
			err = errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
		}
		if err != nil {
			observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
			return nil, errors.Wrap(errors.ErrCodeRender, err, "render %s", format)
		}
		artifacts[format] = data
	}

	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
	return artifacts, nil
}
