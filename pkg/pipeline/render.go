package pipeline

import (
	"fmt"

	"github.com/matzehuels/starsky/pkg/render/sink"
	"github.com/matzehuels/starsky/pkg/sky"
)

// Render generates output artifacts in the requested formats.
func Render(s *sky.Sky, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := renderFormat(s, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderFormat(s *sky.Sky, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatHTML:
		return sink.RenderHTML(s, htmlOptions(opts)...)
	case FormatSVG:
		var svgOpts []sink.SVGOption
		if opts.Popups {
			svgOpts = append(svgOpts, sink.WithPopups())
		}
		return sink.RenderSVG(s, svgOpts...), nil
	case FormatPNG:
		return sink.RenderPNG(s, sink.WithScale(opts.Scale))
	case FormatJSON:
		return sink.RenderJSON(s)
	default:
		return nil, ValidateFormat(format)
	}
}

func htmlOptions(opts Options) []sink.HTMLOption {
	var out []sink.HTMLOption
	if opts.Title != "" {
		out = append(out, sink.WithTitle(opts.Title))
	}
	if opts.Meteors {
		out = append(out, sink.WithMeteors(opts.MeteorConfig))
	}
	if opts.AutoReload > 0 {
		out = append(out, sink.WithRefresh(opts.AutoReload))
	}
	if opts.RegenerateURL != "" {
		out = append(out, sink.WithRegenerateURL(opts.RegenerateURL))
	}
	return out
}
