// Package sink renders a [sky.Sky] into output formats.
//
// # Formats
//
//   - HTML: a self-contained page with twinkling stars, avatars, a click
//     tooltip, the tier filter panel, an info panel and falling meteors
//   - SVG: a standalone vector image with per-tier glow gradients
//   - PNG: a raster image drawn with gogpu/gg
//   - JSON: the sky document itself, for re-rendering later
//   - Terminal: a coloured glyph canvas for the interactive preview
//
// Every sink takes functional options:
//
//	page, err := sink.RenderHTML(s, sink.WithTitle("My sky"), sink.WithMeteors(meteor.DefaultConfig()))
//	svg := sink.RenderSVG(s, sink.WithPopups())
//	png, err := sink.RenderPNG(s, sink.WithScale(2))
//	text := sink.RenderTerminal(s, 80, 24, sink.WithFilter(f))
//
// Sinks only read the sky. Filters, focus and meteor overlays are passed in
// per call, so one sky can back many renders.
//
// [sky.Sky]: github.com/matzehuels/starsky/pkg/sky.Sky
package sink
