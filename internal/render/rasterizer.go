package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Rasterizer is the external PDF collaborator: it turns the rendered
// HTML document into PDF bytes. Pagination across page boundaries is its
// problem, not ours.
type Rasterizer interface {
	Rasterize(ctx context.Context, html string) ([]byte, error)
}

// CommandRasterizer shells out to an HTML-to-PDF converter such as
// wkhtmltopdf or a headless Chromium wrapper. The command receives the
// HTML on stdin and must write the PDF to stdout.
type CommandRasterizer struct {
	// Command is the converter invocation, split on spaces,
	// e.g. "wkhtmltopdf --quiet - -".
	Command string
}

func (r *CommandRasterizer) Rasterize(ctx context.Context, html string) ([]byte, error) {
	parts := strings.Fields(r.Command)
	if len(parts) == 0 {
		return nil, fmt.Errorf("no rasterizer command configured")
	}

	var out, errOut bytes.Buffer
	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	cmd.Stdin = strings.NewReader(html)
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("rasterizer %q: %w: %s", parts[0], err, strings.TrimSpace(errOut.String()))
	}
	return out.Bytes(), nil
}
