package reports

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

const fileStamp = "20060102_150405"

var htmlPage = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; max-width: 860px; margin: 2em auto; color: #222; }
pre { white-space: pre-wrap; background: #f7f7f7; padding: 1em; border-radius: 6px; }
</style>
</head>
<body>
<pre>{{.Body}}</pre>
</body>
</html>
`))

// Renderer persists a formatted report in text, markdown and HTML form
type Renderer struct {
	dir string
	log zerolog.Logger
}

// NewRenderer creates a renderer writing into dir
func NewRenderer(dir string, log zerolog.Logger) *Renderer {
	return &Renderer{
		dir: dir,
		log: log.With().Str("service", "renderer").Logger(),
	}
}

// Render writes the report files and returns their paths, markdown first
func (r *Renderer) Render(batch *Batch, title, body string) ([]string, error) {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	base := filepath.Join(r.dir, "fund_report_"+batch.GeneratedAt.Format(fileStamp))
	paths := []string{base + ".md", base + ".txt", base + ".html"}

	if err := os.WriteFile(paths[0], []byte(body), 0644); err != nil {
		return nil, fmt.Errorf("failed to write markdown report: %w", err)
	}
	if err := os.WriteFile(paths[1], []byte(stripMarkdown(body)), 0644); err != nil {
		return nil, fmt.Errorf("failed to write text report: %w", err)
	}

	f, err := os.Create(paths[2])
	if err != nil {
		return nil, fmt.Errorf("failed to create html report: %w", err)
	}
	defer f.Close()

	if err := htmlPage.Execute(f, map[string]string{"Title": title, "Body": body}); err != nil {
		return nil, fmt.Errorf("failed to render html report: %w", err)
	}

	r.log.Info().Str("path", paths[0]).Msg("Report rendered")
	return paths, nil
}

// Latest returns the newest markdown report, or empty content when none exist
func (r *Renderer) Latest() (string, string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", "", nil
		}
		return "", "", fmt.Errorf("failed to read report directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "fund_report_") && strings.HasSuffix(e.Name(), ".md") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", "", nil
	}

	// Timestamped names sort chronologically
	sort.Strings(names)
	latest := names[len(names)-1]

	body, err := os.ReadFile(filepath.Join(r.dir, latest))
	if err != nil {
		return "", "", fmt.Errorf("failed to read report: %w", err)
	}
	return latest, string(body), nil
}

var markdownMarks = regexp.MustCompile(`(?m)^#{1,6} |\*\*|^> |^---$`)

// stripMarkdown flattens markdown syntax for the plain-text rendition
func stripMarkdown(body string) string {
	return markdownMarks.ReplaceAllString(body, "")
}
