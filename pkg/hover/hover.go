// Package hover provides functionality for generating hover information.
package hover

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/walteh/liquidscope/pkg/include"
	"github.com/walteh/liquidscope/pkg/position"
	"github.com/walteh/liquidscope/pkg/scope"
)

// NotFoundText is shown whenever a lookup comes back empty.
const NotFoundText = "definition not found"

// Info represents the information to be displayed in a hover tooltip
type Info struct {
	// Content is the markdown content to display
	Content []string `json:"content"`
	// Range is the range in the document that this hover applies to
	Range position.Range `json:"range"`
}

func (i *Info) Markdown() string {
	if i == nil {
		return ""
	}
	return strings.Join(i.Content, "\n\n---\n\n")
}

// Formatter renders hover content. File paths are shown relative to Root.
type Formatter struct {
	Root string
}

func (f Formatter) location(file string, line int) string {
	rel := file
	if f.Root != "" {
		if r, err := filepath.Rel(f.Root, file); err == nil && !strings.HasPrefix(r, "..") {
			rel = filepath.ToSlash(r)
		}
	}
	return code(fmt.Sprintf("%s:%d", rel, line+1))
}

// longestRun is the length of the longest run of backticks in s.
func longestRun(s string) int {
	longest, run := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] != '`' {
			run = 0
			continue
		}
		run++
		longest = max(longest, run)
	}
	return longest
}

// code renders s as an inline code span whose delimiter outruns any backticks
// inside it.
func code(s string) string {
	fence := strings.Repeat("`", longestRun(s)+1)
	if strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") {
		s = " " + s + " "
	}
	return fence + s + fence
}

// block renders s as a fenced liquid code block.
func block(s string) string {
	fence := strings.Repeat("`", max(3, longestRun(s)+1))
	return fence + "liquid\n" + s + "\n" + fence
}

// localeOrder puts default first, then the rest alphabetically.
func localeOrder(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if (keys[i] == "default") != (keys[j] == "default") {
			return keys[i] == "default"
		}
		return keys[i] < keys[j]
	})
	return keys
}

func (f Formatter) Translation(res scope.TranslationDefinitionResult, at position.Range) *Info {
	var sb strings.Builder
	sb.WriteString("### Translation\n\n")
	sb.WriteString(code(res.Key) + "\n\n")

	if len(res.Values) > 0 {
		sb.WriteString("| locale | text |\n|---|---|\n")
		for _, k := range localeOrder(res.Values) {
			sb.WriteString(fmt.Sprintf("| %s | %s |\n", k, strings.ReplaceAll(res.Values[k], "|", `\|`)))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Defined in " + f.location(res.FilePath, res.Definition.Range.Start.Line))
	return &Info{Content: []string{sb.String()}, Range: at}
}

func (f Formatter) Variable(res scope.VariableDefinitionResult, at position.Range) *Info {
	var sb strings.Builder
	sb.WriteString("### Variable " + code(res.Name) + "\n\n")
	sb.WriteString(block(res.Statement.Text) + "\n\n")
	sb.WriteString(fmt.Sprintf("Bound by %s, defined in %s", code(res.DefinitionKind.String()), f.location(res.FilePath, res.Definition.Range.Start.Line)))
	return &Info{Content: []string{sb.String()}, Range: at}
}

func (f Formatter) Include(stmt include.Statement, at position.Range) *Info {
	var sb strings.Builder
	sb.WriteString("### Include " + code(stmt.IncludePath) + "\n\n")
	if !stmt.Resolved {
		sb.WriteString("Part not found")
	} else {
		sb.WriteString(fmt.Sprintf("%s %s from %s", stmt.Kind, code(stmt.Name), f.location(stmt.ResolvedFile, 0)))
	}
	return &Info{Content: []string{sb.String()}, Range: at}
}

// Tag returns the documentation for a tag keyword, nil if there is none.
func (f Formatter) Tag(name string, at position.Range) *Info {
	doc, ok := TagDocs[name]
	if !ok {
		return nil
	}
	return &Info{
		Content: []string{fmt.Sprintf("### %s\n\n%s\n\n%s", code(name), doc.Description, block(doc.Example))},
		Range:   at,
	}
}

func NotFound(at position.Range) *Info {
	return &Info{Content: []string{NotFoundText}, Range: at}
}
