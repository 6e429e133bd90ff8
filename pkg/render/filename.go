package render

import (
	"regexp"
	"strings"

	"github.com/jameshartig/energyreport/pkg/types"
)

var placeholderRE = regexp.MustCompile(`\{([^{}]*)\}`)

// ResolveFilename returns the name of the report file. An explicit filename
// wins over the pattern. The result always ends with ".pdf".
func ResolveFilename(explicit, pattern string, p types.ResolvedPeriod) (string, error) {
	name := strings.TrimSpace(explicit)
	field := "filename"

	if name == "" {
		field = "filename_pattern"
		if strings.TrimSpace(pattern) == "" {
			pattern = types.DefaultFilenamePattern
		}
		values := map[string]string{
			"start":  p.StartDate.Format("2006-01-02"),
			"end":    p.EndDate.Format("2006-01-02"),
			"period": string(p.Period),
		}
		for _, m := range placeholderRE.FindAllStringSubmatch(pattern, -1) {
			if _, ok := values[m[1]]; !ok {
				return "", types.NewValidationError(field, "unknown placeholder {%s}", m[1])
			}
		}
		name = strings.TrimSpace(placeholderRE.ReplaceAllStringFunc(pattern, func(s string) string {
			return values[s[1:len(s)-1]]
		}))
		if name == "" {
			return "", types.NewValidationError(field, "pattern produced an empty name")
		}
	}

	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", types.NewValidationError(field, "%q must not contain a path", name)
	}
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	return name, nil
}
