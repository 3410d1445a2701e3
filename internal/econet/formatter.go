package econet

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FormatValue renders a parameter value for display.
// Numbers use the shortest decimal form.
func FormatValue(v any) string {
	switch n := v.(type) {
	case nil:
		return "-"
	case string:
		return n
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(n)
	default:
		return fmt.Sprint(n)
	}
}

// Numeric returns v as a float when it is a JSON number or a boolean
func Numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// Keys returns the parameter names in sorted order
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Diff returns the names whose values differ between prev and p, sorted
func (p Params) Diff(prev Params) []string {
	var changed []string
	for _, k := range p.Keys() {
		old, ok := prev[k]
		if !ok || FormatValue(old) != FormatValue(p[k]) {
			changed = append(changed, k)
		}
	}
	return changed
}

// Summary returns a one-line summary of the controller identity
func (id Identity) Summary() string {
	return fmt.Sprintf("%s %s (SW: %s, HW: %s)", ControllerName, id.UID, id.SoftwareRevision, id.HardwareVersion)
}

// FormatDetailed returns the identity as an aligned block
func (id Identity) FormatDetailed() string {
	var b strings.Builder

	b.WriteString("=== Controller Information ===\n")
	b.WriteString(fmt.Sprintf("UID:               %s\n", id.UID))
	b.WriteString(fmt.Sprintf("Software Revision: %s\n", id.SoftwareRevision))
	b.WriteString(fmt.Sprintf("Hardware Version:  %s\n", id.HardwareVersion))
	b.WriteString(fmt.Sprintf("Model ID:          %s\n", id.ModelID))

	return b.String()
}

// FormatCompact returns one "name=value" pair per line
func (p Params) FormatCompact() string {
	var b strings.Builder
	for _, k := range p.Keys() {
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(FormatValue(p[k]))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatDetailed returns the parameters as an aligned two-column table
func (p Params) FormatDetailed() string {
	var b strings.Builder

	keys := p.Keys()
	width := len("Parameter")
	for _, k := range keys {
		if len(k) > width {
			width = len(k)
		}
	}

	b.WriteString(fmt.Sprintf("%-*s  %s\n", width, "Parameter", "Value"))
	b.WriteString(strings.Repeat("-", width) + "  " + strings.Repeat("-", 12) + "\n")
	for _, k := range keys {
		b.WriteString(fmt.Sprintf("%-*s  %s\n", width, k, FormatValue(p[k])))
	}
	b.WriteString(fmt.Sprintf("\n%d parameters\n", len(keys)))

	return b.String()
}
