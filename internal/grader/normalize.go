package grader

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/sql-trainer/backend/internal/sqlrunner"
)

// NormalizedTable is the comparison-stable form of a result set: every cell
// rendered as lowercase, whitespace-trimmed text, with numerics rounded to
// two decimal places so 3.0 and 3.00004 compare equal.
type NormalizedTable [][]string

// Normalize canonicalizes a result set for comparison. It is deterministic:
// the same input always yields the same table.
func Normalize(result sqlrunner.ResultSet) NormalizedTable {
	return lo.Map(result.Rows, func(row []any, _ int) []string {
		return lo.Map(row, func(cell any, _ int) string {
			return normalizeCell(cell)
		})
	})
}

func normalizeCell(value any) string {
	var text string

	switch v := value.(type) {
	case nil:
		text = ""
	case string:
		text = v
	case []byte:
		text = string(v)
	case bool:
		text = strconv.FormatBool(v)
	case float64:
		text = formatRounded(v)
	case float32:
		text = formatRounded(float64(v))
	case int:
		text = formatRounded(float64(v))
	case int32:
		text = formatRounded(float64(v))
	case int64:
		text = formatRounded(float64(v))
	case json.Number:
		if f, err := v.Float64(); err == nil {
			text = formatRounded(f)
		} else {
			text = v.String()
		}
	case time.Time:
		text = v.UTC().Format(time.RFC3339)
	default:
		text = fmt.Sprint(v)
	}

	// lowercasing is a no-op for numeric and boolean renderings
	return strings.ToLower(strings.TrimSpace(text))
}

func formatRounded(f float64) string {
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', 2, 64)
}
