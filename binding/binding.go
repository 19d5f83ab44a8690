package binding

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 若 data 为空或路径不存在，则返回原占位符。
func Interpolate(text string, data any) string {
	if data == nil {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		path := strings.TrimSpace(groups[1])
		if path == "" {
			return match
		}
		if val, ok := Resolve(data, path); ok {
			return format(val)
		}
		return match
	})
}

// Decode reads JSON data for interpolation. Numbers keep their literal
// spelling, so 0900 style room numbers and large ids print unchanged.
func Decode(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var data any
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding data: %w", err)
	}
	return data, nil
}

// Resolve looks up a dotted path with optional [n] indexes, e.g.
// "week.days[0].name". The path "." returns data itself.
func Resolve(data any, path string) (any, bool) {
	path = strings.TrimSpace(path)
	if path == "." {
		return data, true
	}
	steps, ok := parsePath(path)
	if !ok {
		return nil, false
	}
	current := data
	for _, st := range steps {
		switch c := current.(type) {
		case map[string]any:
			if st.index >= 0 {
				return nil, false
			}
			if current, ok = c[st.key]; !ok {
				return nil, false
			}
		case []any:
			if st.index < 0 || st.index >= len(c) {
				return nil, false
			}
			current = c[st.index]
		default:
			return nil, false
		}
	}
	return current, true
}

// step 是路径中的一级：键名或数组下标（index >= 0）。
type step struct {
	key   string
	index int
}

func parsePath(path string) ([]step, bool) {
	var steps []step
	for _, segment := range strings.Split(path, ".") {
		name, rest, _ := strings.Cut(segment, "[")
		if name != "" {
			steps = append(steps, step{key: name, index: -1})
		} else if rest == "" {
			return nil, false
		}
		if rest == "" {
			continue
		}
		for _, part := range strings.Split("["+rest, "[")[1:] {
			digits, ok := strings.CutSuffix(part, "]")
			if !ok {
				return nil, false
			}
			idx, err := strconv.Atoi(digits)
			if err != nil || idx < 0 {
				return nil, false
			}
			steps = append(steps, step{index: idx})
		}
	}
	return steps, true
}

func format(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []any, map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	default:
		return fmt.Sprint(v)
	}
}
