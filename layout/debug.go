package layout

import (
	"encoding/json"
	"io"
	"os"
)

// WriteDebugJSON 将布局结果输出为 JSON，便于调试或可视化。
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeDebugJSON(res, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// EncodeDebugJSON writes the indented JSON form of res to w.
func EncodeDebugJSON(res *Result, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
