package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ByLCY/docshot/config"
	"github.com/ByLCY/docshot/convert"
	"github.com/ByLCY/docshot/document"
	"github.com/ByLCY/docshot/dsl"
	"github.com/ByLCY/docshot/encode"
	"github.com/ByLCY/docshot/extract"
	"github.com/ByLCY/docshot/layout"
)

// dslExt 是手写文档的扩展名。
const dslExt = ".docshot"

type job struct {
	input  string
	output string
	debug  string
}

type settings struct {
	cfg          config.Config
	profile      string
	format       encode.Format
	quality      int
	data         any
	fallbackCopy bool
}

type outcome int

const (
	outcomeConverted outcome = iota
	outcomeNoContent
	outcomeFallback
	outcomeFailed
)

type result struct {
	job     job
	outcome outcome
	written string
	err     error
}

// runBatch converts jobs with at most workers goroutines. Results keep the
// order of jobs; one failing document does not stop the others.
func runBatch(ctx context.Context, conv *convert.Converter, jobs []job, s settings, workers int) []result {
	results := make([]result, len(jobs))
	if len(jobs) == 0 {
		return results
	}
	if workers <= 0 {
		workers = 1
	}
	workers = min(workers, len(jobs))

	queue := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for idx := range queue {
				results[idx] = run(conv, jobs[idx], s)
			}
		}()
	}

queueLoop:
	for i := range jobs {
		select {
		case <-ctx.Done():
			for j := i; j < len(jobs); j++ {
				results[j] = result{job: jobs[j], outcome: outcomeFailed, err: ctx.Err()}
			}
			break queueLoop
		case queue <- i:
		}
	}
	close(queue)
	wg.Wait()
	return results
}

// run 串联读取、过滤、布局与渲染，并按需回退为复制源文件。
func run(conv *convert.Converter, j job, s settings) result {
	res := result{job: j}
	written, err := convertFile(conv, j, s)
	switch {
	case err == nil:
		res.outcome, res.written = outcomeConverted, written
		return res
	case errors.Is(err, convert.ErrNoContent):
		res.outcome = outcomeNoContent
	default:
		res.outcome, res.err = outcomeFailed, err
	}
	if !s.fallbackCopy {
		return res
	}
	dst, copyErr := copySource(j)
	if copyErr != nil {
		res.outcome = outcomeFailed
		res.err = errors.Join(res.err, copyErr)
		return res
	}
	res.outcome, res.written = outcomeFallback, dst
	return res
}

func convertFile(conv *convert.Converter, j job, s settings) (string, error) {
	doc, sourceFormat, err := load(j.input, s.data)
	if err != nil {
		return "", err
	}
	profile, err := s.cfg.Profile(profileName(s.profile, sourceFormat))
	if err != nil {
		return "", err
	}

	plan, err := conv.Plan(doc, profile)
	if err != nil {
		return "", err
	}
	if j.debug != "" {
		if err := writeDebug(plan.Layout, j.debug); err != nil {
			return "", err
		}
	}

	var buf bytes.Buffer
	if s.format == encode.PDF {
		data, err := conv.RenderPDF(plan)
		if err != nil {
			return "", err
		}
		buf.Write(data)
	} else {
		img, err := conv.Rasterize(plan)
		if err != nil {
			return "", err
		}
		if err := encode.Encode(&buf, img, s.format, encode.Options{Quality: s.quality}); err != nil {
			return "", err
		}
	}
	if err := writeFile(j.output, buf.Bytes()); err != nil {
		return "", err
	}
	return j.output, nil
}

// load reads a source file. .docshot files go through the DSL with data bound;
// everything else is extracted by container format.
func load(path string, data any) (document.Document, string, error) {
	if strings.EqualFold(filepath.Ext(path), dslExt) {
		f, err := os.Open(path)
		if err != nil {
			return document.Document{}, "", fmt.Errorf("无法打开 DSL 文件 %s: %w", path, err)
		}
		defer f.Close()
		ast, err := dsl.Parse(f)
		if err != nil {
			return document.Document{}, "", fmt.Errorf("解析 DSL 失败: %w", err)
		}
		doc, err := dsl.ToDocument(ast, data)
		if err != nil {
			return document.Document{}, "", err
		}
		if doc.Name == "" {
			doc.Name = filepath.Base(path)
		}
		return doc, "docshot", nil
	}
	doc, format, err := extract.File(path)
	if err != nil {
		return document.Document{}, "", err
	}
	return doc, string(format), nil
}

// profileName resolves "auto": tabular XML exports use the compact profile.
func profileName(requested, sourceFormat string) string {
	if requested != "auto" {
		return requested
	}
	if sourceFormat == string(extract.FormatXML) {
		return "compact"
	}
	return "general"
}

// copySource places the original file next to where the image would have
// gone, keeping its own extension.
func copySource(j job) (string, error) {
	dst := strings.TrimSuffix(j.output, filepath.Ext(j.output)) + filepath.Ext(j.input)
	if same, err := samePath(j.input, dst); err != nil || same {
		return j.input, err
	}
	src, err := os.Open(j.input)
	if err != nil {
		return "", fmt.Errorf("打开源文件失败: %w", err)
	}
	defer src.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("创建输出目录失败: %w", err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("创建输出文件失败: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return "", fmt.Errorf("复制源文件失败: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("复制源文件失败: %w", err)
	}
	return dst, nil
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return absA == absB, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入输出文件失败: %w", err)
	}
	return nil
}

func writeDebug(res *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(res, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
