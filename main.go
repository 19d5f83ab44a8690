package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/ByLCY/docshot/binding"
	"github.com/ByLCY/docshot/config"
	"github.com/ByLCY/docshot/convert"
	"github.com/ByLCY/docshot/encode"
	"github.com/ByLCY/docshot/fonts"
)

func main() {
	input := flag.String("in", "", "源文件路径（docx/xml/html/docshot）")
	output := flag.String("out", "", "输出路径，默认与源文件同名")
	outDir := flag.String("outdir", "", "批量模式的输出目录")
	profile := flag.String("profile", "auto", "布局配置：auto|general|compact")
	format := flag.String("format", "", "输出格式：jpeg|png|bmp|tiff|pdf")
	quality := flag.Int("quality", 0, "JPEG 质量 1-100")
	configPath := flag.String("config", "", "YAML 配置文件")
	debug := flag.String("debug", "", "布局调试 JSON 输出路径（仅单文件）")
	dataJSON := flag.String("data", "", "绑定到 .docshot 的 JSON 数据，@file 表示从文件读取")
	fallbackCopy := flag.Bool("fallback-copy", false, "无内容或失败时复制源文件作为输出")
	workers := flag.Int("jobs", 4, "批量模式并发数")
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("读取配置失败: %v", err)
		}
	}

	s, err := newSettings(cfg, *profile, *format, *quality, *dataJSON, *fallbackCopy)
	if err != nil {
		log.Fatalf("参数错误: %v", err)
	}

	var jobs []job
	switch {
	case flag.NArg() > 0:
		if *output != "" || *debug != "" {
			log.Fatalf("批量模式不支持 -out 与 -debug，请使用 -outdir")
		}
		for _, in := range flag.Args() {
			jobs = append(jobs, job{input: in, output: outputPath(in, *outDir, s.format)})
		}
	case *input != "":
		out := *output
		if out == "" {
			out = outputPath(*input, *outDir, s.format)
		}
		jobs = append(jobs, job{input: *input, output: out, debug: *debug})
	default:
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rules, err := cfg.Rules()
	if err != nil {
		log.Fatalf("噪声规则无效: %v", err)
	}
	provider, err := fonts.NewProvider(ctx, cfg.FontOptions(logger))
	if err != nil {
		log.Fatalf("加载字体失败: %v", err)
	}
	logger.Debug("font resolved", "source", provider.Source())

	conv := convert.New(provider, rules, logger)
	results := runBatch(ctx, conv, jobs, s, *workers)

	failed := 0
	for _, r := range results {
		switch r.outcome {
		case outcomeFailed:
			failed++
			logger.Error("conversion failed", "in", r.job.input, "err", r.err)
		case outcomeNoContent:
			fmt.Printf("无内容：%s\n", r.job.input)
		case outcomeFallback:
			fmt.Printf("已复制源文件：%s -> %s\n", r.job.input, r.written)
		default:
			fmt.Printf("已生成：%s\n", r.written)
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func newSettings(cfg config.Config, profile, format string, quality int, dataJSON string, fallbackCopy bool) (settings, error) {
	s := settings{cfg: cfg, profile: profile, quality: cfg.Output.Quality, fallbackCopy: fallbackCopy}
	if quality != 0 {
		s.quality = quality
	}
	if format == "" {
		format = cfg.Output.Format
	}
	f, err := encode.ParseFormat(format)
	if err != nil {
		return settings{}, err
	}
	s.format = f
	switch strings.ToLower(profile) {
	case "auto", "":
		s.profile = "auto"
	default:
		if _, err := cfg.Profile(profile); err != nil {
			return settings{}, err
		}
	}
	if dataJSON != "" {
		var src *os.File
		if path, ok := strings.CutPrefix(dataJSON, "@"); ok {
			if src, err = os.Open(path); err != nil {
				return settings{}, fmt.Errorf("打开 data 文件失败: %w", err)
			}
			defer src.Close()
			s.data, err = binding.Decode(src)
		} else {
			s.data, err = binding.Decode(strings.NewReader(dataJSON))
		}
		if err != nil {
			return settings{}, err
		}
	}
	return s, nil
}

// outputPath 把源文件名换成输出格式的扩展名，dir 为空时放在源文件旁边。
func outputPath(input, dir string, f encode.Format) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + f.Ext()
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, base)
}
