package renderer

import (
	"image"

	"github.com/ByLCY/docshot/layout"
)

// Renderer 将布局结果输出为文件字节，例如 PDF。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

// Rasterizer 将布局结果绘制为已裁剪的不透明位图。
type Rasterizer interface {
	Rasterize(result *layout.Result) (*image.RGBA, error)
}
