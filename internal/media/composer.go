package media

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"os"
	"path/filepath"

	"github.com/nfnt/resize"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/Acclerate/BiliNote/log"
	apperrors "github.com/Acclerate/BiliNote/pkg/errors"
	"github.com/Acclerate/BiliNote/pkg/util"
)

// GridOptions 控制网格图的布局与输出。
type GridOptions struct {
	Rows        int
	Cols        int
	CellWidth   int
	CellHeight  int
	JpegQuality int
	FontPath    string // 时间标签字体,缺失或解析失败时退回内置点阵字体
}

// GroupFrames 按文件名里的时间戳重新排序后,把帧切成 rows*cols 大小的分组。
// 不足一组的尾部直接丢弃,不做补白。
func GroupFrames(framePaths []string, rows, cols int) [][]string {
	capacity := rows * cols
	if capacity <= 0 || len(framePaths) == 0 {
		return nil
	}
	sorted := make([]string, len(framePaths))
	copy(sorted, framePaths)
	SortFramesByTime(sorted)

	groups := lo.Chunk(sorted, capacity)
	if n := len(groups); n > 0 && len(groups[n-1]) < capacity {
		log.GetLogger().Warn("丢弃不足一组的尾部帧",
			zap.Int("group", n),
			zap.Int("got", len(groups[n-1])),
			zap.Int("want", capacity))
		groups = groups[:n-1]
	}
	return groups
}

// ComposeGrids 把采样帧拼成带时间标签的网格图,按 grid_<1起始序号>.jpg 写入 gridDir,
// 返回生成顺序的路径列表。写入前会清掉目录里上一次运行的网格图。
// 失败策略为 fail-fast,任何一张网格图生成失败都会中止。
func ComposeGrids(framePaths []string, gridDir string, opts GridOptions) ([]string, error) {
	if err := os.MkdirAll(gridDir, 0755); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeMediaProcessing, "视频处理失败 Media processing failed", err)
	}
	if err := ClearStaleOutputs(gridDir, gridPrefix); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeMediaProcessing, "视频处理失败 Media processing failed", err)
	}

	face := loadLabelFace(opts.FontPath)
	groups := GroupFrames(framePaths, opts.Rows, opts.Cols)
	log.GetLogger().Info("开始拼接网格图",
		zap.Int("frames", len(framePaths)),
		zap.Int("groups", len(groups)))

	sheetPaths := make([]string, 0, len(groups))
	for idx, group := range groups {
		outputPath := filepath.Join(gridDir, fmt.Sprintf("grid_%d.jpg", idx+1))
		if err := composeSheet(group, outputPath, opts, face); err != nil {
			log.GetLogger().Error("拼接网格图失败",
				zap.Error(err),
				zap.Int("group", idx+1),
				zap.Stringer("policy", ComposePolicy))
			return nil, apperrors.Wrap(apperrors.CodeMediaProcessing, "视频处理失败 Media processing failed", err)
		}
		sheetPaths = append(sheetPaths, outputPath)
	}
	return sheetPaths, nil
}

// composeSheet 把一组帧按行优先顺序铺进白底画布,第 i 张落在第 i%cols 列、i/cols 行。
func composeSheet(group []string, outputPath string, opts GridOptions, face font.Face) error {
	canvas := image.NewRGBA(image.Rect(0, 0, opts.CellWidth*opts.Cols, opts.CellHeight*opts.Rows))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	for i, framePath := range group {
		cell, err := loadCell(framePath, opts.CellWidth, opts.CellHeight)
		if err != nil {
			return err
		}
		x := (i % opts.Cols) * opts.CellWidth
		y := (i / opts.Cols) * opts.CellHeight
		draw.Draw(canvas, image.Rect(x, y, x+opts.CellWidth, y+opts.CellHeight), cell, cell.Bounds().Min, draw.Src)

		if seconds, ok := ParseFrameSeconds(framePath); ok {
			drawLabel(canvas, face, util.FormatClock(float64(seconds)), x+10, y+10)
		}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeSheetCompose, "拼图生成失败 Contact sheet composition failed", err)
	}
	defer f.Close()
	if err = jpeg.Encode(f, canvas, &jpeg.Options{Quality: opts.JpegQuality}); err != nil {
		return apperrors.Wrap(apperrors.CodeSheetCompose, "拼图生成失败 Contact sheet composition failed", err)
	}
	return nil
}

func loadCell(framePath string, width, height int) (image.Image, error) {
	f, err := os.Open(framePath)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeSheetCompose, "拼图生成失败 Contact sheet composition failed", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeSheetCompose, "拼图生成失败 Contact sheet composition failed", err)
	}
	return resize.Resize(uint(width), uint(height), img, resize.Lanczos3), nil
}

var labelOffsets = [...]image.Point{
	{X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: -1, Y: 0}, {X: 1, Y: 0},
	{X: -1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 1},
}

// drawLabel 在 (x, y) 画带 1 像素黑边的黄色时间标签,保证在任意画面上可读。
func drawLabel(dst draw.Image, face font.Face, text string, x, y int) {
	ascent := face.Metrics().Ascent.Ceil()
	drawer := font.Drawer{Dst: dst, Face: face}

	drawer.Src = image.NewUniform(color.Black)
	for _, offset := range labelOffsets {
		drawer.Dot = fixed.P(x+offset.X, y+ascent+offset.Y)
		drawer.DrawString(text)
	}

	drawer.Src = image.NewUniform(color.RGBA{R: 255, G: 255, B: 0, A: 255})
	drawer.Dot = fixed.P(x, y+ascent)
	drawer.DrawString(text)
}

// loadLabelFace 加载标签字体,任何一步失败都退回内置点阵字体而不是中断拼图。
func loadLabelFace(fontPath string) font.Face {
	if fontPath == "" {
		return basicfont.Face7x13
	}
	data, err := os.ReadFile(fontPath)
	if err != nil {
		log.GetLogger().Warn("标签字体读取失败,使用内置字体", zap.String("font", fontPath), zap.Error(err))
		return basicfont.Face7x13
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		log.GetLogger().Warn("标签字体解析失败,使用内置字体", zap.String("font", fontPath), zap.Error(err))
		return basicfont.Face7x13
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{Size: 48, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		log.GetLogger().Warn("标签字体初始化失败,使用内置字体", zap.String("font", fontPath), zap.Error(err))
		return basicfont.Face7x13
	}
	return face
}
