package types

import (
	"encoding/json"
	"fmt"
)

// TranscriptSegment 转写片段，由外部转写服务产生，只读消费
type TranscriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// NewTranscriptSegment 规范化构造入口
func NewTranscriptSegment(start, end float64, text string) TranscriptSegment {
	return TranscriptSegment{Start: start, End: end, Text: text}
}

// NormalizeSegments 在边界处把异构的片段输入（已定型的片段或等价的通用映射）
// 归一化为规范的 TranscriptSegment。下游代码不再做动态判别。
func NormalizeSegments(raw []any) ([]TranscriptSegment, error) {
	segments := make([]TranscriptSegment, 0, len(raw))
	for i, item := range raw {
		switch v := item.(type) {
		case TranscriptSegment:
			segments = append(segments, v)
		case *TranscriptSegment:
			if v == nil {
				return nil, fmt.Errorf("segment %d is nil", i)
			}
			segments = append(segments, *v)
		case map[string]any:
			seg, err := segmentFromMap(v)
			if err != nil {
				return nil, fmt.Errorf("segment %d: %w", i, err)
			}
			segments = append(segments, seg)
		default:
			return nil, fmt.Errorf("segment %d has unsupported type %T", i, item)
		}
	}
	return segments, nil
}

func segmentFromMap(m map[string]any) (TranscriptSegment, error) {
	start, err := numberField(m, "start")
	if err != nil {
		return TranscriptSegment{}, err
	}
	end, err := numberField(m, "end")
	if err != nil {
		return TranscriptSegment{}, err
	}

	text, _ := m["text"].(string)
	return NewTranscriptSegment(start, end, text), nil
}

func numberField(m map[string]any, key string) (float64, error) {
	value, ok := m[key]
	if !ok {
		return 0, nil
	}
	switch n := value.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	default:
		return 0, fmt.Errorf("field %q has non-numeric type %T", key, value)
	}
}

// NoteSource 笔记生成的输入汇总，随任务持久化，重试时原样复原
type NoteSource struct {
	Title      string              `json:"title"`
	Tags       []string            `json:"tags,omitempty"`
	Segments   []TranscriptSegment `json:"segments"`
	Formats    []string            `json:"formats,omitempty"`
	Style      string              `json:"style,omitempty"`
	Extras     string              `json:"extras,omitempty"`
	Screenshot bool                `json:"screenshot,omitempty"`
	Link       bool                `json:"link,omitempty"`
}

// SummarizeSource 摘要编排器的入参。Segments 接受已定型的 TranscriptSegment
// 或等价的通用映射，进入编排器后立即经 NormalizeSegments 归一化。
type SummarizeSource struct {
	Title      string
	Tags       []string
	Segments   []any
	ImageURLs  []string
	Formats    []string
	Style      string
	Extras     string
	Screenshot bool
	Link       bool
}

// NoteBasePrompt 笔记生成提示词
var NoteBasePrompt = `你是一位专业的视频笔记整理助手。
我将提供一个视频的带时间戳字幕（格式 "MM:SS - 内容"），可能附带按时间顺序拼接的视频截图网格。
请根据这些内容生成一份结构化的 Markdown 学习笔记。

要求：
1. **忠实原意**：概括视频的核心内容，不要编造字幕中不存在的信息。
2. **结构清晰**：使用层级标题组织章节，按视频内容的推进顺序编排。
3. **重点突出**：提炼关键观点、数据与结论。
4. **直接输出 Markdown 正文**：不要包裹代码块，不要输出多余的说明。

视频标题：%s
%s
以下是字幕内容：
%s`

// ScreenshotDirective 截图标记指令，开启截图选项时附加到提示词
var ScreenshotDirective = "如果某个章节有对应的画面值得保留，请在该章节末尾单独一行插入标记 *Screenshot-MM:SS（使用字幕中的时间戳）。"

// LinkDirective 原片跳转指令，开启链接选项时附加到提示词
var LinkDirective = "请在每个章节标题后附上该章节起始时间戳（格式 MM:SS），便于跳转回原视频。"
