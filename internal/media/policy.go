// Package media 实现笔记流水线的视频处理部分:按固定间隔采样视频帧、
// 拼接带时间标签的网格图、编码成可内嵌的图片引用,以及把长媒体切分成
// 适合独立处理的分段。
package media

// FailurePolicy 描述一个媒体处理操作失败时的语义。
type FailurePolicy int

const (
	// FailFast 任一步骤失败立即中止整个操作,不返回部分结果。
	FailFast FailurePolicy = iota
	// SoftFail 失败时降级成可用的兜底结果,不向调用方抛错。
	SoftFail
)

func (p FailurePolicy) String() string {
	switch p {
	case FailFast:
		return "fail-fast"
	case SoftFail:
		return "soft-fail"
	default:
		return "unknown"
	}
}

// 各操作的失败策略。采样、拼图、编码失败即中止;
// 分段失败退回原始文件继续后续流程。
const (
	SamplePolicy  = FailFast
	ComposePolicy = FailFast
	EncodePolicy  = FailFast
	SplitPolicy   = SoftFail
)
