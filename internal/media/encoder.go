package media

import (
	"encoding/base64"
	"os"

	"go.uber.org/zap"

	"github.com/Acclerate/BiliNote/log"
	apperrors "github.com/Acclerate/BiliNote/pkg/errors"
)

const imageRefPrefix = "data:image/jpeg;base64,"

// EncodeImages 把图片文件编码成可直接内嵌到请求里的 data URL 引用,
// 输出与输入一一对应、顺序不变。任何文件读取失败都会中止整个编码。
func EncodeImages(imagePaths []string) ([]string, error) {
	refs := make([]string, 0, len(imagePaths))
	for _, path := range imagePaths {
		data, err := os.ReadFile(path)
		if err != nil {
			log.GetLogger().Error("读取图片失败",
				zap.Error(err),
				zap.String("image", path),
				zap.Stringer("policy", EncodePolicy))
			return nil, apperrors.Wrap(apperrors.CodeImageEncode, "图片编码失败 Image encoding failed", err)
		}
		refs = append(refs, imageRefPrefix+base64.StdEncoding.EncodeToString(data))
	}
	return refs, nil
}
