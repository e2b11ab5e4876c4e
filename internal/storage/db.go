package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Acclerate/BiliNote/internal/appdirs"
	"github.com/Acclerate/BiliNote/internal/types"
	"github.com/Acclerate/BiliNote/log"
)

// DB 是全局数据库句柄,InitDB 之后可用。
var DB *gorm.DB

var appDirsResolver = appdirs.Resolve

// InitDB 打开(必要时创建)sqlite 库并迁移表结构,失败直接终止进程。
// WAL 加忙等待超时让任务 worker 的进度写入与接口查询可以并发。
func InitDB() {
	dbPath, err := resolveDBPath()
	if err != nil {
		log.GetLogger().Fatal("数据库路径解析失败 Failed to resolve database path", zap.Error(err))
	}
	if err = os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		log.GetLogger().Fatal("数据库目录创建失败 Failed to create database directory",
			zap.String("dir", filepath.Dir(dbPath)), zap.Error(err))
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000", dbPath)
	DB, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{
		// 任务每个阶段都写进度行,SQL 日志降到 Warn 防刷屏
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.GetLogger().Fatal("数据库连接失败 Failed to connect database", zap.Error(err))
	}

	if err = DB.AutoMigrate(&types.NoteTask{}, &types.Provider{}); err != nil {
		log.GetLogger().Fatal("数据库迁移失败 Failed to migrate database", zap.Error(err))
	}

	log.GetLogger().Info("数据库就绪 Database initialized", zap.String("path", dbPath))
}

func resolveDBPath() (string, error) {
	dirs, err := appDirsResolver()
	if err != nil {
		return "", err
	}
	return appdirs.DBPathFor(dirs), nil
}
