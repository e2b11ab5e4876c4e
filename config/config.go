package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Acclerate/BiliNote/internal/appdirs"

	"github.com/BurntSushi/toml"
)

// Conf 全局配置 global configuration
var Conf Config

// testExecutableEnv lets portable-mode tests pin the executable location.
const testExecutableEnv = "BILINOTE_TEST_EXECUTABLE"

type Config struct {
	App    App    `toml:"app"`
	Server Server `toml:"server"`
	Llm    Llm    `toml:"llm"`
	Media  Media  `toml:"media"`
	Queue  Queue  `toml:"queue"`
}

type App struct {
	Name        string `toml:"name"`
	Proxy       string `toml:"proxy"`
	TaskWorkers int    `toml:"task_workers"` // in-process note task workers
}

type Server struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Llm 大模型服务配置（OpenAI 兼容接口）
type Llm struct {
	BaseUrl     string  `toml:"base_url"`
	ApiKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Temperature float32 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`
	// VisionErrorKeywords 视觉能力错误关键词，命中即触发纯文本重试
	// keywords matched case-insensitively against provider error text
	VisionErrorKeywords []string `toml:"vision_error_keywords"`
}

// Media 媒体处理配置。ffmpeg/ffprobe 路径显式下发，不修改进程环境变量
type Media struct {
	FfmpegPath         string `toml:"ffmpeg_path"`  // empty means look up on PATH
	FfprobePath        string `toml:"ffprobe_path"` // empty means look up on PATH
	FrameIntervalSec   int    `toml:"frame_interval_sec"`
	MaxFrames          int    `toml:"max_frames"`
	GridRows           int    `toml:"grid_rows"`
	GridCols           int    `toml:"grid_cols"`
	CellWidth          int    `toml:"cell_width"`
	CellHeight         int    `toml:"cell_height"`
	JpegQuality        int    `toml:"jpeg_quality"`
	FontPath           string `toml:"font_path"` // optional TTF for tile labels
	SegmentDurationSec int    `toml:"segment_duration_sec"`
	SampleWorkers      int    `toml:"sample_workers"`
}

type Queue struct {
	Enabled       bool   `toml:"enabled"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	Concurrency   int    `toml:"concurrency"`
}

func defaultConfig() Config {
	return Config{
		App: App{
			Name:        "BiliNote",
			TaskWorkers: 2,
		},
		Server: Server{
			Host: "127.0.0.1",
			Port: 8888,
		},
		Llm: Llm{
			BaseUrl:     "https://api.openai.com/v1",
			Model:       "gpt-4o",
			Temperature: 0.7,
			MaxTokens:   8192,
			VisionErrorKeywords: []string{
				"vlm",
				"vision language model",
				"vision",
				"image input",
				"not support image",
			},
		},
		Media: Media{
			FrameIntervalSec:   2,
			MaxFrames:          1000,
			GridRows:           3,
			GridCols:           3,
			CellWidth:          960,
			CellHeight:         540,
			JpegQuality:        90,
			SegmentDurationSec: 300,
			SampleWorkers:      4,
		},
		Queue: Queue{
			Enabled:     false,
			RedisAddr:   "127.0.0.1:6379",
			Concurrency: 5,
		},
	}
}

var resolveConfigPath = defaultResolveConfigPath

// ResolveConfigPath 返回配置文件路径 returns the effective config file location
func ResolveConfigPath() (string, error) {
	return resolveConfigPath()
}

func defaultResolveConfigPath() (string, error) {
	if testExe := strings.TrimSpace(os.Getenv(testExecutableEnv)); testExe != "" && portableEnabled() {
		dataDir := filepath.Join(filepath.Dir(testExe), "data")
		return filepath.Join(dataDir, "config", "config.toml"), nil
	}

	paths, err := appdirs.Resolve()
	if err != nil {
		return "", err
	}
	return paths.ConfigFile, nil
}

func portableEnabled() bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(appdirs.PortableEnv)))
	return value == "1" || value == "true"
}

// LoadOrCreateConfig 加载配置，不存在则生成默认配置
// returns created=true when a fresh default config file was written
func LoadOrCreateConfig() (bool, error) {
	configPath, err := resolveConfigPath()
	if err != nil {
		return false, fmt.Errorf("resolve config path: %w", err)
	}

	if _, err = os.Stat(configPath); os.IsNotExist(err) {
		Conf = defaultConfig()
		if err = SaveConfig(); err != nil {
			return false, fmt.Errorf("write default config: %w", err)
		}
		return true, nil
	} else if err != nil {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	Conf = Config{}
	if _, err = toml.DecodeFile(configPath, &Conf); err != nil {
		return false, fmt.Errorf("decode config file %s: %w", configPath, err)
	}

	applyFallbacks(&Conf)
	if err = validateConfig(Conf); err != nil {
		return false, err
	}
	return false, nil
}

// SaveConfig 持久化当前配置 writes Conf to the resolved config path
func SaveConfig() error {
	configPath, err := resolveConfigPath()
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer file.Close()

	if err = toml.NewEncoder(file).Encode(Conf); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// applyFallbacks 对缺省字段套用默认值，兼容旧配置文件
func applyFallbacks(c *Config) {
	def := defaultConfig()

	if strings.TrimSpace(c.Server.Host) == "" {
		c.Server.Host = def.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = def.Server.Port
	}
	if c.App.TaskWorkers <= 0 {
		c.App.TaskWorkers = def.App.TaskWorkers
	}
	if c.Llm.Temperature == 0 {
		c.Llm.Temperature = def.Llm.Temperature
	}
	if c.Llm.MaxTokens <= 0 {
		c.Llm.MaxTokens = def.Llm.MaxTokens
	}
	if len(c.Llm.VisionErrorKeywords) == 0 {
		c.Llm.VisionErrorKeywords = def.Llm.VisionErrorKeywords
	}
	if c.Media.FrameIntervalSec <= 0 {
		c.Media.FrameIntervalSec = def.Media.FrameIntervalSec
	}
	if c.Media.MaxFrames <= 0 {
		c.Media.MaxFrames = def.Media.MaxFrames
	}
	if c.Media.GridRows <= 0 {
		c.Media.GridRows = def.Media.GridRows
	}
	if c.Media.GridCols <= 0 {
		c.Media.GridCols = def.Media.GridCols
	}
	if c.Media.CellWidth <= 0 {
		c.Media.CellWidth = def.Media.CellWidth
	}
	if c.Media.CellHeight <= 0 {
		c.Media.CellHeight = def.Media.CellHeight
	}
	if c.Media.JpegQuality <= 0 {
		c.Media.JpegQuality = def.Media.JpegQuality
	}
	if c.Media.SegmentDurationSec <= 0 {
		c.Media.SegmentDurationSec = def.Media.SegmentDurationSec
	}
	if c.Media.SampleWorkers <= 0 {
		c.Media.SampleWorkers = def.Media.SampleWorkers
	}
	if c.Queue.Concurrency <= 0 {
		c.Queue.Concurrency = def.Queue.Concurrency
	}
	// 已启用的队列必须显式给出地址,留给 validateConfig 报错。
	if strings.TrimSpace(c.Queue.RedisAddr) == "" && !c.Queue.Enabled {
		c.Queue.RedisAddr = def.Queue.RedisAddr
	}
}

func validateConfig(c Config) error {
	if c.Media.JpegQuality > 100 {
		return fmt.Errorf("media.jpeg_quality must be in 1..100, got %d", c.Media.JpegQuality)
	}
	if c.Queue.Enabled && strings.TrimSpace(c.Queue.RedisAddr) == "" {
		return fmt.Errorf("queue.redis_addr is required when queue.enabled is true")
	}
	return nil
}
