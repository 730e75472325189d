package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/betbot/gomango/dex/types"
)

// MarketDescriptor 市场描述符（组配置中的静态市场元数据）
type MarketDescriptor struct {
	Symbol        string `yaml:"symbol" json:"symbol"`
	Kind          string `yaml:"kind" json:"kind"` // perp | spot
	Address       string `yaml:"address" json:"address"`
	MarketIndex   int    `yaml:"market_index" json:"market_index"`
	BaseDecimals  int32  `yaml:"base_decimals" json:"base_decimals"`
	QuoteDecimals int32  `yaml:"quote_decimals" json:"quote_decimals"`
}

// TokenDescriptor 组内代币描述符
type TokenDescriptor struct {
	Symbol   string `yaml:"symbol" json:"symbol"`
	Mint     string `yaml:"mint" json:"mint"`
	RootKey  string `yaml:"root_key" json:"root_key"`
	Decimals int32  `yaml:"decimals" json:"decimals"`
}

// GroupConfig 组配置（只读，会话启动时加载一次）
type GroupConfig struct {
	// Name 组名，例如 devnet.2
	Name string `yaml:"name" json:"name"`

	// Cluster 集群名，例如 devnet / mainnet
	Cluster string `yaml:"cluster" json:"cluster"`

	// ClusterURL 集群 RPC 端点
	ClusterURL string `yaml:"cluster_url" json:"cluster_url"`

	// StreamURL 成交事件流 WebSocket 端点（可选）
	StreamURL string `yaml:"stream_url" json:"stream_url"`

	// ProgramID 交易程序地址
	ProgramID string `yaml:"program_id" json:"program_id"`

	// GroupAddress 组账户地址
	GroupAddress string `yaml:"group_address" json:"group_address"`

	Markets []MarketDescriptor `yaml:"markets" json:"markets"`
	Tokens  []TokenDescriptor  `yaml:"tokens" json:"tokens"`
}

// Config 应用配置
type Config struct {
	Group GroupConfig `yaml:"group" json:"group"`

	// BaseSymbol 交易标的基础币符号，默认 BTC
	BaseSymbol string `yaml:"base_symbol" json:"base_symbol"`

	// MaxRetries 远端调用有界重试次数
	MaxRetries int `yaml:"max_retries" json:"max_retries"`

	// RetryDelay 重试基础等待时长
	RetryDelay time.Duration `yaml:"retry_delay" json:"retry_delay"`

	// RequestTimeout 单次远端调用硬超时
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`

	LogLevel string `yaml:"log_level" json:"log_level"`
	LogFile  string `yaml:"log_file" json:"log_file"`

	// KeystorePath 身份密钥库路径（cmd 层使用）
	KeystorePath string `yaml:"keystore_path" json:"keystore_path"`
}

// LoadFromFile 从指定文件加载配置（按扩展名支持 YAML 和 JSON）
func LoadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var config Config
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("解析 YAML 配置文件失败: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("解析 JSON 配置文件失败: %w", err)
		}
	default:
		return nil, fmt.Errorf("不支持的配置文件格式: %s (支持 .yaml, .yml, .json)", ext)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("配置验证失败: %w", err)
	}
	return &config, nil
}

// applyDefaults 填充默认值（环境变量 > 默认值）
func (c *Config) applyDefaults() {
	if c.BaseSymbol == "" {
		c.BaseSymbol = getEnv("GOMANGO_BASE_SYMBOL", "BTC")
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = parseIntEnv("GOMANGO_MAX_RETRIES", 3)
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = time.Duration(parseIntEnv("GOMANGO_RETRY_DELAY_MS", 500)) * time.Millisecond
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = time.Duration(parseIntEnv("GOMANGO_REQUEST_TIMEOUT_SEC", 30)) * time.Second
	}
	if c.LogLevel == "" {
		c.LogLevel = getEnv("LOG_LEVEL", "info")
	}
	if c.LogFile == "" {
		c.LogFile = getEnv("LOG_FILE", "")
	}
	if c.Group.ClusterURL == "" {
		c.Group.ClusterURL = getEnv("GOMANGO_CLUSTER_URL", "")
	}
	if c.KeystorePath == "" {
		c.KeystorePath = getEnv("GOMANGO_KEYSTORE_PATH", "")
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Group.ClusterURL == "" {
		return fmt.Errorf("cluster_url 未配置")
	}
	if c.Group.ProgramID == "" {
		return fmt.Errorf("program_id 未配置")
	}
	if c.Group.GroupAddress == "" {
		return fmt.Errorf("group_address 未配置")
	}
	if len(c.Group.Markets) == 0 {
		return fmt.Errorf("组配置中没有市场描述符")
	}
	for _, m := range c.Group.Markets {
		if m.Kind != string(types.MarketKindPerp) && m.Kind != string(types.MarketKindSpot) {
			return fmt.Errorf("市场 %s 的类型不合法: %s", m.Symbol, m.Kind)
		}
		if m.BaseDecimals <= 0 || m.QuoteDecimals <= 0 {
			return fmt.Errorf("市场 %s 的精度未配置", m.Symbol)
		}
	}
	return nil
}

// MarketBySymbolAndKind 按基础币符号和市场类型查找市场描述符
func (g *GroupConfig) MarketBySymbolAndKind(symbol string, kind types.MarketKind) (*MarketDescriptor, error) {
	for i := range g.Markets {
		m := &g.Markets[i]
		if strings.EqualFold(m.Symbol, symbol) && m.Kind == string(kind) {
			return m, nil
		}
	}
	return nil, fmt.Errorf("组 %s 中没有市场 %s/%s", g.Name, symbol, kind)
}

// TokenIndexByMint 按 mint 地址查找代币序号，找不到返回 -1
func (g *GroupConfig) TokenIndexByMint(mint string) int {
	for i, t := range g.Tokens {
		if t.Mint == mint {
			return i
		}
	}
	return -1
}

// ToMarket 转换为领域市场模型
func (m *MarketDescriptor) ToMarket() types.Market {
	return types.Market{
		Symbol:        m.Symbol,
		Kind:          types.MarketKind(m.Kind),
		Address:       m.Address,
		MarketIndex:   m.MarketIndex,
		BaseDecimals:  m.BaseDecimals,
		QuoteDecimals: m.QuoteDecimals,
	}
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseIntEnv 解析整数环境变量
func parseIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
