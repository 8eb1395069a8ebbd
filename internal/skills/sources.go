package skills

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"ai-match-go/internal/constants"
	"ai-match-go/internal/storage"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Source 技能词表来源。词表是外部可替换资源，
// 通过 "file:" / "mysql:" 标识符选择实现。
type Source interface {
	// Load 加载全部词表记录
	Load(ctx context.Context) ([]RegistryEntry, error)

	// Name 来源标识，用于日志和缓存键
	Name() string
}

// registryFile 文件词表的顶层结构: {"skills":[{"name":..., "aliases":[...]}]}
type registryFile struct {
	Skills []RegistryEntry `json:"skills"`
}

// FileSource 从JSON文件加载词表
type FileSource struct {
	Path string
}

func (s *FileSource) Name() string {
	return "file:" + s.Path
}

func (s *FileSource) Load(ctx context.Context) ([]RegistryEntry, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("读取词表文件失败: %w", err)
	}
	var reg registryFile
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("解析词表文件失败: %w", err)
	}
	if len(reg.Skills) == 0 {
		return nil, fmt.Errorf("词表文件不包含任何技能: %s", s.Path)
	}
	return reg.Skills, nil
}

// SkillRecord 词表在MySQL中的存储模型
type SkillRecord struct {
	ID      uint           `gorm:"primaryKey"`
	Name    string         `gorm:"column:name;uniqueIndex;size:128"`
	Aliases datatypes.JSON `gorm:"column:aliases"` // JSON数组，例如 ["nodejs","node js"]
}

// TableName 指定表名
func (SkillRecord) TableName() string {
	return "skill_registry"
}

// MySQLSource 从MySQL表加载词表
type MySQLSource struct {
	DB *gorm.DB
}

func (s *MySQLSource) Name() string {
	return "mysql:" + SkillRecord{}.TableName()
}

func (s *MySQLSource) Load(ctx context.Context) ([]RegistryEntry, error) {
	if s.DB == nil {
		return nil, fmt.Errorf("MySQL连接未初始化")
	}
	var records []SkillRecord
	if err := s.DB.WithContext(ctx).Order("name").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("查询技能词表失败: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("技能词表为空")
	}
	entries := make([]RegistryEntry, 0, len(records))
	for _, r := range records {
		entry := RegistryEntry{Name: r.Name}
		if len(r.Aliases) > 0 {
			if err := json.Unmarshal(r.Aliases, &entry.Aliases); err != nil {
				return nil, fmt.Errorf("解析技能 %q 的别名失败: %w", r.Name, err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// NewSource 根据标识符构建词表来源。
// 支持 "file:<path>" 和 "mysql"（使用传入的gorm连接）。
func NewSource(identifier string, db *gorm.DB) (Source, error) {
	switch {
	case strings.HasPrefix(identifier, "file:"):
		return &FileSource{Path: strings.TrimPrefix(identifier, "file:")}, nil
	case strings.HasPrefix(identifier, "mysql"):
		if db == nil {
			return nil, fmt.Errorf("词表来源 %q 需要MySQL连接", identifier)
		}
		return &MySQLSource{DB: db}, nil
	default:
		return nil, fmt.Errorf("不支持的词表来源: %q", identifier)
	}
}

// CachedSource 在词表来源之上叠加Redis缓存，降低对外部来源
// （尤其是MySQL）的启动时依赖。缓存故障只降级为直连来源。
type CachedSource struct {
	Inner  Source
	Redis  *storage.Redis
	Logger zerolog.Logger
}

func (s *CachedSource) Name() string {
	return s.Inner.Name()
}

func (s *CachedSource) Load(ctx context.Context) ([]RegistryEntry, error) {
	data, err := s.Redis.GetVocabRegistry(ctx, s.Inner.Name())
	if err == nil {
		var entries []RegistryEntry
		if jsonErr := json.Unmarshal(data, &entries); jsonErr == nil && len(entries) > 0 {
			s.Logger.Debug().Str("source", s.Inner.Name()).Int("skills", len(entries)).Msg("词表缓存命中")
			return entries, nil
		}
		// 缓存内容损坏时回源重建
		s.Logger.Warn().Str("source", s.Inner.Name()).Msg("词表缓存内容无效，回源重新加载")
	}

	entries, err := s.Inner.Load(ctx)
	if err != nil {
		return nil, err
	}

	if data, jsonErr := json.Marshal(entries); jsonErr == nil {
		if setErr := s.Redis.SetVocabRegistry(ctx, s.Inner.Name(), data, constants.VocabCacheDuration); setErr != nil {
			s.Logger.Warn().Err(setErr).Msg("写入词表缓存失败")
		}
	}
	return entries, nil
}

// fallbackEntries 词表加载失败时的最小可用词表
var fallbackEntries = []RegistryEntry{
	{Name: "python"},
	{Name: "sql"},
}

// LoadVocabulary 加载词表并构建Vocabulary。
// 加载失败时退化为最小词表而不是让整个服务启动失败，与提取器的
// "词表缺失时尽力而为" 策略一致。
func LoadVocabulary(ctx context.Context, src Source, log zerolog.Logger) *Vocabulary {
	entries, err := src.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Str("source", src.Name()).Msg("加载技能词表失败，使用最小回退词表")
		return NewVocabulary(fallbackEntries)
	}
	log.Info().Str("source", src.Name()).Int("skills", len(entries)).Msg("技能词表加载成功")
	return NewVocabulary(entries)
}
