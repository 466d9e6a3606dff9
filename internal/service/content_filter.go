package service

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/importcjj/sensitive"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nsxzhou1114/social-api/internal/config"
	"go.uber.org/zap"
)

// ContentFilter 用户内容过滤：清理HTML并屏蔽敏感词
type ContentFilter struct {
	filter *sensitive.Filter
	policy *bluemonday.Policy
	words  int
	mu     sync.RWMutex
	logger *zap.SugaredLogger
}

// NewContentFilter 创建内容过滤器，词库文件读取失败只记录日志
func NewContentFilter(cfg *config.ContentConfig, logger *zap.SugaredLogger) *ContentFilter {
	f := &ContentFilter{
		filter: sensitive.New(),
		policy: bluemonday.UGCPolicy(),
		logger: logger,
	}
	if cfg == nil {
		return f
	}

	f.AddWords(cfg.SensitiveWords...)
	if cfg.SensitiveWordsFile != "" {
		if err := f.loadWordsFromFile(cfg.SensitiveWordsFile); err != nil {
			logger.Errorf("加载敏感词失败: %v", err)
		}
	}
	return f
}

// AddWords 添加敏感词
func (f *ContentFilter) AddWords(words ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, word := range words {
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		f.filter.AddWord(word)
		f.words++
	}
}

// loadWordsFromFile 从文件加载敏感词，每行一个，支持Base64编码
func (f *ContentFilter) loadWordsFromFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("打开敏感词文件失败: %w", err)
	}
	defer file.Close()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if decoded, err := base64.StdEncoding.DecodeString(line); err == nil && utf8.Valid(decoded) {
			line = strings.TrimSpace(string(decoded))
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("读取敏感词文件出错: %w", err)
	}

	f.AddWords(words...)
	f.logger.Infof("已加载 %d 个敏感词", len(words))
	return nil
}

// Clean 清理用户输入，结果为空时返回ErrEmptyContent
func (f *ContentFilter) Clean(text string) (string, error) {
	text = strings.TrimSpace(text)
	// 纯文本不经过HTML清理，避免转义引号和&
	if strings.ContainsAny(text, "<>") {
		text = strings.TrimSpace(f.policy.Sanitize(text))
	}
	if text == "" {
		return "", ErrEmptyContent
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.words == 0 {
		return text, nil
	}
	return f.filter.Replace(text, '*'), nil
}

// FindSensitiveWords 返回文本中出现的敏感词
func (f *ContentFilter) FindSensitiveWords(text string) []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.words == 0 {
		return nil
	}
	return f.filter.FindAll(text)
}
