package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeMatching()
	c.normalizeLogging()
	c.normalizeMappings()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.AudioDir, err = expandPath(strings.TrimSpace(c.Paths.AudioDir)); err != nil {
		return fmt.Errorf("paths.audio_dir: %w", err)
	}
	if c.Paths.RecordsFile, err = expandPath(strings.TrimSpace(c.Paths.RecordsFile)); err != nil {
		return fmt.Errorf("paths.records_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.QuarantineDirName = strings.TrimSpace(c.Paths.QuarantineDirName)
	if c.Paths.QuarantineDirName == "" {
		c.Paths.QuarantineDirName = defaultQuarantineDirName
	}
	return nil
}

func (c *Config) normalizeMatching() {
	c.Matching.DefaultExtension = normalizeExtension(c.Matching.DefaultExtension)
	if c.Matching.DefaultExtension == "" {
		c.Matching.DefaultExtension = defaultExtension
	}

	if len(c.Matching.AudioExtensions) == 0 {
		c.Matching.AudioExtensions = []string{c.Matching.DefaultExtension}
	}
	exts := make([]string, 0, len(c.Matching.AudioExtensions))
	seen := map[string]struct{}{}
	for _, ext := range c.Matching.AudioExtensions {
		ext = normalizeExtension(ext)
		if ext == "" {
			continue
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		exts = append(exts, ext)
	}
	c.Matching.AudioExtensions = exts

	if c.Matching.CandidateLimit <= 0 {
		c.Matching.CandidateLimit = defaultCandidateLimit
	}
	if c.Matching.Workers < 0 {
		c.Matching.Workers = 0
	}
	c.Matching.ContentField = strings.TrimSpace(c.Matching.ContentField)
	if c.Matching.ContentField == "" {
		c.Matching.ContentField = defaultContentField
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
}

func (c *Config) normalizeMappings() {
	if c.Suffixes == nil {
		c.Suffixes = map[string][]string{}
	}
	for suffix, fields := range c.Suffixes {
		cleaned := make([]string, 0, len(fields))
		for _, field := range fields {
			if field = strings.TrimSpace(field); field != "" {
				cleaned = append(cleaned, field)
			}
		}
		c.Suffixes[suffix] = cleaned
	}
	if c.Groups == nil {
		c.Groups = map[string][]string{}
	}
	for group, fields := range c.Groups {
		cleaned := make([]string, 0, len(fields))
		for _, field := range fields {
			if field = strings.TrimSpace(field); field != "" {
				cleaned = append(cleaned, field)
			}
		}
		c.Groups[group] = cleaned
	}
	if c.Rules == nil {
		c.Rules = map[string]Rule{}
	}
	for name, rule := range c.Rules {
		rule.Kind = strings.ToLower(strings.TrimSpace(rule.Kind))
		c.Rules[name] = rule
	}
}

func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
