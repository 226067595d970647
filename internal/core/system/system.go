// Package system holds the catalogue of AI coding tools that consume skills.
//
// Each tool is a plain Adapter record in a static table: where it keeps its
// global skills (relative to the user's home) and which directory signals
// that it is installed. Tools that point at the same skills directory form a
// directory-sharing group, derived from the table on demand.
package system

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Adapter describes one tool's skill directory layout.
type Adapter struct {
	Key               string   `json:"key"`
	DisplayName       string   `json:"displayName"`
	RelativeSkillsDir string   `json:"relativeSkillsDir"`
	RelativeDetectDir string   `json:"relativeDetectDir"`
	ReservedEntries   []string `json:"reservedEntries,omitempty"` // entry names the tool owns inside its skills dir
}

var adapters = []Adapter{
	{Key: "cursor", DisplayName: "Cursor", RelativeSkillsDir: ".cursor/skills", RelativeDetectDir: ".cursor"},
	{Key: "claude_code", DisplayName: "Claude Code", RelativeSkillsDir: ".claude/skills", RelativeDetectDir: ".claude"},
	{Key: "codex", DisplayName: "Codex", RelativeSkillsDir: ".codex/skills", RelativeDetectDir: ".codex", ReservedEntries: []string{".system"}},
	{Key: "opencode", DisplayName: "OpenCode", RelativeSkillsDir: ".config/opencode/skills", RelativeDetectDir: ".config/opencode"},
	{Key: "antigravity", DisplayName: "Antigravity", RelativeSkillsDir: ".gemini/antigravity/global_skills", RelativeDetectDir: ".gemini/antigravity"},
	{Key: "amp", DisplayName: "Amp", RelativeSkillsDir: ".config/agents/skills", RelativeDetectDir: ".config/agents"},
	{Key: "kimi_cli", DisplayName: "Kimi Code CLI", RelativeSkillsDir: ".config/agents/skills", RelativeDetectDir: ".config/agents"},
	{Key: "augment", DisplayName: "Augment", RelativeSkillsDir: ".augment/rules", RelativeDetectDir: ".augment"},
	{Key: "openclaw", DisplayName: "OpenClaw", RelativeSkillsDir: ".moltbot/skills", RelativeDetectDir: ".moltbot"},
	{Key: "cline", DisplayName: "Cline", RelativeSkillsDir: ".cline/skills", RelativeDetectDir: ".cline"},
	{Key: "codebuddy", DisplayName: "CodeBuddy", RelativeSkillsDir: ".codebuddy/skills", RelativeDetectDir: ".codebuddy"},
	{Key: "command_code", DisplayName: "Command Code", RelativeSkillsDir: ".commandcode/skills", RelativeDetectDir: ".commandcode"},
	{Key: "continue", DisplayName: "Continue", RelativeSkillsDir: ".continue/skills", RelativeDetectDir: ".continue"},
	{Key: "crush", DisplayName: "Crush", RelativeSkillsDir: ".config/crush/skills", RelativeDetectDir: ".config/crush"},
	{Key: "junie", DisplayName: "Junie", RelativeSkillsDir: ".junie/skills", RelativeDetectDir: ".junie"},
	{Key: "iflow_cli", DisplayName: "iFlow CLI", RelativeSkillsDir: ".iflow/skills", RelativeDetectDir: ".iflow"},
	{Key: "kiro_cli", DisplayName: "Kiro CLI", RelativeSkillsDir: ".kiro/skills", RelativeDetectDir: ".kiro"},
	{Key: "kode", DisplayName: "Kode", RelativeSkillsDir: ".kode/skills", RelativeDetectDir: ".kode"},
	{Key: "mcpjam", DisplayName: "MCPJam", RelativeSkillsDir: ".mcpjam/skills", RelativeDetectDir: ".mcpjam"},
	{Key: "mistral_vibe", DisplayName: "Mistral Vibe", RelativeSkillsDir: ".vibe/skills", RelativeDetectDir: ".vibe"},
	{Key: "mux", DisplayName: "Mux", RelativeSkillsDir: ".mux/skills", RelativeDetectDir: ".mux"},
	{Key: "openclaude", DisplayName: "OpenClaude IDE", RelativeSkillsDir: ".openclaude/skills", RelativeDetectDir: ".openclaude"},
	{Key: "openhands", DisplayName: "OpenHands", RelativeSkillsDir: ".openhands/skills", RelativeDetectDir: ".openhands"},
	{Key: "pi", DisplayName: "Pi", RelativeSkillsDir: ".pi/agent/skills", RelativeDetectDir: ".pi"},
	{Key: "qoder", DisplayName: "Qoder", RelativeSkillsDir: ".qoder/skills", RelativeDetectDir: ".qoder"},
	{Key: "qwen_code", DisplayName: "Qwen Code", RelativeSkillsDir: ".qwen/skills", RelativeDetectDir: ".qwen"},
	{Key: "trae", DisplayName: "Trae", RelativeSkillsDir: ".trae/skills", RelativeDetectDir: ".trae"},
	{Key: "trae_cn", DisplayName: "Trae CN", RelativeSkillsDir: ".trae-cn/skills", RelativeDetectDir: ".trae-cn"},
	{Key: "zencoder", DisplayName: "Zencoder", RelativeSkillsDir: ".zencoder/skills", RelativeDetectDir: ".zencoder"},
	{Key: "neovate", DisplayName: "Neovate", RelativeSkillsDir: ".neovate/skills", RelativeDetectDir: ".neovate"},
	{Key: "pochi", DisplayName: "Pochi", RelativeSkillsDir: ".pochi/skills", RelativeDetectDir: ".pochi"},
	{Key: "adal", DisplayName: "AdaL", RelativeSkillsDir: ".adal/skills", RelativeDetectDir: ".adal"},
	{Key: "kilo_code", DisplayName: "Kilo Code", RelativeSkillsDir: ".kilocode/skills", RelativeDetectDir: ".kilocode"},
	{Key: "roo_code", DisplayName: "Roo Code", RelativeSkillsDir: ".roo/skills", RelativeDetectDir: ".roo"},
	{Key: "goose", DisplayName: "Goose", RelativeSkillsDir: ".config/goose/skills", RelativeDetectDir: ".config/goose"},
	{Key: "gemini_cli", DisplayName: "Gemini CLI", RelativeSkillsDir: ".gemini/skills", RelativeDetectDir: ".gemini"},
	{Key: "github_copilot", DisplayName: "GitHub Copilot", RelativeSkillsDir: ".copilot/skills", RelativeDetectDir: ".copilot"},
	{Key: "clawdbot", DisplayName: "Clawdbot", RelativeSkillsDir: ".clawdbot/skills", RelativeDetectDir: ".clawdbot"},
	{Key: "droid", DisplayName: "Droid", RelativeSkillsDir: ".factory/skills", RelativeDetectDir: ".factory"},
	{Key: "windsurf", DisplayName: "Windsurf", RelativeSkillsDir: ".codeium/windsurf/skills", RelativeDetectDir: ".codeium/windsurf"},
}

// All returns a copy of the adapter table in catalogue order.
func All() []Adapter {
	out := make([]Adapter, len(adapters))
	copy(out, adapters)
	return out
}

// ByKey returns the adapter registered under key.
func ByKey(key string) (Adapter, bool) {
	for _, a := range adapters {
		if a.Key == key {
			return a, true
		}
	}
	return Adapter{}, false
}

// ByKeys resolves a list of keys. Returns an error naming the valid keys if
// any key is unknown.
func ByKeys(keys []string) ([]Adapter, error) {
	result := make([]Adapter, 0, len(keys))
	for _, key := range keys {
		a, ok := ByKey(key)
		if !ok {
			return nil, fmt.Errorf("unknown tool %q; available: %s",
				key, strings.Join(Keys(adapters), ", "))
		}
		result = append(result, a)
	}
	return result, nil
}

// Keys returns the keys of the given adapters.
func Keys(list []Adapter) []string {
	keys := make([]string, len(list))
	for i, a := range list {
		keys[i] = a.Key
	}
	return keys
}

// DisplayNames returns the display names of the given adapters.
func DisplayNames(list []Adapter) []string {
	names := make([]string, len(list))
	for i, a := range list {
		names[i] = a.DisplayName
	}
	return names
}

// SharingSkillsDir returns every adapter (including a itself) whose skills
// directory is the same as a's.
func SharingSkillsDir(a Adapter) []Adapter {
	var group []Adapter
	for _, other := range adapters {
		if filepath.Clean(other.RelativeSkillsDir) == filepath.Clean(a.RelativeSkillsDir) {
			group = append(group, other)
		}
	}
	return group
}

// SharedGroups returns the directory-sharing groups that have more than one
// member, keyed by the shared relative skills directory.
func SharedGroups() map[string][]Adapter {
	byDir := make(map[string][]Adapter)
	for _, a := range adapters {
		dir := filepath.Clean(a.RelativeSkillsDir)
		byDir[dir] = append(byDir[dir], a)
	}
	for dir, group := range byDir {
		if len(group) < 2 {
			delete(byDir, dir)
		}
	}
	return byDir
}

// SkillsPath resolves the adapter's global skills directory under home.
func SkillsPath(a Adapter, home string) string {
	return filepath.Join(home, filepath.FromSlash(a.RelativeSkillsDir))
}

// DetectPath resolves the adapter's detection directory under home.
func DetectPath(a Adapter, home string) string {
	return filepath.Join(home, filepath.FromSlash(a.RelativeDetectDir))
}

// IsInstalled reports whether the tool's detection directory exists.
func IsInstalled(a Adapter, home string) bool {
	return dirExists(DetectPath(a, home))
}

// Detect returns the adapters installed under home.
func Detect(home string) []Adapter {
	var detected []Adapter
	for _, a := range adapters {
		if IsInstalled(a, home) {
			detected = append(detected, a)
		}
	}
	return detected
}

func (a Adapter) reserves(name string) bool {
	for _, r := range a.ReservedEntries {
		if r == name {
			return true
		}
	}
	return false
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
