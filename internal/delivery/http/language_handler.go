package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Harsh-BH/codepractice/internal/language"
)

type languageInfo struct {
	Name     string  `json:"name"`
	ID       int     `json:"id"`
	Label    string  `json:"label"`
	Version  string  `json:"version"`
	Compiler string  `json:"compiler,omitempty"`
	CPUTime  float64 `json:"cpuTimeLimit"`
	MemoryKB int     `json:"memoryLimit"`
}

// LanguageHandler lists the supported languages.
type LanguageHandler struct {
	registry *language.Registry
}

func NewLanguageHandler(registry *language.Registry) *LanguageHandler {
	return &LanguageHandler{registry: registry}
}

// List handles GET /languages
func (h *LanguageHandler) List(c *gin.Context) {
	entries := h.registry.List()
	languages := make([]languageInfo, 0, len(entries))
	for _, e := range entries {
		languages = append(languages, languageInfo{
			Name:     e.Name,
			ID:       e.ID,
			Label:    e.Label,
			Version:  e.Version,
			Compiler: e.Compiler,
			CPUTime:  e.Limits.CPUTimeSeconds,
			MemoryKB: e.Limits.MemoryKB,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"languages": languages,
	})
}
