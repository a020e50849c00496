package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewID 工作区 ID（32 位十六进制，无连字符）
func NewID() string { return strings.ReplaceAll(uuid.NewString(), "-", "") }
