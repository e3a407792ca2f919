package droply

import (
	"github.com/zamdevio/droply/pkg/planner"
	"github.com/zamdevio/droply/pkg/plugin"
)

// ShapeOf derives the input shape the planner needs from a file set.
func ShapeOf(files []plugin.FileTuple, isDirectory bool) planner.InputShape {
	return planner.InputShape{
		IsMulti:     len(files) > 1,
		IsDirectory: isDirectory,
	}
}

// CompressionRatio calculates the compression ratio for given original and
// compressed sizes. Returns a value between 0 and 1 where lower is better:
// 0.5 means the compressed size is 50% of the original.
func CompressionRatio(originalSize, compressedSize int64) float64 {
	if originalSize == 0 {
		return 0
	}
	return float64(compressedSize) / float64(originalSize)
}

// SavingsPercent calculates the percentage of space saved (0-100).
// E.g., 50 means 50% space savings. Negative when the output grew.
func SavingsPercent(originalSize, compressedSize int64) float64 {
	if originalSize == 0 {
		return 0
	}
	return (1 - float64(compressedSize)/float64(originalSize)) * 100
}
