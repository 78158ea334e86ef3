package results

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/seistore/seistore/pkg/logger"
)

// ParsePercentageValue converts an imported drift value to percent. Numeric
// input is treated as a decimal fraction and multiplied by 100; strings
// already suffixed with "%" are taken at face value. Malformed input falls
// back to 0.0 with a warning, partial data still being actionable.
func ParsePercentageValue(raw any) float64 {
	switch v := raw.(type) {
	case float64:
		return v * 100
	case float32:
		return float64(v) * 100
	case int:
		return float64(v) * 100
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0
		}
		if strings.HasSuffix(s, "%") {
			f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
			if err != nil {
				logger.WithModule("results").Warn("malformed percentage value", zap.String("value", v))
				return 0
			}
			return f
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			logger.WithModule("results").Warn("malformed numeric value", zap.String("value", v))
			return 0
		}
		return f * 100
	default:
		logger.WithModule("results").Warn("unsupported value type", zap.Any("value", raw))
		return 0
	}
}

// ParseNumericValue parses an imported numeric cell, falling back to 0.0 on
// malformed input.
func ParseNumericValue(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		logger.WithModule("results").Warn("malformed numeric value", zap.String("value", raw))
		return 0
	}
	return f
}

// TypeVariants lists every result type name a base type can appear under in
// raw rows or cache rows: the base itself plus its direction-suffixed forms.
func TypeVariants(baseType string) []string {
	return []string{baseType, baseType + "_X", baseType + "_Y", baseType + "_Z"}
}

// CanonicalType rejoins a base type and direction into the canonical name
// TypeVariants enumerates: "Drifts"+"X" is "Drifts_X", an empty direction
// leaves the base unchanged.
func CanonicalType(baseType, direction string) string {
	if direction == "" {
		return baseType
	}
	return baseType + "_" + direction
}

// ExtractBaseType splits a direction suffix off a result type name:
// "Drifts_X" yields ("Drifts", "X"), "QuadRotations" is returned unchanged
// with an empty direction. Only X/Y/Z suffixes count as directions.
func ExtractBaseType(resultType string) (string, string) {
	idx := strings.LastIndex(resultType, "_")
	if idx <= 0 || idx == len(resultType)-1 {
		return resultType, ""
	}

	suffix := resultType[idx+1:]
	switch strings.ToUpper(suffix) {
	case "X", "Y", "Z":
		return resultType[:idx], strings.ToUpper(suffix)
	default:
		return resultType, ""
	}
}
