package search

import (
	"strings"

	"github.com/rs/zerolog"
)

// Kind is a closed classification of provider errors. Raw errors are
// classified exactly once, where they are first caught; nothing downstream
// re-derives the kind from message text.
type Kind int

const (
	KindUnknown Kind = iota
	KindParser
	KindCompositeVideo
	KindHypePoints
	KindTypeMismatch
	KindGridShelfView
	KindSectionHeaderView
	KindRateLimit
	KindUnreachable
)

// String returns the kind's log label.
func (k Kind) String() string {
	switch k {
	case KindParser:
		return "parser"
	case KindCompositeVideo:
		return "composite_video"
	case KindHypePoints:
		return "hype_points"
	case KindTypeMismatch:
		return "type_mismatch"
	case KindGridShelfView:
		return "grid_shelf_view"
	case KindSectionHeaderView:
		return "section_header_view"
	case KindRateLimit:
		return "rate_limit"
	case KindUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// Classification decides what the retry loop may do with a failed attempt.
type Classification struct {
	Kind              Kind
	ShouldRetry       bool
	RetryWithFallback bool
	UserMessage       string
	LogLevel          zerolog.Level
}

// Classify maps a raw provider error onto a Classification.
//
// Upstream scrapers break in recognizable ways: response schema drift shows
// up as parser/type errors naming the renderer that changed, unsupported
// video formats name their renderer, rate limiting carries the usual HTTP
// status text. Everything else is unknown and gets one cautious retry.
func Classify(err error) Classification {
	if err == nil {
		return Classification{Kind: KindUnknown}
	}
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "compositevideoprimaryinforenderer"):
		return Classification{
			Kind:        KindCompositeVideo,
			UserMessage: "This video format is not supported.",
			LogLevel:    zerolog.WarnLevel,
		}
	case strings.Contains(msg, "hypepoints"):
		return Classification{
			Kind:        KindHypePoints,
			UserMessage: "This video format is not supported.",
			LogLevel:    zerolog.WarnLevel,
		}
	case strings.Contains(msg, "gridshelfviewmodel"):
		return Classification{
			Kind:              KindGridShelfView,
			ShouldRetry:       true,
			RetryWithFallback: true,
			UserMessage:       "Search results could not be read, trying another source.",
			LogLevel:          zerolog.WarnLevel,
		}
	case strings.Contains(msg, "sectionheaderviewmodel"):
		return Classification{
			Kind:              KindSectionHeaderView,
			ShouldRetry:       true,
			RetryWithFallback: true,
			UserMessage:       "Search results could not be read, trying another source.",
			LogLevel:          zerolog.WarnLevel,
		}
	case strings.Contains(msg, "cannot unmarshal") || strings.Contains(msg, "type mismatch"):
		return Classification{
			Kind:              KindTypeMismatch,
			ShouldRetry:       true,
			RetryWithFallback: true,
			UserMessage:       "The source returned unexpected data, trying another source.",
			LogLevel:          zerolog.WarnLevel,
		}
	case strings.Contains(msg, "failed to parse") ||
		strings.Contains(msg, "unexpected token") ||
		strings.Contains(msg, "invalid character") ||
		strings.Contains(msg, "parser"):
		return Classification{
			Kind:              KindParser,
			ShouldRetry:       true,
			RetryWithFallback: true,
			UserMessage:       "The source could not be parsed, trying another source.",
			LogLevel:          zerolog.WarnLevel,
		}
	case strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "i/o timeout") ||
		strings.Contains(msg, "deadline exceeded") ||
		strings.Contains(msg, "unexpected eof"):
		return Classification{
			Kind:              KindUnreachable,
			ShouldRetry:       true,
			RetryWithFallback: true,
			UserMessage:       "The source did not respond, trying another source.",
			LogLevel:          zerolog.WarnLevel,
		}
	case strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "429") ||
		strings.Contains(msg, "too many requests"):
		return Classification{
			Kind:        KindRateLimit,
			ShouldRetry: true,
			UserMessage: "The source is rate limiting us, retrying.",
			LogLevel:    zerolog.WarnLevel,
		}
	default:
		return Classification{
			Kind:        KindUnknown,
			ShouldRetry: true,
			UserMessage: "Search failed.",
			LogLevel:    zerolog.ErrorLevel,
		}
	}
}
