package service

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/wolfitem/ai-news/internal/domain/model"
	"github.com/wolfitem/ai-news/internal/infrastructure/logger"
)

const (
	scoreMin = -5.0
	scoreMax = 5.0

	// 标签阈值，恰好等于 ±0.5 时为 neutral
	labelThreshold = 0.5

	hintWeight = 0.3
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_']+`)

var hintScores = map[string]float64{
	model.SentimentPositive: 2,
	model.SentimentNeutral:  0,
	model.SentimentNegative: -2,
}

// SentimentScorer 词表加语言特征的情感打分器，并融合外部情感提示。
// 对相同输入总是产生相同输出。
type SentimentScorer struct {
	lexicon map[string]float64
}

// NewSentimentScorer 创建使用新闻领域词表的打分器
func NewSentimentScorer() *SentimentScorer {
	return &SentimentScorer{lexicon: newsLexicon}
}

// textFeatures 从文本中提取的语言特征
type textFeatures struct {
	negations    int
	intensifiers int
	exclamations int
	questions    int
	capitalized  int
	textLength   int
}

// lexiconScore 词表打分结果
type lexiconScore struct {
	score    float64
	positive []string
	negative []string
}

// Score 计算文本情感，hint 为空表示没有外部提示。
// 内部出现异常时返回固定的中性结果。
func (s *SentimentScorer) Score(text, hint string) (result model.SentimentResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("情感分析异常，返回中性结果", "panic", r)
			result = NeutralSentiment()
		}
	}()

	tokens := tokenPattern.FindAllString(text, -1)
	lowered := make([]string, len(tokens))
	for i, t := range tokens {
		lowered[i] = strings.ToLower(t)
	}

	base := s.lexiconScore(lowered)
	features := extractFeatures(text, tokens, lowered)

	score := weightedScore(base.score, features, hint)
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return NeutralSentiment()
	}

	label := Label(score)

	var comparative float64
	if len(tokens) > 0 {
		comparative = base.score / float64(len(tokens))
	}

	return model.SentimentResult{
		Label:      label,
		Score:      score,
		Confidence: confidence(score, hint, label, len(base.positive)+len(base.negative), features.textLength),
		Details: model.SentimentDetails{
			PositiveWords: base.positive,
			NegativeWords: base.negative,
			Comparative:   comparative,
		},
	}
}

// ScoreBatch 批量打分，hints 可以比 texts 短
func (s *SentimentScorer) ScoreBatch(texts []string, hints []string) []model.SentimentResult {
	results := make([]model.SentimentResult, len(texts))
	for i, text := range texts {
		hint := ""
		if i < len(hints) {
			hint = hints[i]
		}
		results[i] = s.Score(text, hint)
	}
	return results
}

// Info 返回打分器信息
func (s *SentimentScorer) Info() model.ScorerInfo {
	return model.ScorerInfo{
		Available: true,
		Version:   "1.0.0",
		Features:  []string{"negation_detection", "intensifier_detection", "hint_fusion"},
	}
}

// NeutralSentiment 固定的中性兜底结果
func NeutralSentiment() model.SentimentResult {
	return model.SentimentResult{
		Label:      model.SentimentNeutral,
		Score:      0,
		Confidence: 0.5,
		Details: model.SentimentDetails{
			PositiveWords: []string{},
			NegativeWords: []string{},
			Comparative:   0,
		},
	}
}

// Label 根据分数确定标签
func Label(score float64) string {
	switch {
	case score > labelThreshold:
		return model.SentimentPositive
	case score < -labelThreshold:
		return model.SentimentNegative
	default:
		return model.SentimentNeutral
	}
}

// lexiconScore 累加词表分值，前一个词是否定词时取反
func (s *SentimentScorer) lexiconScore(tokens []string) lexiconScore {
	result := lexiconScore{positive: []string{}, negative: []string{}}
	for i, token := range tokens {
		value, ok := s.lexicon[token]
		if !ok {
			continue
		}
		if i > 0 && negators[tokens[i-1]] {
			value = -value
		}
		result.score += value
		if value > 0 {
			result.positive = append(result.positive, token)
		} else if value < 0 {
			result.negative = append(result.negative, token)
		}
	}
	return result
}

func extractFeatures(text string, tokens, lowered []string) textFeatures {
	f := textFeatures{
		exclamations: strings.Count(text, "!"),
		questions:    strings.Count(text, "?"),
		textLength:   len(tokens),
	}
	for i, token := range lowered {
		if negationWords[token] {
			f.negations++
		}
		if intensifierWords[token] {
			f.intensifiers++
		}
		if isCapitalized(tokens[i]) {
			f.capitalized++
		}
	}
	return f
}

// isCapitalized 长度大于2且全部字母为大写的词
func isCapitalized(token string) bool {
	if len([]rune(token)) <= 2 {
		return false
	}
	hasLetter := false
	for _, r := range token {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}

func weightedScore(base float64, f textFeatures, hint string) float64 {
	score := base * math.Min(float64(f.textLength)/100, 1)

	score += float64(f.intensifiers) * 0.5
	score -= float64(f.negations) * 0.8
	score += float64(f.exclamations) * 0.3
	score -= float64(f.questions) * 0.1
	score += float64(f.capitalized) * 0.2

	if hintScore, ok := hintScores[hint]; ok {
		score = score*(1-hintWeight) + hintScore*hintWeight
	}

	return clamp(score, scoreMin, scoreMax)
}

func confidence(score float64, hint, label string, wordCount, textLength int) float64 {
	c := 0.5
	c += math.Min(math.Abs(score)/10, 0.3)
	if hint != "" && hint == label {
		c += 0.2
	}
	c += math.Min(float64(wordCount)/20, 0.2)
	c += math.Min(float64(textLength)/1000, 0.1)
	if math.Abs(score) > 2 {
		c += 0.1
	}
	return clamp(c, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
