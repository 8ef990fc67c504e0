package services

import (
	"fmt"
	"math/rand"
	"strings"
)

// Question depth levels. Level 1 is light small talk, level 3 asks for real
// vulnerability; the daily job draws a level by weight before each generation.
const (
	LevelLight = 1
	LevelWarm  = 2
	LevelDeep  = 3
)

// Core categories should dominate the question mix; secondary categories add
// variety but stay at or under roughly a fifth of generations.
var (
	coreCategories      = []string{"일상", "추억", "감정", "관계", "취향"}
	secondaryCategories = []string{"상상", "미래", "유머"}
)

var levelGuides = map[int]string{
	LevelLight: "가볍게 답할 수 있는 일상적인 질문",
	LevelWarm:  "서로를 조금 더 알아갈 수 있는 질문",
	LevelDeep:  "속마음이나 추억을 꺼내게 하는 깊이 있는 질문",
}

// BuildPrompt returns the deterministic generation prompt for a level.
// The output-format instructions must stay aligned with SanitizeQuestion's
// prefix rules: anything the model is told not to emit is exactly what the
// sanitizer strips when the model emits it anyway.
func BuildPrompt(level int) string {
	guide, ok := levelGuides[level]
	if !ok {
		guide = levelGuides[LevelLight]
	}

	var b strings.Builder
	b.WriteString("가족들이 매일 함께 답하는 '오늘의 질문' 한 개를 만들어 주세요.\n")
	fmt.Fprintf(&b, "질문 성격: %s\n", guide)
	fmt.Fprintf(&b, "주제는 약 80%%는 핵심 카테고리(%s)에서, 나머지는 보조 카테고리(%s)에서 고르세요.\n",
		strings.Join(coreCategories, ", "), strings.Join(secondaryCategories, ", "))
	b.WriteString("출력 규칙:\n")
	b.WriteString("- 질문 한 문장만 출력하세요. 설명, 번호, 따옴표, 'Q:', 레벨 표기를 붙이지 마세요.\n")
	b.WriteString("- 40자 이내의 한국어 존댓말 질문으로, 물음표로 끝내세요.\n")
	return b.String()
}

// WithAvoidList appends recently used questions the model should not repeat.
func WithAvoidList(prompt string, recent []string) string {
	if len(recent) == 0 {
		return prompt
	}
	var b strings.Builder
	b.WriteString(prompt)
	b.WriteString("- 최근에 사용한 아래 질문과 비슷한 질문은 피하세요:\n")
	for _, q := range recent {
		fmt.Fprintf(&b, "  - %s\n", q)
	}
	return b.String()
}

// PickLevel draws a level using the configured weights over {1, 2, 3}.
// The weights are policy, not a correctness invariant; any non-negative
// triple with a positive sum works.
func PickLevel(weights []int, rng *rand.Rand) int {
	if len(weights) != 3 {
		weights = []int{40, 40, 20}
	}
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return LevelLight
	}
	n := rng.Intn(total)
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if n < w {
			return i + 1
		}
		n -= w
	}
	return LevelLight
}
