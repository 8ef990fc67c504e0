package services

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt_Deterministic(t *testing.T) {
	assert.Equal(t, BuildPrompt(LevelWarm), BuildPrompt(LevelWarm))
	assert.NotEqual(t, BuildPrompt(LevelLight), BuildPrompt(LevelDeep))
}

func TestBuildPrompt_ContainsLevelGuideAndCategories(t *testing.T) {
	for level, guide := range levelGuides {
		prompt := BuildPrompt(level)
		assert.Contains(t, prompt, guide)
		for _, cat := range coreCategories {
			assert.Contains(t, prompt, cat)
		}
		assert.Contains(t, prompt, "물음표")
	}
}

func TestBuildPrompt_UnknownLevelFallsBackToLight(t *testing.T) {
	assert.Equal(t, BuildPrompt(LevelLight), BuildPrompt(99))
}

func TestWithAvoidList(t *testing.T) {
	base := BuildPrompt(LevelLight)
	assert.Equal(t, base, WithAvoidList(base, nil))

	out := WithAvoidList(base, []string{"오늘 하루는 어땠나요?", "요즘 즐겨 듣는 노래는?"})
	assert.Contains(t, out, "오늘 하루는 어땠나요?")
	assert.Contains(t, out, "요즘 즐겨 듣는 노래는?")
	assert.True(t, len(out) > len(base))
}

func TestPickLevel_StaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		level := PickLevel([]int{40, 40, 20}, rng)
		assert.GreaterOrEqual(t, level, LevelLight)
		assert.LessOrEqual(t, level, LevelDeep)
	}
}

func TestPickLevel_RespectsZeroWeights(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		assert.Equal(t, LevelDeep, PickLevel([]int{0, 0, 10}, rng))
	}
}

func TestPickLevel_DegenerateWeights(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	assert.Equal(t, LevelLight, PickLevel([]int{0, 0, 0}, rng))
	assert.Equal(t, LevelLight, PickLevel(nil, rng))

	// a malformed pair falls back to the default split
	level := PickLevel([]int{5, 5}, rng)
	assert.GreaterOrEqual(t, level, LevelLight)
	assert.LessOrEqual(t, level, LevelDeep)
}

func TestPickLevel_RoughlyMatchesWeights(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	counts := map[int]int{}
	const draws = 10000
	for i := 0; i < draws; i++ {
		counts[PickLevel([]int{40, 40, 20}, rng)]++
	}
	assert.InDelta(t, 0.4, float64(counts[LevelLight])/draws, 0.05)
	assert.InDelta(t, 0.4, float64(counts[LevelWarm])/draws, 0.05)
	assert.InDelta(t, 0.2, float64(counts[LevelDeep])/draws, 0.05)
}

func TestSanitizerAcceptsPromptStyleOutput(t *testing.T) {
	// outputs that follow the prompt's own rules must survive cleanup intact
	out := SanitizeQuestion("요즘 가장 기대되는 일은 무엇인가요?")
	assert.Equal(t, "요즘 가장 기대되는 일은 무엇인가요?", out)
}
