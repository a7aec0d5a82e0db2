package arch

// Built-in architecture table. Layer recommendations are empirically
// determined per model family; behaviors not listed fall back to the
// middle-third default.

// span returns the contiguous layer range [start, end).
func span(start, end int) []int {
	out := make([]int, 0, end-start)
	for l := start; l < end; l++ {
		out = append(out, l)
	}
	return out
}

func init() {
	for _, cfg := range builtinConfigs() {
		if err := Register(cfg); err != nil {
			panic(err)
		}
	}
}

func builtinConfigs() []Config {
	qwen36 := map[string][]int{
		"refusal":               span(14, 19),
		"uncertainty":           span(12, 17),
		"tool_restraint":        span(16, 21),
		"instruction_hierarchy": span(14, 19),
		"formality":             span(14, 19),
		"conciseness":           span(10, 15),
		"creativity":            span(18, 23),
		"assertiveness":         span(12, 17),
		"humor":                 span(16, 21),
		"empathy":               span(14, 19),
		"technical_depth":       span(12, 17),
	}
	qwen48 := map[string][]int{
		"refusal":               span(20, 25),
		"uncertainty":           span(16, 21),
		"tool_restraint":        span(22, 27),
		"instruction_hierarchy": span(20, 25),
		"formality":             span(20, 25),
		"conciseness":           span(14, 19),
		"creativity":            span(24, 29),
		"assertiveness":         span(16, 21),
		"humor":                 span(22, 27),
		"empathy":               span(20, 25),
		"technical_depth":       span(16, 21),
	}
	mistral := map[string][]int{
		"refusal":               {12, 14, 16, 18, 20},
		"uncertainty":           {10, 12, 14, 16},
		"tool_restraint":        {14, 16, 18, 20},
		"instruction_hierarchy": {12, 14, 16, 18},
		"formality":             {12, 14, 16, 18},
		"conciseness":           {8, 10, 12, 14},
		"creativity":            {16, 18, 20, 22},
		"assertiveness":         {10, 12, 14, 16},
		"humor":                 {14, 16, 18, 20},
		"empathy":               {12, 14, 16, 18},
		"technical_depth":       {10, 12, 14, 16},
	}

	return []Config{
		{
			Name:       "Qwen/Qwen3-8B",
			NumLayers:  36,
			HiddenSize: 4096,

			RecommendedLayers: qwen36,
		},
		{
			Name:       "Qwen/Qwen3-4B",
			NumLayers:  36,
			HiddenSize: 2560,

			RecommendedLayers: qwen36,
		},
		{
			Name:       "Qwen/Qwen3-14B",
			NumLayers:  48,
			HiddenSize: 5120,

			RecommendedLayers: qwen48,
		},
		{
			Name:       "deepseek-ai/DeepSeek-R1-Distill-Qwen-14B",
			NumLayers:  48,
			HiddenSize: 5120,

			RecommendedLayers: qwen48,
		},
		{
			Name:       "meta-llama/Llama-3.1-8B-Instruct",
			NumLayers:  32,
			HiddenSize: 4096,
			RecommendedLayers: map[string][]int{
				"refusal":               span(14, 17),
				"uncertainty":           span(12, 15),
				"tool_restraint":        span(16, 19),
				"instruction_hierarchy": span(14, 17),
				"formality":             span(14, 17),
				"conciseness":           span(10, 13),
				"creativity":            span(16, 19),
				"assertiveness":         span(12, 15),
				"humor":                 span(14, 17),
				"empathy":               span(12, 15),
				"technical_depth":       span(10, 13),
			},
		},
		{
			Name:       "meta-llama/Llama-3.1-70B-Instruct",
			NumLayers:  80,
			HiddenSize: 8192,
			RecommendedLayers: map[string][]int{
				"refusal":               span(35, 41),
				"uncertainty":           span(30, 36),
				"tool_restraint":        span(40, 46),
				"instruction_hierarchy": span(35, 41),
				"formality":             span(35, 41),
				"conciseness":           span(25, 31),
				"creativity":            span(40, 46),
				"assertiveness":         span(30, 36),
				"humor":                 span(38, 44),
				"empathy":               span(35, 41),
				"technical_depth":       span(30, 36),
			},
		},
		{
			Name:       "mistralai/Mistral-7B-Instruct-v0.2",
			NumLayers:  32,
			HiddenSize: 4096,

			RecommendedLayers: mistral,
		},
		{
			Name:       "mistralai/Mistral-7B-Instruct-v0.3",
			NumLayers:  32,
			HiddenSize: 4096,

			RecommendedLayers: mistral,
		},
		{
			Name:       "openai/gpt-oss-20b",
			NumLayers:  24,
			HiddenSize: 2880,
			RecommendedLayers: map[string][]int{
				"refusal":               {8, 10, 12, 14, 16},
				"uncertainty":           {6, 8, 10, 12},
				"tool_restraint":        {10, 12, 14, 16},
				"instruction_hierarchy": {8, 10, 12, 14},
				"formality":             {8, 10, 12, 14},
				"conciseness":           span(6, 11),
				"creativity":            span(12, 17),
				"assertiveness":         {6, 8, 10, 12},
				"humor":                 span(10, 15),
				"empathy":               {8, 10, 12, 14},
				"technical_depth":       {6, 8, 10, 12},
			},
		},
		{
			Name:       "google/gemma-2-9b-it",
			NumLayers:  42,
			HiddenSize: 3584,
			RecommendedLayers: map[string][]int{
				"refusal":               {14, 16, 18, 20, 22},
				"uncertainty":           {12, 14, 16, 18},
				"tool_restraint":        {16, 18, 20, 22},
				"instruction_hierarchy": {14, 16, 18, 20},
				"formality":             {14, 16, 18, 20},
				"conciseness":           {10, 12, 14, 16},
				"creativity":            {20, 22, 24, 26},
				"assertiveness":         {12, 14, 16, 18},
				"humor":                 {16, 18, 20, 22},
				"empathy":               {14, 16, 18, 20},
				"technical_depth":       {12, 14, 16, 18},
			},
		},
	}
}
