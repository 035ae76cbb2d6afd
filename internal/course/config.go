package course

// PurposeCourseOutline labels LLM events produced by course generation.
const PurposeCourseOutline = "course-outline"

// Config holds course generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64

	// MinModules and MaxModules bound the outline size requested from the model.
	MinModules int
	MaxModules int
}

// DefaultConfig returns sensible defaults for course generation.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   4096,
		Temperature: 0.7,
		MinModules:  3,
		MaxModules:  6,
	}
}
