package liquid

// Fixed queries used by the navigation engine. Pattern order is significant:
// callers switch on Match.Pattern.
var (
	TranslationDefinitions = MustQuery(`(translation_statement key: (string) @key) @definition`)

	TranslationReferences = MustQuery(`(translation_expression key: (string) @key) @reference`)

	VariableDefinitions = MustQuery(`
		; 0: assign
		(assignment_statement variable_name: (identifier) @name) @definition
		; 1: capture
		(capture_statement variable: (identifier) @name) @definition
		; 2: for item
		(for_loop_statement item: (identifier) @name) @definition
	`)

	Includes = MustQuery(`(include_statement path: (string) @path) @include`)

	CustomTags = MustQuery(`
		(custom_unpaired_statement keyword: (custom_keyword) @tag) @statement
		(custom_paired_statement keyword: (custom_keyword) @tag) @statement
	`)
)

const (
	PatternAssign = iota
	PatternCapture
	PatternForItem
)
