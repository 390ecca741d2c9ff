package liquid

// NodeKind is the closed set of constructs the navigation engine understands.
// Anything the grammar produces outside this set is KindUnknown and keeps its
// raw type name on the node.
type NodeKind int

const (
	KindUnknown NodeKind = iota
	KindProgram
	KindBlock
	KindTemplateContent
	KindComment
	KindRaw
	KindError

	KindKeyword
	KindCustomKeyword

	KindAssignmentStatement
	KindCaptureStatement
	KindForLoopStatement
	KindIfStatement
	KindUnlessStatement
	KindElsifClause
	KindElseClause
	KindCaseStatement
	KindWhenClause
	KindPushStatement
	KindPopStatement
	KindIncludeStatement
	KindTranslationStatement
	KindTranslationExpression
	KindCustomUnpairedStatement
	KindCustomPairedStatement

	KindIdentifier
	KindString
	KindNumber
	KindBoolean
	KindRange
	KindAccess
	KindComparison
	KindLogicalExpression
	KindFilter
	KindArgumentList
	KindNamedArgument
)

var kindNames = map[NodeKind]string{
	KindUnknown:                 "unknown",
	KindProgram:                 "program",
	KindBlock:                   "block",
	KindTemplateContent:         "template_content",
	KindComment:                 "comment",
	KindRaw:                     "raw_statement",
	KindError:                   "ERROR",
	KindKeyword:                 "keyword",
	KindCustomKeyword:           "custom_keyword",
	KindAssignmentStatement:     "assignment_statement",
	KindCaptureStatement:        "capture_statement",
	KindForLoopStatement:        "for_loop_statement",
	KindIfStatement:             "if_statement",
	KindUnlessStatement:         "unless_statement",
	KindElsifClause:             "elsif_clause",
	KindElseClause:              "else_clause",
	KindCaseStatement:           "case_statement",
	KindWhenClause:              "when_clause",
	KindPushStatement:           "push_statement",
	KindPopStatement:            "pop_statement",
	KindIncludeStatement:        "include_statement",
	KindTranslationStatement:    "translation_statement",
	KindTranslationExpression:   "translation_expression",
	KindCustomUnpairedStatement: "custom_unpaired_statement",
	KindCustomPairedStatement:   "custom_paired_statement",
	KindIdentifier:              "identifier",
	KindString:                  "string",
	KindNumber:                  "number",
	KindBoolean:                 "boolean",
	KindRange:                   "range",
	KindAccess:                  "access",
	KindComparison:              "comparison",
	KindLogicalExpression:       "logical_expression",
	KindFilter:                  "filter",
	KindArgumentList:            "argument_list",
	KindNamedArgument:           "named_argument",
}

var kindsByName = func() map[string]NodeKind {
	m := make(map[string]NodeKind, len(kindNames))
	for k, v := range kindNames {
		m[v] = k
	}
	return m
}()

func (k NodeKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return kindNames[KindUnknown]
}

// KindFromName maps a grammar type name to its kind, KindUnknown when the name
// is not one of ours.
func KindFromName(name string) NodeKind {
	if k, ok := kindsByName[name]; ok {
		return k
	}
	return KindUnknown
}

// IsStatement reports whether the kind is a tag statement or clause.
func (k NodeKind) IsStatement() bool {
	return k >= KindAssignmentStatement && k <= KindCustomPairedStatement
}
