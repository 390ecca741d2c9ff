// Package liquid parses the Liquid reporting dialect into a concrete syntax
// tree shaped like the tree-sitter grammar the editors use: named node kinds,
// field-named children and row/column spans.
package liquid

import (
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	// LexerRules splits a template into text, output ({{ }}) and tag ({% %})
	// regions. Comment and raw blocks are swallowed whole in the root state.
	LexerRules = lexer.Rules{
		"Root": {
			{Name: "CommentBlock", Pattern: `\{%-?\s*comment\s*-?%\}(?s:.*?)\{%-?\s*endcomment\s*-?%\}`, Action: nil},
			{Name: "RawBlock", Pattern: `\{%-?\s*raw\s*-?%\}(?s:.*?)\{%-?\s*endraw\s*-?%\}`, Action: nil},
			{Name: "OutputOpen", Pattern: `\{\{-?`, Action: lexer.Push("Output")},
			{Name: "TagOpen", Pattern: `\{%-?`, Action: lexer.Push("Tag")},
			{Name: "Text", Pattern: `[^{]+|\{`, Action: nil},
		},
		"Tag": {
			{Name: "whitespace", Pattern: `\s+`, Action: nil},
			{Name: "TagClose", Pattern: `-?%\}`, Action: lexer.Pop()},
			lexer.Include("Expr"),
		},
		"Output": {
			{Name: "whitespace", Pattern: `\s+`, Action: nil},
			{Name: "OutputClose", Pattern: `-?\}\}`, Action: lexer.Pop()},
			lexer.Include("Expr"),
		},
		"Expr": {
			{Name: "String", Pattern: `"(?:\\.|[^"\\])*"|'(?:\\.|[^'\\])*'`, Action: nil},
			{Name: "Number", Pattern: `-?\d+(?:\.\d+)?`, Action: nil},
			{Name: "DotDot", Pattern: `\.\.`, Action: nil},
			{Name: "Compare", Pattern: `==|!=|<>|<=|>=|<|>`, Action: nil},
			{Name: "Assign", Pattern: `=`, Action: nil},
			{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_\-]*\??`, Action: nil},
			{Name: "Punct", Pattern: `[|:,.()\[\]]`, Action: nil},
			{Name: "Char", Pattern: `.`, Action: nil},
		},
	}

	// TemplateLexer is the stateful lexer for Liquid templates
	TemplateLexer = lexer.MustStateful(LexerRules)

	symbols = TemplateLexer.Symbols()

	tokCommentBlock = symbols["CommentBlock"]
	tokRawBlock     = symbols["RawBlock"]
	tokOutputOpen   = symbols["OutputOpen"]
	tokTagOpen      = symbols["TagOpen"]
	tokText         = symbols["Text"]
	tokWhitespace   = symbols["whitespace"]
	tokTagClose     = symbols["TagClose"]
	tokOutputClose  = symbols["OutputClose"]
	tokString       = symbols["String"]
	tokNumber       = symbols["Number"]
	tokDotDot       = symbols["DotDot"]
	tokCompare      = symbols["Compare"]
	tokAssign       = symbols["Assign"]
	tokIdent        = symbols["Ident"]
	tokPunct        = symbols["Punct"]
)

// Tokenize runs the lexer over src, dropping whitespace inside tags.
func Tokenize(src []byte) ([]lexer.Token, error) {
	lex, err := TemplateLexer.LexString("", string(src))
	if err != nil {
		return nil, err
	}
	all, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, tok := range all {
		if tok.Type == tokWhitespace || tok.EOF() {
			continue
		}
		out = append(out, tok)
	}
	return out, nil
}
