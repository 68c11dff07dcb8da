package cfront

import (
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
)

// The C grammar is loaded once per process, on first parse.
var (
	grammar     *sitter.Language
	grammarOnce sync.Once
)

// Language returns the shared tree-sitter C grammar.
func Language() *sitter.Language {
	grammarOnce.Do(func() {
		grammar = c.GetLanguage()
	})
	return grammar
}
