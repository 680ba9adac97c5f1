package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Лексические
	LexInfo                     Code = 1000
	LexUnrecognizedInput        Code = 1001 // fail-through guard consumed input
	LexUnterminatedComment      Code = 1002
	LexUnterminatedScript       Code = 1003
	LexUnbalancedBlockClose     Code = 1004
	LexUnclosedBlock            Code = 1005
	LexUnclosedLangBlock        Code = 1006
	LexUnclosedDirectiveComment Code = 1007
	LexChainExhausted           Code = 1099 // internal: no sub-parser produced a token

	// Ввод/вывод
	IOLoadFileError Code = 4001
	IOCacheError    Code = 4002

	// Конфигурация
	CfgInfo        Code = 5000
	CfgParseError  Code = 5001
	CfgBadLanguage Code = 5002
	CfgBadSyntax   Code = 5003

	// Наблюдаемость
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                 "Unknown error",
		LexInfo:                     "Lexical information",
		LexUnrecognizedInput:        "Unrecognized template input",
		LexUnterminatedComment:      "Unterminated template comment",
		LexUnterminatedScript:       "Unterminated script block",
		LexUnbalancedBlockClose:     "Block close without open block",
		LexUnclosedBlock:            "Block is not closed",
		LexUnclosedLangBlock:        "Language block is not closed",
		LexUnclosedDirectiveComment: "Directive comment is not closed",
		LexChainExhausted:           "Internal tokenizer error",
		IOLoadFileError:             "I/O load file error",
		IOCacheError:                "Token cache error",
		CfgInfo:                     "Configuration information",
		CfgParseError:               "Configuration parse error",
		CfgBadLanguage:              "Invalid language definition",
		CfgBadSyntax:                "Invalid template syntax definition",
		ObsInfo:                     "Observability information",
		ObsTimings:                  "Tokenizer timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("CFG%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
