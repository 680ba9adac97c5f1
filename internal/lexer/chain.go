package lexer

import (
	"fmt"

	"quill/internal/diag"
	"quill/internal/lang"
	"quill/internal/trace"
)

// Features are the configuration inputs that decide chain composition.
type Features struct {
	SmartEscape      bool
	NaturalTemplate  bool
	HasTemplateLangs bool
}

// Stage names one link of the chain.
type Stage uint8

const (
	StageLangStart Stage = iota + 1
	StageLangEnd
	StageCommentStart
	StageCommentEnd
	StageDispatcher
	StageBlockClose
	StageScript
	StageStringRun
	StageGuard
)

var stageNames = [...]string{
	StageLangStart:    "lang-start-sensor",
	StageLangEnd:      "lang-end-sensor",
	StageCommentStart: "comment-start-sensor",
	StageCommentEnd:   "comment-end-sensor",
	StageDispatcher:   "dispatcher",
	StageBlockClose:   "block-close",
	StageScript:       "script",
	StageStringRun:    "string-run",
	StageGuard:        "fail-through",
}

func (s Stage) String() string {
	if s > 0 && int(s) < len(stageNames) {
		return stageNames[s]
	}
	return "unknown"
}

// LangSensors reports whether language block sensors take part in the chain.
func (f Features) LangSensors() bool {
	return (f.SmartEscape || f.NaturalTemplate) && f.HasTemplateLangs
}

// CommentSensors reports whether directive-comment sensors take part.
func (f Features) CommentSensors() bool {
	return f.NaturalTemplate && f.HasTemplateLangs
}

// Plan returns the ordered chain for f. It is a pure function of its input.
func Plan(f Features) []Stage {
	stages := make([]Stage, 0, 9)
	if f.LangSensors() {
		stages = append(stages, StageLangStart, StageLangEnd)
	}
	if f.CommentSensors() {
		stages = append(stages, StageCommentStart, StageCommentEnd)
	}
	return append(stages,
		StageDispatcher,
		StageBlockClose,
		StageScript,
		StageStringRun,
		// последний: гарантирует продвижение курсора на любом входе
		StageGuard,
	)
}

// ChainEnv carries what BuildChain needs besides the plan.
type ChainEnv struct {
	Registry *lang.Registry
	Reporter diag.Reporter
	Tracer   trace.Tracer
}

// BuildChain instantiates the sub-parsers named by plan, in order. The guard
// must be last; any other arrangement is rejected.
func BuildChain(plan []Stage, env ChainEnv) ([]SubParser, error) {
	if len(plan) == 0 || plan[len(plan)-1] != StageGuard {
		return nil, fmt.Errorf("lexer: chain must end with %s", StageGuard)
	}
	stops := stopSet{}
	for _, st := range plan {
		switch st {
		case StageLangStart, StageLangEnd:
			stops.langs = true
		case StageCommentStart, StageCommentEnd:
			stops.comments = true
		}
	}

	chain := make([]SubParser, 0, len(plan))
	for i, st := range plan {
		var p SubParser
		switch st {
		case StageLangStart:
			p = langStartSensor{}
		case StageLangEnd:
			p = langEndSensor{}
		case StageCommentStart:
			p = commentStartSensor{}
		case StageCommentEnd:
			p = commentEndSensor{}
		case StageDispatcher:
			p = NewDispatcher()
		case StageBlockClose:
			p = blockCloseParser{}
		case StageScript:
			p = scriptParser{}
		case StageStringRun:
			p = stringRunParser{stops: stops}
		case StageGuard:
			if i != len(plan)-1 {
				return nil, fmt.Errorf("lexer: %s must be the last stage", StageGuard)
			}
			p = failThroughGuard{reporter: env.Reporter, tracer: env.Tracer}
		default:
			return nil, fmt.Errorf("lexer: unknown stage %d", st)
		}
		chain = append(chain, p)
	}
	return chain, nil
}
