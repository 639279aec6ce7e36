package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0

	// Семантический анализ
	SemaInfo                  Code = 3000
	SemaFrozenRecommendation  Code = 3001
	SemaShadowing             Code = 3002
	SemaVariableNotFound      Code = 3003
	SemaNoInitializers        Code = 3004
	SemaProtocolMethodMissing Code = 3005
	SemaFinalOverride         Code = 3006
	SemaAccessMismatch        Code = 3007
	SemaReturnPromise         Code = 3008
	SemaArgumentCount         Code = 3009
	SemaArgumentPromise       Code = 3010
	SemaDuplicateMethod       Code = 3011
	SemaNoStartFlag           Code = 3012
	SemaUninitializedSelf     Code = 3013
	SemaAssignFrozen          Code = 3014

	// Проект и ввод-вывод
	PrjManifestMissing Code = 5001
	PrjManifestInvalid Code = 5002
	PrjNoSources       Code = 5003
	PrjParserMissing   Code = 5004
	PrjFileRead        Code = 5005
)

var codeDescription = map[Code]string{
	UnknownCode: "unknown",

	SemaInfo:                  "semantic analysis",
	SemaFrozenRecommendation:  "variable never mutated; declare it frozen",
	SemaShadowing:             "declaration shadows a variable",
	SemaVariableNotFound:      "variable not found",
	SemaNoInitializers:        "type has instance variables but no initializers",
	SemaProtocolMethodMissing: "protocol method not provided",
	SemaFinalOverride:         "implementation of a final method",
	SemaAccessMismatch:        "access level does not match",
	SemaReturnPromise:         "return type breaks promise",
	SemaArgumentCount:         "argument count does not match",
	SemaArgumentPromise:       "argument type breaks promise",
	SemaDuplicateMethod:       "duplicate method",
	SemaNoStartFlag:           "no start flag block",
	SemaUninitializedSelf:     "self accessed before full initialization",
	SemaAssignFrozen:          "assignment to a frozen variable",

	PrjManifestMissing: "package manifest not found",
	PrjManifestInvalid: "package manifest invalid",
	PrjNoSources:       "no source files",
	PrjParserMissing:   "no parser linked",
	PrjFileRead:        "cannot read source file",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
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
