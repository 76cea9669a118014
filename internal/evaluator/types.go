package evaluator

import "github.com/vaelang/vael/internal/identity"

// Core type descriptors for the minimal script language's value kinds
// (SPEC_FULL.md §3: "a tagged union over the well-known core kinds").
// Each is a stably-named identity.Type so two evaluator instances across
// processes agree on identity without coordination.
var (
	TUnit     = identity.NewType("vael.core.Unit", nil)
	TBool     = identity.NewType("vael.core.Bool", nil)
	TInt      = identity.NewType("vael.core.Int", nil)
	TFloat    = identity.NewType("vael.core.Float", nil)
	TString   = identity.NewType("vael.core.String", nil)
	TArray    = identity.NewType("vael.core.Array", nil)
	TMap      = identity.NewType("vael.core.Map", nil)
	TFunction = identity.NewType("vael.core.Function", nil)
	TError    = identity.NewType("vael.core.Error", nil)
	TType     = identity.NewType("vael.core.Type", nil)

	// TUnset is the single-valued "nothing bound here" type. It exists
	// solely so IntoTyped<Bool> has the one documented exception to
	// "every value is truthy" (SPEC_FULL.md §8 S6).
	TUnset = identity.NewType("vael.core.Unset", nil)
)
