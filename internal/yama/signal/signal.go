// Package signal defines the closed taxonomy of failure conditions the core
// raises, plus the diagnostic envelope and debug sink collaborators that
// carry them.
package signal

// Signal identifies a specific, terminal failure mode. The set is closed —
// every component raises one of these and nothing else.
type Signal string

const (
	// Install (§4.2)
	InstallInvalidParcel        Signal = "install_invalid_parcel"
	InstallInstallNameConflict  Signal = "install_install_name_conflict"
	InstallMissingDepMapping    Signal = "install_missing_dep_mapping"
	InstallInvalidDepMapping    Signal = "install_invalid_dep_mapping"
	InstallDepGraphCycle        Signal = "install_dep_graph_cycle"

	// Import (§4.3)
	ImportModuleNotFound Signal = "import_module_not_found"
	ImportInvalidModule  Signal = "import_invalid_module"

	// Load (§4.4)
	LoadTypeNotFound    Signal = "load_type_not_found"
	LoadKindMismatch    Signal = "load_kind_mismatch"
	LoadCallsigMismatch Signal = "load_callsig_mismatch"

	// Verifier (§4.5/§7)
	VerifBinaryIsEmpty                   Signal = "verif_binary_is_empty"
	VerifRAOutOfBounds                   Signal = "verif_RA_out_of_bounds"
	VerifRBOutOfBounds                   Signal = "verif_RB_out_of_bounds"
	VerifKoBOutOfBounds                  Signal = "verif_KoB_out_of_bounds"
	VerifKoBNotObjectConst               Signal = "verif_KoB_not_object_const"
	VerifKtBOutOfBounds                  Signal = "verif_KtB_out_of_bounds"
	VerifKtBNotTypeConst                 Signal = "verif_KtB_not_type_const"
	VerifRAWrongType                     Signal = "verif_RA_wrong_type"
	VerifRAAndRBTypesDiffer              Signal = "verif_RA_and_RB_types_differ"
	VerifRAAndKoBTypesDiffer             Signal = "verif_RA_and_KoB_types_differ"
	VerifRAAndKtBTypesDiffer             Signal = "verif_RA_and_KtB_types_differ"
	VerifRAAndArgBTypesDiffer            Signal = "verif_RA_and_ArgB_types_differ"
	VerifRBAndKtCTypesDiffer             Signal = "verif_RB_and_KtC_types_differ"
	VerifArgBOutOfBounds                 Signal = "verif_ArgB_out_of_bounds"
	VerifArgRsOutOfBounds                Signal = "verif_ArgRs_out_of_bounds"
	VerifArgRsZeroObjects                Signal = "verif_ArgRs_zero_objects"
	VerifArgRsIllegalCallobj             Signal = "verif_ArgRs_illegal_callobj"
	VerifParamArgRsWrongNumber           Signal = "verif_ParamArgRs_wrong_number"
	VerifParamArgRsWrongTypes            Signal = "verif_ParamArgRs_wrong_types"
	VerifPushingOverflows                Signal = "verif_pushing_overflows"
	VerifPutsPCOutOfBounds               Signal = "verif_puts_PC_out_of_bounds"
	VerifFallthroughPutsPCOutOfBounds    Signal = "verif_fallthrough_puts_PC_out_of_bounds"
	VerifViolatesRegisterCoherence       Signal = "verif_violates_register_coherence"
	VerifRTopDoesNotExist                Signal = "verif_RTop_does_not_exist"
	VerifRTopWrongType                   Signal = "verif_RTop_wrong_type"
)

// Info is the static metadata attached to a Signal — which component raises
// it and a short human description. Mirrors the teacher's errors.ErrorInfo /
// errors.ErrorRegistry shape (internal/errors/codes.go).
type Info struct {
	Signal      Signal
	Component   string // "install", "import", "load", "verif"
	Description string
}

// Registry maps every Signal to its Info. Completeness of this map against
// the Signal enum is itself a tested property (codes_test.go equivalent).
var Registry = map[Signal]Info{
	InstallInvalidParcel:       {InstallInvalidParcel, "install", "parcel metadata is self-inconsistent (self-name among dep-names)"},
	InstallInstallNameConflict: {InstallInstallNameConflict, "install", "install-name already registered"},
	InstallMissingDepMapping:   {InstallMissingDepMapping, "install", "a dep-name has no mapping in the batch"},
	InstallInvalidDepMapping:   {InstallInvalidDepMapping, "install", "a dep-mapping target names no installed-or-batched parcel"},
	InstallDepGraphCycle:       {InstallDepGraphCycle, "install", "the union dep graph (old + batch) is cyclic"},

	ImportModuleNotFound: {ImportModuleNotFound, "import", "parcel returned nothing for the requested path"},
	ImportInvalidModule:  {ImportInvalidModule, "import", "freshly produced module failed verification"},

	LoadTypeNotFound:    {LoadTypeNotFound, "load", "requested or referenced item does not exist"},
	LoadKindMismatch:    {LoadKindMismatch, "load", "a type-constant's advertised kind disagrees with the target's actual kind"},
	LoadCallsigMismatch: {LoadCallsigMismatch, "load", "a callable type-constant's advertised callsig disagrees with the target's actual callsig"},

	VerifBinaryIsEmpty:                {VerifBinaryIsEmpty, "verif", "callable body has zero instructions"},
	VerifRAOutOfBounds:                {VerifRAOutOfBounds, "verif", "RA operand names a register beyond the live top"},
	VerifRBOutOfBounds:                {VerifRBOutOfBounds, "verif", "RB operand names a register beyond the live top"},
	VerifKoBOutOfBounds:               {VerifKoBOutOfBounds, "verif", "KoB operand indexes outside the constant table"},
	VerifKoBNotObjectConst:            {VerifKoBNotObjectConst, "verif", "KoB indexes a type-constant, not an object constant"},
	VerifKtBOutOfBounds:               {VerifKtBOutOfBounds, "verif", "KtB operand indexes outside the constant table"},
	VerifKtBNotTypeConst:              {VerifKtBNotTypeConst, "verif", "KtB indexes an object constant, not a type-constant"},
	VerifRAWrongType:                  {VerifRAWrongType, "verif", "RA's type disagrees with a required type (e.g. ret vs. declared return type)"},
	VerifRAAndRBTypesDiffer:           {VerifRAAndRBTypesDiffer, "verif", "copy without reinit between differently-typed registers"},
	VerifRAAndKoBTypesDiffer:          {VerifRAAndKoBTypesDiffer, "verif", "put_const without reinit changes RA's type"},
	VerifRAAndKtBTypesDiffer:          {VerifRAAndKtBTypesDiffer, "verif", "default_init without reinit changes RA's type"},
	VerifRAAndArgBTypesDiffer:         {VerifRAAndArgBTypesDiffer, "verif", "put_arg without reinit changes RA's type"},
	VerifRBAndKtCTypesDiffer:          {VerifRBAndKtCTypesDiffer, "verif", "conv's destination register disagrees with KtC's denoted type"},
	VerifArgBOutOfBounds:              {VerifArgBOutOfBounds, "verif", "ArgB indexes outside the enclosing callsig's parameter list"},
	VerifArgRsOutOfBounds:             {VerifArgRsOutOfBounds, "verif", "ArgsA slices beyond the live stack top"},
	VerifArgRsZeroObjects:             {VerifArgRsZeroObjects, "verif", "call/call_nr with an empty argument slice (no call-object)"},
	VerifArgRsIllegalCallobj:          {VerifArgRsIllegalCallobj, "verif", "the call-object's type is not callable"},
	VerifParamArgRsWrongNumber:        {VerifParamArgRsWrongNumber, "verif", "call argument count disagrees with the callee's callsig"},
	VerifParamArgRsWrongTypes:         {VerifParamArgRsWrongTypes, "verif", "a call argument's type disagrees with the callee's callsig"},
	VerifPushingOverflows:             {VerifPushingOverflows, "verif", "a newtop push would exceed max_locals"},
	VerifPutsPCOutOfBounds:            {VerifPutsPCOutOfBounds, "verif", "a branch target lies outside the instruction array"},
	VerifFallthroughPutsPCOutOfBounds: {VerifFallthroughPutsPCOutOfBounds, "verif", "control falls off the end of the instruction array"},
	VerifViolatesRegisterCoherence:    {VerifViolatesRegisterCoherence, "verif", "two predecessors join with disagreeing register environments"},
	VerifRTopDoesNotExist:             {VerifRTopDoesNotExist, "verif", "an opcode consumes the top-of-stack but the stack is empty"},
	VerifRTopWrongType:                {VerifRTopWrongType, "verif", "the top-of-stack's type disagrees with what the opcode requires (e.g. Bool for jump_true/false)"},
}
