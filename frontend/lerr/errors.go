package lerr

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/cottand/luatic/frontend/ast"
)

// enableDebugErrorPrinting makes errors include their stacktrace when printed
const enableDebugErrorPrinting bool = false
const enableDebugFullStacktrace bool = false

type ErrCode int

const (
	None ErrCode = iota
	SyntaxRecovery
	Undefined
	TypeMismatch
	OperatorMisuse
	IndexViolation
	CallViolation
	Redefinition
	Uninitialized
	ModuleError
	DeadCode
	UselessCondition
	NonLiteralPath
	UnresolvedRequire
	UnknownAttribute
	Internal
)

// Severity orders diagnostics; the driver exits nonzero iff an Error exists.
type Severity int

const (
	Note Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "Error"
	case Warning:
		return "Warning"
	default:
		return "Note"
	}
}

// SeverityOf maps an error code to its fixed severity.
func SeverityOf(c ErrCode) Severity {
	switch c {
	case DeadCode, UselessCondition, NonLiteralPath, UnresolvedRequire, UnknownAttribute:
		return Warning
	case None:
		return Note
	default:
		return Error
	}
}

// Cause is one entry of a diagnostic's cause chain: a message pointing at
// the span responsible, rendered as a note beneath the primary message.
type Cause struct {
	Message string
	Span    ast.Span
}

// NoteAt builds a Cause pointing at a Positioner.
func NoteAt(msg string, at ast.Positioner) Cause {
	return Cause{Message: msg, Span: ast.SpanOf(at)}
}

type LuaticError interface {
	Error() string
	Code() ErrCode
	ast.Positioner

	withStack([]byte) LuaticError
	getStack() []byte
}

// Caused is implemented by diagnostics carrying a cause chain.
type Caused interface {
	Causes() []Cause
}

// CausesOf returns the cause chain of a diagnostic, or nil.
func CausesOf(e LuaticError) []Cause {
	if c, ok := e.(Caused); ok {
		return c.Causes()
	}
	return nil
}

func FormatWithCode(e LuaticError) string {
	if enableDebugErrorPrinting && e.getStack() != nil {
		stack := string(e.getStack())
		if !enableDebugFullStacktrace {
			stack = strings.Split(stack, "\n")[6]
		}
		return fmt.Sprintf("%s:(E%03d) %s", stack, e.Code(), e.Error())
	}
	return fmt.Sprintf("(E%03d) %s", e.Code(), e.Error())
}

func New[E LuaticError](err E) LuaticError {
	return err.withStack(debug.Stack())
}

// ordinal renders 0-based argument indices the way diagnostics label them.
func ordinal(i int) string {
	names := []string{"First", "Second", "Third", "Fourth", "Fifth", "Sixth", "Seventh", "Eighth", "Ninth", "Tenth"}
	if i >= 0 && i < len(names) {
		return names[i]
	}
	return fmt.Sprintf("%dth", i+1)
}

type NewParse struct {
	ast.Positioner
	ParserMessage string
	stack         []byte
}

func (e NewParse) Error() string {
	return e.ParserMessage
}
func (e NewParse) Code() ErrCode    { return SyntaxRecovery }
func (e NewParse) getStack() []byte { return e.stack }
func (e NewParse) withStack(stack []byte) LuaticError {
	e.stack = stack
	return e
}

type NewUndefinedVariable struct {
	ast.Positioner
	Name  string
	stack []byte
}

func (e NewUndefinedVariable) Code() ErrCode { return Undefined }
func (e NewUndefinedVariable) Error() string {
	return fmt.Sprintf("Global or local variable `%s` is not defined", e.Name)
}
func (e NewUndefinedVariable) getStack() []byte { return e.stack }
func (e NewUndefinedVariable) withStack(stack []byte) LuaticError {
	e.stack = stack
	return e
}

type NewUndefinedType struct {
	ast.Positioner
	Name  string
	stack []byte
}

func (e NewUndefinedType) Code() ErrCode { return Undefined }
func (e NewUndefinedType) Error() string {
	return fmt.Sprintf("Type `%s` is not defined", e.Name)
}
func (e NewUndefinedType) getStack() []byte { return e.stack }
func (e NewUndefinedType) withStack(stack []byte) LuaticError {
	e.stack = stack
	return e
}

type NewCannotAssign struct {
	ast.Positioner
	Source string
	Target string
	Notes  []Cause
	stack  []byte
}

func (e NewCannotAssign) Code() ErrCode { return TypeMismatch }
func (e NewCannotAssign) Error() string {
	return fmt.Sprintf("Cannot assign `%s` into `%s`", e.Source, e.Target)
}
func (e NewCannotAssign) Causes() []Cause  { return e.Notes }
func (e NewCannotAssign) getStack() []byte { return e.stack }
func (e NewCannotAssign) withStack(stack []byte) LuaticError {
	e.stack = stack
	return e
}

type NewOperandNotNumber struct {
	ast.Positioner
	Op      string
	Operand string
	Notes   []Cause
	stack   []byte
}

func (e NewOperandNotNumber) Code() ErrCode { return OperatorMisuse }
func (e NewOperandNotNumber) Error() string {
	return fmt.Sprintf("Operand `%s` to `%s` should be a number", e.Operand, e.Op)
}
func (e NewOperandNotNumber) Causes() []Cause  { return e.Notes }
func (e NewOperandNotNumber) getStack() []byte { return e.stack }
func (e NewOperandNotNumber) withStack(stack []byte) LuaticError {
	e.stack = stack
	return e
}

type NewOperandNotConcatable struct {
	ast.Positioner
	Operand string
	stack   []byte
}

func (e NewOperandNotConcatable) Code() ErrCode { return OperatorMisuse }
func (e NewOperandNotConcatable) Error() string {
	return fmt.Sprintf("Operand `%s` to `..` should be a number or a string", e.Operand)
}
func (e NewOperandNotConcatable) getStack() []byte { return e.stack }
func (e NewOperandNotConcatable) withStack(stack []byte) LuaticError {
	e.stack = stack
	return e
}

type NewComparisonMixed struct {
	ast.Positioner
	Op      string
	Operand string
	stack   []byte
}

func (e NewComparisonMixed) Code() ErrCode { return OperatorMisuse }
func (e NewComparisonMixed) Error() string {
	return fmt.Sprintf("Operand `%s` to `%s` should be either numbers or strings but not both", e.Operand, e.Op)
}
func (e NewComparisonMixed) getStack() []byte { return e.stack }
func (e NewComparisonMixed) withStack(stack []byte) LuaticError {
	e.stack = stack
	return e
}

type NewLenOperand struct {
	ast.Positioner
	Operand string
	stack   []byte
}

func (e NewLenOperand) Code() ErrCode { return OperatorMisuse }
func (e NewLenOperand) Error() string {
	return fmt.Sprintf("Operand `%s` to `#` should be a string or a table", e.Operand)
}
func (e NewLenOperand) getStack() []byte { return e.stack }
func (e NewLenOperand) withStack(stack []byte) LuaticError {
	e.stack = stack
	return e
}

type NewCannotIndex struct {
	ast.Positioner
	Container string
	Key       string
	Notes     []Cause
	stack     []byte
}

func (e NewCannotIndex) Code() ErrCode { return IndexViolation }
func (e NewCannotIndex) Error() string {
	return fmt.Sprintf("Cannot index `%s` with `%s`", e.Container, e.Key)
}
func (e NewCannotIndex) Causes() []Cause  { return e.Notes }
func (e NewCannotIndex) getStack() []byte { return e.stack }
func (e NewCannotIndex) withStack(stack []byte) LuaticError {
	e.stack = stack
	return e
}

type NewMissingKey struct {
	ast.Positioner
	Container string
	Key       string
	stack     []byte
}

func (e NewMissingKey) Code() ErrCode { return IndexViolation }
func (e NewMissingKey) Error() string {
	return fmt.Sprintf("The record `%s` does not have the key `%s`", e.Container, e.Key)
}
func (e NewMissingKey) getStack() []byte { return e.stack }
func (e NewMissingKey) withStack(stack []byte) LuaticError {
	e.stack = stack
	return e
}

type NewNonConstantKey struct {
	ast.Positioner
	Container string
	stack     []byte
}

func (e NewNonConstantKey) Code() ErrCode { return IndexViolation }
func (e NewNonConstantKey) Error() string {
	return fmt.Sprintf("Cannot index `%s` with a key that is not known at checking time", e.Container)
}
func (e NewNonConstantKey) getStack() []byte { return e.stack }
func (e NewNonConstantKey) withStack(stack []byte) LuaticError {
	e.stack = stack
	return e
}

type NewArrayIndexNotInteger struct {
	ast.Positioner
	Container string
	Key       string
	stack     []byte
}

func (e NewArrayIndexNotInteger) Code() ErrCode { return IndexViolation }
func (e NewArrayIndexNotInteger) Error() string {
	return fmt.Sprintf("Cannot index the array `%s` with the non-integral key `%s`", e.Container, e.Key)
}
func (e NewArrayIndexNotInteger) getStack() []byte { return e.stack }
func (e NewArrayIndexNotInteger) withStack(stack []byte) LuaticError {
	e.stack = stack
	return e
}

type NewConstWrite struct {
	ast.Positioner
	Target string
	stack  []byte
}

func (e NewConstWrite) Code() ErrCode { return IndexViolation }
func (e NewConstWrite) Error() string {
	return fmt.Sprintf("Cannot update the immutable type `%s` by indexing", e.Target)
}
func (e NewConstWrite) getStack() []byte { return e.stack }
func (e NewConstWrite) withStack(stack []byte) LuaticError {
	e.stack = stack
	return e
}

type NewConstAssign struct {
	ast.Positioner
	Name  string
	stack []byte
}

func (e NewConstAssign) Code() ErrCode { return IndexViolation }
func (e NewConstAssign) Error() string {
	return fmt.Sprintf("Cannot assign to the constant variable `%s`", e.Name)
}
func (e NewConstAssign) getStack() []byte { return e.stack }
func (e NewConstAssign) withStack(stack []byte) LuaticError {
	e.stack = stack
	return e
}

type NewDuplicateKey struct {
	ast.Positioner
	Key   string
	Notes []Cause
	stack []byte
}

func (e NewDuplicateKey) Code() ErrCode { return IndexViolation }
func (e NewDuplicateKey) Error() string {
	return fmt.Sprintf("The key `%s` is duplicated", e.Key)
}
func (e NewDuplicateKey) Causes() []Cause  { return e.Notes }
func (e NewDuplicateKey) getStack() []byte { return e.stack }
func (e NewDuplicateKey) withStack(stack []byte) LuaticError {
	e.stack = stack
	return e
}

type NewUnboundedConstructor struct {
	ast.Positioner
	stack []byte
}

func (e NewUnboundedConstructor) Code() ErrCode { return IndexViolation }
func (e NewUnboundedConstructor) Error() string {
	return "The variadic expression in a table constructor must have a known length"
}
func (e NewUnboundedConstructor) getStack() []byte { return e.stack }
func (e NewUnboundedConstructor) withStack(stack []byte) LuaticError {
	e.stack = stack
	return e
}

type NewNotCallable struct {
	ast.Positioner
	Found string
	stack []byte
}

func (e NewNotCallable) Code() ErrCode { return CallViolation }
func (e NewNotCallable) Error() string {
	return fmt.Sprintf("Tried to call a non-function `%s`", e.Found)
}
func (e NewNotCallable) getStack() []byte { return e.stack }
func (e NewNotCallable) withStack(stack []byte) LuaticError {
	e.stack = stack
	return e
}

type NewNotEnoughArgs struct {
	ast.Positioner
	Required int
	Got      int
	stack    []byte
}

func (e NewNotEnoughArgs) Code() ErrCode { return CallViolation }
func (e NewNotEnoughArgs) Error() string {
	return fmt.Sprintf("The function requires at least %d argument(s) but got %d", e.Required, e.Got)
}
func (e NewNotEnoughArgs) getStack() []byte { return e.stack }
func (e NewNotEnoughArgs) withStack(stack []byte) LuaticError {
	e.stack = stack
	return e
}

type NewTooManyArgs struct {
	ast.Positioner
	Accepted int
	Got      int
	stack    []byte
}

func (e NewTooManyArgs) Code() ErrCode { return CallViolation }
func (e NewTooManyArgs) Error() string {
	return fmt.Sprintf("The function gets at most %d argument(s) but got %d", e.Accepted, e.Got)
}
func (e NewTooManyArgs) getStack() []byte { return e.stack }
func (e NewTooManyArgs) withStack(stack []byte) LuaticError {
	e.stack = stack
	return e
}

// NewArgMismatch reports one bad argument. Index is 0-based; for method
// calls index 0 is the receiver.
type NewArgMismatch struct {
	ast.Positioner
	Index  int
	Method bool
	Source string
	Target string
	Notes  []Cause
	stack  []byte
}

func (e NewArgMismatch) Code() ErrCode { return CallViolation }
func (e NewArgMismatch) Error() string {
	if e.Method && e.Index == 0 {
		return fmt.Sprintf("The self argument `%s` is not a subtype of `%s`", e.Source, e.Target)
	}
	kind := "function"
	idx := e.Index
	if e.Method {
		kind = "method"
		idx = e.Index - 1
	}
	return fmt.Sprintf("%s %s argument `%s` is not a subtype of `%s`", ordinal(idx), kind, e.Source, e.Target)
}
func (e NewArgMismatch) Causes() []Cause  { return e.Notes }
func (e NewArgMismatch) getStack() []byte { return e.stack }
func (e NewArgMismatch) withStack(stack []byte) LuaticError {
	e.stack = stack
	return e
}

type NewImplicitSignature struct {
	ast.Positioner
	Name  string
	stack []byte
}

func (e NewImplicitSignature) Code() ErrCode { return TypeMismatch }
func (e NewImplicitSignature) Error() string {
	return fmt.Sprintf("The parameter `%s` needs a type annotation", e.Name)
}
func (e NewImplicitSignature) getStack() []byte { return e.stack }
func (e NewImplicitSignature) withStack(stack []byte) LuaticError {
	e.stack = stack
	return e
}

type NewBadReturn struct {
	ast.Positioner
	Index  int
	Source string
	Target string
	Notes  []Cause
	stack  []byte
}

func (e NewBadReturn) Code() ErrCode { return TypeMismatch }
func (e NewBadReturn) Error() string {
	return fmt.Sprintf("%s return value `%s` is not a subtype of the declared `%s`", ordinal(e.Index), e.Source, e.Target)
}
func (e NewBadReturn) Causes() []Cause  { return e.Notes }
func (e NewBadReturn) getStack() []byte { return e.stack }
func (e NewBadReturn) withStack(stack []byte) LuaticError {
	e.stack = stack
	return e
}

type NewCannotRedefineGlobal struct {
	ast.Positioner
	Name  string
	Notes []Cause
	stack []byte
}

func (e NewCannotRedefineGlobal) Code() ErrCode { return Redefinition }
func (e NewCannotRedefineGlobal) Error() string {
	return fmt.Sprintf("Cannot redefine the type of the global variable `%s`", e.Name)
}
func (e NewCannotRedefineGlobal) Causes() []Cause  { return e.Notes }
func (e NewCannotRedefineGlobal) getStack() []byte { return e.stack }
func (e NewCannotRedefineGlobal) withStack(stack []byte) LuaticError {
	e.stack = stack
	return e
}

type NewTypeRedefined struct {
	ast.Positioner
	Name  string
	Notes []Cause
	stack []byte
}

func (e NewTypeRedefined) Code() ErrCode { return Redefinition }
func (e NewTypeRedefined) Error() string {
	return fmt.Sprintf("The type `%s` is already defined", e.Name)
}
func (e NewTypeRedefined) Causes() []Cause  { return e.Notes }
func (e NewTypeRedefined) getStack() []byte { return e.stack }
func (e NewTypeRedefined) withStack(stack []byte) LuaticError {
	e.stack = stack
	return e
}

type NewStringMetaRedefined struct {
	ast.Positioner
	Notes []Cause
	stack []byte
}

func (e NewStringMetaRedefined) Code() ErrCode { return Redefinition }
func (e NewStringMetaRedefined) Error() string {
	return "The string metatable was already defined"
}
func (e NewStringMetaRedefined) Causes() []Cause  { return e.Notes }
func (e NewStringMetaRedefined) getStack() []byte { return e.stack }
func (e NewStringMetaRedefined) withStack(stack []byte) LuaticError {
	e.stack = stack
	return e
}

type NewUninitialized struct {
	ast.Positioner
	Name  string
	stack []byte
}

func (e NewUninitialized) Code() ErrCode { return Uninitialized }
func (e NewUninitialized) Error() string {
	return fmt.Sprintf("The variable `%s` is not yet initialized", e.Name)
}
func (e NewUninitialized) getStack() []byte { return e.stack }
func (e NewUninitialized) withStack(stack []byte) LuaticError {
	e.stack = stack
	return e
}

type NewRecursiveRequire struct {
	ast.Positioner
	Notes []Cause
	stack []byte
}

func (e NewRecursiveRequire) Code() ErrCode { return ModuleError }
func (e NewRecursiveRequire) Error() string {
	return "Recursive `require` was detected"
}
func (e NewRecursiveRequire) Causes() []Cause  { return e.Notes }
func (e NewRecursiveRequire) getStack() []byte { return e.stack }
func (e NewRecursiveRequire) withStack(stack []byte) LuaticError {
	e.stack = stack
	return e
}

type NewModuleReturnsFalse struct {
	ast.Positioner
	stack []byte
}

func (e NewModuleReturnsFalse) Code() ErrCode { return ModuleError }
func (e NewModuleReturnsFalse) Error() string {
	return "Returning `false` from the module is not allowed"
}
func (e NewModuleReturnsFalse) getStack() []byte { return e.stack }
func (e NewModuleReturnsFalse) withStack(stack []byte) LuaticError {
	e.stack = stack
	return e
}

type NewModuleNotResolved struct {
	ast.Positioner
	stack []byte
}

func (e NewModuleNotResolved) Code() ErrCode { return ModuleError }
func (e NewModuleNotResolved) Error() string {
	return "The module has returned a type that is not yet fully resolved"
}
func (e NewModuleNotResolved) getStack() []byte { return e.stack }
func (e NewModuleNotResolved) withStack(stack []byte) LuaticError {
	e.stack = stack
	return e
}

type NewUnknownLibrary struct {
	ast.Positioner
	Name  string
	stack []byte
}

func (e NewUnknownLibrary) Code() ErrCode { return ModuleError }
func (e NewUnknownLibrary) Error() string {
	return fmt.Sprintf("The built-in library `%s` is unknown", e.Name)
}
func (e NewUnknownLibrary) getStack() []byte { return e.stack }
func (e NewUnknownLibrary) withStack(stack []byte) LuaticError {
	e.stack = stack
	return e
}

type NewModuleNotFound struct {
	ast.Positioner
	Name  string
	stack []byte
}

func (e NewModuleNotFound) Code() ErrCode { return ModuleError }
func (e NewModuleNotFound) Error() string {
	return fmt.Sprintf("Cannot find the module `%s`", e.Name)
}
func (e NewModuleNotFound) getStack() []byte { return e.stack }
func (e NewModuleNotFound) withStack(stack []byte) LuaticError {
	e.stack = stack
	return e
}

type NewDeadCode struct {
	ast.Positioner
	stack []byte
}

func (e NewDeadCode) Code() ErrCode { return DeadCode }
func (e NewDeadCode) Error() string {
	return "This code will never execute"
}
func (e NewDeadCode) getStack() []byte { return e.stack }
func (e NewDeadCode) withStack(stack []byte) LuaticError {
	e.stack = stack
	return e
}

type NewUselessCondition struct {
	ast.Positioner
	AlwaysTrue bool
	stack      []byte
}

func (e NewUselessCondition) Code() ErrCode { return UselessCondition }
func (e NewUselessCondition) Error() string {
	if e.AlwaysTrue {
		return "The condition is always truthy"
	}
	return "The condition is always falsy"
}
func (e NewUselessCondition) getStack() []byte { return e.stack }
func (e NewUselessCondition) withStack(stack []byte) LuaticError {
	e.stack = stack
	return e
}

type NewNonLiteralPath struct {
	ast.Positioner
	Which string
	stack []byte
}

func (e NewNonLiteralPath) Code() ErrCode { return NonLiteralPath }
func (e NewNonLiteralPath) Error() string {
	return fmt.Sprintf("Assigning a value not known at checking time to `%s` makes `require` unresolvable", e.Which)
}
func (e NewNonLiteralPath) getStack() []byte { return e.stack }
func (e NewNonLiteralPath) withStack(stack []byte) LuaticError {
	e.stack = stack
	return e
}

// NewUnresolvedRequire is a warning by default; Strict escalates it to
// an error for sessions that demand statically resolvable requires.
type NewUnresolvedRequire struct {
	ast.Positioner
	Strict bool
	stack  []byte
}

func (e NewUnresolvedRequire) Code() ErrCode {
	if e.Strict {
		return ModuleError
	}
	return UnresolvedRequire
}
func (e NewUnresolvedRequire) Error() string {
	return "Cannot resolve the module name at checking time"
}
func (e NewUnresolvedRequire) getStack() []byte { return e.stack }
func (e NewUnresolvedRequire) withStack(stack []byte) LuaticError {
	e.stack = stack
	return e
}

type NewUnknownAttribute struct {
	ast.Positioner
	Name  string
	stack []byte
}

func (e NewUnknownAttribute) Code() ErrCode { return UnknownAttribute }
func (e NewUnknownAttribute) Error() string {
	return fmt.Sprintf("The attribute `[%s]` is unknown and was ignored", e.Name)
}
func (e NewUnknownAttribute) getStack() []byte { return e.stack }
func (e NewUnknownAttribute) withStack(stack []byte) LuaticError {
	e.stack = stack
	return e
}

type NewInternal struct {
	ast.Positioner
	Err   error
	stack []byte
}

func (e NewInternal) Code() ErrCode { return Internal }
func (e NewInternal) Error() string {
	return fmt.Sprintf("Internal checker invariant violated: %v", e.Err)
}
func (e NewInternal) getStack() []byte { return e.stack }
func (e NewInternal) withStack(stack []byte) LuaticError {
	e.stack = stack
	return e
}
