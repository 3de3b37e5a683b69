package interp

import "github.com/corytodd/picoc/internal/token"

// callUserFunc pushes a fresh stack frame, binds arguments to
// parameters, and re-parses the function body from its saved token
// cursor (the single-pass "re-parse on every call" model this whole
// interpreter is built around, rather than building and walking an
// AST once).
func (it *Interpreter) callUserFunc(fn *FuncDef, args []*Value, pos token.Position) (*Value, error) {
	if !fn.VarArgs && len(args) != len(fn.ParamTypes) {
		return nil, &FatalError{Pos: pos, Message: "wrong number of arguments to " + fn.Name.Name}
	}

	mark := it.arena.Mark()
	frame := &StackFrame{Func: fn, Prev: it.TopFrame, stackMark: mark, prevScope: 0}
	it.TopFrame = frame

	it.callStack = append(it.callStack, callFrame{name: fn.Name.Name, pos: pos})
	defer func() { it.callStack = it.callStack[:len(it.callStack)-1] }()

	s := it.ScopeBegin()
	frame.scopeID = s.id

	for i, pname := range fn.ParamNames {
		if pname.Name == "" {
			continue
		}
		dst, err := it.VariableDefine(pname, fn.ParamTypes[i], pos, false)
		if err != nil {
			it.ScopeEnd(s)
			it.TopFrame = frame.Prev
			it.arena.PopStack(mark)
			return nil, err
		}
		it.store(dst, args[i])
	}

	bodyCursor := fn.Body.Fork()
	bodyCursor.Mode = Run
	retVal := it.newScratch(fn.ReturnType)
	frame.ReturnVal = retVal

	err := it.runBlock(bodyCursor)

	// Snapshot the return value's raw bits before the frame's stack
	// storage (including retVal itself) is released, then rematerialize
	// it in the caller's still-live stack region.
	var raw int64
	var rawF float64
	if isFloating(fn.ReturnType) {
		rawF = it.ReadFloat(retVal)
	} else {
		raw = it.ReadInt(retVal)
	}

	it.ScopeEnd(s)
	it.TopFrame = frame.Prev
	it.arena.PopStack(mark)

	if err != nil {
		return nil, err
	}
	if isFloating(fn.ReturnType) {
		return it.newFloat(rawF), nil
	}
	return it.newInt(raw, fn.ReturnType), nil
}

// setReturn is called by the `return` statement handler to stash the
// result in the current frame; the handler itself switches run mode.
func (it *Interpreter) setReturn(v *Value) {
	if it.TopFrame != nil && v != nil {
		it.store(it.TopFrame.ReturnVal, v)
	}
}
