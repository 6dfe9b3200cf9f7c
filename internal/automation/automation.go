// Package automation drives GrainDelay parameters from Lua scripts.
//
// A script defines a global function params(t, p). t is the time in
// seconds, p a table holding the current parameters. The function returns a
// table whose fields override the base parameters; missing fields keep
// their base value. Recognized fields:
//
//	rate, overlap, delay, grain_rate, mix, feedback, damping  (numbers)
//	freeze                                                    (boolean)
//	reset                                                     (number, gate)
//	window                                                    (string)
//
// Scripts run at block rate on the caller's goroutine and must never be
// called from the render loop.
package automation

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-grain/dsp/effects"
	"github.com/cwbudde/algo-grain/dsp/window"
	lua "github.com/yuin/gopher-lua"
)

// EntryPoint is the global function a script must define.
const EntryPoint = "params"

// ErrNoEntryPoint reports a script without a params function.
var ErrNoEntryPoint = errors.New("automation script does not define " + EntryPoint)

// Script is a loaded automation script. It is not safe for concurrent use.
type Script struct {
	state *lua.LState
	fn    lua.LValue
}

// Load compiles and runs the script at path.
func Load(path string) (*Script, error) {
	return load(func(l *lua.LState) error { return l.DoFile(path) }, path)
}

// LoadString compiles and runs src. name is used in error messages.
func LoadString(name, src string) (*Script, error) {
	return load(func(l *lua.LState) error { return l.DoString(src) }, name)
}

func load(run func(*lua.LState) error, name string) (*Script, error) {
	l := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibs(l)

	if err := run(l); err != nil {
		l.Close()
		return nil, fmt.Errorf("load %s: %w", name, err)
	}

	fn := l.GetGlobal(EntryPoint)
	if fn.Type() != lua.LTFunction {
		l.Close()
		return nil, fmt.Errorf("%w: %s", ErrNoEntryPoint, name)
	}

	return &Script{state: l, fn: fn}, nil
}

// openSafeLibs opens the libraries a parameter script needs. io and os stay
// closed.
func openSafeLibs(l *lua.LState) {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		l.Push(l.NewFunction(lib.fn))
		l.Push(lua.LString(lib.name))
		l.Call(1, 0)
	}
}

// At evaluates the script at time t seconds and applies the returned
// overrides to base.
func (s *Script) At(t float64, base effects.GrainDelayParams) (effects.GrainDelayParams, error) {
	l := s.state

	err := l.CallByParam(lua.P{
		Fn:      s.fn,
		NRet:    1,
		Protect: true,
	}, lua.LNumber(t), toTable(l, base))
	if err != nil {
		return base, fmt.Errorf("automation at %.3fs: %w", t, err)
	}

	ret := l.Get(-1)
	l.Pop(1)

	switch v := ret.(type) {
	case *lua.LNilType:
		return base, nil
	case *lua.LTable:
		return apply(v, base)
	default:
		return base, fmt.Errorf("automation at %.3fs: %s returned %s, want table", t, EntryPoint, ret.Type())
	}
}

// Close releases the Lua state.
func (s *Script) Close() {
	s.state.Close()
}

func toTable(l *lua.LState, p effects.GrainDelayParams) *lua.LTable {
	tbl := l.NewTable()
	tbl.RawSetString("rate", lua.LNumber(p.TriggerRate))
	tbl.RawSetString("overlap", lua.LNumber(p.Overlap))
	tbl.RawSetString("delay", lua.LNumber(p.DelayTime))
	tbl.RawSetString("grain_rate", lua.LNumber(p.GrainRate))
	tbl.RawSetString("mix", lua.LNumber(p.Mix))
	tbl.RawSetString("feedback", lua.LNumber(p.Feedback))
	tbl.RawSetString("damping", lua.LNumber(p.Damping))
	tbl.RawSetString("freeze", lua.LBool(p.Freeze))
	tbl.RawSetString("reset", lua.LNumber(p.Reset))
	tbl.RawSetString("window", lua.LString(p.Window.String()))
	return tbl
}

func apply(tbl *lua.LTable, p effects.GrainDelayParams) (effects.GrainDelayParams, error) {
	numbers := []struct {
		key string
		dst *float64
	}{
		{"rate", &p.TriggerRate},
		{"overlap", &p.Overlap},
		{"delay", &p.DelayTime},
		{"grain_rate", &p.GrainRate},
		{"mix", &p.Mix},
		{"feedback", &p.Feedback},
		{"damping", &p.Damping},
		{"reset", &p.Reset},
	}

	for _, f := range numbers {
		switch v := tbl.RawGetString(f.key).(type) {
		case *lua.LNilType:
		case lua.LNumber:
			*f.dst = float64(v)
		default:
			return p, fmt.Errorf("automation field %q: got %s, want number", f.key, v.Type())
		}
	}

	switch v := tbl.RawGetString("freeze").(type) {
	case *lua.LNilType:
	case lua.LBool:
		p.Freeze = bool(v)
	default:
		return p, fmt.Errorf("automation field %q: got %s, want boolean", "freeze", v.Type())
	}

	switch v := tbl.RawGetString("window").(type) {
	case *lua.LNilType:
	case lua.LString:
		w, err := window.Parse(string(v))
		if err != nil {
			return p, fmt.Errorf("automation field %q: %w", "window", err)
		}
		p.Window = w
	default:
		return p, fmt.Errorf("automation field %q: got %s, want string", "window", v.Type())
	}

	return p, nil
}
