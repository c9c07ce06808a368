package protocol

import (
	"github.com/nickng/migo/v3"
	"github.com/nickng/migo/v3/migoutil"
)

// chanVar names a channel in a MiGo program.
type chanVar string

func (c chanVar) Name() string   { return string(c) }
func (c chanVar) String() string { return string(c) }

// MiGo expresses p as a MiGo program, with every resource a channel:
//
//   - a lock is a channel of size 1: acquire sends, release receives;
//   - a flag is a channel of size 1: post sends, wait receives;
//   - a buffer is a channel of its capacity: put sends, get receives.
//
// Each role is a recursive function spawned from main.
func MiGo(p *Protocol) (*migo.Program, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	prog := migo.NewProgram()
	mainFn := migo.NewFunction("main.main")
	for _, r := range p.Resources {
		size := int64(1)
		if r.Kind == Buffer {
			size = int64(r.Capacity)
		}
		mainFn.AddStmts(&migo.NewChanStatement{Name: chanVar(r.Name), Chan: r.Name, Size: size})
		if r.Kind == Flag && r.Up {
			mainFn.AddStmts(&migo.SendStatement{Chan: r.Name})
		}
	}
	prog.AddFunction(mainFn)

	for _, r := range p.Roles {
		fn := migo.NewFunction(r.Name)
		used := edges(r.Loop)
		var params []*migo.Parameter
		for _, res := range p.Resources {
			if len(used[res.Name]) > 0 {
				params = append(params, &migo.Parameter{Caller: chanVar(res.Name), Callee: chanVar(res.Name)})
			}
		}
		fn.AddParams(params...)
		fn.AddStmts(migoStmts(r.Loop)...)
		fn.AddStmts(&migo.CallStatement{Name: r.Name, Params: params})
		prog.AddFunction(fn)
		mainFn.AddStmts(&migo.SpawnStatement{Name: r.Name, Params: params})
	}

	migoutil.SimplifyProgram(prog)
	return prog, nil
}

func migoStmts(steps []Step) []migo.Statement {
	var stmts []migo.Statement
	for _, s := range steps {
		if s.Alts != nil {
			stmts = append(stmts, migoChoice(s.Alts))
			continue
		}
		switch s.Op {
		case Acquire, Post, Put:
			stmts = append(stmts, &migo.SendStatement{Chan: s.Resource})
		case Release, Wait, Get:
			stmts = append(stmts, &migo.RecvStatement{Chan: s.Resource})
		}
	}
	return stmts
}

// migoChoice nests if/else for internal choices between alternatives.
func migoChoice(alts [][]Step) migo.Statement {
	if len(alts) == 1 {
		return &migo.IfStatement{Then: migoStmts(alts[0]), Else: migoStmts(alts[0])}
	}
	if len(alts) == 2 {
		return &migo.IfStatement{Then: migoStmts(alts[0]), Else: migoStmts(alts[1])}
	}
	return &migo.IfStatement{Then: migoStmts(alts[0]), Else: []migo.Statement{migoChoice(alts[1:])}}
}
