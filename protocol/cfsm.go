package protocol

import (
	"fmt"
	"io"
	"sort"

	"github.com/nickng/cfsm"
)

// Reply message a resource sends back for blocking operations.
var replies = map[Op]string{
	Acquire: "grant",
	Wait:    "grant",
	Put:     "ack",
	Get:     "item",
}

// CFSMs is a CFSM system generated from a Protocol: one machine per role and
// one per resource.
type CFSMs struct {
	Sys       *cfsm.System
	Roles     map[string]*cfsm.CFSM
	Resources map[string]*cfsm.CFSM

	proto *Protocol
}

// NewCFSMs builds the CFSM system of p.
func NewCFSMs(p *Protocol) (*CFSMs, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	sys := &CFSMs{
		Sys:       cfsm.NewSystem(),
		Roles:     make(map[string]*cfsm.CFSM),
		Resources: make(map[string]*cfsm.CFSM),
		proto:     p,
	}
	// Create every machine first, transitions refer to their peers.
	for _, r := range p.Resources {
		m := sys.Sys.NewMachine()
		m.Comment = r.Name
		sys.Resources[r.Name] = m
	}
	for _, r := range p.Roles {
		m := sys.Sys.NewMachine()
		m.Comment = r.Name
		sys.Roles[r.Name] = m
	}

	for _, r := range p.Resources {
		m := sys.Resources[r.Name]
		switch r.Kind {
		case Lock:
			sys.lockMachine(r, m)
		case Flag:
			sys.flagMachine(r, m)
		case Buffer:
			sys.bufferMachine(r, m)
		}
	}
	for _, r := range p.Roles {
		m := sys.Roles[r.Name]
		q0 := m.NewState()
		sys.seq(m, r.Loop, q0, q0)
		m.Start = q0
		if m.IsEmpty() {
			sys.Sys.RemoveMachine(m.ID)
			delete(sys.Roles, r.Name)
		}
	}
	return sys, nil
}

// WriteTo implements io.WriterTo.
func (sys *CFSMs) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, sys.Sys.String())
	return int64(n), err
}

// Summary writes the machine numbering, resources first.
func (sys *CFSMs) Summary(w io.Writer) {
	fmt.Fprintf(w, "Total of %d CFSMs (%d are resources)\n",
		len(sys.Roles)+len(sys.Resources), len(sys.Resources))
	for _, name := range sortedByID(sys.Resources) {
		fmt.Fprintf(w, "\t%d\t= %s (resource)\n", sys.Resources[name].ID, name)
	}
	for _, name := range sortedByID(sys.Roles) {
		fmt.Fprintf(w, "\t%d\t= %s\n", sys.Roles[name].ID, name)
	}
}

func sortedByID(ms map[string]*cfsm.CFSM) []string {
	names := make([]string, 0, len(ms))
	for name := range ms {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return ms[names[i]].ID < ms[names[j]].ID })
	return names
}

// seq adds steps to m as a path from q0 to qEnd.
func (sys *CFSMs) seq(m *cfsm.CFSM, steps []Step, q0, qEnd *cfsm.State) {
	q := q0
	for i, s := range steps {
		next := qEnd
		if i < len(steps)-1 {
			next = m.NewState()
		}
		if s.Alts != nil {
			for _, alt := range s.Alts {
				sys.seq(m, alt, q, next)
			}
		} else {
			sys.op(m, s, q, next)
		}
		q = next
	}
}

func (sys *CFSMs) op(m *cfsm.CFSM, s Step, q0, qEnd *cfsm.State) {
	peer := sys.Resources[s.Resource]
	reply, blocking := replies[s.Op]
	if !blocking {
		send(q0, peer, s.Op.String(), qEnd)
		return
	}
	qSent := m.NewState()
	send(q0, peer, s.Op.String(), qSent)
	recv(qSent, peer, reply, qEnd)
}

// lockMachine: free -acquire-> granting -grant-> held -release-> free, per user.
func (sys *CFSMs) lockMachine(r Resource, m *cfsm.CFSM) {
	qFree := m.NewState()
	for _, u := range sys.proto.Users(r.Name, Acquire) {
		user := sys.Roles[u]
		qAsked := m.NewState()
		qHeld := m.NewState()
		recv(qFree, user, Acquire.String(), qAsked)
		send(qAsked, user, replies[Acquire], qHeld)
		recv(qHeld, user, Release.String(), qFree)
	}
	m.Start = qFree
}

// flagMachine: down -post-> up -wait-> granting -grant-> down.
func (sys *CFSMs) flagMachine(r Resource, m *cfsm.CFSM) {
	qDown := m.NewState()
	qUp := m.NewState()
	for _, p := range sys.proto.Users(r.Name, Post) {
		recv(qDown, sys.Roles[p], Post.String(), qUp)
	}
	for _, w := range sys.proto.Users(r.Name, Wait) {
		waiter := sys.Roles[w]
		qAsked := m.NewState()
		recv(qUp, waiter, Wait.String(), qAsked)
		send(qAsked, waiter, replies[Wait], qDown)
	}
	m.Start = qDown
	if r.Up {
		m.Start = qUp
	}
}

// bufferMachine counts occupancy 0..Capacity; puts are refused when full and
// gets when empty.
func (sys *CFSMs) bufferMachine(r Resource, m *cfsm.CFSM) {
	qs := make([]*cfsm.State, r.Capacity+1)
	for k := range qs {
		qs[k] = m.NewState()
	}
	producers := sys.proto.Users(r.Name, Put)
	consumers := sys.proto.Users(r.Name, Get)
	for k := range qs {
		if k < r.Capacity {
			for _, p := range producers {
				qPut := m.NewState()
				recv(qs[k], sys.Roles[p], Put.String(), qPut)
				send(qPut, sys.Roles[p], replies[Put], qs[k+1])
			}
		}
		if k > 0 {
			for _, c := range consumers {
				qGet := m.NewState()
				recv(qs[k], sys.Roles[c], Get.String(), qGet)
				send(qGet, sys.Roles[c], replies[Get], qs[k-1])
			}
		}
	}
	m.Start = qs[0]
}

func send(from *cfsm.State, to *cfsm.CFSM, msg string, next *cfsm.State) {
	tr := cfsm.NewSend(to, msg)
	tr.SetNext(next)
	from.AddTransition(tr)
}

func recv(from *cfsm.State, peer *cfsm.CFSM, msg string, next *cfsm.State) {
	tr := cfsm.NewRecv(peer, msg)
	tr.SetNext(next)
	from.AddTransition(tr)
}
