package css

// skipMode determines where a skipper stops.
type skipMode uint8

// skipMode values.
const (
	skipStatement   skipMode = iota // through ; or a {} block
	skipDeclaration                 // through ; or up to the enclosing }
	skipBlock                       // through the } matching an opened {
)

// skipper consumes the tokens of an erroneous or ignored construct while tracking bracket depth.
type skipper struct {
	m     *manager
	mode  skipMode
	stop  func(t token) bool // additional terminators at depth zero, handed back to the parent
	depth int
	done  func(end int)
}

func newSkipper(m *manager, mode skipMode, done func(end int)) *skipper {
	return &skipper{m: m, mode: mode, done: done}
}

func (s *skipper) name() string {
	return "skip"
}

func (s *skipper) handle(t token) {
	if s.depth == 0 && s.stop != nil && s.stop(t) {
		s.finish(t, false)
		return
	}
	switch t.kind {
	case eofTok:
		s.finish(t, false)
	case lparenTok, functionTok, lbracketTok, lbraceTok:
		s.depth++
	case rparenTok, rbracketTok:
		if 0 < s.depth {
			s.depth--
		}
	case rbraceTok:
		if s.depth == 0 {
			s.finish(t, s.mode == skipBlock)
			return
		}
		s.depth--
		if s.depth == 0 && s.mode == skipStatement {
			s.finish(t, true)
		}
	case charTok:
		if t.c == ';' && s.depth == 0 && s.mode != skipBlock {
			s.finish(t, true)
		}
	}
}

func (s *skipper) finish(t token, consumed bool) {
	s.m.restore()
	end := t.pos
	if consumed {
		end = t.end
	}
	if s.done != nil {
		s.done(end)
	}
	if !consumed {
		s.m.handBack(t)
	}
}

////////////////////////////////////////////////////////////////

// prelude collects the tokens of an at-rule preamble or a declaration up to the ;, { or } that ends it. Comments are
// dropped unless requested.
type prelude struct {
	m        *manager
	toks     []token
	depth    int
	comments bool
	done     func(toks []token)
}

func newPrelude(m *manager, done func(toks []token)) *prelude {
	return &prelude{m: m, done: done}
}

func (p *prelude) name() string {
	return "prelude"
}

func (p *prelude) handle(t token) {
	if t.kind == eofTok || p.depth == 0 && (t.isChar(';') || t.kind == lbraceTok || t.kind == rbraceTok) {
		p.m.restore()
		p.done(trimSpace(p.toks))
		p.m.handBack(t)
		return
	}
	switch t.kind {
	case commentTok:
		if !p.comments {
			return
		}
	case lparenTok, functionTok, lbracketTok, lbraceTok:
		p.depth++
	case rparenTok, rbracketTok, rbraceTok:
		if 0 < p.depth {
			p.depth--
		}
	}
	p.toks = append(p.toks, t)
}

////////////////////////////////////////////////////////////////

// tail sits below the recognizer of a single construct and reports anything that follows it.
type tail struct {
	m        *manager
	reported bool
}

func (r *tail) name() string {
	return "tail"
}

func (r *tail) handle(t token) {
	if t.isSpace() || t.kind == eofTok || r.reported {
		return
	}
	r.reported = true
	r.m.unexpected(t)
}

////////////////////////////////////////////////////////////////

// trimSpace removes leading and trailing separators.
func trimSpace(ts []token) []token {
	for 0 < len(ts) && ts[0].isSpace() {
		ts = ts[1:]
	}
	for 0 < len(ts) && ts[len(ts)-1].isSpace() {
		ts = ts[:len(ts)-1]
	}
	return ts
}

// splitCommas splits tokens at commas outside of brackets, each part is trimmed.
func splitCommas(ts []token) [][]token {
	var parts [][]token
	depth, start := 0, 0
	for i, t := range ts {
		switch t.kind {
		case lparenTok, functionTok, lbracketTok:
			depth++
		case rparenTok, rbracketTok:
			depth--
		case charTok:
			if t.c == ',' && depth == 0 {
				parts = append(parts, trimSpace(ts[start:i]))
				start = i + 1
			}
		}
	}
	return append(parts, trimSpace(ts[start:]))
}

// words returns the tokens without separators.
func words(ts []token) []token {
	ws := make([]token, 0, len(ts))
	for _, t := range ts {
		if !t.isSpace() {
			ws = append(ws, t)
		}
	}
	return ws
}

////////////////////////////////////////////////////////////////

// enclosed consumes the rest of a parenthesized group up to and including its closing parenthesis. The end of a
// block or statement inside the group is an error.
type enclosed struct {
	m     *manager
	depth int
	done  func(end int, ok bool)
}

func newEnclosed(m *manager, done func(end int, ok bool)) *enclosed {
	return &enclosed{m: m, done: done}
}

func (e *enclosed) name() string {
	return "enclosed"
}

func (e *enclosed) handle(t token) {
	switch t.kind {
	case lparenTok, functionTok, lbracketTok:
		e.depth++
	case rparenTok, rbracketTok:
		if e.depth == 0 && t.kind == rparenTok {
			e.m.restore()
			e.done(t.end, true)
			return
		} else if 0 < e.depth {
			e.depth--
		}
	case lbraceTok, rbraceTok, eofTok:
		e.abandon(t)
	case charTok:
		if t.c == ';' {
			e.abandon(t)
		}
	}
}

func (e *enclosed) abandon(t token) {
	e.m.unexpected(t)
	e.m.restore()
	e.done(t.pos, false)
	e.m.handBack(t)
}
