package selector

// Equal reports whether two selectors are structurally equal.
func Equal(s, t Selector) bool {
	if s == nil || t == nil {
		return s == nil && t == nil
	} else if s.Kind() != t.Kind() {
		return false
	}
	switch a := s.(type) {
	case *ElementSelector:
		b := t.(*ElementSelector)
		return *a == *b
	case *NestingSelector:
		return true
	case *CombinatorSelector:
		b := t.(*CombinatorSelector)
		return Equal(a.Left, b.Left) && Equal(a.Right, b.Right)
	case *ConditionalSelector:
		b := t.(*ConditionalSelector)
		return Equal(a.Simple, b.Simple) && EqualCondition(a.Condition, b.Condition)
	}
	return false
}

// EqualCondition reports whether two conditions are structurally equal.
func EqualCondition(c, d Condition) bool {
	if c == nil || d == nil {
		return c == nil && d == nil
	} else if c.ConditionKind() != d.ConditionKind() {
		return false
	}
	switch a := c.(type) {
	case *Class:
		return *a == *d.(*Class)
	case *ID:
		return *a == *d.(*ID)
	case *Attribute:
		return *a == *d.(*Attribute)
	case *Pseudo:
		return *a == *d.(*Pseudo)
	case *Lang:
		b := d.(*Lang)
		if len(a.Ranges) != len(b.Ranges) {
			return false
		}
		for i := range a.Ranges {
			if a.Ranges[i] != b.Ranges[i] {
				return false
			}
		}
		return true
	case *Positional:
		b := d.(*Positional)
		return a.Name == b.Name && a.A == b.A && a.B == b.B && a.Of.Equal(b.Of)
	case *SelectorArgument:
		b := d.(*SelectorArgument)
		return a.Name == b.Name && a.Selectors.Equal(b.Selectors)
	case *And:
		b := d.(*And)
		if len(a.Conditions) != len(b.Conditions) {
			return false
		}
		for i := range a.Conditions {
			if !EqualCondition(a.Conditions[i], b.Conditions[i]) {
				return false
			}
		}
		return true
	}
	return false
}
